package queryengine

import (
	"fmt"
	"strings"

	"github.com/geoknoesis/rdfgraph/internal/sparql/executor"
	"github.com/geoknoesis/rdfgraph/pkg/rdf"
	"github.com/geoknoesis/rdfgraph/pkg/store"
)

// executorTermToRDFTerm is the inverse of the executor package's
// rdfTermToExecutorTerm: it decodes the "value@lang" / "value^^<dt>" suffix
// convention used for CONSTRUCT result literals back into an rdf.Term.
func executorTermToRDFTerm(t executor.Term) (rdf.Term, error) {
	switch t.Type {
	case "iri":
		return rdf.NewNamedNode(t.Value), nil
	case "blank":
		return rdf.NewBlankNode(t.Value), nil
	case "literal":
		if idx := strings.LastIndex(t.Value, "@"); idx != -1 && !strings.Contains(t.Value[idx:], ">") {
			return rdf.NewLiteralWithLanguage(t.Value[:idx], t.Value[idx+1:]), nil
		}
		if idx := strings.Index(t.Value, "^^<"); idx != -1 && strings.HasSuffix(t.Value, ">") {
			return rdf.NewLiteralWithDatatype(t.Value[:idx], rdf.NewNamedNode(t.Value[idx+3:len(t.Value)-1])), nil
		}
		return rdf.NewLiteral(t.Value), nil
	default:
		return nil, fmt.Errorf("unknown term type: %s", t.Type)
	}
}

// sliceBindingIterator adapts a []*store.Binding to store.BindingIterator.
type sliceBindingIterator struct {
	bindings []*store.Binding
	pos      int
}

func newSliceBindingIterator(bindings []*store.Binding) *sliceBindingIterator {
	return &sliceBindingIterator{bindings: bindings, pos: -1}
}

func (it *sliceBindingIterator) Next() bool {
	it.pos++
	return it.pos < len(it.bindings)
}

func (it *sliceBindingIterator) Binding() *store.Binding {
	return it.bindings[it.pos]
}

func (it *sliceBindingIterator) Close() error { return nil }

var _ store.BindingIterator = (*sliceBindingIterator)(nil)
