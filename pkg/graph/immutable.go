package graph

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/geoknoesis/rdfgraph/pkg/rdf"
	"github.com/geoknoesis/rdfgraph/pkg/rdf/codec"
	"github.com/geoknoesis/rdfgraph/pkg/store"
)

// immutableGraph implements ImmutableGraph over a store.ImmutableStore:
// Add/Remove return a new immutableGraph value sharing trie structure with
// the receiver, never mutating it.
type immutableGraph struct {
	iri   rdf.Term
	quads *store.ImmutableStore
}

// NewImmutableGraph wraps quads (nil means empty) under the given identity.
func NewImmutableGraph(iri rdf.Term, quads *store.ImmutableStore) ImmutableGraph {
	if iri == nil {
		iri = rdf.NewDefaultGraph()
	}
	if quads == nil {
		quads = store.NewImmutableStore()
	}
	return &immutableGraph{iri: iri, quads: quads}
}

func (g *immutableGraph) IRI() rdf.Term { return g.iri }

func (g *immutableGraph) canonicalize(q *rdf.Quad) *rdf.Quad {
	if !rdf.IsDefaultGraph(q.Graph) {
		return q
	}
	return rdf.NewQuad(q.Subject, q.Predicate, q.Object, g.iri)
}

func (g *immutableGraph) Quads(ctx context.Context) (QuadIterator, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return newSliceQuadIterator(g.quads.Quads()), nil
}

func (g *immutableGraph) Find(ctx context.Context, s, p, o, gr rdf.Term) (QuadIterator, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if gr == nil {
		gr = g.iri
	}
	return newSliceQuadIterator(g.quads.Find(s, p, o, gr)), nil
}

func (g *immutableGraph) Select(ctx context.Context, query string, opts ...QueryOption) (BindingIterator, error) {
	return nil, fmt.Errorf("%w: ImmutableGraph has no query engine; Construct a MemoryGraph from it first", rdf.ErrQuery)
}

func (g *immutableGraph) Ask(ctx context.Context, query string, opts ...QueryOption) (bool, error) {
	return false, fmt.Errorf("%w: ImmutableGraph has no query engine; Construct a MemoryGraph from it first", rdf.ErrQuery)
}

func (g *immutableGraph) Construct(ctx context.Context, query string, opts ...QueryOption) (*MemoryGraph, error) {
	return nil, fmt.Errorf("%w: ImmutableGraph has no query engine; Construct a MemoryGraph from it first", rdf.ErrQuery)
}

func (g *immutableGraph) Serialize(ctx context.Context, w io.Writer, opts ...QueryOption) error {
	o := resolveOptions(opts)
	format := o.Format
	if format == "" {
		format = codec.FormatNQuads
	}
	return codec.Serialize(w, g.quads.Quads(), format)
}

func (g *immutableGraph) SaveToFile(ctx context.Context, path string, opts ...QueryOption) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("%w: %v", rdf.ErrIO, err)
	}
	defer f.Close()
	o := resolveOptions(opts)
	if o.Format == "" {
		opts = append(opts, WithFormat(codec.DetectFormat("", path, nil)))
	}
	return g.Serialize(ctx, f, opts...)
}

func (g *immutableGraph) WithIRI(iri rdf.Term) ReadGraph {
	return &immutableGraph{iri: iri, quads: g.quads}
}

func (g *immutableGraph) Add(ctx context.Context, quads ...*rdf.Quad) (ImmutableGraph, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	next := g.quads
	for _, q := range quads {
		next = next.Add(g.canonicalize(q))
	}
	return &immutableGraph{iri: g.iri, quads: next}, nil
}

func (g *immutableGraph) Remove(ctx context.Context, quads ...*rdf.Quad) (ImmutableGraph, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	next := g.quads
	for _, q := range quads {
		next = next.Remove(g.canonicalize(q))
	}
	return &immutableGraph{iri: g.iri, quads: next}, nil
}

var _ ImmutableGraph = (*immutableGraph)(nil)
