package remote

import (
	"fmt"
	"strings"

	"github.com/geoknoesis/rdfgraph/pkg/rdf"
)

// renderTerm renders a ground term (no variables) using the escaping rules
// for textually-synthesized DELETE DATA / INSERT DATA bodies: NamedNode as
// <iri> with \ and > escaped, BlankNode as _:label, Literal as "lexical"
// with the lexical form escaped and an @lang or ^^<datatype> suffix (the
// latter omitted for plain xsd:string), and QuotedTriple recursively as
// << subj pred obj >>.
func renderTerm(t rdf.Term) string {
	switch v := t.(type) {
	case *rdf.NamedNode:
		return "<" + escapeIRI(v.IRI) + ">"
	case *rdf.BlankNode:
		return "_:" + v.ID
	case *rdf.Literal:
		return renderLiteral(v)
	case *rdf.QuotedTriple:
		return "<< " + renderTerm(v.Subject) + " " + renderTerm(v.Predicate) + " " + renderTerm(v.Object) + " >>"
	default:
		return t.String()
	}
}

func escapeIRI(iri string) string {
	r := strings.NewReplacer(`\`, `\\`, ">", `\>`)
	return r.Replace(iri)
}

func renderLiteral(l *rdf.Literal) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range l.Value {
		switch r {
		case '\\':
			b.WriteString(`\\`)
		case '"':
			b.WriteString(`\"`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	if l.Language != "" {
		b.WriteString("@" + l.Language)
		return b.String()
	}
	dt := l.EffectiveDatatype()
	if dt != nil && dt.IRI != rdf.XSDString.IRI {
		b.WriteString("^^<" + escapeIRI(dt.IRI) + ">")
	}
	return b.String()
}

func renderQuadTriple(q *rdf.Quad) string {
	return renderTerm(q.Subject) + " " + renderTerm(q.Predicate) + " " + renderTerm(q.Object) + " ."
}

// renderQuadBlock groups quads by graph slot and renders `{ ... }`, wrapping
// each named-graph run in GRAPH <iri> { ... } and leaving default-graph
// quads inline, matching the grouping rule for synthesized DATA blocks.
func renderQuadBlock(quads []*rdf.Quad) string {
	var b strings.Builder
	b.WriteString("{\n")
	i := 0
	for i < len(quads) {
		g := quads[i].Graph
		j := i
		var lines []string
		for j < len(quads) && sameGraphSlot(quads[j].Graph, g) {
			lines = append(lines, "  "+renderQuadTriple(quads[j]))
			j++
		}
		if rdf.IsDefaultGraph(g) {
			b.WriteString(strings.Join(lines, "\n") + "\n")
		} else {
			fmt.Fprintf(&b, "  GRAPH %s {\n", renderTerm(g))
			for _, l := range lines {
				b.WriteString("  " + l + "\n")
			}
			b.WriteString("  }\n")
		}
		i = j
	}
	b.WriteString("}")
	return b.String()
}

func sameGraphSlot(a, b rdf.Term) bool {
	if rdf.IsDefaultGraph(a) && rdf.IsDefaultGraph(b) {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	return a.Equals(b)
}

// RenderDeleteData synthesizes a DELETE DATA { ... } body from ground
// quads: GraphDB's remove-within-transaction wire operation has no REST
// body form, only this textual SPARQL Update form.
func RenderDeleteData(quads []*rdf.Quad) string {
	return "DELETE DATA " + renderQuadBlock(quads)
}

// RenderInsertData synthesizes an INSERT DATA { ... } body, used where a
// backend's add operation is expressed as SPARQL Update text rather than an
// RDF-content body.
func RenderInsertData(quads []*rdf.Quad) string {
	return "INSERT DATA " + renderQuadBlock(quads)
}
