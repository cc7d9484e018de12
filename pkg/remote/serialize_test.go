package remote

import (
	"strings"
	"testing"

	"github.com/geoknoesis/rdfgraph/pkg/rdf"
)

func TestRenderTerm_EscapesIRIAndLiteral(t *testing.T) {
	got := renderTerm(rdf.NewNamedNode("http://ex/a>b\\c"))
	if got != `<http://ex/a\>b\\c>` {
		t.Fatalf("unexpected IRI rendering: %s", got)
	}
	lit := renderTerm(rdf.NewLiteral(`say "hi"`))
	if lit != `"say \"hi\""` {
		t.Fatalf("unexpected literal rendering: %s", lit)
	}
}

func TestRenderTerm_LiteralSuffixes(t *testing.T) {
	withLang := renderTerm(rdf.NewLiteralWithLanguage("bonjour", "fr"))
	if withLang != `"bonjour"@fr` {
		t.Fatalf("unexpected language literal: %s", withLang)
	}
	withType := renderTerm(rdf.NewLiteralWithDatatype("42", rdf.NewNamedNode("http://www.w3.org/2001/XMLSchema#integer")))
	if withType != `"42"^^<http://www.w3.org/2001/XMLSchema#integer>` {
		t.Fatalf("unexpected typed literal: %s", withType)
	}
	plain := renderTerm(rdf.NewLiteral("plain"))
	if plain != `"plain"` {
		t.Fatalf("expected xsd:string to render with no datatype suffix, got %s", plain)
	}
}

func TestRenderTerm_QuotedTripleIsRecursive(t *testing.T) {
	qt, err := rdf.NewQuotedTriple(rdf.NewNamedNode("http://ex/s"), rdf.NewNamedNode("http://ex/p"), rdf.NewLiteral("o"))
	if err != nil {
		t.Fatalf("NewQuotedTriple: %v", err)
	}
	got := renderTerm(qt)
	if got != `<< <http://ex/s> <http://ex/p> "o" >>` {
		t.Fatalf("unexpected quoted triple rendering: %s", got)
	}
}

func TestRenderQuadBlock_GroupsByGraphSlot(t *testing.T) {
	s, p := rdf.NewNamedNode("http://ex/s"), rdf.NewNamedNode("http://ex/p")
	g1 := rdf.NewNamedNode("http://ex/g1")
	quads := []*rdf.Quad{
		rdf.NewQuad(s, p, rdf.NewLiteral("a"), nil),
		rdf.NewQuad(s, p, rdf.NewLiteral("b"), g1),
		rdf.NewQuad(s, p, rdf.NewLiteral("c"), g1),
	}
	block := RenderDeleteData(quads)
	if !strings.HasPrefix(block, "DELETE DATA {") {
		t.Fatalf("expected a DELETE DATA block, got %s", block)
	}
	if strings.Count(block, "GRAPH <http://ex/g1>") != 1 {
		t.Fatalf("expected exactly one GRAPH wrapper grouping the two g1 quads, got: %s", block)
	}
	if !strings.Contains(block, `"a"`) {
		t.Fatalf("expected the default-graph quad to be rendered inline: %s", block)
	}
}
