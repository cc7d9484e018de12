package sparql

import (
	"strings"
	"testing"

	"github.com/geoknoesis/rdfgraph/internal/sparql/parser"
	"github.com/geoknoesis/rdfgraph/pkg/rdf"
)

func TestPrepareQuery_InjectsIdentityIntoFrom(t *testing.T) {
	ast, err := PrepareQuery("SELECT ?s WHERE { ?s ?p ?o }", Select, rdf.NewNamedNode("http://ex/g1"), nil)
	if err != nil {
		t.Fatalf("PrepareQuery: %v", err)
	}
	if len(ast.From) != 1 || ast.From[0] != "http://ex/g1" {
		t.Fatalf("expected FROM to contain the graph identity, got %v", ast.From)
	}
}

func TestPrepareQuery_FromUnionIsIdempotent(t *testing.T) {
	ast, err := PrepareQuery("SELECT ?s FROM <http://ex/other> WHERE { ?s ?p ?o }", Select, rdf.NewNamedNode("http://ex/other"), nil)
	if err != nil {
		t.Fatalf("PrepareQuery: %v", err)
	}
	if len(ast.From) != 1 {
		t.Fatalf("expected a single FROM entry after union with an identical existing one, got %v", ast.From)
	}
}

func TestPrepareQuery_WrongKindFails(t *testing.T) {
	_, err := PrepareQuery("SELECT ?s WHERE { ?s ?p ?o }", Ask, nil, nil)
	if err == nil {
		t.Fatal("expected QueryShapeError for a SELECT query prepared as ASK")
	}
}

func TestPrepareQuery_MergesGlobalPrefixes(t *testing.T) {
	ast, err := PrepareQuery("SELECT ?s WHERE { ?s ?p ?o }", Select, nil, map[string]string{"ex": "http://example.org/"})
	if err != nil {
		t.Fatalf("PrepareQuery: %v", err)
	}
	if ast.Prefixes["ex"] != "http://example.org/" {
		t.Fatalf("expected global prefix to be merged, got %v", ast.Prefixes)
	}
}

func TestStringify_RoundTripsThroughParser(t *testing.T) {
	ast, err := ParseQuery("SELECT ?s WHERE { ?s <http://ex/p> ?o }")
	if err != nil {
		t.Fatalf("ParseQuery: %v", err)
	}
	text := Stringify(ast)
	if _, err := ParseQuery(text); err != nil {
		t.Fatalf("Stringify produced unparseable query: %v\n%s", err, text)
	}
	if !strings.Contains(text, "SELECT") || !strings.Contains(text, "<http://ex/p>") {
		t.Fatalf("unexpected stringified query: %s", text)
	}
}

func TestPrepareUpdate_WrapsInsertDataWithIdentity(t *testing.T) {
	ast, err := PrepareUpdate(`INSERT DATA { <http://ex/s> <http://ex/p> "v" }`, rdf.NewNamedNode("http://ex/g1"), nil)
	if err != nil {
		t.Fatalf("PrepareUpdate: %v", err)
	}
	op := ast.Operations[0]
	if len(op.Data) != 1 || op.Data[0].Graph != "http://ex/g1" {
		t.Fatalf("expected quad to be wrapped in identity graph, got %+v", op.Data)
	}
}

func TestPrepareUpdate_LeavesExplicitGraphAlone(t *testing.T) {
	ast, err := PrepareUpdate(`INSERT DATA { GRAPH <http://ex/other> { <http://ex/s> <http://ex/p> "v" } }`, rdf.NewNamedNode("http://ex/g1"), nil)
	if err != nil {
		t.Fatalf("PrepareUpdate: %v", err)
	}
	op := ast.Operations[0]
	if op.Data[0].Graph != "http://ex/other" {
		t.Fatalf("expected explicit GRAPH to be preserved, got %q", op.Data[0].Graph)
	}
}

func TestSubstituteBindings_ReplacesBoundVariable(t *testing.T) {
	ast, err := ParseQuery("SELECT ?s WHERE { ?s <http://ex/p> ?o }")
	if err != nil {
		t.Fatalf("ParseQuery: %v", err)
	}
	result := SubstituteBindings(ast, Bindings{"o": rdf.NewLiteral("val")}).(*parser.Query)
	obj := result.Select.Where.Patterns[0].Object
	if obj.IsVariable() {
		t.Fatalf("expected ?o to be substituted with a bound literal")
	}
	lit, ok := obj.Term.(*rdf.Literal)
	if !ok || lit.Value != "val" {
		t.Fatalf("expected substituted object to be literal \"val\", got %v", obj.Term)
	}
}
