package rdf

import "testing"

func iriOf(t Term) string {
	if nn, ok := t.(*NamedNode); ok {
		return nn.IRI
	}
	return ""
}

// turtleCase checks a parsed document against the flattened (predicate,
// object) pairs expected for a single fixed subject.
type turtleCase struct {
	name    string
	input   string
	subject string
	pairs   [][2]string // predicate IRI, object IRI
}

func TestTurtleParser_PropertyLists(t *testing.T) {
	cases := []turtleCase{
		{
			name: "comma-separated objects",
			input: `@prefix cat: <http://catalog.example/> .
cat:widget cat:tag cat:blue, cat:metal, cat:onSale .`,
			subject: "http://catalog.example/widget",
			pairs: [][2]string{
				{"http://catalog.example/tag", "http://catalog.example/blue"},
				{"http://catalog.example/tag", "http://catalog.example/metal"},
				{"http://catalog.example/tag", "http://catalog.example/onSale"},
			},
		},
		{
			name: "semicolon-separated predicates",
			input: `@prefix cat: <http://catalog.example/> .
cat:widget cat:sku cat:w100 ; cat:category cat:hardware .`,
			subject: "http://catalog.example/widget",
			pairs: [][2]string{
				{"http://catalog.example/sku", "http://catalog.example/w100"},
				{"http://catalog.example/category", "http://catalog.example/hardware"},
			},
		},
		{
			name: "semicolon and comma combined",
			input: `@prefix cat: <http://catalog.example/> .
cat:widget cat:tag cat:blue, cat:metal ; cat:category cat:hardware, cat:tools .`,
			subject: "http://catalog.example/widget",
			pairs: [][2]string{
				{"http://catalog.example/tag", "http://catalog.example/blue"},
				{"http://catalog.example/tag", "http://catalog.example/metal"},
				{"http://catalog.example/category", "http://catalog.example/hardware"},
				{"http://catalog.example/category", "http://catalog.example/tools"},
			},
		},
		{
			name: "keyword a expands to rdf:type",
			input: `@prefix cat: <http://catalog.example/> .
cat:widget a cat:Tool, cat:Hardware .`,
			subject: "http://catalog.example/widget",
			pairs: [][2]string{
				{"http://www.w3.org/1999/02/22-rdf-syntax-ns#type", "http://catalog.example/Tool"},
				{"http://www.w3.org/1999/02/22-rdf-syntax-ns#type", "http://catalog.example/Hardware"},
			},
		},
		{
			name: "trailing semicolon is ignored",
			input: `@prefix cat: <http://catalog.example/> .
cat:widget cat:sku cat:w100 ; .`,
			subject: "http://catalog.example/widget",
			pairs: [][2]string{
				{"http://catalog.example/sku", "http://catalog.example/w100"},
			},
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			triples, err := NewTurtleParser(c.input).Parse()
			if err != nil {
				t.Fatalf("Parse failed: %v", err)
			}
			if len(triples) != len(c.pairs) {
				t.Fatalf("expected %d triples, got %d", len(c.pairs), len(triples))
			}
			for i, triple := range triples {
				if iriOf(triple.Subject) != c.subject {
					t.Errorf("triple %d: wrong subject %s", i, iriOf(triple.Subject))
				}
				if iriOf(triple.Predicate) != c.pairs[i][0] {
					t.Errorf("triple %d: expected predicate %s, got %s", i, c.pairs[i][0], iriOf(triple.Predicate))
				}
				if iriOf(triple.Object) != c.pairs[i][1] {
					t.Errorf("triple %d: expected object %s, got %s", i, c.pairs[i][1], iriOf(triple.Object))
				}
			}
		})
	}
}

func TestTurtleParser_PrefixedNameWithEmbeddedColon(t *testing.T) {
	input := `@prefix cat: <http://catalog.example/> .
cat:widget cat:relatedSku cat:sku:W-100-A .`

	triples, err := NewTurtleParser(input).Parse()
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(triples) != 1 {
		t.Fatalf("expected 1 triple, got %d", len(triples))
	}
	want := "http://catalog.example/sku:W-100-A"
	if got := iriOf(triples[0].Object); got != want {
		t.Errorf("expected object %s, got %s", want, got)
	}
}

func TestTurtleParser_EmptyPrefixDecl(t *testing.T) {
	input := `@prefix : <http://catalog.example/> .
:widget :sku :w100 .`

	triples, err := NewTurtleParser(input).Parse()
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(triples) != 1 {
		t.Fatalf("expected 1 triple, got %d", len(triples))
	}
	want := "http://catalog.example/widget"
	if got := iriOf(triples[0].Subject); got != want {
		t.Errorf("expected subject %s, got %s", want, got)
	}
}

func TestTurtleParser_CommentsIgnored(t *testing.T) {
	input := `# catalog entry
@prefix cat: <http://catalog.example/> .
# one widget
cat:widget cat:sku cat:w100 . # inline note`

	triples, err := NewTurtleParser(input).Parse()
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(triples) != 1 {
		t.Fatalf("expected 1 triple, got %d", len(triples))
	}
}

func TestTurtleParser_DatatypeViaPrefixedName(t *testing.T) {
	input := `@prefix xsd: <http://www.w3.org/2001/XMLSchema#> .
@prefix cat: <http://catalog.example/> .
cat:widget cat:releaseDate "2031-06-15"^^xsd:date .`

	triples, err := NewTurtleParser(input).Parse()
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(triples) != 1 {
		t.Fatalf("expected 1 triple, got %d", len(triples))
	}

	literal, ok := triples[0].Object.(*Literal)
	if !ok {
		t.Fatalf("object is not a literal")
	}
	if literal.Value != "2031-06-15" {
		t.Errorf("expected literal value 2031-06-15, got %q", literal.Value)
	}
	if literal.Datatype == nil || literal.Datatype.IRI != "http://www.w3.org/2001/XMLSchema#date" {
		t.Errorf("expected xsd:date datatype, got %v", literal.Datatype)
	}
}

func TestTurtleParser_LanguageTaggedLiteral(t *testing.T) {
	input := `@prefix cat: <http://catalog.example/> .
cat:widget cat:label "lug wrench"@en .`

	triples, err := NewTurtleParser(input).Parse()
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	literal, ok := triples[0].Object.(*Literal)
	if !ok {
		t.Fatalf("object is not a literal")
	}
	if literal.Value != "lug wrench" {
		t.Errorf("expected value 'lug wrench', got %q", literal.Value)
	}
	if literal.Language != "en" {
		t.Errorf("expected language 'en', got %q", literal.Language)
	}
}

func TestTurtleParser_NumericLiteralForms(t *testing.T) {
	input := `@prefix cat: <http://catalog.example/> .
cat:widget cat:quantity 42 .
cat:widget cat:weightKg 1.35 .
cat:widget cat:adjustment -7 .`

	triples, err := NewTurtleParser(input).Parse()
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(triples) != 3 {
		t.Fatalf("expected 3 triples, got %d", len(triples))
	}

	want := []string{"42", "1.35", "-7"}
	for i, w := range want {
		lit, ok := triples[i].Object.(*Literal)
		if !ok {
			t.Fatalf("triple %d: object is not a literal", i)
		}
		if lit.Value != w {
			t.Errorf("triple %d: expected value %q, got %q", i, w, lit.Value)
		}
	}
}

func TestTurtleParser_BlankNodeSubjectAndObject(t *testing.T) {
	input := `@prefix cat: <http://catalog.example/> .
_:batch1 cat:sku cat:w100 .
cat:widget cat:partOf _:batch2 .`

	triples, err := NewTurtleParser(input).Parse()
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(triples) != 2 {
		t.Fatalf("expected 2 triples, got %d", len(triples))
	}
	if _, ok := triples[0].Subject.(*BlankNode); !ok {
		t.Errorf("first triple subject should be a blank node")
	}
	if _, ok := triples[1].Object.(*BlankNode); !ok {
		t.Errorf("second triple object should be a blank node")
	}
}

func TestTurtleParser_StringEscapeSequences(t *testing.T) {
	input := `@prefix cat: <http://catalog.example/> .
cat:widget cat:note "line one\nline two\ttabbed \"quoted\"" .`

	triples, err := NewTurtleParser(input).Parse()
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	literal, ok := triples[0].Object.(*Literal)
	if !ok {
		t.Fatalf("object is not a literal")
	}
	want := "line one\nline two\ttabbed \"quoted\""
	if literal.Value != want {
		t.Errorf("expected %q, got %q", want, literal.Value)
	}
}
