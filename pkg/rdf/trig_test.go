package rdf

import "testing"

func TestTriGParser_DefaultGraphOnly(t *testing.T) {
	input := `@prefix sn: <http://sensors.example/> .
sn:device1 sn:status "online" .`

	quads, err := NewTriGParser(input).Parse()
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(quads) != 1 {
		t.Fatalf("expected 1 quad, got %d", len(quads))
	}

	q := quads[0]
	if iriOf(q.Subject) != "http://sensors.example/device1" {
		t.Errorf("wrong subject: %s", iriOf(q.Subject))
	}
	if iriOf(q.Predicate) != "http://sensors.example/status" {
		t.Errorf("wrong predicate: %s", iriOf(q.Predicate))
	}
	if !IsDefaultGraph(q.Graph) {
		t.Errorf("expected default graph, got %T", q.Graph)
	}
}

func TestTriGParser_SingleNamedGraph(t *testing.T) {
	input := `@prefix sn: <http://sensors.example/> .

GRAPH sn:readings2031 {
  sn:device1 sn:temperature 21 .
  sn:device1 sn:humidity 44 .
}`

	quads, err := NewTriGParser(input).Parse()
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(quads) != 2 {
		t.Fatalf("expected 2 quads, got %d", len(quads))
	}
	for i, q := range quads {
		g, ok := q.Graph.(*NamedNode)
		if !ok {
			t.Fatalf("quad %d: expected named graph, got %T", i, q.Graph)
		}
		if g.IRI != "http://sensors.example/readings2031" {
			t.Errorf("quad %d: wrong graph IRI %s", i, g.IRI)
		}
	}
}

func TestTriGParser_DefaultAndNamedInterleaved(t *testing.T) {
	input := `@prefix sn: <http://sensors.example/> .

sn:device1 sn:status "online" .

GRAPH sn:readings2031 {
  sn:device1 sn:temperature 21 .
}

sn:device2 sn:status "offline" .`

	quads, err := NewTriGParser(input).Parse()
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(quads) != 3 {
		t.Fatalf("expected 3 quads, got %d", len(quads))
	}

	if !IsDefaultGraph(quads[0].Graph) {
		t.Errorf("quad 0: expected default graph, got %T", quads[0].Graph)
	}
	if g, ok := quads[1].Graph.(*NamedNode); !ok || g.IRI != "http://sensors.example/readings2031" {
		t.Errorf("quad 1: expected readings2031 graph, got %v", quads[1].Graph)
	}
	if !IsDefaultGraph(quads[2].Graph) {
		t.Errorf("quad 2: expected default graph, got %T", quads[2].Graph)
	}
}

func TestTriGParser_EmptyPrefixAndNamedGraph(t *testing.T) {
	input := `PREFIX : <http://sensors.example/>

:device1 :status "online" .

GRAPH :readings {
  :device1 :temperature 19 .
}`

	quads, err := NewTriGParser(input).Parse()
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(quads) != 2 {
		t.Fatalf("expected 2 quads, got %d", len(quads))
	}
	if iriOf(quads[0].Subject) != "http://sensors.example/device1" {
		t.Errorf("quad 0: wrong subject %s", iriOf(quads[0].Subject))
	}
	g, ok := quads[1].Graph.(*NamedNode)
	if !ok || g.IRI != "http://sensors.example/readings" {
		t.Errorf("quad 1: expected readings graph, got %v", quads[1].Graph)
	}
}

func TestTriGParser_MultipleNamedGraphs(t *testing.T) {
	input := `@prefix sn: <http://sensors.example/> .

GRAPH sn:floor1 {
  sn:device1 sn:status "online" .
}

GRAPH sn:floor2 {
  sn:device2 sn:status "offline" .
}`

	quads, err := NewTriGParser(input).Parse()
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(quads) != 2 {
		t.Fatalf("expected 2 quads, got %d", len(quads))
	}
	wantGraphs := []string{"http://sensors.example/floor1", "http://sensors.example/floor2"}
	for i, q := range quads {
		g, ok := q.Graph.(*NamedNode)
		if !ok {
			t.Fatalf("quad %d: expected named graph, got %T", i, q.Graph)
		}
		if g.IRI != wantGraphs[i] {
			t.Errorf("quad %d: expected graph %s, got %s", i, wantGraphs[i], g.IRI)
		}
	}
}

func TestTriGParser_BlankNodeInsideNamedGraph(t *testing.T) {
	input := `@prefix sn: <http://sensors.example/> .

GRAPH sn:floor1 {
  _:reading sn:value "19.5" .
  sn:device1 sn:lastReading _:reading .
}`

	quads, err := NewTriGParser(input).Parse()
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(quads) != 2 {
		t.Fatalf("expected 2 quads, got %d", len(quads))
	}
	if _, ok := quads[0].Subject.(*BlankNode); !ok {
		t.Errorf("quad 0: expected blank node subject, got %T", quads[0].Subject)
	}
	if _, ok := quads[1].Object.(*BlankNode); !ok {
		t.Errorf("quad 1: expected blank node object, got %T", quads[1].Object)
	}
}

func TestTriGParser_LiteralFormsInsideNamedGraph(t *testing.T) {
	input := `@prefix sn: <http://sensors.example/> .
@prefix xsd: <http://www.w3.org/2001/XMLSchema#> .

GRAPH sn:floor1 {
  sn:device1 sn:label "lobby sensor" .
  sn:device1 sn:batteryPercent "87"^^xsd:integer .
  sn:device1 sn:nickname "Lobby"@en .
}`

	quads, err := NewTriGParser(input).Parse()
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(quads) != 3 {
		t.Fatalf("expected 3 quads, got %d", len(quads))
	}

	plain, ok := quads[0].Object.(*Literal)
	if !ok || plain.Value != "lobby sensor" {
		t.Errorf("quad 0: expected plain literal 'lobby sensor', got %v", quads[0].Object)
	}

	typed, ok := quads[1].Object.(*Literal)
	if !ok || typed.Value != "87" {
		t.Errorf("quad 1: expected literal '87', got %v", quads[1].Object)
	} else if typed.Datatype == nil || typed.Datatype.IRI != "http://www.w3.org/2001/XMLSchema#integer" {
		t.Errorf("quad 1: wrong datatype %v", typed.Datatype)
	}

	tagged, ok := quads[2].Object.(*Literal)
	if !ok || tagged.Value != "Lobby" || tagged.Language != "en" {
		t.Errorf("quad 2: expected language-tagged 'Lobby'@en, got %v", quads[2].Object)
	}
}

func TestTriGParser_CommentsIgnored(t *testing.T) {
	input := `# telemetry snapshot
@prefix sn: <http://sensors.example/> .

# default graph status
sn:device1 sn:status "online" .

# named graph of readings
GRAPH sn:floor1 {
  # one reading
  sn:device2 sn:status "offline" . # inline note
}`

	quads, err := NewTriGParser(input).Parse()
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(quads) != 2 {
		t.Fatalf("expected 2 quads, got %d", len(quads))
	}
}

func TestTriGParser_BaseDeclarationAppliesInsideGraphs(t *testing.T) {
	input := `BASE <http://sensors.example/>

<device1> <status> "online" .

GRAPH <floor1> {
  <device2> <status> "offline" .
}`

	quads, err := NewTriGParser(input).Parse()
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(quads) != 2 {
		t.Fatalf("expected 2 quads, got %d", len(quads))
	}
	if iriOf(quads[0].Subject) != "http://sensors.example/device1" {
		t.Errorf("quad 0: base not applied to subject: %s", iriOf(quads[0].Subject))
	}
	g, ok := quads[1].Graph.(*NamedNode)
	if !ok || g.IRI != "http://sensors.example/floor1" {
		t.Errorf("quad 1: base not applied to graph: %v", quads[1].Graph)
	}
}

func TestTriGParser_EscapedStringInsideNamedGraph(t *testing.T) {
	input := `@prefix sn: <http://sensors.example/> .

GRAPH sn:floor1 {
  sn:device1 sn:note "line1\nline2\ttabbed \"quoted\"" .
}`

	quads, err := NewTriGParser(input).Parse()
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(quads) != 1 {
		t.Fatalf("expected 1 quad, got %d", len(quads))
	}
	literal, ok := quads[0].Object.(*Literal)
	if !ok {
		t.Fatalf("expected literal object, got %T", quads[0].Object)
	}
	want := "line1\nline2\ttabbed \"quoted\""
	if literal.Value != want {
		t.Errorf("expected %q, got %q", want, literal.Value)
	}
}
