package rdf

import (
	"strings"
	"testing"
)

const devicesNS = `xmlns:rdf="http://www.w3.org/1999/02/22-rdf-syntax-ns#"
         xmlns:dv="http://devices.example/"`

func TestRDFXMLParser_SingleProperty(t *testing.T) {
	input := `<?xml version="1.0"?>
<rdf:RDF ` + devicesNS + `>
  <rdf:Description rdf:about="http://devices.example/thermostat1">
    <dv:label>Thermostat</dv:label>
  </rdf:Description>
</rdf:RDF>`

	parser := NewRDFXMLParser()
	quads, err := parser.Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(quads) != 1 {
		t.Fatalf("expected 1 quad, got %d", len(quads))
	}

	quad := quads[0]
	if iriOf(quad.Subject) != "http://devices.example/thermostat1" {
		t.Errorf("wrong subject: %s", iriOf(quad.Subject))
	}
	if iriOf(quad.Predicate) != "http://devices.example/label" {
		t.Errorf("wrong predicate: %s", iriOf(quad.Predicate))
	}
	literal, ok := quad.Object.(*Literal)
	if !ok {
		t.Fatalf("expected literal object, got %T", quad.Object)
	}
	if literal.Value != "Thermostat" {
		t.Errorf("expected value 'Thermostat', got %q", literal.Value)
	}
}

func TestRDFXMLParser_MultiplePropertiesSameSubject(t *testing.T) {
	input := `<?xml version="1.0"?>
<rdf:RDF ` + devicesNS + `>
  <rdf:Description rdf:about="http://devices.example/thermostat1">
    <dv:label>Thermostat</dv:label>
    <dv:floor>3</dv:floor>
    <dv:room>Lobby</dv:room>
  </rdf:Description>
</rdf:RDF>`

	parser := NewRDFXMLParser()
	quads, err := parser.Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(quads) != 3 {
		t.Fatalf("expected 3 quads, got %d", len(quads))
	}

	for i, quad := range quads {
		if iriOf(quad.Subject) != "http://devices.example/thermostat1" {
			t.Errorf("quad %d: wrong subject: %s", i, iriOf(quad.Subject))
		}
	}

	expected := map[string]string{
		"http://devices.example/label": "Thermostat",
		"http://devices.example/floor": "3",
		"http://devices.example/room":  "Lobby",
	}
	for i, quad := range quads {
		predicate := iriOf(quad.Predicate)
		want, ok := expected[predicate]
		if !ok {
			t.Errorf("quad %d: unexpected predicate %s", i, predicate)
			continue
		}
		literal, ok := quad.Object.(*Literal)
		if !ok {
			t.Errorf("quad %d: expected literal object, got %T", i, quad.Object)
			continue
		}
		if literal.Value != want {
			t.Errorf("quad %d: expected value %q, got %q", i, want, literal.Value)
		}
	}
}

func TestRDFXMLParser_ResourceAttribute(t *testing.T) {
	input := `<?xml version="1.0"?>
<rdf:RDF ` + devicesNS + `>
  <rdf:Description rdf:about="http://devices.example/thermostat1">
    <dv:controlledBy rdf:resource="http://devices.example/hub1"/>
  </rdf:Description>
</rdf:RDF>`

	parser := NewRDFXMLParser()
	quads, err := parser.Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(quads) != 1 {
		t.Fatalf("expected 1 quad, got %d", len(quads))
	}
	if iriOf(quads[0].Object) != "http://devices.example/hub1" {
		t.Errorf("expected object IRI http://devices.example/hub1, got %s", iriOf(quads[0].Object))
	}
}

func TestRDFXMLParser_TypedLiteral(t *testing.T) {
	input := `<?xml version="1.0"?>
<rdf:RDF ` + devicesNS + `
         xmlns:xsd="http://www.w3.org/2001/XMLSchema#">
  <rdf:Description rdf:about="http://devices.example/thermostat1">
    <dv:floor rdf:datatype="http://www.w3.org/2001/XMLSchema#integer">3</dv:floor>
  </rdf:Description>
</rdf:RDF>`

	parser := NewRDFXMLParser()
	quads, err := parser.Parse(strings.NewReader(input))
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
	if literal.Value != "3" {
		t.Errorf("expected value '3', got %q", literal.Value)
	}
	if literal.Datatype == nil || literal.Datatype.IRI != "http://www.w3.org/2001/XMLSchema#integer" {
		t.Errorf("expected xsd:integer datatype, got %v", literal.Datatype)
	}
}

func TestRDFXMLParser_LanguageTaggedLiterals(t *testing.T) {
	input := `<?xml version="1.0"?>
<rdf:RDF ` + devicesNS + `>
  <rdf:Description rdf:about="http://devices.example/thermostat1">
    <dv:label xml:lang="en">Thermostat</dv:label>
    <dv:label xml:lang="de">Thermostat-Regler</dv:label>
  </rdf:Description>
</rdf:RDF>`

	parser := NewRDFXMLParser()
	quads, err := parser.Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(quads) != 2 {
		t.Fatalf("expected 2 quads, got %d", len(quads))
	}

	lit0, ok := quads[0].Object.(*Literal)
	if !ok || lit0.Value != "Thermostat" || lit0.Language != "en" {
		t.Errorf("quad 0: expected 'Thermostat'@en, got %v", quads[0].Object)
	}
	lit1, ok := quads[1].Object.(*Literal)
	if !ok || lit1.Value != "Thermostat-Regler" || lit1.Language != "de" {
		t.Errorf("quad 1: expected 'Thermostat-Regler'@de, got %v", quads[1].Object)
	}
}

func TestRDFXMLParser_AnonymousDescriptionIsBlankNode(t *testing.T) {
	input := `<?xml version="1.0"?>
<rdf:RDF ` + devicesNS + `>
  <rdf:Description>
    <dv:label>Unregistered sensor</dv:label>
  </rdf:Description>
</rdf:RDF>`

	parser := NewRDFXMLParser()
	quads, err := parser.Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(quads) != 1 {
		t.Fatalf("expected 1 quad, got %d", len(quads))
	}
	if _, ok := quads[0].Subject.(*BlankNode); !ok {
		t.Errorf("expected blank node subject, got %T", quads[0].Subject)
	}
}

func TestRDFXMLParser_NestedDescriptionSharesBlankNodeID(t *testing.T) {
	input := `<?xml version="1.0"?>
<rdf:RDF ` + devicesNS + `>
  <rdf:Description rdf:about="http://devices.example/thermostat1">
    <dv:installedIn>
      <rdf:Description>
        <dv:building>Tower A</dv:building>
        <dv:floorPlan>West wing</dv:floorPlan>
      </rdf:Description>
    </dv:installedIn>
  </rdf:Description>
</rdf:RDF>`

	parser := NewRDFXMLParser()
	quads, err := parser.Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(quads) != 3 {
		t.Fatalf("expected 3 quads, got %d", len(quads))
	}

	if iriOf(quads[0].Subject) != "http://devices.example/thermostat1" {
		t.Errorf("quad 0: wrong subject: %s", iriOf(quads[0].Subject))
	}
	if iriOf(quads[0].Predicate) != "http://devices.example/installedIn" {
		t.Errorf("quad 0: wrong predicate: %s", iriOf(quads[0].Predicate))
	}
	location, ok := quads[0].Object.(*BlankNode)
	if !ok {
		t.Fatalf("quad 0: expected blank node object, got %T", quads[0].Object)
	}

	subj1, ok := quads[1].Subject.(*BlankNode)
	if !ok || subj1.ID != location.ID {
		t.Errorf("quad 1: expected blank node subject matching %s, got %v", location.ID, quads[1].Subject)
	}
	subj2, ok := quads[2].Subject.(*BlankNode)
	if !ok || subj2.ID != location.ID {
		t.Errorf("quad 2: expected blank node subject matching %s, got %v", location.ID, quads[2].Subject)
	}
}

func TestRDFXMLParser_MultipleDescriptionsDistinctSubjects(t *testing.T) {
	input := `<?xml version="1.0"?>
<rdf:RDF ` + devicesNS + `>
  <rdf:Description rdf:about="http://devices.example/thermostat1">
    <dv:label>Thermostat One</dv:label>
  </rdf:Description>
  <rdf:Description rdf:about="http://devices.example/thermostat2">
    <dv:label>Thermostat Two</dv:label>
  </rdf:Description>
</rdf:RDF>`

	parser := NewRDFXMLParser()
	quads, err := parser.Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(quads) != 2 {
		t.Fatalf("expected 2 quads, got %d", len(quads))
	}
	if got := iriOf(quads[0].Subject); got != "http://devices.example/thermostat1" {
		t.Errorf("quad 0: expected subject thermostat1, got %s", got)
	}
	if got := iriOf(quads[1].Subject); got != "http://devices.example/thermostat2" {
		t.Errorf("quad 1: expected subject thermostat2, got %s", got)
	}
}

func TestRDFXMLParser_EmptyElementProducesEmptyLiteral(t *testing.T) {
	input := `<?xml version="1.0"?>
<rdf:RDF ` + devicesNS + `>
  <rdf:Description rdf:about="http://devices.example/thermostat1">
    <dv:note></dv:note>
  </rdf:Description>
</rdf:RDF>`

	parser := NewRDFXMLParser()
	quads, err := parser.Parse(strings.NewReader(input))
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
	if literal.Value != "" {
		t.Errorf("expected empty string, got %q", literal.Value)
	}
}

func TestRDFXMLParser_LiteralWhitespacePreserved(t *testing.T) {
	input := `<?xml version="1.0"?>
<rdf:RDF ` + devicesNS + `>
  <rdf:Description rdf:about="http://devices.example/thermostat1">
    <dv:note>  needs recalibration  </dv:note>
  </rdf:Description>
</rdf:RDF>`

	parser := NewRDFXMLParser()
	quads, err := parser.Parse(strings.NewReader(input))
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
	want := "  needs recalibration  "
	if literal.Value != want {
		t.Errorf("expected %q, got %q", want, literal.Value)
	}
}

func TestRDFXMLParser_AllQuadsLandInDefaultGraph(t *testing.T) {
	input := `<?xml version="1.0"?>
<rdf:RDF ` + devicesNS + `>
  <rdf:Description rdf:about="http://devices.example/thermostat1">
    <dv:label>Thermostat</dv:label>
    <dv:floor>3</dv:floor>
  </rdf:Description>
</rdf:RDF>`

	parser := NewRDFXMLParser()
	quads, err := parser.Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	for i, quad := range quads {
		if !IsDefaultGraph(quad.Graph) {
			t.Errorf("quad %d: expected default graph, got %T", i, quad.Graph)
		}
	}
}
