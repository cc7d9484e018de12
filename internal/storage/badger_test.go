package storage

import (
	"testing"

	"github.com/geoknoesis/rdfgraph/internal/encoding"
	"github.com/geoknoesis/rdfgraph/pkg/rdf"
	"github.com/geoknoesis/rdfgraph/pkg/store"
)

func newDeviceTripleStore(t *testing.T) *store.TripleStore {
	t.Helper()
	storage, err := NewBadgerStorageInMemory()
	if err != nil {
		t.Fatalf("failed to create storage: %v", err)
	}
	t.Cleanup(func() { storage.Close() })
	return store.NewTripleStore(storage, encoding.NewTermEncoder(), encoding.NewTermDecoder())
}

func TestBatchInsertAndQuery(t *testing.T) {
	ts := newDeviceTripleStore(t)

	quads := []*rdf.Quad{
		rdf.NewQuad(
			rdf.NewNamedNode("http://devices.example/thermostat1"),
			rdf.NewNamedNode("http://devices.example/label"),
			rdf.NewLiteral("Thermostat One"),
			rdf.NewDefaultGraph(),
		),
		rdf.NewQuad(
			rdf.NewNamedNode("http://devices.example/thermostat2"),
			rdf.NewNamedNode("http://devices.example/label"),
			rdf.NewLiteral("Thermostat Two"),
			rdf.NewDefaultGraph(),
		),
		rdf.NewQuad(
			rdf.NewNamedNode("http://devices.example/hub1"),
			rdf.NewNamedNode("http://devices.example/label"),
			rdf.NewLiteral("Hub One"),
			rdf.NewNamedNode("http://devices.example/floor1readings"),
		),
	}

	if err := ts.InsertQuadsBatch(quads); err != nil {
		t.Fatalf("failed to batch insert: %v", err)
	}

	count, err := ts.Count()
	if err != nil {
		t.Fatalf("failed to count: %v", err)
	}
	if count != 3 {
		t.Errorf("expected count 3, got %d", count)
	}

	defaultGraphPattern := &store.Pattern{
		Subject:   &store.Variable{Name: "s"},
		Predicate: &store.Variable{Name: "p"},
		Object:    &store.Variable{Name: "o"},
		Graph:     rdf.NewDefaultGraph(),
	}

	iter, err := ts.Query(defaultGraphPattern)
	if err != nil {
		t.Fatalf("failed to query: %v", err)
	}
	defer iter.Close()

	defaultGraphCount := 0
	for iter.Next() {
		quad, err := iter.Quad()
		if err != nil {
			t.Fatalf("failed to get quad: %v", err)
		}
		if quad == nil {
			t.Fatal("got nil quad")
		}
		defaultGraphCount++
		if quad.Graph.Type() != rdf.TermTypeDefaultGraph {
			t.Errorf("expected default graph, got type %d", quad.Graph.Type())
		}
	}
	if defaultGraphCount != 2 {
		t.Errorf("expected 2 quads in default graph, got %d", defaultGraphCount)
	}

	namedGraphPattern := &store.Pattern{
		Subject:   &store.Variable{Name: "s"},
		Predicate: &store.Variable{Name: "p"},
		Object:    &store.Variable{Name: "o"},
		Graph:     rdf.NewNamedNode("http://devices.example/floor1readings"),
	}

	iter2, err := ts.Query(namedGraphPattern)
	if err != nil {
		t.Fatalf("failed to query named graph: %v", err)
	}
	defer iter2.Close()

	namedGraphCount := 0
	for iter2.Next() {
		quad, err := iter2.Quad()
		if err != nil {
			t.Fatalf("failed to get quad from named graph: %v", err)
		}
		namedGraphCount++

		subjectNode, ok := quad.Subject.(*rdf.NamedNode)
		if !ok {
			t.Error("expected NamedNode subject")
		} else if subjectNode.IRI != "http://devices.example/hub1" {
			t.Errorf("expected hub1, got %s", subjectNode.IRI)
		}
	}
	if namedGraphCount != 1 {
		t.Errorf("expected 1 quad in named graph, got %d", namedGraphCount)
	}
}

func TestBatchInsertAndQuerySpecificValues(t *testing.T) {
	ts := newDeviceTripleStore(t)

	thermostat := rdf.NewNamedNode("http://devices.example/thermostat1")
	labelProperty := rdf.NewNamedNode("http://devices.example/label")

	quads := []*rdf.Quad{
		rdf.NewQuad(thermostat, labelProperty, rdf.NewLiteral("Thermostat One"), rdf.NewDefaultGraph()),
		rdf.NewQuad(
			thermostat,
			rdf.NewNamedNode("http://devices.example/floor"),
			rdf.NewLiteralWithDatatype("3", rdf.XSDInteger),
			rdf.NewDefaultGraph(),
		),
	}

	if err := ts.InsertQuadsBatch(quads); err != nil {
		t.Fatalf("failed to batch insert: %v", err)
	}

	pattern := &store.Pattern{
		Subject:   thermostat,
		Predicate: labelProperty,
		Object:    &store.Variable{Name: "o"},
		Graph:     rdf.NewDefaultGraph(),
	}

	iter, err := ts.Query(pattern)
	if err != nil {
		t.Fatalf("failed to query: %v", err)
	}
	defer iter.Close()

	found := false
	for iter.Next() {
		quad, err := iter.Quad()
		if err != nil {
			t.Fatalf("failed to get quad: %v", err)
		}
		literal, ok := quad.Object.(*rdf.Literal)
		if !ok {
			t.Error("expected literal object")
		} else if literal.Value == "Thermostat One" {
			found = true
		}
	}
	if !found {
		t.Error("did not find thermostat1's label")
	}
}

func TestBatchDeleteAndQuery(t *testing.T) {
	ts := newDeviceTripleStore(t)

	quads := []*rdf.Quad{
		rdf.NewQuad(
			rdf.NewNamedNode("http://devices.example/thermostat1"),
			rdf.NewNamedNode("http://devices.example/label"),
			rdf.NewLiteral("Thermostat One"),
			rdf.NewDefaultGraph(),
		),
		rdf.NewQuad(
			rdf.NewNamedNode("http://devices.example/thermostat2"),
			rdf.NewNamedNode("http://devices.example/label"),
			rdf.NewLiteral("Thermostat Two"),
			rdf.NewDefaultGraph(),
		),
	}

	if err := ts.InsertQuadsBatch(quads); err != nil {
		t.Fatalf("failed to batch insert: %v", err)
	}

	count, err := ts.Count()
	if err != nil {
		t.Fatalf("failed to count: %v", err)
	}
	if count != 2 {
		t.Errorf("expected count 2 before delete, got %d", count)
	}

	if err := ts.DeleteQuadsBatch([]*rdf.Quad{quads[0]}); err != nil {
		t.Fatalf("failed to batch delete: %v", err)
	}

	count, err = ts.Count()
	if err != nil {
		t.Fatalf("failed to count after delete: %v", err)
	}
	if count != 1 {
		t.Errorf("expected count 1 after delete, got %d", count)
	}

	pattern := &store.Pattern{
		Subject:   &store.Variable{Name: "s"},
		Predicate: &store.Variable{Name: "p"},
		Object:    &store.Variable{Name: "o"},
		Graph:     rdf.NewDefaultGraph(),
	}

	iter, err := ts.Query(pattern)
	if err != nil {
		t.Fatalf("failed to query after delete: %v", err)
	}
	defer iter.Close()

	foundThermostat1, foundThermostat2 := false, false
	for iter.Next() {
		quad, err := iter.Quad()
		if err != nil {
			t.Fatalf("failed to get quad: %v", err)
		}
		subject, ok := quad.Subject.(*rdf.NamedNode)
		if !ok {
			t.Error("expected NamedNode subject")
			continue
		}
		switch subject.IRI {
		case "http://devices.example/thermostat1":
			foundThermostat1 = true
		case "http://devices.example/thermostat2":
			foundThermostat2 = true
		}
	}

	if !foundThermostat2 {
		t.Error("thermostat2 should still be present after delete")
	}
	if foundThermostat1 {
		t.Error("thermostat1 should be deleted")
	}
}

func TestRunValueLogGCDoesNotPanic(t *testing.T) {
	storage, err := NewBadgerStorageInMemory()
	if err != nil {
		t.Fatalf("failed to create storage: %v", err)
	}
	defer storage.Close()

	// In-memory mode keeps no value log to compact, and an empty on-disk
	// store has nothing to reclaim either; either way this call should
	// return cleanly rather than panic.
	_ = storage.RunValueLogGC(0.5)
}
