package store

import (
	"testing"

	"github.com/geoknoesis/rdfgraph/pkg/rdf"
)

func q(s, p, o string) *rdf.Quad {
	return rdf.NewQuad(rdf.NewNamedNode(s), rdf.NewNamedNode(p), rdf.NewLiteral(o), nil)
}

func TestImmutableStore_AddIsImmutable(t *testing.T) {
	base := NewImmutableStore()
	quad := q("http://ex/a", "http://ex/p", "v")

	after := base.Add(quad)

	if base.Len() != 0 {
		t.Errorf("expected receiver to remain unchanged, got len %d", base.Len())
	}
	if after.Len() != 1 {
		t.Errorf("expected new store to have 1 quad, got %d", after.Len())
	}
	if !after.Contains(quad) {
		t.Errorf("expected new store to contain the added quad")
	}
}

func TestImmutableStore_AddIdempotent(t *testing.T) {
	quad := q("http://ex/a", "http://ex/p", "v")
	s := NewImmutableStore().Add(quad).Add(quad)
	if s.Len() != 1 {
		t.Errorf("expected duplicate add to be a no-op, got len %d", s.Len())
	}
}

func TestImmutableStore_AddThenRemoveIsEquivalent(t *testing.T) {
	quads := []*rdf.Quad{
		q("http://ex/a", "http://ex/p", "1"),
		q("http://ex/b", "http://ex/p", "2"),
		q("http://ex/c", "http://ex/p", "3"),
	}
	base := NewImmutableStore().Add(q("http://ex/seed", "http://ex/p", "0"))

	result := base.AddAll(quads).RemoveAll(quads)

	if !result.Equals(base) {
		t.Errorf("expected add-then-remove to be equivalent to the base store")
	}
}

func TestImmutableStore_RemoveAbsentIsNoOp(t *testing.T) {
	base := NewImmutableStore().Add(q("http://ex/a", "http://ex/p", "1"))
	result := base.Remove(q("http://ex/nope", "http://ex/p", "x"))
	if !result.Equals(base) {
		t.Errorf("expected removing an absent quad to be a no-op")
	}
}

func TestImmutableStore_EqualsIgnoresInsertionOrder(t *testing.T) {
	a := q("http://ex/a", "http://ex/p", "1")
	b := q("http://ex/b", "http://ex/p", "2")

	s1 := NewImmutableStore().Add(a).Add(b)
	s2 := NewImmutableStore().Add(b).Add(a)

	if !s1.Equals(s2) {
		t.Errorf("expected stores with the same quads in different insertion order to be equal")
	}
}

func TestImmutableStore_FindByPattern(t *testing.T) {
	alice := rdf.NewNamedNode("http://ex/alice")
	name := rdf.NewNamedNode("http://ex/name")
	s := NewImmutableStore().
		Add(rdf.NewQuad(alice, name, rdf.NewLiteral("Alice"), nil)).
		Add(rdf.NewQuad(alice, rdf.NewNamedNode("http://ex/age"), rdf.NewIntegerLiteral(30), nil))

	matches := s.Find(alice, name, nil, nil)
	if len(matches) != 1 {
		t.Fatalf("expected 1 match, got %d", len(matches))
	}
	if matches[0].Object.(*rdf.Literal).Value != "Alice" {
		t.Errorf("unexpected match: %v", matches[0])
	}
}

func TestImmutableStore_ManyQuadsRoundTrip(t *testing.T) {
	s := NewImmutableStore()
	var quads []*rdf.Quad
	for i := 0; i < 200; i++ {
		quad := rdf.NewQuad(
			rdf.NewNamedNode("http://ex/s"),
			rdf.NewNamedNode("http://ex/p"),
			rdf.NewIntegerLiteral(int64(i)),
			nil,
		)
		quads = append(quads, quad)
		s = s.Add(quad)
	}
	if s.Len() != 200 {
		t.Fatalf("expected 200 quads, got %d", s.Len())
	}
	for _, quad := range quads {
		if !s.Contains(quad) {
			t.Errorf("expected store to contain quad %v", quad)
		}
	}
}
