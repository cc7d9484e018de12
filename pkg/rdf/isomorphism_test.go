package rdf

import "testing"

func TestAreGraphsIsomorphic_BothEmpty(t *testing.T) {
	if !AreGraphsIsomorphic(nil, nil) {
		t.Error("two empty triple sets should be isomorphic")
	}
}

func TestAreGraphsIsomorphic_NoBlanksIdentical(t *testing.T) {
	a := []*Triple{
		NewTriple(NewNamedNode("http://ex.org/s"), NewNamedNode("http://ex.org/p"), NewLiteral("o")),
	}
	b := []*Triple{
		NewTriple(NewNamedNode("http://ex.org/s"), NewNamedNode("http://ex.org/p"), NewLiteral("o")),
	}
	if !AreGraphsIsomorphic(a, b) {
		t.Error("identical ground triples should be isomorphic")
	}
}

func TestAreGraphsIsomorphic_NoBlanksDiffer(t *testing.T) {
	a := []*Triple{
		NewTriple(NewNamedNode("http://ex.org/s1"), NewNamedNode("http://ex.org/p"), NewLiteral("o")),
	}
	b := []*Triple{
		NewTriple(NewNamedNode("http://ex.org/s2"), NewNamedNode("http://ex.org/p"), NewLiteral("o")),
	}
	if AreGraphsIsomorphic(a, b) {
		t.Error("triples differing in a named term should not be isomorphic")
	}
}

func TestAreGraphsIsomorphic_OneBlankRelabeled(t *testing.T) {
	a := []*Triple{
		NewTriple(&BlankNode{ID: "n0"}, NewNamedNode("http://ex.org/price"), NewLiteral("9.99")),
	}
	b := []*Triple{
		NewTriple(&BlankNode{ID: "anon42"}, NewNamedNode("http://ex.org/price"), NewLiteral("9.99")),
	}
	if !AreGraphsIsomorphic(a, b) {
		t.Error("a single relabeled blank node should not break isomorphism")
	}
}

func TestAreGraphsIsomorphic_OneBlankDifferentPredicate(t *testing.T) {
	a := []*Triple{
		NewTriple(&BlankNode{ID: "n0"}, NewNamedNode("http://ex.org/price"), NewLiteral("9.99")),
	}
	b := []*Triple{
		NewTriple(&BlankNode{ID: "n0"}, NewNamedNode("http://ex.org/weight"), NewLiteral("9.99")),
	}
	if AreGraphsIsomorphic(a, b) {
		t.Error("differing predicates must fail regardless of blank node labels")
	}
}

func TestAreGraphsIsomorphic_SharedBlankAcrossTriples(t *testing.T) {
	// A list-like shape: one blank node reused as subject for three triples.
	listOf := func(node string) []*Triple {
		return []*Triple{
			NewTriple(&BlankNode{ID: node}, rdfType, NewNamedNode(rdfNS+"Bag")),
			NewTriple(&BlankNode{ID: node}, NewNamedNode(rdfNS+"_1"), NewNamedNode("http://ex.org/item1")),
			NewTriple(&BlankNode{ID: node}, NewNamedNode(rdfNS+"_2"), NewNamedNode("http://ex.org/item2")),
		}
	}
	if !AreGraphsIsomorphic(listOf("bag"), listOf("x7")) {
		t.Error("a blank node reused across triples must map consistently, not per-occurrence")
	}
}

func TestAreGraphsIsomorphic_TwoLinkedBlanksRelabeled(t *testing.T) {
	a := []*Triple{
		NewTriple(&BlankNode{ID: "a"}, NewNamedNode("http://ex.org/knows"), &BlankNode{ID: "b"}),
		NewTriple(&BlankNode{ID: "a"}, NewNamedNode("http://ex.org/name"), NewLiteral("Ada")),
		NewTriple(&BlankNode{ID: "b"}, NewNamedNode("http://ex.org/name"), NewLiteral("Grace")),
	}
	b := []*Triple{
		NewTriple(&BlankNode{ID: "x"}, NewNamedNode("http://ex.org/knows"), &BlankNode{ID: "y"}),
		NewTriple(&BlankNode{ID: "x"}, NewNamedNode("http://ex.org/name"), NewLiteral("Ada")),
		NewTriple(&BlankNode{ID: "y"}, NewNamedNode("http://ex.org/name"), NewLiteral("Grace")),
	}
	if !AreGraphsIsomorphic(a, b) {
		t.Error("two linked blank nodes should match under a consistent relabeling")
	}
}

func TestAreGraphsIsomorphic_LinkedBlanksSwappedRoles(t *testing.T) {
	a := []*Triple{
		NewTriple(&BlankNode{ID: "a"}, NewNamedNode("http://ex.org/knows"), &BlankNode{ID: "b"}),
		NewTriple(&BlankNode{ID: "a"}, NewNamedNode("http://ex.org/name"), NewLiteral("Ada")),
		NewTriple(&BlankNode{ID: "b"}, NewNamedNode("http://ex.org/name"), NewLiteral("Grace")),
	}
	// Names swapped relative to the "knows" edge: no valid bijection exists.
	b := []*Triple{
		NewTriple(&BlankNode{ID: "x"}, NewNamedNode("http://ex.org/knows"), &BlankNode{ID: "y"}),
		NewTriple(&BlankNode{ID: "x"}, NewNamedNode("http://ex.org/name"), NewLiteral("Grace")),
		NewTriple(&BlankNode{ID: "y"}, NewNamedNode("http://ex.org/name"), NewLiteral("Ada")),
	}
	if AreGraphsIsomorphic(a, b) {
		t.Error("swapping which blank node carries which name must break isomorphism")
	}
}

func TestAreGraphsIsomorphic_TripleCountMismatch(t *testing.T) {
	a := []*Triple{
		NewTriple(&BlankNode{ID: "a"}, NewNamedNode("http://ex.org/p"), NewLiteral("v")),
	}
	b := []*Triple{
		NewTriple(&BlankNode{ID: "x"}, NewNamedNode("http://ex.org/p"), NewLiteral("v")),
		NewTriple(&BlankNode{ID: "y"}, NewNamedNode("http://ex.org/p"), NewLiteral("v2")),
	}
	if AreGraphsIsomorphic(a, b) {
		t.Error("sets of different size can never be isomorphic")
	}
}

func TestAreGraphsIsomorphic_StarShapeRelabeled(t *testing.T) {
	star := func(hub, leaf1, leaf2 string) []*Triple {
		return []*Triple{
			NewTriple(&BlankNode{ID: hub}, NewNamedNode("http://ex.org/name"), NewLiteral("Alice")),
			NewTriple(&BlankNode{ID: hub}, NewNamedNode("http://ex.org/friend"), &BlankNode{ID: leaf1}),
			NewTriple(&BlankNode{ID: hub}, NewNamedNode("http://ex.org/friend"), &BlankNode{ID: leaf2}),
			NewTriple(&BlankNode{ID: leaf1}, NewNamedNode("http://ex.org/name"), NewLiteral("Bob")),
			NewTriple(&BlankNode{ID: leaf2}, NewNamedNode("http://ex.org/name"), NewLiteral("Carol")),
		}
	}
	if !AreGraphsIsomorphic(star("p1", "p2", "p3"), star("b1", "b2", "b3")) {
		t.Error("a star of blank nodes should survive a full relabeling")
	}
}

func TestAreGraphsIsomorphic_NamedAndBlankMixed(t *testing.T) {
	a := []*Triple{
		NewTriple(NewNamedNode("http://ex.org/alice"), NewNamedNode("http://ex.org/knows"), &BlankNode{ID: "b"}),
		NewTriple(&BlankNode{ID: "b"}, NewNamedNode("http://ex.org/name"), NewLiteral("Bob")),
	}
	b := []*Triple{
		NewTriple(NewNamedNode("http://ex.org/alice"), NewNamedNode("http://ex.org/knows"), &BlankNode{ID: "friend1"}),
		NewTriple(&BlankNode{ID: "friend1"}, NewNamedNode("http://ex.org/name"), NewLiteral("Bob")),
	}
	if !AreGraphsIsomorphic(a, b) {
		t.Error("a named anchor plus one blank node should still match under relabeling")
	}
}

func TestAreGraphsIsomorphic_QuotedTripleWithBlank(t *testing.T) {
	// RDF-star: the asserted statement quotes a triple whose object is a
	// blank node; that nested blank must participate in the same bijection
	// search as top-level ones.
	quoted := func(obj string) *QuotedTriple {
		return &QuotedTriple{
			Subject:   NewNamedNode("http://ex.org/bob"),
			Predicate: NewNamedNode("http://ex.org/age"),
			Object:    &BlankNode{ID: obj},
		}
	}
	a := []*Triple{
		NewTriple(quoted("src1"), NewNamedNode("http://ex.org/certainty"), NewLiteral("0.9")),
		NewTriple(&BlankNode{ID: "src1"}, NewNamedNode("http://ex.org/name"), NewLiteral("HR dept")),
	}
	b := []*Triple{
		NewTriple(quoted("origin"), NewNamedNode("http://ex.org/certainty"), NewLiteral("0.9")),
		NewTriple(&BlankNode{ID: "origin"}, NewNamedNode("http://ex.org/name"), NewLiteral("HR dept")),
	}
	if !AreGraphsIsomorphic(a, b) {
		t.Error("a blank node nested inside a quoted triple must still map consistently")
	}
}

func TestAreQuadsIsomorphic_BothEmpty(t *testing.T) {
	if !AreQuadsIsomorphic(nil, nil) {
		t.Error("two empty quad sets should be isomorphic")
	}
}

func TestAreQuadsIsomorphic_GroundNamedGraph(t *testing.T) {
	a := []*Quad{
		NewQuad(NewNamedNode("http://ex.org/s"), NewNamedNode("http://ex.org/p"), NewLiteral("o"), NewNamedNode("http://ex.org/g")),
	}
	b := []*Quad{
		NewQuad(NewNamedNode("http://ex.org/s"), NewNamedNode("http://ex.org/p"), NewLiteral("o"), NewNamedNode("http://ex.org/g")),
	}
	if !AreQuadsIsomorphic(a, b) {
		t.Error("identical ground quads in a named graph should be isomorphic")
	}
}

func TestAreQuadsIsomorphic_BlankGraphNameRelabeled(t *testing.T) {
	a := []*Quad{
		NewQuad(NewNamedNode("http://ex.org/s"), NewNamedNode("http://ex.org/p"), NewNamedNode("http://ex.org/o"), &BlankNode{ID: "g1"}),
	}
	b := []*Quad{
		NewQuad(NewNamedNode("http://ex.org/s"), NewNamedNode("http://ex.org/p"), NewNamedNode("http://ex.org/o"), &BlankNode{ID: "graphA"}),
	}
	if !AreQuadsIsomorphic(a, b) {
		t.Error("a blank node used as a graph name should be relabelable like any other position")
	}
}

func TestAreQuadsIsomorphic_BlankEverywhere(t *testing.T) {
	a := []*Quad{
		NewQuad(&BlankNode{ID: "s"}, NewNamedNode("http://ex.org/p"), &BlankNode{ID: "o"}, &BlankNode{ID: "g"}),
	}
	b := []*Quad{
		NewQuad(&BlankNode{ID: "s1"}, NewNamedNode("http://ex.org/p"), &BlankNode{ID: "o1"}, &BlankNode{ID: "g1"}),
	}
	if !AreQuadsIsomorphic(a, b) {
		t.Error("blank nodes in subject, object, and graph position should all relabel together")
	}
}

func TestAreQuadsIsomorphic_SharedBlankAcrossGraph(t *testing.T) {
	a := []*Quad{
		NewQuad(&BlankNode{ID: "s"}, NewNamedNode("http://ex.org/p1"), NewLiteral("v1"), &BlankNode{ID: "g"}),
		NewQuad(&BlankNode{ID: "s"}, NewNamedNode("http://ex.org/p2"), NewLiteral("v2"), &BlankNode{ID: "g"}),
	}
	b := []*Quad{
		NewQuad(&BlankNode{ID: "subj"}, NewNamedNode("http://ex.org/p1"), NewLiteral("v1"), &BlankNode{ID: "graph"}),
		NewQuad(&BlankNode{ID: "subj"}, NewNamedNode("http://ex.org/p2"), NewLiteral("v2"), &BlankNode{ID: "graph"}),
	}
	if !AreQuadsIsomorphic(a, b) {
		t.Error("a blank subject and graph shared across two quads must map consistently")
	}
}

func TestAreQuadsIsomorphic_GraphMismatchBreaksIt(t *testing.T) {
	a := []*Quad{
		NewQuad(&BlankNode{ID: "s"}, NewNamedNode("http://ex.org/p"), NewLiteral("v"), &BlankNode{ID: "g1"}),
	}
	// Same triple content, but the graph is a different (named) graph: not
	// the same statement set.
	b := []*Quad{
		NewQuad(&BlankNode{ID: "s"}, NewNamedNode("http://ex.org/p"), NewLiteral("v"), NewNamedNode("http://ex.org/g2")),
	}
	if AreQuadsIsomorphic(a, b) {
		t.Error("a blank graph name can never match a named graph")
	}
}

var rdfType = NewNamedNode(rdfNS + "type")
