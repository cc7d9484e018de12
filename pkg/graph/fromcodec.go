package graph

import (
	"context"

	"github.com/geoknoesis/rdfgraph/pkg/rdf"
	"github.com/geoknoesis/rdfgraph/pkg/rdf/codec"
	"github.com/geoknoesis/rdfgraph/pkg/store"
)

// FromString parses data and returns a fresh, engine-less MemoryGraph
// populated with the result: format is resolved via the explicit argument,
// then content sniffing (pkg/rdf/codec.DetectFormat), since a string has no
// file extension to match against. A parse failure is codec's own
// ErrParse-wrapped error, propagated unchanged.
func FromString(data, format, baseIRI string) (*MemoryGraph, error) {
	quads, err := codec.ParseString(data, format, baseIRI)
	if err != nil {
		return nil, err
	}
	return newPopulatedGraph(quads)
}

// FromFile reads path and returns a fresh, engine-less MemoryGraph
// populated with the result: format is resolved via the explicit argument,
// then the file's extension, then content sniffing.
func FromFile(path, format string) (*MemoryGraph, error) {
	quads, err := codec.ParseFile(path, codec.WithFormat(format))
	if err != nil {
		return nil, err
	}
	return newPopulatedGraph(quads)
}

func newPopulatedGraph(quads []*rdf.Quad) (*MemoryGraph, error) {
	encoder, decoder := defaultCodec()
	g := NewMemoryGraph(rdf.NewDefaultGraph(), store.NewTripleStore(store.NewMemStorage(), encoder, decoder), nil)
	if err := g.Add(context.Background(), quads...); err != nil {
		return nil, err
	}
	return g, nil
}
