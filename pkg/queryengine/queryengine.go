// Package queryengine defines the capability a Graph delegates SPARQL
// algebra evaluation to. Full SPARQL 1.1 algebra (property paths, federated
// SERVICE, aggregate pushdown, cost-based planning) is out of scope here:
// QueryEngine is deliberately opaque so a graph can be backed by any engine
// that can answer the four query forms, in-process or remote.
//
// ReferenceEngine, in this package, is the bundled in-process implementation
// over internal/sparql; a remote graph backend instead implements Engine by
// shipping query text to a SPARQL endpoint.
package queryengine

import (
	"context"

	"github.com/geoknoesis/rdfgraph/pkg/rdf"
	"github.com/geoknoesis/rdfgraph/pkg/store"
)

// Engine evaluates prepared SPARQL queries against a quad source.
type Engine interface {
	// Select evaluates a SELECT query and returns its bindings.
	Select(ctx context.Context, query string) (store.BindingIterator, error)

	// Ask evaluates an ASK query.
	Ask(ctx context.Context, query string) (bool, error)

	// Construct evaluates a CONSTRUCT (or DESCRIBE) query and returns the
	// resulting quads.
	Construct(ctx context.Context, query string) ([]*rdf.Quad, error)

	// Update evaluates a SPARQL UPDATE operation against the underlying
	// store. It reports only success or failure, not how many quads changed.
	Update(ctx context.Context, update string) error
}
