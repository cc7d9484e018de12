// Package graph provides the capability hierarchy over quad backends:
// ReadGraph is the base; MutableGraph, ImmutableGraph, and
// TransactionalGraph each extend it with a different mutation contract.
// In-process backends (MemoryGraph, ImmutableGraph) never block;
// remote backends thread a context.Context and may suspend on I/O.
package graph

import (
	"context"
	"io"

	"github.com/geoknoesis/rdfgraph/pkg/rdf"
	"github.com/geoknoesis/rdfgraph/pkg/store"
)

// QuadIterator is a pull-based stream of quads.
type QuadIterator = store.QuadIterator

// BindingIterator is a pull-based stream of variable bindings.
type BindingIterator = store.BindingIterator

// QueryOptions carries the per-request overrides recognized across every
// ReadGraph implementation.
type QueryOptions struct {
	Reasoning *bool
	Format    string
	Prefixes  map[string]string
	BaseIRI   string
}

// QueryOption mutates a QueryOptions value.
type QueryOption func(*QueryOptions)

// WithReasoning enables or disables backend-level inference for one request.
func WithReasoning(enabled bool) QueryOption {
	return func(o *QueryOptions) { o.Reasoning = &enabled }
}

// WithFormat sets the MIME type or short name used for serialize/parse.
func WithFormat(format string) QueryOption {
	return func(o *QueryOptions) { o.Format = format }
}

// WithPrefixes merges additional prefixes over the graph's global prefixes.
func WithPrefixes(prefixes map[string]string) QueryOption {
	return func(o *QueryOptions) { o.Prefixes = prefixes }
}

// WithBaseIRI sets the base IRI used to resolve relative IRIs on output.
func WithBaseIRI(base string) QueryOption {
	return func(o *QueryOptions) { o.BaseIRI = base }
}

func resolveOptions(opts []QueryOption) *QueryOptions {
	o := &QueryOptions{}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// ReadGraph is the base capability every backend provides.
type ReadGraph interface {
	// IRI returns the graph's identity: a NamedNode or the DefaultGraph
	// singleton.
	IRI() rdf.Term

	// Quads returns every quad in the graph.
	Quads(ctx context.Context) (QuadIterator, error)

	// Find returns quads matching a pattern; nil arguments are wildcards.
	Find(ctx context.Context, s, p, o, g rdf.Term) (QuadIterator, error)

	// Select runs a SPARQL SELECT query and returns its bindings.
	Select(ctx context.Context, query string, opts ...QueryOption) (BindingIterator, error)

	// Ask runs a SPARQL ASK query.
	Ask(ctx context.Context, query string, opts ...QueryOption) (bool, error)

	// Construct runs a SPARQL CONSTRUCT query and returns the result as a
	// fresh in-memory graph.
	Construct(ctx context.Context, query string, opts ...QueryOption) (*MemoryGraph, error)

	// Serialize writes the graph's quads to w in the requested format.
	Serialize(ctx context.Context, w io.Writer, opts ...QueryOption) error

	// SaveToFile serializes the graph to a file, choosing a format by
	// extension unless overridden via WithFormat.
	SaveToFile(ctx context.Context, path string, opts ...QueryOption) error

	// WithIRI returns a view presenting a different identity over the
	// same underlying storage. This is explicit aliasing: mutations
	// through the returned view apply to the same backend.
	WithIRI(iri rdf.Term) ReadGraph
}

// MutableGraph extends ReadGraph with in-place mutation. Before
// insertion/removal, any quad whose graph slot is the default graph has
// its graph slot replaced by this graph's identity.
type MutableGraph interface {
	ReadGraph

	Add(ctx context.Context, quads ...*rdf.Quad) error
	Remove(ctx context.Context, quads ...*rdf.Quad) error

	// DeleteAll removes every quad in the graph. It fails with
	// ErrOperationNotSupported when the graph's identity is the default
	// graph.
	DeleteAll(ctx context.Context) error

	// DeleteAllForSubject removes every quad whose subject matches s,
	// resolving the "delete(predicate)" naming ambiguity's counterpart:
	// DeleteAllForSubject is "remove everything about a resource", while
	// a predicate-scoped delete is just Remove with a predicate pattern
	// resolved by the caller via Find.
	DeleteAllForSubject(ctx context.Context, s rdf.Term) error

	Update(ctx context.Context, sparqlUpdate string, opts ...QueryOption) error
}

// ImmutableGraph extends ReadGraph with copy-on-write mutation: Add/Remove
// return a new graph value sharing structure with the receiver where
// possible, leaving the receiver unchanged.
type ImmutableGraph interface {
	ReadGraph

	Add(ctx context.Context, quads ...*rdf.Quad) (ImmutableGraph, error)
	Remove(ctx context.Context, quads ...*rdf.Quad) (ImmutableGraph, error)
}

// TransactionalGraph extends MutableGraph with explicit transaction
// boundaries.
type TransactionalGraph interface {
	MutableGraph

	Begin(ctx context.Context) error
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error

	// InTransaction runs body inside begin/commit; on any failure from
	// body it rolls back (swallowing rollback errors) and surfaces the
	// body's error. Commit failures after a successful body are
	// surfaced as-is.
	InTransaction(ctx context.Context, body func(ctx context.Context) error) error
}

// sliceQuadIterator adapts a []*rdf.Quad to QuadIterator for backends that
// materialize results eagerly (the immutable store, changeset replay).
type sliceQuadIterator struct {
	quads []*rdf.Quad
	pos   int
}

func newSliceQuadIterator(quads []*rdf.Quad) *sliceQuadIterator {
	return &sliceQuadIterator{quads: quads, pos: -1}
}

func (it *sliceQuadIterator) Next() bool {
	it.pos++
	return it.pos < len(it.quads)
}

func (it *sliceQuadIterator) Quad() (*rdf.Quad, error) {
	return it.quads[it.pos], nil
}

func (it *sliceQuadIterator) Close() error { return nil }
