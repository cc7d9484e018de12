package graph

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/geoknoesis/rdfgraph/internal/encoding"
	"github.com/geoknoesis/rdfgraph/pkg/queryengine"
	"github.com/geoknoesis/rdfgraph/pkg/rdf"
	"github.com/geoknoesis/rdfgraph/pkg/rdf/codec"
	"github.com/geoknoesis/rdfgraph/pkg/sparql"
	"github.com/geoknoesis/rdfgraph/pkg/store"
)

// MemoryGraph is an in-process graph backed by a pkg/store.TripleStore.
// Its identity is a NamedNode or the DefaultGraph singleton; inserts and
// removals rewrite any default-graph quad's graph slot to that identity
// before touching the underlying store, so one store can back many named
// MemoryGraph views without their quads colliding in the default graph.
type MemoryGraph struct {
	mu     sync.Mutex
	iri    rdf.Term
	quads  *store.TripleStore
	engine queryengine.Engine

	txnActive bool
}

// NewMemoryGraph returns a MemoryGraph with the given identity backed by
// quads. A nil iri means the default graph.
func NewMemoryGraph(iri rdf.Term, quads *store.TripleStore, engine queryengine.Engine) *MemoryGraph {
	if iri == nil {
		iri = rdf.NewDefaultGraph()
	}
	return &MemoryGraph{iri: iri, quads: quads, engine: engine}
}

func (g *MemoryGraph) IRI() rdf.Term { return g.iri }

// canonicalize replaces a quad's default-graph slot with this graph's
// identity; a quad already scoped to some other named graph is left alone
// (explicit cross-graph writes are the caller's choice, not an error).
func (g *MemoryGraph) canonicalize(q *rdf.Quad) *rdf.Quad {
	if !rdf.IsDefaultGraph(q.Graph) {
		return q
	}
	return rdf.NewQuad(q.Subject, q.Predicate, q.Object, g.iri)
}

func (g *MemoryGraph) Quads(ctx context.Context) (QuadIterator, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return g.Find(ctx, nil, nil, nil, nil)
}

func (g *MemoryGraph) Find(ctx context.Context, s, p, o, gr rdf.Term) (QuadIterator, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	pattern := &store.Pattern{
		Subject:   patternTerm(s),
		Predicate: patternTerm(p),
		Object:    patternTerm(o),
	}
	if gr != nil {
		pattern.Graph = gr
	} else if !rdf.IsDefaultGraph(g.iri) {
		pattern.Graph = g.iri
	}
	return g.quads.Query(pattern)
}

func patternTerm(t rdf.Term) any {
	if t == nil {
		return nil
	}
	return t
}

// prepareQueryText runs the graph-context-injection algorithm over query:
// scoping it to this graph's identity via a FROM clause and merging in the
// caller's prefix overrides, before handing it to the query engine as text.
// A query the engine itself cannot execute (e.g. an unsupported shape) is
// left to fail at the engine; prepareQueryText only fails on parse errors
// or a query-kind mismatch.
func (g *MemoryGraph) prepareQueryText(query string, kind sparql.QueryKind, opts []QueryOption) (string, error) {
	o := resolveOptions(opts)
	ast, err := sparql.PrepareQuery(query, kind, g.iri, o.Prefixes)
	if err != nil {
		return "", err
	}
	return sparql.Stringify(ast), nil
}

func (g *MemoryGraph) Select(ctx context.Context, query string, opts ...QueryOption) (BindingIterator, error) {
	if g.engine == nil {
		return nil, fmt.Errorf("%w: no query engine configured for this graph", rdf.ErrQuery)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	text, err := g.prepareQueryText(query, sparql.Select, opts)
	if err != nil {
		return nil, err
	}
	return g.engine.Select(ctx, text)
}

func (g *MemoryGraph) Ask(ctx context.Context, query string, opts ...QueryOption) (bool, error) {
	if g.engine == nil {
		return false, fmt.Errorf("%w: no query engine configured for this graph", rdf.ErrQuery)
	}
	if err := ctx.Err(); err != nil {
		return false, err
	}
	text, err := g.prepareQueryText(query, sparql.Ask, opts)
	if err != nil {
		return false, err
	}
	return g.engine.Ask(ctx, text)
}

func (g *MemoryGraph) Construct(ctx context.Context, query string, opts ...QueryOption) (*MemoryGraph, error) {
	if g.engine == nil {
		return nil, fmt.Errorf("%w: no query engine configured for this graph", rdf.ErrQuery)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	text, err := g.prepareQueryText(query, sparql.Construct, opts)
	if err != nil {
		return nil, err
	}
	quads, err := g.engine.Construct(ctx, text)
	if err != nil {
		return nil, err
	}
	// The constructed result is a fresh, self-contained materialization: it
	// carries no query engine, since an engine is bound to the store it was
	// built against, not to whatever CONSTRUCT happens to produce.
	result := NewMemoryGraph(rdf.NewDefaultGraph(), store.NewTripleStore(store.NewMemStorage(), g.quads.Encoder(), g.quads.Decoder()), nil)
	if err := result.Add(ctx, quads...); err != nil {
		return nil, err
	}
	return result, nil
}

func (g *MemoryGraph) Serialize(ctx context.Context, w io.Writer, opts ...QueryOption) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	o := resolveOptions(opts)
	it, err := g.Quads(ctx)
	if err != nil {
		return err
	}
	defer it.Close()
	var quads []*rdf.Quad
	for it.Next() {
		q, err := it.Quad()
		if err != nil {
			return err
		}
		quads = append(quads, q)
	}
	format := o.Format
	if format == "" {
		format = codec.FormatNQuads
	}
	return codec.Serialize(w, quads, format)
}

func (g *MemoryGraph) SaveToFile(ctx context.Context, path string, opts ...QueryOption) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("%w: %v", rdf.ErrIO, err)
	}
	defer f.Close()
	o := resolveOptions(opts)
	if o.Format == "" {
		opts = append(opts, WithFormat(codec.DetectFormat("", path, nil)))
	}
	return g.Serialize(ctx, f, opts...)
}

func (g *MemoryGraph) WithIRI(iri rdf.Term) ReadGraph {
	return &MemoryGraph{iri: iri, quads: g.quads, engine: g.engine}
}

func (g *MemoryGraph) Add(ctx context.Context, quads ...*rdf.Quad) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	for _, q := range quads {
		if err := g.quads.InsertQuad(g.canonicalize(q)); err != nil {
			return fmt.Errorf("%w: %v", rdf.ErrMutation, err)
		}
	}
	return nil
}

func (g *MemoryGraph) Remove(ctx context.Context, quads ...*rdf.Quad) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	for _, q := range quads {
		if err := g.quads.DeleteQuad(g.canonicalize(q)); err != nil {
			return fmt.Errorf("%w: %v", rdf.ErrMutation, err)
		}
	}
	return nil
}

func (g *MemoryGraph) DeleteAll(ctx context.Context) error {
	if rdf.IsDefaultGraph(g.iri) {
		return fmt.Errorf("%w: DeleteAll refuses to clear the default graph", rdf.ErrOperationNotSupported)
	}
	it, err := g.Quads(ctx)
	if err != nil {
		return err
	}
	defer it.Close()
	var quads []*rdf.Quad
	for it.Next() {
		q, err := it.Quad()
		if err != nil {
			return err
		}
		quads = append(quads, q)
	}
	return g.Remove(ctx, quads...)
}

// DeleteAllForSubject removes every quad about s in this graph: the
// "remove everything about a resource" reading, as opposed to Remove,
// which is scoped to exact quads the caller already named.
func (g *MemoryGraph) DeleteAllForSubject(ctx context.Context, s rdf.Term) error {
	it, err := g.Find(ctx, s, nil, nil, nil)
	if err != nil {
		return err
	}
	defer it.Close()
	var quads []*rdf.Quad
	for it.Next() {
		q, err := it.Quad()
		if err != nil {
			return err
		}
		quads = append(quads, q)
	}
	return g.Remove(ctx, quads...)
}

func (g *MemoryGraph) Update(ctx context.Context, sparqlUpdate string, opts ...QueryOption) error {
	if g.engine == nil {
		return fmt.Errorf("%w: no query engine configured for this graph", rdf.ErrQuery)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	o := resolveOptions(opts)
	ast, err := sparql.PrepareUpdate(sparqlUpdate, g.iri, o.Prefixes)
	if err != nil {
		return err
	}
	return g.engine.Update(ctx, sparql.Stringify(ast))
}

// Begin, Commit, and Rollback make MemoryGraph a TransactionalGraph over
// its own store: only one transaction may be open on a given graph
// instance at a time (spec's "one writer at a time"), guarded by mu.
func (g *MemoryGraph) Begin(ctx context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.txnActive {
		return rdf.ErrAlreadyActive
	}
	g.txnActive = true
	return nil
}

func (g *MemoryGraph) Commit(ctx context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.txnActive {
		return rdf.ErrNoActiveTransaction
	}
	g.txnActive = false
	return nil
}

func (g *MemoryGraph) Rollback(ctx context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.txnActive {
		return rdf.ErrNoActiveTransaction
	}
	g.txnActive = false
	return nil
}

// InTransaction runs body inside Begin/Commit; a failing body rolls back
// (swallowing the rollback's own error) and surfaces body's error instead.
func (g *MemoryGraph) InTransaction(ctx context.Context, body func(ctx context.Context) error) error {
	if err := g.Begin(ctx); err != nil {
		return err
	}
	if err := body(ctx); err != nil {
		_ = g.Rollback(ctx)
		return err
	}
	return g.Commit(ctx)
}

var _ TransactionalGraph = (*MemoryGraph)(nil)

// defaultCodec returns the term encoder/decoder pair used whenever a
// package-internal helper (NewChangesetForIdentity, FromString/FromFile)
// needs to stand up a fresh TripleStore without a caller-supplied one.
func defaultCodec() (store.TermEncoder, store.TermDecoder) {
	return encoding.NewTermEncoder(), encoding.NewTermDecoder()
}
