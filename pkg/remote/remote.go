// Package remote implements graph.TransactionalGraph over a SPARQL endpoint
// reached through plain net/http: pkg/remote/stardog and pkg/remote/graphdb
// each supply a Backend, and Graph here carries the transaction state
// machine, query-result materialization, and RDF-star query-text synthesis
// that is identical across both wire protocols.
package remote

import (
	"context"
	"fmt"
	"sync"

	"github.com/geoknoesis/rdfgraph/internal/encoding"
	"github.com/geoknoesis/rdfgraph/pkg/graph"
	"github.com/geoknoesis/rdfgraph/pkg/rdf"
	"github.com/geoknoesis/rdfgraph/pkg/sparql"
	"github.com/geoknoesis/rdfgraph/pkg/store"
)

// QueryResponse is a Backend's answer to a SELECT/ASK/CONSTRUCT request,
// decoded from whatever wire format the backend's content negotiation
// produced. Exactly one of Bindings, Boolean, or Quads is populated,
// matching the query kind the caller asked for.
type QueryResponse struct {
	Variables []string
	Bindings  []*store.Binding
	Boolean   *bool
	Quads     []*rdf.Quad
}

// Backend is the narrow surface a concrete wire protocol (stardog, graphdb)
// must implement. Graph builds graph.TransactionalGraph entirely on top of
// this: neither subpackage needs to know about query preparation, the
// transaction state machine, or RDF-star term rendering.
type Backend interface {
	// Begin opens a transaction and returns its session key. reasoning is
	// nil when the caller did not override the graph's default.
	Begin(ctx context.Context, reasoning *bool) (sessionKey string, err error)
	Commit(ctx context.Context, sessionKey string) error
	Rollback(ctx context.Context, sessionKey string) error

	// AddQuads and RemoveQuads run inside the named transaction.
	AddQuads(ctx context.Context, sessionKey string, quads []*rdf.Quad) error
	RemoveQuads(ctx context.Context, sessionKey string, quads []*rdf.Quad) error

	// Query runs queryText as the given kind. sessionKey is empty for a
	// non-transactional query, and reasoning is nil to use the backend's
	// configured default.
	Query(ctx context.Context, sessionKey string, kind sparql.QueryKind, queryText string, reasoning *bool) (*QueryResponse, error)

	// Update runs a SPARQL UPDATE string inside the named transaction.
	Update(ctx context.Context, sessionKey string, updateText string) error

	// DeleteAll clears every quad in graphIRI. It is transaction-
	// independent: every backend exposes it as its own wire operation.
	DeleteAll(ctx context.Context, graphIRI string) error
}

// txState is the shared Idle/Active(sessionKey) machine described for every
// remote graph: Begin on an Active graph fails without touching backend
// state, Commit/Rollback on an Idle graph fail the same way, and a
// Rollback's own backend-side failure is swallowed once the local state has
// already been cleared to Idle.
type txState struct {
	mu         sync.Mutex
	active     bool
	sessionKey string
}

// Graph implements graph.TransactionalGraph against a Backend. Multiple
// Graph values can share one txState (see WithIRI): they observe the same
// transaction, which is what lets a caller re-point a graph at a different
// named-graph identity mid-transaction without losing the open session.
type Graph struct {
	iri              rdf.Term
	backend          Backend
	state            *txState
	reasoningDefault bool
}

// NewGraph returns a Graph identified by iri, backed by backend, with
// reasoningDefault applied to every request that does not override it via
// graph.WithReasoning.
func NewGraph(iri rdf.Term, backend Backend, reasoningDefault bool) *Graph {
	if iri == nil {
		iri = rdf.NewDefaultGraph()
	}
	return &Graph{iri: iri, backend: backend, state: &txState{}, reasoningDefault: reasoningDefault}
}

func (g *Graph) IRI() rdf.Term { return g.iri }

// WithIRI returns a view presenting a different identity over the same
// backend and the same transaction state: explicit aliasing, matching
// graph.ReadGraph's contract. A transaction begun through one view is
// visible, and committable, through the other.
func (g *Graph) WithIRI(iri rdf.Term) graph.ReadGraph {
	return &Graph{iri: iri, backend: g.backend, state: g.state, reasoningDefault: g.reasoningDefault}
}

func (g *Graph) reasoning(opts []graph.QueryOption) *bool {
	o := resolveGraphOptions(opts)
	if o.Reasoning != nil {
		return o.Reasoning
	}
	return &g.reasoningDefault
}

func resolveGraphOptions(opts []graph.QueryOption) *graph.QueryOptions {
	var o graph.QueryOptions
	for _, apply := range opts {
		apply(&o)
	}
	return &o
}

// Begin opens a transaction. It fails with rdf.ErrAlreadyActive when one is
// already open on this graph (or a view sharing its state).
func (g *Graph) Begin(ctx context.Context) error {
	g.state.mu.Lock()
	defer g.state.mu.Unlock()
	if g.state.active {
		return &rdf.TransactionError{Op: rdf.TxOpBegin, Cause: rdf.ErrAlreadyActive}
	}
	key, err := g.backend.Begin(ctx, &g.reasoningDefault)
	if err != nil {
		return &rdf.TransactionError{Op: rdf.TxOpBegin, Cause: err}
	}
	g.state.active = true
	g.state.sessionKey = key
	return nil
}

// Commit closes the open transaction. It fails with
// rdf.ErrNoActiveTransaction when none is open.
func (g *Graph) Commit(ctx context.Context) error {
	g.state.mu.Lock()
	defer g.state.mu.Unlock()
	if !g.state.active {
		return &rdf.TransactionError{Op: rdf.TxOpCommit, Cause: rdf.ErrNoActiveTransaction}
	}
	err := g.backend.Commit(ctx, g.state.sessionKey)
	if err != nil {
		return &rdf.TransactionError{Op: rdf.TxOpCommit, Cause: err}
	}
	g.state.active = false
	g.state.sessionKey = ""
	return nil
}

// Rollback aborts the open transaction. A backend-side rollback failure is
// swallowed: the local state has already moved to Idle, and a session the
// backend failed to roll back is no longer one this Graph can act on.
func (g *Graph) Rollback(ctx context.Context) error {
	g.state.mu.Lock()
	defer g.state.mu.Unlock()
	if !g.state.active {
		return &rdf.TransactionError{Op: rdf.TxOpRollback, Cause: rdf.ErrNoActiveTransaction}
	}
	key := g.state.sessionKey
	g.state.active = false
	g.state.sessionKey = ""
	_ = g.backend.Rollback(ctx, key)
	return nil
}

// InTransaction runs body inside Begin/Commit; a failing body rolls back
// (swallowing the rollback's own error) and surfaces body's error instead.
func (g *Graph) InTransaction(ctx context.Context, body func(ctx context.Context) error) error {
	if err := g.Begin(ctx); err != nil {
		return err
	}
	if err := body(ctx); err != nil {
		_ = g.Rollback(ctx)
		return err
	}
	return g.Commit(ctx)
}

func (g *Graph) InTransactionNow() bool {
	g.state.mu.Lock()
	defer g.state.mu.Unlock()
	return g.state.active
}

// withSession runs body with a session key: the graph's own open
// transaction's key if one is active, or a fresh private auto-transaction
// that is committed (or rolled back, on body's error) before withSession
// returns. This is the "auto-transaction" rule spec'd for Add/Remove/Update:
// a caller that never calls Begin still gets atomic single-operation writes.
func (g *Graph) withSession(ctx context.Context, body func(sessionKey string) error) error {
	g.state.mu.Lock()
	if g.state.active {
		key := g.state.sessionKey
		g.state.mu.Unlock()
		return body(key)
	}
	g.state.mu.Unlock()

	key, err := g.backend.Begin(ctx, &g.reasoningDefault)
	if err != nil {
		return &rdf.TransactionError{Op: rdf.TxOpBegin, Cause: err}
	}
	if err := body(key); err != nil {
		_ = g.backend.Rollback(ctx, key)
		return err
	}
	if err := g.backend.Commit(ctx, key); err != nil {
		return &rdf.TransactionError{Op: rdf.TxOpCommit, Cause: err}
	}
	return nil
}

// Add inserts quads, each canonicalized to this graph's identity the same
// way graph.MemoryGraph does: a default-graph quad is rewritten into this
// graph, an explicitly-graphed quad is left alone.
func (g *Graph) Add(ctx context.Context, quads ...*rdf.Quad) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	canon := canonicalizeAll(g.iri, quads)
	return g.withSession(ctx, func(sessionKey string) error {
		if err := g.backend.AddQuads(ctx, sessionKey, canon); err != nil {
			return fmt.Errorf("%w: %v", rdf.ErrMutation, err)
		}
		return nil
	})
}

func (g *Graph) Remove(ctx context.Context, quads ...*rdf.Quad) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	canon := canonicalizeAll(g.iri, quads)
	return g.withSession(ctx, func(sessionKey string) error {
		if err := g.backend.RemoveQuads(ctx, sessionKey, canon); err != nil {
			return fmt.Errorf("%w: %v", rdf.ErrMutation, err)
		}
		return nil
	})
}

func canonicalizeAll(iri rdf.Term, quads []*rdf.Quad) []*rdf.Quad {
	out := make([]*rdf.Quad, len(quads))
	for i, q := range quads {
		if rdf.IsDefaultGraph(q.Graph) {
			out[i] = rdf.NewQuad(q.Subject, q.Predicate, q.Object, iri)
		} else {
			out[i] = q
		}
	}
	return out
}

// DeleteAll clears every quad in this graph. Unlike Add/Remove/Update it
// never opens a transaction: the wire protocols expose delete-all as its
// own transaction-independent endpoint.
func (g *Graph) DeleteAll(ctx context.Context) error {
	if rdf.IsDefaultGraph(g.iri) {
		return fmt.Errorf("%w: DeleteAll refuses to clear the default graph", rdf.ErrOperationNotSupported)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return g.backend.DeleteAll(ctx, g.iri.(*rdf.NamedNode).IRI)
}

// DeleteAllForSubject removes every quad about s: Find the matching quads,
// then Remove them, the same two-step MemoryGraph uses since no backend
// exposes a "delete by subject" wire verb.
func (g *Graph) DeleteAllForSubject(ctx context.Context, s rdf.Term) error {
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

// Update runs a SPARQL UPDATE, graph-scoped the same way Select/Ask/
// Construct are: INSERT/DELETE DATA blocks with no explicit GRAPH are
// wrapped in this graph's identity before the text reaches the wire.
func (g *Graph) Update(ctx context.Context, sparqlUpdate string, opts ...graph.QueryOption) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	o := resolveGraphOptions(opts)
	ast, err := sparql.PrepareUpdate(sparqlUpdate, g.iri, o.Prefixes)
	if err != nil {
		return err
	}
	text := sparql.Stringify(ast)
	return g.withSession(ctx, func(sessionKey string) error {
		return g.backend.Update(ctx, sessionKey, text)
	})
}

var _ graph.TransactionalGraph = (*Graph)(nil)

func defaultCodec() (store.TermEncoder, store.TermDecoder) {
	return encoding.NewTermEncoder(), encoding.NewTermDecoder()
}
