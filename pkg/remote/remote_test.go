package remote

import (
	"context"
	"errors"
	"testing"

	"github.com/geoknoesis/rdfgraph/pkg/rdf"
	"github.com/geoknoesis/rdfgraph/pkg/sparql"
)

// fakeBackend is an in-process Backend double for exercising the
// transaction state machine without any HTTP transport.
type fakeBackend struct {
	beginErr    error
	commitErr   error
	rollbackErr error

	added   []*rdf.Quad
	removed []*rdf.Quad
	begun   int
}

func (f *fakeBackend) Begin(ctx context.Context, reasoning *bool) (string, error) {
	f.begun++
	if f.beginErr != nil {
		return "", f.beginErr
	}
	return "tx1", nil
}

func (f *fakeBackend) Commit(ctx context.Context, sessionKey string) error   { return f.commitErr }
func (f *fakeBackend) Rollback(ctx context.Context, sessionKey string) error { return f.rollbackErr }

func (f *fakeBackend) AddQuads(ctx context.Context, sessionKey string, quads []*rdf.Quad) error {
	f.added = append(f.added, quads...)
	return nil
}

func (f *fakeBackend) RemoveQuads(ctx context.Context, sessionKey string, quads []*rdf.Quad) error {
	f.removed = append(f.removed, quads...)
	return nil
}

func (f *fakeBackend) Query(ctx context.Context, sessionKey string, kind sparql.QueryKind, queryText string, reasoning *bool) (*QueryResponse, error) {
	b := true
	return &QueryResponse{Boolean: &b}, nil
}

func (f *fakeBackend) Update(ctx context.Context, sessionKey string, updateText string) error {
	return nil
}

func (f *fakeBackend) DeleteAll(ctx context.Context, graphIRI string) error { return nil }

var _ Backend = (*fakeBackend)(nil)

func TestBegin_AlreadyActiveFails(t *testing.T) {
	g := NewGraph(rdf.NewNamedNode("http://ex/g"), &fakeBackend{}, false)
	if err := g.Begin(context.Background()); err != nil {
		t.Fatalf("first Begin: %v", err)
	}
	err := g.Begin(context.Background())
	if !errors.Is(err, rdf.ErrAlreadyActive) {
		t.Fatalf("expected ErrAlreadyActive, got %v", err)
	}
}

func TestCommit_NoActiveTransactionFails(t *testing.T) {
	g := NewGraph(rdf.NewNamedNode("http://ex/g"), &fakeBackend{}, false)
	err := g.Commit(context.Background())
	if !errors.Is(err, rdf.ErrNoActiveTransaction) {
		t.Fatalf("expected ErrNoActiveTransaction, got %v", err)
	}
}

func TestCommit_FailureLeavesStateActive(t *testing.T) {
	fb := &fakeBackend{commitErr: errors.New("boom")}
	g := NewGraph(rdf.NewNamedNode("http://ex/g"), fb, false)
	if err := g.Begin(context.Background()); err != nil {
		t.Fatalf("Begin: %v", err)
	}
	if err := g.Commit(context.Background()); !errors.Is(err, rdf.ErrTransaction) {
		t.Fatalf("expected ErrTransaction, got %v", err)
	}
	if !g.InTransactionNow() {
		t.Fatal("expected state to remain Active after a failed commit")
	}
}

func TestRollback_BackendFailureIsSwallowed(t *testing.T) {
	fb := &fakeBackend{rollbackErr: errors.New("boom")}
	g := NewGraph(rdf.NewNamedNode("http://ex/g"), fb, false)
	if err := g.Begin(context.Background()); err != nil {
		t.Fatalf("Begin: %v", err)
	}
	if err := g.Rollback(context.Background()); err != nil {
		t.Fatalf("expected rollback backend failure to be swallowed, got %v", err)
	}
	if g.InTransactionNow() {
		t.Fatal("expected state to move to Idle after rollback despite backend failure")
	}
}

func TestAdd_AutoTransactionWhenIdle(t *testing.T) {
	fb := &fakeBackend{}
	g := NewGraph(rdf.NewNamedNode("http://ex/g"), fb, false)
	q := rdf.NewQuad(rdf.NewNamedNode("http://ex/s"), rdf.NewNamedNode("http://ex/p"), rdf.NewLiteral("o"), nil)
	if err := g.Add(context.Background(), q); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if fb.begun != 1 {
		t.Fatalf("expected exactly one auto-transaction, got %d begins", fb.begun)
	}
	if g.InTransactionNow() {
		t.Fatal("expected the auto-transaction to have been committed and closed")
	}
	if len(fb.added) != 1 || !fb.added[0].Graph.Equals(rdf.NewNamedNode("http://ex/g")) {
		t.Fatalf("expected the default-graph quad to be canonicalized into the graph's identity, got %+v", fb.added)
	}
}

func TestAdd_ReusesOpenTransaction(t *testing.T) {
	fb := &fakeBackend{}
	g := NewGraph(rdf.NewNamedNode("http://ex/g"), fb, false)
	if err := g.Begin(context.Background()); err != nil {
		t.Fatalf("Begin: %v", err)
	}
	q := rdf.NewQuad(rdf.NewNamedNode("http://ex/s"), rdf.NewNamedNode("http://ex/p"), rdf.NewLiteral("o"), nil)
	if err := g.Add(context.Background(), q); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if fb.begun != 1 {
		t.Fatalf("expected Add to reuse the already-open transaction, got %d begins", fb.begun)
	}
	if !g.InTransactionNow() {
		t.Fatal("expected the explicitly-opened transaction to still be open")
	}
}

func TestWithIRI_SharesTransactionState(t *testing.T) {
	fb := &fakeBackend{}
	g := NewGraph(rdf.NewNamedNode("http://ex/g1"), fb, false)
	if err := g.Begin(context.Background()); err != nil {
		t.Fatalf("Begin: %v", err)
	}
	view := g.WithIRI(rdf.NewNamedNode("http://ex/g2")).(*Graph)
	if err := view.Commit(context.Background()); err != nil {
		t.Fatalf("expected the aliased view to observe and commit the same transaction: %v", err)
	}
	if g.InTransactionNow() {
		t.Fatal("expected the original graph to see the transaction closed too")
	}
}
