package graph

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/geoknoesis/rdfgraph/pkg/rdf"
	"github.com/geoknoesis/rdfgraph/pkg/rdf/codec"
	"github.com/geoknoesis/rdfgraph/pkg/store"
)

// ChangesetGraph overlays an added/removed quad delta over a base ReadGraph
// view, without touching the base until ApplyDelta replays the delta onto a
// real MutableGraph. added/removed are ImmutableStores so overlapping
// add/remove/re-add sequences collapse to structural set operations rather
// than an ever-growing op log.
type ChangesetGraph struct {
	iri            rdf.Term
	current        ReadGraph
	added          *store.ImmutableStore
	removed        *store.ImmutableStore
	remapGraphSlot bool
}

// NewChangeset starts an empty delta over an existing graph view.
func NewChangeset(base ReadGraph) *ChangesetGraph {
	return &ChangesetGraph{
		iri:     base.IRI(),
		current: base,
		added:   store.NewImmutableStore(),
		removed: store.NewImmutableStore(),
	}
}

// NewChangesetForIdentity starts a changeset with no base graph at all: its
// current view is a fresh empty MemoryGraph under id, and at ApplyDelta
// time every recorded quad gets its graph slot remapped to the target
// graph's identity (since there is no pre-existing graph identity to infer
// a canonical slot from).
func NewChangesetForIdentity(id rdf.Term) *ChangesetGraph {
	encoder, decoder := defaultCodec()
	base := NewMemoryGraph(id, store.NewTripleStore(store.NewMemStorage(), encoder, decoder), nil)
	return &ChangesetGraph{
		iri:            id,
		current:        base,
		added:          store.NewImmutableStore(),
		removed:        store.NewImmutableStore(),
		remapGraphSlot: true,
	}
}

func (c *ChangesetGraph) IRI() rdf.Term { return c.iri }

func (c *ChangesetGraph) canonicalize(q *rdf.Quad) *rdf.Quad {
	if !rdf.IsDefaultGraph(q.Graph) {
		return q
	}
	return rdf.NewQuad(q.Subject, q.Predicate, q.Object, c.iri)
}

// Add records q as added (and no longer removed, if it had been); the
// current view reflects it immediately.
func (c *ChangesetGraph) Add(ctx context.Context, quads ...*rdf.Quad) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	for _, raw := range quads {
		q := c.canonicalize(raw)
		c.removed = c.removed.Remove(q)
		c.added = c.added.Add(q)
	}
	return nil
}

// Remove records q as removed (and no longer added, if it had been).
func (c *ChangesetGraph) Remove(ctx context.Context, quads ...*rdf.Quad) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	for _, raw := range quads {
		q := c.canonicalize(raw)
		c.added = c.added.Remove(q)
		c.removed = c.removed.Add(q)
	}
	return nil
}

func (c *ChangesetGraph) DeleteAll(ctx context.Context) error {
	it, err := c.Quads(ctx)
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
	return c.Remove(ctx, quads...)
}

func (c *ChangesetGraph) DeleteAllForSubject(ctx context.Context, s rdf.Term) error {
	it, err := c.Find(ctx, s, nil, nil, nil)
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
	return c.Remove(ctx, quads...)
}

func (c *ChangesetGraph) Update(ctx context.Context, sparqlUpdate string, opts ...QueryOption) error {
	return fmt.Errorf("%w: ChangesetGraph does not evaluate SPARQL UPDATE directly; apply the delta and update the target graph instead", rdf.ErrOperationNotSupported)
}

// Quads returns the base graph's quads with removed quads excluded and
// added quads included.
func (c *ChangesetGraph) Quads(ctx context.Context) (QuadIterator, error) {
	base, err := c.current.Quads(ctx)
	if err != nil {
		return nil, err
	}
	defer base.Close()
	var out []*rdf.Quad
	for base.Next() {
		q, err := base.Quad()
		if err != nil {
			return nil, err
		}
		if !c.removed.Contains(q) {
			out = append(out, q)
		}
	}
	out = append(out, c.added.Quads()...)
	return newSliceQuadIterator(out), nil
}

func (c *ChangesetGraph) Find(ctx context.Context, s, p, o, g rdf.Term) (QuadIterator, error) {
	it, err := c.Quads(ctx)
	if err != nil {
		return nil, err
	}
	defer it.Close()
	var out []*rdf.Quad
	for it.Next() {
		q, err := it.Quad()
		if err != nil {
			return nil, err
		}
		if s != nil && !q.Subject.Equals(s) {
			continue
		}
		if p != nil && !q.Predicate.Equals(p) {
			continue
		}
		if o != nil && !q.Object.Equals(o) {
			continue
		}
		if g != nil && !q.Graph.Equals(g) {
			continue
		}
		out = append(out, q)
	}
	return newSliceQuadIterator(out), nil
}

func (c *ChangesetGraph) Select(ctx context.Context, query string, opts ...QueryOption) (BindingIterator, error) {
	return c.current.Select(ctx, query, opts...)
}

func (c *ChangesetGraph) Ask(ctx context.Context, query string, opts ...QueryOption) (bool, error) {
	return c.current.Ask(ctx, query, opts...)
}

func (c *ChangesetGraph) Construct(ctx context.Context, query string, opts ...QueryOption) (*MemoryGraph, error) {
	return c.current.Construct(ctx, query, opts...)
}

func (c *ChangesetGraph) Serialize(ctx context.Context, w io.Writer, opts ...QueryOption) error {
	o := resolveOptions(opts)
	format := o.Format
	if format == "" {
		format = codec.FormatNQuads
	}
	it, err := c.Quads(ctx)
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
	return codec.Serialize(w, quads, format)
}

func (c *ChangesetGraph) SaveToFile(ctx context.Context, path string, opts ...QueryOption) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("%w: %v", rdf.ErrIO, err)
	}
	defer f.Close()
	o := resolveOptions(opts)
	if o.Format == "" {
		opts = append(opts, WithFormat(codec.DetectFormat("", path, nil)))
	}
	return c.Serialize(ctx, f, opts...)
}

func (c *ChangesetGraph) WithIRI(iri rdf.Term) ReadGraph {
	return &ChangesetGraph{
		iri:            iri,
		current:        c.current.WithIRI(iri),
		added:          c.added,
		removed:        c.removed,
		remapGraphSlot: c.remapGraphSlot,
	}
}

// ApplyDelta replays removed then added quads onto target, remapping each
// quad's graph slot to target's identity first when remapGraphSlot is set
// (the NewChangesetForIdentity case, where the delta was recorded against
// an identity the target may not share).
func (c *ChangesetGraph) ApplyDelta(ctx context.Context, target MutableGraph) error {
	remap := func(q *rdf.Quad) *rdf.Quad {
		if !c.remapGraphSlot {
			return q
		}
		return rdf.NewQuad(q.Subject, q.Predicate, q.Object, target.IRI())
	}

	for _, q := range c.removed.Quads() {
		if err := target.Remove(ctx, remap(q)); err != nil {
			return fmt.Errorf("%w: replaying removal: %v", rdf.ErrMutation, err)
		}
	}
	for _, q := range c.added.Quads() {
		if err := target.Add(ctx, remap(q)); err != nil {
			return fmt.Errorf("%w: replaying addition: %v", rdf.ErrMutation, err)
		}
	}
	return nil
}

var _ MutableGraph = (*ChangesetGraph)(nil)
