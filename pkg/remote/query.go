package remote

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/geoknoesis/rdfgraph/pkg/graph"
	"github.com/geoknoesis/rdfgraph/pkg/rdf"
	"github.com/geoknoesis/rdfgraph/pkg/rdf/codec"
	"github.com/geoknoesis/rdfgraph/pkg/sparql"
	"github.com/geoknoesis/rdfgraph/pkg/store"
)

// prepareQueryText runs the graph-context-injection algorithm shared with
// graph.MemoryGraph: a FROM clause scoping the query to this graph's
// identity, merged with the caller's prefix overrides.
func (g *Graph) prepareQueryText(query string, kind sparql.QueryKind, opts []graph.QueryOption) (string, error) {
	o := resolveGraphOptions(opts)
	ast, err := sparql.PrepareQuery(query, kind, g.iri, o.Prefixes)
	if err != nil {
		return "", err
	}
	return sparql.Stringify(ast), nil
}

func (g *Graph) sessionKeyOrEmpty() string {
	g.state.mu.Lock()
	defer g.state.mu.Unlock()
	if g.state.active {
		return g.state.sessionKey
	}
	return ""
}

func (g *Graph) Select(ctx context.Context, query string, opts ...graph.QueryOption) (graph.BindingIterator, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	text, err := g.prepareQueryText(query, sparql.Select, opts)
	if err != nil {
		return nil, err
	}
	resp, err := g.backend.Query(ctx, g.sessionKeyOrEmpty(), sparql.Select, text, g.reasoning(opts))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", rdf.ErrQuery, err)
	}
	return newSliceBindingIterator(resp.Bindings), nil
}

func (g *Graph) Ask(ctx context.Context, query string, opts ...graph.QueryOption) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	text, err := g.prepareQueryText(query, sparql.Ask, opts)
	if err != nil {
		return false, err
	}
	resp, err := g.backend.Query(ctx, g.sessionKeyOrEmpty(), sparql.Ask, text, g.reasoning(opts))
	if err != nil {
		return false, fmt.Errorf("%w: %v", rdf.ErrQuery, err)
	}
	if resp.Boolean == nil {
		return false, fmt.Errorf("%w: backend answered an ASK query without a boolean result", rdf.ErrQuery)
	}
	return *resp.Boolean, nil
}

func (g *Graph) Construct(ctx context.Context, query string, opts ...graph.QueryOption) (*graph.MemoryGraph, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	text, err := g.prepareQueryText(query, sparql.Construct, opts)
	if err != nil {
		return nil, err
	}
	resp, err := g.backend.Query(ctx, g.sessionKeyOrEmpty(), sparql.Construct, text, g.reasoning(opts))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", rdf.ErrQuery, err)
	}
	encoder, decoder := defaultCodec()
	result := graph.NewMemoryGraph(rdf.NewDefaultGraph(), store.NewTripleStore(store.NewMemStorage(), encoder, decoder), nil)
	if err := result.Add(ctx, resp.Quads...); err != nil {
		return nil, err
	}
	return result, nil
}

// Find and Quads have no dedicated wire verb in either backend's table:
// both are synthesized as a CONSTRUCT query over the matching pattern,
// scoped to this graph via the same FROM-injection every other query uses.
func (g *Graph) Find(ctx context.Context, s, p, o, gr rdf.Term) (graph.QuadIterator, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	query := constructPatternQuery(s, p, o)
	text, err := g.prepareQueryText(query, sparql.Construct, nil)
	if err != nil {
		return nil, err
	}
	resp, err := g.backend.Query(ctx, g.sessionKeyOrEmpty(), sparql.Construct, text, &g.reasoningDefault)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", rdf.ErrQuery, err)
	}
	quads := resp.Quads
	if gr != nil {
		filtered := quads[:0]
		for _, q := range quads {
			if q.Graph.Equals(gr) {
				filtered = append(filtered, q)
			}
		}
		quads = filtered
	}
	return newSliceQuadIterator(quads), nil
}

func (g *Graph) Quads(ctx context.Context) (graph.QuadIterator, error) {
	return g.Find(ctx, nil, nil, nil, nil)
}

// constructPatternQuery renders a CONSTRUCT query for a Find() probe. Bound
// positions render as ground term syntax; wildcard positions become fresh
// variables so the WHERE clause still matches every quad in that slot.
func constructPatternQuery(s, p, o rdf.Term) string {
	sv, pv, ov := "?s", "?p", "?o"
	if s != nil {
		sv = s.String()
	}
	if p != nil {
		pv = p.String()
	}
	if o != nil {
		ov = o.String()
	}
	pattern := sv + " " + pv + " " + ov + " ."
	return fmt.Sprintf("CONSTRUCT { %s } WHERE { %s }", pattern, pattern)
}

func (g *Graph) Serialize(ctx context.Context, w io.Writer, opts ...graph.QueryOption) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	o := resolveGraphOptions(opts)
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

func (g *Graph) SaveToFile(ctx context.Context, path string, opts ...graph.QueryOption) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("%w: %v", rdf.ErrIO, err)
	}
	defer f.Close()
	o := resolveGraphOptions(opts)
	if o.Format == "" {
		opts = append(opts, graph.WithFormat(codec.DetectFormat("", path, nil)))
	}
	return g.Serialize(ctx, f, opts...)
}

// sliceQuadIterator and sliceBindingIterator mirror graph's own unexported
// adapters: remote results are always materialized eagerly (an HTTP
// response body is read to completion before decoding), so there is no lazy
// streaming form for these to wrap.
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

func (it *sliceQuadIterator) Quad() (*rdf.Quad, error) { return it.quads[it.pos], nil }
func (it *sliceQuadIterator) Close() error             { return nil }

type sliceBindingIterator struct {
	bindings []*store.Binding
	pos      int
}

func newSliceBindingIterator(bindings []*store.Binding) *sliceBindingIterator {
	return &sliceBindingIterator{bindings: bindings, pos: -1}
}

func (it *sliceBindingIterator) Next() bool {
	it.pos++
	return it.pos < len(it.bindings)
}

func (it *sliceBindingIterator) Binding() *store.Binding { return it.bindings[it.pos] }
func (it *sliceBindingIterator) Close() error            { return nil }
