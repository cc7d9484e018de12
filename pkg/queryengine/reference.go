package queryengine

import (
	"context"
	"fmt"

	"github.com/geoknoesis/rdfgraph/internal/sparql/executor"
	"github.com/geoknoesis/rdfgraph/internal/sparql/optimizer"
	"github.com/geoknoesis/rdfgraph/internal/sparql/parser"
	"github.com/geoknoesis/rdfgraph/pkg/rdf"
	"github.com/geoknoesis/rdfgraph/pkg/store"
)

// ReferenceEngine is an in-process Engine over the parser/optimizer/executor
// pipeline: it parses a query fresh on every call, re-derives the
// optimizer's statistics from the current quad count, and dispatches to the
// executor. It is the same pipeline cmd/rdfgraphctl and internal/server
// drive directly; Engine just gives graph.MemoryGraph an interface onto it.
type ReferenceEngine struct {
	store *store.TripleStore
}

// NewReferenceEngine wraps store for SPARQL SELECT/ASK/CONSTRUCT evaluation.
// The bundled executor has no UPDATE evaluation, so Update always fails;
// callers that need it wire an external engine instead.
func NewReferenceEngine(store *store.TripleStore) *ReferenceEngine {
	return &ReferenceEngine{store: store}
}

func (e *ReferenceEngine) optimize(query string) (*optimizer.OptimizedQuery, error) {
	p := parser.NewParser(query)
	parsed, err := p.Parse()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", rdf.ErrQuery, err)
	}

	count, err := e.store.Count()
	if err != nil {
		return nil, err
	}
	opt := optimizer.NewOptimizer(&optimizer.Statistics{TotalTriples: count})
	optimized, err := opt.Optimize(parsed)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", rdf.ErrQuery, err)
	}
	return optimized, nil
}

func (e *ReferenceEngine) Select(ctx context.Context, query string) (store.BindingIterator, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	optimized, err := e.optimize(query)
	if err != nil {
		return nil, err
	}
	if optimized.Original.QueryType != parser.QueryTypeSelect {
		return nil, fmt.Errorf("%w: not a SELECT query", rdf.ErrQuery)
	}
	result, err := executor.NewExecutor(e.store).Execute(optimized)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", rdf.ErrQuery, err)
	}
	selectResult, ok := result.(*executor.SelectResult)
	if !ok {
		return nil, fmt.Errorf("%w: unexpected result type %T for SELECT", rdf.ErrQuery, result)
	}
	return newSliceBindingIterator(selectResult.Bindings), nil
}

func (e *ReferenceEngine) Ask(ctx context.Context, query string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	optimized, err := e.optimize(query)
	if err != nil {
		return false, err
	}
	if optimized.Original.QueryType != parser.QueryTypeAsk {
		return false, fmt.Errorf("%w: not an ASK query", rdf.ErrQuery)
	}
	result, err := executor.NewExecutor(e.store).Execute(optimized)
	if err != nil {
		return false, fmt.Errorf("%w: %v", rdf.ErrQuery, err)
	}
	askResult, ok := result.(*executor.AskResult)
	if !ok {
		return false, fmt.Errorf("%w: unexpected result type %T for ASK", rdf.ErrQuery, result)
	}
	return askResult.Result, nil
}

func (e *ReferenceEngine) Construct(ctx context.Context, query string) ([]*rdf.Quad, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	optimized, err := e.optimize(query)
	if err != nil {
		return nil, err
	}
	if optimized.Original.QueryType != parser.QueryTypeConstruct {
		return nil, fmt.Errorf("%w: not a CONSTRUCT query", rdf.ErrQuery)
	}
	result, err := executor.NewExecutor(e.store).Execute(optimized)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", rdf.ErrQuery, err)
	}
	constructResult, ok := result.(*executor.ConstructResult)
	if !ok {
		return nil, fmt.Errorf("%w: unexpected result type %T for CONSTRUCT", rdf.ErrQuery, result)
	}

	quads := make([]*rdf.Quad, 0, len(constructResult.Triples))
	for _, triple := range constructResult.Triples {
		s, err := executorTermToRDFTerm(triple.Subject)
		if err != nil {
			return nil, err
		}
		p, err := executorTermToRDFTerm(triple.Predicate)
		if err != nil {
			return nil, err
		}
		o, err := executorTermToRDFTerm(triple.Object)
		if err != nil {
			return nil, err
		}
		quads = append(quads, rdf.NewQuad(s, p, o, rdf.NewDefaultGraph()))
	}
	return quads, nil
}

func (e *ReferenceEngine) Update(ctx context.Context, update string) error {
	return fmt.Errorf("%w: SPARQL UPDATE is not supported by the reference query engine", rdf.ErrOperationNotSupported)
}

var _ Engine = (*ReferenceEngine)(nil)
