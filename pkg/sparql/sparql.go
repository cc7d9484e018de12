// Package sparql prepares query and update text for execution against a
// specific graph: parsing, graph-context injection (so a query or update
// handed to a named graph is scoped to that graph's identity even when the
// caller wrote no FROM clause or graph envelope), prefix merging, and
// re-stringification for transport to an engine or a remote endpoint.
//
// It is deliberately thin: the actual query algebra (plans, joins, filter
// evaluation) lives in internal/sparql, which this package's ParseQuery
// wraps. pkg/sparql's job ends at producing a normalized AST and, when
// needed, the query text to send onward.
package sparql

import (
	"fmt"

	"github.com/geoknoesis/rdfgraph/internal/sparql/parser"
	"github.com/geoknoesis/rdfgraph/pkg/rdf"
)

// QueryKind names the SPARQL query forms PrepareQuery can require.
type QueryKind int

const (
	Select QueryKind = iota
	Ask
	Construct
	Describe
)

func (k QueryKind) String() string {
	switch k {
	case Select:
		return "SELECT"
	case Ask:
		return "ASK"
	case Construct:
		return "CONSTRUCT"
	case Describe:
		return "DESCRIBE"
	default:
		return "UNKNOWN"
	}
}

func (k QueryKind) queryType() parser.QueryType {
	switch k {
	case Select:
		return parser.QueryTypeSelect
	case Ask:
		return parser.QueryTypeAsk
	case Construct:
		return parser.QueryTypeConstruct
	case Describe:
		return parser.QueryTypeDescribe
	default:
		return parser.QueryTypeSelect
	}
}

// ParseQuery parses a SPARQL query string into its AST.
func ParseQuery(query string) (*parser.Query, error) {
	ast, err := parser.NewParser(query).Parse()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", rdf.ErrParse, err)
	}
	return ast, nil
}

// ParseUpdate parses a SPARQL Update request string into its AST.
func ParseUpdate(update string) (*parser.Update, error) {
	ast, err := parser.NewParser(update).ParseUpdate()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", rdf.ErrParse, err)
	}
	return ast, nil
}

// QueryShapeError reports that a prepared query's AST did not have the
// shape the caller required.
type QueryShapeError struct {
	Expected QueryKind
	Got      parser.QueryType
}

func (e *QueryShapeError) Error() string {
	return fmt.Sprintf("rdf: expected %s query, got query type %d", e.Expected, e.Got)
}

func (e *QueryShapeError) Unwrap() error { return rdf.ErrQueryShape }

// PrepareQuery normalizes query (either a query string or an already-parsed
// *parser.Query) into an AST scoped to identity and merged with
// globalPrefixes:
//
//  1. If query is a string, parse it; otherwise it must already be a
//     *parser.Query.
//  2. Verify the AST's query type matches expectedKind, else QueryShapeError.
//  3. If identity is a NamedNode, ensure the AST has a FROM clause
//     containing identity — added via set union, so calling PrepareQuery
//     twice on the same AST is idempotent and an existing FROM default
//     graph is never replaced, only extended.
//  4. Merge globalPrefixes into the AST's prefix map; an existing
//     AST-local binding for the same prefix wins.
func PrepareQuery(query any, expectedKind QueryKind, identity rdf.Term, globalPrefixes map[string]string) (*parser.Query, error) {
	ast, err := asQuery(query)
	if err != nil {
		return nil, err
	}

	if ast.QueryType != expectedKind.queryType() {
		return nil, &QueryShapeError{Expected: expectedKind, Got: ast.QueryType}
	}

	if iri, ok := identityIRI(identity); ok {
		addFrom(ast, iri)
	}

	mergePrefixes(ast, globalPrefixes)

	return ast, nil
}

func asQuery(query any) (*parser.Query, error) {
	switch v := query.(type) {
	case string:
		return ParseQuery(v)
	case *parser.Query:
		return v, nil
	default:
		return nil, fmt.Errorf("%w: PrepareQuery expects a string or *parser.Query, got %T", rdf.ErrQueryShape, query)
	}
}

// identityIRI returns the graph identity's IRI string, and false when the
// identity is the default graph (which carries no FROM clause of its own).
func identityIRI(identity rdf.Term) (string, bool) {
	if identity == nil {
		return "", false
	}
	if n, ok := identity.(*rdf.NamedNode); ok {
		return n.IRI, true
	}
	return "", false
}

// addFrom adds iri to the AST's default-graph FROM set, as a union: it is a
// no-op if iri is already present, and it is layered on top of whatever
// dataset clauses the query text already had rather than replacing them.
func addFrom(ast *parser.Query, iri string) {
	if containsString(ast.From, iri) {
		return
	}
	ast.From = append(ast.From, iri)
	switch ast.QueryType {
	case parser.QueryTypeSelect:
		ast.Select.From = ast.From
	case parser.QueryTypeConstruct:
		ast.Construct.From = ast.From
	case parser.QueryTypeAsk:
		ast.Ask.From = ast.From
	}
}

func containsString(ss []string, s string) bool {
	for _, v := range ss {
		if v == s {
			return true
		}
	}
	return false
}

// mergePrefixes merges extra into ast.Prefixes, keeping any existing
// AST-local binding for a prefix that is already declared.
func mergePrefixes(ast *parser.Query, extra map[string]string) {
	if len(extra) == 0 {
		return
	}
	if ast.Prefixes == nil {
		ast.Prefixes = make(map[string]string, len(extra))
	}
	for prefix, iri := range extra {
		if _, exists := ast.Prefixes[prefix]; !exists {
			ast.Prefixes[prefix] = iri
		}
	}
}

// PrepareUpdate normalizes update (either an update string or an
// already-parsed *parser.Update) by applying the receiving graph's identity
// to every operation that left its graph slot unspecified:
//
//   - INSERT DATA / DELETE DATA: each quad whose Graph is empty is wrapped
//     in the receiver's identity graph envelope.
//   - INSERT/DELETE WHERE: each template quad whose Graph is empty is set
//     to identity.
//   - DELETE WHERE: the delete template (mirroring the WHERE pattern) is
//     wrapped the same way.
//
// Quads that already named an explicit graph (via GRAPH <iri> { ... } in
// the source text) are left alone.
func PrepareUpdate(update any, identity rdf.Term, globalPrefixes map[string]string) (*parser.Update, error) {
	ast, err := asUpdate(update)
	if err != nil {
		return nil, err
	}

	iri, hasIdentity := identityIRI(identity)
	if hasIdentity {
		for _, op := range ast.Operations {
			applyIdentity(op.Data, iri)
			applyIdentity(op.DeleteTemplate, iri)
			applyIdentity(op.InsertTemplate, iri)
		}
	}

	if len(globalPrefixes) > 0 {
		if ast.Prefixes == nil {
			ast.Prefixes = make(map[string]string, len(globalPrefixes))
		}
		for prefix, iri := range globalPrefixes {
			if _, exists := ast.Prefixes[prefix]; !exists {
				ast.Prefixes[prefix] = iri
			}
		}
	}

	return ast, nil
}

func asUpdate(update any) (*parser.Update, error) {
	switch v := update.(type) {
	case string:
		return ParseUpdate(v)
	case *parser.Update:
		return v, nil
	default:
		return nil, fmt.Errorf("%w: PrepareUpdate expects a string or *parser.Update, got %T", rdf.ErrQueryShape, update)
	}
}

func applyIdentity(quads []*parser.QuadData, iri string) {
	for _, q := range quads {
		if q.Graph == "" {
			q.Graph = iri
		}
	}
}
