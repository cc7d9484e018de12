package sparql

import (
	"github.com/geoknoesis/rdfgraph/internal/sparql/parser"
	"github.com/geoknoesis/rdfgraph/pkg/rdf"
)

// Bindings maps a SPARQL variable name (without its leading ? or $) to the
// concrete term SubstituteBindings should replace it with.
type Bindings map[string]rdf.Term

// SubstituteBindings returns a copy of ast with every occurrence of a bound
// variable — in triple patterns, FILTER/BIND expressions, and ORDER BY
// expressions — replaced by its bound term. Unbound variables are left as
// variables. ast must be a *parser.Query or *parser.Update.
func SubstituteBindings(ast any, bindings Bindings) any {
	if len(bindings) == 0 {
		return ast
	}
	switch v := ast.(type) {
	case *parser.Query:
		return substituteQuery(v, bindings)
	case *parser.Update:
		return substituteUpdate(v, bindings)
	default:
		return ast
	}
}

func substituteQuery(q *parser.Query, b Bindings) *parser.Query {
	out := *q
	switch q.QueryType {
	case parser.QueryTypeSelect:
		sq := *q.Select
		sq.Where = substituteGraphPattern(q.Select.Where, b)
		if q.Select.OrderBy != nil {
			sq.OrderBy = make([]*parser.OrderCondition, len(q.Select.OrderBy))
			for i, oc := range q.Select.OrderBy {
				sq.OrderBy[i] = &parser.OrderCondition{Expression: substituteExpression(oc.Expression, b), Ascending: oc.Ascending}
			}
		}
		out.Select = &sq
	case parser.QueryTypeAsk:
		aq := *q.Ask
		aq.Where = substituteGraphPattern(q.Ask.Where, b)
		out.Ask = &aq
	case parser.QueryTypeConstruct:
		cq := *q.Construct
		cq.Where = substituteGraphPattern(q.Construct.Where, b)
		cq.Template = substituteTriplePatterns(q.Construct.Template, b)
		out.Construct = &cq
	case parser.QueryTypeDescribe:
		dq := *q.Describe
		if q.Describe.Where != nil {
			dq.Where = substituteGraphPattern(q.Describe.Where, b)
		}
		out.Describe = &dq
	}
	return &out
}

func substituteUpdate(u *parser.Update, b Bindings) *parser.Update {
	out := &parser.Update{Prefixes: u.Prefixes}
	for _, op := range u.Operations {
		o := *op
		o.Data = substituteQuadData(op.Data, b)
		o.DeleteTemplate = substituteQuadData(op.DeleteTemplate, b)
		o.InsertTemplate = substituteQuadData(op.InsertTemplate, b)
		if op.Where != nil {
			o.Where = substituteGraphPattern(op.Where, b)
		}
		out.Operations = append(out.Operations, &o)
	}
	return out
}

func substituteQuadData(quads []*parser.QuadData, b Bindings) []*parser.QuadData {
	if quads == nil {
		return nil
	}
	out := make([]*parser.QuadData, len(quads))
	for i, q := range quads {
		nq := *q
		nt := substituteTriplePattern(q.Triple, b)
		nq.Triple = nt
		out[i] = &nq
	}
	return out
}

func substituteGraphPattern(gp *parser.GraphPattern, b Bindings) *parser.GraphPattern {
	if gp == nil {
		return nil
	}
	out := *gp
	out.Patterns = substituteTriplePatterns(gp.Patterns, b)

	if gp.Filters != nil {
		out.Filters = make([]*parser.Filter, len(gp.Filters))
		for i, f := range gp.Filters {
			out.Filters[i] = &parser.Filter{Expression: substituteExpression(f.Expression, b)}
		}
	}
	if gp.Binds != nil {
		out.Binds = make([]*parser.Bind, len(gp.Binds))
		for i, bind := range gp.Binds {
			out.Binds[i] = &parser.Bind{Expression: substituteExpression(bind.Expression, b), Variable: bind.Variable}
		}
	}
	if gp.Children != nil {
		out.Children = make([]*parser.GraphPattern, len(gp.Children))
		for i, c := range gp.Children {
			out.Children[i] = substituteGraphPattern(c, b)
		}
	}
	return &out
}

func substituteTriplePatterns(patterns []*parser.TriplePattern, b Bindings) []*parser.TriplePattern {
	if patterns == nil {
		return nil
	}
	out := make([]*parser.TriplePattern, len(patterns))
	for i, t := range patterns {
		out[i] = substituteTriplePattern(t, b)
	}
	return out
}

func substituteTriplePattern(t *parser.TriplePattern, b Bindings) *parser.TriplePattern {
	return &parser.TriplePattern{
		Subject:   substituteTermOrVariable(t.Subject, b),
		Predicate: substituteTermOrVariable(t.Predicate, b),
		Object:    substituteTermOrVariable(t.Object, b),
	}
}

func substituteTermOrVariable(t parser.TermOrVariable, b Bindings) parser.TermOrVariable {
	if !t.IsVariable() {
		return t
	}
	if bound, ok := b[t.Variable.Name]; ok {
		return parser.TermOrVariable{Term: bound}
	}
	return t
}

func substituteExpression(e parser.Expression, b Bindings) parser.Expression {
	switch ex := e.(type) {
	case *parser.BinaryExpression:
		return &parser.BinaryExpression{Left: substituteExpression(ex.Left, b), Operator: ex.Operator, Right: substituteExpression(ex.Right, b)}
	case *parser.UnaryExpression:
		return &parser.UnaryExpression{Operator: ex.Operator, Operand: substituteExpression(ex.Operand, b)}
	case *parser.VariableExpression:
		if bound, ok := b[ex.Variable.Name]; ok {
			return &parser.LiteralExpression{Literal: bound}
		}
		return ex
	case *parser.FunctionCallExpression:
		args := make([]parser.Expression, len(ex.Arguments))
		for i, a := range ex.Arguments {
			args[i] = substituteExpression(a, b)
		}
		return &parser.FunctionCallExpression{Function: ex.Function, Arguments: args}
	default:
		return e
	}
}
