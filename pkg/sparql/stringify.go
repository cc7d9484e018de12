package sparql

import (
	"fmt"
	"strings"

	"github.com/geoknoesis/rdfgraph/internal/sparql/parser"
)

// Stringify re-renders a prepared AST as SPARQL text. ast must be a
// *parser.Query or *parser.Update — the two shapes ParseQuery/ParseUpdate
// and PrepareQuery/PrepareUpdate produce.
func Stringify(ast any) string {
	switch v := ast.(type) {
	case *parser.Query:
		return stringifyQuery(v)
	case *parser.Update:
		return stringifyUpdate(v)
	default:
		return fmt.Sprintf("/* unsupported AST type %T */", ast)
	}
}

func stringifyPrefixes(prefixes map[string]string) string {
	var b strings.Builder
	for prefix, iri := range prefixes {
		fmt.Fprintf(&b, "PREFIX %s: <%s>\n", prefix, iri)
	}
	return b.String()
}

func stringifyFrom(from, fromNamed []string) string {
	var b strings.Builder
	for _, iri := range from {
		fmt.Fprintf(&b, "FROM <%s>\n", iri)
	}
	for _, iri := range fromNamed {
		fmt.Fprintf(&b, "FROM NAMED <%s>\n", iri)
	}
	return b.String()
}

func stringifyQuery(q *parser.Query) string {
	var b strings.Builder
	b.WriteString(stringifyPrefixes(q.Prefixes))

	switch q.QueryType {
	case parser.QueryTypeSelect:
		sq := q.Select
		b.WriteString("SELECT ")
		if sq.Distinct {
			b.WriteString("DISTINCT ")
		}
		if sq.Variables == nil {
			b.WriteString("*")
		} else {
			vars := make([]string, len(sq.Variables))
			for i, v := range sq.Variables {
				vars[i] = v.String()
			}
			b.WriteString(strings.Join(vars, " "))
		}
		b.WriteString("\n")
		b.WriteString(stringifyFrom(sq.From, sq.FromNamed))
		b.WriteString("WHERE ")
		b.WriteString(stringifyGraphPattern(sq.Where))
		if len(sq.OrderBy) > 0 {
			b.WriteString("\nORDER BY ")
			parts := make([]string, len(sq.OrderBy))
			for i, oc := range sq.OrderBy {
				if oc.Ascending {
					parts[i] = stringifyExpression(oc.Expression)
				} else {
					parts[i] = "DESC(" + stringifyExpression(oc.Expression) + ")"
				}
			}
			b.WriteString(strings.Join(parts, " "))
		}
		if sq.Limit != nil {
			fmt.Fprintf(&b, "\nLIMIT %d", *sq.Limit)
		}
		if sq.Offset != nil {
			fmt.Fprintf(&b, "\nOFFSET %d", *sq.Offset)
		}

	case parser.QueryTypeAsk:
		aq := q.Ask
		b.WriteString("ASK\n")
		b.WriteString(stringifyFrom(aq.From, aq.FromNamed))
		b.WriteString(stringifyGraphPattern(aq.Where))

	case parser.QueryTypeConstruct:
		cq := q.Construct
		b.WriteString("CONSTRUCT {\n")
		for _, t := range cq.Template {
			b.WriteString("  " + stringifyTriplePattern(t) + " .\n")
		}
		b.WriteString("}\n")
		b.WriteString(stringifyFrom(cq.From, cq.FromNamed))
		b.WriteString("WHERE ")
		b.WriteString(stringifyGraphPattern(cq.Where))

	case parser.QueryTypeDescribe:
		dq := q.Describe
		b.WriteString("DESCRIBE ")
		iris := make([]string, len(dq.Resources))
		for i, r := range dq.Resources {
			iris[i] = r.String()
		}
		b.WriteString(strings.Join(iris, " "))
		if dq.Where != nil {
			b.WriteString("\nWHERE ")
			b.WriteString(stringifyGraphPattern(dq.Where))
		}
	}

	return b.String()
}

func stringifyGraphPattern(gp *parser.GraphPattern) string {
	if gp == nil {
		return "{ }"
	}

	switch gp.Type {
	case parser.GraphPatternTypeUnion:
		parts := make([]string, len(gp.Children))
		for i, c := range gp.Children {
			parts[i] = stringifyGraphPattern(c)
		}
		return strings.Join(parts, " UNION ")
	case parser.GraphPatternTypeOptional:
		return "OPTIONAL " + stringifyGraphPatternBody(gp)
	case parser.GraphPatternTypeMinus:
		return "MINUS " + stringifyGraphPatternBody(gp)
	case parser.GraphPatternTypeGraph:
		name := gp.Graph.IRI.String()
		if gp.Graph.Variable != nil {
			name = gp.Graph.Variable.String()
		}
		return "GRAPH " + name + " " + stringifyGraphPatternBody(gp)
	default:
		return stringifyGraphPatternBody(gp)
	}
}

func stringifyGraphPatternBody(gp *parser.GraphPattern) string {
	var b strings.Builder
	b.WriteString("{\n")
	for _, t := range gp.Patterns {
		b.WriteString("  " + stringifyTriplePattern(t) + " .\n")
	}
	for _, f := range gp.Filters {
		fmt.Fprintf(&b, "  FILTER(%s)\n", stringifyExpression(f.Expression))
	}
	for _, bind := range gp.Binds {
		fmt.Fprintf(&b, "  BIND(%s AS %s)\n", stringifyExpression(bind.Expression), bind.Variable.String())
	}
	for _, c := range gp.Children {
		if c.Type != parser.GraphPatternTypeUnion {
			b.WriteString("  " + stringifyGraphPattern(c) + "\n")
		} else {
			b.WriteString("  { " + stringifyGraphPattern(c) + " }\n")
		}
	}
	b.WriteString("}")
	return b.String()
}

func stringifyTriplePattern(t *parser.TriplePattern) string {
	return stringifyTermOrVariable(t.Subject) + " " + stringifyTermOrVariable(t.Predicate) + " " + stringifyTermOrVariable(t.Object)
}

func stringifyTermOrVariable(t parser.TermOrVariable) string {
	if t.IsVariable() {
		return t.Variable.String()
	}
	return t.Term.String()
}

func stringifyExpression(e parser.Expression) string {
	switch ex := e.(type) {
	case *parser.BinaryExpression:
		return "(" + stringifyExpression(ex.Left) + " " + operatorSymbol(ex.Operator) + " " + stringifyExpression(ex.Right) + ")"
	case *parser.UnaryExpression:
		return operatorSymbol(ex.Operator) + "(" + stringifyExpression(ex.Operand) + ")"
	case *parser.VariableExpression:
		return ex.Variable.String()
	case *parser.LiteralExpression:
		return ex.Literal.String()
	case *parser.FunctionCallExpression:
		args := make([]string, len(ex.Arguments))
		for i, a := range ex.Arguments {
			args[i] = stringifyExpression(a)
		}
		return ex.Function + "(" + strings.Join(args, ", ") + ")"
	default:
		return ""
	}
}

func operatorSymbol(op parser.Operator) string {
	switch op {
	case parser.OpAnd:
		return "&&"
	case parser.OpOr:
		return "||"
	case parser.OpNot:
		return "!"
	case parser.OpEqual:
		return "="
	case parser.OpNotEqual:
		return "!="
	case parser.OpLessThan:
		return "<"
	case parser.OpLessThanOrEqual:
		return "<="
	case parser.OpGreaterThan:
		return ">"
	case parser.OpGreaterThanOrEqual:
		return ">="
	case parser.OpAdd:
		return "+"
	case parser.OpSubtract:
		return "-"
	case parser.OpMultiply:
		return "*"
	case parser.OpDivide:
		return "/"
	case parser.OpRegex:
		return "REGEX"
	case parser.OpStr:
		return "STR"
	case parser.OpLang:
		return "LANG"
	case parser.OpDatatype:
		return "DATATYPE"
	case parser.OpIsNumeric:
		return "isNumeric"
	case parser.OpAbs:
		return "ABS"
	case parser.OpCeil:
		return "CEIL"
	case parser.OpFloor:
		return "FLOOR"
	case parser.OpRound:
		return "ROUND"
	default:
		return "?"
	}
}

func stringifyUpdate(u *parser.Update) string {
	var b strings.Builder
	b.WriteString(stringifyPrefixes(u.Prefixes))

	ops := make([]string, len(u.Operations))
	for i, op := range u.Operations {
		ops[i] = stringifyUpdateOperation(op)
	}
	b.WriteString(strings.Join(ops, ";\n"))
	return b.String()
}

func stringifyUpdateOperation(op *parser.UpdateOperation) string {
	switch op.Type {
	case parser.UpdateOpInsertData:
		return "INSERT DATA " + stringifyQuadBlock(op.Data)
	case parser.UpdateOpDeleteData:
		return "DELETE DATA " + stringifyQuadBlock(op.Data)
	case parser.UpdateOpDeleteWhere:
		return "DELETE WHERE " + stringifyGraphPattern(op.Where)
	case parser.UpdateOpInsertDeleteWhere:
		var b strings.Builder
		if op.DeleteTemplate != nil {
			b.WriteString("DELETE " + stringifyQuadBlock(op.DeleteTemplate) + "\n")
		}
		if op.InsertTemplate != nil {
			b.WriteString("INSERT " + stringifyQuadBlock(op.InsertTemplate) + "\n")
		}
		b.WriteString("WHERE " + stringifyGraphPattern(op.Where))
		return b.String()
	default:
		return ""
	}
}

func stringifyQuadBlock(quads []*parser.QuadData) string {
	var b strings.Builder
	b.WriteString("{\n")
	// Group consecutive quads sharing a graph so GRAPH <iri> { ... } is
	// emitted once per run rather than once per quad.
	i := 0
	for i < len(quads) {
		g := quads[i].Graph
		j := i
		var lines []string
		for j < len(quads) && quads[j].Graph == g {
			lines = append(lines, "  "+stringifyTriplePattern(quads[j].Triple)+" .")
			j++
		}
		if g == "" {
			b.WriteString(strings.Join(lines, "\n") + "\n")
		} else {
			fmt.Fprintf(&b, "  GRAPH <%s> {\n", g)
			for _, l := range lines {
				b.WriteString("  " + l + "\n")
			}
			b.WriteString("  }\n")
		}
		i = j
	}
	b.WriteString("}")
	return b.String()
}
