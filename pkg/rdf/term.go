// Package rdf provides the RDF term model: immutable, value-equal terms and
// quads with RDF 1.2 (RDF-star) quoted-triple support.
package rdf

import (
	"encoding/binary"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/zeebo/xxh3"
)

// TermType represents the type of an RDF term.
type TermType byte

const (
	// Core RDF types
	TermTypeNamedNode TermType = iota + 1
	TermTypeBlankNode
	TermTypeLiteral
	TermTypeVariable
	TermTypeDefaultGraph
	TermTypeQuotedTriple // RDF 1.2: Triple terms

	// Literal subtypes
	TermTypeStringLiteral
	TermTypeLangStringLiteral
	TermTypeIntegerLiteral
	TermTypeDecimalLiteral
	TermTypeDoubleLiteral
	TermTypeBooleanLiteral
	TermTypeDateTimeLiteral
	TermTypeDateLiteral
	TermTypeTimeLiteral
	TermTypeDurationLiteral
)

// Term represents an RDF term: a named node, blank node, literal, variable,
// the default graph, or a quoted triple.
type Term interface {
	Type() TermType
	String() string
	Equals(other Term) bool
	// Hash returns a stable structural hash; Equals(a, b) implies Hash(a) == Hash(b).
	Hash() uint64
}

func hashBytes(seed uint64, parts ...[]byte) uint64 {
	h := xxh3.New()
	var seedBuf [8]byte
	binary.BigEndian.PutUint64(seedBuf[:], seed)
	_, _ = h.Write(seedBuf[:])
	for _, p := range parts {
		_, _ = h.Write(p)
	}
	return h.Sum64()
}

// NamedNode represents an IRI.
type NamedNode struct {
	IRI string
}

func NewNamedNode(iri string) *NamedNode {
	return &NamedNode{IRI: iri}
}

func (n *NamedNode) Type() TermType { return TermTypeNamedNode }

func (n *NamedNode) String() string { return fmt.Sprintf("<%s>", n.IRI) }

func (n *NamedNode) Equals(other Term) bool {
	if on, ok := other.(*NamedNode); ok {
		return n.IRI == on.IRI
	}
	return false
}

func (n *NamedNode) Hash() uint64 {
	return hashBytes(uint64(TermTypeNamedNode), []byte(n.IRI))
}

// BlankNode represents a blank node, scoped to the graph or parse batch that produced it.
type BlankNode struct {
	ID string
}

func NewBlankNode(id string) *BlankNode {
	return &BlankNode{ID: id}
}

func (b *BlankNode) Type() TermType { return TermTypeBlankNode }

func (b *BlankNode) String() string { return "_:" + b.ID }

func (b *BlankNode) Equals(other Term) bool {
	if ob, ok := other.(*BlankNode); ok {
		return b.ID == ob.ID
	}
	return false
}

func (b *BlankNode) Hash() uint64 {
	return hashBytes(uint64(TermTypeBlankNode), []byte(b.ID))
}

// TextDirection is the base direction of a directional language-tagged literal.
type TextDirection byte

const (
	DirNone TextDirection = iota
	DirLTR
	DirRTL
)

func (d TextDirection) String() string {
	switch d {
	case DirLTR:
		return "ltr"
	case DirRTL:
		return "rtl"
	default:
		return ""
	}
}

// Literal represents an RDF literal.
type Literal struct {
	Value     string
	Language  string        // for language-tagged strings
	Direction TextDirection // RDF 1.2: base direction, DirNone if absent
	Datatype  *NamedNode    // for typed literals; nil means xsd:string (or rdf:langString with Language)
}

func NewLiteral(value string) *Literal {
	return &Literal{Value: value}
}

func NewLiteralWithLanguage(value, language string) *Literal {
	return &Literal{Value: value, Language: language}
}

// NewLiteralWithLanguageAndDirection creates a literal with language and direction (RDF 1.2).
func NewLiteralWithLanguageAndDirection(value, language string, direction TextDirection) *Literal {
	return &Literal{Value: value, Language: language, Direction: direction}
}

func NewLiteralWithDatatype(value string, datatype *NamedNode) *Literal {
	return &Literal{Value: value, Datatype: datatype}
}

// EffectiveDatatype returns rdf:langString when a language tag is present,
// else the explicit datatype, else xsd:string.
func (l *Literal) EffectiveDatatype() *NamedNode {
	if l.Language != "" {
		return RDFLangString
	}
	if l.Datatype != nil {
		return l.Datatype
	}
	return XSDString
}

func (l *Literal) Type() TermType { return TermTypeLiteral }

func (l *Literal) String() string {
	result := fmt.Sprintf("%q", l.Value)
	if l.Language != "" {
		result += "@" + l.Language
		if l.Direction != DirNone {
			result += "--" + l.Direction.String()
		}
	} else if l.Datatype != nil {
		result += "^^" + l.Datatype.String()
	}
	return result
}

func (l *Literal) Equals(other Term) bool {
	ol, ok := other.(*Literal)
	if !ok {
		return false
	}
	if l.Value != ol.Value || l.Language != ol.Language || l.Direction != ol.Direction {
		return false
	}
	return l.EffectiveDatatype().Equals(ol.EffectiveDatatype())
}

func (l *Literal) Hash() uint64 {
	return hashBytes(uint64(TermTypeLiteral), []byte(l.Value), []byte(l.Language),
		[]byte{byte(l.Direction)}, []byte(l.EffectiveDatatype().IRI))
}

// Variable represents a SPARQL variable. Variables only appear in query ASTs
// and pattern probes, never in stored quads.
type Variable struct {
	Name string
}

func NewVariable(name string) *Variable {
	return &Variable{Name: name}
}

func (v *Variable) Type() TermType { return TermTypeVariable }

func (v *Variable) String() string { return "?" + v.Name }

func (v *Variable) Equals(other Term) bool {
	if ov, ok := other.(*Variable); ok {
		return v.Name == ov.Name
	}
	return false
}

func (v *Variable) Hash() uint64 {
	return hashBytes(uint64(TermTypeVariable), []byte(v.Name))
}

// DefaultGraph represents the default (unnamed) graph. A single shared
// instance is returned by NewDefaultGraph and DefaultGraphTerm.
type DefaultGraph struct{}

var defaultGraphSingleton = &DefaultGraph{}

func NewDefaultGraph() *DefaultGraph { return defaultGraphSingleton }

// DefaultGraphTerm is the canonical DefaultGraph term.
func DefaultGraphTerm() Term { return defaultGraphSingleton }

func (d *DefaultGraph) Type() TermType { return TermTypeDefaultGraph }

func (d *DefaultGraph) String() string { return "DEFAULT" }

func (d *DefaultGraph) Equals(other Term) bool {
	_, ok := other.(*DefaultGraph)
	return ok
}

func (d *DefaultGraph) Hash() uint64 {
	return hashBytes(uint64(TermTypeDefaultGraph))
}

// IsDefaultGraph reports whether t denotes the default graph: either nil or
// a *DefaultGraph value. Callers constructing quads should prefer an explicit
// DefaultGraphTerm() over nil, but nil is accepted at the boundary.
func IsDefaultGraph(t Term) bool {
	if t == nil {
		return true
	}
	_, ok := t.(*DefaultGraph)
	return ok
}

// QuotedTriple represents an RDF 1.2 quoted triple (triple term). It can be
// used as the subject or object of another triple. Subject, Predicate and
// Object are held by interface value, which is what keeps this type from
// being a self-referential Quad despite nesting arbitrarily deep: the
// payload is just three Terms, not a Quad with its own graph slot.
type QuotedTriple struct {
	Subject   Term
	Predicate Term
	Object    Term
}

// NewQuotedTriple creates a new quoted triple. The subject must be a named
// node, blank node, or nested quoted triple; the predicate must be a named node.
func NewQuotedTriple(subject, predicate, object Term) (*QuotedTriple, error) {
	switch subject.(type) {
	case *NamedNode, *BlankNode, *QuotedTriple:
	default:
		return nil, fmt.Errorf("%w: quoted triple subject must be IRI, blank node, or quoted triple, got %T", ErrUnknownTermKind, subject)
	}
	if _, ok := predicate.(*NamedNode); !ok {
		return nil, fmt.Errorf("%w: quoted triple predicate must be IRI, got %T", ErrUnknownTermKind, predicate)
	}
	return &QuotedTriple{Subject: subject, Predicate: predicate, Object: object}, nil
}

func (q *QuotedTriple) Type() TermType { return TermTypeQuotedTriple }

func (q *QuotedTriple) String() string {
	return fmt.Sprintf("<< %s %s %s >>", q.Subject.String(), q.Predicate.String(), q.Object.String())
}

func (q *QuotedTriple) Equals(other Term) bool {
	if oq, ok := other.(*QuotedTriple); ok {
		return q.Subject.Equals(oq.Subject) && q.Predicate.Equals(oq.Predicate) && q.Object.Equals(oq.Object)
	}
	return false
}

func (q *QuotedTriple) Hash() uint64 {
	return hashBytes(uint64(TermTypeQuotedTriple),
		[]byte(fmt.Sprint(q.Subject.Hash())),
		[]byte(fmt.Sprint(q.Predicate.Hash())),
		[]byte(fmt.Sprint(q.Object.Hash())))
}

// TripleTerm represents an RDF-star triple term written with the N-Triples
// 1.2 `<<( s p o )>>` syntax. Unlike QuotedTriple it is never automatically
// reified when it appears as a subject or object.
type TripleTerm struct {
	Subject   Term
	Predicate Term
	Object    Term
}

func (t *TripleTerm) Type() TermType { return TermTypeQuotedTriple }

func (t *TripleTerm) String() string {
	return fmt.Sprintf("<<( %s %s %s )>>", t.Subject.String(), t.Predicate.String(), t.Object.String())
}

func (t *TripleTerm) Equals(other Term) bool {
	if ot, ok := other.(*TripleTerm); ok {
		return t.Subject.Equals(ot.Subject) && t.Predicate.Equals(ot.Predicate) && t.Object.Equals(ot.Object)
	}
	return false
}

func (t *TripleTerm) Hash() uint64 {
	return hashBytes(uint64(TermTypeQuotedTriple)^0x7e12,
		[]byte(fmt.Sprint(t.Subject.Hash())),
		[]byte(fmt.Sprint(t.Predicate.Hash())),
		[]byte(fmt.Sprint(t.Object.Hash())))
}

// ReifiedTriple represents a quoted triple carrying an explicit reifier
// identifier: `<< s p o ~ id >>`. The parser uses this to track that a
// quoted triple has a user-supplied identifier before lowering it to an
// rdf:reifies triple plus a TripleTerm.
type ReifiedTriple struct {
	Identifier Term
	Triple     *QuotedTriple
}

func (r *ReifiedTriple) Type() TermType { return TermTypeQuotedTriple }

func (r *ReifiedTriple) String() string {
	return fmt.Sprintf("<< %s %s %s ~ %s >>",
		r.Triple.Subject.String(), r.Triple.Predicate.String(), r.Triple.Object.String(), r.Identifier.String())
}

func (r *ReifiedTriple) Equals(other Term) bool {
	if or, ok := other.(*ReifiedTriple); ok {
		return r.Identifier.Equals(or.Identifier) && r.Triple.Equals(or.Triple)
	}
	return false
}

func (r *ReifiedTriple) Hash() uint64 {
	return hashBytes(uint64(TermTypeQuotedTriple)^0x1e1f1ed,
		[]byte(fmt.Sprint(r.Identifier.Hash())),
		[]byte(fmt.Sprint(r.Triple.Hash())))
}

// Triple represents an RDF triple (subject, predicate, object) with no graph context.
type Triple struct {
	Subject   Term
	Predicate Term
	Object    Term
}

func NewTriple(subject, predicate, object Term) *Triple {
	return &Triple{Subject: subject, Predicate: predicate, Object: object}
}

func (t *Triple) String() string {
	return fmt.Sprintf("%s %s %s .", t.Subject, t.Predicate, t.Object)
}

// ToQuad converts a triple to a quad in the default graph.
func (t *Triple) ToQuad() *Quad {
	return &Quad{Subject: t.Subject, Predicate: t.Predicate, Object: t.Object, Graph: DefaultGraphTerm()}
}

// ToQuadInGraph converts a triple to a quad addressed to the given graph.
func (t *Triple) ToQuadInGraph(graph Term) *Quad {
	return &Quad{Subject: t.Subject, Predicate: t.Predicate, Object: t.Object, Graph: graph}
}

// Quad represents an RDF quad: a triple annotated with a graph term.
// A nil or *DefaultGraph Graph denotes the default graph.
type Quad struct {
	Subject   Term
	Predicate Term
	Object    Term
	Graph     Term
}

func NewQuad(subject, predicate, object, graph Term) *Quad {
	if graph == nil {
		graph = DefaultGraphTerm()
	}
	return &Quad{Subject: subject, Predicate: predicate, Object: object, Graph: graph}
}

func (q *Quad) String() string {
	return fmt.Sprintf("%s %s %s %s .", q.Subject, q.Predicate, q.Object, q.Graph)
}

// IsZero reports whether the quad has no subject/predicate/object/graph set.
func (q *Quad) IsZero() bool {
	return q.Subject == nil && q.Predicate == nil && q.Object == nil && q.Graph == nil
}

// ToTriple extracts the triple from a quad (ignores graph).
func (q *Quad) ToTriple() *Triple {
	return &Triple{Subject: q.Subject, Predicate: q.Predicate, Object: q.Object}
}

// InDefaultGraph reports whether the quad is in the default graph.
func (q *Quad) InDefaultGraph() bool {
	return IsDefaultGraph(q.Graph)
}

// Equals reports whether two quads are equal in all four components.
func (q *Quad) Equals(other *Quad) bool {
	if other == nil {
		return false
	}
	return termsEqual(q.Subject, other.Subject) && termsEqual(q.Predicate, other.Predicate) &&
		termsEqual(q.Object, other.Object) && graphsEqual(q.Graph, other.Graph)
}

func termsEqual(a, b Term) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equals(b)
}

func graphsEqual(a, b Term) bool {
	an, bn := IsDefaultGraph(a), IsDefaultGraph(b)
	if an || bn {
		return an && bn
	}
	return a.Equals(b)
}

// Hash combines each component's hash; equal quads hash equal.
func (q *Quad) Hash() uint64 {
	g := q.Graph
	if g == nil {
		g = DefaultGraphTerm()
	}
	return hashBytes(0x51ADF000,
		[]byte(fmt.Sprint(q.Subject.Hash())),
		[]byte(fmt.Sprint(q.Predicate.Hash())),
		[]byte(fmt.Sprint(q.Object.Hash())),
		[]byte(fmt.Sprint(g.Hash())))
}

// WithGraph returns a copy of the quad with its graph slot replaced.
func (q *Quad) WithGraph(graph Term) *Quad {
	return &Quad{Subject: q.Subject, Predicate: q.Predicate, Object: q.Object, Graph: graph}
}

// Helper functions for common XSD datatypes.
var (
	XSDString   = NewNamedNode("http://www.w3.org/2001/XMLSchema#string")
	XSDInteger  = NewNamedNode("http://www.w3.org/2001/XMLSchema#integer")
	XSDDecimal  = NewNamedNode("http://www.w3.org/2001/XMLSchema#decimal")
	XSDDouble   = NewNamedNode("http://www.w3.org/2001/XMLSchema#double")
	XSDBoolean  = NewNamedNode("http://www.w3.org/2001/XMLSchema#boolean")
	XSDDateTime = NewNamedNode("http://www.w3.org/2001/XMLSchema#dateTime")
	XSDDate     = NewNamedNode("http://www.w3.org/2001/XMLSchema#date")
	XSDTime     = NewNamedNode("http://www.w3.org/2001/XMLSchema#time")
	XSDDuration = NewNamedNode("http://www.w3.org/2001/XMLSchema#duration")
)

// RDF 1.2 / RDF core vocabulary constants.
var (
	RDFLangString    = NewNamedNode("http://www.w3.org/1999/02/22-rdf-syntax-ns#langString")
	RDFDirLangString = NewNamedNode("http://www.w3.org/1999/02/22-rdf-syntax-ns#dirLangString")
	RDFReifies       = NewNamedNode("http://www.w3.org/1999/02/22-rdf-syntax-ns#reifies")
)

func NewIntegerLiteral(value int64) *Literal {
	return NewLiteralWithDatatype(fmt.Sprintf("%d", value), XSDInteger)
}

func NewDoubleLiteral(value float64) *Literal {
	var str string
	if value == float64(int64(value)) && value < 1e15 && value > -1e15 {
		str = fmt.Sprintf("%.1f", value)
	} else {
		str = fmt.Sprintf("%g", value)
		if !strings.Contains(str, ".") && !strings.Contains(str, "e") && !strings.Contains(str, "E") {
			str += ".0"
		}
	}
	return NewLiteralWithDatatype(str, XSDDouble)
}

func NewDecimalLiteral(value float64) *Literal {
	str := fmt.Sprintf("%.1f", value)
	if value != float64(int64(value*10)/10) {
		str = fmt.Sprintf("%f", value)
		str = strings.TrimRight(str, "0")
		if strings.HasSuffix(str, ".") {
			str += "0"
		}
	}
	return NewLiteralWithDatatype(str, XSDDecimal)
}

func NewBooleanLiteral(value bool) *Literal {
	return NewLiteralWithDatatype(fmt.Sprintf("%t", value), XSDBoolean)
}

func NewDateTimeLiteral(value time.Time) *Literal {
	return NewLiteralWithDatatype(value.Format(time.RFC3339), XSDDateTime)
}

// FromGo coerces a Go value into a Literal per the XSD mapping table:
// integers -> xsd:integer, other finite numbers -> xsd:decimal (or
// xsd:double when the value carries a fractional part), bool ->
// xsd:boolean, time.Time -> xsd:dateTime, string -> plain xsd:string
// literal. Terms are returned unchanged.
func FromGo(value any) (Term, error) {
	switch v := value.(type) {
	case Term:
		return v, nil
	case string:
		return NewLiteral(v), nil
	case bool:
		return NewBooleanLiteral(v), nil
	case int:
		return NewIntegerLiteral(int64(v)), nil
	case int32:
		return NewIntegerLiteral(int64(v)), nil
	case int64:
		return NewIntegerLiteral(v), nil
	case float32:
		return goFloatToLiteral(float64(v)), nil
	case float64:
		return goFloatToLiteral(v), nil
	case time.Time:
		return NewDateTimeLiteral(v), nil
	default:
		return nil, fmt.Errorf("%w: cannot coerce Go value of type %T", ErrUnknownTermKind, value)
	}
}

func goFloatToLiteral(v float64) *Literal {
	if v == math.Trunc(v) {
		return NewDecimalLiteral(v)
	}
	return NewDoubleLiteral(v)
}

// ToGo coerces a Term back into a native Go value using its effective
// datatype. Terms that are not literals are returned as-is (identity on
// terms.
func ToGo(t Term) (any, error) {
	lit, ok := t.(*Literal)
	if !ok {
		return t, nil
	}
	switch lit.EffectiveDatatype().IRI {
	case XSDInteger.IRI:
		var n int64
		if _, err := fmt.Sscanf(lit.Value, "%d", &n); err != nil {
			return nil, fmt.Errorf("invalid xsd:integer %q: %w", lit.Value, err)
		}
		return n, nil
	case XSDDecimal.IRI, XSDDouble.IRI:
		var f float64
		if _, err := fmt.Sscanf(lit.Value, "%g", &f); err != nil {
			return nil, fmt.Errorf("invalid numeric literal %q: %w", lit.Value, err)
		}
		return f, nil
	case XSDBoolean.IRI:
		return lit.Value == "true" || lit.Value == "1", nil
	case XSDDateTime.IRI:
		tm, err := time.Parse(time.RFC3339, lit.Value)
		if err != nil {
			return nil, fmt.Errorf("invalid xsd:dateTime %q: %w", lit.Value, err)
		}
		return tm, nil
	default:
		return lit.Value, nil
	}
}

// BlankNodeGenerator produces fresh, collision-free blank node labels scoped
// to a single owner (a graph instance or a parse batch), rather than sharing
// one process-wide counter across unrelated graphs.
type BlankNodeGenerator struct {
	prefix  string
	counter int
}

// NewBlankNodeGenerator creates a generator. prefix distinguishes labels
// minted by different owners sharing a process (e.g. "b" vs "g2b").
func NewBlankNodeGenerator(prefix string) *BlankNodeGenerator {
	if prefix == "" {
		prefix = "b"
	}
	return &BlankNodeGenerator{prefix: prefix}
}

// Next mints a fresh blank node. Not safe for concurrent use without
// external synchronization; callers needing atomicity should guard it with
// the owner's own mutex.
func (g *BlankNodeGenerator) Next() *BlankNode {
	g.counter++
	return NewBlankNode(fmt.Sprintf("%s%d", g.prefix, g.counter))
}

// Reset resets the counter (useful for testing).
func (g *BlankNodeGenerator) Reset() {
	g.counter = 0
}
