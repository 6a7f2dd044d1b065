// Package query defines the expression language used to filter collections of
// value.Value documents. Expressions are built either with the fluent builder
// (Field("age").Lte(13)) or parsed from a compact query string
// ("age__lte=13&$limit=10"), compiled once into a Predicate, and evaluated
// lazily against each document.
package query

import (
	"fmt"
	"strings"

	"github.com/asaidimu/go-sift/core/value"
)

// LogicalOperator combines two expressions.
type LogicalOperator string

// Supported logical operators.
const (
	LogicalOperatorAnd LogicalOperator = "and"
	LogicalOperatorOr  LogicalOperator = "or"
)

// ComparisonOperator defines the set of operators that can be used in a
// relational expression.
type ComparisonOperator string

// Supported comparison operators.
const (
	ComparisonOperatorEq  ComparisonOperator = "eq"
	ComparisonOperatorNeq ComparisonOperator = "neq"
	ComparisonOperatorLt  ComparisonOperator = "lt"
	ComparisonOperatorLte ComparisonOperator = "lte"
	ComparisonOperatorGt  ComparisonOperator = "gt"
	ComparisonOperatorGte ComparisonOperator = "gte"
	ComparisonOperatorIn  ComparisonOperator = "in"
)

// comparisonSymbols maps every operator to the symbol used when rendering.
var comparisonSymbols = map[ComparisonOperator]string{
	ComparisonOperatorEq:  "==",
	ComparisonOperatorNeq: "!=",
	ComparisonOperatorLt:  "<",
	ComparisonOperatorLte: "<=",
	ComparisonOperatorGt:  ">",
	ComparisonOperatorGte: ">=",
	ComparisonOperatorIn:  "in",
}

// IsStandard checks if a comparison operator is one of the supported operators.
func (c ComparisonOperator) IsStandard() bool {
	_, ok := comparisonSymbols[c]
	return ok
}

// Symbol returns the infix symbol of the operator, or the operator name
// itself when it is not a standard one.
func (c ComparisonOperator) Symbol() string {
	if s, ok := comparisonSymbols[c]; ok {
		return s
	}
	return string(c)
}

// Expr is a node of the expression tree. The set of node types is closed:
// FieldExpr, EntityExpr, RelationExpr, LiteralExpr, LogicalExpr and
// RelationalExpr. Trees are immutable once built and every child belongs to
// exactly one parent.
type Expr interface {
	fmt.Stringer

	// And combines the receiver with other using LogicalOperatorAnd.
	And(other Expr) Expr
	// Or combines the receiver with other using LogicalOperatorOr.
	Or(other Expr) Expr

	exprNode()
}

// FieldExpr references a named slot on the value being evaluated.
type FieldExpr struct {
	Name string
}

// EntityExpr references a named slot on the evaluation root. It is the left
// operand of a RelationExpr.
type EntityExpr struct {
	Name string
}

// RelationExpr is one level of nested access: Root is evaluated first and
// Field is evaluated against its result.
type RelationExpr struct {
	Root  Expr
	Field Expr
}

// LiteralExpr is a constant.
type LiteralExpr struct {
	Value value.Value
}

// LogicalExpr joins two expressions with and/or.
type LogicalExpr struct {
	Operator LogicalOperator
	Left     Expr
	Right    Expr
}

// RelationalExpr compares two expressions.
type RelationalExpr struct {
	Operator ComparisonOperator
	Left     Expr
	Right    Expr
}

func (FieldExpr) exprNode()      {}
func (EntityExpr) exprNode()     {}
func (RelationExpr) exprNode()   {}
func (LiteralExpr) exprNode()    {}
func (LogicalExpr) exprNode()    {}
func (RelationalExpr) exprNode() {}

func (e FieldExpr) And(other Expr) Expr      { return And(e, other) }
func (e FieldExpr) Or(other Expr) Expr       { return Or(e, other) }
func (e EntityExpr) And(other Expr) Expr     { return And(e, other) }
func (e EntityExpr) Or(other Expr) Expr      { return Or(e, other) }
func (e RelationExpr) And(other Expr) Expr   { return And(e, other) }
func (e RelationExpr) Or(other Expr) Expr    { return Or(e, other) }
func (e LiteralExpr) And(other Expr) Expr    { return And(e, other) }
func (e LiteralExpr) Or(other Expr) Expr     { return Or(e, other) }
func (e LogicalExpr) And(other Expr) Expr    { return And(e, other) }
func (e LogicalExpr) Or(other Expr) Expr     { return Or(e, other) }
func (e RelationalExpr) And(other Expr) Expr { return And(e, other) }
func (e RelationalExpr) Or(other Expr) Expr  { return Or(e, other) }

func (e FieldExpr) String() string    { return e.Name }
func (e EntityExpr) String() string   { return e.Name }
func (e RelationExpr) String() string { return fmt.Sprintf("%s.%s", exprString(e.Root), exprString(e.Field)) }
func (e LiteralExpr) String() string  { return value.Format(e.Value) }

func (e LogicalExpr) String() string {
	return fmt.Sprintf("(%s %s %s)", exprString(e.Left), e.Operator, exprString(e.Right))
}

func (e RelationalExpr) String() string {
	return fmt.Sprintf("%s %s %s", exprString(e.Left), e.Operator.Symbol(), exprString(e.Right))
}

func exprString(e Expr) string {
	if IsNil(e) {
		return "<nil>"
	}
	return e.String()
}

// And returns a LogicalExpr joining left and right with "and".
func And(left, right Expr) Expr {
	return LogicalExpr{Operator: LogicalOperatorAnd, Left: left, Right: right}
}

// Or returns a LogicalExpr joining left and right with "or".
func Or(left, right Expr) Expr {
	return LogicalExpr{Operator: LogicalOperatorOr, Left: left, Right: right}
}

// AndAll folds exprs left to right with "and". It returns nil when exprs is
// empty.
func AndAll(exprs ...Expr) Expr {
	var out Expr
	for _, e := range exprs {
		if out == nil {
			out = e
			continue
		}
		out = And(out, e)
	}
	return out
}

// Visitor computes a result of type R for every node type. Use Visit to
// dispatch a node to the matching method.
type Visitor[R any] interface {
	VisitField(e FieldExpr) R
	VisitEntity(e EntityExpr) R
	VisitRelation(e RelationExpr) R
	VisitLiteral(e LiteralExpr) R
	VisitLogical(e LogicalExpr) R
	VisitRelational(e RelationalExpr) R
}

// Visit dispatches e to the method of v matching its node type. Pointers to
// node structs are accepted as well. A nil expression, including a nil node
// pointer, is visited as a Null literal. A foreign expression panics, as the
// node set is closed.
func Visit[R any](v Visitor[R], e Expr) R {
	if IsNil(e) {
		return v.VisitLiteral(LiteralExpr{Value: value.Null{}})
	}
	switch n := e.(type) {
	case FieldExpr:
		return v.VisitField(n)
	case *FieldExpr:
		return v.VisitField(*n)
	case EntityExpr:
		return v.VisitEntity(n)
	case *EntityExpr:
		return v.VisitEntity(*n)
	case RelationExpr:
		return v.VisitRelation(n)
	case *RelationExpr:
		return v.VisitRelation(*n)
	case LiteralExpr:
		return v.VisitLiteral(n)
	case *LiteralExpr:
		return v.VisitLiteral(*n)
	case LogicalExpr:
		return v.VisitLogical(n)
	case *LogicalExpr:
		return v.VisitLogical(*n)
	case RelationalExpr:
		return v.VisitRelational(n)
	case *RelationalExpr:
		return v.VisitRelational(*n)
	}
	panic(fmt.Sprintf("query: unknown expression type %T", e))
}

// IsNil reports whether e is nil or a nil pointer to a node.
func IsNil(e Expr) bool {
	switch n := e.(type) {
	case nil:
		return true
	case *FieldExpr:
		return n == nil
	case *EntityExpr:
		return n == nil
	case *RelationExpr:
		return n == nil
	case *LiteralExpr:
		return n == nil
	case *LogicalExpr:
		return n == nil
	case *RelationalExpr:
		return n == nil
	}
	return false
}

// Query is a complete query: an optional filter plus optional pagination.
type Query struct {
	Filter Expr
	Limit  *uint64
	Offset *uint64
}

// String returns a human-readable representation of the query.
func (q *Query) String() string {
	if q == nil {
		return "EMPTY QUERY"
	}
	var parts []string
	if !IsNil(q.Filter) {
		parts = append(parts, "FILTER: "+q.Filter.String())
	}
	if q.Limit != nil {
		parts = append(parts, fmt.Sprintf("LIMIT: %d", *q.Limit))
	}
	if q.Offset != nil {
		parts = append(parts, fmt.Sprintf("OFFSET: %d", *q.Offset))
	}
	if len(parts) == 0 {
		return "EMPTY QUERY"
	}
	return strings.Join(parts, " | ")
}
