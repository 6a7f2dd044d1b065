package query

import (
	"github.com/asaidimu/go-sift/core/value"
)

// ValueRef is the result of evaluating a Predicate. It either borrows a value
// from the tree under evaluation or owns a value synthesised by the
// evaluation, such as the Bool produced by a comparison. Readers go through
// Value and never need to know which case applies.
type ValueRef struct {
	v     value.Value
	owned bool
}

// Borrowed wraps a value that belongs to the tree being evaluated.
func Borrowed(v value.Value) ValueRef {
	return ValueRef{v: v}
}

// Owned wraps a value created during evaluation.
func Owned(v value.Value) ValueRef {
	return ValueRef{v: v, owned: true}
}

// Value returns the referenced value. The zero ValueRef reads as Null.
func (r ValueRef) Value() value.Value {
	if r.v == nil {
		return value.Null{}
	}
	return r.v
}

// IsOwned reports whether the value was created during evaluation.
func (r ValueRef) IsOwned() bool {
	return r.owned
}

// Predicate is the compiled form of an Expr. Eval is a pure function of its
// input, so a Predicate may be shared between goroutines.
type Predicate interface {
	Eval(v value.Value) ValueRef
}

// PredicateFunc adapts an ordinary function to the Predicate interface.
type PredicateFunc func(v value.Value) ValueRef

// Eval calls f(v).
func (f PredicateFunc) Eval(v value.Value) ValueRef { return f(v) }

// Matches reports whether p evaluates to the boolean true for v. Any other
// result, including non-boolean values, is a non-match.
func Matches(p Predicate, v value.Value) bool {
	b, ok := value.AsBool(p.Eval(v).Value())
	return ok && b
}

var (
	ownedTrue  = Owned(value.Bool(true))
	ownedFalse = Owned(value.Bool(false))
)

func ownedBool(b bool) ValueRef {
	if b {
		return ownedTrue
	}
	return ownedFalse
}

// matchAll is used for queries without a filter.
var matchAll = PredicateFunc(func(value.Value) ValueRef { return ownedTrue })

// Compile lowers e into a Predicate. Compilation never fails; a nil e, or a
// nil node pointer, compiles to a predicate that matches everything. A nil
// child reads as Null. Malformed comparisons are resolved at evaluation time
// to false.
func Compile(e Expr) Predicate {
	if IsNil(e) {
		return matchAll
	}
	return Visit[Predicate](compiler{}, e)
}

type compiler struct{}

func (c compiler) compile(e Expr) Predicate {
	return Visit[Predicate](c, e)
}

func (compiler) VisitField(e FieldExpr) Predicate {
	return fieldPredicate{name: e.Name}
}

func (compiler) VisitEntity(e EntityExpr) Predicate {
	return fieldPredicate{name: e.Name}
}

func (c compiler) VisitRelation(e RelationExpr) Predicate {
	return relationPredicate{root: c.compile(e.Root), field: c.compile(e.Field)}
}

func (compiler) VisitLiteral(e LiteralExpr) Predicate {
	v := e.Value
	if v == nil {
		v = value.Null{}
	}
	return literalPredicate{v: v}
}

func (c compiler) VisitLogical(e LogicalExpr) Predicate {
	return logicalPredicate{op: e.Operator, left: c.compile(e.Left), right: c.compile(e.Right)}
}

func (c compiler) VisitRelational(e RelationalExpr) Predicate {
	return relationalPredicate{op: e.Operator, left: c.compile(e.Left), right: c.compile(e.Right)}
}

// fieldPredicate looks a name up on the input and borrows the result.
type fieldPredicate struct {
	name string
}

func (p fieldPredicate) Eval(v value.Value) ValueRef {
	return Borrowed(value.Lookup(v, p.name))
}

// relationPredicate evaluates field against the result of root. A result
// reached through an owned temporary is itself owned.
type relationPredicate struct {
	root  Predicate
	field Predicate
}

func (p relationPredicate) Eval(v value.Value) ValueRef {
	root := p.root.Eval(v)
	res := p.field.Eval(root.Value())
	if root.IsOwned() && !res.IsOwned() {
		return Owned(res.Value())
	}
	return res
}

type literalPredicate struct {
	v value.Value
}

func (p literalPredicate) Eval(value.Value) ValueRef {
	return Owned(p.v)
}

// logicalPredicate evaluates both operands and yields false unless both are
// booleans.
type logicalPredicate struct {
	op    LogicalOperator
	left  Predicate
	right Predicate
}

func (p logicalPredicate) Eval(v value.Value) ValueRef {
	l, lok := value.AsBool(p.left.Eval(v).Value())
	r, rok := value.AsBool(p.right.Eval(v).Value())
	if !lok || !rok {
		return ownedFalse
	}
	switch p.op {
	case LogicalOperatorAnd:
		return ownedBool(l && r)
	case LogicalOperatorOr:
		return ownedBool(l || r)
	}
	return ownedFalse
}

type relationalPredicate struct {
	op    ComparisonOperator
	left  Predicate
	right Predicate
}

func (p relationalPredicate) Eval(v value.Value) ValueRef {
	l := p.left.Eval(v).Value()
	r := p.right.Eval(v).Value()
	return ownedBool(compare(p.op, l, r))
}

func compare(op ComparisonOperator, l, r value.Value) bool {
	switch op {
	case ComparisonOperatorEq:
		return value.Equal(l, r)
	case ComparisonOperatorNeq:
		return !value.Equal(l, r)
	case ComparisonOperatorIn:
		list, ok := value.AsList(r)
		return ok && value.Contains(list, l)
	}

	c, ok := value.Compare(l, r)
	if !ok {
		return false
	}
	switch op {
	case ComparisonOperatorLt:
		return c < 0
	case ComparisonOperatorLte:
		return c <= 0
	case ComparisonOperatorGt:
		return c > 0
	case ComparisonOperatorGte:
		return c >= 0
	}
	return false
}
