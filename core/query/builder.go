package query

import (
	"fmt"

	"github.com/asaidimu/go-sift/core/value"
)

// FieldRef is the left-hand side of a comparison under construction. Obtain
// one from Field, Entity or Relation and finish it with a comparison method.
type FieldRef struct {
	expr Expr
}

// Field returns a reference to a named slot on the value being evaluated.
func Field(name string) FieldRef {
	return FieldRef{expr: FieldExpr{Name: name}}
}

// Entity returns a reference to a named slot on the evaluation root.
func Entity(name string) FieldRef {
	return FieldRef{expr: EntityExpr{Name: name}}
}

// Relation returns a reference to field inside the value stored under parent,
// e.g. Relation("pet", "type") for pet.type.
func Relation(parent, field string) FieldRef {
	return FieldRef{expr: RelationExpr{
		Root:  EntityExpr{Name: parent},
		Field: FieldExpr{Name: field},
	}}
}

// Literal wraps v, converted with value.From, in a LiteralExpr.
func Literal(v any) LiteralExpr {
	return LiteralExpr{Value: value.From(v)}
}

// Expr returns the reference itself as an expression.
func (f FieldRef) Expr() Expr {
	return f.expr
}

// String returns the rendered reference.
func (f FieldRef) String() string {
	return exprString(f.expr)
}

// Eq builds a condition matching when the field equals v.
func (f FieldRef) Eq(v any) Expr {
	return f.compare(ComparisonOperatorEq, v)
}

// Neq builds a condition matching when the field differs from v.
func (f FieldRef) Neq(v any) Expr {
	return f.compare(ComparisonOperatorNeq, v)
}

// Lt builds a less-than condition.
func (f FieldRef) Lt(v any) Expr {
	return f.compare(ComparisonOperatorLt, v)
}

// Lte builds a less-than-or-equal condition.
func (f FieldRef) Lte(v any) Expr {
	return f.compare(ComparisonOperatorLte, v)
}

// Gt builds a greater-than condition.
func (f FieldRef) Gt(v any) Expr {
	return f.compare(ComparisonOperatorGt, v)
}

// Gte builds a greater-than-or-equal condition.
func (f FieldRef) Gte(v any) Expr {
	return f.compare(ComparisonOperatorGte, v)
}

// In builds a condition matching when the field equals any of values.
func (f FieldRef) In(values ...any) Expr {
	list := make(value.List, len(values))
	for i, v := range values {
		list[i] = value.From(v)
	}
	return RelationalExpr{Operator: ComparisonOperatorIn, Left: f.expr, Right: LiteralExpr{Value: list}}
}

// Compare builds a condition with an explicit operator.
func (f FieldRef) Compare(op ComparisonOperator, v any) Expr {
	return f.compare(op, v)
}

func (f FieldRef) compare(op ComparisonOperator, v any) Expr {
	return RelationalExpr{Operator: op, Left: f.expr, Right: operand(v)}
}

// operand turns a builder argument into an expression. Expressions and field
// references are used as they are so that fields can be compared with each
// other; anything else becomes a literal.
func operand(v any) Expr {
	switch x := v.(type) {
	case Expr:
		return x
	case FieldRef:
		return x.expr
	}
	return Literal(v)
}

// QueryBuilder provides a fluent API for assembling a Query out of filter
// conditions and pagination.
type QueryBuilder struct {
	query Query
}

// NewQueryBuilder creates a new, empty query builder instance.
func NewQueryBuilder() *QueryBuilder {
	return &QueryBuilder{}
}

// Build returns the constructed Query.
func (qb *QueryBuilder) Build() Query {
	return qb.query
}

// Clone returns an independent copy of the builder. Expression trees are
// immutable, so only the pagination pointers need copying.
func (qb *QueryBuilder) Clone() *QueryBuilder {
	clone := &QueryBuilder{query: Query{Filter: qb.query.Filter}}
	if qb.query.Limit != nil {
		clone.query.Limit = Uint64Ptr(*qb.query.Limit)
	}
	if qb.query.Offset != nil {
		clone.query.Offset = Uint64Ptr(*qb.query.Offset)
	}
	return clone
}

// Reset clears all configuration, returning the builder to its initial state.
func (qb *QueryBuilder) Reset() *QueryBuilder {
	qb.query = Query{}
	return qb
}

// Where begins a condition on a field. The finished condition is combined
// with any existing filter using "and".
func (qb *QueryBuilder) Where(field string) *ConditionBuilder {
	return &ConditionBuilder{parent: qb, ref: Field(field), combine: And}
}

// OrWhere begins a condition on a field that is combined with any existing
// filter using "or".
func (qb *QueryBuilder) OrWhere(field string) *ConditionBuilder {
	return &ConditionBuilder{parent: qb, ref: Field(field), combine: Or}
}

// WhereRelation begins a condition on a nested field, parent.field.
func (qb *QueryBuilder) WhereRelation(parent, field string) *ConditionBuilder {
	return &ConditionBuilder{parent: qb, ref: Relation(parent, field), combine: And}
}

// And adds e to the filter using "and".
func (qb *QueryBuilder) And(e Expr) *QueryBuilder {
	qb.add(And, e)
	return qb
}

// Or adds e to the filter using "or".
func (qb *QueryBuilder) Or(e Expr) *QueryBuilder {
	qb.add(Or, e)
	return qb
}

// Limit sets the maximum number of results.
func (qb *QueryBuilder) Limit(limit uint64) *QueryBuilder {
	qb.query.Limit = Uint64Ptr(limit)
	return qb
}

// Offset sets the number of matching results to skip.
func (qb *QueryBuilder) Offset(offset uint64) *QueryBuilder {
	qb.query.Offset = Uint64Ptr(offset)
	return qb
}

func (qb *QueryBuilder) add(combine func(l, r Expr) Expr, e Expr) {
	if e == nil {
		return
	}
	if qb.query.Filter == nil {
		qb.query.Filter = e
		return
	}
	qb.query.Filter = combine(qb.query.Filter, e)
}

// ConditionBuilder is used to build a single condition. It is part of the
// fluent API and not intended to be used directly.
type ConditionBuilder struct {
	parent  *QueryBuilder
	ref     FieldRef
	combine func(l, r Expr) Expr
}

// Eq adds an equality condition to the query.
func (cb *ConditionBuilder) Eq(v any) *QueryBuilder { return cb.finish(cb.ref.Eq(v)) }

// Neq adds a not-equal condition to the query.
func (cb *ConditionBuilder) Neq(v any) *QueryBuilder { return cb.finish(cb.ref.Neq(v)) }

// Lt adds a less-than condition to the query.
func (cb *ConditionBuilder) Lt(v any) *QueryBuilder { return cb.finish(cb.ref.Lt(v)) }

// Lte adds a less-than-or-equal condition to the query.
func (cb *ConditionBuilder) Lte(v any) *QueryBuilder { return cb.finish(cb.ref.Lte(v)) }

// Gt adds a greater-than condition to the query.
func (cb *ConditionBuilder) Gt(v any) *QueryBuilder { return cb.finish(cb.ref.Gt(v)) }

// Gte adds a greater-than-or-equal condition to the query.
func (cb *ConditionBuilder) Gte(v any) *QueryBuilder { return cb.finish(cb.ref.Gte(v)) }

// In adds a membership condition to the query.
func (cb *ConditionBuilder) In(values ...any) *QueryBuilder { return cb.finish(cb.ref.In(values...)) }

func (cb *ConditionBuilder) finish(e Expr) *QueryBuilder {
	cb.parent.add(cb.combine, e)
	return cb.parent
}

// QueryValidationError represents an error found during query validation.
type QueryValidationError struct {
	Field   string
	Message string
}

// Error returns the error message for a QueryValidationError.
func (ve QueryValidationError) Error() string {
	return fmt.Sprintf("validation error in %s: %s", ve.Field, ve.Message)
}

// QueryValidationResult contains the results of a query validation.
type QueryValidationResult struct {
	IsValid bool
	Errors  []QueryValidationError
}

// Validate checks the built query for problems that would make it match
// nothing useful: a zero limit, empty field names and relations nested more
// than one level deep.
func (qb *QueryBuilder) Validate() QueryValidationResult {
	var errors []QueryValidationError

	if qb.query.Limit != nil && *qb.query.Limit == 0 {
		errors = append(errors, QueryValidationError{
			Field:   "limit",
			Message: "limit must be greater than 0",
		})
	}

	if qb.query.Filter != nil {
		errors = append(errors, validateExpr("filter", qb.query.Filter, false)...)
	}

	return QueryValidationResult{
		IsValid: len(errors) == 0,
		Errors:  errors,
	}
}

func validateExpr(path string, e Expr, inRelation bool) []QueryValidationError {
	invalid := func(msg string) []QueryValidationError {
		return []QueryValidationError{{Field: path, Message: msg}}
	}

	switch n := e.(type) {
	case nil:
		return invalid("expression cannot be nil")
	case FieldExpr:
		if n.Name == "" {
			return invalid("field name cannot be empty")
		}
	case EntityExpr:
		if n.Name == "" {
			return invalid("entity name cannot be empty")
		}
	case RelationExpr:
		if inRelation {
			return invalid("relations cannot be nested more than one level")
		}
		errs := validateExpr(path+".root", n.Root, true)
		return append(errs, validateExpr(path+".field", n.Field, true)...)
	case LogicalExpr:
		errs := validateExpr(path+".left", n.Left, inRelation)
		return append(errs, validateExpr(path+".right", n.Right, inRelation)...)
	case RelationalExpr:
		var errs []QueryValidationError
		if !n.Operator.IsStandard() {
			errs = invalid(fmt.Sprintf("unsupported operator %q", n.Operator))
		}
		errs = append(errs, validateExpr(path+".left", n.Left, inRelation)...)
		return append(errs, validateExpr(path+".right", n.Right, inRelation)...)
	}
	return nil
}

// String returns a human-readable representation of the built query.
func (qb *QueryBuilder) String() string {
	return qb.query.String()
}
