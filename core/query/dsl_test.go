package query

import (
	"testing"

	"github.com/asaidimu/go-sift/core/value"
	"github.com/stretchr/testify/assert"
)

func TestComparisonOperator_IsStandard(t *testing.T) {
	for _, op := range []ComparisonOperator{
		ComparisonOperatorEq, ComparisonOperatorNeq, ComparisonOperatorLt,
		ComparisonOperatorLte, ComparisonOperatorGt, ComparisonOperatorGte,
		ComparisonOperatorIn,
	} {
		assert.True(t, op.IsStandard(), op)
	}
	assert.False(t, ComparisonOperator("like").IsStandard())
	assert.Equal(t, "like", ComparisonOperator("like").Symbol())
	assert.Equal(t, "<=", ComparisonOperatorLte.Symbol())
}

func TestExpr_String(t *testing.T) {
	tests := []struct {
		name string
		expr Expr
		want string
	}{
		{"field", FieldExpr{Name: "age"}, "age"},
		{"literal", LiteralExpr{Value: value.String("cat")}, `"cat"`},
		{"relation", RelationExpr{Root: EntityExpr{Name: "pet"}, Field: FieldExpr{Name: "type"}}, "pet.type"},
		{"relational", Field("age").Lte(13), "age <= 13"},
		{"in", Field("tag").In("a", "b"), `tag in ["a", "b"]`},
		{
			"logical",
			Field("name").Eq("Rasmus").Or(Relation("pet", "type").Eq("cat")),
			`(name == "Rasmus" or pet.type == "cat")`,
		},
		{"nil child", RelationalExpr{Operator: ComparisonOperatorEq, Left: FieldExpr{Name: "a"}}, "a == <nil>"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.expr.String())
		})
	}
}

func TestAndAll(t *testing.T) {
	assert.Nil(t, AndAll())

	a := Field("a").Eq(1)
	assert.Equal(t, a, AndAll(a))

	b := Field("b").Eq(2)
	c := Field("c").Eq(3)
	assert.Equal(t, And(And(a, b), c), AndAll(a, b, c))
}

// fieldCollector gathers every field and entity name referenced by a tree.
type fieldCollector struct{}

func (fieldCollector) VisitField(e FieldExpr) []string   { return []string{e.Name} }
func (fieldCollector) VisitEntity(e EntityExpr) []string { return []string{"@" + e.Name} }
func (fieldCollector) VisitLiteral(LiteralExpr) []string { return nil }

func (c fieldCollector) VisitRelation(e RelationExpr) []string {
	return append(Visit[[]string](c, e.Root), Visit[[]string](c, e.Field)...)
}

func (c fieldCollector) VisitLogical(e LogicalExpr) []string {
	return append(Visit[[]string](c, e.Left), Visit[[]string](c, e.Right)...)
}

func (c fieldCollector) VisitRelational(e RelationalExpr) []string {
	return append(Visit[[]string](c, e.Left), Visit[[]string](c, e.Right)...)
}

func TestVisit(t *testing.T) {
	expr := Field("name").Eq("x").And(Relation("pet", "type").In("cat", "dog"))
	assert.Equal(t, []string{"name", "@pet", "type"}, Visit[[]string](fieldCollector{}, expr))

	ptr := &FieldExpr{Name: "ptr"}
	assert.Equal(t, []string{"ptr"}, Visit[[]string](fieldCollector{}, ptr))
}

func TestQuery_String(t *testing.T) {
	var nilQuery *Query
	assert.Equal(t, "EMPTY QUERY", nilQuery.String())
	assert.Equal(t, "EMPTY QUERY", (&Query{}).String())

	q := &Query{Filter: Field("a").Gt(1), Limit: Uint64Ptr(10), Offset: Uint64Ptr(5)}
	assert.Equal(t, "FILTER: a > 1 | LIMIT: 10 | OFFSET: 5", q.String())
}
