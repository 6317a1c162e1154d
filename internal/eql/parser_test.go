package eql

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parse(t *testing.T, input string) Query {
	t.Helper()
	q, err := ParseQuery(input)
	require.NoError(t, err)
	return q
}

func parseSelect(t *testing.T, input string) *SelectQuery {
	t.Helper()
	q := parse(t, input)
	sel, ok := q.(*SelectQuery)
	require.True(t, ok, "expected SelectQuery, got %T", q)
	return sel
}

func syntaxErr(t *testing.T, input string) *SyntaxError {
	t.Helper()
	_, err := ParseQuery(input)
	require.Error(t, err)
	var serr *SyntaxError
	require.ErrorAs(t, err, &serr)
	return serr
}

func TestParser_SelectBasic(t *testing.T) {
	q := parseSelect(t, "SELECT u FROM User u")
	require.Len(t, q.Select.Items, 1)
	prop := q.Select.Items[0].Expr.(*PropertyExpr)
	assert.Equal(t, "u", prop.PropertyName)
	require.Len(t, q.From.Items, 1)
	assert.Equal(t, "User", q.From.Items[0].EntityName)
	assert.Equal(t, "u", q.From.Items[0].Alias)
	assert.Nil(t, q.Where)
}

func TestParser_QualifiedProperties(t *testing.T) {
	q := parseSelect(t, "SELECT u.Name, u.Email FROM User u")
	require.Len(t, q.Select.Items, 2)
	p0 := q.Select.Items[0].Expr.(*PropertyExpr)
	assert.Equal(t, "u", p0.EntityAlias)
	assert.Equal(t, "Name", p0.PropertyName)
	p1 := q.Select.Items[1].Expr.(*PropertyExpr)
	assert.Equal(t, "Email", p1.PropertyName)
}

func TestParser_PrecedenceAndBindsTighterThanOr(t *testing.T) {
	q := parseSelect(t, "SELECT x FROM T t WHERE a = 1 OR b = 2 AND c = 3")
	or := q.Where.Condition.(*BinaryExpr)
	require.Equal(t, OpOr, or.Op)

	left := or.Left.(*BinaryExpr)
	assert.Equal(t, OpEQ, left.Op)

	and := or.Right.(*BinaryExpr)
	require.Equal(t, OpAnd, and.Op)
	assert.Equal(t, OpEQ, and.Left.(*BinaryExpr).Op)
	assert.Equal(t, OpEQ, and.Right.(*BinaryExpr).Op)
}

func TestParser_ParensOverridePrecedence(t *testing.T) {
	q := parseSelect(t, "SELECT x FROM T t WHERE (a = 1 OR b = 2) AND c = 3")
	and := q.Where.Condition.(*BinaryExpr)
	require.Equal(t, OpAnd, and.Op)
	assert.Equal(t, OpOr, and.Left.(*BinaryExpr).Op)
}

func TestParser_RelationalBindsTighterThanEquality(t *testing.T) {
	q := parseSelect(t, "SELECT x FROM T t WHERE a = b < c")
	eq := q.Where.Condition.(*BinaryExpr)
	require.Equal(t, OpEQ, eq.Op)
	assert.Equal(t, OpLT, eq.Right.(*BinaryExpr).Op)
}

func TestParser_Arithmetic(t *testing.T) {
	q := parseSelect(t, "SELECT x FROM T t WHERE a + b * c = 10")
	eq := q.Where.Condition.(*BinaryExpr)
	add := eq.Left.(*BinaryExpr)
	require.Equal(t, OpAdd, add.Op)
	assert.Equal(t, OpMul, add.Right.(*BinaryExpr).Op)
}

func TestParser_UnaryMinusAndNot(t *testing.T) {
	q := parseSelect(t, "SELECT x FROM T t WHERE NOT a = -1")
	not := q.Where.Condition.(*UnaryExpr)
	require.Equal(t, OpNot, not.Op)
	eq := not.Operand.(*BinaryExpr)
	neg := eq.Right.(*UnaryExpr)
	assert.Equal(t, OpNeg, neg.Op)
	assert.Equal(t, 1.0, neg.Operand.(*LiteralExpr).Value)
}

func TestParser_EntityNamedOrder(t *testing.T) {
	q := parseSelect(t, "SELECT o.Total FROM Order o ORDER BY o.Total DESC")
	assert.Equal(t, "Order", q.From.Items[0].EntityName)
	require.NotNil(t, q.OrderBy)
	require.Len(t, q.OrderBy.Items, 1)
	assert.Equal(t, OrderDesc, q.OrderBy.Items[0].Direction)
}

func TestParser_PropertyNamedYear(t *testing.T) {
	// YEAR without a following paren is an ordinary name.
	q := parseSelect(t, "SELECT m.Year FROM Model m WHERE m.Year > 2000")
	prop := q.Select.Items[0].Expr.(*PropertyExpr)
	assert.Equal(t, "Year", prop.PropertyName)
}

func TestParser_ScalarFunctionCall(t *testing.T) {
	q := parseSelect(t, "SELECT YEAR(o.Placed) FROM Order o")
	fn := q.Select.Items[0].Expr.(*FunctionExpr)
	assert.Equal(t, "YEAR", fn.FunctionName)
	require.Len(t, fn.Arguments, 1)
}

func TestParser_UnknownFunctionKeepsSpelling(t *testing.T) {
	q := parseSelect(t, "SELECT DATEDIFF(a, b) FROM T t")
	fn := q.Select.Items[0].Expr.(*FunctionExpr)
	assert.Equal(t, "DATEDIFF", fn.FunctionName)
	require.Len(t, fn.Arguments, 2)
}

func TestParser_Aggregates(t *testing.T) {
	q := parseSelect(t, "SELECT COUNT(o.Id), SUM(o.Total) FROM Order o")
	count := q.Select.Items[0].Expr.(*AggregateExpr)
	assert.Equal(t, "COUNT", count.FunctionName)
	assert.False(t, count.Distinct)
	sum := q.Select.Items[1].Expr.(*AggregateExpr)
	assert.Equal(t, "SUM", sum.FunctionName)
}

func TestParser_CountDistinctStar(t *testing.T) {
	q := parseSelect(t, "SELECT COUNT(DISTINCT u.City), COUNT(*) FROM User u")
	distinct := q.Select.Items[0].Expr.(*AggregateExpr)
	assert.True(t, distinct.Distinct)
	star := q.Select.Items[1].Expr.(*AggregateExpr)
	_, isWildcard := star.Argument.(*WildcardExpr)
	assert.True(t, isWildcard)
}

func TestParser_JoinRelationshipPath(t *testing.T) {
	q := parseSelect(t, "SELECT o.Id FROM Order o JOIN o.Customer c WHERE c.Name LIKE :pat")
	require.Len(t, q.From.Joins, 1)
	join := q.From.Joins[0]
	assert.Equal(t, JoinInner, join.JoinType)
	assert.Equal(t, "o", join.SourceAlias)
	assert.Equal(t, "Customer", join.RelationshipName)
	assert.Equal(t, "c", join.Alias)
	assert.Nil(t, join.On)
}

func TestParser_JoinVariants(t *testing.T) {
	q := parseSelect(t, "SELECT o.Id FROM Order o LEFT OUTER JOIN o.Customer c INNER JOIN o.Items i")
	require.Len(t, q.From.Joins, 2)
	assert.Equal(t, JoinLeft, q.From.Joins[0].JoinType)
	assert.Equal(t, JoinInner, q.From.Joins[1].JoinType)
}

func TestParser_JoinWithOn(t *testing.T) {
	q := parseSelect(t, "SELECT o.Id FROM Order o JOIN o.Customer c ON c.Active = true")
	require.NotNil(t, q.From.Joins[0].On)
}

func TestParser_JoinTargetMustBePath(t *testing.T) {
	serr := syntaxErr(t, "SELECT x FROM Order o JOIN 5 c")
	assert.Contains(t, serr.Expected[0], "relationship path")
	assert.Equal(t, TokenNumber, serr.Got)
}

func TestParser_JoinTargetBareNameRejected(t *testing.T) {
	serr := syntaxErr(t, "SELECT x FROM Order o JOIN Customer c")
	assert.Contains(t, serr.Expected[0], "relationship path")
}

func TestParser_SelectWithoutItemsPointsAtFrom(t *testing.T) {
	serr := syntaxErr(t, "SELECT FROM User u")
	assert.Equal(t, TokenFrom, serr.Got)
	assert.Equal(t, 7, serr.Pos)
	assert.Contains(t, serr.Expected, "expression")
}

func TestParser_UnknownLeadingKeywordSuggests(t *testing.T) {
	serr := syntaxErr(t, "SELEC x FROM T t")
	assert.Contains(t, serr.Suggestion, "select")
}

func TestParser_Update(t *testing.T) {
	q := parse(t, "UPDATE User u SET u.Name = :n WHERE u.Id = :id")
	upd, ok := q.(*UpdateQuery)
	require.True(t, ok)
	assert.Equal(t, "User", upd.EntityName)
	assert.Equal(t, "u", upd.Alias)
	require.Len(t, upd.Assignments, 1)
	assert.Equal(t, "Name", upd.Assignments[0].PropertyName)
	param := upd.Assignments[0].Value.(*ParameterExpr)
	assert.Equal(t, "n", param.Name)
	require.NotNil(t, upd.Where)
}

func TestParser_UpdateUnqualifiedAssignment(t *testing.T) {
	q := parse(t, "UPDATE User SET Name = 'x'")
	upd := q.(*UpdateQuery)
	assert.Equal(t, "", upd.Alias)
	assert.Equal(t, "Name", upd.Assignments[0].PropertyName)
}

func TestParser_UpdateForeignAliasRejected(t *testing.T) {
	_, err := ParseQuery("UPDATE User u SET x.Name = 'x'")
	require.Error(t, err)
	var serr *SyntaxError
	require.ErrorAs(t, err, &serr)
}

func TestParser_Delete(t *testing.T) {
	q := parse(t, "DELETE FROM Order o WHERE o.Total < 0")
	del, ok := q.(*DeleteQuery)
	require.True(t, ok)
	assert.Equal(t, "Order", del.EntityName)
	assert.Equal(t, "o", del.Alias)
	require.NotNil(t, del.Where)
}

func TestParser_DeleteWithoutFrom(t *testing.T) {
	q := parse(t, "DELETE Order WHERE Total < 0")
	del := q.(*DeleteQuery)
	assert.Equal(t, "Order", del.EntityName)
}

func TestParser_InList(t *testing.T) {
	q := parseSelect(t, "SELECT x FROM T t WHERE t.Status IN ('a', 'b', 'c')")
	in := q.Where.Condition.(*BinaryExpr)
	require.Equal(t, OpIn, in.Op)
	list := in.Right.(*ListExpr)
	require.Len(t, list.Items, 3)
}

func TestParser_InSubquery(t *testing.T) {
	q := parseSelect(t, "SELECT u.Name FROM User u WHERE u.Id IN (SELECT o.UserId FROM Order o)")
	in := q.Where.Condition.(*BinaryExpr)
	sub := in.Right.(*SubqueryExpr)
	require.NotNil(t, sub.Query)
	assert.Equal(t, "Order", sub.Query.From.Items[0].EntityName)
}

func TestParser_BetweenDesugars(t *testing.T) {
	q := parseSelect(t, "SELECT x FROM T t WHERE t.Age BETWEEN 18 AND 65")
	and := q.Where.Condition.(*BinaryExpr)
	require.Equal(t, OpAnd, and.Op)
	lower := and.Left.(*BinaryExpr)
	assert.Equal(t, OpGTE, lower.Op)
	upper := and.Right.(*BinaryExpr)
	assert.Equal(t, OpLTE, upper.Op)
}

func TestParser_IsNull(t *testing.T) {
	q := parseSelect(t, "SELECT x FROM T t WHERE t.DeletedAt IS NULL AND t.Name IS NOT NULL")
	and := q.Where.Condition.(*BinaryExpr)
	isNull := and.Left.(*BinaryExpr)
	require.Equal(t, OpIs, isNull.Op)
	assert.Nil(t, isNull.Right.(*LiteralExpr).Value)
	isNotNull := and.Right.(*BinaryExpr)
	assert.Equal(t, OpIsNot, isNotNull.Op)
}

func TestParser_GroupByHaving(t *testing.T) {
	q := parseSelect(t, "SELECT c.Country, COUNT(*) FROM Customer c GROUP BY c.Country HAVING COUNT(*) > 10")
	require.NotNil(t, q.GroupBy)
	require.Len(t, q.GroupBy.Items, 1)
	require.NotNil(t, q.Having)
	cmp := q.Having.Condition.(*BinaryExpr)
	assert.Equal(t, OpGT, cmp.Op)
}

func TestParser_DistinctAndAliases(t *testing.T) {
	q := parseSelect(t, "SELECT DISTINCT u.City AS city FROM User u")
	assert.True(t, q.Select.Distinct)
	assert.Equal(t, "city", q.Select.Items[0].Alias)
}

func TestParser_Wildcard(t *testing.T) {
	q := parseSelect(t, "SELECT *, u.* FROM User u")
	_, bare := q.Select.Items[0].Expr.(*WildcardExpr)
	assert.True(t, bare)
	qualified := q.Select.Items[1].Expr.(*WildcardExpr)
	assert.Equal(t, "u", qualified.EntityAlias)
}

func TestParser_TrailingSemicolon(t *testing.T) {
	parse(t, "SELECT u FROM User u;")
}

func TestParser_TrailingGarbage(t *testing.T) {
	serr := syntaxErr(t, "SELECT u FROM User u; extra")
	assert.Contains(t, serr.Expected, "end of query")
}

func TestParser_MultipleFromItems(t *testing.T) {
	q := parseSelect(t, "SELECT u.Name, o.Total FROM User u, Order o")
	require.Len(t, q.From.Items, 2)
	assert.Equal(t, "Order", q.From.Items[1].EntityName)
}

func TestParser_SyntaxErrorPosition(t *testing.T) {
	serr := syntaxErr(t, "SELECT u\nFROM")
	assert.Equal(t, 2, serr.Line)
}

func TestSuggestFrom(t *testing.T) {
	assert.Equal(t, "select", SuggestFrom("selct", []string{"select", "update", "delete"}, 2))
	assert.Equal(t, "", SuggestFrom("zzzzz", []string{"select", "update", "delete"}, 2))
}
