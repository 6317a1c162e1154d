package eql

// Node is the interface implemented by all AST nodes. Nodes are
// immutable value objects: once a query is parsed, translation never
// mutates the tree.
type Node interface {
	nodeType() string
	Pos() int // byte offset in source
}

// Query is the interface for top-level EQL queries.
type Query interface {
	Node
	queryNode()
}

// ── Top-level queries ───────────────────────────────────────────────────────

// SelectQuery represents: SELECT ... [FROM ...] [WHERE ...] [GROUP BY ...]
// [HAVING ...] [ORDER BY ...]
type SelectQuery struct {
	TokenPos int
	Select   *SelectClause // never nil on a parsed query
	From     *FromClause
	Where    *WhereClause
	GroupBy  *GroupByClause
	Having   *HavingClause
	OrderBy  *OrderByClause
}

func (q *SelectQuery) nodeType() string { return "SelectQuery" }
func (q *SelectQuery) Pos() int         { return q.TokenPos }
func (q *SelectQuery) queryNode()       {}

// UpdateQuery represents: UPDATE <entity> [alias] SET a = v [, ...] [WHERE ...]
type UpdateQuery struct {
	TokenPos    int
	EntityName  string
	Alias       string
	Assignments []SetAssignment
	Where       *WhereClause
}

func (q *UpdateQuery) nodeType() string { return "UpdateQuery" }
func (q *UpdateQuery) Pos() int         { return q.TokenPos }
func (q *UpdateQuery) queryNode()       {}

// DeleteQuery represents: DELETE [FROM] <entity> [alias] [WHERE ...]
type DeleteQuery struct {
	TokenPos   int
	EntityName string
	Alias      string
	Where      *WhereClause
}

func (q *DeleteQuery) nodeType() string { return "DeleteQuery" }
func (q *DeleteQuery) Pos() int         { return q.TokenPos }
func (q *DeleteQuery) queryNode()       {}

// SetAssignment is a single property = expression pair in an UPDATE. The
// property is always a simple name; any qualifying alias is validated
// against the update target by the parser and dropped.
type SetAssignment struct {
	PropertyName string
	Value        Expr
}

// ── Clauses ─────────────────────────────────────────────────────────────────

// SelectClause holds the projected items.
type SelectClause struct {
	Distinct bool
	Items    []SelectItem
}

// SelectItem is one projected expression with an optional alias.
type SelectItem struct {
	Expr  Expr
	Alias string
}

// FromClause holds the queried entities and relationship joins.
type FromClause struct {
	Items []FromItem
	Joins []JoinClause
}

// FromItem names one logical entity with an optional alias.
type FromItem struct {
	EntityName string
	Alias      string
}

// JoinType enumerates the supported join flavors.
type JoinType int

const (
	JoinInner JoinType = iota
	JoinLeft
	JoinRight
	JoinFull
)

// String returns the SQL spelling of the join type.
func (jt JoinType) String() string {
	switch jt {
	case JoinInner:
		return "INNER JOIN"
	case JoinLeft:
		return "LEFT JOIN"
	case JoinRight:
		return "RIGHT JOIN"
	case JoinFull:
		return "FULL JOIN"
	default:
		return "JOIN"
	}
}

// JoinClause traverses a declared relationship: JOIN <alias>.<relationship>
// [AS] <joinAlias> [ON <condition>]. The target must be a relationship
// property; whether it actually exists is checked at translation time.
type JoinClause struct {
	TokenPos         int
	JoinType         JoinType
	SourceAlias      string // alias the relationship is navigated from
	RelationshipName string
	Alias            string
	On               Expr // nil unless an explicit ON condition is given
}

// WhereClause holds the filter predicate.
type WhereClause struct {
	Condition Expr
}

// GroupByClause holds the grouping expressions.
type GroupByClause struct {
	Items []Expr
}

// HavingClause holds the post-grouping predicate.
type HavingClause struct {
	Condition Expr
}

// OrderByClause holds ordering specifications.
type OrderByClause struct {
	Items []OrderByItem
}

// OrderDirection is ASC or DESC.
type OrderDirection int

const (
	OrderAsc OrderDirection = iota
	OrderDesc
)

// String returns the SQL spelling of the direction.
func (d OrderDirection) String() string {
	if d == OrderDesc {
		return "DESC"
	}
	return "ASC"
}

// OrderByItem is a single ordering specification.
type OrderByItem struct {
	Expr      Expr
	Direction OrderDirection
}

// ── Expressions ─────────────────────────────────────────────────────────────

// Expr is implemented by all expression nodes.
type Expr interface {
	Node
	exprNode()
}

// BinaryOp enumerates binary operators.
type BinaryOp int

const (
	OpOr BinaryOp = iota
	OpAnd
	OpEQ
	OpNEQ
	OpLT
	OpLTE
	OpGT
	OpGTE
	OpLike
	OpIn
	OpIs
	OpIsNot
	OpAdd
	OpSub
	OpMul
	OpDiv
	OpMod
)

// String returns the SQL spelling of the operator.
func (op BinaryOp) String() string {
	switch op {
	case OpOr:
		return "OR"
	case OpAnd:
		return "AND"
	case OpEQ:
		return "="
	case OpNEQ:
		return "<>"
	case OpLT:
		return "<"
	case OpLTE:
		return "<="
	case OpGT:
		return ">"
	case OpGTE:
		return ">="
	case OpLike:
		return "LIKE"
	case OpIn:
		return "IN"
	case OpIs:
		return "IS"
	case OpIsNot:
		return "IS NOT"
	case OpAdd:
		return "+"
	case OpSub:
		return "-"
	case OpMul:
		return "*"
	case OpDiv:
		return "/"
	case OpMod:
		return "%"
	default:
		return "?"
	}
}

// UnaryOp enumerates unary operators.
type UnaryOp int

const (
	OpNot UnaryOp = iota
	OpNeg
	OpPos
)

// String returns the SQL spelling of the operator.
func (op UnaryOp) String() string {
	switch op {
	case OpNot:
		return "NOT"
	case OpNeg:
		return "-"
	case OpPos:
		return "+"
	default:
		return "?"
	}
}

// BinaryExpr represents "left op right".
type BinaryExpr struct {
	TokenPos int
	Op       BinaryOp
	Left     Expr
	Right    Expr
}

func (e *BinaryExpr) nodeType() string { return "BinaryExpr" }
func (e *BinaryExpr) Pos() int         { return e.TokenPos }
func (e *BinaryExpr) exprNode()        {}

// UnaryExpr represents "op operand".
type UnaryExpr struct {
	TokenPos int
	Op       UnaryOp
	Operand  Expr
}

func (e *UnaryExpr) nodeType() string { return "UnaryExpr" }
func (e *UnaryExpr) Pos() int         { return e.TokenPos }
func (e *UnaryExpr) exprNode()        {}

// PropertyExpr is a property reference, optionally qualified by an
// entity alias: "Name" or "u.Name".
type PropertyExpr struct {
	TokenPos     int
	EntityAlias  string // "" when unqualified
	PropertyName string
}

func (e *PropertyExpr) nodeType() string { return "PropertyExpr" }
func (e *PropertyExpr) Pos() int         { return e.TokenPos }
func (e *PropertyExpr) exprNode()        {}

// String returns the possibly-qualified surface form.
func (e *PropertyExpr) String() string {
	if e.EntityAlias != "" {
		return e.EntityAlias + "." + e.PropertyName
	}
	return e.PropertyName
}

// LiteralExpr is a constant value: string, float64, bool, or nil for NULL.
type LiteralExpr struct {
	TokenPos int
	Value    any
}

func (e *LiteralExpr) nodeType() string { return "LiteralExpr" }
func (e *LiteralExpr) Pos() int         { return e.TokenPos }
func (e *LiteralExpr) exprNode()        {}

// ParameterExpr is a named bound parameter (":email").
type ParameterExpr struct {
	TokenPos int
	Name     string // without the colon
}

func (e *ParameterExpr) nodeType() string { return "ParameterExpr" }
func (e *ParameterExpr) Pos() int         { return e.TokenPos }
func (e *ParameterExpr) exprNode()        {}

// WildcardExpr is "*" or "alias.*".
type WildcardExpr struct {
	TokenPos    int
	EntityAlias string // "" for a bare *
}

func (e *WildcardExpr) nodeType() string { return "WildcardExpr" }
func (e *WildcardExpr) Pos() int         { return e.TokenPos }
func (e *WildcardExpr) exprNode()        {}

// AggregateExpr is COUNT/SUM/AVG/MIN/MAX over a single argument.
type AggregateExpr struct {
	TokenPos     int
	FunctionName string // canonical upper-case name
	Argument     Expr
	Distinct     bool
}

func (e *AggregateExpr) nodeType() string { return "AggregateExpr" }
func (e *AggregateExpr) Pos() int         { return e.TokenPos }
func (e *AggregateExpr) exprNode()        {}

// FunctionExpr is a scalar function call.
type FunctionExpr struct {
	TokenPos     int
	FunctionName string // canonical upper-case name
	Arguments    []Expr
}

func (e *FunctionExpr) nodeType() string { return "FunctionExpr" }
func (e *FunctionExpr) Pos() int         { return e.TokenPos }
func (e *FunctionExpr) exprNode()        {}

// ListExpr is a parenthesized expression list, the right operand of IN.
type ListExpr struct {
	TokenPos int
	Items    []Expr
}

func (e *ListExpr) nodeType() string { return "ListExpr" }
func (e *ListExpr) Pos() int         { return e.TokenPos }
func (e *ListExpr) exprNode()        {}

// SubqueryExpr is a parenthesized SELECT used in expression position.
type SubqueryExpr struct {
	TokenPos int
	Query    *SelectQuery
}

func (e *SubqueryExpr) nodeType() string { return "SubqueryExpr" }
func (e *SubqueryExpr) Pos() int         { return e.TokenPos }
func (e *SubqueryExpr) exprNode()        {}
