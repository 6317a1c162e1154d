package eql

// Parser implements a recursive descent parser for EQL with one-token
// lookahead. A Parser is built fresh per compile call and aborts on the
// first lexical or structural violation: there is no error recovery and
// no partial AST.
type Parser struct {
	lexer *Lexer
	cur   Token
}

// NewParser creates a parser over the given lexer.
func NewParser(lexer *Lexer) *Parser {
	return &Parser{lexer: lexer}
}

// ParseQuery is a convenience entry point: lex and parse a single EQL
// query string.
func ParseQuery(input string) (Query, error) {
	return NewParser(NewLexer(input)).Parse()
}

// Parse parses exactly one top-level query. The first token dispatches
// to SELECT, UPDATE, or DELETE; anything else is a syntax error.
func (p *Parser) Parse() (Query, error) {
	if err := p.advance(); err != nil {
		return nil, err
	}

	var q Query
	var err error
	switch p.cur.Kind {
	case TokenSelect:
		q, err = p.parseSelectQuery()
	case TokenUpdate:
		q, err = p.parseUpdateQuery()
	case TokenDelete:
		q, err = p.parseDeleteQuery()
	default:
		serr := newSyntaxError(p.cur, "SELECT", "UPDATE", "DELETE")
		if p.cur.Kind == TokenIdent {
			serr.Suggestion = SuggestFrom(p.cur.Lexeme, []string{"select", "update", "delete"}, 2)
		}
		return nil, serr
	}
	if err != nil {
		return nil, err
	}

	if p.cur.Kind == TokenSemicolon {
		if err := p.advance(); err != nil {
			return nil, err
		}
	}
	if p.cur.Kind != TokenEOF {
		return nil, newSyntaxError(p.cur, "end of query")
	}
	return q, nil
}

// ── Token navigation ────────────────────────────────────────────────────────

// advance pulls the next token from the lexer. A lexical error aborts
// the parse and surfaces unchanged.
func (p *Parser) advance() error {
	tok, err := p.lexer.NextToken()
	if err != nil {
		return err
	}
	p.cur = tok
	return nil
}

// consume asserts the current token kind and advances past it.
func (p *Parser) consume(kind TokenKind) (Token, error) {
	if p.cur.Kind != kind {
		return Token{}, newSyntaxError(p.cur, kind.String())
	}
	tok := p.cur
	if err := p.advance(); err != nil {
		return Token{}, err
	}
	return tok, nil
}

// identKeywords is the explicit, finite whitelist of keywords that are
// also accepted in identifier position (entity and property names), so
// that names like Order, Year, or Count need not be globally reserved.
// This is a closed set checked at the consume-identifier primitive, not
// a general keyword fallback.
var identKeywords = map[TokenKind]bool{
	TokenOrder:     true,
	TokenValues:    true,
	TokenAsc:       true,
	TokenDesc:      true,
	TokenCount:     true,
	TokenSum:       true,
	TokenAvg:       true,
	TokenMin:       true,
	TokenMax:       true,
	TokenUpper:     true,
	TokenLower:     true,
	TokenLength:    true,
	TokenSubstring: true,
	TokenTrim:      true,
	TokenConcat:    true,
	TokenYear:      true,
	TokenMonth:     true,
	TokenDay:       true,
	TokenHour:      true,
	TokenMinute:    true,
	TokenSecond:    true,
	TokenNow:       true,
}

// consumeName accepts an identifier or a whitelisted keyword used as a
// name, preserving the original casing.
func (p *Parser) consumeName() (Token, error) {
	if p.cur.Kind != TokenIdent && !identKeywords[p.cur.Kind] {
		return Token{}, newSyntaxError(p.cur, "identifier")
	}
	tok := p.cur
	if err := p.advance(); err != nil {
		return Token{}, err
	}
	return tok, nil
}

// ── SELECT ──────────────────────────────────────────────────────────────────

func (p *Parser) parseSelectQuery() (*SelectQuery, error) {
	start, err := p.consume(TokenSelect)
	if err != nil {
		return nil, err
	}
	q := &SelectQuery{TokenPos: start.Pos}

	q.Select = &SelectClause{}
	if p.cur.Kind == TokenDistinct {
		q.Select.Distinct = true
		if err := p.advance(); err != nil {
			return nil, err
		}
	}

	for {
		item, err := p.parseSelectItem()
		if err != nil {
			return nil, err
		}
		q.Select.Items = append(q.Select.Items, item)
		if p.cur.Kind != TokenComma {
			break
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
	}

	if p.cur.Kind == TokenFrom {
		q.From, err = p.parseFromClause()
		if err != nil {
			return nil, err
		}
	}

	if q.Where, err = p.parseOptionalWhere(); err != nil {
		return nil, err
	}

	if p.cur.Kind == TokenGroup {
		if err := p.advance(); err != nil {
			return nil, err
		}
		if _, err := p.consume(TokenBy); err != nil {
			return nil, err
		}
		q.GroupBy = &GroupByClause{}
		for {
			expr, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			q.GroupBy.Items = append(q.GroupBy.Items, expr)
			if p.cur.Kind != TokenComma {
				break
			}
			if err := p.advance(); err != nil {
				return nil, err
			}
		}
	}

	if p.cur.Kind == TokenHaving {
		if err := p.advance(); err != nil {
			return nil, err
		}
		cond, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		q.Having = &HavingClause{Condition: cond}
	}

	if p.cur.Kind == TokenOrder {
		if err := p.advance(); err != nil {
			return nil, err
		}
		if _, err := p.consume(TokenBy); err != nil {
			return nil, err
		}
		q.OrderBy = &OrderByClause{}
		for {
			item, err := p.parseOrderByItem()
			if err != nil {
				return nil, err
			}
			q.OrderBy.Items = append(q.OrderBy.Items, item)
			if p.cur.Kind != TokenComma {
				break
			}
			if err := p.advance(); err != nil {
				return nil, err
			}
		}
	}

	return q, nil
}

func (p *Parser) parseSelectItem() (SelectItem, error) {
	expr, err := p.parseExpression()
	if err != nil {
		return SelectItem{}, err
	}
	item := SelectItem{Expr: expr}

	if p.cur.Kind == TokenAs {
		if err := p.advance(); err != nil {
			return SelectItem{}, err
		}
		alias, err := p.consumeName()
		if err != nil {
			return SelectItem{}, err
		}
		item.Alias = alias.Lexeme
	} else if p.cur.Kind == TokenIdent {
		// Bare alias without AS
		item.Alias = p.cur.Lexeme
		if err := p.advance(); err != nil {
			return SelectItem{}, err
		}
	}
	return item, nil
}

func (p *Parser) parseOrderByItem() (OrderByItem, error) {
	expr, err := p.parseExpression()
	if err != nil {
		return OrderByItem{}, err
	}
	item := OrderByItem{Expr: expr, Direction: OrderAsc}
	switch p.cur.Kind {
	case TokenAsc:
		if err := p.advance(); err != nil {
			return OrderByItem{}, err
		}
	case TokenDesc:
		item.Direction = OrderDesc
		if err := p.advance(); err != nil {
			return OrderByItem{}, err
		}
	}
	return item, nil
}

// ── FROM and JOIN ───────────────────────────────────────────────────────────

func (p *Parser) parseFromClause() (*FromClause, error) {
	if _, err := p.consume(TokenFrom); err != nil {
		return nil, err
	}
	clause := &FromClause{}

	for {
		entity, err := p.consumeName()
		if err != nil {
			return nil, err
		}
		item := FromItem{EntityName: entity.Lexeme}
		if p.cur.Kind == TokenIdent {
			item.Alias = p.cur.Lexeme
			if err := p.advance(); err != nil {
				return nil, err
			}
		}
		clause.Items = append(clause.Items, item)
		if p.cur.Kind != TokenComma {
			break
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
	}

	for isJoinStart(p.cur.Kind) {
		join, err := p.parseJoinClause()
		if err != nil {
			return nil, err
		}
		clause.Joins = append(clause.Joins, join)
	}

	return clause, nil
}

func isJoinStart(k TokenKind) bool {
	switch k {
	case TokenJoin, TokenInner, TokenLeft, TokenRight, TokenFull:
		return true
	}
	return false
}

func (p *Parser) parseJoinClause() (JoinClause, error) {
	start := p.cur
	joinType := JoinInner

	switch p.cur.Kind {
	case TokenInner:
		if err := p.advance(); err != nil {
			return JoinClause{}, err
		}
	case TokenLeft:
		joinType = JoinLeft
		if err := p.skipJoinQualifier(); err != nil {
			return JoinClause{}, err
		}
	case TokenRight:
		joinType = JoinRight
		if err := p.skipJoinQualifier(); err != nil {
			return JoinClause{}, err
		}
	case TokenFull:
		joinType = JoinFull
		if err := p.skipJoinQualifier(); err != nil {
			return JoinClause{}, err
		}
	}
	if _, err := p.consume(TokenJoin); err != nil {
		return JoinClause{}, err
	}

	// The join target must be a relationship path: alias.relationship.
	// Whether the relationship exists is the translator's concern; the
	// parser only enforces the shape.
	targetTok := p.cur
	target, err := p.parsePrimary()
	if err != nil {
		return JoinClause{}, err
	}
	prop, ok := target.(*PropertyExpr)
	if !ok || prop.EntityAlias == "" {
		return JoinClause{}, newSyntaxError(targetTok, "relationship path (alias.relationship)")
	}

	join := JoinClause{
		TokenPos:         start.Pos,
		JoinType:         joinType,
		SourceAlias:      prop.EntityAlias,
		RelationshipName: prop.PropertyName,
	}

	if p.cur.Kind == TokenAs {
		if err := p.advance(); err != nil {
			return JoinClause{}, err
		}
	}
	if p.cur.Kind == TokenIdent {
		join.Alias = p.cur.Lexeme
		if err := p.advance(); err != nil {
			return JoinClause{}, err
		}
	}

	if p.cur.Kind == TokenOn {
		if err := p.advance(); err != nil {
			return JoinClause{}, err
		}
		cond, err := p.parseExpression()
		if err != nil {
			return JoinClause{}, err
		}
		join.On = cond
	}

	return join, nil
}

// skipJoinQualifier consumes LEFT/RIGHT/FULL and an optional OUTER.
func (p *Parser) skipJoinQualifier() error {
	if err := p.advance(); err != nil {
		return err
	}
	if p.cur.Kind == TokenOuter {
		return p.advance()
	}
	return nil
}

// ── UPDATE ──────────────────────────────────────────────────────────────────

func (p *Parser) parseUpdateQuery() (*UpdateQuery, error) {
	start, err := p.consume(TokenUpdate)
	if err != nil {
		return nil, err
	}
	q := &UpdateQuery{TokenPos: start.Pos}

	entity, err := p.consumeName()
	if err != nil {
		return nil, err
	}
	q.EntityName = entity.Lexeme

	if p.cur.Kind == TokenIdent {
		q.Alias = p.cur.Lexeme
		if err := p.advance(); err != nil {
			return nil, err
		}
	}

	if _, err := p.consume(TokenSet); err != nil {
		return nil, err
	}

	for {
		assign, err := p.parseSetAssignment(q.Alias)
		if err != nil {
			return nil, err
		}
		q.Assignments = append(q.Assignments, assign)
		if p.cur.Kind != TokenComma {
			break
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
	}

	if q.Where, err = p.parseOptionalWhere(); err != nil {
		return nil, err
	}
	return q, nil
}

// parseSetAssignment parses "property = expr" or "alias.property = expr".
// A qualifying alias must match the update target's alias; the stored
// property name is always the simple name.
func (p *Parser) parseSetAssignment(updateAlias string) (SetAssignment, error) {
	first, err := p.consumeName()
	if err != nil {
		return SetAssignment{}, err
	}
	name := first.Lexeme

	if p.cur.Kind == TokenDot {
		if err := p.advance(); err != nil {
			return SetAssignment{}, err
		}
		propTok, err := p.consumeName()
		if err != nil {
			return SetAssignment{}, err
		}
		if updateAlias == "" || first.Lexeme != updateAlias {
			serr := newSyntaxError(first, "the update target alias")
			serr.Got = TokenIdent
			serr.Lexeme = first.Lexeme
			return SetAssignment{}, serr
		}
		name = propTok.Lexeme
	}

	if _, err := p.consume(TokenEQ); err != nil {
		return SetAssignment{}, err
	}
	value, err := p.parseExpression()
	if err != nil {
		return SetAssignment{}, err
	}
	return SetAssignment{PropertyName: name, Value: value}, nil
}

// ── DELETE ──────────────────────────────────────────────────────────────────

func (p *Parser) parseDeleteQuery() (*DeleteQuery, error) {
	start, err := p.consume(TokenDelete)
	if err != nil {
		return nil, err
	}
	q := &DeleteQuery{TokenPos: start.Pos}

	if p.cur.Kind == TokenFrom {
		if err := p.advance(); err != nil {
			return nil, err
		}
	}

	entity, err := p.consumeName()
	if err != nil {
		return nil, err
	}
	q.EntityName = entity.Lexeme

	if p.cur.Kind == TokenIdent {
		q.Alias = p.cur.Lexeme
		if err := p.advance(); err != nil {
			return nil, err
		}
	}

	if q.Where, err = p.parseOptionalWhere(); err != nil {
		return nil, err
	}
	return q, nil
}

func (p *Parser) parseOptionalWhere() (*WhereClause, error) {
	if p.cur.Kind != TokenWhere {
		return nil, nil
	}
	if err := p.advance(); err != nil {
		return nil, err
	}
	cond, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	return &WhereClause{Condition: cond}, nil
}

// ── Expressions ─────────────────────────────────────────────────────────────
//
// Precedence ladder, loosest to tightest:
//   OR → AND → equality (=, <>, LIKE, IN, BETWEEN, IS) →
//   relational (<, <=, >, >=) → additive (+, -) →
//   multiplicative (*, /, %) → unary (+, -, NOT) → primary

func (p *Parser) parseExpression() (Expr, error) {
	return p.parseOr()
}

func (p *Parser) parseOr() (Expr, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.cur.Kind == TokenOr {
		opTok := p.cur
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = &BinaryExpr{TokenPos: opTok.Pos, Op: OpOr, Left: left, Right: right}
	}
	return left, nil
}

func (p *Parser) parseAnd() (Expr, error) {
	left, err := p.parseEquality()
	if err != nil {
		return nil, err
	}
	for p.cur.Kind == TokenAnd {
		opTok := p.cur
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseEquality()
		if err != nil {
			return nil, err
		}
		left = &BinaryExpr{TokenPos: opTok.Pos, Op: OpAnd, Left: left, Right: right}
	}
	return left, nil
}

func (p *Parser) parseEquality() (Expr, error) {
	left, err := p.parseRelational()
	if err != nil {
		return nil, err
	}
	for {
		opTok := p.cur
		switch p.cur.Kind {
		case TokenEQ, TokenNEQ, TokenLike:
			op := OpEQ
			switch p.cur.Kind {
			case TokenNEQ:
				op = OpNEQ
			case TokenLike:
				op = OpLike
			}
			if err := p.advance(); err != nil {
				return nil, err
			}
			right, err := p.parseRelational()
			if err != nil {
				return nil, err
			}
			left = &BinaryExpr{TokenPos: opTok.Pos, Op: op, Left: left, Right: right}

		case TokenIn:
			if err := p.advance(); err != nil {
				return nil, err
			}
			right, err := p.parseInOperand()
			if err != nil {
				return nil, err
			}
			left = &BinaryExpr{TokenPos: opTok.Pos, Op: OpIn, Left: left, Right: right}

		case TokenBetween:
			if err := p.advance(); err != nil {
				return nil, err
			}
			lower, err := p.parseRelational()
			if err != nil {
				return nil, err
			}
			if _, err := p.consume(TokenAnd); err != nil {
				return nil, err
			}
			upper, err := p.parseRelational()
			if err != nil {
				return nil, err
			}
			// BETWEEN desugars to (left >= lower AND left <= upper),
			// keeping the node set closed.
			left = &BinaryExpr{
				TokenPos: opTok.Pos,
				Op:       OpAnd,
				Left:     &BinaryExpr{TokenPos: opTok.Pos, Op: OpGTE, Left: left, Right: lower},
				Right:    &BinaryExpr{TokenPos: opTok.Pos, Op: OpLTE, Left: left, Right: upper},
			}

		case TokenIs:
			if err := p.advance(); err != nil {
				return nil, err
			}
			op := OpIs
			if p.cur.Kind == TokenNot {
				op = OpIsNot
				if err := p.advance(); err != nil {
					return nil, err
				}
			}
			nullTok, err := p.consume(TokenNull)
			if err != nil {
				return nil, err
			}
			left = &BinaryExpr{
				TokenPos: opTok.Pos,
				Op:       op,
				Left:     left,
				Right:    &LiteralExpr{TokenPos: nullTok.Pos, Value: nil},
			}

		default:
			return left, nil
		}
	}
}

// parseInOperand parses the right side of IN: either a parenthesized
// expression list or a subquery.
func (p *Parser) parseInOperand() (Expr, error) {
	open, err := p.consume(TokenLParen)
	if err != nil {
		return nil, err
	}

	if p.cur.Kind == TokenSelect {
		sub, err := p.parseSelectQuery()
		if err != nil {
			return nil, err
		}
		if _, err := p.consume(TokenRParen); err != nil {
			return nil, err
		}
		return &SubqueryExpr{TokenPos: open.Pos, Query: sub}, nil
	}

	list := &ListExpr{TokenPos: open.Pos}
	for {
		item, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		list.Items = append(list.Items, item)
		if p.cur.Kind != TokenComma {
			break
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
	}
	if _, err := p.consume(TokenRParen); err != nil {
		return nil, err
	}
	return list, nil
}

func (p *Parser) parseRelational() (Expr, error) {
	left, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}
	for {
		var op BinaryOp
		switch p.cur.Kind {
		case TokenLT:
			op = OpLT
		case TokenLTE:
			op = OpLTE
		case TokenGT:
			op = OpGT
		case TokenGTE:
			op = OpGTE
		default:
			return left, nil
		}
		opTok := p.cur
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseAdditive()
		if err != nil {
			return nil, err
		}
		left = &BinaryExpr{TokenPos: opTok.Pos, Op: op, Left: left, Right: right}
	}
}

func (p *Parser) parseAdditive() (Expr, error) {
	left, err := p.parseMultiplicative()
	if err != nil {
		return nil, err
	}
	for p.cur.Kind == TokenPlus || p.cur.Kind == TokenMinus {
		op := OpAdd
		if p.cur.Kind == TokenMinus {
			op = OpSub
		}
		opTok := p.cur
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseMultiplicative()
		if err != nil {
			return nil, err
		}
		left = &BinaryExpr{TokenPos: opTok.Pos, Op: op, Left: left, Right: right}
	}
	return left, nil
}

func (p *Parser) parseMultiplicative() (Expr, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for p.cur.Kind == TokenStar || p.cur.Kind == TokenSlash || p.cur.Kind == TokenPercent {
		op := OpMul
		switch p.cur.Kind {
		case TokenSlash:
			op = OpDiv
		case TokenPercent:
			op = OpMod
		}
		opTok := p.cur
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = &BinaryExpr{TokenPos: opTok.Pos, Op: op, Left: left, Right: right}
	}
	return left, nil
}

func (p *Parser) parseUnary() (Expr, error) {
	var op UnaryOp
	switch p.cur.Kind {
	case TokenNot:
		op = OpNot
	case TokenMinus:
		op = OpNeg
	case TokenPlus:
		op = OpPos
	default:
		return p.parsePrimary()
	}
	opTok := p.cur
	if err := p.advance(); err != nil {
		return nil, err
	}
	operand, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	return &UnaryExpr{TokenPos: opTok.Pos, Op: op, Operand: operand}, nil
}

// ── Primary ─────────────────────────────────────────────────────────────────

func (p *Parser) parsePrimary() (Expr, error) {
	tok := p.cur

	switch {
	case tok.Kind == TokenString || tok.Kind == TokenNumber || tok.Kind == TokenBool:
		if err := p.advance(); err != nil {
			return nil, err
		}
		return &LiteralExpr{TokenPos: tok.Pos, Value: tok.Literal}, nil

	case tok.Kind == TokenNull:
		if err := p.advance(); err != nil {
			return nil, err
		}
		return &LiteralExpr{TokenPos: tok.Pos, Value: nil}, nil

	case tok.Kind == TokenParam:
		if err := p.advance(); err != nil {
			return nil, err
		}
		return &ParameterExpr{TokenPos: tok.Pos, Name: tok.Literal.(string)}, nil

	case tok.Kind == TokenStar:
		if err := p.advance(); err != nil {
			return nil, err
		}
		return &WildcardExpr{TokenPos: tok.Pos}, nil

	case tok.Kind == TokenLParen:
		if err := p.advance(); err != nil {
			return nil, err
		}
		if p.cur.Kind == TokenSelect {
			sub, err := p.parseSelectQuery()
			if err != nil {
				return nil, err
			}
			if _, err := p.consume(TokenRParen); err != nil {
				return nil, err
			}
			return &SubqueryExpr{TokenPos: tok.Pos, Query: sub}, nil
		}
		expr, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if _, err := p.consume(TokenRParen); err != nil {
			return nil, err
		}
		return expr, nil

	case tok.Kind.IsAggregate():
		return p.parseAggregateCall()

	case tok.Kind.IsScalarFunc():
		// A scalar-function keyword followed by '(' is a call; without
		// the paren it is an ordinary name (a property called "year").
		if err := p.advance(); err != nil {
			return nil, err
		}
		if p.cur.Kind == TokenLParen {
			return p.parseFunctionCall(tok)
		}
		return p.parseNameTail(tok)

	case tok.Kind == TokenIdent:
		if err := p.advance(); err != nil {
			return nil, err
		}
		if p.cur.Kind == TokenLParen {
			return p.parseFunctionCall(tok)
		}
		return p.parseNameTail(tok)
	}

	serr := newSyntaxError(tok, "expression")
	return nil, serr
}

// parseNameTail continues a name already consumed: either a bare
// property, a qualified property (alias.name), or a qualified wildcard
// (alias.*).
func (p *Parser) parseNameTail(first Token) (Expr, error) {
	if p.cur.Kind != TokenDot {
		return &PropertyExpr{TokenPos: first.Pos, PropertyName: first.Lexeme}, nil
	}
	if err := p.advance(); err != nil {
		return nil, err
	}

	if p.cur.Kind == TokenStar {
		if err := p.advance(); err != nil {
			return nil, err
		}
		return &WildcardExpr{TokenPos: first.Pos, EntityAlias: first.Lexeme}, nil
	}

	prop, err := p.consumeName()
	if err != nil {
		return nil, err
	}
	return &PropertyExpr{
		TokenPos:     first.Pos,
		EntityAlias:  first.Lexeme,
		PropertyName: prop.Lexeme,
	}, nil
}

// parseAggregateCall parses COUNT/SUM/AVG/MIN/MAX. Like scalar-function
// keywords, an aggregate keyword without a following '(' falls back to
// ordinary name handling.
func (p *Parser) parseAggregateCall() (Expr, error) {
	tok := p.cur
	if err := p.advance(); err != nil {
		return nil, err
	}
	if p.cur.Kind != TokenLParen {
		return p.parseNameTail(tok)
	}
	if err := p.advance(); err != nil {
		return nil, err
	}

	agg := &AggregateExpr{TokenPos: tok.Pos, FunctionName: tok.Kind.String()}
	if p.cur.Kind == TokenDistinct {
		agg.Distinct = true
		if err := p.advance(); err != nil {
			return nil, err
		}
	}

	if p.cur.Kind == TokenStar {
		starTok := p.cur
		if err := p.advance(); err != nil {
			return nil, err
		}
		agg.Argument = &WildcardExpr{TokenPos: starTok.Pos}
	} else {
		arg, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		agg.Argument = arg
	}

	if _, err := p.consume(TokenRParen); err != nil {
		return nil, err
	}
	return agg, nil
}

// parseFunctionCall parses the argument list of a scalar function whose
// name token has already been consumed. Built-in keywords store their
// canonical upper-case name; unknown functions keep the spelling the
// user wrote so they can pass through the registry unchanged.
func (p *Parser) parseFunctionCall(nameTok Token) (Expr, error) {
	name := nameTok.Lexeme
	if nameTok.Kind != TokenIdent {
		name = nameTok.Kind.String()
	}
	fn := &FunctionExpr{TokenPos: nameTok.Pos, FunctionName: name}

	if _, err := p.consume(TokenLParen); err != nil {
		return nil, err
	}
	if p.cur.Kind == TokenRParen {
		return fn, p.advance()
	}

	for {
		arg, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		fn.Arguments = append(fn.Arguments, arg)
		if p.cur.Kind != TokenComma {
			break
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
	}
	if _, err := p.consume(TokenRParen); err != nil {
		return nil, err
	}
	return fn, nil
}
