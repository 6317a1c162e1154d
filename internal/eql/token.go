// Package eql implements the lexer, parser, and AST for EQL
// (Entity Query Language), the portable SQL-like surface syntax that
// queries logical entities instead of physical tables.
package eql

import "strings"

// TokenKind identifies the kind of lexical token.
type TokenKind int

const (
	// Literals, identifiers, and bound parameters
	TokenEOF     TokenKind = iota
	TokenIdent             // unquoted identifier (entity, alias, property)
	TokenString            // 'quoted string'
	TokenNumber            // 123 or 1.23 (unsigned; sign is a parser concern)
	TokenBool              // TRUE / FALSE
	TokenParam             // :name

	// Clause keywords
	TokenSelect
	TokenFrom
	TokenWhere
	TokenOrder
	TokenGroup
	TokenBy
	TokenHaving
	TokenJoin
	TokenInner
	TokenLeft
	TokenRight
	TokenFull
	TokenOuter
	TokenOn
	TokenAs
	TokenDistinct
	TokenUpdate
	TokenSet
	TokenDelete
	TokenInto
	TokenValues
	TokenAsc
	TokenDesc

	// Logical operators
	TokenAnd
	TokenOr
	TokenNot

	// Comparison operators and predicates
	TokenEQ      // =
	TokenNEQ     // <> or !=
	TokenLT      // <
	TokenLTE     // <=
	TokenGT      // >
	TokenGTE     // >=
	TokenLike
	TokenIn
	TokenBetween
	TokenIs
	TokenNull

	// Arithmetic operators
	TokenPlus    // +
	TokenMinus   // -
	TokenStar    // * (also the select-list wildcard)
	TokenSlash   // /
	TokenPercent // %

	// Aggregate function keywords
	TokenCount
	TokenSum
	TokenAvg
	TokenMin
	TokenMax

	// Scalar function keywords
	TokenUpper
	TokenLower
	TokenLength
	TokenSubstring
	TokenTrim
	TokenConcat
	TokenYear
	TokenMonth
	TokenDay
	TokenHour
	TokenMinute
	TokenSecond
	TokenNow

	// Punctuation
	TokenLParen
	TokenRParen
	TokenComma
	TokenDot
	TokenSemicolon
	TokenColon
)

// String returns a human-readable name for the token kind.
func (t TokenKind) String() string {
	switch t {
	case TokenEOF:
		return "EOF"
	case TokenIdent:
		return "identifier"
	case TokenString:
		return "string"
	case TokenNumber:
		return "number"
	case TokenBool:
		return "boolean"
	case TokenParam:
		return "parameter"
	case TokenSelect:
		return "SELECT"
	case TokenFrom:
		return "FROM"
	case TokenWhere:
		return "WHERE"
	case TokenOrder:
		return "ORDER"
	case TokenGroup:
		return "GROUP"
	case TokenBy:
		return "BY"
	case TokenHaving:
		return "HAVING"
	case TokenJoin:
		return "JOIN"
	case TokenInner:
		return "INNER"
	case TokenLeft:
		return "LEFT"
	case TokenRight:
		return "RIGHT"
	case TokenFull:
		return "FULL"
	case TokenOuter:
		return "OUTER"
	case TokenOn:
		return "ON"
	case TokenAs:
		return "AS"
	case TokenDistinct:
		return "DISTINCT"
	case TokenUpdate:
		return "UPDATE"
	case TokenSet:
		return "SET"
	case TokenDelete:
		return "DELETE"
	case TokenInto:
		return "INTO"
	case TokenValues:
		return "VALUES"
	case TokenAsc:
		return "ASC"
	case TokenDesc:
		return "DESC"
	case TokenAnd:
		return "AND"
	case TokenOr:
		return "OR"
	case TokenNot:
		return "NOT"
	case TokenEQ:
		return "="
	case TokenNEQ:
		return "<>"
	case TokenLT:
		return "<"
	case TokenLTE:
		return "<="
	case TokenGT:
		return ">"
	case TokenGTE:
		return ">="
	case TokenLike:
		return "LIKE"
	case TokenIn:
		return "IN"
	case TokenBetween:
		return "BETWEEN"
	case TokenIs:
		return "IS"
	case TokenNull:
		return "NULL"
	case TokenPlus:
		return "+"
	case TokenMinus:
		return "-"
	case TokenStar:
		return "*"
	case TokenSlash:
		return "/"
	case TokenPercent:
		return "%"
	case TokenCount:
		return "COUNT"
	case TokenSum:
		return "SUM"
	case TokenAvg:
		return "AVG"
	case TokenMin:
		return "MIN"
	case TokenMax:
		return "MAX"
	case TokenUpper:
		return "UPPER"
	case TokenLower:
		return "LOWER"
	case TokenLength:
		return "LENGTH"
	case TokenSubstring:
		return "SUBSTRING"
	case TokenTrim:
		return "TRIM"
	case TokenConcat:
		return "CONCAT"
	case TokenYear:
		return "YEAR"
	case TokenMonth:
		return "MONTH"
	case TokenDay:
		return "DAY"
	case TokenHour:
		return "HOUR"
	case TokenMinute:
		return "MINUTE"
	case TokenSecond:
		return "SECOND"
	case TokenNow:
		return "NOW"
	case TokenLParen:
		return "("
	case TokenRParen:
		return ")"
	case TokenComma:
		return ","
	case TokenDot:
		return "."
	case TokenSemicolon:
		return ";"
	case TokenColon:
		return ":"
	default:
		return "unknown"
	}
}

// Token represents a single lexical token in an EQL statement.
// Literal holds the decoded value for string, number, boolean, and
// parameter tokens; Lexeme is always the raw source text.
type Token struct {
	Kind    TokenKind
	Lexeme  string // raw text of the token
	Literal any    // string, float64, bool, or nil
	Pos     int    // 0-based byte offset in source
	Line    int    // 1-based line number
	Col     int    // 1-based column number
}

// keywords maps lowercase keyword strings to their token kinds.
// Keyword recognition is case-insensitive; identifiers keep their casing.
var keywords = map[string]TokenKind{
	"select":    TokenSelect,
	"from":      TokenFrom,
	"where":     TokenWhere,
	"order":     TokenOrder,
	"group":     TokenGroup,
	"by":        TokenBy,
	"having":    TokenHaving,
	"join":      TokenJoin,
	"inner":     TokenInner,
	"left":      TokenLeft,
	"right":     TokenRight,
	"full":      TokenFull,
	"outer":     TokenOuter,
	"on":        TokenOn,
	"as":        TokenAs,
	"distinct":  TokenDistinct,
	"update":    TokenUpdate,
	"set":       TokenSet,
	"delete":    TokenDelete,
	"into":      TokenInto,
	"values":    TokenValues,
	"asc":       TokenAsc,
	"desc":      TokenDesc,
	"and":       TokenAnd,
	"or":        TokenOr,
	"not":       TokenNot,
	"like":      TokenLike,
	"in":        TokenIn,
	"between":   TokenBetween,
	"is":        TokenIs,
	"null":      TokenNull,
	"true":      TokenBool,
	"false":     TokenBool,
	"count":     TokenCount,
	"sum":       TokenSum,
	"avg":       TokenAvg,
	"min":       TokenMin,
	"max":       TokenMax,
	"upper":     TokenUpper,
	"lower":     TokenLower,
	"length":    TokenLength,
	"substring": TokenSubstring,
	"trim":      TokenTrim,
	"concat":    TokenConcat,
	"year":      TokenYear,
	"month":     TokenMonth,
	"day":       TokenDay,
	"hour":      TokenHour,
	"minute":    TokenMinute,
	"second":    TokenSecond,
	"now":       TokenNow,
}

// LookupKeyword returns the keyword token kind for an identifier, or
// TokenIdent if the identifier is not a keyword. Lookup is case-insensitive.
func LookupKeyword(ident string) TokenKind {
	if tok, ok := keywords[strings.ToLower(ident)]; ok {
		return tok
	}
	return TokenIdent
}

// KeywordNames returns the surface spellings of all reserved keywords,
// used for near-miss suggestions in syntax errors.
func KeywordNames() []string {
	names := make([]string, 0, len(keywords))
	for k := range keywords {
		names = append(names, k)
	}
	return names
}

// IsAggregate returns true for the aggregate function keywords.
func (t TokenKind) IsAggregate() bool {
	switch t {
	case TokenCount, TokenSum, TokenAvg, TokenMin, TokenMax:
		return true
	}
	return false
}

// IsScalarFunc returns true for the built-in scalar function keywords.
func (t TokenKind) IsScalarFunc() bool {
	switch t {
	case TokenUpper, TokenLower, TokenLength, TokenSubstring, TokenTrim,
		TokenConcat, TokenYear, TokenMonth, TokenDay, TokenHour,
		TokenMinute, TokenSecond, TokenNow:
		return true
	}
	return false
}
