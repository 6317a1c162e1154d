package eql

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lex(t *testing.T, input string) []Token {
	t.Helper()
	l := NewLexer(input)
	var tokens []Token
	for {
		tok, err := l.NextToken()
		require.NoError(t, err)
		tokens = append(tokens, tok)
		if tok.Kind == TokenEOF {
			return tokens
		}
	}
}

func kinds(tokens []Token) []TokenKind {
	out := make([]TokenKind, len(tokens))
	for i, tok := range tokens {
		out[i] = tok.Kind
	}
	return out
}

func TestLexer_Keywords(t *testing.T) {
	tokens := lex(t, "SELECT u FROM User u WHERE u.Age > 30")
	assert.Equal(t, []TokenKind{
		TokenSelect, TokenIdent, TokenFrom, TokenIdent, TokenIdent,
		TokenWhere, TokenIdent, TokenDot, TokenIdent, TokenGT, TokenNumber,
		TokenEOF,
	}, kinds(tokens))
}

func TestLexer_KeywordsCaseInsensitive(t *testing.T) {
	tokens := lex(t, "select Select SELECT sElEcT")
	for _, tok := range tokens[:4] {
		assert.Equal(t, TokenSelect, tok.Kind)
	}
}

func TestLexer_LongestMatchOperators(t *testing.T) {
	tokens := lex(t, "<= < <> >= > != =")
	assert.Equal(t, []TokenKind{
		TokenLTE, TokenLT, TokenNEQ, TokenGTE, TokenGT, TokenNEQ, TokenEQ,
		TokenEOF,
	}, kinds(tokens))
}

func TestLexer_LTEIsSingleToken(t *testing.T) {
	tokens := lex(t, "a<=1")
	require.Len(t, tokens, 4)
	assert.Equal(t, TokenLTE, tokens[1].Kind)
	assert.Equal(t, "<=", tokens[1].Lexeme)
}

func TestLexer_StringLiteral(t *testing.T) {
	tokens := lex(t, "'hello world'")
	require.Equal(t, TokenString, tokens[0].Kind)
	assert.Equal(t, "hello world", tokens[0].Literal)
}

func TestLexer_StringEscapedQuote(t *testing.T) {
	tokens := lex(t, "'it''s'")
	require.Equal(t, TokenString, tokens[0].Kind)
	assert.Equal(t, "it's", tokens[0].Literal)
	assert.Equal(t, TokenEOF, tokens[1].Kind)
}

func TestLexer_UnterminatedString(t *testing.T) {
	l := NewLexer("'oops")
	_, err := l.NextToken()
	require.Error(t, err)
	var lexErr *LexicalError
	require.ErrorAs(t, err, &lexErr)
	assert.Contains(t, lexErr.Description, "unterminated")
	assert.Equal(t, 0, lexErr.Pos)
}

func TestLexer_Numbers(t *testing.T) {
	tokens := lex(t, "42 3.14")
	require.Equal(t, TokenNumber, tokens[0].Kind)
	assert.Equal(t, 42.0, tokens[0].Literal)
	require.Equal(t, TokenNumber, tokens[1].Kind)
	assert.Equal(t, 3.14, tokens[1].Literal)
}

func TestLexer_NumberThenDotIdent(t *testing.T) {
	// "1.foo" is number, dot, identifier; the dot only joins the number
	// when a digit follows.
	tokens := lex(t, "1.foo")
	assert.Equal(t, []TokenKind{TokenNumber, TokenDot, TokenIdent, TokenEOF}, kinds(tokens))
}

func TestLexer_BoundParameter(t *testing.T) {
	tokens := lex(t, ":minAge")
	require.Equal(t, TokenParam, tokens[0].Kind)
	assert.Equal(t, "minAge", tokens[0].Literal)
	assert.Equal(t, ":minAge", tokens[0].Lexeme)
}

func TestLexer_BareColon(t *testing.T) {
	tokens := lex(t, ": x")
	assert.Equal(t, TokenColon, tokens[0].Kind)
}

func TestLexer_LineComments(t *testing.T) {
	tokens := lex(t, "SELECT -- projected items\nu")
	assert.Equal(t, []TokenKind{TokenSelect, TokenIdent, TokenEOF}, kinds(tokens))
}

func TestLexer_BoolLiterals(t *testing.T) {
	tokens := lex(t, "true FALSE")
	require.Equal(t, TokenBool, tokens[0].Kind)
	assert.Equal(t, true, tokens[0].Literal)
	require.Equal(t, TokenBool, tokens[1].Kind)
	assert.Equal(t, false, tokens[1].Literal)
}

func TestLexer_UnrecognizedCharacter(t *testing.T) {
	l := NewLexer("a ~ b")
	_, err := l.NextToken()
	require.NoError(t, err)
	_, err = l.NextToken()
	var lexErr *LexicalError
	require.ErrorAs(t, err, &lexErr)
	assert.Equal(t, '~', lexErr.Char)
	assert.Equal(t, 2, lexErr.Pos)
	assert.Equal(t, 1, lexErr.Line)
	assert.Equal(t, 3, lexErr.Col)
}

func TestLexer_PositionTracking(t *testing.T) {
	tokens := lex(t, "SELECT u\nFROM User")
	from := tokens[2]
	assert.Equal(t, TokenFrom, from.Kind)
	assert.Equal(t, 2, from.Line)
	assert.Equal(t, 1, from.Col)
	assert.Equal(t, 9, from.Pos)
}

func TestLexer_EOFIsSticky(t *testing.T) {
	l := NewLexer("x")
	tok, err := l.NextToken()
	require.NoError(t, err)
	assert.Equal(t, TokenIdent, tok.Kind)
	for i := 0; i < 3; i++ {
		tok, err = l.NextToken()
		require.NoError(t, err)
		assert.Equal(t, TokenEOF, tok.Kind)
	}
}
