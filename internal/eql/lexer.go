package eql

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Lexer tokenizes EQL source text. It holds only a cursor over the input
// plus line/column bookkeeping for diagnostics, so a fresh Lexer per
// compile call keeps compilation safe for concurrent use.
type Lexer struct {
	input string
	pos   int // current byte position
	line  int // 1-based
	col   int // 1-based
}

// NewLexer creates a lexer for the given input.
func NewLexer(input string) *Lexer {
	return &Lexer{
		input: input,
		pos:   0,
		line:  1,
		col:   1,
	}
}

// NextToken scans and returns the next token. After the end of input it
// keeps returning a token of kind TokenEOF.
func (l *Lexer) NextToken() (Token, error) {
	l.skipWhitespaceAndComments()

	if l.pos >= len(l.input) {
		return Token{Kind: TokenEOF, Pos: l.pos, Line: l.line, Col: l.col}, nil
	}

	startPos := l.pos
	startLine := l.line
	startCol := l.col
	r := l.peek()

	// String literal
	if r == '\'' {
		return l.scanString(startPos, startLine, startCol)
	}

	// Number (unsigned; unary minus is handled by the parser)
	if r >= '0' && r <= '9' {
		return l.scanNumber(startPos, startLine, startCol), nil
	}

	// Identifier or keyword
	if isIdentStart(r) {
		return l.scanIdent(startPos, startLine, startCol), nil
	}

	// Bound parameter: ':' followed by an identifier
	if r == ':' && isIdentStart(l.peekAt(1)) {
		return l.scanParam(startPos, startLine, startCol), nil
	}

	// Two-character operators before their single-character prefixes
	if r == '<' && l.peekAt(1) == '=' {
		l.advance()
		l.advance()
		return Token{Kind: TokenLTE, Lexeme: "<=", Pos: startPos, Line: startLine, Col: startCol}, nil
	}
	if r == '<' && l.peekAt(1) == '>' {
		l.advance()
		l.advance()
		return Token{Kind: TokenNEQ, Lexeme: "<>", Pos: startPos, Line: startLine, Col: startCol}, nil
	}
	if r == '>' && l.peekAt(1) == '=' {
		l.advance()
		l.advance()
		return Token{Kind: TokenGTE, Lexeme: ">=", Pos: startPos, Line: startLine, Col: startCol}, nil
	}
	if r == '!' && l.peekAt(1) == '=' {
		l.advance()
		l.advance()
		return Token{Kind: TokenNEQ, Lexeme: "!=", Pos: startPos, Line: startLine, Col: startCol}, nil
	}

	// Single-character operators and punctuation
	l.advance()
	single := map[rune]TokenKind{
		'=': TokenEQ,
		'<': TokenLT,
		'>': TokenGT,
		'+': TokenPlus,
		'-': TokenMinus,
		'*': TokenStar,
		'/': TokenSlash,
		'%': TokenPercent,
		'(': TokenLParen,
		')': TokenRParen,
		',': TokenComma,
		'.': TokenDot,
		';': TokenSemicolon,
		':': TokenColon,
	}
	if kind, ok := single[r]; ok {
		return Token{Kind: kind, Lexeme: string(r), Pos: startPos, Line: startLine, Col: startCol}, nil
	}

	return Token{}, &LexicalError{
		Description: "unrecognized character",
		Char:        r,
		Pos:         startPos,
		Line:        startLine,
		Col:         startCol,
	}
}

// peek returns the current rune without advancing.
func (l *Lexer) peek() rune {
	if l.pos >= len(l.input) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.input[l.pos:])
	return r
}

// peekAt returns the rune at offset from the current position.
func (l *Lexer) peekAt(offset int) rune {
	p := l.pos + offset
	if p >= len(l.input) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.input[p:])
	return r
}

// advance moves forward by one rune and returns it.
func (l *Lexer) advance() rune {
	if l.pos >= len(l.input) {
		return 0
	}
	r, size := utf8.DecodeRuneInString(l.input[l.pos:])
	l.pos += size
	if r == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
	return r
}

// skipWhitespaceAndComments advances past whitespace and -- line comments.
func (l *Lexer) skipWhitespaceAndComments() {
	for l.pos < len(l.input) {
		r := l.peek()
		switch {
		case r == ' ' || r == '\t' || r == '\r' || r == '\n':
			l.advance()
		case r == '-' && l.peekAt(1) == '-':
			for l.pos < len(l.input) && l.peek() != '\n' {
				l.advance()
			}
		default:
			return
		}
	}
}

// scanString reads a single-quoted string literal. An embedded quote is
// escaped by doubling it ('').
func (l *Lexer) scanString(startPos, startLine, startCol int) (Token, error) {
	l.advance() // consume opening quote
	var b strings.Builder
	for l.pos < len(l.input) {
		r := l.advance()
		if r == '\'' {
			if l.peek() == '\'' {
				l.advance()
				b.WriteByte('\'')
				continue
			}
			return Token{
				Kind:    TokenString,
				Lexeme:  l.input[startPos:l.pos],
				Literal: b.String(),
				Pos:     startPos,
				Line:    startLine,
				Col:     startCol,
			}, nil
		}
		b.WriteRune(r)
	}
	return Token{}, &LexicalError{
		Description: "unterminated string literal",
		Pos:         startPos,
		Line:        startLine,
		Col:         startCol,
	}
}

// scanNumber reads an unsigned numeric literal with an optional
// fractional part.
func (l *Lexer) scanNumber(startPos, startLine, startCol int) Token {
	isFloat := false
	for l.pos < len(l.input) {
		r := l.peek()
		if r >= '0' && r <= '9' {
			l.advance()
		} else if r == '.' && !isFloat {
			// The dot belongs to the number only when a digit follows;
			// "o.total" must stay identifier-dot-identifier.
			if l.peekAt(1) >= '0' && l.peekAt(1) <= '9' {
				isFloat = true
				l.advance()
			} else {
				break
			}
		} else {
			break
		}
	}
	lexeme := l.input[startPos:l.pos]
	val, _ := strconv.ParseFloat(lexeme, 64)
	return Token{
		Kind:    TokenNumber,
		Lexeme:  lexeme,
		Literal: val,
		Pos:     startPos,
		Line:    startLine,
		Col:     startCol,
	}
}

// scanIdent reads an identifier and classifies keywords through the
// case-insensitive keyword table.
func (l *Lexer) scanIdent(startPos, startLine, startCol int) Token {
	for l.pos < len(l.input) && isIdentPart(l.peek()) {
		l.advance()
	}
	lexeme := l.input[startPos:l.pos]
	kind := LookupKeyword(lexeme)
	tok := Token{
		Kind:   kind,
		Lexeme: lexeme,
		Pos:    startPos,
		Line:   startLine,
		Col:    startCol,
	}
	if kind == TokenBool {
		tok.Literal = strings.EqualFold(lexeme, "true")
	}
	return tok
}

// scanParam reads a :name bound parameter; Literal stores the name
// without the colon.
func (l *Lexer) scanParam(startPos, startLine, startCol int) Token {
	l.advance() // consume ':'
	nameStart := l.pos
	for l.pos < len(l.input) && isIdentPart(l.peek()) {
		l.advance()
	}
	name := l.input[nameStart:l.pos]
	return Token{
		Kind:    TokenParam,
		Lexeme:  l.input[startPos:l.pos],
		Literal: name,
		Pos:     startPos,
		Line:    startLine,
		Col:     startCol,
	}
}

func isIdentStart(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}

func isIdentPart(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}
