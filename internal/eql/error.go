package eql

import (
	"fmt"
	"strings"
)

// LexicalError reports an input the lexer cannot tokenize: an
// unrecognized character or an unterminated string literal.
type LexicalError struct {
	Description string
	Char        rune // offending character, 0 for unterminated strings
	Pos         int  // 0-based byte offset
	Line        int
	Col         int
}

func (e *LexicalError) Error() string {
	if e.Char != 0 {
		return fmt.Sprintf("line %d col %d: %s %q", e.Line, e.Col, e.Description, e.Char)
	}
	return fmt.Sprintf("line %d col %d: %s", e.Line, e.Col, e.Description)
}

// SyntaxError reports a token the grammar does not allow at the current
// position. Expected holds the token kinds (or a grammar description)
// the parser would have accepted.
type SyntaxError struct {
	Expected   []string
	Got        TokenKind
	Lexeme     string
	Pos        int // 0-based byte offset of the unexpected token
	Line       int
	Col        int
	Suggestion string // "did you mean 'select'?" or ""
}

func (e *SyntaxError) Error() string {
	msg := fmt.Sprintf("line %d col %d: unexpected %s", e.Line, e.Col, e.Got)
	if e.Lexeme != "" && e.Got != TokenEOF {
		msg += fmt.Sprintf(" %q", e.Lexeme)
	}
	if len(e.Expected) > 0 {
		msg += ", expected " + strings.Join(e.Expected, " or ")
	}
	if e.Suggestion != "" {
		msg += " (" + e.Suggestion + ")"
	}
	return msg
}

// newSyntaxError creates a SyntaxError at the given token.
func newSyntaxError(tok Token, expected ...string) *SyntaxError {
	return &SyntaxError{
		Expected: expected,
		Got:      tok.Kind,
		Lexeme:   tok.Lexeme,
		Pos:      tok.Pos,
		Line:     tok.Line,
		Col:      tok.Col,
	}
}

// Levenshtein computes the edit distance between two strings.
func Levenshtein(a, b string) int {
	la, lb := len(a), len(b)
	if la == 0 {
		return lb
	}
	if lb == 0 {
		return la
	}

	// Use single-row DP
	prev := make([]int, lb+1)
	for j := 0; j <= lb; j++ {
		prev[j] = j
	}

	for i := 1; i <= la; i++ {
		curr := make([]int, lb+1)
		curr[0] = i
		for j := 1; j <= lb; j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			ins := curr[j-1] + 1
			del := prev[j] + 1
			sub := prev[j-1] + cost
			curr[j] = min(ins, min(del, sub))
		}
		prev = curr
	}
	return prev[lb]
}

// SuggestFrom finds the closest match from candidates within a maximum
// edit distance. Returns "" if no good match is found.
func SuggestFrom(input string, candidates []string, maxDist int) string {
	best := ""
	bestDist := maxDist + 1
	for _, c := range candidates {
		d := Levenshtein(strings.ToLower(input), strings.ToLower(c))
		if d < bestDist {
			bestDist = d
			best = c
		}
	}
	if bestDist <= maxDist && bestDist > 0 {
		return fmt.Sprintf("did you mean '%s'?", best)
	}
	return ""
}
