package grammar

import (
	"strings"

	"github.com/nlstn/go-rql/internal/rqlerr"
)

// TokenType represents the type of a token
type TokenType int

const (
	TokenEOF TokenType = iota
	// TokenWord is a bare token: operator and field names, numbers, booleans, bare words.
	TokenWord
	// TokenString is a quoted literal with quotes removed and escapes resolved.
	TokenString
	TokenLParen
	TokenRParen
	TokenComma
)

func (t TokenType) String() string {
	switch t {
	case TokenEOF:
		return "end of input"
	case TokenWord:
		return "word"
	case TokenString:
		return "string"
	case TokenLParen:
		return "'('"
	case TokenRParen:
		return "')'"
	case TokenComma:
		return "','"
	default:
		return "unknown"
	}
}

// Token represents a single token in an RQL expression
type Token struct {
	Type  TokenType
	Value string
	Pos   int
	// End is the offset just past the token, including closing quotes.
	End int
}

// Tokenizer tokenizes RQL expressions
type Tokenizer struct {
	input string
	pos   int
}

// NewTokenizer creates a new tokenizer
func NewTokenizer(input string) *Tokenizer {
	return &Tokenizer{input: input}
}

func (t *Tokenizer) ch() byte {
	if t.pos >= len(t.input) {
		return 0
	}
	return t.input[t.pos]
}

func (t *Tokenizer) skipWhitespace() {
	for t.pos < len(t.input) {
		switch t.input[t.pos] {
		case ' ', '\t', '\n', '\r':
			t.pos++
		default:
			return
		}
	}
}

func isDelimiter(c byte) bool {
	switch c {
	case '(', ')', ',', '\'', '"', ' ', '\t', '\n', '\r':
		return true
	}
	return false
}

// readString reads a quoted string. A backslash escapes the quote character
// and itself; any other backslash is kept verbatim.
func (t *Tokenizer) readString() (string, error) {
	start := t.pos
	quote := t.input[t.pos]
	t.pos++ // skip opening quote

	var result strings.Builder
	for t.pos < len(t.input) {
		c := t.input[t.pos]
		switch {
		case c == quote:
			t.pos++ // skip closing quote
			return result.String(), nil
		case c == '\\' && t.pos+1 < len(t.input) && (t.input[t.pos+1] == quote || t.input[t.pos+1] == '\\'):
			result.WriteByte(t.input[t.pos+1])
			t.pos += 2
		default:
			result.WriteByte(c)
			t.pos++
		}
	}
	return "", rqlerr.Grammar(t.input, start, t.input[start:], "unterminated string")
}

// readWord reads a bare token up to the next delimiter.
func (t *Tokenizer) readWord() string {
	start := t.pos
	for t.pos < len(t.input) && !isDelimiter(t.input[t.pos]) {
		t.pos++
	}
	return t.input[start:t.pos]
}

// NextToken returns the next token
func (t *Tokenizer) NextToken() (*Token, error) {
	t.skipWhitespace()

	pos := t.pos
	switch c := t.ch(); {
	case t.pos >= len(t.input):
		return &Token{Type: TokenEOF, Pos: pos, End: pos}, nil
	case c == '(':
		t.pos++
		return &Token{Type: TokenLParen, Value: "(", Pos: pos, End: t.pos}, nil
	case c == ')':
		t.pos++
		return &Token{Type: TokenRParen, Value: ")", Pos: pos, End: t.pos}, nil
	case c == ',':
		t.pos++
		return &Token{Type: TokenComma, Value: ",", Pos: pos, End: t.pos}, nil
	case c == '\'' || c == '"':
		value, err := t.readString()
		if err != nil {
			return nil, err
		}
		return &Token{Type: TokenString, Value: value, Pos: pos, End: t.pos}, nil
	default:
		value := t.readWord()
		return &Token{Type: TokenWord, Value: value, Pos: pos, End: t.pos}, nil
	}
}

// TokenizeAll returns all tokens from the input
func (t *Tokenizer) TokenizeAll() ([]*Token, error) {
	var tokens []*Token

	for {
		token, err := t.NextToken()
		if err != nil {
			return nil, err
		}

		tokens = append(tokens, token)

		if token.Type == TokenEOF {
			break
		}
	}

	return tokens, nil
}
