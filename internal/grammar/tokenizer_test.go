package grammar

import (
	"errors"
	"testing"

	"github.com/nlstn/go-rql/internal/rqlerr"
)

func TestTokenizer(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []TokenType
	}{
		{
			name:     "Empty query",
			input:    "()",
			expected: []TokenType{TokenLParen, TokenRParen, TokenEOF},
		},
		{
			name:  "In criterion",
			input: "(in(Code,3,4,5))",
			expected: []TokenType{
				TokenLParen,
				TokenWord, TokenLParen, TokenWord,
				TokenComma, TokenWord,
				TokenComma, TokenWord,
				TokenComma, TokenWord,
				TokenRParen,
				TokenRParen,
				TokenEOF,
			},
		},
		{
			name:  "Quoted literal with whitespace",
			input: ` ( startswith ( Name , "J o" ) ) `,
			expected: []TokenType{
				TokenLParen,
				TokenWord, TokenLParen, TokenWord,
				TokenComma, TokenString,
				TokenRParen,
				TokenRParen,
				TokenEOF,
			},
		},
		{
			name:  "Date literal is a single word",
			input: "gt(Created,2024-01-01T10:00:00Z)",
			expected: []TokenType{
				TokenWord, TokenLParen, TokenWord,
				TokenComma, TokenWord,
				TokenRParen,
				TokenEOF,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens, err := NewTokenizer(tt.input).TokenizeAll()
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}

			if len(tokens) != len(tt.expected) {
				t.Fatalf("Expected %d tokens, got %d", len(tt.expected), len(tokens))
			}

			for i, token := range tokens {
				if token.Type != tt.expected[i] {
					t.Errorf("Token %d: expected type %v, got %v (value: %q)", i, tt.expected[i], token.Type, token.Value)
				}
			}
		})
	}
}

func TestTokenizerStringValues(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{`"plain"`, "plain"},
		{`'single'`, "single"},
		{`"say \"hi\""`, `say "hi"`},
		{`'it\'s'`, "it's"},
		{`"back\\slash"`, `back\slash`},
		{`"keep \n"`, `keep \n`},
		{`"a,b(c)"`, "a,b(c)"},
		{`"héllo"`, "héllo"},
	}

	for _, tt := range tests {
		tokens, err := NewTokenizer(tt.input).TokenizeAll()
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", tt.input, err)
		}
		if tokens[0].Type != TokenString || tokens[0].Value != tt.expected {
			t.Errorf("%s: expected string %q, got %v %q", tt.input, tt.expected, tokens[0].Type, tokens[0].Value)
		}
	}
}

func TestTokenizerPositions(t *testing.T) {
	tokens, err := NewTokenizer(`(eq(Name,"x"))`).TokenizeAll()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	str := tokens[5]
	if str.Pos != 9 || str.End != 12 {
		t.Errorf("expected string token at [9,12), got [%d,%d)", str.Pos, str.End)
	}
}

func TestTokenizerUnterminatedString(t *testing.T) {
	_, err := NewTokenizer(`(eq(Name,"abc))`).TokenizeAll()
	if !errors.Is(err, rqlerr.ErrGrammar) {
		t.Fatalf("expected grammar error, got %v", err)
	}
	var rerr *rqlerr.Error
	if !errors.As(err, &rerr) || rerr.Pos != 9 {
		t.Fatalf("expected error at position 9, got %v", err)
	}
}
