// Package grammar lexes and parses RQL text into an immutable AST.
//
// RQL is written in function-call style. A query is a parenthesised,
// comma-separated list of expressions; an expression is either a combinator
// call, and(...) or or(...), or a leaf criterion operator(field, literal...):
//
//	(in(Code,3,4,5))
//	(and(gte(Age,18),startswith(Name,"J")))
//	()
//
// The parser does no type coercion: literals stay text.
package grammar

import (
	"github.com/nlstn/go-rql/internal/rqlerr"
)

// Parser is a recursive-descent parser over a token slice.
type Parser struct {
	text      string
	tokens    []*Token
	current   int
	maxValues int
}

// Parse parses RQL text. It returns either a complete tree or an *rqlerr.Error.
func Parse(text string) (Node, error) {
	return ParseLimited(text, 0)
}

// ParseLimited parses RQL text, rejecting in/nin criteria with more than
// maxValues literals. maxValues <= 0 disables the limit.
func ParseLimited(text string, maxValues int) (Node, error) {
	tokens, err := NewTokenizer(text).TokenizeAll()
	if err != nil {
		return nil, err
	}
	p := &Parser{text: text, tokens: tokens, maxValues: maxValues}
	return p.Parse()
}

func (p *Parser) currentToken() *Token {
	if p.current >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1]
	}
	return p.tokens[p.current]
}

func (p *Parser) peek() *Token {
	if p.current+1 >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1]
	}
	return p.tokens[p.current+1]
}

func (p *Parser) advance() *Token {
	token := p.currentToken()
	if p.current < len(p.tokens)-1 {
		p.current++
	}
	return token
}

func (p *Parser) errorAt(token *Token, format string, args ...interface{}) error {
	return rqlerr.Grammar(p.text, token.Pos, p.text[token.Pos:token.End], format, args...)
}

func (p *Parser) expect(tokenType TokenType) (*Token, error) {
	token := p.currentToken()
	if token.Type != tokenType {
		if tokenType == TokenRParen && token.Type == TokenEOF {
			return nil, p.errorAt(token, "missing ')'")
		}
		return nil, p.errorAt(token, "expected %s, got %s", tokenType, token.Type)
	}
	return p.advance(), nil
}

// Parse parses the query: a parenthesised expression list followed by end of input.
func (p *Parser) Parse() (Node, error) {
	if tok := p.currentToken(); tok.Type != TokenLParen {
		return nil, p.errorAt(tok, "query must be wrapped in parentheses")
	}
	root, err := p.parseList()
	if err != nil {
		return nil, err
	}

	if tok := p.currentToken(); tok.Type != TokenEOF {
		if tok.Type == TokenRParen {
			return nil, p.errorAt(tok, "unexpected ')'")
		}
		return nil, p.errorAt(tok, "unexpected %s after expression", tok.Type)
	}
	return root, nil
}

// parseList parses '(' [expr {',' expr}] ')' into an implicit And group.
func (p *Parser) parseList() (Node, error) {
	open, err := p.expect(TokenLParen)
	if err != nil {
		return nil, err
	}

	group := &Group{Combinator: And, Implicit: true, Pos: open.Pos}
	if p.currentToken().Type != TokenRParen {
		for {
			child, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			group.Children = append(group.Children, child)
			if p.currentToken().Type != TokenComma {
				break
			}
			p.advance()
		}
	}

	closing, err := p.expect(TokenRParen)
	if err != nil {
		return nil, err
	}
	group.End = closing.End
	return group, nil
}

// parseExpr parses a combinator call, a leaf criterion or a nested list.
func (p *Parser) parseExpr() (Node, error) {
	tok := p.currentToken()
	switch tok.Type {
	case TokenLParen:
		return p.parseList()
	case TokenWord:
	default:
		return nil, p.errorAt(tok, "expected an expression, got %s", tok.Type)
	}

	if p.peek().Type != TokenLParen {
		return nil, p.errorAt(tok, "expected '(' after %q", tok.Value)
	}
	if comb, ok := lookupCombinator(tok.Value); ok {
		return p.parseGroup(comb)
	}
	if op, ok := LookupOperator(tok.Value); ok {
		return p.parseCriterion(op)
	}
	return nil, p.errorAt(tok, "unknown operator %q", tok.Value)
}

// parseGroup parses combinator '(' expr {',' expr} ')'.
func (p *Parser) parseGroup(comb Combinator) (Node, error) {
	name := p.advance()
	p.advance() // '('

	group := &Group{Combinator: comb, Pos: name.Pos}
	for {
		child, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		group.Children = append(group.Children, child)
		if p.currentToken().Type != TokenComma {
			break
		}
		p.advance()
	}

	closing, err := p.expect(TokenRParen)
	if err != nil {
		return nil, err
	}
	group.End = closing.End
	return group, nil
}

// parseCriterion parses operator '(' field {',' literal} ')'.
func (p *Parser) parseCriterion(op Operator) (Node, error) {
	name := p.advance()
	p.advance() // '('

	field := p.currentToken()
	if field.Type != TokenWord || !isFieldPath(field.Value) {
		return nil, p.errorAt(field, "%s expects a field name as its first argument", op)
	}
	p.advance()

	crit := &Criterion{Operator: op, Field: field.Value, FieldPos: field.Pos, Pos: name.Pos}
	for p.currentToken().Type == TokenComma {
		p.advance()
		lit := p.currentToken()
		switch lit.Type {
		case TokenWord:
			if p.peek().Type == TokenLParen {
				return nil, p.errorAt(lit, "expected a literal, got a nested expression")
			}
			crit.Literals = append(crit.Literals, Literal{Text: lit.Value, Pos: lit.Pos})
		case TokenString:
			crit.Literals = append(crit.Literals, Literal{Text: lit.Value, Quoted: true, Pos: lit.Pos})
		default:
			return nil, p.errorAt(lit, "expected a literal, got %s", lit.Type)
		}
		p.advance()
	}

	closing, err := p.expect(TokenRParen)
	if err != nil {
		return nil, err
	}
	crit.End = closing.End

	if err := p.checkArity(crit); err != nil {
		return nil, err
	}
	return crit, nil
}

func (p *Parser) checkArity(c *Criterion) error {
	n := len(c.Literals)
	fragment := p.text[c.Pos:c.End]
	if !c.Operator.AcceptsLen(n) {
		switch c.Operator.Arity() {
		case ArityUnary:
			return rqlerr.Grammar(p.text, c.Pos, fragment, "%s requires exactly 1 value, got %d", c.Operator, n)
		case ArityBinary:
			return rqlerr.Grammar(p.text, c.Pos, fragment, "%s requires exactly 2 values, got %d", c.Operator, n)
		default:
			return rqlerr.Grammar(p.text, c.Pos, fragment, "%s requires at least 1 value", c.Operator)
		}
	}
	if p.maxValues > 0 && n > p.maxValues {
		return rqlerr.Grammar(p.text, c.Pos, fragment, "%s accepts at most %d values, got %d", c.Operator, p.maxValues, n)
	}
	return nil
}

// isFieldPath accepts identifiers optionally separated by '.' or '/'.
func isFieldPath(s string) bool {
	if s == "" {
		return false
	}
	segmentStart := true
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z'):
			segmentStart = false
		case c >= '0' && c <= '9':
			if segmentStart {
				return false
			}
		case c == '.' || c == '/':
			if segmentStart {
				return false
			}
			segmentStart = true
		default:
			return false
		}
	}
	return !segmentStart
}
