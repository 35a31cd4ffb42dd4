package grammar

import (
	"strings"
)

// Node is a node of a parsed RQL expression. Nodes are immutable once parsed
// and may be shared between goroutines.
type Node interface {
	// Range returns the byte offsets of the node in the parsed text.
	Range() (start, end int)
	String() string
	node()
}

// Literal is an unconverted literal argument.
type Literal struct {
	Text   string
	Quoted bool
	Pos    int
}

func (l Literal) String() string {
	if !l.Quoted {
		return l.Text
	}
	return `"` + strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(l.Text) + `"`
}

// Criterion is a leaf criterion such as eq(Code,3).
type Criterion struct {
	Operator Operator
	Field    string
	FieldPos int
	Literals []Literal
	Pos, End int
}

func (c *Criterion) node() {}

// Range implements Node.
func (c *Criterion) Range() (int, int) { return c.Pos, c.End }

func (c *Criterion) String() string {
	var b strings.Builder
	b.WriteString(c.Operator.String())
	b.WriteByte('(')
	b.WriteString(c.Field)
	for _, l := range c.Literals {
		b.WriteByte(',')
		b.WriteString(l.String())
	}
	b.WriteByte(')')
	return b.String()
}

// Group combines child expressions. The parenthesised top level is an
// implicit And group.
type Group struct {
	Combinator Combinator
	Children   []Node
	// Implicit marks a bare parenthesised list rather than an and(...)/or(...) call.
	Implicit bool
	Pos, End int
}

func (g *Group) node() {}

// Range implements Node.
func (g *Group) Range() (int, int) { return g.Pos, g.End }

func (g *Group) String() string {
	var b strings.Builder
	if !g.Implicit {
		b.WriteString(g.Combinator.String())
	}
	b.WriteByte('(')
	for i, child := range g.Children {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(child.String())
	}
	b.WriteByte(')')
	return b.String()
}

// IsEmpty reports whether n is a group without criteria, i.e. match-all.
func IsEmpty(n Node) bool {
	g, ok := n.(*Group)
	if !ok {
		return false
	}
	for _, child := range g.Children {
		if !IsEmpty(child) {
			return false
		}
	}
	return true
}
