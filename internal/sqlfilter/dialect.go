package sqlfilter

import (
	"fmt"
	"strconv"
	"strings"
)

// Dialect controls identifier quoting, placeholder style and the
// case-sensitive pattern operator of generated fragments.
type Dialect struct {
	Name string
	// quote is the identifier quote character.
	quote byte
	// numbered selects $1, $2, ... placeholders instead of ?.
	numbered bool
	match    matcher
}

// matcher renders startswith and contains as an ordinal pattern match.
type matcher struct {
	// op is written between the column and the pattern placeholder.
	op string
	// suffix follows the placeholder, e.g. an ESCAPE clause.
	suffix string
	// any is the wildcard for any run of characters.
	any     string
	escaper *strings.Replacer
}

var (
	// SQLite's LIKE ignores ASCII case, GLOB does not. GLOB has no escape
	// character, so metacharacters become single-member bracket classes.
	SQLite = Dialect{Name: "sqlite", quote: '"', match: matcher{
		op:      "GLOB",
		any:     "*",
		escaper: strings.NewReplacer("*", "[*]", "?", "[?]", "[", "[[]"),
	}}
	Postgres = Dialect{Name: "postgres", quote: '"', numbered: true, match: matcher{
		op:      "LIKE",
		suffix:  `ESCAPE '\'`,
		any:     "%",
		escaper: likeEscaper,
	}}
	// MySQL compares with the column collation unless the pattern is
	// BINARY. Backslash escapes inside string literals, so the escape
	// character is written doubled.
	MySQL = Dialect{Name: "mysql", quote: '`', match: matcher{
		op:      "LIKE BINARY",
		suffix:  `ESCAPE '\\'`,
		any:     "%",
		escaper: likeEscaper,
	}}
)

var likeEscaper = strings.NewReplacer(
	"\\", "\\\\",
	"%", "\\%",
	"_", "\\_",
)

// prefixPattern matches values starting with text.
func (m matcher) prefixPattern(text string) string {
	return m.escaper.Replace(text) + m.any
}

// substringPattern matches values containing text.
func (m matcher) substringPattern(text string) string {
	return m.any + m.escaper.Replace(text) + m.any
}

func (m matcher) clause(col, placeholder string) string {
	if m.suffix == "" {
		return col + " " + m.op + " " + placeholder
	}
	return col + " " + m.op + " " + placeholder + " " + m.suffix
}

// DialectFor resolves a dialect by name. Names match gorm's Dialector.Name().
func DialectFor(name string) (Dialect, error) {
	switch strings.ToLower(name) {
	case "sqlite", "sqlite3", "":
		return SQLite, nil
	case "postgres", "postgresql", "pgx":
		return Postgres, nil
	case "mysql", "mariadb":
		return MySQL, nil
	}
	return Dialect{}, fmt.Errorf("unsupported SQL dialect %q", name)
}

// Unnumbered returns d with ? placeholders, as gorm expects in Where clauses
// regardless of the database.
func (d Dialect) Unnumbered() Dialect {
	d.numbered = false
	return d
}

// QuoteIdent quotes a column reference. Dotted paths quote each segment;
// embedded quote characters are doubled.
func (d Dialect) QuoteIdent(ident string) string {
	if ident == "" {
		return ident
	}
	q := string(d.quote)
	segments := strings.FieldsFunc(ident, func(r rune) bool { return r == '.' || r == '/' })
	for i, s := range segments {
		segments[i] = q + strings.ReplaceAll(s, q, q+q) + q
	}
	return strings.Join(segments, ".")
}

func (d Dialect) placeholder(n int) string {
	if d.numbered {
		return "$" + strconv.Itoa(n)
	}
	return "?"
}
