package memfilter

import (
	"testing"
	"time"

	"github.com/nlstn/go-rql/internal/grammar"
	"github.com/nlstn/go-rql/internal/predicate"
	"github.com/nlstn/go-rql/internal/shape"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type level int

func (level) EnumMembers() map[string]int {
	return map[string]int{"Junior": 1, "Senior": 2, "Lead": 3}
}

type employee struct {
	Code   int
	Name   string
	Salary decimal.Decimal
	Level  level
	Hired  time.Time
	Bonus  *int
}

func compileText(t *testing.T, text string, s *shape.Shape) Func {
	t.Helper()
	node, err := grammar.Parse(text)
	require.NoError(t, err)
	preds, err := predicate.Lower(node, s, text)
	require.NoError(t, err)
	fn, err := Compile(preds, s)
	require.NoError(t, err)
	return fn
}

func employeeShape(t *testing.T) *shape.Shape {
	t.Helper()
	s, err := shape.Analyze(employee{})
	require.NoError(t, err)
	return s
}

func codes(records []employee, fn Func) []int {
	var out []int
	for _, r := range records {
		if fn(r) {
			out = append(out, r.Code)
		}
	}
	return out
}

func TestInCodes(t *testing.T) {
	records := make([]employee, 0, 6)
	for _, c := range []int{1, 2, 3, 4, 4, 6} {
		records = append(records, employee{Code: c})
	}
	fn := compileText(t, "(in(Code,3,4,5))", employeeShape(t))
	assert.Equal(t, []int{3, 4, 4}, codes(records, fn))

	fn = compileText(t, "(nin(Code,3,4,5))", employeeShape(t))
	assert.Equal(t, []int{1, 2, 6}, codes(records, fn))
}

func TestEmptyMatchesAll(t *testing.T) {
	fn, err := Compile(nil, employeeShape(t))
	require.NoError(t, err)
	assert.True(t, fn(employee{}))
	assert.True(t, fn(nil))
	assert.True(t, compileText(t, "()", employeeShape(t))(employee{Code: 9}))
}

func TestOperators(t *testing.T) {
	bonus := 100
	e := employee{
		Code:   42,
		Name:   "Jane Doe",
		Salary: decimal.RequireFromString("5000.50"),
		Level:  2,
		Hired:  time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC),
		Bonus:  &bonus,
	}

	tests := []struct {
		text  string
		match bool
	}{
		{"(eq(Code,42))", true},
		{"(eq(Code,41))", false},
		{"(ne(Code,41))", true},
		{"(lt(Code,43))", true},
		{"(lt(Code,42))", false},
		{"(lte(Code,42))", true},
		{"(gt(Salary,5000.49))", true},
		{"(gte(Salary,5000.50))", true},
		{"(gt(Salary,5000.5))", false},
		{`(startswith(Name,"Jane"))`, true},
		{`(startswith(Name,"jane"))`, false},
		{`(contains(Name,"e D"))`, true},
		{`(contains(Name,"x"))`, false},
		{"(between(Code,42,50))", true},
		{"(between(Code,30,42))", true},
		{"(between(Code,43,50))", false},
		{"(eq(Level,Senior))", true},
		{"(gt(Level,Junior))", true},
		{"(lt(Level,Lead))", true},
		{"(in(Level,Junior,Lead))", false},
		{"(gt(Hired,2023-01-01))", true},
		{"(between(Hired,2023-06-01,2023-06-30))", true},
		{"(eq(Bonus,100))", true},
		{"(eq(Code,42),eq(Name,Nope))", false},
		{"(and(gte(Code,40),lte(Code,45)),startswith(Name,J))", true},
	}

	s := employeeShape(t)
	for _, tt := range tests {
		fn := compileText(t, tt.text, s)
		assert.Equal(t, tt.match, fn(e), tt.text)
		assert.Equal(t, tt.match, fn(&e), "pointer record "+tt.text)
	}
}

func TestNilFieldMatchesNothing(t *testing.T) {
	s := employeeShape(t)
	e := employee{}
	for _, text := range []string{"(eq(Bonus,1))", "(ne(Bonus,1))", "(nin(Bonus,1,2))", "(lt(Bonus,10))"} {
		assert.False(t, compileText(t, text, s)(e), text)
	}
}

func TestMapRecords(t *testing.T) {
	s, err := shape.Define("Person", []shape.FieldDef{
		{Name: "Age", Kind: "integer"},
		{Name: "City", Kind: "text"},
		{Name: "Joined", Kind: "datetime"},
	})
	require.NoError(t, err)

	fn := compileText(t, `(between(Age,18,65),eq(City,"Oslo"),gt(Joined,2020-01-01))`, s)

	assert.True(t, fn(map[string]interface{}{"Age": float64(30), "City": "Oslo", "Joined": "2021-05-01T00:00:00Z"}))
	assert.False(t, fn(map[string]interface{}{"Age": 70, "City": "Oslo", "Joined": "2021-05-01"}))
	assert.False(t, fn(map[string]interface{}{"City": "Oslo", "Joined": "2021-05-01"}), "missing field")
	assert.False(t, fn(map[string]interface{}{"Age": nil, "City": "Oslo", "Joined": "2021-05-01"}), "nil field")
}

func TestUntypedRecords(t *testing.T) {
	fn := compileText(t, `(eq(Code,3),startswith(Name,J))`, nil)
	assert.True(t, fn(map[string]interface{}{"Code": 3, "Name": "Jo"}))
	assert.True(t, fn(employee{Code: 3, Name: "Jim"}))
	assert.False(t, fn(employee{Code: 4, Name: "Jim"}))
}
