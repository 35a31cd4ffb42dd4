package predicate

import (
	"errors"
	"testing"
	"time"

	"github.com/nlstn/go-rql/internal/grammar"
	"github.com/nlstn/go-rql/internal/rqlerr"
	"github.com/nlstn/go-rql/internal/shape"
	"github.com/nlstn/go-rql/internal/value"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type status int

func (status) EnumMembers() map[string]int {
	return map[string]int{"Open": 1, "Shipped": 2, "Closed": 3}
}

type order struct {
	Code    int
	Name    string
	Price   decimal.Decimal
	Status  status
	Created time.Time
	Lines   []string
}

func mustShape(t *testing.T) *shape.Shape {
	t.Helper()
	s, err := shape.Analyze(order{})
	require.NoError(t, err)
	return s
}

func lower(t *testing.T, text string, s *shape.Shape) ([]Predicate, error) {
	t.Helper()
	node, err := grammar.Parse(text)
	require.NoError(t, err, text)
	return Lower(node, s, text)
}

func TestLowerTyped(t *testing.T) {
	s := mustShape(t)

	preds, err := lower(t, `(in(Code,3,4,5),startswith(Name,"J"),and(gte(Price,9.5),eq(Status,Shipped)),between(Created,2024-01-01,2024-12-31))`, s)
	require.NoError(t, err)
	require.Len(t, preds, 5)

	assert.Equal(t, In, preds[0].Operator)
	assert.Equal(t, value.Integer, preds[0].Target.Kind)
	assert.Equal(t, []value.Value{value.Int(3), value.Int(4), value.Int(5)}, preds[0].Values)

	assert.Equal(t, StartsWith, preds[1].Operator)
	assert.Equal(t, "J", preds[1].Values[0].Text())

	assert.Equal(t, GreaterThanOrEqual, preds[2].Operator)
	assert.True(t, preds[2].Values[0].Decimal().Equal(decimal.RequireFromString("9.5")))

	assert.Equal(t, value.Label, preds[3].Values[0].Kind())
	assert.Equal(t, int64(2), preds[3].Values[0].Integer())

	assert.Equal(t, Between, preds[4].Operator)
	assert.Equal(t, 2024, preds[4].Values[1].Time().Year())
}

func TestLowerEmpty(t *testing.T) {
	for _, text := range []string{"()", "(())", "(or(eq(Code,1),()))"} {
		preds, err := lower(t, text, mustShape(t))
		require.NoError(t, err, text)
		assert.Empty(t, preds, text)
	}
}

func TestLowerSingleChildOr(t *testing.T) {
	preds, err := lower(t, "(or(eq(Code,1)))", mustShape(t))
	require.NoError(t, err)
	assert.Len(t, preds, 1)
}

func TestLowerErrors(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		sentinel error
		pos      int
	}{
		{"unknown field", "(eq(Missing,1))", rqlerr.ErrResolution, 4},
		{"association field", "(eq(Lines,1))", rqlerr.ErrResolution, 4},
		{"bad integer", "(in(Code,1,x))", rqlerr.ErrCoercion, 11},
		{"bad date", "(gt(Created,yesterday))", rqlerr.ErrCoercion, 12},
		{"label is case-sensitive", "(eq(Status,shipped))", rqlerr.ErrCoercion, 11},
		{"pattern on integer", "(contains(Code,1))", rqlerr.ErrCoercion, 10},
		{"or group", "(or(eq(Code,1),eq(Code,2)))", rqlerr.ErrGrammar, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			preds, err := lower(t, tt.text, mustShape(t))
			require.Error(t, err)
			assert.Nil(t, preds)
			assert.True(t, errors.Is(err, tt.sentinel), err.Error())

			var rerr *rqlerr.Error
			require.True(t, errors.As(err, &rerr))
			assert.Equal(t, tt.text, rerr.Query)
			assert.Equal(t, tt.pos, rerr.Pos)
		})
	}
}

func TestLowerUntyped(t *testing.T) {
	preds, err := lower(t, `(eq(Code,3),eq(Name,"3"),in(Ratio,1,2.5),in(Tag,1,abc),eq(Active,true),startswith(Zip,12))`, nil)
	require.NoError(t, err)
	require.Len(t, preds, 6)

	assert.Equal(t, value.Integer, preds[0].Target.Kind)
	assert.Nil(t, preds[0].Target.Field)
	assert.Equal(t, value.Text, preds[1].Target.Kind)
	assert.Equal(t, value.Decimal, preds[2].Target.Kind)
	assert.Equal(t, value.Decimal, preds[2].Values[0].Kind())
	assert.Equal(t, value.Text, preds[3].Target.Kind)
	assert.Equal(t, "1", preds[3].Values[0].Text())
	assert.Equal(t, value.Boolean, preds[4].Target.Kind)
	assert.Equal(t, value.Text, preds[5].Target.Kind)
	assert.Equal(t, "12", preds[5].Values[0].Text())
}

func TestBuildMatchesLowering(t *testing.T) {
	s := mustShape(t)
	target, err := Resolve(s, "Code")
	require.NoError(t, err)

	built, err := Build(Equals, target, []interface{}{3})
	require.NoError(t, err)

	lowered, err := lower(t, "(eq(Code,3))", s)
	require.NoError(t, err)
	assert.True(t, EqualLists([]Predicate{built}, lowered))
}

func TestBuildCoercion(t *testing.T) {
	s := mustShape(t)

	status, err := Resolve(s, "Status")
	require.NoError(t, err)
	p, err := Build(In, status, []interface{}{"Open", 3})
	require.NoError(t, err)
	assert.Equal(t, []string{"Open", "Closed"}, []string{p.Values[0].Text(), p.Values[1].Text()})

	price, _ := Resolve(s, "Price")
	p, err = Build(Between, price, []interface{}{1, 2.5})
	require.NoError(t, err)
	assert.Equal(t, value.Decimal, p.Values[1].Kind())

	code, _ := Resolve(s, "Code")
	_, err = Build(Equals, code, []interface{}{"abc"})
	assert.ErrorIs(t, err, rqlerr.ErrCoercion)

	_, err = Build(Between, code, []interface{}{1})
	assert.ErrorIs(t, err, rqlerr.ErrUsage)

	var missing *int
	_, err = Build(Equals, code, []interface{}{missing})
	assert.ErrorIs(t, err, rqlerr.ErrUsage)

	_, err = Resolve(s, "Nope")
	assert.ErrorIs(t, err, rqlerr.ErrResolution)
}

func TestBuildUntyped(t *testing.T) {
	target, err := Resolve(nil, "Anything")
	require.NoError(t, err)

	p, err := Build(In, target, []interface{}{1, 2.5})
	require.NoError(t, err)
	assert.Equal(t, value.Decimal, p.Target.Kind)

	p, err = Build(Contains, target, []interface{}{42})
	require.NoError(t, err)
	assert.Equal(t, "42", p.Values[0].Text())

	_, err = Build(Equals, target, []interface{}{nil})
	assert.ErrorIs(t, err, rqlerr.ErrUsage)

	_, err = Build(Equals, target, []interface{}{struct{}{}})
	assert.ErrorIs(t, err, rqlerr.ErrCoercion)
}

func TestTargetNames(t *testing.T) {
	s, err := shape.Define("Person", []shape.FieldDef{{Name: "FirstName", Kind: "text", DocKey: "first"}})
	require.NoError(t, err)

	target, err := Resolve(s, "FirstName")
	require.NoError(t, err)
	assert.Equal(t, "first_name", target.Column())
	assert.Equal(t, "first", target.DocKey())
	assert.Equal(t, "FirstName", target.RecordKey())

	untyped := Target{Name: "x"}
	assert.Equal(t, "x", untyped.Column())
	assert.Equal(t, "x", untyped.DocKey())
}
