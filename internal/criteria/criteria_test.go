package criteria

import (
	"reflect"
	"sync"
	"testing"

	"github.com/nlstn/go-rql/internal/grammar"
	"github.com/nlstn/go-rql/internal/rqlerr"
	"github.com/nlstn/go-rql/internal/shape"
	"github.com/nlstn/go-rql/internal/value"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type product struct {
	Code   int
	Name   string
	Age    int
	Active bool
}

type paging struct {
	Page int `json:"page" rql:"-"`
}

type productCriteria struct {
	Overpost
	paging
	Codes    []int   `json:"codes" rql:"Code,op=in"`
	Excluded []int   `json:"excluded" rql:"Code,op=nin"`
	Name     string  `json:"name" rql:",op=startswith"`
	Ages     [2]int  `json:"ages" rql:"Age,op=between"`
	Active   *bool   `json:"active"`
	Internal string  `json:"-" rql:"-"`
	MinAge   *int    `json:"minAge" rql:"Age,op=gte"`
	Ratio    float64 `json:"ratio" rql:"-"`
}

func productShape(t *testing.T) *shape.Shape {
	t.Helper()
	s, err := shape.Analyze(product{})
	require.NoError(t, err)
	return s
}

func TestDescriptor(t *testing.T) {
	desc, err := DescriptorOf(reflect.TypeOf(&productCriteria{}))
	require.NoError(t, err)

	type row struct {
		property string
		field    string
		op       grammar.Operator
		list     bool
	}
	var got []row
	for _, e := range desc.Entries {
		got = append(got, row{e.Property, e.Field, e.Operator, e.List})
	}
	assert.Equal(t, []row{
		{"Codes", "Code", grammar.In, true},
		{"Excluded", "Code", grammar.NotIn, true},
		{"Name", "Name", grammar.StartsWith, false},
		{"Ages", "Age", grammar.Between, true},
		{"Active", "Active", grammar.Equals, false},
		{"MinAge", "Age", grammar.GreaterThanOrEqual, false},
	}, got)
	assert.Equal(t, value.Integer, desc.Entries[0].Kind)

	assert.True(t, desc.Declares("codes"))
	assert.True(t, desc.Declares("CODES"))
	assert.True(t, desc.Declares("page"))
	assert.False(t, desc.Declares("Internal"))
}

func TestDescriptorCachedOnce(t *testing.T) {
	var wg sync.WaitGroup
	descs := make([]*Descriptor, 8)
	for i := range descs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			descs[i], _ = DescriptorOf(reflect.TypeOf(productCriteria{}))
		}(i)
	}
	wg.Wait()
	for _, d := range descs {
		assert.Same(t, descs[0], d)
	}
}

func TestDescriptorRejectsBadTags(t *testing.T) {
	type unknownOp struct {
		Code int `rql:",op=like"`
	}
	type scalarIn struct {
		Code int `rql:",op=in"`
	}
	type listEq struct {
		Codes []int `rql:"Code,op=eq"`
	}
	type badOperand struct {
		Nested struct{ X int }
	}
	type betweenThree struct {
		Ages [3]int `rql:"Age,op=between"`
	}
	type emptyIn struct {
		Codes [0]int `rql:"Code"`
	}
	for _, v := range []interface{}{unknownOp{}, scalarIn{}, listEq{}, badOperand{}, betweenThree{}, emptyIn{}} {
		_, err := DescriptorOf(reflect.TypeOf(v))
		assert.Error(t, err, "%T", v)
	}
}

func TestIntrospectSkipsDefaults(t *testing.T) {
	preds, err := Introspect(&productCriteria{Name: "J"}, productShape(t))
	require.NoError(t, err)
	require.Len(t, preds, 1)
	assert.Equal(t, grammar.StartsWith, preds[0].Operator)
	assert.Equal(t, "Name", preds[0].Target.Name)

	preds, err = Introspect(productCriteria{}, productShape(t))
	require.NoError(t, err)
	assert.Empty(t, preds)
}

func TestIntrospectPopulated(t *testing.T) {
	active := false
	minAge := 0
	c := productCriteria{
		Codes:  []int{3, 4, 5},
		Ages:   [2]int{18, 65},
		Active: &active,
		MinAge: &minAge,
	}
	preds, err := Introspect(c, productShape(t))
	require.NoError(t, err)
	require.Len(t, preds, 4)

	assert.Equal(t, []value.Value{value.Int(3), value.Int(4), value.Int(5)}, preds[0].Values)
	assert.Equal(t, grammar.Between, preds[1].Operator)
	assert.Equal(t, []value.Value{value.Int(18), value.Int(65)}, preds[1].Values)
	assert.Equal(t, []value.Value{value.Bool(false)}, preds[2].Values, "non-nil pointer is populated")
	assert.Equal(t, []value.Value{value.Int(0)}, preds[3].Values)
}

func TestIntrospectUntyped(t *testing.T) {
	preds, err := Introspect(productCriteria{Codes: []int{1}}, nil)
	require.NoError(t, err)
	require.Len(t, preds, 1)
	assert.Equal(t, value.Integer, preds[0].Target.Kind)
}

func TestIntrospectErrors(t *testing.T) {
	type unknownField struct {
		Color string
	}
	_, err := Introspect(unknownField{Color: "red"}, productShape(t))
	assert.ErrorIs(t, err, rqlerr.ErrResolution)

	_, err = Introspect(nil, productShape(t))
	assert.ErrorIs(t, err, rqlerr.ErrUsage)

	var missing *productCriteria
	_, err = Introspect(missing, productShape(t))
	assert.ErrorIs(t, err, rqlerr.ErrUsage)

	_, err = Introspect(42, productShape(t))
	assert.ErrorIs(t, err, rqlerr.ErrUsage)
}

func TestDecodeOverposted(t *testing.T) {
	var c productCriteria
	names, err := Decode([]byte(`{"codes":[1,2],"isAdmin":true}`), &c)
	require.NoError(t, err)

	assert.Equal(t, []int{1, 2}, c.Codes)
	assert.Equal(t, []string{"isAdmin"}, names)
	assert.True(t, c.IsOverposted())
	assert.Equal(t, []string{"isAdmin"}, c.OverpostedFieldNames())
	assert.JSONEq(t, `true`, string(c.OverpostedFields()["isAdmin"]))
}

func TestDecodeClean(t *testing.T) {
	var c productCriteria
	names, err := Decode([]byte(`{"Codes":[1],"NAME":"J","page":2}`), &c)
	require.NoError(t, err)
	assert.Empty(t, names)
	assert.False(t, c.IsOverposted())
	assert.Empty(t, c.OverpostedFieldNames())
	assert.Equal(t, "J", c.Name)
	assert.Equal(t, 2, c.Page)
}

func TestDecodeIgnoredFieldIsOverposted(t *testing.T) {
	var c productCriteria
	names, err := Decode([]byte(`{"Internal":"x"}`), &c)
	require.NoError(t, err)
	assert.Equal(t, []string{"Internal"}, names)
	assert.Empty(t, c.Internal)
}

func TestDecodeErrors(t *testing.T) {
	var c productCriteria
	_, err := Decode([]byte(`[1,2]`), &c)
	assert.Error(t, err)

	_, err = Decode([]byte(`{}`), c)
	assert.Error(t, err)
}
