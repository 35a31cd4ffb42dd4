package rql

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type Priority int

type Color string

type Ticket struct {
	ID       int
	Priority Priority
	Color    Color
	Owner    *string
}

func init() {
	if err := RegisterEnum(Priority(0), map[string]int64{"Low": 1, "Medium": 5, "High": 10}); err != nil {
		panic(err)
	}
	if err := RegisterLabels((*Color)(nil), "red", "green", "blue"); err != nil {
		panic(err)
	}
}

func tickets() []Ticket {
	ann := "ann"
	return []Ticket{
		{ID: 1, Priority: 1, Color: "red", Owner: &ann},
		{ID: 2, Priority: 5, Color: "blue"},
		{ID: 3, Priority: 10, Color: "green", Owner: &ann},
	}
}

func ticketIDs(items []Ticket) []int {
	out := make([]int, len(items))
	for i, t := range items {
		out[i] = t.ID
	}
	return out
}

func TestRegisterEnumOrdering(t *testing.T) {
	got, err := Filter(For(Ticket{}).FromRql("(gte(Priority,Medium))"), tickets())
	require.NoError(t, err)
	assert.Equal(t, []int{2, 3}, ticketIDs(got))

	where, params, err := For(Ticket{}).FromRql("(gte(Priority,Medium))").SQL("sqlite")
	require.NoError(t, err)
	assert.Equal(t, `"priority" >= ?`, where)
	assert.Equal(t, []interface{}{int64(5)}, params)
}

func TestRegisterLabels(t *testing.T) {
	got, err := Filter(For(Ticket{}).FromRql("(in(Color,blue,green))"), tickets())
	require.NoError(t, err)
	assert.Equal(t, []int{2, 3}, ticketIDs(got))

	_, params, err := For(Ticket{}).Where("Color").In("red", "blue").SQL("postgres")
	require.NoError(t, err)
	assert.Equal(t, []interface{}{"red", "blue"}, params)

	b := For(Ticket{}).FromRql("(eq(Color,Red))")
	assert.ErrorIs(t, b.Err(), ErrCoercion, "labels are case-sensitive")
}

func TestLabelsHaveNoOrder(t *testing.T) {
	for _, q := range []string{"(lt(Color,green))", "(gte(Color,red))", "(between(Color,red,blue))"} {
		err := For(Ticket{}).FromRql(q).Err()
		assert.ErrorIs(t, err, ErrCoercion, q)
	}

	builders := []*Builder{
		For(Ticket{}).Where("Color").LesserThan("green"),
		For(Ticket{}).Where("Color").GreaterThanOrEqual(Color("red")),
		For(Ticket{}).Where("Color").Between("red", "blue"),
	}
	for _, b := range builders {
		assert.ErrorIs(t, b.Err(), ErrCoercion)
	}

	assert.NoError(t, For(Ticket{}).FromRql("(ne(Color,red),gt(Priority,Low))").Err())
}

func TestNilFieldsNeverMatch(t *testing.T) {
	for _, q := range []string{`(eq(Owner,"ann"))`, `(ne(Owner,"bob"))`, `(nin(Owner,"bob"))`} {
		got, err := Filter(For(Ticket{}).FromRql(q), tickets())
		require.NoError(t, err)
		assert.Equal(t, []int{1, 3}, ticketIDs(got), q)
	}
}

func TestRegisterEnumErrors(t *testing.T) {
	assert.Error(t, RegisterEnum(nil, map[string]int64{"A": 1}))
	assert.Error(t, RegisterEnum(Priority(0), nil))
	assert.Error(t, RegisterLabels(Color("")))
	assert.Error(t, RegisterEnum(struct{}{}, map[string]int64{"A": 1}))
}
