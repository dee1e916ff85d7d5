package db_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skryldev/jobly/db"
)

func TestValueOf(t *testing.T) {
	s := "x"
	n := 3
	var nilStr *string

	cases := []struct {
		name string
		in   any
		want db.Value
	}{
		{name: "nil", in: nil, want: db.Null()},
		{name: "string", in: "Aliya", want: db.String("Aliya")},
		{name: "int", in: 32, want: db.Int(32)},
		{name: "int64", in: int64(-5), want: db.Int(-5)},
		{name: "uint8", in: uint8(7), want: db.Int(7)},
		{name: "float64", in: 0.5, want: db.Float(0.5)},
		{name: "bool", in: true, want: db.Bool(true)},
		{name: "string pointer", in: &s, want: db.String("x")},
		{name: "int pointer", in: &n, want: db.Int(3)},
		{name: "nil pointer", in: nilStr, want: db.Null()},
		{name: "value", in: db.Float(1), want: db.Float(1)},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got, err := db.ValueOf(c.in)
			require.NoError(t, err)
			assert.Equal(t, c.want, got)
		})
	}
}

func TestValueOf_RejectsNonScalars(t *testing.T) {
	for _, in := range []any{[]int{1}, map[string]int{}, struct{}{}, uint64(1)} {
		_, err := db.ValueOf(in)
		assert.Error(t, err, "%T", in)
	}
}

func TestValue_DriverValue(t *testing.T) {
	cases := []struct {
		v    db.Value
		want any
		kind db.Kind
		str  string
	}{
		{db.Null(), nil, db.KindNull, "null"},
		{db.String("a"), "a", db.KindString, `"a"`},
		{db.Int(32), int64(32), db.KindInt, "32"},
		{db.Float(0.25), 0.25, db.KindFloat, "0.25"},
		{db.Bool(false), false, db.KindBool, "false"},
	}
	for _, c := range cases {
		t.Run(c.kind.String(), func(t *testing.T) {
			got, err := c.v.Value()
			require.NoError(t, err)
			assert.Equal(t, c.want, got)
			assert.Equal(t, c.kind, c.v.Kind())
			assert.Equal(t, c.str, c.v.String())
		})
	}
	assert.True(t, db.Value{}.IsNull())
}
