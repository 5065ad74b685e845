package litedb

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/litedb/field"
)

func TestPredicate(t *testing.T) {
	t.Run("Eq", func(t *testing.T) {
		p := Eq("age", 30)
		assert.Equal(t, "age", p.Field())
		assert.False(t, p.IsRange())
		assert.Equal(t, "age == 30", p.String())

		ip, err := p.compile()
		require.NoError(t, err)
		assert.Equal(t, field.Int(30), ip.Value)
		assert.False(t, ip.Range)
	})

	t.Run("Range", func(t *testing.T) {
		p := Range("name", "a", nil)
		assert.True(t, p.IsRange())
		assert.Equal(t, "name in [a, <nil>]", p.String())

		ip, err := p.compile()
		require.NoError(t, err)
		assert.Equal(t, []field.Value{field.String("a"), field.Null()}, ip.Bounds)
	})

	t.Run("Unconvertible", func(t *testing.T) {
		_, err := compilePredicates([]Predicate{Eq("a", 1), Eq("b", make(chan int))})
		assert.ErrorIs(t, err, ErrTypeMismatch)
	})
}

func TestPathError(t *testing.T) {
	err := &PathError{Path: "/tmp/x", Reason: "not empty"}
	assert.ErrorIs(t, err, ErrPath)
	assert.Equal(t, "invalid table path /tmp/x: not empty", err.Error())
}
