package index

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/litedb/field"
)

func rec(kv ...any) field.Fields {
	var fs field.Fields
	for i := 0; i < len(kv); i += 2 {
		v, err := field.FromAny(kv[i+1])
		if err != nil {
			panic(err)
		}
		fs = append(fs, field.Field{Name: kv[i].(string), Value: v})
	}
	return fs
}

func eq(name string, v any) Predicate {
	fv, err := field.FromAny(v)
	if err != nil {
		panic(err)
	}
	return Predicate{Field: name, Value: fv}
}

func between(name string, bounds ...any) Predicate {
	p := Predicate{Field: name, Range: true}
	for _, b := range bounds {
		fv, err := field.FromAny(b)
		if err != nil {
			panic(err)
		}
		p.Bounds = append(p.Bounds, fv)
	}
	return p
}

func TestManagerIndexAndRetrieve(t *testing.T) {
	m := NewManager()
	for i := range 10 {
		m.IndexItem(rec("x", i, "even", i%2 == 0), uint32(i))
	}

	assert.Equal(t, []string{"even", "x"}, m.Names())

	got, err := m.Retrieve([]Predicate{eq("x", 3)})
	require.NoError(t, err)
	assert.Equal(t, []uint32{3}, got.ToArray())

	got, err = m.Retrieve([]Predicate{between("x", 2, 6), eq("even", true)})
	require.NoError(t, err)
	assert.Equal(t, []uint32{2, 4, 6}, got.ToArray())

	got, err = m.Retrieve(nil)
	require.NoError(t, err)
	assert.True(t, got.IsEmpty())
}

func TestManagerIntersectionOfDisjointPredicates(t *testing.T) {
	m := NewManager()
	m.IndexItem(rec("a", 1, "b", 10), 0)
	m.IndexItem(rec("a", 2, "b", 20), 1)

	got, err := m.Retrieve([]Predicate{eq("a", 1)})
	require.NoError(t, err)
	assert.Equal(t, []uint32{0}, got.ToArray())

	got, err = m.Retrieve([]Predicate{eq("b", 20)})
	require.NoError(t, err)
	assert.Equal(t, []uint32{1}, got.ToArray())

	got, err = m.Retrieve([]Predicate{eq("a", 1), eq("b", 20)})
	require.NoError(t, err)
	assert.True(t, got.IsEmpty())
}

func TestManagerSkipsEmptyIndex(t *testing.T) {
	m := NewManager()
	m.IndexItem(rec("x", 1, "y", 5), 0)
	m.IndexItem(rec("x", 2, "y", 5), 1)
	require.NoError(t, m.UnindexItem(rec("y", 5), 0))
	require.NoError(t, m.UnindexItem(rec("y", 5), 1))

	ix, ok := m.Index("y")
	require.True(t, ok)
	assert.Equal(t, 0, ix.Len())

	got, err := m.Retrieve([]Predicate{eq("x", 2), eq("y", 5)})
	require.NoError(t, err)
	assert.Equal(t, []uint32{1}, got.ToArray(), "empty index contributes nothing")

	// A skipped first predicate leaves nothing for later ones to intersect.
	got, err = m.Retrieve([]Predicate{eq("y", 5), eq("x", 2)})
	require.NoError(t, err)
	assert.True(t, got.IsEmpty())

	_, err = m.Retrieve([]Predicate{eq("y", "five")})
	assert.ErrorIs(t, err, ErrTypeMismatch, "empty indexes still validate")
}

func TestManagerRetrieveErrors(t *testing.T) {
	m := NewManager()
	m.IndexItem(rec("x", 1, "tags", []any{"a"}), 0)

	tests := []struct {
		name  string
		preds []Predicate
		want  error
	}{
		{"unknown", []Predicate{eq("nope", 1)}, ErrUnknownIndex},
		{"blacklisted", []Predicate{eq("tags", "a")}, ErrUnknownIndex},
		{"type mismatch", []Predicate{eq("x", "1")}, ErrTypeMismatch},
		{"float for int", []Predicate{eq("x", 1.0)}, ErrTypeMismatch},
		{"bad bound", []Predicate{between("x", 0, "9")}, ErrTypeMismatch},
		{"one bound", []Predicate{between("x", 1)}, ErrInvalidRange},
		{"three bounds", []Predicate{between("x", 1, 2, 3)}, ErrInvalidRange},
		{"array value", []Predicate{eq("x", []any{1})}, ErrTypeMismatch},
		{"second predicate", []Predicate{eq("x", 1), eq("nope", 1)}, ErrUnknownIndex},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := m.Retrieve(tt.preds)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	_, err := m.Retrieve([]Predicate{eq("tags", "a")})
	var unknown *UnknownIndexError
	require.ErrorAs(t, err, &unknown)
	assert.True(t, unknown.Blacklisted)

	_, err = m.Retrieve([]Predicate{between("x", 1)})
	var invalid *InvalidRangeError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, 1, invalid.Bounds)
}

func TestManagerNullPredicates(t *testing.T) {
	m := NewManager()
	m.IndexItem(rec("x", 1), 0)
	m.IndexItem(rec("x", nil), 1)
	m.IndexItem(rec("x", 3), 2)

	got, err := m.Retrieve([]Predicate{eq("x", nil)})
	require.NoError(t, err)
	assert.Equal(t, []uint32{1}, got.ToArray())

	got, err = m.Retrieve([]Predicate{between("x", nil, nil)})
	require.NoError(t, err)
	assert.Equal(t, []uint32{1}, got.ToArray())

	got, err = m.Retrieve([]Predicate{between("x", nil, 1)})
	require.NoError(t, err)
	assert.Equal(t, []uint32{0, 1}, got.ToArray())
}

func TestManagerBlacklistPermanence(t *testing.T) {
	var logs bytes.Buffer
	m := NewManager(WithLogger(slog.New(slog.NewTextHandler(&logs, nil))))

	m.IndexItem(rec("tags", "fine", "x", 0), 0)
	m.IndexItem(rec("tags", "also fine", "x", 1), 1)
	m.IndexItem(rec("tags", []any{"bad"}, "x", 2), 2)

	assert.True(t, m.Blacklisted("tags"))
	assert.Equal(t, []string{"tags"}, m.Blacklist())
	_, ok := m.Index("tags")
	assert.False(t, ok, "prior entries are discarded")
	assert.Contains(t, logs.String(), "Field blacklisted")
	assert.Contains(t, logs.String(), "discarded=2")

	for i := 3; i < 10; i++ {
		m.IndexItem(rec("tags", "hashable again", "x", i), uint32(i))
	}
	_, ok = m.Index("tags")
	assert.False(t, ok, "blacklisted attributes never come back")
	assert.Equal(t, []string{"x"}, m.Names())

	// Unindexing skips blacklisted attributes.
	require.NoError(t, m.UnindexItem(rec("tags", "fine", "x", 0), 0))
}

func TestManagerKindMismatchBlacklists(t *testing.T) {
	m := NewManager()
	m.IndexItem(rec("v", 1), 0)
	m.IndexItem(rec("v", "one"), 1)
	assert.True(t, m.Blacklisted("v"))
}

func TestManagerUnindexNotFound(t *testing.T) {
	m := NewManager()
	m.IndexItem(rec("x", 1), 0)
	require.NoError(t, m.UnindexItem(rec("x", 1), 0))

	err := m.UnindexItem(rec("x", 1), 0)
	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "x", nf.Field)

	err = m.UnindexItem(rec("y", 1), 0)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestManagerUnindexChangedValue(t *testing.T) {
	m := NewManager()
	m.IndexItem(rec("x", 1, "s", "\xff"), 0)
	m.IndexItem(rec("x", 1, "s", "ok"), 1)
	m.IndexItem(rec("x", nil, "s", "ok"), 2)

	require.NoError(t, m.UnindexItem(rec("x", 1.0, "s", "\ufffd"), 0))
	require.NoError(t, m.UnindexItem(rec("x", 7, "s", "ok"), 2))

	got, err := m.Retrieve([]Predicate{eq("x", 1)})
	require.NoError(t, err)
	assert.Equal(t, []uint32{1}, got.ToArray())
	got, err = m.Retrieve([]Predicate{eq("s", "\xff")})
	require.NoError(t, err)
	assert.True(t, got.IsEmpty())
	got, err = m.Retrieve([]Predicate{eq("x", nil)})
	require.NoError(t, err)
	assert.True(t, got.IsEmpty())
}

func TestManagerReset(t *testing.T) {
	m := NewManager()
	m.IndexItem(rec("x", 1, "a", []any{1}), 0)
	m.Reset()
	assert.Empty(t, m.Names())
	assert.Empty(t, m.Blacklist())
}
