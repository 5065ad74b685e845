package index

import (
	"errors"
	"io"
	"log/slog"
	"maps"
	"slices"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/hupe1980/litedb/field"
)

// Predicate is one named constraint of a query: equality against Value, or
// an inclusive range over Bounds when Range is set.
type Predicate struct {
	Field  string
	Value  field.Value
	Bounds []field.Value
	Range  bool
}

// Manager owns the indexes of one table.
type Manager struct {
	indexes   map[string]*Index
	blacklist map[string]struct{}
	logger    *slog.Logger
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the logger receiving blacklist events.
func WithLogger(l *slog.Logger) Option {
	return func(m *Manager) {
		if l != nil {
			m.logger = l
		}
	}
}

// NewManager returns an empty manager.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		indexes:   make(map[string]*Index),
		blacklist: make(map[string]struct{}),
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Index returns the index of an attribute.
func (m *Manager) Index(name string) (*Index, bool) {
	ix, ok := m.indexes[name]
	return ix, ok
}

// Names returns the indexed attribute names in sorted order.
func (m *Manager) Names() []string {
	return slices.Sorted(maps.Keys(m.indexes))
}

// Blacklist returns the blacklisted attribute names in sorted order.
func (m *Manager) Blacklist() []string {
	return slices.Sorted(maps.Keys(m.blacklist))
}

// Blacklisted reports whether name is excluded from indexing.
func (m *Manager) Blacklisted(name string) bool {
	_, ok := m.blacklist[name]
	return ok
}

// IndexItem indexes every attribute of a record stored at slot. An
// attribute whose value cannot be indexed is blacklisted and its index,
// including entries of earlier records, is discarded.
func (m *Manager) IndexItem(fields field.Fields, slot uint32) {
	for _, f := range fields {
		if m.Blacklisted(f.Name) {
			continue
		}
		ix, ok := m.indexes[f.Name]
		if !ok {
			ix = New()
			m.indexes[f.Name] = ix
		}
		if err := ix.Add(f.Value, slot); err != nil {
			m.logger.Warn("Field blacklisted",
				"field", f.Name,
				"slot", slot,
				"discarded", ix.Len(),
				"error", err,
			)
			delete(m.indexes, f.Name)
			m.blacklist[f.Name] = struct{}{}
		}
	}
}

// UnindexItem removes slot from the index of every attribute of a record.
// When fields differ from the values slot was indexed under, the slot is
// searched for and removed anyway. A NotFoundError means the index did not
// hold slot at all.
func (m *Manager) UnindexItem(fields field.Fields, slot uint32) error {
	var errs []error
	for _, f := range fields {
		if m.Blacklisted(f.Name) {
			continue
		}
		ix, ok := m.indexes[f.Name]
		if !ok {
			errs = append(errs, &NotFoundError{Field: f.Name, Value: f.Value, Slot: slot})
			continue
		}
		if err := ix.Destroy(f.Value, slot); err == nil {
			continue
		}
		// The value no longer matches the one indexed, e.g. after a lossy
		// codec round trip.
		if ix.Purge(slot) {
			m.logger.Debug("Slot purged", "field", f.Name, "slot", slot)
			continue
		}
		errs = append(errs, &NotFoundError{Field: f.Name, Value: f.Value, Slot: slot})
	}
	return errors.Join(errs...)
}

// Retrieve evaluates predicates in order. The first predicate seeds the
// result; each later one intersects it. Predicates on empty indexes are
// validated and then skipped.
func (m *Manager) Retrieve(preds []Predicate) (*roaring.Bitmap, error) {
	acc := roaring.New()
	for i, p := range preds {
		ix, err := m.lookup(p.Field)
		if err != nil {
			return nil, err
		}
		if err := p.validate(ix); err != nil {
			return nil, err
		}
		if ix.Len() == 0 {
			continue
		}

		var matches *roaring.Bitmap
		if p.Range {
			matches = ix.RetrieveRange(p.Bounds[0], p.Bounds[1])
		} else {
			matches = ix.Retrieve(p.Value)
		}

		if i == 0 {
			acc.Or(matches)
		} else {
			acc.And(matches)
		}
	}
	return acc, nil
}

func (m *Manager) lookup(name string) (*Index, error) {
	if m.Blacklisted(name) {
		return nil, &UnknownIndexError{Field: name, Blacklisted: true}
	}
	ix, ok := m.indexes[name]
	if !ok {
		return nil, &UnknownIndexError{Field: name}
	}
	return ix, nil
}

func (p Predicate) validate(ix *Index) error {
	if !p.Range {
		return checkKind(p.Field, ix, p.Value)
	}
	if len(p.Bounds) != 2 {
		return &InvalidRangeError{Field: p.Field, Bounds: len(p.Bounds)}
	}
	for _, b := range p.Bounds {
		if err := checkKind(p.Field, ix, b); err != nil {
			return err
		}
	}
	return nil
}

func checkKind(name string, ix *Index, v field.Value) error {
	if v.IsNull() {
		return nil
	}
	if !v.Kind.Orderable() || (ix.kind != field.KindInvalid && v.Kind != ix.kind) {
		return &TypeMismatchError{Field: name, Want: ix.kind, Got: v.Kind}
	}
	return nil
}

// Reset drops every index and the blacklist.
func (m *Manager) Reset() {
	clear(m.indexes)
	clear(m.blacklist)
}

// Equal reports whether two managers hold equal indexes and blacklists.
func (m *Manager) Equal(o *Manager) bool {
	if !maps.Equal(m.blacklist, o.blacklist) || len(m.indexes) != len(o.indexes) {
		return false
	}
	for name, ix := range m.indexes {
		other, ok := o.indexes[name]
		if !ok || !ix.Equal(other) {
			return false
		}
	}
	return true
}
