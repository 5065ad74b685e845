package index

import (
	"fmt"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/google/btree"

	"github.com/hupe1980/litedb/field"
)

const btreeDegree = 32

// posting holds the slots sharing one value: a single slot inline, or a
// bitmap once two or more slots share it.
type posting struct {
	one  uint32
	many *roaring.Bitmap
}

func (p *posting) bitmap() *roaring.Bitmap {
	if p.many != nil {
		return p.many.Clone()
	}
	return roaring.BitmapOf(p.one)
}

func (p *posting) equal(o *posting) bool {
	if (p.many == nil) != (o.many == nil) {
		return false
	}
	if p.many == nil {
		return p.one == o.one
	}
	return p.many.Equals(o.many)
}

type item struct {
	value field.Value
	posting
}

func less(a, b *item) bool { return field.Less(a.value, b.value) }

// Index maps the values of one attribute to slots.
type Index struct {
	kind  field.Kind // KindInvalid until the first non-null value
	tree  *btree.BTreeG[*item]
	nulls *roaring.Bitmap
}

// New returns an empty index with no pinned kind.
func New() *Index {
	return &Index{
		tree:  btree.NewG(btreeDegree, less),
		nulls: roaring.New(),
	}
}

// Kind returns the pinned value kind, or KindInvalid if none is pinned yet.
func (ix *Index) Kind() field.Kind { return ix.kind }

// Len returns the number of distinct values plus the number of null slots.
func (ix *Index) Len() int {
	return ix.tree.Len() + int(ix.nulls.GetCardinality())
}

// Distinct returns the number of distinct non-null values.
func (ix *Index) Distinct() int { return ix.tree.Len() }

// Nulls returns the number of slots indexed under null.
func (ix *Index) Nulls() int { return int(ix.nulls.GetCardinality()) }

// Add indexes slot under v. It fails with ErrUnindexable when v cannot be
// ordered against the values already in the index.
func (ix *Index) Add(v field.Value, slot uint32) error {
	if v.IsNull() {
		ix.nulls.Add(slot)
		return nil
	}
	if !v.Kind.Orderable() {
		return fmt.Errorf("%w: %s value", ErrUnindexable, v.Kind)
	}
	if ix.kind == field.KindInvalid {
		ix.kind = v.Kind
	} else if v.Kind != ix.kind {
		return fmt.Errorf("%w: %s value in %s index", ErrUnindexable, v.Kind, ix.kind)
	}

	it, ok := ix.tree.Get(&item{value: v})
	switch {
	case !ok:
		ix.tree.ReplaceOrInsert(&item{value: v, posting: posting{one: slot}})
	case it.many != nil:
		it.many.Add(slot)
	case it.one != slot:
		it.many = roaring.BitmapOf(it.one, slot)
	}
	return nil
}

// Destroy removes slot from the bucket of v.
func (ix *Index) Destroy(v field.Value, slot uint32) error {
	if v.IsNull() {
		if !ix.nulls.CheckedRemove(slot) {
			return &NotFoundError{Value: v, Slot: slot}
		}
		return nil
	}
	if v.Kind != ix.kind {
		return &NotFoundError{Value: v, Slot: slot}
	}

	it, ok := ix.tree.Get(&item{value: v})
	if !ok {
		return &NotFoundError{Value: v, Slot: slot}
	}
	if it.many == nil {
		if it.one != slot {
			return &NotFoundError{Value: v, Slot: slot}
		}
		ix.tree.Delete(it)
		return nil
	}
	if !it.many.CheckedRemove(slot) {
		return &NotFoundError{Value: v, Slot: slot}
	}
	if it.many.GetCardinality() == 1 {
		it.one = it.many.Minimum()
		it.many = nil
	}
	return nil
}

// Purge removes slot from whichever bucket holds it, searching every value.
// It reports whether slot was found.
func (ix *Index) Purge(slot uint32) bool {
	if ix.nulls.CheckedRemove(slot) {
		return true
	}
	var hit *item
	ix.tree.Ascend(func(it *item) bool {
		if (it.many == nil && it.one == slot) || (it.many != nil && it.many.Contains(slot)) {
			hit = it
			return false
		}
		return true
	})
	if hit == nil {
		return false
	}
	if err := ix.Destroy(hit.value, slot); err != nil {
		return false
	}
	return true
}

// Retrieve returns the slots indexed under v. A null v returns the null bucket.
func (ix *Index) Retrieve(v field.Value) *roaring.Bitmap {
	if v.IsNull() {
		return ix.nulls.Clone()
	}
	if v.Kind != ix.kind {
		return roaring.New()
	}
	it, ok := ix.tree.Get(&item{value: v})
	if !ok {
		return roaring.New()
	}
	return it.bitmap()
}

// RetrieveRange returns the slots whose values lie in [low, high]. A null
// bound is open on that side. A null low also includes the null bucket, so
// two null bounds return exactly the null bucket.
func (ix *Index) RetrieveRange(low, high field.Value) *roaring.Bitmap {
	if low.IsNull() && high.IsNull() {
		return ix.nulls.Clone()
	}

	out := roaring.New()
	visit := func(it *item) bool {
		if !high.IsNull() && field.Less(high, it.value) {
			return false
		}
		if it.many != nil {
			out.Or(it.many)
		} else {
			out.Add(it.one)
		}
		return true
	}

	if low.IsNull() {
		out.Or(ix.nulls)
		if high.Kind == ix.kind {
			ix.tree.Ascend(visit)
		}
		return out
	}
	if low.Kind != ix.kind || (!high.IsNull() && high.Kind != ix.kind) {
		return out
	}
	ix.tree.AscendGreaterOrEqual(&item{value: low}, visit)
	return out
}

// Each visits the distinct values in ascending order with their slot counts.
func (ix *Index) Each(fn func(v field.Value, slots int) bool) {
	ix.tree.Ascend(func(it *item) bool {
		n := 1
		if it.many != nil {
			n = int(it.many.GetCardinality())
		}
		return fn(it.value, n)
	})
}

// Equal reports whether two indexes hold the same kind, null bucket and entries.
func (ix *Index) Equal(o *Index) bool {
	if ix.kind != o.kind || ix.tree.Len() != o.tree.Len() || !ix.nulls.Equals(o.nulls) {
		return false
	}
	a := make([]*item, 0, ix.tree.Len())
	ix.tree.Ascend(func(it *item) bool {
		a = append(a, it)
		return true
	})
	i := 0
	equal := true
	o.tree.Ascend(func(it *item) bool {
		if !a[i].value.Equal(it.value) || !a[i].equal(&it.posting) {
			equal = false
			return false
		}
		i++
		return true
	})
	return equal
}
