// Package index maintains per-attribute secondary indexes over table slots.
//
// An [Index] is a sorted map from attribute value to the slots holding it
// plus a separate bucket for null values. A value held by one slot is stored
// inline; once a second slot shares the value the posting is upgraded to a
// roaring bitmap, and collapses back when it shrinks to one slot.
//
// A [Manager] owns one Index per attribute name. The kind of the first
// non-null value pins the kind of an index. A value the index cannot order
// (an array, or a kind differing from the pinned one) blacklists the
// attribute for the lifetime of the table and discards its index.
//
// Queries are conjunctive: the first predicate seeds the result and every
// later predicate intersects it. A predicate against an index that is
// currently empty is skipped.
package index
