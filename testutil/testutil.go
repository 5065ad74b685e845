package testutil

import (
	"fmt"
	"math/rand"
	"slices"
	"sync"
)

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Float64 returns a pseudo-random number in [0.0,1.0).
func (r *RNG) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Float64()
}

// Bytes returns n pseudo-random bytes.
func (r *RNG) Bytes(n int) []byte {
	r.mu.Lock()
	defer r.mu.Unlock()
	b := make([]byte, n)
	_, _ = r.rand.Read(b)
	return b
}

// Cities is the pool Person.City is drawn from.
var Cities = []string{"Berlin", "Lisbon", "London", "Oslo", "Paris", "Rome"}

// Person is a record with string, int, float, optional and array attributes.
type Person struct {
	Name   string   `json:"name"`
	Age    int      `json:"age"`
	City   string   `json:"city" litedb:"city"`
	Score  float64  `json:"score"`
	Email  *string  `json:"email"`
	Tags   []string `json:"tags"`
	Secret string   `json:"-" litedb:"-"`
}

// Person returns a random person numbered i. Email is nil for about a third
// of the people.
func (r *RNG) Person(i int) Person {
	p := Person{
		Name:  fmt.Sprintf("person-%05d", i),
		Age:   r.Intn(90),
		City:  Cities[r.Intn(len(Cities))],
		Score: float64(r.Intn(1000)) / 10,
	}
	if r.Intn(3) != 0 {
		email := fmt.Sprintf("p%d@example.com", i)
		p.Email = &email
	}
	return p
}

// People returns n random people.
func (r *RNG) People(n int) []Person {
	out := make([]Person, n)
	for i := range out {
		out[i] = r.Person(i)
	}
	return out
}

// Model is a reference implementation of slot allocation: the smallest free
// slot is reused first, otherwise the table grows.
type Model[T any] struct {
	slots map[uint32]T
	free  []uint32
	next  uint32
}

// NewModel returns an empty model.
func NewModel[T any]() *Model[T] {
	return &Model[T]{slots: make(map[uint32]T)}
}

// Insert stores rec and returns the slot the table is expected to use.
func (m *Model[T]) Insert(rec T) uint32 {
	var slot uint32
	if len(m.free) > 0 {
		slot = m.free[0]
		m.free = m.free[1:]
	} else {
		slot = m.next
		m.next++
	}
	m.slots[slot] = rec
	return slot
}

// Delete removes every record matching fn and returns how many matched.
func (m *Model[T]) Delete(fn func(T) bool) int {
	n := 0
	for slot, rec := range m.slots {
		if fn(rec) {
			delete(m.slots, slot)
			m.free = append(m.free, slot)
			n++
		}
	}
	slices.Sort(m.free)
	return n
}

// Len returns the number of stored records.
func (m *Model[T]) Len() int { return len(m.slots) }

// Select returns the records matching fn in slot order.
func (m *Model[T]) Select(fn func(T) bool) []T {
	slots := make([]uint32, 0, len(m.slots))
	for slot, rec := range m.slots {
		if fn == nil || fn(rec) {
			slots = append(slots, slot)
		}
	}
	slices.Sort(slots)
	out := make([]T, len(slots))
	for i, slot := range slots {
		out[i] = m.slots[slot]
	}
	return out
}
