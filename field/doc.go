// Package field models the indexable attributes of a record.
//
// A record exposes its attributes as an ordered list of [Field] values,
// either by implementing [Indexable] or through reflection over its exported
// struct fields ([Extract]). Each attribute value is a [Value]: a closed
// tagged variant over null, integer, float, string, bool, bytes and array.
//
// # Ordering
//
// Values of the same orderable kind compare with [Compare]:
//
//	Int, Float   numeric order (NaN sorts first)
//	String       lexicographic by byte
//	Bytes        lexicographic by byte
//	Bool         false < true
//
// Null is never ordered against other values; indexes keep nulls in a
// separate bucket. Arrays are unorderable, so an attribute that ever holds
// an array cannot be indexed.
//
// # Example
//
//	type Person struct {
//		Name string `litedb:"name"`
//		Age  int    `litedb:"age"`
//		Tags []string // extracted as an Array, never indexable
//		note string   // unexported, ignored
//	}
//
//	fields, err := field.Of(Person{Name: "ada", Age: 36})
//	// fields: [{name "ada"} {age 36} {Tags [...]}]
package field
