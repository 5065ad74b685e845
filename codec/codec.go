// Package codec provides record serialization for tables.
//
// The storage engine treats encoded records as opaque blobs. A table stores
// the name of its codec in its info file and reopens with the codec of the
// same name, so changing the default never breaks existing tables.
package codec

import "fmt"

// Codec encodes/decodes records.
// Implementations must be safe for concurrent use.
type Codec interface {
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
	Name() string
}

// Default is the codec used for newly created tables.
var Default Codec = GoJSON{}

// ByName returns a built-in codec by its stable name.
func ByName(name string) (Codec, bool) {
	switch name {
	case "json":
		return JSON{}, true
	case "go-json":
		return GoJSON{}, true
	default:
		return nil, false
	}
}

// Resolve returns the built-in codec called name, or an error naming it.
func Resolve(name string) (Codec, error) {
	c, ok := ByName(name)
	if !ok {
		return nil, fmt.Errorf("codec: unknown codec %q", name)
	}
	return c, nil
}
