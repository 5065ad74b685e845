package field

import (
	"errors"
	"fmt"
	"reflect"
	"sync"
)

// ErrNotStruct is returned by Extract for records that are not structs.
var ErrNotStruct = errors.New("record is not a struct")

// TagName is the struct tag consulted by Extract.
const TagName = "litedb"

// Field is one named attribute of a record.
type Field struct {
	Name  string
	Value Value
}

// Fields is the ordered attribute list of a record.
type Fields []Field

// Get returns the value of the named attribute.
func (fs Fields) Get(name string) (Value, bool) {
	for _, f := range fs {
		if f.Name == name {
			return f.Value, true
		}
	}
	return Value{}, false
}

// Names returns the attribute names in order.
func (fs Fields) Names() []string {
	names := make([]string, len(fs))
	for i, f := range fs {
		names[i] = f.Name
	}
	return names
}

// Indexable is implemented by records that report their own attributes
// instead of relying on reflection.
type Indexable interface {
	IndexFields() Fields
}

// Of returns the indexable attributes of rec.
func Of(rec any) (Fields, error) {
	if ix, ok := rec.(Indexable); ok {
		return ix.IndexFields(), nil
	}
	return Extract(rec)
}

type fieldPlan struct {
	name  string
	index []int
}

var plans sync.Map // reflect.Type -> []fieldPlan

// Extract reflects over the exported fields of a struct (or pointer to
// struct), including fields promoted from embedded structs.
//
// The `litedb:"name"` tag renames an attribute and `litedb:"-"` skips it.
// Scalars map to their Value kinds, nil pointers and interfaces to Null,
// slices and arrays to Array. Maps, structs, funcs, channels and complex
// numbers are skipped.
func Extract(rec any) (Fields, error) {
	rv := reflect.ValueOf(rec)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil, fmt.Errorf("%w: nil %T", ErrNotStruct, rec)
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil, fmt.Errorf("%w: %T", ErrNotStruct, rec)
	}

	plan := planFor(rv.Type())
	out := make(Fields, 0, len(plan))
	for _, p := range plan {
		fv, err := rv.FieldByIndexErr(p.index)
		if err != nil {
			// Promoted through a nil embedded pointer.
			continue
		}
		v, ok, err := convert(fv)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", p.name, err)
		}
		if ok {
			out = append(out, Field{Name: p.name, Value: v})
		}
	}
	return out, nil
}

func planFor(t reflect.Type) []fieldPlan {
	if cached, ok := plans.Load(t); ok {
		return cached.([]fieldPlan)
	}

	var plan []fieldPlan
	for _, sf := range reflect.VisibleFields(t) {
		if sf.Anonymous || !sf.IsExported() {
			continue
		}
		name := sf.Name
		if tag, ok := sf.Tag.Lookup(TagName); ok {
			if tag == "-" {
				continue
			}
			if tag != "" {
				name = tag
			}
		}
		plan = append(plan, fieldPlan{name: name, index: sf.Index})
	}

	actual, _ := plans.LoadOrStore(t, plan)
	return actual.([]fieldPlan)
}

func fromReflect(v any) (Value, bool, error) {
	return convert(reflect.ValueOf(v))
}

// convert maps a reflected value to a Value. ok is false for kinds that are
// not attributes (part of the nested object graph).
func convert(rv reflect.Value) (Value, bool, error) {
	switch rv.Kind() {
	case reflect.Bool:
		return Bool(rv.Bool()), true, nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return Int(rv.Int()), true, nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		v, err := fromUint(rv.Uint())
		return v, err == nil, err
	case reflect.Float32, reflect.Float64:
		return Float(rv.Float()), true, nil
	case reflect.String:
		return String(rv.String()), true, nil
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return Null(), true, nil
		}
		return convert(rv.Elem())
	case reflect.Slice:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			if rv.IsNil() {
				return Null(), true, nil
			}
			return Bytes(rv.Bytes()), true, nil
		}
		return convertArray(rv)
	case reflect.Array:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			b := make([]byte, rv.Len())
			for i := range b {
				b[i] = byte(rv.Index(i).Uint())
			}
			return Bytes(b), true, nil
		}
		return convertArray(rv)
	default:
		return Value{}, false, nil
	}
}

func convertArray(rv reflect.Value) (Value, bool, error) {
	items := make([]Value, 0, rv.Len())
	for i := range rv.Len() {
		item, ok, err := convert(rv.Index(i))
		if err != nil {
			return Value{}, false, err
		}
		if ok {
			items = append(items, item)
		}
	}
	return Array(items), true, nil
}
