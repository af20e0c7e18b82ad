package ir

import (
	"slices"
	"strconv"
)

// Value is a sealed interface over the runtime value kinds.
// Only Null, Int, Double, String, Boolean, Object, and Array implement it.
type Value interface {
	irValue() // Sealed - only these types implement it
	Kind() Kind
}

// Kind identifies the variant of a Value.
type Kind int

const (
	KindNull Kind = iota
	KindInt
	KindDouble
	KindString
	KindBoolean
	KindObject
	KindArray
)

var kindNames = [...]string{
	KindNull:    "Null",
	KindInt:     "Int",
	KindDouble:  "Double",
	KindString:  "String",
	KindBoolean: "Boolean",
	KindObject:  "Object",
	KindArray:   "Array",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "Kind(" + strconv.Itoa(int(k)) + ")"
}

// Null is the absent value. Unbound variables and missing properties
// evaluate to Null.
type Null struct{}

func (Null) irValue()   {}
func (Null) Kind() Kind { return KindNull }

// Int is a 64-bit signed integer, as read from integer store columns.
type Int int64

func (Int) irValue()   {}
func (Int) Kind() Kind { return KindInt }

// Double is a 64-bit float. Numeric literals in queries are always Double.
type Double float64

func (Double) irValue()   {}
func (Double) Kind() Kind { return KindDouble }

// String holds text and byte-string columns.
type String string

func (String) irValue()   {}
func (String) Kind() Kind { return KindString }

// Boolean is a truth value.
type Boolean bool

func (Boolean) irValue()   {}
func (Boolean) Kind() Kind { return KindBoolean }

// Object maps property names to values. One Object represents one graph
// entity: a node or relationship row.
type Object map[string]Value

func (Object) irValue()   {}
func (Object) Kind() Kind { return KindObject }

// Array is an ordered list of values.
type Array []Value

func (Array) irValue()   {}
func (Array) Kind() Kind { return KindArray }

// Get returns the named property, or Null if absent.
func (o Object) Get(name string) Value {
	if v, ok := o[name]; ok && v != nil {
		return v
	}
	return Null{}
}

// IsNull reports whether v is Null or a nil interface.
func IsNull(v Value) bool {
	if v == nil {
		return true
	}
	_, ok := v.(Null)
	return ok
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
