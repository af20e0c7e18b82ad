package ir

// Row is the execution context for one partial or complete match: a binding
// from variable name to value.
//
// Rows are passed by value between operators. Any operator that extends a
// row it did not create must Clone it first, since two matches can diverge
// from the same anchor.
type Row map[string]Value

// NewRow creates a row with a single binding.
func NewRow(name string, v Value) Row {
	return Row{name: v}
}

// Get returns the bound value, or Null if name is unbound.
func (r Row) Get(name string) Value {
	if v, ok := r[name]; ok && v != nil {
		return v
	}
	return Null{}
}

// Clone returns a shallow copy. Values themselves are never mutated after
// construction, so sharing them is safe.
func (r Row) Clone() Row {
	out := make(Row, len(r)+1)
	for k, v := range r {
		out[k] = v
	}
	return out
}

// With returns a copy of r with name bound to v.
func (r Row) With(name string, v Value) Row {
	out := r.Clone()
	out[name] = v
	return out
}
