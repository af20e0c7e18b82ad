// Package ir provides the runtime value types that flow through query
// execution.
//
// Values read from a backing store, produced by expression evaluation, and
// serialized in query responses are all ir.Value. Every other internal package
// that touches row data imports ir; ir imports nothing internal.
//
// Key design constraints:
//   - Value is sealed: Null, Int, Double, String, Boolean, Object, Array
//   - A missing value is Null{}, never a nil interface
//   - Object and Row keys serialize in sorted order
//   - Non-finite Double serializes as JSON null
package ir
