package ir

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalValue(t *testing.T) {
	tests := []struct {
		name  string
		value Value
		want  string
	}{
		{"null", Null{}, `null`},
		{"nil interface", nil, `null`},
		{"int", Int(42), `42`},
		{"negative int", Int(-7), `-7`},
		{"double", Double(1.5), `1.5`},
		{"integral double", Double(2), `2`},
		{"nan", Double(math.NaN()), `null`},
		{"positive inf", Double(math.Inf(1)), `null`},
		{"negative inf", Double(math.Inf(-1)), `null`},
		{"string", String("Alice"), `"Alice"`},
		{"boolean", Boolean(true), `true`},
		{"array", Array{Int(1), String("x"), Null{}}, `[1,"x",null]`},
		{"empty array", Array{}, `[]`},
		{
			"object sorted keys",
			Object{"name": String("Bob"), "id": Int(2), "age": Double(math.NaN())},
			`{"age":null,"id":2,"name":"Bob"}`,
		},
		{"nested", Object{"a": Object{"b": Array{Boolean(false)}}}, `{"a":{"b":[false]}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := MarshalValue(tt.value)
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(got))
		})
	}
}

func TestRowMarshalJSON(t *testing.T) {
	row := Row{
		"b": Object{"id": Int(1)},
		"a": Double(math.Inf(1)),
	}
	got, err := json.Marshal(row)
	require.NoError(t, err)
	assert.Equal(t, `{"a":null,"b":{"id":1}}`, string(got))
}

func TestUnmarshalValue(t *testing.T) {
	v, err := UnmarshalValue([]byte(`{"id": 3, "score": 2.5, "exp": 1e3, "name": "x", "ok": true, "tags": ["a"], "none": null}`))
	require.NoError(t, err)

	obj, ok := v.(Object)
	require.True(t, ok)
	assert.Equal(t, Int(3), obj["id"])
	assert.Equal(t, Double(2.5), obj["score"])
	assert.Equal(t, Double(1000), obj["exp"])
	assert.Equal(t, String("x"), obj["name"])
	assert.Equal(t, Boolean(true), obj["ok"])
	assert.Equal(t, Array{String("a")}, obj["tags"])
	assert.Equal(t, Null{}, obj["none"])
}

func TestFromNative(t *testing.T) {
	ts := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	tests := []struct {
		name string
		in   any
		want Value
	}{
		{"nil", nil, Null{}},
		{"int", 7, Int(7)},
		{"int32", int32(-3), Int(-3)},
		{"uint8", uint8(200), Int(200)},
		{"huge uint64", uint64(math.MaxUint64), Double(float64(uint64(math.MaxUint64)))},
		{"float32", float32(0.5), Double(0.5)},
		{"float64", 2.25, Double(2.25)},
		{"bytes", []byte("raw"), String("raw")},
		{"string", "s", String("s")},
		{"bool", false, Boolean(false)},
		{"time", ts, String("2024-01-02T03:04:05Z")},
		{"json int", json.Number("12"), Int(12)},
		{"json float", json.Number("1.25"), Double(1.25)},
		{"value passthrough", Int(9), Int(9)},
		{"slice", []any{1, "a"}, Array{Int(1), String("a")}},
		{"map", map[string]any{"k": nil}, Object{"k": Null{}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FromNative(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := FromNative(struct{}{})
	assert.Error(t, err)
}

func TestToNative(t *testing.T) {
	v := Object{
		"id":   Int(1),
		"w":    Double(0.5),
		"name": String("n"),
		"ok":   Boolean(true),
		"none": Null{},
		"list": Array{Int(2)},
	}
	assert.Equal(t, map[string]any{
		"id":   int64(1),
		"w":    0.5,
		"name": "n",
		"ok":   true,
		"none": nil,
		"list": []any{int64(2)},
	}, ToNative(v))
}

func TestRowCopySemantics(t *testing.T) {
	base := NewRow("a", Int(1))
	extended := base.With("b", Int(2))

	assert.Len(t, base, 1, "With must not mutate the receiver")
	assert.Equal(t, Row{"a": Int(1), "b": Int(2)}, extended)

	clone := extended.Clone()
	clone["a"] = Int(9)
	assert.Equal(t, Int(1), extended["a"], "Clone must not share the map")

	assert.Equal(t, Null{}, base.Get("missing"))
}

func TestObjectGet(t *testing.T) {
	obj := Object{"id": Int(1), "nilval": nil}
	assert.Equal(t, Int(1), obj.Get("id"))
	assert.Equal(t, Null{}, obj.Get("nope"))
	assert.Equal(t, Null{}, obj.Get("nilval"))
	assert.True(t, IsNull(obj.Get("nope")))
	assert.True(t, IsNull(nil))
	assert.False(t, IsNull(Int(0)))
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "Double", Double(1).Kind().String())
	assert.Equal(t, "Object", Object{}.Kind().String())
	assert.Equal(t, "Kind(99)", Kind(99).String())
}
