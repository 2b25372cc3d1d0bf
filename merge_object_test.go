// SPDX-License-Identifier: Apache-2.0

package ddm_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sam-fredrickson/ddm"
)

func mustMergeJSON(t *testing.T, base, override string, opts ...ddm.Options) ddm.Value {
	t.Helper()
	o := ddm.DefaultOptions()
	if len(opts) > 0 {
		o = opts[0]
	}
	bv, err := ddm.ParseJSONBytes([]byte(base))
	require.NoError(t, err)
	ov, err := ddm.ParseJSONBytes([]byte(override))
	require.NoError(t, err)
	merged, err := ddm.Merge(bv, ov, o)
	require.NoError(t, err)
	return merged
}

func assertJSON(t *testing.T, v ddm.Value, want string) {
	t.Helper()
	got, err := v.MarshalJSON()
	require.NoError(t, err)
	require.JSONEq(t, want, string(got))
}

func TestMergeObject_DeepMergesByKey(t *testing.T) {
	merged := mustMergeJSON(t,
		`{"a":1,"b":{"x":1,"y":2}}`,
		`{"b":{"y":20,"z":3},"c":4}`,
	)
	assertJSON(t, merged, `{"a":1,"b":{"x":1,"y":20,"z":3},"c":4}`)
}

func TestMergeObject_PreservesBaseKeyOrder(t *testing.T) {
	merged := mustMergeJSON(t, `{"z":1,"a":2,"m":3}`, `{"a":20}`)
	if got := merged.Object().Keys(); got[0] != "z" || got[1] != "a" || got[2] != "m" {
		t.Fatalf("key order = %v, want [z a m]", got)
	}
}

func TestMergeObject_NewKeysAppendInOverrideOrder(t *testing.T) {
	merged := mustMergeJSON(t, `{"a":1}`, `{"c":3,"b":2}`)
	got := merged.Object().Keys()
	want := []string{"a", "c", "b"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("key order = %v, want %v", got, want)
		}
	}
}

func TestMergeObject_ExplicitNullReplacesValue(t *testing.T) {
	merged := mustMergeJSON(t, `{"a":{"nested":true}}`, `{"a":null}`)
	v, _ := merged.Object().Get("a")
	if !v.IsNull() {
		t.Fatalf("a = %v, want explicit null", v)
	}
}

func TestMergeObject_ValueWrapperOverridesPrimitiveWithTypedValue(t *testing.T) {
	merged := mustMergeJSON(t,
		`{"color":"#000000"}`,
		`{"color":{"$value":{"r":0,"g":0,"b":0}}}`,
	)
	assertJSON(t, merged, `{"color":{"r":0,"g":0,"b":0}}`)
}

func TestMergeObject_PatchDeleteRemovesKey(t *testing.T) {
	// spec scenario S3 (key deleted, sibling preserved).
	merged := mustMergeJSON(t, `{"a":1,"b":2}`, `{"b":{"$patch":"delete"}}`)
	if merged.Object().Has("b") {
		t.Fatal("b still present after $patch delete")
	}
	if merged.Object().Len() != 1 {
		t.Fatalf("Len() = %d, want 1", merged.Object().Len())
	}
}

func TestMergeObject_PositionOnlyDirectivePreservesPrimitive(t *testing.T) {
	// spec scenario S6: a position-only override (no $value) on a
	// primitive base key moves the key but leaves its value untouched.
	merged := mustMergeJSON(t,
		`{"a":1,"b":2}`,
		`{"b":{"$position":"start"}}`,
	)
	got := merged.Object().Keys()
	if got[0] != "b" || got[1] != "a" {
		t.Fatalf("key order = %v, want [b a]", got)
	}
	v, _ := merged.Object().Get("b")
	if v.NumberString() != "2" {
		t.Fatalf("b = %v, want 2 (unchanged)", v)
	}
}

func TestMergeObject_ValueWrapperWithPositionRecordsBothMoveAndValue(t *testing.T) {
	// spec scenario S1.
	merged := mustMergeJSON(t,
		`{"primary":"#000","secondary":"#fff"}`,
		`{"secondary":{"$value":"#ccc","$position":"before","$anchor":"primary"}}`,
	)
	got := merged.Object().Keys()
	if got[0] != "secondary" || got[1] != "primary" {
		t.Fatalf("key order = %v, want [secondary primary]", got)
	}
	v, _ := merged.Object().Get("secondary")
	if v.String() != "#ccc" {
		t.Fatalf("secondary = %v, want #ccc", v)
	}
}

func TestMergeObject_ControlKeysStrippedFromResult(t *testing.T) {
	merged := mustMergeJSON(t, `{"a":1}`, `{"a":{"$position":"end"},"b":{"$position":"start","$value":2}}`)
	assertJSON(t, merged, `{"a":1,"b":2}`)
}

func TestMergeObject_EscapedControlKeyIsPreservedAsData(t *testing.T) {
	// spec scenario S4: a literal data key that collides with a control
	// key is doubled in the override to escape it; the merge result keeps
	// a single prefix.
	merged := mustMergeJSON(t, `{}`, `{"$$id":"literal-value"}`)
	v, ok := merged.Object().Get("$id")
	if !ok || v.String() != "literal-value" {
		t.Fatalf(`Get("$id") = %v, %v, want "literal-value", true`, v, ok)
	}
}

func TestMergeObject_AbsentOverrideYieldsAbsentResult(t *testing.T) {
	base, err := ddm.ParseJSONBytes([]byte(`{"a":1}`))
	require.NoError(t, err)
	merged, err := ddm.Merge(base, ddm.Value{}, ddm.DefaultOptions())
	require.NoError(t, err)
	if !merged.IsAbsent() {
		t.Fatalf("merged = %v, want absent", merged)
	}
}

func TestMergeObject_CompositeTypeMismatchReplacesOutright(t *testing.T) {
	merged := mustMergeJSON(t, `{"a":{"x":1}}`, `{"a":[1,2,3]}`)
	v, _ := merged.Object().Get("a")
	if v.Kind() != ddm.KindArray {
		t.Fatalf("a.Kind() = %v, want array", v.Kind())
	}
}

func TestMergeObject_DepthExceededReturnsError(t *testing.T) {
	opts, err := ddm.NewOptions(ddm.Options{MaxDepth: 1})
	require.NoError(t, err)
	base, _ := ddm.ParseJSONBytes([]byte(`{}`))
	override, _ := ddm.ParseJSONBytes([]byte(`{"a":{"b":{"c":1}}}`))
	_, err = ddm.Merge(base, override, opts)
	require.Error(t, err)
	var depthErr *ddm.DepthExceededError
	require.ErrorAs(t, err, &depthErr)
}
