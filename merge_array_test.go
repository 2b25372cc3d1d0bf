// SPDX-License-Identifier: Apache-2.0

package ddm_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sam-fredrickson/ddm"
)

func TestMergeArray_MatchesItemsByIdentityNotPosition(t *testing.T) {
	merged := mustMergeJSON(t,
		`{"items":[{"$id":"a","v":1},{"$id":"b","v":2}]}`,
		`{"items":[{"$id":"b","v":20}]}`,
	)
	assertJSON(t, merged, `{"items":[{"v":1},{"v":20}]}`)
}

func TestMergeArray_UnmatchedOverrideItemsAppend(t *testing.T) {
	merged := mustMergeJSON(t,
		`{"items":[{"$id":"a","v":1}]}`,
		`{"items":[{"$id":"a","v":10},{"$id":"c","v":3}]}`,
	)
	items := merged.Object()
	arr, _ := items.Get("items")
	if len(arr.Array()) != 2 {
		t.Fatalf("len(items) = %d, want 2", len(arr.Array()))
	}
}

func TestMergeArray_ItemsWithoutIdentityAreAppendedNotMerged(t *testing.T) {
	merged := mustMergeJSON(t, `{"tags":["a","b"]}`, `{"tags":["c"]}`)
	v, _ := merged.Object().Get("tags")
	if len(v.Array()) != 3 {
		t.Fatalf("len(tags) = %d, want 3 (base untouched, override appended)", len(v.Array()))
	}
}

func TestMergeArray_DeleteMarkerRemovesMatchedItem(t *testing.T) {
	merged := mustMergeJSON(t,
		`{"items":[{"$id":"a","v":1},{"$id":"b","v":2}]}`,
		`{"items":[{"$id":"a","$patch":"delete"}]}`,
	)
	v, _ := merged.Object().Get("items")
	if len(v.Array()) != 1 {
		t.Fatalf("len(items) = %d, want 1", len(v.Array()))
	}
	remaining := v.Array()[0]
	got, _ := remaining.Object().Get("v")
	if got.NumberString() != "2" {
		t.Fatalf("remaining item v = %v, want 2", got)
	}
}

func TestMergeArray_DeleteMarkerOnUnmatchedItemIsNoop(t *testing.T) {
	merged := mustMergeJSON(t,
		`{"items":[{"$id":"a","v":1}]}`,
		`{"items":[{"$id":"ghost","$patch":"delete"}]}`,
	)
	v, _ := merged.Object().Get("items")
	if len(v.Array()) != 1 {
		t.Fatalf("len(items) = %d, want 1 (delete of nonexistent item is a no-op)", len(v.Array()))
	}
}

func TestMergeArray_ReorderPositionStart(t *testing.T) {
	// spec scenario S2.
	merged := mustMergeJSON(t,
		`{"widgets":[{"$id":"weather"},{"$id":"clock"}]}`,
		`{"widgets":[{"$id":"clock","$position":"start"},{"$id":"news","$position":"after","$anchor":"weather"}]}`,
	)
	v, _ := merged.Object().Get("widgets")
	if len(v.Array()) != 3 {
		t.Fatalf("len(widgets) = %d, want 3", len(v.Array()))
	}
	names := make([]string, 3)
	for i, item := range v.Array() {
		id, ok := item.Object().Get("$id")
		if ok {
			names[i] = id.String()
		}
	}
	want := []string{"clock", "weather", "news"}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("order = %v, want %v", names, want)
		}
	}
}

func TestMergeArray_ReorderMissingAnchorStrictFails(t *testing.T) {
	base, _ := ddm.ParseJSONBytes([]byte(`{"items":[{"$id":"a"}]}`))
	override, _ := ddm.ParseJSONBytes([]byte(`{"items":[{"$id":"a","$position":"after","$anchor":"missing"}]}`))
	_, err := ddm.Merge(base, override, ddm.DefaultOptions())
	require.Error(t, err)
	var anchorErr *ddm.AnchorMissingError
	require.ErrorAs(t, err, &anchorErr)
}

func TestMergeArray_ReorderMissingAnchorNonStrictAppendsToEnd(t *testing.T) {
	opts, err := ddm.NewOptions(ddm.Options{StrictAnchor: false})
	require.NoError(t, err)
	merged := mustMergeJSON(t,
		`{"items":[{"$id":"a"},{"$id":"b"}]}`,
		`{"items":[{"$id":"a","$position":"after","$anchor":"missing"}]}`,
		opts,
	)
	v, _ := merged.Object().Get("items")
	last := v.Array()[len(v.Array())-1]
	id, _ := last.Object().Get("$id")
	if id.String() != "a" {
		t.Fatalf("last item $id = %v, want a (non-strict degrades to append)", id)
	}
}

func TestMergeArray_UnknownPositionNormalizesToEnd(t *testing.T) {
	merged := mustMergeJSON(t,
		`{"items":[{"$id":"a"},{"$id":"b"}]}`,
		`{"items":[{"$id":"a","$position":"sideways"}]}`,
	)
	v, _ := merged.Object().Get("items")
	last := v.Array()[len(v.Array())-1]
	id, _ := last.Object().Get("$id")
	if id.String() != "a" {
		t.Fatalf("last item $id = %v, want a (unknown position tolerated as end)", id)
	}
}

// TestMergeArray_SequentialOverridesLastPositionWins mirrors spec scenario
// S5: two overrides applied via separate, sequential Merge calls, each
// repositioning the same item differently. The later call's directive
// wins, since it positions the array the first call already produced.
func TestMergeArray_SequentialOverridesLastPositionWins(t *testing.T) {
	base, err := ddm.ParseJSONBytes([]byte(`{"items":[{"$id":"a"},{"$id":"b"},{"$id":"c"}]}`))
	require.NoError(t, err)
	override1, err := ddm.ParseJSONBytes([]byte(`{"items":[{"$id":"c","$position":"start"}]}`))
	require.NoError(t, err)
	override2, err := ddm.ParseJSONBytes([]byte(`{"items":[{"$id":"c","$position":"end"}]}`))
	require.NoError(t, err)

	afterFirst, err := ddm.Merge(base, override1, ddm.DefaultOptions())
	require.NoError(t, err)
	v, _ := afterFirst.Object().Get("items")
	ids := itemIDs(t, v)
	require.Equal(t, []string{"c", "a", "b"}, ids, "override1 moves c to the start")

	afterSecond, err := ddm.Merge(afterFirst, override2, ddm.DefaultOptions())
	require.NoError(t, err)
	v, _ = afterSecond.Object().Get("items")
	ids = itemIDs(t, v)
	require.Equal(t, []string{"a", "b", "c"}, ids, "override2's end position wins over override1's start")
}

func itemIDs(t *testing.T, arr ddm.Value) []string {
	t.Helper()
	ids := make([]string, 0, len(arr.Array()))
	for _, item := range arr.Array() {
		id, ok := item.Object().Get("$id")
		require.True(t, ok)
		ids = append(ids, id.String())
	}
	return ids
}

func TestMergeArray_DuplicateBaseIdentityFirstOccurrenceWins(t *testing.T) {
	merged := mustMergeJSON(t,
		`{"items":[{"$id":"a","v":1},{"$id":"a","v":2}]}`,
		`{"items":[{"$id":"a","v":10}]}`,
	)
	v, _ := merged.Object().Get("items")
	if len(v.Array()) != 2 {
		t.Fatalf("len(items) = %d, want 2", len(v.Array()))
	}
	first := v.Array()[0]
	got, _ := first.Object().Get("v")
	if got.NumberString() != "10" {
		t.Fatalf("first item v = %v, want 10 (first occurrence is the match target)", got)
	}
}
