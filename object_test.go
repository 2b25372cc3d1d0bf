// SPDX-License-Identifier: Apache-2.0

package ddm_test

import (
	"testing"

	"github.com/sam-fredrickson/ddm"
)

func TestObject_SetPreservesInsertionOrder(t *testing.T) {
	o := ddm.NewObject()
	o.Set("z", ddm.Number(1))
	o.Set("a", ddm.Number(2))
	o.Set("m", ddm.Number(3))

	want := []string{"z", "a", "m"}
	got := o.Keys()
	if len(got) != len(want) {
		t.Fatalf("Keys() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Keys() = %v, want %v", got, want)
		}
	}
}

func TestObject_SetExistingKeyKeepsPosition(t *testing.T) {
	o := ddm.NewObject()
	o.Set("a", ddm.Number(1))
	o.Set("b", ddm.Number(2))
	o.Set("a", ddm.Number(99))

	got := o.Keys()
	if got[0] != "a" || got[1] != "b" {
		t.Fatalf("Keys() = %v, want [a b] (position unchanged on update)", got)
	}
	v, ok := o.Get("a")
	if !ok || v.NumberString() != "99" {
		t.Fatalf("Get(a) = %v, %v, want 99, true", v, ok)
	}
}

func TestObject_Delete(t *testing.T) {
	o := ddm.NewObject()
	o.Set("a", ddm.Number(1))
	o.Set("b", ddm.Number(2))
	o.Set("c", ddm.Number(3))
	o.Delete("b")

	if o.Has("b") {
		t.Fatal("Has(b) = true after Delete")
	}
	if o.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", o.Len())
	}
	want := []string{"a", "c"}
	got := o.Keys()
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Keys() = %v, want %v", got, want)
		}
	}
}

func TestObject_Clone(t *testing.T) {
	o := ddm.NewObject()
	o.Set("a", ddm.Array(ddm.Number(1)))
	clone := o.Clone()

	clonedArr, _ := clone.Get("a")
	clonedArr.Array()[0] = ddm.Number(99)

	origArr, _ := o.Get("a")
	if origArr.Array()[0].NumberString() != "1" {
		t.Fatal("Clone is not independent of the original")
	}
}

func TestObject_Equal(t *testing.T) {
	a := ddm.NewObject()
	a.Set("x", ddm.Number(1))
	a.Set("y", ddm.Number(2))

	b := ddm.NewObject()
	b.Set("x", ddm.Number(1))
	b.Set("y", ddm.Number(2))

	c := ddm.NewObject()
	c.Set("y", ddm.Number(2))
	c.Set("x", ddm.Number(1))

	if !a.Equal(b) {
		t.Fatal("expected a.Equal(b) = true")
	}
	if a.Equal(c) {
		t.Fatal("expected a.Equal(c) = false (same keys, different order)")
	}
}

func TestObject_NilObjectIsEmpty(t *testing.T) {
	var o *ddm.Object
	if o.Len() != 0 {
		t.Fatalf("nil Object.Len() = %d, want 0", o.Len())
	}
	if o.Has("anything") {
		t.Fatal("nil Object.Has() = true")
	}
	if o.Keys() != nil {
		t.Fatalf("nil Object.Keys() = %v, want nil", o.Keys())
	}
}
