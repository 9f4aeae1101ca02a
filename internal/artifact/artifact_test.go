package artifact

import (
	"reflect"
	"testing"
)

func TestSetKeepsInsertionOrder(t *testing.T) {
	m := NewMap()
	m.Set("b.py", "b")
	m.Set("a.py", "a")
	m.Set("c.py", "c")

	want := []string{"b.py", "a.py", "c.py"}
	if got := m.Paths(); !reflect.DeepEqual(got, want) {
		t.Fatalf("order = %v, want %v", got, want)
	}
}

func TestOverwriteKeepsPosition(t *testing.T) {
	m := NewMap()
	m.Set("a.py", "first")
	m.Set("b.py", "b")
	m.Set("a.py", "second")

	if got, _ := m.Get("a.py"); got != "second" {
		t.Fatalf("content = %q, want %q", got, "second")
	}
	want := []string{"a.py", "b.py"}
	if got := m.Paths(); !reflect.DeepEqual(got, want) {
		t.Fatalf("order = %v, want %v", got, want)
	}
	if m.Len() != 2 {
		t.Fatalf("len = %d, want 2", m.Len())
	}
}

func TestMergeLaterWins(t *testing.T) {
	base := NewMap()
	base.Set("a.py", "old")
	base.Set("b.py", "b")

	next := NewMap()
	next.Set("a.py", "new")
	next.Set("c.py", "c")

	base.Merge(next)

	if got, _ := base.Get("a.py"); got != "new" {
		t.Fatalf("merge did not overwrite: %q", got)
	}
	want := []string{"a.py", "b.py", "c.py"}
	if got := base.Paths(); !reflect.DeepEqual(got, want) {
		t.Fatalf("order = %v, want %v", got, want)
	}
}

func TestMergeNilIsNoop(t *testing.T) {
	m := NewMap()
	m.Set("a.py", "a")
	m.Merge(nil)
	if m.Len() != 1 {
		t.Fatalf("len = %d, want 1", m.Len())
	}
}

func TestFilesReturnsCopy(t *testing.T) {
	m := NewMap()
	m.Set("a.py", "a")

	files := m.Files()
	files["a.py"] = "mutated"

	if got, _ := m.Get("a.py"); got != "a" {
		t.Fatalf("copy leaked back into map: %q", got)
	}
}
