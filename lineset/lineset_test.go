package lineset

import (
	"reflect"
	"testing"
)

func TestAddContains(t *testing.T) {
	s := New(3, 7, 8, 9, 12)
	for _, n := range []int{3, 7, 8, 9, 12} {
		if !s.Contains(n) {
			t.Fatalf("expecting %d to be a member", n)
		}
	}
	for _, n := range []int{0, 4, 10, 100} {
		if s.Contains(n) {
			t.Fatalf("not expecting %d to be a member", n)
		}
	}
}

func TestFromSpec(t *testing.T) {
	cases := []struct {
		spec string
		want []int
	}{
		{"3,7-9,12", []int{3, 7, 8, 9, 12}},
		{"9-7", []int{7, 8, 9}},
		{" 1 , 2 ", []int{1, 2}},
		{"1~3", []int{1, 2, 3}},
		{"", nil},
		{"oops", nil},
		{"1,oops,3", []int{1, 3}},
	}

	for _, c := range cases {
		got := FromSpec(c.spec).ToSlice()
		if !reflect.DeepEqual(got, c.want) {
			t.Fatalf("FromSpec(%q) = %v, want %v", c.spec, got, c.want)
		}
	}
}

func TestIsEmpty(t *testing.T) {
	if !New().IsEmpty() {
		t.Fatal("expecting empty set to be empty")
	}
	if New(1).IsEmpty() {
		t.Fatal("not expecting non-empty set to be empty")
	}
	if !FromSpec("garbage").IsEmpty() {
		t.Fatal("expecting malformed spec to produce an empty set")
	}
}

func TestUnion(t *testing.T) {
	s := New(1, 2, 3)
	tt := New(3, 4, 5)
	got := Union(s, tt).ToSlice()
	want := []int{1, 2, 3, 4, 5}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Union = %v, want %v", got, want)
	}
}

func TestString(t *testing.T) {
	cases := []struct {
		items []int
		want  string
	}{
		{nil, ""},
		{[]int{3}, "3"},
		{[]int{3, 7, 8, 9, 12}, "3,7-9,12"},
		{[]int{1, 2, 3, 5}, "1-3,5"},
	}

	for _, c := range cases {
		got := FromSlice(c.items).String()
		if got != c.want {
			t.Fatalf("String() for %v = %q, want %q", c.items, got, c.want)
		}
	}
}

func TestNilSetIsSafe(t *testing.T) {
	var s *Set
	if !s.IsEmpty() {
		t.Fatal("nil set should be empty")
	}
	if s.Contains(1) {
		t.Fatal("nil set should contain nothing")
	}
	if s.ToSlice() != nil {
		t.Fatal("nil set should yield a nil slice")
	}
}
