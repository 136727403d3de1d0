package runtime

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestObjectKeepsInsertionOrder(t *testing.T) {
	obj := NewObject()
	obj.Set("b", NumberValue{Val: 1})
	obj.Set("a", NumberValue{Val: 2})
	obj.Set("b", NumberValue{Val: 3})
	if diff := cmp.Diff([]string{"b", "a"}, obj.Keys()); diff != "" {
		t.Fatalf("keys (-want +got):\n%s", diff)
	}
	got, _ := obj.Get("b")
	if got.(NumberValue).Val != 3 {
		t.Fatalf("b = %v, want 3", got)
	}
}

func TestStringify(t *testing.T) {
	obj := NewObject()
	obj.Set("name", StringValue{Val: "tide"})
	obj.Set("tags", NewList(StringValue{Val: "a"}, NumberValue{Val: 2.5}))
	cases := []struct {
		value Value
		want  string
	}{
		{Null, "null"},
		{NumberValue{Val: 14}, "14"},
		{NumberValue{Val: -0.5}, "-0.5"},
		{StringValue{Val: "plain"}, "plain"},
		{NewList(NumberValue{Val: 1}, StringValue{Val: "x"}, True), `[1, "x", true]`},
		{obj, `{ name: "tide", tags: ["a", 2.5] }`},
		{NewObject(), "{}"},
		{&FunctionValue{Name: "add"}, "<fn add>"},
		{NativeFunctionValue{Name: "print"}, "<native fn print>"},
		{&ReactiveValue{Current: NumberValue{Val: 3}}, "3"},
	}
	for _, tc := range cases {
		if got := Stringify(tc.value); got != tc.want {
			t.Errorf("Stringify(%#v) = %q, want %q", tc.value, got, tc.want)
		}
	}
}

func TestEqual(t *testing.T) {
	left := NewObject()
	left.Set("a", NewList(NumberValue{Val: 1}))
	right := NewObject()
	right.Set("a", NewList(NumberValue{Val: 1}))

	if !Equal(left, right) {
		t.Fatalf("objects with equal fields should be equal")
	}
	if Equal(NumberValue{Val: 1}, StringValue{Val: "1"}) {
		t.Fatalf("values of different kinds must not be equal")
	}
	if !Equal(NewList(StringValue{Val: "x"}), NewList(StringValue{Val: "x"})) {
		t.Fatalf("lists compare element-wise")
	}
	if Equal(NewList(Null), NewList()) {
		t.Fatalf("lists of different length must differ")
	}
	if !Equal(&ReactiveValue{Current: True}, True) {
		t.Fatalf("reactives compare by their current value")
	}
}

func TestTypeName(t *testing.T) {
	if TypeName(NativeFunctionValue{Name: "len"}) != "function" {
		t.Fatalf("native functions report as function")
	}
	if TypeName(NewList()) != "list" {
		t.Fatalf("unexpected list type name")
	}
}
