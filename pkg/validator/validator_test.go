package validator

import "testing"

func TestValidatorKeepsFirstError(t *testing.T) {
	v := New()
	if !v.Valid() {
		t.Fatalf("new validator should be valid")
	}

	v.Check(false, "radius", "must be positive")
	v.Check(false, "radius", "must be at most 50000")
	v.Check(true, "latitude", "unused")

	if v.Valid() {
		t.Fatalf("expected errors")
	}
	if len(v.Errors) != 1 || v.Errors["radius"] != "must be positive" {
		t.Fatalf("errors = %v", v.Errors)
	}
}

func TestPermittedValueAndUnique(t *testing.T) {
	if !PermittedValue("public", "public", "private") {
		t.Fatalf("public should be permitted")
	}
	if PermittedValue("everyone", "public", "private") {
		t.Fatalf("everyone should not be permitted")
	}
	if !Unique([]int{1, 2, 3}) || Unique([]string{"a", "b", "a"}) {
		t.Fatalf("Unique returned the wrong answer")
	}
}
