package uuid

import (
	"sort"
	"testing"
)

func TestNew(t *testing.T) {
	a := New()
	if !IsValid(a) {
		t.Fatalf("expected valid uuid, got %q", a)
	}
	if a[14] != '7' {
		t.Errorf("expected version 7 uuid, got %q", a)
	}
}

func TestNewIsTimeOrdered(t *testing.T) {
	ids := make([]string, 50)
	for i := range ids {
		ids[i] = New()
	}
	if !sort.StringsAreSorted(ids) {
		t.Error("expected generated ids to sort in creation order")
	}
}

func TestIsValid(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"0190b3c4-8d2e-7a10-9f3b-2c4d5e6f7a8b", true},
		{"not-a-uuid", false},
		{"", false},
		{"12345", false},
	}
	for _, tt := range tests {
		if got := IsValid(tt.in); got != tt.want {
			t.Errorf("IsValid(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestAllValid(t *testing.T) {
	if !AllValid([]string{New(), New()}) {
		t.Error("expected all valid")
	}
	if AllValid([]string{New(), "bad"}) {
		t.Error("expected invalid when one id is malformed")
	}
}
