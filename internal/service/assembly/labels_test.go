package assembly

import (
	"testing"

	"papergen/internal/catalog"
)

func TestLatinLabel(t *testing.T) {
	tests := []struct {
		i    int
		want string
	}{
		{0, "A"},
		{1, "B"},
		{25, "Z"},
		{26, "AA"},
		{27, "AB"},
		{51, "AZ"},
		{52, "BA"},
	}

	for _, tt := range tests {
		if got := latinLabel(tt.i); got != tt.want {
			t.Errorf("latinLabel(%d) = %q, want %q", tt.i, got, tt.want)
		}
	}
}

func TestSequenceFor(t *testing.T) {
	reg, err := catalog.NewRegistry()
	if err != nil {
		t.Fatalf("catalog.NewRegistry() error = %v", err)
	}

	hi := SequenceFor(reg, "hi")
	if got := hi.Title(0); got != "खण्ड क" {
		t.Errorf("hi.Title(0) = %q", got)
	}
	if got := hi.Title(1); got != "खण्ड ख" {
		t.Errorf("hi.Title(1) = %q", got)
	}
	// Table exhausted after 10 entries: Latin fallback with same prefix.
	if got := hi.Title(10); got != "खण्ड A" {
		t.Errorf("hi.Title(10) = %q", got)
	}

	en := SequenceFor(reg, "en")
	if got := en.Title(2); got != "Section C" {
		t.Errorf("en.Title(2) = %q", got)
	}

	// Unknown locale falls back to the Latin sequence.
	unknown := SequenceFor(reg, "xx")
	if got := unknown.Title(0); got != "Section A" {
		t.Errorf("unknown.Title(0) = %q", got)
	}
}
