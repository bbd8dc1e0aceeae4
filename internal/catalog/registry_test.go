package catalog

import "testing"

func TestRegistryLoadsEmbeddedCatalogs(t *testing.T) {
	reg, err := NewRegistry()
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}

	types := reg.ListQuestionTypes()
	if len(types) == 0 {
		t.Fatal("expected question types")
	}
	// Catalog order must be stable: mcq leads the list.
	if types[0].Tag != "mcq" {
		t.Errorf("first type = %q, want mcq", types[0].Tag)
	}

	if len(reg.Curriculum()) == 0 {
		t.Error("expected curriculum classes")
	}
}

func TestQuestionTypeLookup(t *testing.T) {
	reg, err := NewRegistry()
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}

	info, err := reg.QuestionType("mcq")
	if err != nil {
		t.Fatalf("QuestionType(mcq): %v", err)
	}
	if !info.HasOptions {
		t.Error("mcq should carry options")
	}
	if info.DefaultMarks != 1 {
		t.Errorf("mcq default marks = %v, want 1", info.DefaultMarks)
	}

	if _, err := reg.QuestionType("essay"); err == nil {
		t.Error("expected error for unknown type tag")
	}
}

func TestLabelTables(t *testing.T) {
	tests := []struct {
		locale     string
		wantOK     bool
		wantPrefix string
		wantFirst  string
	}{
		{"en", true, "Section", "A"},
		{"hi", true, "खण्ड", "क"},
		{"fr", false, "", ""},
	}

	reg, err := NewRegistry()
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}

	for _, tt := range tests {
		t.Run(tt.locale, func(t *testing.T) {
			table, ok := reg.LabelTable(tt.locale)
			if ok != tt.wantOK {
				t.Fatalf("LabelTable(%q) ok = %v, want %v", tt.locale, ok, tt.wantOK)
			}
			if !ok {
				return
			}
			if table.Prefix != tt.wantPrefix {
				t.Errorf("prefix = %q, want %q", table.Prefix, tt.wantPrefix)
			}
			if table.Labels[0] != tt.wantFirst {
				t.Errorf("first label = %q, want %q", table.Labels[0], tt.wantFirst)
			}
		})
	}
}
