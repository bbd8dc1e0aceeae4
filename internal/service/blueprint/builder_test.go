package blueprint

import (
	"errors"
	"testing"

	"papergen/internal/domain"
	"papergen/internal/domain/models"
)

func TestAdd(t *testing.T) {
	tests := []struct {
		name    string
		item    models.BlueprintItem
		wantErr bool
	}{
		{
			name: "valid mcq item",
			item: models.BlueprintItem{Topic: "Algebra", Type: models.QuestionMCQ, Count: 5, Marks: 1},
		},
		{
			name: "valid half-mark item",
			item: models.BlueprintItem{Topic: "Geometry", Type: models.QuestionShortAnswer, Count: 2, Marks: 2.5},
		},
		{
			name:    "zero count rejected",
			item:    models.BlueprintItem{Topic: "Algebra", Type: models.QuestionMCQ, Count: 0, Marks: 1},
			wantErr: true,
		},
		{
			name:    "negative marks rejected",
			item:    models.BlueprintItem{Topic: "Algebra", Type: models.QuestionMCQ, Count: 1, Marks: -2},
			wantErr: true,
		},
		{
			name:    "off-grid marks rejected",
			item:    models.BlueprintItem{Topic: "Algebra", Type: models.QuestionMCQ, Count: 1, Marks: 1.3},
			wantErr: true,
		},
		{
			name:    "empty topic rejected",
			item:    models.BlueprintItem{Topic: "", Type: models.QuestionMCQ, Count: 1, Marks: 1},
			wantErr: true,
		},
		{
			name:    "unknown type rejected",
			item:    models.BlueprintItem{Topic: "Algebra", Type: models.QuestionType("riddle"), Count: 1, Marks: 1},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewBuilder()
			stored, err := b.Add(tt.item)
			if tt.wantErr {
				if err == nil {
					t.Fatal("Add() error = nil, want validation error")
				}
				if !errors.Is(err, domain.ErrValidation) {
					t.Errorf("Add() error = %v, want ErrValidation", err)
				}
				if b.Len() != 0 {
					t.Error("invalid item must not be stored")
				}
				return
			}
			if err != nil {
				t.Fatalf("Add() error = %v", err)
			}
			if stored.ID == "" {
				t.Error("stored item has no id")
			}
		})
	}
}

func TestOrderPreserved(t *testing.T) {
	b := NewBuilder()
	topics := []string{"Algebra", "Geometry", "Trigonometry"}
	for _, topic := range topics {
		if _, err := b.Add(models.BlueprintItem{Topic: topic, Type: models.QuestionMCQ, Count: 1, Marks: 1}); err != nil {
			t.Fatalf("Add(%s) error = %v", topic, err)
		}
	}

	items := b.Items()
	for i, topic := range topics {
		if items[i].Topic != topic {
			t.Errorf("items[%d].Topic = %s, want %s", i, items[i].Topic, topic)
		}
	}

	// Removing the middle item keeps the relative order of the rest.
	if err := b.Remove(items[1].ID); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	items = b.Items()
	if len(items) != 2 || items[0].Topic != "Algebra" || items[1].Topic != "Trigonometry" {
		t.Errorf("after Remove, topics = %v", items)
	}
}

func TestRemoveUnknown(t *testing.T) {
	b := NewBuilder()
	if err := b.Remove("nope"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("Remove(unknown) error = %v, want ErrNotFound", err)
	}
}
