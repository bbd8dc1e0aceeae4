// Package blueprint accumulates the transient generation requests of one
// editing session. A builder never touches the network; invalid items are
// rejected locally and never reach the assembler.
package blueprint

import (
	"fmt"
	"math"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"papergen/internal/config"
	"papergen/internal/domain"
	"papergen/internal/domain/models"
)

// Builder holds an ordered list of blueprint items. Order is significant:
// it determines section ordering and labeling downstream.
type Builder struct {
	items []models.BlueprintItem
}

// NewBuilder creates an empty builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// Add validates and appends an item, assigning it a fresh id.
// Returns the stored item.
func (b *Builder) Add(item models.BlueprintItem) (*models.BlueprintItem, error) {
	if err := validateItem(&item); err != nil {
		return nil, &domain.ValidationError{Message: err.Error()}
	}
	if len(b.items) >= config.MaxBlueprintItems {
		return nil, &domain.ValidationError{
			Message: fmt.Sprintf("blueprint cannot exceed %d items", config.MaxBlueprintItems),
		}
	}

	item.ID = uuid.NewString()
	b.items = append(b.items, item)
	return &b.items[len(b.items)-1], nil
}

// Remove deletes the item with the given id, preserving the order of the
// remaining items.
func (b *Builder) Remove(id string) error {
	for i := range b.items {
		if b.items[i].ID == id {
			b.items = append(b.items[:i], b.items[i+1:]...)
			return nil
		}
	}
	return &domain.NotFoundError{Message: fmt.Sprintf("blueprint item %s not found", id)}
}

// Items returns the items in insertion order.
func (b *Builder) Items() []models.BlueprintItem {
	return b.items
}

// Len returns the number of items.
func (b *Builder) Len() int {
	return len(b.items)
}

func validateItem(item *models.BlueprintItem) error {
	return validation.ValidateStruct(item,
		validation.Field(&item.Topic,
			validation.Required,
			validation.Length(1, config.MaxTopicLength),
		),
		validation.Field(&item.Type, validation.Required, validation.By(validateType)),
		validation.Field(&item.Count,
			validation.Required,
			validation.Min(1),
			validation.Max(config.MaxQuestionsPerItem),
		),
		validation.Field(&item.Marks,
			validation.Required,
			validation.By(validateMarks),
		),
	)
}

func validateType(value interface{}) error {
	t, _ := value.(models.QuestionType)
	switch t {
	case models.QuestionShortAnswer, models.QuestionLongAnswer, models.QuestionMCQ,
		models.QuestionFillBlank, models.QuestionTrueFalse, models.QuestionMatch,
		models.QuestionAssertionReason:
		return nil
	}
	return fmt.Errorf("unknown question type %q", string(t))
}

func validateMarks(value interface{}) error {
	marks, ok := value.(float64)
	if !ok {
		return fmt.Errorf("marks must be a number")
	}
	if marks <= 0 {
		return fmt.Errorf("marks must be greater than zero")
	}
	steps := marks / config.MarksStep
	if math.Abs(steps-math.Round(steps)) > 1e-9 {
		return fmt.Errorf("marks must be a multiple of %v", config.MarksStep)
	}
	return nil
}
