// Package editor is the in-memory mutation surface over a draft paper.
// Every operation is atomic with respect to the draft lock and leaves
// derived section totals freshly recomputed.
package editor

import (
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"papergen/internal/catalog"
	"papergen/internal/config"
	"papergen/internal/domain"
	"papergen/internal/domain/models"
	"papergen/internal/service/session"
)

// Service applies mutations to drafts.
type Service struct {
	catalog *catalog.Registry
	logger  *slog.Logger
}

// NewService creates an editor service.
func NewService(reg *catalog.Registry, logger *slog.Logger) *Service {
	return &Service{catalog: reg, logger: logger}
}

// MetaUpdate carries the optional metadata fields of an update; nil
// fields are left unchanged (last-write-wins per field).
type MetaUpdate struct {
	Title        *string `json:"title,omitempty"`
	Class        *string `json:"class,omitempty"`
	Subject      *string `json:"subject,omitempty"`
	Session      *string `json:"session,omitempty"`
	Duration     *string `json:"duration,omitempty"`
	MaxMarks     *int    `json:"max_marks,omitempty"`
	Instructions *string `json:"instructions,omitempty"`
	Locale       *string `json:"locale,omitempty"`
}

// QuestionUpdate carries the optional fields of a question update.
type QuestionUpdate struct {
	Type       *models.QuestionType `json:"type,omitempty"`
	Topic      *string              `json:"topic,omitempty"`
	Prompt     *string              `json:"prompt,omitempty"`
	Marks      *float64             `json:"marks,omitempty"`
	Answer     *string              `json:"answer,omitempty"`
	Options    []string             `json:"options,omitempty"`
	MatchPairs []models.MatchPair   `json:"match_pairs,omitempty"`
}

// UpdateMeta patches the metadata block.
func (s *Service) UpdateMeta(draft *session.Draft, update *MetaUpdate) error {
	if err := validateMetaUpdate(update); err != nil {
		return &domain.ValidationError{Message: err.Error()}
	}

	draft.Lock()
	defer draft.Unlock()

	meta := &draft.Paper.Meta
	if update.Title != nil {
		meta.Title = strings.TrimSpace(*update.Title)
	}
	if update.Class != nil {
		meta.Class = *update.Class
	}
	if update.Subject != nil {
		meta.Subject = *update.Subject
	}
	if update.Session != nil {
		meta.Session = *update.Session
	}
	if update.Duration != nil {
		meta.Duration = *update.Duration
	}
	if update.MaxMarks != nil {
		meta.MaxMarks = *update.MaxMarks
	}
	if update.Instructions != nil {
		meta.Instructions = *update.Instructions
	}
	if update.Locale != nil {
		meta.Locale = *update.Locale
	}

	s.touch(draft)
	return nil
}

// AddQuestion appends a default scaffold question to a section and
// returns it. Content is left for manual or AI-assisted completion.
func (s *Service) AddQuestion(draft *session.Draft, sectionID string) (*models.Question, error) {
	draft.Lock()
	defer draft.Unlock()

	section := draft.Paper.Section(sectionID)
	if section == nil {
		return nil, &domain.NotFoundError{Message: fmt.Sprintf("section %s not found", sectionID)}
	}

	scaffold := models.Question{
		ID:    uuid.NewString(),
		Type:  models.QuestionShortAnswer,
		Marks: 1,
	}
	if info, err := s.catalog.QuestionType(string(scaffold.Type)); err == nil {
		scaffold.Marks = info.DefaultMarks
	}
	// The scaffold inherits the section's prevailing topic.
	if len(section.Questions) > 0 {
		scaffold.Topic = section.Questions[len(section.Questions)-1].Topic
	}

	section.Questions = append(section.Questions, scaffold)
	section.Recompute()
	s.touch(draft)

	return &section.Questions[len(section.Questions)-1], nil
}

// DeleteQuestion removes a question from its section.
func (s *Service) DeleteQuestion(draft *session.Draft, sectionID, questionID string) error {
	draft.Lock()
	defer draft.Unlock()

	section := draft.Paper.Section(sectionID)
	if section == nil {
		return &domain.NotFoundError{Message: fmt.Sprintf("section %s not found", sectionID)}
	}

	for i := range section.Questions {
		if section.Questions[i].ID == questionID {
			section.Questions = append(section.Questions[:i], section.Questions[i+1:]...)
			section.Recompute()
			s.touch(draft)
			return nil
		}
	}
	return &domain.NotFoundError{Message: fmt.Sprintf("question %s not found", questionID)}
}

// UpdateQuestion patches individual question fields. A marks change
// recomputes the owning section's total synchronously.
func (s *Service) UpdateQuestion(draft *session.Draft, sectionID, questionID string, update *QuestionUpdate) error {
	if update.Marks != nil {
		if err := validateMarks(*update.Marks); err != nil {
			return &domain.ValidationError{Message: err.Error()}
		}
	}
	if update.Type != nil {
		if _, err := s.catalog.QuestionType(string(*update.Type)); err != nil {
			return &domain.ValidationError{Message: err.Error()}
		}
	}

	draft.Lock()
	defer draft.Unlock()

	section, question, err := findQuestion(draft.Paper, sectionID, questionID)
	if err != nil {
		return err
	}

	if update.Type != nil {
		question.Type = *update.Type
	}
	if update.Topic != nil {
		question.Topic = *update.Topic
	}
	if update.Prompt != nil {
		question.Prompt = *update.Prompt
	}
	if update.Answer != nil {
		question.Answer = *update.Answer
	}
	if update.Options != nil {
		question.Options = update.Options
	}
	if update.MatchPairs != nil {
		question.MatchPairs = update.MatchPairs
	}
	if update.Marks != nil {
		question.Marks = *update.Marks
		section.Recompute()
	}

	s.touch(draft)
	return nil
}

// UpdateSectionTitle renames a section.
func (s *Service) UpdateSectionTitle(draft *session.Draft, sectionID, title string) error {
	title = strings.TrimSpace(title)
	if title == "" || len(title) > config.MaxSectionTitleLength {
		return &domain.ValidationError{Message: "section title must be 1-120 characters"}
	}

	draft.Lock()
	defer draft.Unlock()

	section := draft.Paper.Section(sectionID)
	if section == nil {
		return &domain.NotFoundError{Message: fmt.Sprintf("section %s not found", sectionID)}
	}

	section.Title = title
	s.touch(draft)
	return nil
}

// DeleteSection removes an entire section with its questions. This is
// destructive and not reversible from within the editor; the caller is
// responsible for confirming it with the user.
func (s *Service) DeleteSection(draft *session.Draft, sectionID string) error {
	draft.Lock()
	defer draft.Unlock()

	sections := draft.Paper.Sections
	for i := range sections {
		if sections[i].ID == sectionID {
			s.logger.Info("section deleted",
				"paper_id", draft.Paper.ID,
				"section_id", sectionID,
				"questions", len(sections[i].Questions),
			)
			draft.Paper.Sections = append(sections[:i], sections[i+1:]...)
			s.touch(draft)
			return nil
		}
	}
	return &domain.NotFoundError{Message: fmt.Sprintf("section %s not found", sectionID)}
}

// AttachImage sets a question's image reference.
func (s *Service) AttachImage(draft *session.Draft, sectionID, questionID string, image models.ImageRef) error {
	if image.WidthPct <= 0 || image.WidthPct > 100 {
		image.WidthPct = config.DefaultImageWidthPct
	}

	draft.Lock()
	defer draft.Unlock()

	_, question, err := findQuestion(draft.Paper, sectionID, questionID)
	if err != nil {
		return err
	}

	question.Image = &image
	s.touch(draft)
	return nil
}

// DetachImage clears a question's image reference.
func (s *Service) DetachImage(draft *session.Draft, sectionID, questionID string) error {
	draft.Lock()
	defer draft.Unlock()

	_, question, err := findQuestion(draft.Paper, sectionID, questionID)
	if err != nil {
		return err
	}

	question.Image = nil
	s.touch(draft)
	return nil
}

// touch records one applied mutation. Callers hold the draft lock.
func (s *Service) touch(draft *session.Draft) {
	draft.Paper.EditCount++
	draft.Paper.UpdatedAt = time.Now()
}

func findQuestion(paper *models.Paper, sectionID, questionID string) (*models.Section, *models.Question, error) {
	section := paper.Section(sectionID)
	if section == nil {
		return nil, nil, &domain.NotFoundError{Message: fmt.Sprintf("section %s not found", sectionID)}
	}
	for i := range section.Questions {
		if section.Questions[i].ID == questionID {
			return section, &section.Questions[i], nil
		}
	}
	return nil, nil, &domain.NotFoundError{Message: fmt.Sprintf("question %s not found", questionID)}
}

func validateMetaUpdate(update *MetaUpdate) error {
	return validation.ValidateStruct(update,
		validation.Field(&update.Title,
			validation.Length(1, config.MaxPaperTitleLength),
		),
		validation.Field(&update.Instructions,
			validation.Length(0, config.MaxInstructionsLength),
		),
		validation.Field(&update.MaxMarks, validation.Min(0)),
	)
}

func validateMarks(marks float64) error {
	if marks <= 0 {
		return fmt.Errorf("marks must be greater than zero")
	}
	steps := marks / config.MarksStep
	if math.Abs(steps-math.Round(steps)) > 1e-9 {
		return fmt.Errorf("marks must be a multiple of %v", config.MarksStep)
	}
	return nil
}
