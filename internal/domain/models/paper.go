package models

import (
	"math"
	"time"
)

// QuestionType is the closed set of supported question kinds.
type QuestionType string

const (
	QuestionShortAnswer     QuestionType = "short_answer"
	QuestionLongAnswer      QuestionType = "long_answer"
	QuestionMCQ             QuestionType = "mcq"
	QuestionFillBlank       QuestionType = "fill_blank"
	QuestionTrueFalse       QuestionType = "true_false"
	QuestionMatch           QuestionType = "match"
	QuestionAssertionReason QuestionType = "assertion_reason"
)

// Visibility is the resolved visibility state of a paper. The two flag
// columns stay independent in storage; the state is derived at query time
// by whichever collaborator is filtering.
type Visibility string

const (
	VisibilityActive           Visibility = "active"
	VisibilityHiddenFromOwner  Visibility = "hidden_from_owner"
	VisibilityHiddenFromReview Visibility = "hidden_from_reviewer"
)

// Audience selects which visibility flag a soft-hide targets.
type Audience string

const (
	AudienceOwner    Audience = "owner"
	AudienceReviewer Audience = "reviewer"
)

// MatchPair is one left/right pair of a match-the-following question.
type MatchPair struct {
	Left  string `json:"left"`
	Right string `json:"right"`
}

// ImageRef points at a displayable image (data URI or URL) with its
// rendered width as a percentage of the page width.
type ImageRef struct {
	Source   string `json:"source"`
	WidthPct int    `json:"width_pct"`
}

// Question is a single exam question inside a section.
type Question struct {
	ID         string       `json:"id"`
	Type       QuestionType `json:"type"`
	Topic      string       `json:"topic"`
	Prompt     string       `json:"prompt"`
	Marks      float64      `json:"marks"` // positive, 0.5 granularity
	Answer     string       `json:"answer,omitempty"`
	Options    []string     `json:"options,omitempty"`
	MatchPairs []MatchPair  `json:"match_pairs,omitempty"`
	Image      *ImageRef    `json:"image,omitempty"`
	RegenCount int          `json:"regen_count"`
}

// Section is a titled, ordered group of questions. TotalMarks is derived
// and must be recomputed synchronously after any structural change; it is
// never left stale across a mutation.
type Section struct {
	ID         string     `json:"id"`
	Title      string     `json:"title"`
	Questions  []Question `json:"questions"`
	TotalMarks float64    `json:"total_marks"`
}

// Recompute refreshes the derived mark total from the question list.
func (s *Section) Recompute() {
	var sum float64
	for i := range s.Questions {
		sum += s.Questions[i].Marks
	}
	s.TotalMarks = Round2(sum)
}

// PaperMeta is the editable metadata block of a paper.
type PaperMeta struct {
	Title        string `json:"title"`
	Class        string `json:"class"`
	Subject      string `json:"subject"`
	Session      string `json:"session"`
	Duration     string `json:"duration"`
	MaxMarks     int    `json:"max_marks"`
	Instructions string `json:"instructions"`
	Locale       string `json:"locale"`
}

// Paper is the top-level generated artifact: an ordered sequence of
// sections plus metadata, counters and visibility flags. A paper is never
// hard-deleted by its owner, only hidden; a reviewer may purge it.
type Paper struct {
	ID                string    `json:"id"`
	OwnerID           string    `json:"owner_id"`
	Meta              PaperMeta `json:"meta"`
	Sections          []Section `json:"sections"`
	VisibleToOwner    bool      `json:"visible_to_owner"`
	VisibleToReviewer bool      `json:"visible_to_reviewer"`
	EditCount         int       `json:"edit_count"`
	Downloads         int       `json:"downloads"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// TotalMarks is always read as a live aggregate over the sections; it is
// never stored independently of them.
func (p *Paper) TotalMarks() float64 {
	var sum float64
	for i := range p.Sections {
		sum += p.Sections[i].TotalMarks
	}
	return Round2(sum)
}

// VisibilityState resolves the flag pair into a single state for the
// given audience-neutral view.
func (p *Paper) VisibilityState() Visibility {
	switch {
	case !p.VisibleToOwner:
		return VisibilityHiddenFromOwner
	case !p.VisibleToReviewer:
		return VisibilityHiddenFromReview
	default:
		return VisibilityActive
	}
}

// Section returns the section with the given id, or nil.
func (p *Paper) Section(id string) *Section {
	for i := range p.Sections {
		if p.Sections[i].ID == id {
			return &p.Sections[i]
		}
	}
	return nil
}

// Round2 rounds marks totals to two decimal places. Marks are entered at
// 0.5 granularity but float addition still needs normalizing.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
