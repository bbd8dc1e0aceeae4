package export

import (
	"strings"

	"papergen/internal/domain/models"
)

// Kind selects which of the two read-only projections to produce.
type Kind string

const (
	KindPaper     Kind = "paper"
	KindAnswerKey Kind = "answer_key"
)

// MathDelimiter is the reserved marker character enclosing inline math
// segments. Everything outside a delimiter pair renders literally.
const MathDelimiter = '$'

// Segment is one run of projected text, either literal or math markup.
type Segment struct {
	Text string `json:"text"`
	Math bool   `json:"math,omitempty"`
}

// ProjectedQuestion is one question of a projection. Number is the
// running counter restarting at 1 per document, continuous across
// sections.
type ProjectedQuestion struct {
	Number     int                `json:"number"`
	Segments   []Segment          `json:"segments"`
	Marks      float64            `json:"marks"`
	Options    []string           `json:"options,omitempty"`
	MatchPairs []models.MatchPair `json:"match_pairs,omitempty"`
	Image      *models.ImageRef   `json:"image,omitempty"`
}

// ProjectedSection is one section of a projection.
type ProjectedSection struct {
	Title      string              `json:"title"`
	TotalMarks float64             `json:"total_marks"`
	Questions  []ProjectedQuestion `json:"questions"`
}

// Projection is a read-only rendering of a paper: the full question
// paper or its answer key. Both are built from the same section data,
// never from a copy.
type Projection struct {
	Kind       Kind               `json:"kind"`
	Title      string             `json:"title"`
	Class      string             `json:"class"`
	Subject    string             `json:"subject"`
	Session    string             `json:"session,omitempty"`
	Duration   string             `json:"duration,omitempty"`
	MaxMarks   int                `json:"max_marks,omitempty"`
	Notes      string             `json:"notes,omitempty"`
	TotalMarks float64            `json:"total_marks"`
	Sections   []ProjectedSection `json:"sections"`
}

// Build renders the requested projection of the paper.
func Build(paper *models.Paper, kind Kind) *Projection {
	proj := &Projection{
		Kind:       kind,
		Title:      paper.Meta.Title,
		Class:      paper.Meta.Class,
		Subject:    paper.Meta.Subject,
		Session:    paper.Meta.Session,
		Duration:   paper.Meta.Duration,
		MaxMarks:   paper.Meta.MaxMarks,
		Notes:      paper.Meta.Instructions,
		TotalMarks: paper.TotalMarks(),
		Sections:   make([]ProjectedSection, 0, len(paper.Sections)),
	}
	if kind == KindAnswerKey {
		proj.Notes = "" // instructions belong to the question paper only
	}

	number := 0
	for i := range paper.Sections {
		section := &paper.Sections[i]
		out := ProjectedSection{
			Title:      section.Title,
			TotalMarks: section.TotalMarks,
			Questions:  make([]ProjectedQuestion, 0, len(section.Questions)),
		}

		for j := range section.Questions {
			q := &section.Questions[j]
			number++

			pq := ProjectedQuestion{
				Number: number,
				Marks:  q.Marks,
			}
			switch kind {
			case KindAnswerKey:
				pq.Segments = SplitMarkup(q.Answer)
			default:
				pq.Segments = SplitMarkup(q.Prompt)
				pq.Options = q.Options
				pq.MatchPairs = q.MatchPairs
				pq.Image = q.Image
			}
			out.Questions = append(out.Questions, pq)
		}
		proj.Sections = append(proj.Sections, out)
	}

	return proj
}

// SplitMarkup splits text into literal and math segments. A math segment
// is enclosed by a single pair of the reserved delimiter; an unmatched
// delimiter renders literally.
func SplitMarkup(text string) []Segment {
	var segments []Segment
	for len(text) > 0 {
		open := strings.IndexByte(text, MathDelimiter)
		if open < 0 {
			segments = append(segments, Segment{Text: text})
			break
		}
		end := strings.IndexByte(text[open+1:], MathDelimiter)
		if end < 0 {
			// No closing marker: the rest is literal.
			segments = append(segments, Segment{Text: text})
			break
		}

		if open > 0 {
			segments = append(segments, Segment{Text: text[:open]})
		}
		segments = append(segments, Segment{Text: text[open+1 : open+1+end], Math: true})
		text = text[open+end+2:]
	}
	return segments
}
