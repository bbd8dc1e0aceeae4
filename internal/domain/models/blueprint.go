package models

// BlueprintItem describes one batch of questions to generate: how many,
// of what type, on which topic, at how many marks each. Items are
// transient - they exist only while a draft is being assembled and are
// never persisted as part of the paper.
type BlueprintItem struct {
	ID    string       `json:"id"`
	Topic string       `json:"topic"`
	Type  QuestionType `json:"type"`
	Count int          `json:"count"` // >= 1
	Marks float64      `json:"marks"` // > 0, per question
}

// StyleContext is optional guidance passed to the generation collaborator
// to steer output style and scope: free text plus up to two binary
// reference attachments (sample papers, syllabus scans).
type StyleContext struct {
	Text        string   `json:"text,omitempty"`
	Attachments [][]byte `json:"attachments,omitempty"` // max 2
}

// MaxStyleAttachments bounds the reference attachments on a style context.
const MaxStyleAttachments = 2
