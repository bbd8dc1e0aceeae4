package config

const (
	// MaxPaperTitleLength is the maximum length for paper titles.
	// Limited to 255 to fit in PostgreSQL VARCHAR(255).
	MaxPaperTitleLength = 255

	// MaxSectionTitleLength is the maximum length for section titles.
	MaxSectionTitleLength = 120

	// MaxTopicLength is the maximum length of a blueprint topic.
	MaxTopicLength = 200

	// MaxInstructionsLength bounds the free-text instruction block.
	MaxInstructionsLength = 4000

	// MaxBlueprintItems bounds one assembly batch. Each item is one
	// sequential collaborator call, so this also caps batch latency.
	MaxBlueprintItems = 12

	// MaxQuestionsPerItem bounds the per-item question count.
	MaxQuestionsPerItem = 30

	// MarksStep is the granularity of per-question marks.
	MarksStep = 0.5

	// DefaultImageWidthPct is the rendered width of an attached image
	// when the caller does not specify one.
	DefaultImageWidthPct = 60
)
