package catalog

// QuestionTypeInfo describes one entry of the question-type catalog.
type QuestionTypeInfo struct {
	// Tag identifier (set during YAML unmarshaling)
	Tag string `yaml:"-" json:"tag"`

	DisplayName string `yaml:"display_name" json:"display_name"`
	Description string `yaml:"description" json:"description"`

	// Structural capabilities of the type
	HasOptions    bool `yaml:"has_options" json:"has_options"`
	HasMatchPairs bool `yaml:"has_match_pairs" json:"has_match_pairs"`

	// DefaultMarks seeds the marks field of a manually added scaffold.
	DefaultMarks float64 `yaml:"default_marks" json:"default_marks"`
}

// Subject is one subject offered for a class.
type Subject struct {
	Name   string   `yaml:"name" json:"name"`
	Topics []string `yaml:"topics" json:"topics"`
}

// ClassEntry is one class of the curriculum catalog.
type ClassEntry struct {
	Class    string    `yaml:"class" json:"class"`
	Subjects []Subject `yaml:"subjects" json:"subjects"`
}

// LabelTable is the ordered section-label table for one locale, plus the
// title prefix put in front of each label.
type LabelTable struct {
	Prefix string   `yaml:"prefix" json:"prefix"`
	Labels []string `yaml:"labels" json:"labels"`
}

// questionTypeFile mirrors the YAML layout of config/questions.yaml.
type questionTypeFile struct {
	Types map[string]QuestionTypeInfo `yaml:"types"`
	Order []string                    `yaml:"order"`
}

// curriculumFile mirrors config/curriculum.yaml.
type curriculumFile struct {
	Classes []ClassEntry `yaml:"classes"`
}

// labelFile mirrors config/labels.yaml.
type labelFile struct {
	Locales map[string]LabelTable `yaml:"locales"`
}
