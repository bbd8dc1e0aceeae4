package assembly

import (
	"fmt"

	"papergen/internal/catalog"
)

// Sequence yields section titles in order. A sequence is selected once
// per paper locale before assembly starts.
type Sequence interface {
	// Title returns the section title for the i-th blueprint item
	// (0-indexed).
	Title(i int) string
}

// tableSequence draws labels from a finite locale table and falls back
// to the Latin letter sequence once the table is exhausted.
type tableSequence struct {
	prefix string
	labels []string
}

func (s *tableSequence) Title(i int) string {
	if i < len(s.labels) {
		return fmt.Sprintf("%s %s", s.prefix, s.labels[i])
	}
	return fmt.Sprintf("%s %s", s.prefix, latinLabel(i-len(s.labels)))
}

// latinSequence is the fallback for locales with no table.
type latinSequence struct{}

func (latinSequence) Title(i int) string {
	return fmt.Sprintf("Section %s", latinLabel(i))
}

// latinLabel converts an index to A, B, ..., Z, AA, AB, ...
func latinLabel(i int) string {
	label := ""
	for i >= 0 {
		label = string(rune('A'+i%26)) + label
		i = i/26 - 1
	}
	return label
}

// SequenceFor selects the label sequence for a locale from the catalog.
func SequenceFor(reg *catalog.Registry, locale string) Sequence {
	if table, ok := reg.LabelTable(locale); ok && len(table.Labels) > 0 {
		return &tableSequence{prefix: table.Prefix, labels: table.Labels}
	}
	return latinSequence{}
}
