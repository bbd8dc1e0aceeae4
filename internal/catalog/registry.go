package catalog

import (
	"embed"
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed config/*.yaml
var configFiles embed.FS

// Registry holds the embedded configuration catalogs: question types,
// curriculum, and locale label tables. Loaded once at startup; reads are
// lock-protected for the rare hot-reload path.
type Registry struct {
	types      map[string]QuestionTypeInfo
	typeOrder  []string
	curriculum []ClassEntry
	labels     map[string]LabelTable
	mu         sync.RWMutex
}

// NewRegistry creates a registry and loads the embedded YAML files.
func NewRegistry() (*Registry, error) {
	r := &Registry{
		types:  make(map[string]QuestionTypeInfo),
		labels: make(map[string]LabelTable),
	}

	if err := r.loadQuestionTypes(); err != nil {
		return nil, fmt.Errorf("failed to load question-type catalog: %w", err)
	}
	if err := r.loadCurriculum(); err != nil {
		return nil, fmt.Errorf("failed to load curriculum catalog: %w", err)
	}
	if err := r.loadLabels(); err != nil {
		return nil, fmt.Errorf("failed to load label tables: %w", err)
	}

	return r, nil
}

func (r *Registry) loadQuestionTypes() error {
	data, err := configFiles.ReadFile("config/questions.yaml")
	if err != nil {
		return fmt.Errorf("failed to read config/questions.yaml: %w", err)
	}

	var file questionTypeFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("failed to unmarshal config/questions.yaml: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for tag, info := range file.Types {
		info.Tag = tag
		r.types[tag] = info
	}
	r.typeOrder = file.Order
	return nil
}

func (r *Registry) loadCurriculum() error {
	data, err := configFiles.ReadFile("config/curriculum.yaml")
	if err != nil {
		return fmt.Errorf("failed to read config/curriculum.yaml: %w", err)
	}

	var file curriculumFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("failed to unmarshal config/curriculum.yaml: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.curriculum = file.Classes
	return nil
}

func (r *Registry) loadLabels() error {
	data, err := configFiles.ReadFile("config/labels.yaml")
	if err != nil {
		return fmt.Errorf("failed to read config/labels.yaml: %w", err)
	}

	var file labelFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("failed to unmarshal config/labels.yaml: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.labels = file.Locales
	return nil
}

// QuestionType returns the catalog entry for a type tag.
func (r *Registry) QuestionType(tag string) (*QuestionTypeInfo, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	info, ok := r.types[tag]
	if !ok {
		return nil, fmt.Errorf("unknown question type: %s", tag)
	}
	return &info, nil
}

// ListQuestionTypes returns all entries in catalog order.
func (r *Registry) ListQuestionTypes() []QuestionTypeInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]QuestionTypeInfo, 0, len(r.typeOrder))
	for _, tag := range r.typeOrder {
		if info, ok := r.types[tag]; ok {
			out = append(out, info)
		}
	}
	return out
}

// Curriculum returns the class/subject/topic catalog.
func (r *Registry) Curriculum() []ClassEntry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.curriculum
}

// LabelTable returns the section-label table for a locale.
// The second return is false if the locale has no table.
func (r *Registry) LabelTable(locale string) (LabelTable, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	table, ok := r.labels[locale]
	return table, ok
}
