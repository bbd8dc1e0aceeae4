// Package session holds the in-memory drafts of active editing sessions.
// A draft is owned by exactly one session; persistence happens on first
// explicit save or first export, whichever comes first.
package session

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"papergen/internal/domain"
	"papergen/internal/domain/models"
	"papergen/internal/service/blueprint"
)

// Draft is one paper being edited, together with its transient blueprint.
// The mutex serializes the cooperative single-actor operations that the
// handlers dispatch onto it.
type Draft struct {
	mu        sync.Mutex
	Paper     *models.Paper
	Blueprint *blueprint.Builder
	Persisted bool
}

// Lock takes the draft for one atomic operation.
func (d *Draft) Lock() { d.mu.Lock() }

// Unlock releases the draft.
func (d *Draft) Unlock() { d.mu.Unlock() }

// Registry maps draft ids to live drafts. The map lock only guards
// membership; each draft carries its own lock.
type Registry struct {
	mu     sync.RWMutex
	drafts map[string]*Draft
}

// NewRegistry creates an empty draft registry.
func NewRegistry() *Registry {
	return &Registry{
		drafts: make(map[string]*Draft),
	}
}

// Create opens a new draft with the given owner and metadata. The paper
// id is assigned now and kept through persistence.
func (r *Registry) Create(ownerID string, meta models.PaperMeta) *Draft {
	if meta.Locale == "" {
		meta.Locale = "en"
	}

	now := time.Now()
	draft := &Draft{
		Paper: &models.Paper{
			ID:                uuid.NewString(),
			OwnerID:           ownerID,
			Meta:              meta,
			Sections:          []models.Section{},
			VisibleToOwner:    true,
			VisibleToReviewer: true,
			CreatedAt:         now,
			UpdatedAt:         now,
		},
		Blueprint: blueprint.NewBuilder(),
	}

	r.mu.Lock()
	r.drafts[draft.Paper.ID] = draft
	r.mu.Unlock()

	return draft
}

// Adopt registers a persisted paper for further editing.
func (r *Registry) Adopt(paper *models.Paper) *Draft {
	draft := &Draft{
		Paper:     paper,
		Blueprint: blueprint.NewBuilder(),
		Persisted: true,
	}

	r.mu.Lock()
	r.drafts[paper.ID] = draft
	r.mu.Unlock()

	return draft
}

// Get returns the draft with the given id.
func (r *Registry) Get(id string) (*Draft, error) {
	r.mu.RLock()
	draft, ok := r.drafts[id]
	r.mu.RUnlock()

	if !ok {
		return nil, &domain.NotFoundError{Message: fmt.Sprintf("draft %s not found", id)}
	}
	return draft, nil
}

// GetOwned returns the draft only if it belongs to ownerID.
func (r *Registry) GetOwned(id, ownerID string) (*Draft, error) {
	draft, err := r.Get(id)
	if err != nil {
		return nil, err
	}
	if draft.Paper.OwnerID != ownerID {
		return nil, &domain.ForbiddenError{Message: "draft belongs to another account"}
	}
	return draft, nil
}

// Close discards a draft from the registry. Unsaved changes are lost.
func (r *Registry) Close(id string) {
	r.mu.Lock()
	delete(r.drafts, id)
	r.mu.Unlock()
}
