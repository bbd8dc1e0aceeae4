package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"papergen/internal/domain"
)

func TestHandleError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"typed not found", &domain.NotFoundError{Message: "gone"}, http.StatusNotFound},
		{"typed quota", &domain.QuotaError{Message: "spent"}, http.StatusPaymentRequired},
		{"wrapped sentinel", fmt.Errorf("paper x: %w", domain.ErrNotFound), http.StatusNotFound},
		{"wrapped quota sentinel", fmt.Errorf("deduct: %w", domain.ErrQuota), http.StatusPaymentRequired},
		{"unknown", fmt.Errorf("disk on fire"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			handleError(rec, tt.err)
			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
		})
	}
}

func TestHandleErrorConflictExtras(t *testing.T) {
	rec := httptest.NewRecorder()
	handleError(rec, &domain.ConflictError{
		Message:      "approval request already decided",
		ResourceType: "approval",
		ResourceID:   "apr-1",
	})

	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", rec.Code)
	}

	var problem map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &problem); err != nil {
		t.Fatalf("decode problem: %v", err)
	}
	if problem["resource_type"] != "approval" || problem["resource_id"] != "apr-1" {
		t.Errorf("extras missing from problem body: %v", problem)
	}
}
