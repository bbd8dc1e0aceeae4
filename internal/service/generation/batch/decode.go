package batch

import (
	"encoding/json"
	"fmt"
	"strings"

	"papergen/internal/domain"
	"papergen/internal/domain/services"
)

// StripWrapping removes incidental formatting markers the collaborator
// may wrap its payload in (markdown code fences, with or without a
// language tag) and surrounding whitespace.
func StripWrapping(raw string) string {
	s := strings.TrimSpace(raw)
	if !strings.HasPrefix(s, "```") {
		return s
	}

	s = strings.TrimPrefix(s, "```")
	// Drop the language tag on the opening fence, if any.
	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		first := strings.TrimSpace(s[:idx])
		if first == "" || !strings.ContainsAny(first, " \t{[") {
			s = s[idx+1:]
		}
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// Decode decodes a collaborator payload into question records and
// checks it against the requested count. Every failure mode is a
// generation error: the caller rolls back the enclosing scope.
func Decode(raw string, want int) ([]services.GeneratedQuestion, error) {
	payload := StripWrapping(raw)
	if payload == "" {
		return nil, &domain.GenerationError{Message: "collaborator returned empty payload"}
	}

	var records []services.GeneratedQuestion
	if err := json.Unmarshal([]byte(payload), &records); err != nil {
		return nil, &domain.GenerationError{Message: fmt.Sprintf("failed to decode payload: %v", err)}
	}

	if len(records) < want {
		return nil, &domain.GenerationError{
			Message: fmt.Sprintf("collaborator returned %d records, want %d", len(records), want),
		}
	}
	records = records[:want]

	for i := range records {
		if strings.TrimSpace(records[i].Prompt) == "" {
			return nil, &domain.GenerationError{Message: fmt.Sprintf("record %d has no prompt text", i)}
		}
	}

	return records, nil
}
