// Package batch renders requests into collaborator prompts and decodes
// the JSON payloads coming back. It sits below the provider packages so
// every provider shares one wire contract.
package batch

import (
	"fmt"
	"strings"

	"papergen/internal/domain/services"
)

// systemPrompt fixes the collaborator's output contract: a bare JSON
// array of question records.
const systemPrompt = `You are an exam question writer for school teachers.
Respond with a JSON array only. Each element must have "prompt" and
"answer" string fields. Multiple-choice, true/false and assertion-reason
questions also need an "options" array of strings with the correct option
reflected in "answer". Match-the-following questions need a "match_pairs"
array of {"left","right"} objects. Keep mathematics inline between single
$ markers. Do not add commentary outside the JSON array.`

// SystemPrompt returns the fixed system prompt for batch generation.
func SystemPrompt() string {
	return systemPrompt
}

// BuildPrompt renders a batch request into the user message for the
// collaborator.
func BuildPrompt(req *services.BatchRequest) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Write %d %s question(s) for class %s %s on the topic %q.\n",
		req.Count, req.Type, req.Class, req.Subject, req.Topic)
	fmt.Fprintf(&b, "Each question carries %v marks; match the depth of the answer to the marks.\n", req.Marks)

	if req.Style != nil && strings.TrimSpace(req.Style.Text) != "" {
		fmt.Fprintf(&b, "Follow this style guidance:\n%s\n", req.Style.Text)
	}

	return b.String()
}
