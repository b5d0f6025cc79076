// Package llmjson parses JSON out of chat-completion replies, which arrive
// either bare or wrapped in a markdown code fence.
package llmjson

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Unmarshal strips an optional surrounding code fence from raw and decodes the
// remainder into v. A reply that is neither valid JSON nor a fenced JSON block
// yields an error; callers decide whether that degrades to an empty stage
// result or propagates.
func Unmarshal(raw string, v any) error {
	s := StripFence(raw)
	if s == "" {
		return fmt.Errorf("llmjson: empty reply")
	}
	if err := json.Unmarshal([]byte(s), v); err != nil {
		return fmt.Errorf("llmjson: %w", err)
	}
	return nil
}

// StripFence removes a leading "```" or "```json" line and the matching
// trailing fence, returning the trimmed inner text. Input without a fence is
// returned trimmed as-is.
func StripFence(raw string) string {
	s := strings.TrimSpace(raw)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	// drop the opening fence line, including any language tag
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	} else {
		return strings.TrimSpace(strings.TrimPrefix(s, "```"))
	}
	if i := strings.LastIndex(s, "```"); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}
