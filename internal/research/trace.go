package research

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// TraceEntry is one immutable record of pipeline progress.
type TraceEntry struct {
	Stage   string    `json:"stage"`
	Message string    `json:"message"`
	At      time.Time `json:"at"`
}

// Trace accumulates per-run telemetry. One is created per pipeline run,
// threaded through every stage call, and returned alongside the result; no
// stage writes to shared process state.
type Trace struct {
	RunID   string       `json:"run_id"`
	Entries []TraceEntry `json:"entries"`
}

func NewTrace() *Trace {
	return &Trace{RunID: uuid.NewString()}
}

// Add appends a formatted entry for a stage.
func (t *Trace) Add(stage, format string, args ...any) {
	if t == nil {
		return
	}
	t.Entries = append(t.Entries, TraceEntry{
		Stage:   stage,
		Message: fmt.Sprintf(format, args...),
		At:      time.Now().UTC(),
	})
}
