package jobs

import (
	"errors"
	"fmt"
	"time"

	"gavel/internal/hearing"
	"gavel/internal/transcript"
)

// Status represents the lifecycle of a transcription job.
type Status string

const (
	StatusQueued     Status = "queued"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// statusRank orders the lifecycle; transitions never move backwards and
// terminal statuses never change.
var statusRank = map[Status]int{
	StatusQueued:     0,
	StatusProcessing: 1,
	StatusCompleted:  2,
	StatusFailed:     2,
}

// IsValid reports whether s is a known status.
func (s Status) IsValid() bool {
	_, ok := statusRank[s]
	return ok
}

// IsTerminal reports whether s is a final status.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// ErrNotFound reports that no job exists with the requested id.
var ErrNotFound = errors.New("job not found")

// Result is the payload attached to a completed job.
type Result struct {
	Metadata   hearing.Metadata  `json:"metadata"`
	Transcript transcript.Record `json:"transcript"`
	FolderPath string            `json:"folder_path"`
	Cached     bool              `json:"cached"`
}

// Job is a single transcription request tracked from submission to a
// terminal status.
type Job struct {
	ID        string    `json:"job_id"`
	Status    Status    `json:"status"`
	Progress  string    `json:"progress,omitempty"`
	Warnings  []string  `json:"warnings,omitempty"`
	Error     string    `json:"error,omitempty"`
	Result    *Result   `json:"result,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Clone returns a deep copy so callers cannot mutate stored state.
func (j *Job) Clone() *Job {
	if j == nil {
		return nil
	}
	out := *j
	if j.Warnings != nil {
		out.Warnings = append([]string(nil), j.Warnings...)
	}
	if j.Result != nil {
		result := *j.Result
		out.Result = &result
	}
	return &out
}

func validateTransition(from, to Status) error {
	if !to.IsValid() {
		return fmt.Errorf("unknown status %q", to)
	}
	if from.IsTerminal() {
		return fmt.Errorf("job is already %s", from)
	}
	if statusRank[to] < statusRank[from] {
		return fmt.Errorf("cannot move job from %s back to %s", from, to)
	}
	return nil
}
