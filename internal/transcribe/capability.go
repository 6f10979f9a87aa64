package transcribe

import (
	"context"
	"sync"

	"gavel/internal/transcript"
)

// Result is one capability invocation's output. Timestamps are local to the
// transcribed file, starting near zero.
type Result struct {
	Segments []transcript.Segment
	Text     string
}

// Transcriber is the external speech-to-text capability. workDir is a
// scratch directory the implementation may write output files into.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath, workDir string) (Result, error)
	// Model identifies the loaded model for health reporting and the
	// transcript record.
	Model() string
}

// Serialize wraps a capability that is not safely reentrant so only one
// transcription runs at a time, regardless of how many chunk workers are
// active.
func Serialize(inner Transcriber) Transcriber {
	return &serialized{inner: inner}
}

type serialized struct {
	mu    sync.Mutex
	inner Transcriber
}

func (s *serialized) Transcribe(ctx context.Context, audioPath, workDir string) (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inner.Transcribe(ctx, audioPath, workDir)
}

func (s *serialized) Model() string {
	return s.inner.Model()
}
