package transcribe

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"gavel/internal/chunkplan"
	"gavel/internal/logging"
	"gavel/internal/media/audioseg"
	"gavel/internal/transcript"
)

// ChunkResult is the outcome of processing one planned window. A failed
// chunk carries its reason in Err and contributes nothing to the merge; the
// job itself keeps going.
type ChunkResult struct {
	Index    int
	Segments []transcript.Segment
	Text     string
	Err      error
}

// ChunkWorker materializes one window from the source audio and transcribes
// it, shifting all timestamps to absolute media time.
type ChunkWorker struct {
	extractor  *audioseg.Extractor
	capability Transcriber
	logger     *slog.Logger
}

// NewChunkWorker wires an extractor and a capability into a chunk worker.
func NewChunkWorker(extractor *audioseg.Extractor, capability Transcriber, logger *slog.Logger) *ChunkWorker {
	return &ChunkWorker{
		extractor:  extractor,
		capability: capability,
		logger:     logging.NewComponentLogger(logger, "chunk-worker"),
	}
}

// Process cuts the window out of source, transcribes it, and shifts segment
// and word timestamps by the window start. Extraction and transcription
// failures are contained in the result.
func (w *ChunkWorker) Process(ctx context.Context, source string, window chunkplan.Window, workDir string) ChunkResult {
	result := ChunkResult{Index: window.Index}

	chunkPath := filepath.Join(workDir, fmt.Sprintf("chunk_%d%s", window.Index, w.extractor.Strategy().Extension()))
	if err := w.extractor.ExtractWindow(ctx, source, window.Start, window.Duration(), chunkPath); err != nil {
		w.logger.Warn("chunk extraction failed, dropping chunk",
			logging.Int("chunk", window.Index),
			logging.Float64("start", window.Start),
			logging.Error(err),
		)
		result.Err = fmt.Errorf("extract chunk %d: %w", window.Index, err)
		return result
	}
	defer os.Remove(chunkPath)

	transcribed, err := w.capability.Transcribe(ctx, chunkPath, workDir)
	if err != nil {
		w.logger.Warn("chunk transcription failed, dropping chunk",
			logging.Int("chunk", window.Index),
			logging.Float64("start", window.Start),
			logging.Error(err),
		)
		result.Err = fmt.Errorf("transcribe chunk %d: %w", window.Index, err)
		return result
	}

	result.Segments = ShiftSegments(transcribed.Segments, window.Start)
	result.Text = transcribed.Text
	return result
}

// ShiftSegments adds offsetSeconds to every segment and word timestamp.
// The capability returns timestamps local to the chunk; after shifting they
// are absolute positions in the full recording.
func ShiftSegments(segments []transcript.Segment, offsetSeconds float64) []transcript.Segment {
	if offsetSeconds == 0 || len(segments) == 0 {
		return segments
	}
	shifted := make([]transcript.Segment, len(segments))
	for i, seg := range segments {
		seg.Start += offsetSeconds
		seg.End += offsetSeconds
		words := make([]transcript.Word, len(seg.Words))
		for j, word := range seg.Words {
			word.Start += offsetSeconds
			word.End += offsetSeconds
			words[j] = word
		}
		seg.Words = words
		shifted[i] = seg
	}
	return shifted
}
