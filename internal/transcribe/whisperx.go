package transcribe

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"gavel/internal/transcript"
)

// WhisperXConfig captures runtime settings for WhisperX invocations.
type WhisperXConfig struct {
	// Model is the WhisperX model to use (e.g., "large-v3").
	Model string
	// CUDAEnabled enables GPU acceleration.
	CUDAEnabled bool
	// Language is the ISO 639-1 transcription language.
	Language string
}

// WhisperX configuration constants.
const (
	DefaultModel   = "large-v3"
	CUDAIndexURL   = "https://download.pytorch.org/whl/cu128"
	PypiIndexURL   = "https://pypi.org/simple"
	BatchSize      = "16"
	OutputFormat   = "json"
	CPUDevice      = "cpu"
	CUDADevice     = "cuda"
	CPUComputeType = "int8"
	CUDAComputType = "float16"
)

// UVXCommand launches WhisperX through uv's tool runner.
const UVXCommand = "uvx"

// WhisperX runs transcription and alignment through the whisperx CLI.
type WhisperX struct {
	cfg    WhisperXConfig
	runner func(ctx context.Context, name string, args ...string) error
}

// NewWhisperX creates a WhisperX capability with the given configuration.
func NewWhisperX(cfg WhisperXConfig) *WhisperX {
	return &WhisperX{cfg: cfg}
}

// WithCommandRunner sets a custom command runner (for testing).
func (s *WhisperX) WithCommandRunner(runner func(ctx context.Context, name string, args ...string) error) {
	s.runner = runner
}

// Model returns the configured model name.
func (s *WhisperX) Model() string {
	if s.cfg.Model != "" {
		return s.cfg.Model
	}
	return DefaultModel
}

// Transcribe runs WhisperX on one audio file. The aligned JSON output is
// written into workDir and loaded back as segments.
func (s *WhisperX) Transcribe(ctx context.Context, audioPath, workDir string) (Result, error) {
	var result Result

	if audioPath == "" {
		return result, fmt.Errorf("transcribe: audio path required")
	}
	if workDir == "" {
		workDir = filepath.Dir(audioPath)
	}
	if err := os.MkdirAll(workDir, 0o755); err != nil {
		return result, fmt.Errorf("transcribe: ensure work dir: %w", err)
	}

	if err := s.run(ctx, UVXCommand, s.buildArgs(audioPath, workDir)...); err != nil {
		return result, fmt.Errorf("whisperx: %w", err)
	}

	baseName := strings.TrimSuffix(filepath.Base(audioPath), filepath.Ext(audioPath))
	jsonPath := filepath.Join(workDir, baseName+".json")

	segments, err := LoadSegments(jsonPath)
	if err != nil {
		return result, fmt.Errorf("whisperx output: %w", err)
	}

	result.Segments = segments
	texts := make([]string, 0, len(segments))
	for _, seg := range segments {
		texts = append(texts, seg.Text)
	}
	result.Text = transcript.JoinText(texts)
	return result, nil
}

func (s *WhisperX) run(ctx context.Context, name string, args ...string) error {
	if s.runner != nil {
		return s.runner(ctx, name, args...)
	}
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%s: %w: %s", name, err, strings.TrimSpace(string(output)))
	}
	return nil
}

// buildArgs constructs the uvx command arguments for WhisperX.
func (s *WhisperX) buildArgs(audioPath, outputDir string) []string {
	args := make([]string, 0, 24)

	if s.cfg.CUDAEnabled {
		args = append(args,
			"--index-url", CUDAIndexURL,
			"--extra-index-url", PypiIndexURL,
		)
	} else {
		args = append(args, "--index-url", PypiIndexURL)
	}

	args = append(args,
		"whisperx",
		audioPath,
		"--model", s.Model(),
		"--batch_size", BatchSize,
		"--output_dir", outputDir,
		"--output_format", OutputFormat,
	)

	if lang := strings.TrimSpace(s.cfg.Language); lang != "" {
		args = append(args, "--language", lang)
	}

	if s.cfg.CUDAEnabled {
		args = append(args, "--device", CUDADevice, "--compute_type", CUDAComputType)
	} else {
		args = append(args, "--device", CPUDevice, "--compute_type", CPUComputeType)
	}

	return args
}

// whisperXWord mirrors one word entry in WhisperX JSON output.
type whisperXWord struct {
	Word  string  `json:"word"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Score float64 `json:"score"`
}

// whisperXSegment mirrors one segment entry in WhisperX JSON output.
type whisperXSegment struct {
	Text  string         `json:"text"`
	Start float64        `json:"start"`
	End   float64        `json:"end"`
	Words []whisperXWord `json:"words"`
}

type whisperXPayload struct {
	Segments []whisperXSegment `json:"segments"`
}

// LoadSegments loads segments from a WhisperX JSON file. Segment ids are
// assigned locally 0..n-1; the merge step renumbers them globally.
func LoadSegments(jsonPath string) ([]transcript.Segment, error) {
	data, err := os.ReadFile(jsonPath)
	if err != nil {
		return nil, err
	}
	var payload whisperXPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("parse whisperx json: %w", err)
	}

	segments := make([]transcript.Segment, 0, len(payload.Segments))
	for i, seg := range payload.Segments {
		words := make([]transcript.Word, 0, len(seg.Words))
		for _, word := range seg.Words {
			words = append(words, transcript.Word{
				Word:       word.Word,
				Start:      word.Start,
				End:        word.End,
				Confidence: word.Score,
			})
		}
		segments = append(segments, transcript.Segment{
			ID:    i,
			Start: seg.Start,
			End:   seg.End,
			Text:  strings.TrimSpace(seg.Text),
			Words: words,
		})
	}
	return segments, nil
}
