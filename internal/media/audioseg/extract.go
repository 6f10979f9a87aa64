package audioseg

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// Strategy selects how chunk boundaries are cut.
type Strategy string

const (
	// StrategyReencode decodes to 16 kHz mono PCM for sample-accurate cuts.
	StrategyReencode Strategy = "reencode"
	// StrategyCopy stream-copies without decoding; boundaries snap to the
	// nearest packet.
	StrategyCopy Strategy = "copy"
)

// ParseStrategy maps a config string onto a Strategy.
func ParseStrategy(value string) (Strategy, error) {
	switch Strategy(strings.ToLower(strings.TrimSpace(value))) {
	case StrategyReencode, "":
		return StrategyReencode, nil
	case StrategyCopy:
		return StrategyCopy, nil
	default:
		return "", fmt.Errorf("audioseg: unknown extraction strategy %q", value)
	}
}

// Extension returns the chunk file extension the strategy produces.
func (s Strategy) Extension() string {
	if s == StrategyCopy {
		return ".mka"
	}
	return ".wav"
}

// Extractor cuts windows out of source audio files.
type Extractor struct {
	binary   string
	strategy Strategy
	runner   func(ctx context.Context, name string, args ...string) error
}

// NewExtractor creates an Extractor using the given ffmpeg binary.
func NewExtractor(binary string, strategy Strategy) *Extractor {
	if strings.TrimSpace(binary) == "" {
		binary = "ffmpeg"
	}
	return &Extractor{binary: binary, strategy: strategy}
}

// WithCommandRunner sets a custom command runner (for testing).
func (e *Extractor) WithCommandRunner(runner func(ctx context.Context, name string, args ...string) error) {
	e.runner = runner
}

// Strategy returns the configured cut strategy.
func (e *Extractor) Strategy() Strategy {
	return e.strategy
}

// ExtractWindow writes the [startSec, startSec+durationSec) range of source
// to dest. durationSec <= 0 extracts from startSec to the end of the source.
func (e *Extractor) ExtractWindow(ctx context.Context, source string, startSec, durationSec float64, dest string) error {
	if source == "" {
		return fmt.Errorf("extract window: source path required")
	}
	if startSec < 0 {
		return fmt.Errorf("extract window: invalid start %v", startSec)
	}

	args := buildExtractArgs(e.strategy, source, startSec, durationSec, dest)
	if e.runner != nil {
		return e.runner(ctx, e.binary, args...)
	}

	cmd := exec.CommandContext(ctx, e.binary, args...) //nolint:gosec
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("ffmpeg extract window: %w: %s", err, strings.TrimSpace(string(output)))
	}
	return nil
}

func buildExtractArgs(strategy Strategy, source string, startSec, durationSec float64, dest string) []string {
	args := []string{
		"-y",
		"-hide_banner",
		"-loglevel", "error",
		"-ss", formatSeconds(startSec),
	}
	if durationSec > 0 {
		args = append(args, "-t", formatSeconds(durationSec))
	}
	args = append(args, "-i", source, "-vn", "-sn", "-dn")

	switch strategy {
	case StrategyCopy:
		args = append(args, "-c:a", "copy")
	default:
		args = append(args, "-ac", "1", "-ar", "16000", "-c:a", "pcm_s16le")
	}

	return append(args, dest)
}

func formatSeconds(value float64) string {
	return strconv.FormatFloat(value, 'f', -1, 64)
}
