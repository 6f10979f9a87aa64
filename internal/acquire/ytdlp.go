package acquire

import (
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
)

// Source describes acquired audio ready for chunking.
type Source struct {
	// AudioPath is the downloaded audio file inside the workspace.
	AudioPath string
	// DurationSeconds is the duration reported by the downloader, 0 when
	// unknown.
	DurationSeconds float64
	// Title is the source video title.
	Title string
}

// Fetcher downloads the audio for one source URL into a workspace directory.
type Fetcher interface {
	Fetch(ctx context.Context, sourceURL, destDir string) (Source, error)
}

// YTDLP fetches audio with the yt-dlp command line tool.
type YTDLP struct {
	binary string
	runner func(ctx context.Context, name string, args ...string) ([]byte, error)
}

// NewYTDLP creates a yt-dlp backed Fetcher.
func NewYTDLP(binary string) *YTDLP {
	if strings.TrimSpace(binary) == "" {
		binary = "yt-dlp"
	}
	return &YTDLP{binary: binary}
}

// WithCommandRunner sets a custom command runner (for testing).
func (y *YTDLP) WithCommandRunner(runner func(ctx context.Context, name string, args ...string) ([]byte, error)) {
	y.runner = runner
}

// videoInfo is the subset of yt-dlp's JSON output the pipeline needs.
type videoInfo struct {
	Title    string  `json:"title"`
	Duration float64 `json:"duration"`
}

// Fetch downloads the best audio stream as WAV into destDir and returns its
// path plus the duration and title reported by yt-dlp.
func (y *YTDLP) Fetch(ctx context.Context, sourceURL, destDir string) (Source, error) {
	if strings.TrimSpace(sourceURL) == "" {
		return Source{}, fmt.Errorf("acquire: source URL required")
	}
	if strings.TrimSpace(destDir) == "" {
		return Source{}, fmt.Errorf("acquire: destination directory required")
	}

	outputTemplate := filepath.Join(destDir, "audio.%(ext)s")
	args := []string{
		"--no-playlist",
		"--no-warnings",
		"-f", "bestaudio/best",
		"-x",
		"--audio-format", "wav",
		"-o", outputTemplate,
		"--print-json",
		sourceURL,
	}

	output, err := y.run(ctx, args)
	if err != nil {
		return Source{}, fmt.Errorf("yt-dlp: %w", err)
	}

	var info videoInfo
	if line := firstJSONLine(output); line != "" {
		// Best effort: a download that succeeded but printed unparsable
		// JSON still yields usable audio, just with unknown duration.
		_ = json.Unmarshal([]byte(line), &info)
	}
	if info.Title == "" {
		info.Title = "unknown_title"
	}

	return Source{
		AudioPath:       filepath.Join(destDir, "audio.wav"),
		DurationSeconds: info.Duration,
		Title:           info.Title,
	}, nil
}

func (y *YTDLP) run(ctx context.Context, args []string) ([]byte, error) {
	if y.runner != nil {
		return y.runner(ctx, y.binary, args...)
	}
	cmd := exec.CommandContext(ctx, y.binary, args...) //nolint:gosec
	output, err := cmd.Output()
	if err != nil {
		detail := ""
		if exitErr, ok := err.(*exec.ExitError); ok {
			detail = strings.TrimSpace(string(exitErr.Stderr))
		}
		return nil, fmt.Errorf("%w: %s", err, detail)
	}
	return output, nil
}

// firstJSONLine finds the metadata object in yt-dlp stdout, which may carry
// progress noise on other lines.
func firstJSONLine(output []byte) string {
	for _, line := range strings.Split(string(output), "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "{") {
			return trimmed
		}
	}
	return ""
}
