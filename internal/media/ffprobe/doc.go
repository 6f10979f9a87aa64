// Package ffprobe provides a typed wrapper around ffprobe JSON output.
//
// The pipeline only needs container-level metadata: Duration drives chunk
// planning, and an Inspect failure is treated as an unknown duration
// rather than a failed job.
package ffprobe
