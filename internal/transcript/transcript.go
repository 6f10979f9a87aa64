package transcript

import (
	"sort"
	"strings"
)

// Word carries word-level timing from the transcription capability.
type Word struct {
	Word       string  `json:"word"`
	Start      float64 `json:"start"`
	End        float64 `json:"end"`
	Confidence float64 `json:"probability,omitempty"`
}

// Segment is a contiguous span of transcribed speech.
type Segment struct {
	ID    int     `json:"id"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
	Words []Word  `json:"words"`
}

// Record is the transcript.json artifact for one hearing.
type Record struct {
	HearingID      string    `json:"hearing_id"`
	Text           string    `json:"text"`
	Language       string    `json:"language"`
	Duration       float64   `json:"duration"`
	ProcessingTime float64   `json:"processing_time"`
	Model          string    `json:"model"`
	Segments       []Segment `json:"segments"`
	TotalSegments  int       `json:"total_segments"`
	CreatedAt      string    `json:"created_at"`
}

// Merge combines per-chunk segment lists and texts into one global sequence.
// segmentLists and texts are indexed by chunk; texts must be in chunk order
// because full-text concatenation follows media order even when chunks were
// transcribed out of order. Segments are stable-sorted by start time and
// renumbered 0..N-1.
func Merge(segmentLists [][]Segment, texts []string) ([]Segment, string) {
	total := 0
	for _, list := range segmentLists {
		total += len(list)
	}
	merged := make([]Segment, 0, total)
	for _, list := range segmentLists {
		merged = append(merged, list...)
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Start < merged[j].Start
	})
	for i := range merged {
		merged[i].ID = i
	}

	return merged, JoinText(texts)
}

// JoinText concatenates non-empty chunk texts with single spaces and
// normalizes interior whitespace.
func JoinText(texts []string) string {
	parts := make([]string, 0, len(texts))
	for _, text := range texts {
		if trimmed := strings.TrimSpace(text); trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return strings.Join(strings.Fields(strings.Join(parts, " ")), " ")
}
