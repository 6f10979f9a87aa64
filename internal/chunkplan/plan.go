package chunkplan

import "math"

// Window is one planned slice of the source audio, in seconds.
// End == 0 marks an unbounded window reaching the end of the source, used
// when the duration probe failed.
type Window struct {
	Index int
	Start float64
	End   float64
}

// Duration returns the window length in seconds, or 0 when unbounded.
func (w Window) Duration() float64 {
	if w.Unbounded() {
		return 0
	}
	return w.End - w.Start
}

// Unbounded reports whether the window extends to the end of the source.
func (w Window) Unbounded() bool {
	return w.End <= w.Start
}

// Plan partitions [0, totalSeconds) into windows of chunkSeconds each.
//
//   - totalSeconds <= 0 (probe failed): one unbounded window.
//   - totalSeconds <= chunkSeconds: one window covering everything.
//   - otherwise ceil(total/chunk) windows; a trailing window shorter than
//     minSeconds is dropped. If dropping would leave no windows, the plan
//     falls back to a single full-length window.
func Plan(totalSeconds, chunkSeconds, minSeconds float64) []Window {
	if totalSeconds <= 0 {
		return []Window{{Index: 0}}
	}
	if chunkSeconds <= 0 || totalSeconds <= chunkSeconds {
		return []Window{{Index: 0, Start: 0, End: totalSeconds}}
	}

	count := int(math.Ceil(totalSeconds / chunkSeconds))
	windows := make([]Window, 0, count)
	for i := 0; i < count; i++ {
		start := float64(i) * chunkSeconds
		end := math.Min(start+chunkSeconds, totalSeconds)
		if end-start < minSeconds {
			continue
		}
		windows = append(windows, Window{Index: len(windows), Start: start, End: end})
	}

	if len(windows) == 0 {
		return []Window{{Index: 0, Start: 0, End: totalSeconds}}
	}
	return windows
}
