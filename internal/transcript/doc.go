// Package transcript defines the transcript data model and the merge step
// that stitches independently transcribed chunks back into one time-ordered
// document.
//
// Segment and Word timestamps are absolute (already shifted by their chunk's
// start offset). Merge restores global ordering regardless of the order
// chunks finished in: segments are stable-sorted by start time and renumbered
// 0..N-1, while full text keeps chunk submission order.
package transcript
