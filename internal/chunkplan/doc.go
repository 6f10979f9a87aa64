// Package chunkplan computes the bounded time windows a hearing recording is
// split into before transcription.
//
// Plans are deterministic: windows partition [0, duration) in increasing
// start order with no gaps or overlap, except that a trailing remainder
// shorter than the configured floor is dropped. The planner never fails; an
// unknown duration degrades to a single window covering the whole source.
package chunkplan
