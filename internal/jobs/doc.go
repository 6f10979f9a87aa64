// Package jobs tracks transcription job lifecycle state. Stores share a
// forward-only status model so a completed or failed job never reverts.
package jobs
