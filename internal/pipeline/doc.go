// Package pipeline runs a transcription request end to end: cache check,
// audio acquisition, chunk planning, parallel transcription, stitching,
// and artifact publication.
package pipeline
