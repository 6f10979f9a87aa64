// Package transcribe invokes the speech-to-text capability on chunked audio.
//
// This package handles:
//   - The Transcriber capability interface the pipeline is constructed with
//   - The WhisperX implementation, invoked through uvx
//   - Per-chunk processing: extraction, transcription, offset shifting
//
// Chunk failures never escape: a chunk that cannot be extracted or
// transcribed produces an empty ChunkResult carrying the failure reason, and
// the job continues with the remaining chunks.
package transcribe
