// Package audioseg cuts planned time windows out of a source recording with
// ffmpeg, producing independent chunk files for transcription.
//
// Two strategies exist. StrategyReencode decodes the window to 16 kHz mono
// PCM WAV: sample-accurate boundaries, slower, and the format WhisperX
// prefers. StrategyCopy stream-copies the window without decoding: fast, but
// cut points land on the nearest packet boundary so timestamps at chunk
// seams can shift slightly. The strategy is configuration, not code.
package audioseg
