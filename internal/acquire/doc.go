// Package acquire obtains source audio for a hearing from its public video
// URL.
//
// The concrete implementation shells out to yt-dlp to download the best
// audio stream and convert it to WAV inside the job workspace. Callers
// depend on the Fetcher interface so pipeline tests can substitute a fake
// that drops a file in place.
package acquire
