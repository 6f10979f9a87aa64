// Package catalog reads and writes hearing artifacts in blob storage and
// implements the cache rule used to skip redundant transcription work.
package catalog
