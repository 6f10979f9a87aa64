// Package blobstore abstracts artifact storage behind a small object
// interface with S3 and in-memory implementations.
package blobstore
