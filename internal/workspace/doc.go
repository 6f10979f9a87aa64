// Package workspace manages per-job scratch directories under the
// staging root and sweeps leftovers from interrupted runs.
package workspace
