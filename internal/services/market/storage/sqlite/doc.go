// Package sqlite provides the SQLite-backed marketplace store.
//
// All dynamic SQL is assembled from fixed per-entity column lists with
// bound parameters only; no caller-supplied value is ever interpolated
// into query text.
package sqlite
