// Package models defines persistent entities and repository interfaces for ga4x.
//
// [Snapshot] records the summary produced by one successful report fetch: the property, the
// date window and the three metric values exactly as they were rendered. Snapshots are
// immutable once created.
//
// Credentials are never modeled here; they live only in process memory.
package models
