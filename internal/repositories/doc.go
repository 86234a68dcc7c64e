// Package repositories implements SQLite persistence for ga4x entities.
//
// [SnapshotRepository] stores report snapshots in the reports table created by the embedded
// migrations in the shared package. Snapshots are append-only: Create assigns a uuid, List
// returns newest first, Delete removes a row outright.
package repositories
