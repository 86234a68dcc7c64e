package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/ga4x/internal/analytics"
	"github.com/desertthunder/ga4x/internal/models"
	"github.com/desertthunder/ga4x/internal/shared"
)

// DefaultListLimit caps List when no "limit" criterion is given.
const DefaultListLimit = 50

const snapshotColumns = `id, property_id, start_date, end_date, sessions, users, event_count, source, created_at`

// SnapshotRepository implements [models.Repository] for [models.Snapshot] persistence.
type SnapshotRepository struct {
	db *sql.DB
}

var _ models.Repository[*models.Snapshot] = (*SnapshotRepository)(nil)

// NewSnapshotRepository creates a new [SnapshotRepository] with the given database connection
func NewSnapshotRepository(db *sql.DB) *SnapshotRepository {
	return &SnapshotRepository{db: db}
}

// Create inserts a snapshot with a generated ID
func (r *SnapshotRepository) Create(snapshot *models.Snapshot) error {
	snapshot.SetID(shared.GenerateID())

	if err := snapshot.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	summary := snapshot.Summary()
	query := `INSERT INTO reports (` + snapshotColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := r.db.Exec(query,
		snapshot.ID(), snapshot.PropertyID(), snapshot.StartDate(), snapshot.EndDate(),
		summary.Sessions, summary.Users, summary.EventCount,
		snapshot.Source(), snapshot.CreatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert snapshot: %w", err)
	}

	return nil
}

// Get retrieves a snapshot by ID
func (r *SnapshotRepository) Get(id string) (*models.Snapshot, error) {
	row := r.db.QueryRow(`SELECT `+snapshotColumns+` FROM reports WHERE id = ?`, id)

	snapshot, err := scanSnapshot(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", shared.ErrSnapshotNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshot: %w", err)
	}

	return snapshot, nil
}

// Delete removes a snapshot by ID
func (r *SnapshotRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM reports WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete snapshot: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", shared.ErrSnapshotNotFound, id)
	}

	return nil
}

// List retrieves snapshots newest first.
//
// Supported criteria: "property_id" (string), "source" (string), "limit" (int, default [DefaultListLimit]).
func (r *SnapshotRepository) List(criteria map[string]any) ([]*models.Snapshot, error) {
	query := `SELECT ` + snapshotColumns + ` FROM reports WHERE 1 = 1`
	args := []any{}

	if propertyID, ok := criteria["property_id"].(string); ok && propertyID != "" {
		query += " AND property_id = ?"
		args = append(args, analytics.PropertyResource(propertyID))
	}

	if source, ok := criteria["source"].(string); ok && source != "" {
		query += " AND source = ?"
		args = append(args, source)
	}

	limit := DefaultListLimit
	if l, ok := criteria["limit"].(int); ok && l > 0 {
		limit = l
	}
	query += " ORDER BY created_at DESC, rowid DESC LIMIT ?"
	args = append(args, limit)

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshots: %w", err)
	}
	defer rows.Close()

	var snapshots []*models.Snapshot
	for rows.Next() {
		snapshot, err := scanSnapshot(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan snapshot: %w", err)
		}
		snapshots = append(snapshots, snapshot)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return snapshots, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSnapshot(s scanner) (*models.Snapshot, error) {
	var (
		id, propertyID, startDate, endDate, source string
		summary                                    analytics.Summary
		createdAt                                  time.Time
	)

	err := s.Scan(&id, &propertyID, &startDate, &endDate,
		&summary.Sessions, &summary.Users, &summary.EventCount, &source, &createdAt)
	if err != nil {
		return nil, err
	}

	return models.RestoreSnapshot(id, propertyID, startDate, endDate, summary, source, createdAt), nil
}
