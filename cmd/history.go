package main

import (
	"context"
	"fmt"
	"time"

	"github.com/desertthunder/ga4x/internal/analytics"
	"github.com/desertthunder/ga4x/internal/formatter"
	"github.com/desertthunder/ga4x/internal/models"
	"github.com/desertthunder/ga4x/internal/shared"
	"github.com/urfave/cli/v3"
)

type snapshotJSON struct {
	ID         string    `json:"id"`
	PropertyID string    `json:"property"`
	StartDate  string    `json:"startDate"`
	EndDate    string    `json:"endDate"`
	Source     string    `json:"source"`
	CreatedAt  time.Time `json:"createdAt"`
	analytics.Summary
}

func toSnapshotJSON(snapshots []*models.Snapshot) []snapshotJSON {
	out := make([]snapshotJSON, 0, len(snapshots))
	for _, s := range snapshots {
		out = append(out, snapshotJSON{
			ID:         s.ID(),
			PropertyID: s.PropertyID(),
			StartDate:  s.StartDate(),
			EndDate:    s.EndDate(),
			Source:     s.Source(),
			CreatedAt:  s.CreatedAt(),
			Summary:    s.Summary(),
		})
	}
	return out
}

// HistoryList prints recorded snapshots, newest first.
func (r *Runner) HistoryList(ctx context.Context, cmd *cli.Command) error {
	repo, db, err := r.openRepository()
	if err != nil {
		return err
	}
	defer db.Close()

	snapshots, err := repo.List(map[string]any{
		"limit":       cmd.Int("limit"),
		"property_id": cmd.String("property"),
		"source":      cmd.String("source"),
	})
	if err != nil {
		return err
	}

	r.logger.Debug("listed snapshots", "count", len(snapshots))

	if cmd.Bool("json") {
		return r.writeJSON(toSnapshotJSON(snapshots), true)
	}
	return r.writeBytes(formatter.ExportHistory(snapshots))
}

// HistoryShow prints a single snapshot in the requested format.
func (r *Runner) HistoryShow(ctx context.Context, cmd *cli.Command) error {
	id, err := snapshotID(cmd)
	if err != nil {
		return err
	}

	format := cmd.String("format")
	if err := formatter.Supported(format); err != nil {
		return err
	}

	repo, db, err := r.openRepository()
	if err != nil {
		return err
	}
	defer db.Close()

	snapshot, err := repo.Get(id)
	if err != nil {
		return err
	}

	data, err := formatter.Format(formatter.SnapshotReport(snapshot), format)
	if err != nil {
		return err
	}
	return r.writeBytes(data)
}

// HistoryDelete removes a single snapshot.
func (r *Runner) HistoryDelete(ctx context.Context, cmd *cli.Command) error {
	id, err := snapshotID(cmd)
	if err != nil {
		return err
	}

	repo, db, err := r.openRepository()
	if err != nil {
		return err
	}
	defer db.Close()

	if err := repo.Delete(id); err != nil {
		return err
	}
	return r.writePlain("✓ Deleted snapshot %s\n", id)
}

// snapshotID reads the id argument, which must be a snapshot uuid.
func snapshotID(cmd *cli.Command) (string, error) {
	id := cmd.StringArg("id")
	if id == "" {
		return "", fmt.Errorf("%w: snapshot id", shared.ErrMissingArgument)
	}
	if !shared.IsID(id) {
		return "", fmt.Errorf("%w: %q is not a snapshot id", shared.ErrInvalidArgument, id)
	}
	return id, nil
}
