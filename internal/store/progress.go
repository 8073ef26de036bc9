package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/fitstack/apiserver/types"
)

// ProgressRepository handles persistence for progress entries. Listing
// is ordered by measurement date ascending so entries chart naturally
// over time.
type ProgressRepository struct {
	db *sql.DB
}

func NewProgressRepository(db *sql.DB) *ProgressRepository {
	return &ProgressRepository{db: db}
}

func (r *ProgressRepository) ListByOwner(ctx context.Context, userID int) ([]types.ProgressEntry, error) {
	const query = `
		SELECT id, user_id, weight, body_measurements, performance_metrics, entry_date, created_at
		FROM progress_entries
		WHERE user_id = $1
		ORDER BY entry_date ASC, id ASC`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]types.ProgressEntry, 0)
	for rows.Next() {
		var entry types.ProgressEntry
		var measurementsJSON, metricsJSON []byte
		if err := rows.Scan(
			&entry.ID,
			&entry.UserID,
			&entry.Weight,
			&measurementsJSON,
			&metricsJSON,
			&entry.Date,
			&entry.CreatedAt,
		); err != nil {
			return nil, err
		}
		_ = json.Unmarshal(measurementsJSON, &entry.BodyMeasurements)
		_ = json.Unmarshal(metricsJSON, &entry.PerformanceMetrics)
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *ProgressRepository) Create(ctx context.Context, entry types.ProgressEntry) (types.ProgressEntry, error) {
	entry.CreatedAt = time.Now()

	measurementsJSON, err := json.Marshal(entry.BodyMeasurements)
	if err != nil {
		return types.ProgressEntry{}, err
	}
	metricsJSON, err := json.Marshal(entry.PerformanceMetrics)
	if err != nil {
		return types.ProgressEntry{}, err
	}

	const query = `
		INSERT INTO progress_entries (user_id, weight, body_measurements, performance_metrics, entry_date, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`
	if err := r.db.QueryRowContext(
		ctx,
		query,
		entry.UserID,
		entry.Weight,
		measurementsJSON,
		metricsJSON,
		entry.Date,
		entry.CreatedAt,
	).Scan(&entry.ID); err != nil {
		return types.ProgressEntry{}, err
	}
	return entry, nil
}

func (r *ProgressRepository) Delete(ctx context.Context, id, userID int) error {
	const query = `DELETE FROM progress_entries WHERE id = $1 AND user_id = $2`
	result, err := r.db.ExecContext(ctx, query, id, userID)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
