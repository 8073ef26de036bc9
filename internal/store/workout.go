package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/fitstack/apiserver/types"
)

// WorkoutRepository handles persistence for workouts. Every query that
// touches an existing row carries both the row id and the owner id in a
// single predicate, so a miss and a foreign row are indistinguishable.
type WorkoutRepository struct {
	db *sql.DB
}

func NewWorkoutRepository(db *sql.DB) *WorkoutRepository {
	return &WorkoutRepository{db: db}
}

func (r *WorkoutRepository) ListByOwner(ctx context.Context, userID int) ([]types.Workout, error) {
	const query = `
		SELECT id, user_id, name, category, exercises, tags, created_at, updated_at
		FROM workouts
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	workouts := make([]types.Workout, 0)
	for rows.Next() {
		var workout types.Workout
		var exercisesJSON, tagsJSON []byte
		if err := rows.Scan(
			&workout.ID,
			&workout.UserID,
			&workout.Name,
			&workout.Category,
			&exercisesJSON,
			&tagsJSON,
			&workout.CreatedAt,
			&workout.UpdatedAt,
		); err != nil {
			return nil, err
		}
		_ = json.Unmarshal(exercisesJSON, &workout.Exercises)
		_ = json.Unmarshal(tagsJSON, &workout.Tags)
		workouts = append(workouts, workout)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return workouts, nil
}

func (r *WorkoutRepository) Create(ctx context.Context, workout types.Workout) (types.Workout, error) {
	now := time.Now()
	workout.CreatedAt = now
	workout.UpdatedAt = now

	exercisesJSON, err := json.Marshal(workout.Exercises)
	if err != nil {
		return types.Workout{}, err
	}
	tagsJSON, err := json.Marshal(workout.Tags)
	if err != nil {
		return types.Workout{}, err
	}

	const query = `
		INSERT INTO workouts (user_id, name, category, exercises, tags, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`
	if err := r.db.QueryRowContext(
		ctx,
		query,
		workout.UserID,
		workout.Name,
		workout.Category,
		exercisesJSON,
		tagsJSON,
		workout.CreatedAt,
		workout.UpdatedAt,
	).Scan(&workout.ID); err != nil {
		return types.Workout{}, err
	}
	return workout, nil
}

func (r *WorkoutRepository) Update(ctx context.Context, workout types.Workout) (types.Workout, error) {
	workout.UpdatedAt = time.Now()

	exercisesJSON, err := json.Marshal(workout.Exercises)
	if err != nil {
		return types.Workout{}, err
	}
	tagsJSON, err := json.Marshal(workout.Tags)
	if err != nil {
		return types.Workout{}, err
	}

	// RETURNING carries the stored creation time back so the response
	// reflects the row, not the caller's zero value.
	const query = `
		UPDATE workouts
		SET name = $1,
			category = $2,
			exercises = $3,
			tags = $4,
			updated_at = $5
		WHERE id = $6 AND user_id = $7
		RETURNING created_at`
	err = r.db.QueryRowContext(
		ctx,
		query,
		workout.Name,
		workout.Category,
		exercisesJSON,
		tagsJSON,
		workout.UpdatedAt,
		workout.ID,
		workout.UserID,
	).Scan(&workout.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return types.Workout{}, ErrNotFound
	}
	if err != nil {
		return types.Workout{}, err
	}
	return workout, nil
}

func (r *WorkoutRepository) Delete(ctx context.Context, id, userID int) error {
	const query = `DELETE FROM workouts WHERE id = $1 AND user_id = $2`
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
