package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/fitstack/apiserver/types"
)

// NutritionRepository handles persistence for nutrition entries,
// owner-scoped the same way as WorkoutRepository.
type NutritionRepository struct {
	db *sql.DB
}

func NewNutritionRepository(db *sql.DB) *NutritionRepository {
	return &NutritionRepository{db: db}
}

func (r *NutritionRepository) ListByOwner(ctx context.Context, userID int) ([]types.NutritionEntry, error) {
	const query = `
		SELECT id, user_id, meal_type, food_items, entry_date, created_at, updated_at
		FROM nutrition_entries
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]types.NutritionEntry, 0)
	for rows.Next() {
		var entry types.NutritionEntry
		var foodItemsJSON []byte
		if err := rows.Scan(
			&entry.ID,
			&entry.UserID,
			&entry.MealType,
			&foodItemsJSON,
			&entry.Date,
			&entry.CreatedAt,
			&entry.UpdatedAt,
		); err != nil {
			return nil, err
		}
		_ = json.Unmarshal(foodItemsJSON, &entry.FoodItems)
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *NutritionRepository) Create(ctx context.Context, entry types.NutritionEntry) (types.NutritionEntry, error) {
	now := time.Now()
	entry.CreatedAt = now
	entry.UpdatedAt = now
	if entry.Date.IsZero() {
		entry.Date = now
	}

	foodItemsJSON, err := json.Marshal(entry.FoodItems)
	if err != nil {
		return types.NutritionEntry{}, err
	}

	const query = `
		INSERT INTO nutrition_entries (user_id, meal_type, food_items, entry_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`
	if err := r.db.QueryRowContext(
		ctx,
		query,
		entry.UserID,
		entry.MealType,
		foodItemsJSON,
		entry.Date,
		entry.CreatedAt,
		entry.UpdatedAt,
	).Scan(&entry.ID); err != nil {
		return types.NutritionEntry{}, err
	}
	return entry, nil
}

func (r *NutritionRepository) Update(ctx context.Context, entry types.NutritionEntry) (types.NutritionEntry, error) {
	entry.UpdatedAt = time.Now()

	foodItemsJSON, err := json.Marshal(entry.FoodItems)
	if err != nil {
		return types.NutritionEntry{}, err
	}

	// RETURNING carries the stored timestamps back so the response
	// reflects the row, not the caller's zero values.
	const query = `
		UPDATE nutrition_entries
		SET meal_type = $1,
			food_items = $2,
			updated_at = $3
		WHERE id = $4 AND user_id = $5
		RETURNING entry_date, created_at`
	err = r.db.QueryRowContext(
		ctx,
		query,
		entry.MealType,
		foodItemsJSON,
		entry.UpdatedAt,
		entry.ID,
		entry.UserID,
	).Scan(&entry.Date, &entry.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return types.NutritionEntry{}, ErrNotFound
	}
	if err != nil {
		return types.NutritionEntry{}, err
	}
	return entry, nil
}

func (r *NutritionRepository) Delete(ctx context.Context, id, userID int) error {
	const query = `DELETE FROM nutrition_entries WHERE id = $1 AND user_id = $2`
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
