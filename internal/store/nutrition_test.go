package store

import (
	"context"
	"errors"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"

	"github.com/fitstack/apiserver/types"
)

func TestNutritionRepositoryUpdateKeepsStoredDates(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	entryDate := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	createdAt := time.Date(2026, 8, 1, 9, 30, 0, 0, time.UTC)

	mock.ExpectQuery(`WHERE id = \$4 AND user_id = \$5\s+RETURNING entry_date, created_at`).
		WithArgs(types.MealLunch, sqlmock.AnyArg(), sqlmock.AnyArg(), 3, 7).
		WillReturnRows(sqlmock.NewRows([]string{"entry_date", "created_at"}).AddRow(entryDate, createdAt))

	repo := NewNutritionRepository(db)
	updated, err := repo.Update(context.Background(), types.NutritionEntry{
		ID:       3,
		UserID:   7,
		MealType: types.MealLunch,
		FoodItems: []types.FoodItem{
			{Name: "Rice", Quantity: 150, Unit: "g", Calories: 195},
		},
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if !updated.Date.Equal(entryDate) {
		t.Errorf("expected stored entry_date %v, got %v", entryDate, updated.Date)
	}
	if !updated.CreatedAt.Equal(createdAt) {
		t.Errorf("expected stored created_at %v, got %v", createdAt, updated.CreatedAt)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestNutritionRepositoryUpdateForeignRow(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("UPDATE nutrition_entries").
		WillReturnRows(sqlmock.NewRows([]string{"entry_date", "created_at"}))

	repo := NewNutritionRepository(db)
	_, err = repo.Update(context.Background(), types.NutritionEntry{ID: 3, UserID: 8})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
