package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	validation "github.com/go-ozzo/ozzo-validation"

	"github.com/fitstack/apiserver/internal/services"
	"github.com/fitstack/apiserver/internal/store"
	"github.com/fitstack/apiserver/types"
)

// NutritionHandler provides HTTP handlers for nutrition entries,
// owner-scoped the same way as WorkoutHandler.
type NutritionHandler struct {
	nutritionService *services.NutritionService
	logger           *slog.Logger
}

// NewNutritionHandler constructs a handler with the provided service.
func NewNutritionHandler(nutritionService *services.NutritionService, logger *slog.Logger) *NutritionHandler {
	return &NutritionHandler{
		nutritionService: nutritionService,
		logger:           logger,
	}
}

// NutritionRouter registers nutrition routes on the given router.
func NutritionRouter(r chi.Router, handler *NutritionHandler, authMiddleware func(http.Handler) http.Handler) {
	r.Use(authMiddleware)
	r.Get("/", handler.ListEntries)
	r.Post("/", handler.CreateEntry)
	r.Route("/{entryID}", func(r chi.Router) {
		r.Put("/", handler.UpdateEntry)
		r.Delete("/", handler.DeleteEntry)
	})
}

// NutritionUpsertRequest is the JSON payload for create and update.
// Date is optional on create and ignored on update.
type NutritionUpsertRequest struct {
	MealType  string           `json:"meal_type"`
	FoodItems []types.FoodItem `json:"food_items"`
	Date      string           `json:"date"`
}

func (r NutritionUpsertRequest) Validate() error {
	err := validation.ValidateStruct(&r,
		validation.Field(&r.MealType,
			validation.Required,
			validation.In(
				types.MealBreakfast,
				types.MealLunch,
				types.MealDinner,
				types.MealSnack,
			),
		),
		validation.Field(&r.FoodItems, validation.Required),
	)
	if err != nil {
		return err
	}
	for i, item := range r.FoodItems {
		if err := validateFoodItem(item); err != nil {
			return fmt.Errorf("food item %d: %v", i+1, err)
		}
	}
	return nil
}

func validateFoodItem(item types.FoodItem) error {
	err := validation.ValidateStruct(&item,
		validation.Field(&item.Name, validation.Required),
		validation.Field(&item.Quantity, validation.Required, validation.Min(0.0)),
		validation.Field(&item.Unit, validation.Required),
		validation.Field(&item.Calories, validation.Required, validation.Min(0.0)),
		validation.Field(&item.Macros, validation.NotNil),
	)
	if err != nil {
		return err
	}
	return validation.ValidateStruct(item.Macros,
		validation.Field(&item.Macros.Protein, validation.NotNil, validation.Min(0.0)),
		validation.Field(&item.Macros.Carbs, validation.NotNil, validation.Min(0.0)),
		validation.Field(&item.Macros.Fats, validation.NotNil, validation.Min(0.0)),
	)
}

func (h *NutritionHandler) ListEntries(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	entries, err := h.nutritionService.ListByOwner(r.Context(), userID)
	if err != nil {
		h.logger.Error("list nutrition entries failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to fetch nutrition logs")
		return
	}

	writeJSON(w, http.StatusOK, entries)
}

func (h *NutritionHandler) CreateEntry(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req NutritionUpsertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var entryDate time.Time
	if strings.TrimSpace(req.Date) != "" {
		entryDate, err = parseDate(req.Date)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid date")
			return
		}
	}

	created, err := h.nutritionService.Create(r.Context(), types.NutritionEntry{
		UserID:    userID,
		MealType:  req.MealType,
		FoodItems: req.FoodItems,
		Date:      entryDate,
	})
	if err != nil {
		h.logger.Error("create nutrition entry failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to add nutrition entry")
		return
	}

	writeJSON(w, http.StatusCreated, created)
}

func (h *NutritionHandler) UpdateEntry(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, err := parseResourceID(chi.URLParam(r, "entryID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid entry id")
		return
	}

	var req NutritionUpsertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	updated, err := h.nutritionService.Update(r.Context(), types.NutritionEntry{
		ID:        id,
		UserID:    userID,
		MealType:  req.MealType,
		FoodItems: req.FoodItems,
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "nutrition entry not found")
			return
		}
		h.logger.Error("update nutrition entry failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update nutrition entry")
		return
	}

	writeJSON(w, http.StatusOK, updated)
}

func (h *NutritionHandler) DeleteEntry(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, err := parseResourceID(chi.URLParam(r, "entryID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid entry id")
		return
	}

	if err := h.nutritionService.Delete(r.Context(), id, userID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "nutrition entry not found")
			return
		}
		h.logger.Error("delete nutrition entry failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete nutrition entry")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
