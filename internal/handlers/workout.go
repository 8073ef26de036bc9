package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	validation "github.com/go-ozzo/ozzo-validation"

	"github.com/fitstack/apiserver/internal/services"
	"github.com/fitstack/apiserver/internal/store"
	"github.com/fitstack/apiserver/types"
)

// WorkoutHandler provides HTTP handlers for workout routines. Every
// route is owner-scoped: the owner always comes from the authenticated
// context, and reads and mutations of existing rows match id and owner
// together, so a foreign workout behaves exactly like a missing one.
type WorkoutHandler struct {
	workoutService *services.WorkoutService
	logger         *slog.Logger
}

// NewWorkoutHandler constructs a handler with the provided service.
func NewWorkoutHandler(workoutService *services.WorkoutService, logger *slog.Logger) *WorkoutHandler {
	return &WorkoutHandler{
		workoutService: workoutService,
		logger:         logger,
	}
}

// WorkoutRouter registers workout routes on the given router.
func WorkoutRouter(r chi.Router, handler *WorkoutHandler, authMiddleware func(http.Handler) http.Handler) {
	r.Use(authMiddleware)
	r.Get("/", handler.ListWorkouts)
	r.Post("/", handler.CreateWorkout)
	r.Route("/{workoutID}", func(r chi.Router) {
		r.Put("/", handler.UpdateWorkout)
		r.Delete("/", handler.DeleteWorkout)
	})
}

// WorkoutUpsertRequest is the JSON payload for create and update.
type WorkoutUpsertRequest struct {
	Name      string           `json:"name"`
	Category  string           `json:"category"`
	Exercises []types.Exercise `json:"exercises"`
	Tags      []string         `json:"tags"`
}

func (r WorkoutUpsertRequest) Validate() error {
	err := validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required),
		validation.Field(&r.Category,
			validation.Required,
			validation.In(
				types.CategoryStrength,
				types.CategoryCardio,
				types.CategoryFlexibility,
				types.CategoryEndurance,
			),
		),
		validation.Field(&r.Exercises, validation.Required),
	)
	if err != nil {
		return err
	}
	for i, exercise := range r.Exercises {
		if err := validateExercise(exercise); err != nil {
			return fmt.Errorf("exercise %d: %v", i+1, err)
		}
	}
	return nil
}

func validateExercise(e types.Exercise) error {
	return validation.ValidateStruct(&e,
		validation.Field(&e.Name, validation.Required),
		validation.Field(&e.Sets, validation.Required, validation.Min(1)),
		validation.Field(&e.Reps, validation.Required, validation.Min(1)),
		validation.Field(&e.Weight, validation.Min(0.0)),
	)
}

func (h *WorkoutHandler) ListWorkouts(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	workouts, err := h.workoutService.ListByOwner(r.Context(), userID)
	if err != nil {
		h.logger.Error("list workouts failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to fetch workout routines")
		return
	}

	writeJSON(w, http.StatusOK, workouts)
}

func (h *WorkoutHandler) CreateWorkout(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req WorkoutUpsertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	created, err := h.workoutService.Create(r.Context(), types.Workout{
		UserID:    userID,
		Name:      req.Name,
		Category:  req.Category,
		Exercises: req.Exercises,
		Tags:      req.Tags,
	})
	if err != nil {
		h.logger.Error("create workout failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create workout routine")
		return
	}

	writeJSON(w, http.StatusCreated, created)
}

func (h *WorkoutHandler) UpdateWorkout(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, err := parseResourceID(chi.URLParam(r, "workoutID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid workout id")
		return
	}

	var req WorkoutUpsertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	updated, err := h.workoutService.Update(r.Context(), types.Workout{
		ID:        id,
		UserID:    userID,
		Name:      req.Name,
		Category:  req.Category,
		Exercises: req.Exercises,
		Tags:      req.Tags,
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "workout routine not found")
			return
		}
		h.logger.Error("update workout failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update workout routine")
		return
	}

	writeJSON(w, http.StatusOK, updated)
}

func (h *WorkoutHandler) DeleteWorkout(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, err := parseResourceID(chi.URLParam(r, "workoutID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid workout id")
		return
	}

	if err := h.workoutService.Delete(r.Context(), id, userID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "workout routine not found")
			return
		}
		h.logger.Error("delete workout failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete workout routine")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
