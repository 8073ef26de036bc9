package types

import "time"

// Workout categories accepted by the API.
const (
	CategoryStrength    = "Strength"
	CategoryCardio      = "Cardio"
	CategoryFlexibility = "Flexibility"
	CategoryEndurance   = "Endurance"
)

// WorkoutCategories lists every valid workout category.
var WorkoutCategories = []string{
	CategoryStrength,
	CategoryCardio,
	CategoryFlexibility,
	CategoryEndurance,
}

// Workout represents a workout routine owned by a single user.
type Workout struct {
	// ID is the unique identifier of the workout.
	ID int `json:"id" db:"id"`

	// UserID references the owning user. Every read, update, and delete
	// is scoped to this owner; it is always derived from the
	// authenticated caller, never from the request payload.
	UserID int `json:"user_id" db:"user_id"`

	// Name is the human-readable name of the routine (e.g. "Leg Day").
	Name string `json:"name" db:"name"`

	// Category classifies the routine. One of WorkoutCategories.
	Category string `json:"category" db:"category"`

	// Exercises are the exercises performed in this routine. Stored as
	// a JSON document alongside the row.
	Exercises []Exercise `json:"exercises" db:"exercises"`

	// Tags are free-form labels used for filtering and search.
	Tags []string `json:"tags" db:"tags"`

	// CreatedAt is the timestamp at which the workout was created.
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	// UpdatedAt is the timestamp of the most recent update.
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Exercise is a single exercise within a workout routine.
type Exercise struct {
	// Name identifies the exercise (e.g. "Squat").
	Name string `json:"name"`

	// Sets is the number of sets. Must be at least 1.
	Sets int `json:"sets"`

	// Reps is the number of repetitions per set. Must be at least 1.
	Reps int `json:"reps"`

	// Weight is the working weight. Zero for bodyweight exercises;
	// never negative.
	Weight float64 `json:"weight"`

	// Notes holds optional free-text notes.
	Notes string `json:"notes"`
}
