package types

import "time"

// ProgressEntry represents one body-progress measurement owned by a
// single user. Entries are listed in ascending date order so they can
// be charted over time.
type ProgressEntry struct {
	// ID is the unique identifier of the entry.
	ID int `json:"id" db:"id"`

	// UserID references the owning user. All access is scoped to it.
	UserID int `json:"user_id" db:"user_id"`

	// Weight is the recorded body weight. Required and positive.
	Weight float64 `json:"weight" db:"weight"`

	// BodyMeasurements maps measurement names (e.g. "waist", "chest")
	// to values. Stored as a JSON document alongside the row.
	BodyMeasurements map[string]float64 `json:"body_measurements" db:"body_measurements"`

	// PerformanceMetrics maps metric names (e.g. "squat_1rm") to
	// values. Stored as a JSON document alongside the row.
	PerformanceMetrics map[string]float64 `json:"performance_metrics" db:"performance_metrics"`

	// Date is the day the measurement was taken. Required.
	Date time.Time `json:"date" db:"entry_date"`

	// CreatedAt is the timestamp at which the entry was created.
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
