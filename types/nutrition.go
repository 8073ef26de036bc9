package types

import "time"

// Meal types accepted by the API.
const (
	MealBreakfast = "Breakfast"
	MealLunch     = "Lunch"
	MealDinner    = "Dinner"
	MealSnack     = "Snack"
)

// MealTypes lists every valid meal type.
var MealTypes = []string{MealBreakfast, MealLunch, MealDinner, MealSnack}

// NutritionEntry represents one logged meal owned by a single user.
type NutritionEntry struct {
	// ID is the unique identifier of the entry.
	ID int `json:"id" db:"id"`

	// UserID references the owning user. All access is scoped to it.
	UserID int `json:"user_id" db:"user_id"`

	// MealType classifies the meal. One of MealTypes.
	MealType string `json:"meal_type" db:"meal_type"`

	// FoodItems are the foods consumed in this meal. Stored as a JSON
	// document alongside the row.
	FoodItems []FoodItem `json:"food_items" db:"food_items"`

	// Date is the day the meal was consumed. Defaults to the creation
	// time when the client does not supply one.
	Date time.Time `json:"date" db:"entry_date"`

	// CreatedAt is the timestamp at which the entry was created.
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	// UpdatedAt is the timestamp of the most recent update.
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// FoodItem is a single food within a nutrition entry.
type FoodItem struct {
	// Name identifies the food (e.g. "Oatmeal").
	Name string `json:"name"`

	// Quantity is the amount consumed, in Unit units. Must be positive.
	Quantity float64 `json:"quantity"`

	// Unit is the measurement unit (e.g. grams, cups, pieces).
	Unit string `json:"unit"`

	// Calories is the energy content of this item.
	Calories float64 `json:"calories"`

	// Macros is the macro-nutrient breakdown. Required in full.
	Macros *Macros `json:"macros"`
}

// Macros is a complete macro-nutrient breakdown, in grams.
// All three components are required; zero is a valid amount.
type Macros struct {
	Protein *float64 `json:"protein"`
	Carbs   *float64 `json:"carbs"`
	Fats    *float64 `json:"fats"`
}
