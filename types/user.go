package types

import "time"

// User represents an account in the system.
// It contains identity, profile, and audit metadata.
type User struct {
	// ID is the unique identifier of the user.
	ID int `json:"id" db:"id"`

	// Username is the unique login name chosen by the user.
	Username string `json:"username" db:"username"`

	// Email is the user's unique email address, used for login.
	Email string `json:"email" db:"email"`

	// PasswordHash stores the hashed representation of the user's password.
	// This field is never exposed in API responses.
	PasswordHash string `json:"-" db:"password_hash"`

	// FullName is the user's display or full name.
	FullName string `json:"full_name" db:"full_name"`

	// Bio is a short free-text description shown on the profile page.
	Bio string `json:"bio" db:"bio"`

	// Gender is a free-text gender entry. Optional.
	Gender string `json:"gender" db:"gender"`

	// City is the user's city. Optional.
	City string `json:"city" db:"city"`

	// BirthDate is the user's birth date as entered, kept as free text
	// (e.g. "1995-04-23"). Optional.
	BirthDate string `json:"birth_date" db:"birth_date"`

	// AvatarKey is the object-storage key of the user's profile picture.
	// Empty when no picture has been uploaded. The key is internal; the
	// API serves the picture through the profile endpoints.
	AvatarKey string `json:"-" db:"avatar_key"`

	// CreatedAt is the timestamp when the user account was created.
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	// UpdatedAt is the timestamp of the most recent update to the account.
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
