package models

import "time"

// UserDB represents a user document in the "users" collection.
// The password hash is never serialized into HTTP responses.
type UserDB struct {
	ID           string    `json:"_id,omitempty"` // Store-assigned identifier
	Email        string    `json:"email"`         // Unique email, exact-match
	FirstName    string    `json:"firstName"`     // Display first name
	LastName     string    `json:"lastName"`      // Display last name
	PasswordHash string    `json:"password"`      // bcrypt hash, never the plaintext
	CreatedAt    time.Time `json:"createdAt"`     // Set once at creation
}
