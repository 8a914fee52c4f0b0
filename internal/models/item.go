package models

import "time"

// Comment is a single comment entry embedded in an item.
type Comment struct {
	Author  string `json:"author,omitempty"`  // Display name of the commenter
	Comment string `json:"comment,omitempty"` // Comment text
}

// ItemDB represents an item document in the "secondChanceItems" collection.
// ID is a decimal string assigned at creation and strictly increasing across
// the lifetime of the collection. AgeYears is derived from AgeDays and owned
// by the service, not the caller.
type ItemDB struct {
	ID          string     `json:"id"`                  // Decimal string, monotonically assigned
	Name        string     `json:"name"`                // Item name
	Category    string     `json:"category"`            // Item category
	Condition   string     `json:"condition"`           // Item condition
	Zipcode     string     `json:"zipcode"`             // Pickup zipcode
	Description string     `json:"description"`         // Free-form description
	Image       string     `json:"image"`               // Image reference, e.g. /images/chair.png
	AgeDays     int        `json:"age_days"`            // Age in days
	AgeYears    float64    `json:"age_years"`           // round(age_days/365, 1), derived
	Comments    []Comment  `json:"comments"`            // Defaults to empty, never nil in responses
	DateAdded   int64      `json:"date_added"`          // Epoch seconds, set once at creation
	UpdatedAt   *time.Time `json:"updatedAt,omitempty"` // Set on every successful update
}

// ItemUpdate carries the only fields an update is allowed to overwrite.
// Name, zipcode, image and comments are deliberately outside the write set.
type ItemUpdate struct {
	Category    string `json:"category"`    // New category
	Condition   string `json:"condition"`   // New condition
	AgeDays     int    `json:"age_days"`    // New age in days
	Description string `json:"description"` // New description
}
