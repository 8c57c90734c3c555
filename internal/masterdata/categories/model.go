package categories

import "time"

// Category groups products in the catalog.
type Category struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Input is the create/update payload.
type Input struct {
	Name        string `json:"name" validate:"required,max=120"`
	Description string `json:"description"`
	IsActive    *bool  `json:"is_active,omitempty"`
}
