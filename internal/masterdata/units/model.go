package units

import "time"

// Unit is a selectable unit of measure. Products store its value.
type Unit struct {
	ID        int64     `json:"id"`
	Value     string    `json:"value"`
	Label     string    `json:"label"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Input is the create/update payload.
type Input struct {
	Value    string `json:"value" validate:"required,max=32"`
	Label    string `json:"label" validate:"required,max=64"`
	IsActive *bool  `json:"is_active,omitempty"`
}
