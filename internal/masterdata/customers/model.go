package customers

import "time"

// Customer buys from the distributor: pharmacies, hospitals, clinics.
type Customer struct {
	ID           int64     `json:"id"`
	Code         string    `json:"code"`
	Name         string    `json:"name"`
	CustomerType string    `json:"customer_type"`
	Phone        string    `json:"phone"`
	Email        string    `json:"email"`
	Address      string    `json:"address"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Input is the create/update payload.
type Input struct {
	Code         string `json:"code" validate:"required,max=32"`
	Name         string `json:"name" validate:"required,max=200"`
	CustomerType string `json:"customer_type" validate:"max=40"`
	Phone        string `json:"phone" validate:"max=40"`
	Email        string `json:"email" validate:"omitempty,email"`
	Address      string `json:"address"`
	IsActive     *bool  `json:"is_active,omitempty"`
}
