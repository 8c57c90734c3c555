package employees

import "time"

// Employee is a staff member. Staff with a password can sign documents.
type Employee struct {
	ID          int64     `json:"id"`
	Code        string    `json:"code"`
	Name        string    `json:"name"`
	Position    string    `json:"position"`
	Phone       string    `json:"phone"`
	Email       string    `json:"email"`
	HasPassword bool      `json:"has_password"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	passwordHash string
}

// Input is the create/update payload. An empty password on update keeps the
// stored one.
type Input struct {
	Code     string `json:"code" validate:"required,max=32"`
	Name     string `json:"name" validate:"required,max=200"`
	Position string `json:"position" validate:"max=80"`
	Phone    string `json:"phone" validate:"max=40"`
	Email    string `json:"email" validate:"omitempty,email"`
	Password string `json:"password,omitempty" validate:"omitempty,min=8,max=72"`
	IsActive *bool  `json:"is_active,omitempty"`
}

// Credentials is the payload of a password check.
type Credentials struct {
	Code     string `json:"code" validate:"required"`
	Password string `json:"password" validate:"required"`
}
