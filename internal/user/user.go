// Package user defines the identity the client keeps for the signed-in person.
// The remote service owns the real session; this value only mirrors what was
// submitted on a successful login.
package user

// User represents the signed-in person.
type User struct {
	// Name is the display name submitted on login.
	Name string `json:"name" validate:"required"`

	// Email is the address submitted on login.
	Email string `json:"email" validate:"required,email"`
}
