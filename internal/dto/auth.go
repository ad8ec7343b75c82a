package dto

// RegisterRequest represents the request payload for user registration
type RegisterRequest struct {
	Username      string  `json:"username" validate:"required,min=3,max=30"`
	Email         string  `json:"email" validate:"required,email"`
	Password      string  `json:"password" validate:"required,min=6"`
	ContactNumber *string `json:"contactNumber,omitempty"`
}

// LoginRequest represents the request payload for user login
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// UserResponse represents user data in API responses
type UserResponse struct {
	ID            string  `json:"id"`
	Username      string  `json:"username"`
	Email         string  `json:"email"`
	ContactNumber *string `json:"contactNumber,omitempty"`
	CreatedAt     string  `json:"createdAt"`
	UpdatedAt     string  `json:"updatedAt"`
}

// AuthResponse represents the response after successful authentication.
// The session token itself travels only in the cookie, never in the body.
type AuthResponse struct {
	Success bool         `json:"success"`
	Message string       `json:"message,omitempty"`
	User    UserResponse `json:"user"`
}
