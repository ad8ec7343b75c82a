package dto

// FieldError describes a single failed validation rule
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ErrorResponse represents a failed request
type ErrorResponse struct {
	Success bool         `json:"success"`
	Message string       `json:"message,omitempty"`
	Errors  []FieldError `json:"errors,omitempty"`
}

// MessageResponse represents a success confirmation without a resource body
type MessageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}
