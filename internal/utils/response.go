package utils

import (
	"encoding/json"
	"net/http"

	"CAMPUSMARKET_BACK-END/internal/dto"
)

// WriteJSONResponse writes a JSON response to the HTTP response writer
func WriteJSONResponse(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// WriteErrorResponse writes a failure envelope with the given message
func WriteErrorResponse(w http.ResponseWriter, status int, message string) {
	WriteJSONResponse(w, status, dto.ErrorResponse{Success: false, Message: message})
}

// WriteValidationErrors writes a 400 with the collected per-field errors
func WriteValidationErrors(w http.ResponseWriter, errs []dto.FieldError) {
	WriteJSONResponse(w, http.StatusBadRequest, dto.ErrorResponse{Success: false, Errors: errs})
}
