package utils

import (
	"encoding/json"
	"net/http"
)

// DecodeJSONRequest decodes the request body into dst. On failure it writes
// a 400 response and returns the error, so callers can simply return.
func DecodeJSONRequest(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		WriteErrorResponse(w, http.StatusBadRequest, "Invalid request body")
		return err
	}
	return nil
}
