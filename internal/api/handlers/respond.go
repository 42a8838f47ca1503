package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// respondJSON encodes before writing the header so an unencodable body
// becomes a 500 instead of an empty 200
func respondJSON(w http.ResponseWriter, status int, data interface{}) error {
	body, err := json.Marshal(data)
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":"Failed to encode response"}` + "\n"))
		return fmt.Errorf("encode response: %w", err)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, err = w.Write(append(body, '\n'))
	return err
}

func respondError(w http.ResponseWriter, status int, message string) {
	_ = respondJSON(w, status, map[string]string{
		"error": message,
	})
}
