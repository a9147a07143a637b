package handlers

import (
	"encoding/json"
	"net/http"

	pkgerrors "braincore/pkg/errors"
)

func respondJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func respondError(w http.ResponseWriter, err error) {
	status := pkgerrors.HTTPStatusFor(err)
	respondJSON(w, status, map[string]string{"error": err.Error()})
}
