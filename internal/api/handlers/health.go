package handlers

import (
	"net/http"
)

// Health reports liveness and the default solver backend.
func Health(backend string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !allowMethod(w, r, http.MethodGet) {
			return
		}

		res := map[string]string{"status": "ok", "solver": backend}
		writeJSON(w, r, http.StatusOK, res)
	}
}
