package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"cash-routing-service/internal/api/dto"
)

const (
	defaultRunsLimit = 20
	maxRunsLimit     = 200
)

type RunsHandler struct {
	Planner Planner
}

// List returns the most recent runs, newest first.
func (h *RunsHandler) List(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}

	limit := defaultRunsLimit
	if v := strings.TrimSpace(r.URL.Query().Get("limit")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > maxRunsLimit {
			writeError(w, r, http.StatusBadRequest, "limit must be between 1 and 200")
			return
		}
		limit = n
	}

	infos, err := h.Planner.ListRuns(r.Context(), limit)
	if err != nil {
		writeServiceError(w, r, "list runs", err)
		return
	}

	res := dto.ListRunsResponse{Runs: make([]dto.RunInfoResponse, 0, len(infos))}
	for _, info := range infos {
		res.Runs = append(res.Runs, dto.NewRunInfoResponse(info))
	}
	writeJSON(w, r, http.StatusOK, res)
}

// Get returns one stored run by id.
func (h *RunsHandler) Get(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}

	id := strings.TrimSpace(r.PathValue("id"))
	if id == "" {
		writeError(w, r, http.StatusBadRequest, "run id is required")
		return
	}

	run, err := h.Planner.GetRun(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, "get run", err)
		return
	}
	writeJSON(w, r, http.StatusOK, dto.NewRunResponse(run, nil))
}
