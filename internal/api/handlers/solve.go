package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"cash-routing-service/internal/api/dto"
	"cash-routing-service/internal/domain"
	"cash-routing-service/internal/services"

	"github.com/golang/glog"
)

// writeMargin is added to the solver time budget of a request.
const writeMargin = time.Minute

// Planner is what the solve endpoints need from services.Planner.
type Planner interface {
	Solve(ctx context.Context, s *domain.Scenario, p domain.Params, opts ...services.SolveOption) (*domain.Run, error)
	Gain(ctx context.Context, s *domain.Scenario, p domain.Params) (*domain.GainReport, error)
	GetRun(ctx context.Context, id string) (*domain.Run, error)
	ListRuns(ctx context.Context, limit int) ([]domain.RunInfo, error)
}

type SolveHandler struct {
	Planner Planner
	// Defaults fill solver settings the request leaves unset.
	Defaults domain.Params
}

// Solve runs one scenario and returns the persisted run with its plan summary.
func (h *SolveHandler) Solve(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}

	req, p, ok := h.readRequest(w, r)
	if !ok {
		return
	}

	extendWriteDeadline(w, &req.Scenario, p, 1)

	run, err := h.Planner.Solve(r.Context(), &req.Scenario, p)
	if isPartial(run, err) {
		glog.Errorf("solve failed: %v", err)
		writeJSON(w, r, http.StatusInternalServerError, dto.NewFailedRunResponse(run, err))
		return
	}
	if err != nil {
		writeServiceError(w, r, "solve", err)
		return
	}

	writeJSON(w, r, http.StatusOK, dto.NewRunResponse(run, summarize(&req, p, run)))
}

// Gain compares the plan at the requested rate against the zero-rate plan.
func (h *SolveHandler) Gain(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}

	req, p, ok := h.readRequest(w, r)
	if !ok {
		return
	}

	extendWriteDeadline(w, &req.Scenario, p, 2)

	rep, err := h.Planner.Gain(r.Context(), &req.Scenario, p)
	if err != nil {
		writeServiceError(w, r, "gain", err)
		return
	}
	writeJSON(w, r, http.StatusOK, rep)
}

func (h *SolveHandler) readRequest(w http.ResponseWriter, r *http.Request) (dto.SolveRequest, domain.Params, bool) {
	var req dto.SolveRequest

	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	defer r.Body.Close()
	if err := decodeOne(r.Body, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return req, domain.Params{}, false
	}

	p, err := req.Params.ToDomain(&req.Scenario, h.Defaults)
	if err != nil {
		writeServiceError(w, r, "solve", err)
		return req, domain.Params{}, false
	}
	return req, p, true
}

// summarize returns nil when no sub-problem has a plan to price.
func summarize(req *dto.SolveRequest, p domain.Params, run *domain.Run) *domain.PlanSummary {
	var fee domain.MileageFee
	if req.MileageFee != nil {
		fee = *req.MileageFee
	}
	sum, err := services.Summarize(&req.Scenario, p, run.Result, fee)
	if err != nil {
		return nil
	}
	return sum
}

// isPartial reports a backend failure that still left sub-problem records.
func isPartial(run *domain.Run, err error) bool {
	return errors.Is(err, domain.ErrSolve) && run != nil && run.Result != nil && len(run.Result.Subproblems) > 0
}

// writeDeadline is when the response of a request running solves full
// scenarios must be written. Without a backend time limit there is no bound,
// and the zero time leaves the request context as the only limit.
func writeDeadline(now time.Time, s *domain.Scenario, p domain.Params, solves int) time.Time {
	if p.TimeLimit <= 0 {
		return time.Time{}
	}
	waves := services.SubproblemCount(s, p)
	if p.Parallelism > 1 {
		waves = (waves + p.Parallelism - 1) / p.Parallelism
	}
	return now.Add(time.Duration(solves*waves)*p.TimeLimit + writeMargin)
}

// extendWriteDeadline replaces the server-wide write timeout for this request.
func extendWriteDeadline(w http.ResponseWriter, s *domain.Scenario, p domain.Params, solves int) {
	err := http.NewResponseController(w).SetWriteDeadline(writeDeadline(time.Now(), s, p, solves))
	if err != nil && !errors.Is(err, http.ErrNotSupported) {
		glog.Warningf("op=solve.deadline err=%v", err)
	}
}
