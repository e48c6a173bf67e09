//go:build !(cgo && (linux || darwin) && (amd64 || arm64))

package solvers

import (
	"context"
	"errors"

	"cash-routing-service/internal/milp"
)

const highsAvailable = false

var errHiGHSUnavailable = errors.New("highs: backend not compiled in (requires cgo on linux or darwin, amd64 or arm64)")

type HiGHS struct{}

func NewHiGHS() *HiGHS { return &HiGHS{} }

func (s *HiGHS) Name() string { return BackendHiGHS.String() }

func (s *HiGHS) Solve(context.Context, *milp.Model, ...milp.Option) (*milp.Solution, error) {
	return nil, errHiGHSUnavailable
}
