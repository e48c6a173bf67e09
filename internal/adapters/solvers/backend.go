// Package solvers holds the MILP backends behind ports.Solver.
package solvers

import (
	"fmt"
	"strings"

	"cash-routing-service/internal/ports"

	"github.com/golang/glog"
)

// Backend is the closed set of solver variants.
type Backend int

const (
	// BackendHiGHS is the embedded HiGHS branch-and-cut solver.
	BackendHiGHS Backend = iota
	// BackendBranchBound is the pure-Go branch and bound.
	BackendBranchBound
)

var backendNames = map[string]Backend{
	"highs":            BackendHiGHS,
	"bnb":              BackendBranchBound,
	"branchbound":      BackendBranchBound,
	"branch-and-bound": BackendBranchBound,
	"gonum":            BackendBranchBound,
}

func (b Backend) String() string {
	switch b {
	case BackendHiGHS:
		return "highs"
	case BackendBranchBound:
		return "bnb"
	default:
		return fmt.Sprintf("Backend(%d)", int(b))
	}
}

// Available reports whether the backend is compiled into this binary.
func (b Backend) Available() bool {
	switch b {
	case BackendHiGHS:
		return highsAvailable
	case BackendBranchBound:
		return true
	default:
		return false
	}
}

// Default is HiGHS when compiled in, the pure-Go backend otherwise.
func Default() Backend {
	if BackendHiGHS.Available() {
		return BackendHiGHS
	}
	return BackendBranchBound
}

// ParseBackend matches a backend name, ignoring case and surrounding space.
func ParseBackend(name string) (Backend, bool) {
	b, ok := backendNames[strings.ToLower(strings.TrimSpace(name))]
	return b, ok
}

// Resolve maps a selector to a usable backend. An empty name selects the
// default; an unknown or unavailable one falls back to it with a warning.
func Resolve(name string) Backend {
	if strings.TrimSpace(name) == "" {
		return Default()
	}
	b, ok := ParseBackend(name)
	if !ok {
		glog.Warningf("op=solvers.Resolve solver=%q msg=%q fallback=%s", name, "unknown solver", Default())
		return Default()
	}
	if !b.Available() {
		glog.Warningf("op=solvers.Resolve solver=%q msg=%q fallback=%s", name, "solver not compiled in", Default())
		return Default()
	}
	return b
}

// New returns a solver for the backend.
func New(b Backend) ports.Solver {
	switch b {
	case BackendHiGHS:
		return NewHiGHS()
	default:
		return NewBranchBound()
	}
}

// Select resolves a name and returns its solver.
func Select(name string) ports.Solver {
	return New(Resolve(name))
}
