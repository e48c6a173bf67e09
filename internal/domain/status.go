package domain

import (
	"fmt"
	"strings"
	"unicode"

	"cash-routing-service/internal/milp"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Status vocabulary reported per sub-problem.
const (
	LabelOptimal    = "Resuelto (Óptimo)"
	LabelInfeasible = "No factible"
	LabelUnbounded  = "No acotado"
	LabelUndefined  = "Error no definido (Undefined)"
	LabelNotSolved  = "No resuelto"
	LabelSolveError = "Error de resolución"

	SuffixBoxExceeded   = ", capacidad de buzón superada"
	SuffixMandatoryDays = ", día/s obligatorio/s infactible/s"
)

// StatusLabel maps a solver outcome to its label.
func StatusLabel(s milp.Status) string {
	switch s {
	case milp.StatusOptimal:
		return LabelOptimal
	case milp.StatusInfeasible:
		return LabelInfeasible
	case milp.StatusUnbounded:
		return LabelUnbounded
	case milp.StatusUndefined:
		return LabelUndefined
	case milp.StatusNotSolved:
		return LabelNotSolved
	default:
		return fmt.Sprintf("Estado desconocido (%s)", s)
	}
}

// ParseStatus recovers the solver outcome from a label, ignoring suffixes,
// case and accents. Older labels spelled "Resuelto (Òptimo)" or plain
// "Resuelto" parse as optimal.
func ParseStatus(label string) (milp.Status, bool) {
	base, _, _ := strings.Cut(label, ",")
	base = fold(strings.TrimSpace(base))

	switch {
	case strings.HasPrefix(base, "resuelto"):
		return milp.StatusOptimal, true
	case base == fold(LabelInfeasible):
		return milp.StatusInfeasible, true
	case base == fold(LabelUnbounded):
		return milp.StatusUnbounded, true
	case base == fold(LabelUndefined):
		return milp.StatusUndefined, true
	case base == fold(LabelNotSolved):
		return milp.StatusNotSolved, true
	}

	if inner, ok := strings.CutPrefix(base, "estado desconocido ("); ok {
		inner = strings.TrimSuffix(inner, ")")
		for s := milp.StatusNotSolved; s <= milp.StatusFeasible; s++ {
			if strings.EqualFold(s.String(), inner) {
				return s, true
			}
		}
	}
	return milp.StatusUndefined, false
}

// IsOptimalLabel reports whether a label denotes a proven optimum.
func IsOptimalLabel(label string) bool {
	s, ok := ParseStatus(label)
	return ok && s == milp.StatusOptimal
}

func fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return strings.ToLower(out)
}
