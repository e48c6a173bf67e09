package domain

import (
	"encoding/binary"
	"fmt"
	"math"
	"slices"

	"github.com/cespare/xxhash/v2"
)

// Fingerprint hashes every input that shapes the built models and the backend
// that solves them. Debug, thread and parallelism settings do not change the
// answer and are left out.
func Fingerprint(s *Scenario, p Params, backend string) string {
	h := xxhash.New()
	var buf [8]byte

	putInt := func(v int) {
		binary.LittleEndian.PutUint64(buf[:], uint64(int64(v)))
		_, _ = h.Write(buf[:])
	}
	putFloat := func(v float64) {
		binary.LittleEndian.PutUint64(buf[:], math.Float64bits(v))
		_, _ = h.Write(buf[:])
	}
	putVector := func(v []float64) {
		putInt(len(v))
		for _, x := range v {
			putFloat(x)
		}
	}
	putMatrix := func(m [][]float64) {
		putInt(len(m))
		for _, row := range m {
			putVector(row)
		}
	}

	_, _ = h.WriteString(backend)
	putInt(p.Days)
	putInt(p.Branches)
	putInt(p.Routes)

	last := slices.Clone(p.LastDaysCollection)
	slices.Sort(last)
	last = slices.Compact(last)
	putInt(len(last))
	for _, d := range last {
		putInt(d)
	}

	putFloat(p.ExtraBoxPercent)
	putFloat(p.DailyInterestRate)
	putFloat(p.BigM)
	putFloat(p.MIPRelGap)

	putMatrix(s.Incidence)
	putVector(s.RouteCost)
	putVector(s.OpeningCash)
	putVector(s.BoxCapacity)
	putMatrix(s.BusinessDays)
	putMatrix(s.Collection)

	return fmt.Sprintf("%016x", h.Sum64())
}
