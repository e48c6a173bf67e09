package milp

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strconv"
)

const termsPerLine = 8

// WriteLP writes the model in CPLEX LP format. Ranged rows are split into a
// pair of one-sided rows suffixed _lo and _up; rows with no finite bound are
// omitted.
func (m *Model) WriteLP(w io.Writer) error {
	if err := m.Validate(); err != nil {
		return fmt.Errorf("write lp: %w", err)
	}

	bw := bufio.NewWriter(w)
	if m.Name != "" {
		fmt.Fprintf(bw, "\\ Problem: %s\n", m.Name)
	}

	bw.WriteString("Minimize\n obj:")
	n := 0
	for i, v := range m.Vars {
		if v.Cost == 0 {
			continue
		}
		writeTerm(bw, v.Cost, m.Vars[i].Name, n == 0)
		n++
		if n%termsPerLine == 0 {
			bw.WriteString("\n  ")
		}
	}
	if m.Offset != 0 || n == 0 {
		writeConst(bw, m.Offset, n == 0)
	}
	bw.WriteString("\n")

	bw.WriteString("Subject To\n")
	for i, r := range m.Rows {
		name := r.Name
		if name == "" {
			name = "r" + strconv.Itoa(i)
		}
		lowerFinite := !math.IsInf(r.Lower, -1)
		upperFinite := !math.IsInf(r.Upper, 1)
		switch {
		case lowerFinite && upperFinite && r.Lower == r.Upper:
			m.writeRow(bw, name, r.Terms, "=", r.Lower)
		case lowerFinite && upperFinite:
			m.writeRow(bw, name+"_lo", r.Terms, ">=", r.Lower)
			m.writeRow(bw, name+"_up", r.Terms, "<=", r.Upper)
		case lowerFinite:
			m.writeRow(bw, name, r.Terms, ">=", r.Lower)
		case upperFinite:
			m.writeRow(bw, name, r.Terms, "<=", r.Upper)
		}
	}

	bw.WriteString("Bounds\n")
	for _, v := range m.Vars {
		if v.Type == Integer && v.Lower == 0 && v.Upper == 1 {
			continue
		}
		switch {
		case math.IsInf(v.Lower, -1) && math.IsInf(v.Upper, 1):
			fmt.Fprintf(bw, " %s free\n", v.Name)
		case math.IsInf(v.Lower, -1):
			fmt.Fprintf(bw, " -inf <= %s <= %s\n", v.Name, formatFloat(v.Upper))
		case math.IsInf(v.Upper, 1):
			fmt.Fprintf(bw, " %s >= %s\n", v.Name, formatFloat(v.Lower))
		default:
			fmt.Fprintf(bw, " %s <= %s <= %s\n", formatFloat(v.Lower), v.Name, formatFloat(v.Upper))
		}
	}

	var binaries, generals []string
	for _, v := range m.Vars {
		if v.Type != Integer {
			continue
		}
		if v.Lower == 0 && v.Upper == 1 {
			binaries = append(binaries, v.Name)
		} else {
			generals = append(generals, v.Name)
		}
	}
	writeSection(bw, "Binaries", binaries)
	writeSection(bw, "Generals", generals)

	bw.WriteString("End\n")
	return bw.Flush()
}

func (m *Model) writeRow(bw *bufio.Writer, name string, terms []Term, sense string, rhs float64) {
	fmt.Fprintf(bw, " %s:", name)
	if len(terms) == 0 && len(m.Vars) > 0 {
		// LP format has no empty rows; a zero term keeps the row readable.
		fmt.Fprintf(bw, " 0 %s", m.Vars[0].Name)
	}
	for i, t := range terms {
		writeTerm(bw, t.Coef, m.Vars[t.Var].Name, i == 0)
		if (i+1)%termsPerLine == 0 && i+1 < len(terms) {
			bw.WriteString("\n  ")
		}
	}
	fmt.Fprintf(bw, " %s %s\n", sense, formatFloat(rhs))
}

func writeTerm(bw *bufio.Writer, coef float64, name string, first bool) {
	switch {
	case coef < 0:
		bw.WriteString(" -")
		coef = -coef
	case !first:
		bw.WriteString(" +")
	}
	if coef == 1 {
		fmt.Fprintf(bw, " %s", name)
		return
	}
	fmt.Fprintf(bw, " %s %s", formatFloat(coef), name)
}

func writeConst(bw *bufio.Writer, c float64, first bool) {
	switch {
	case c < 0:
		fmt.Fprintf(bw, " - %s", formatFloat(-c))
	case first:
		fmt.Fprintf(bw, " %s", formatFloat(c))
	default:
		fmt.Fprintf(bw, " + %s", formatFloat(c))
	}
}

func writeSection(bw *bufio.Writer, title string, names []string) {
	if len(names) == 0 {
		return
	}
	bw.WriteString(title + "\n")
	for i, name := range names {
		if i%termsPerLine == 0 {
			bw.WriteString(" ")
		}
		bw.WriteString(name)
		if (i+1)%termsPerLine == 0 || i == len(names)-1 {
			bw.WriteString("\n")
		} else {
			bw.WriteString(" ")
		}
	}
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
