// Package tables reads and writes scenario tables as headerless CSV files.
package tables

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"cash-routing-service/internal/domain"
)

// File names of the six tables inside a data directory.
const (
	IncidenceFile    = "rutas.csv"
	RouteCostFile    = "costo_rutas.csv"
	OpeningCashFile  = "e0.csv"
	BoxCapacityFile  = "buzon.csv"
	BusinessDaysFile = "habiles.csv"
	CollectionFile   = "recaudacion.csv"
)

// Dir loads a scenario from a data directory. The collection table is
// tab-separated; every other table is comma-separated.
type Dir struct {
	Path string
}

func NewDir(path string) *Dir {
	return &Dir{Path: path}
}

func (d *Dir) LoadScenario(ctx context.Context) (*domain.Scenario, error) {
	if strings.TrimSpace(d.Path) == "" {
		return nil, errors.New("load scenario: path must not be empty")
	}

	var s domain.Scenario
	loads := []struct {
		file   string
		comma  rune
		matrix *[][]float64
		vector *[]float64
	}{
		{file: IncidenceFile, comma: ',', matrix: &s.Incidence},
		{file: RouteCostFile, comma: ',', vector: &s.RouteCost},
		{file: OpeningCashFile, comma: ',', vector: &s.OpeningCash},
		{file: BoxCapacityFile, comma: ',', vector: &s.BoxCapacity},
		{file: BusinessDaysFile, comma: ',', matrix: &s.BusinessDays},
		{file: CollectionFile, comma: '\t', matrix: &s.Collection},
	}

	for _, l := range loads {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("load scenario: %w", err)
		}
		m, err := readFile(filepath.Join(d.Path, l.file), l.comma)
		if err != nil {
			return nil, fmt.Errorf("load scenario: %w", err)
		}
		if l.matrix != nil {
			*l.matrix = m
			continue
		}
		*l.vector = firstColumn(m)
	}

	return &s, nil
}

func readFile(path string, comma rune) ([][]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %q: %w", path, err)
	}
	defer f.Close()

	m, err := ReadMatrix(f, comma)
	if err != nil {
		return nil, fmt.Errorf("read %q: %w", path, err)
	}
	return m, nil
}

// ReadMatrix parses a headerless numeric table. Rows may differ in length.
func ReadMatrix(r io.Reader, comma rune) ([][]float64, error) {
	cr := csv.NewReader(r)
	cr.Comma = comma
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	var out [][]float64
	for line := 1; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		row := make([]float64, 0, len(rec))
		for col, field := range rec {
			field = strings.TrimSpace(field)
			if field == "" {
				continue
			}
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("%w: line %d column %d: %q is not a number", domain.ErrInvalidInput, line, col+1, field)
			}
			row = append(row, v)
		}
		out = append(out, row)
	}
	return out, nil
}

func firstColumn(m [][]float64) []float64 {
	out := make([]float64, 0, len(m))
	for _, row := range m {
		if len(row) > 0 {
			out = append(out, row[0])
		}
	}
	return out
}

// WriteMatrix writes a headerless numeric table.
func WriteMatrix(w io.Writer, comma rune, m [][]float64) error {
	cw := csv.NewWriter(w)
	cw.Comma = comma
	for _, row := range m {
		rec := make([]string, len(row))
		for i, v := range row {
			rec[i] = strconv.FormatFloat(v, 'f', -1, 64)
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteScenario stores s into dir using the layout LoadScenario reads.
func WriteScenario(dir string, s *domain.Scenario) error {
	if s == nil {
		return errors.New("write scenario: scenario is nil")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("write scenario: %w", err)
	}

	column := func(v []float64) [][]float64 {
		out := make([][]float64, len(v))
		for i, x := range v {
			out[i] = []float64{x}
		}
		return out
	}

	writes := []struct {
		file  string
		comma rune
		data  [][]float64
	}{
		{IncidenceFile, ',', s.Incidence},
		{RouteCostFile, ',', column(s.RouteCost)},
		{OpeningCashFile, ',', column(s.OpeningCash)},
		{BoxCapacityFile, ',', column(s.BoxCapacity)},
		{BusinessDaysFile, ',', s.BusinessDays},
		{CollectionFile, '\t', s.Collection},
	}
	for _, w := range writes {
		path := filepath.Join(dir, w.file)
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("write scenario: %w", err)
		}
		err = WriteMatrix(f, w.comma, w.data)
		if cerr := f.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			return fmt.Errorf("write scenario: %q: %w", path, err)
		}
	}
	return nil
}
