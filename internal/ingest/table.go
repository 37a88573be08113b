// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"
	"strings"
)

// Table is a parsed result table: a header row and data rows. Rows shorter
// than the header read as blank cells.
type Table struct {
	Header []string
	Rows   [][]string
}

// ParseTable reads a delimited table whose first record is the header.
func ParseTable(r io.Reader, comma rune) (Table, error) {
	cr := csv.NewReader(r)
	cr.Comma = comma
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return Table{}, errors.New("empty table")
	}
	if err != nil {
		return Table{}, fmt.Errorf("reading header: %w", err)
	}
	for i, h := range header {
		header[i] = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
	}

	t := Table{Header: header}
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return Table{}, fmt.Errorf("reading row %d: %w", len(t.Rows)+2, err)
		}
		t.Rows = append(t.Rows, rec)
	}
	return t, nil
}

// Cell returns the trimmed value at row i, column j, or "" when absent.
func (t Table) Cell(i, j int) string {
	if j >= len(t.Rows[i]) {
		return ""
	}
	return strings.TrimSpace(t.Rows[i][j])
}

// Numeric returns the parsed non-blank values of column j and whether the
// column is numeric: every non-blank cell parses and at least one exists.
func (t Table) Numeric(j int) ([]float64, bool) {
	var vals []float64
	for i := range t.Rows {
		c := t.Cell(i, j)
		if c == "" {
			continue
		}
		v, err := strconv.ParseFloat(c, 64)
		if err != nil || math.IsNaN(v) {
			return nil, false
		}
		vals = append(vals, v)
	}
	return vals, len(vals) > 0
}

// Distinct returns the distinct non-blank values of column j in first-seen order.
func (t Table) Distinct(j int) []string {
	seen := make(map[string]bool)
	var out []string
	for i := range t.Rows {
		c := t.Cell(i, j)
		if c == "" || seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, c)
	}
	return out
}

// Summary holds the distribution of a numeric column.
type Summary struct {
	Mean, Median, Std, Min, Max float64
}

// Summarize computes mean, median, sample standard deviation (zero for a
// single value), min, and max. vals must be non-empty.
func Summarize(vals []float64) Summary {
	sorted := append([]float64(nil), vals...)
	sort.Float64s(sorted)

	n := len(sorted)
	var sum float64
	for _, v := range sorted {
		sum += v
	}
	s := Summary{
		Mean: sum / float64(n),
		Min:  sorted[0],
		Max:  sorted[n-1],
	}
	if n%2 == 1 {
		s.Median = sorted[n/2]
	} else {
		s.Median = (sorted[n/2-1] + sorted[n/2]) / 2
	}
	if n > 1 {
		var ss float64
		for _, v := range sorted {
			d := v - s.Mean
			ss += d * d
		}
		s.Std = math.Sqrt(ss / float64(n-1))
	}
	return s
}
