package matrix

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/mat"
)

// Layout describes which labels a CSV file carries besides its numbers.
type Layout struct {
	Header bool `yaml:"header"` // first row holds column labels
	Index  bool `yaml:"index"`  // first column holds row labels
}

// LabeledLayout is the layout of the similarity matrices written by the HDV experiments.
var LabeledLayout = Layout{Header: true, Index: true}

// table is the parsed form of a CSV file before it becomes a Matrix or EmbeddingSet.
type table struct {
	colLabels []string
	rowLabels []string
	data      *mat.Dense
}

// ReadLabeled reads a CSV file with a header row and an index column.
func ReadLabeled(path string) (*Matrix, error) {
	t, err := readTable(path, LabeledLayout)
	if err != nil {
		return nil, err
	}
	return New(t.rowLabels, t.colLabels, t.data)
}

// ReadNumeric reads a CSV file of bare numbers, one row per line.
// Lines starting with '#' are ignored.
func ReadNumeric(path string) (*mat.Dense, error) {
	t, err := readTable(path, Layout{})
	if err != nil {
		return nil, err
	}
	return t.data, nil
}

// ReadEmbeddings reads an embedding matrix in the given layout.
// Row labels are returned only when layout.Index is set.
func ReadEmbeddings(path string, layout Layout) (*mat.Dense, []string, error) {
	t, err := readTable(path, layout)
	if err != nil {
		return nil, nil, err
	}
	return t.data, t.rowLabels, nil
}

func readTable(path string, layout Layout) (*table, error) {
	records, lines, err := readRecords(path)
	if err != nil {
		return nil, err
	}
	records = dropTrailingEmpty(records)

	var t table
	body, bodyLines := records, lines
	if layout.Header {
		header := records[0]
		if layout.Index {
			header = header[1:]
		}
		if len(header) == 0 {
			return nil, &ParseError{Path: path, Line: lines[0], Err: errors.New("header has no columns")}
		}
		t.colLabels = trimAll(header)
		body, bodyLines = records[1:], lines[1:]
	}
	if len(body) == 0 {
		return nil, &ParseError{Path: path, Err: errors.New("no data rows")}
	}

	width := len(body[0])
	if layout.Header {
		width = len(records[0])
	}
	offset := 0
	if layout.Index {
		offset = 1
	}
	cols := width - offset
	if cols <= 0 {
		return nil, &ParseError{Path: path, Line: bodyLines[0], Err: errors.New("row has no values")}
	}

	t.data = mat.NewDense(len(body), cols, nil)
	if layout.Index {
		t.rowLabels = make([]string, len(body))
	}
	for i, rec := range body {
		if len(rec) != width {
			return nil, &ParseError{
				Path: path,
				Line: bodyLines[i],
				Err:  fmt.Errorf("expected %d fields, got %d", width, len(rec)),
			}
		}
		if layout.Index {
			t.rowLabels[i] = strings.TrimSpace(rec[0])
		}
		for j, cell := range rec[offset:] {
			v, err := parseCell(cell)
			if err != nil {
				return nil, &ParseError{Path: path, Line: bodyLines[i], Err: fmt.Errorf("field %d: %w", j+offset+1, err)}
			}
			t.data.Set(i, j, v)
		}
	}
	return &t, nil
}

// readRecords reads every CSV record along with the line it started on.
func readRecords(path string) ([][]string, []int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, &ParseError{Path: path, Err: err}
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true
	r.Comment = '#'

	var records [][]string
	var lines []int
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, &ParseError{Path: path, Err: err}
		}
		line, _ := r.FieldPos(0)
		records = append(records, rec)
		lines = append(lines, line)
	}
	if len(records) == 0 {
		return nil, nil, &ParseError{Path: path, Err: errors.New("empty file")}
	}
	return records, lines, nil
}

// dropTrailingEmpty removes a final empty column when every record has one.
// The HDV distance writers terminate each field with a comma.
func dropTrailingEmpty(records [][]string) [][]string {
	for _, rec := range records {
		if len(rec) < 2 || strings.TrimSpace(rec[len(rec)-1]) != "" {
			return records
		}
	}
	out := make([][]string, len(records))
	for i, rec := range records {
		out[i] = rec[:len(rec)-1]
	}
	return out
}

func parseCell(cell string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number %q", cell)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("non-finite value %q", cell)
	}
	return v, nil
}

func trimAll(ss []string) []string {
	out := make([]string, len(ss))
	for i, s := range ss {
		out[i] = strings.TrimSpace(s)
	}
	return out
}

// WriteLabeled writes m as CSV with a header row and an index column.
func WriteLabeled(w io.Writer, m *Matrix) error {
	cw := csv.NewWriter(w)
	header := append([]string{""}, m.ColLabels...)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	rows, cols := m.Dims()
	rec := make([]string, cols+1)
	for i := 0; i < rows; i++ {
		rec[0] = m.RowLabels[i]
		for j := 0; j < cols; j++ {
			rec[j+1] = strconv.FormatFloat(m.At(i, j), 'f', 4, 64)
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("writing row %s: %w", m.RowLabels[i], err)
		}
	}
	cw.Flush()
	return cw.Error()
}
