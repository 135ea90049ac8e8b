package perfmon

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"perfmon-dashboard/src/helpers"

	"github.com/cespare/xxhash/v2"
)

var (
	errEmptyCell  = errors.New("empty cell")
	errNotFinite  = errors.New("not a finite number")
	errNotDecimal = errors.New("not a decimal number")
)

// Options controls how a PerfMon export is read.
type Options struct {
	Encoding     string // utf-8 (default), utf-16, windows-1252
	Delimiter    rune   // ',' when zero
	MaxFileBytes int64  // 0 = unlimited

	// OnRejectedCell, when set, is called for every cell dropped from a series.
	OnRejectedCell func(*helpers.CellParseError)
}

// Table is a parsed PerfMon export: one numeric series per counter column,
// in file order. It is built once and never modified afterwards.
type Table struct {
	Source          string
	Fingerprint     string
	TimestampColumn string
	Names           []string
	Series          map[string][]float64
	Rows            int
	RejectedCells   int
	FirstTimestamp  string
	LastTimestamp   string
}

// -----------------------------------------------------------------------------

// Load reads and parses the export at path. Any failure to produce a table
// with at least one counter column is a *helpers.DataLoadError.
func Load(path string, opts Options) (*Table, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, helpers.NewDataLoadError(path, fmt.Sprintf("could not find PerfMon log at %s", path), err)
		}
		return nil, helpers.NewDataLoadError(path, "cannot stat PerfMon log", err)
	}
	if info.IsDir() {
		return nil, helpers.NewDataLoadError(path, fmt.Sprintf("%s is a directory", path), nil)
	}
	if opts.MaxFileBytes > 0 && info.Size() > opts.MaxFileBytes {
		return nil, helpers.NewDataLoadError(path,
			fmt.Sprintf("PerfMon log is %d bytes, limit is %d", info.Size(), opts.MaxFileBytes), nil)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, helpers.NewDataLoadError(path, "cannot read PerfMon log", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, helpers.NewDataLoadError(path, "the provided PerfMon log is empty", nil)
	}

	table, err := Parse(bytes.NewReader(data), opts)
	if err != nil {
		var loadErr *helpers.DataLoadError
		if errors.As(err, &loadErr) {
			loadErr.Path = path
		}
		return nil, err
	}

	table.Source = filepath.Base(path)
	table.Fingerprint = Fingerprint(data)
	return table, nil
}

// -----------------------------------------------------------------------------

// Fingerprint identifies file content; equal content gives equal fingerprints.
func Fingerprint(data []byte) string {
	return fmt.Sprintf("%016x", xxhash.Sum64(data))
}

// -----------------------------------------------------------------------------

// Parse reads a delimited table from r. The first row is the header; its
// first column is the timestamp and every other column is a counter.
func Parse(r io.Reader, opts Options) (*Table, error) {
	decoded, err := newDecodingReader(r, opts.Encoding)
	if err != nil {
		return nil, helpers.NewDataLoadError("", "cannot decode PerfMon log", err)
	}

	reader := csv.NewReader(decoded)
	reader.Comma = ','
	if opts.Delimiter != 0 {
		reader.Comma = opts.Delimiter
	}
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, helpers.NewDataLoadError("", "the provided PerfMon log is empty", nil)
	}
	if err != nil {
		return nil, helpers.NewDataLoadError("", "malformed header row", err)
	}

	header[0] = strings.TrimPrefix(header[0], "\ufeff")
	if len(header) < 2 {
		return nil, helpers.NewDataLoadError("", "the PerfMon log has no counter columns", nil)
	}

	table := &Table{
		TimestampColumn: strings.TrimSpace(header[0]),
		Names:           uniqueNames(header[1:]),
	}
	table.Series = make(map[string][]float64, len(table.Names))
	for _, name := range table.Names {
		table.Series[name] = []float64{}
	}

	row := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		row++

		if err != nil {
			var parseErr *csv.ParseError
			if !errors.As(err, &parseErr) {
				return nil, helpers.NewDataLoadError("", fmt.Sprintf("cannot read row %d", row), err)
			}
			// the whole row is unusable; every counter loses this sample
			for _, name := range table.Names {
				table.reject(opts, row, name, "", err)
			}
			table.Rows++
			continue
		}

		table.Rows++
		timestamp := strings.TrimSpace(record[0])
		if table.FirstTimestamp == "" {
			table.FirstTimestamp = timestamp
		}
		table.LastTimestamp = timestamp

		for i, name := range table.Names {
			cell := ""
			if i+1 < len(record) {
				cell = record[i+1]
			}
			value, err := ParseCell(cell)
			if err != nil {
				table.reject(opts, row, name, cell, err)
				continue
			}
			table.Series[name] = append(table.Series[name], value)
		}
	}

	return table, nil
}

// -----------------------------------------------------------------------------

func (t *Table) reject(opts Options, row int, column, content string, cause error) {
	t.RejectedCells++
	if opts.OnRejectedCell != nil {
		opts.OnRejectedCell(helpers.NewCellParseError(row, column, content, cause))
	}
}

// -----------------------------------------------------------------------------

// ParseCell converts one decimal cell to a number. Empty, non-numeric, hex,
// NaN and infinite cells are errors.
func ParseCell(cell string) (float64, error) {
	s := strings.TrimSpace(cell)
	if s == "" {
		return 0, errEmptyCell
	}
	if digits := strings.TrimLeft(s, "+-"); len(digits) > 1 && digits[0] == '0' && (digits[1] == 'x' || digits[1] == 'X') {
		return 0, errNotDecimal
	}
	value, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, errNotFinite
	}
	return value, nil
}

// -----------------------------------------------------------------------------

// uniqueNames trims header cells, names blank ones after their position and
// suffixes repeats with " (2)", " (3)", ...
func uniqueNames(header []string) []string {
	names := make([]string, len(header))
	used := make(map[string]bool, len(header))

	for i, raw := range header {
		base := strings.TrimSpace(raw)
		if base == "" {
			base = fmt.Sprintf("Column %d", i+2)
		}
		name := base
		for n := 2; used[name]; n++ {
			name = fmt.Sprintf("%s (%d)", base, n)
		}
		used[name] = true
		names[i] = name
	}
	return names
}
