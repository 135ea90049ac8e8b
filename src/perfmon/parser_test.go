package perfmon

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"perfmon-dashboard/src/helpers"

	"github.com/longbridgeapp/assert"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

func writeFile(t *testing.T, name string, content []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

func TestParse_TwoCounters(t *testing.T) {
	input := "Time,% CPU Usage,% GPU Usage\n0,10,5\n1,20,7\n"

	table, err := Parse(strings.NewReader(input), Options{})
	assert.Nil(t, err)
	assert.Equal(t, "Time", table.TimestampColumn)
	assert.Equal(t, []string{"% CPU Usage", "% GPU Usage"}, table.Names)
	assert.Equal(t, []float64{10, 20}, table.Series["% CPU Usage"])
	assert.Equal(t, []float64{5, 7}, table.Series["% GPU Usage"])
	assert.Equal(t, 2, table.Rows)
	assert.Equal(t, 0, table.RejectedCells)
	assert.Equal(t, "0", table.FirstTimestamp)
	assert.Equal(t, "1", table.LastTimestamp)
}

func TestParse_MalformedCellsAreSkipped(t *testing.T) {
	input := "Time,Widget\n0,5\n1,\n2,N/A\n3,7\n"

	var rejected []*helpers.CellParseError
	table, err := Parse(strings.NewReader(input), Options{
		OnRejectedCell: func(e *helpers.CellParseError) { rejected = append(rejected, e) },
	})
	assert.Nil(t, err)
	assert.Equal(t, []float64{5, 7}, table.Series["Widget"])
	assert.Equal(t, 4, table.Rows)
	assert.Equal(t, 2, table.RejectedCells)
	assert.Equal(t, 2, len(rejected))
	assert.Equal(t, 2, rejected[0].Row)
	assert.Equal(t, "Widget", rejected[0].Column)
	assert.Equal(t, "N/A", rejected[1].Content)
}

func TestParse_ShortRowsCountAsEmptyCells(t *testing.T) {
	input := "Time,A,B\n0,1,2\n1,3\n"

	table, err := Parse(strings.NewReader(input), Options{})
	assert.Nil(t, err)
	assert.Equal(t, []float64{1, 3}, table.Series["A"])
	assert.Equal(t, []float64{2}, table.Series["B"])
	assert.Equal(t, 1, table.RejectedCells)
}

func TestParse_HeaderOnly(t *testing.T) {
	table, err := Parse(strings.NewReader("Time,A,B\n"), Options{})
	assert.Nil(t, err)
	assert.Equal(t, 0, table.Rows)
	assert.Equal(t, 2, len(table.Names))
	assert.Equal(t, 0, len(table.Series["A"]))
}

func TestParse_DuplicateAndBlankHeaders(t *testing.T) {
	input := "Time,A,A,,A\n0,1,2,3,4\n"

	table, err := Parse(strings.NewReader(input), Options{})
	assert.Nil(t, err)
	assert.Equal(t, []string{"A", "A (2)", "Column 4", "A (3)"}, table.Names)
	assert.Equal(t, []float64{2}, table.Series["A (2)"])
	assert.Equal(t, []float64{3}, table.Series["Column 4"])
}

func TestParse_PerfmonHeader(t *testing.T) {
	input := "\ufeff\"(PDH-CSV 4.0) (W. Europe Standard Time)(-60)\",\"\\\\HOST\\Processor(_Total)\\% Processor Time\"\n" +
		"\"10/16/2026 10:00:00.000\",\"12.5\"\n" +
		"\"10/16/2026 10:00:01.000\",\" \"\n"

	table, err := Parse(strings.NewReader(input), Options{})
	assert.Nil(t, err)
	assert.Equal(t, "(PDH-CSV 4.0) (W. Europe Standard Time)(-60)", table.TimestampColumn)
	assert.Equal(t, []string{`\\HOST\Processor(_Total)\% Processor Time`}, table.Names)
	assert.Equal(t, []float64{12.5}, table.Series[`\\HOST\Processor(_Total)\% Processor Time`])
	assert.Equal(t, 1, table.RejectedCells)
	assert.Equal(t, "10/16/2026 10:00:01.000", table.LastTimestamp)
}

func TestParse_Delimiter(t *testing.T) {
	input := "Time;A\n0;1.5\n"

	table, err := Parse(strings.NewReader(input), Options{Delimiter: ';'})
	assert.Nil(t, err)
	assert.Equal(t, []float64{1.5}, table.Series["A"])
}

func TestParse_UTF16WithBOM(t *testing.T) {
	encoded, err := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewEncoder().String("Time,Memory\\Available MBytes\n0,2048\n1,1024\n")
	assert.Nil(t, err)

	// the BOM wins over the configured encoding
	table, err := Parse(strings.NewReader(encoded), Options{Encoding: "utf-8"})
	assert.Nil(t, err)
	assert.Equal(t, []string{`Memory\Available MBytes`}, table.Names)
	assert.Equal(t, []float64{2048, 1024}, table.Series[`Memory\Available MBytes`])
}

func TestParse_Windows1252(t *testing.T) {
	encoded, err := charmap.Windows1252.NewEncoder().String("Time,Température\n0,21\n")
	assert.Nil(t, err)

	table, err := Parse(strings.NewReader(encoded), Options{Encoding: "windows-1252"})
	assert.Nil(t, err)
	assert.Equal(t, []string{"Température"}, table.Names)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		opts  Options
	}{
		{name: "no rows at all", input: ""},
		{name: "timestamp column only", input: "Time\n0\n"},
		{name: "unknown encoding", input: "Time,A\n0,1\n", opts: Options{Encoding: "ebcdic"}},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			table, err := Parse(strings.NewReader(test.input), test.opts)
			assert.True(t, table == nil)

			var loadErr *helpers.DataLoadError
			assert.True(t, errors.As(err, &loadErr))
		})
	}
}

func TestLoad(t *testing.T) {
	content := []byte("Time,% CPU Usage\n0,10\n1,20\n")
	path := writeFile(t, "Performance Counter.csv", content)

	table, err := Load(path, Options{})
	assert.Nil(t, err)
	assert.Equal(t, "Performance Counter.csv", table.Source)
	assert.Equal(t, Fingerprint(content), table.Fingerprint)
	assert.Equal(t, 16, len(table.Fingerprint))
}

func TestLoad_Errors(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name string
		path string
		opts Options
	}{
		{name: "zero-byte file", path: writeFile(t, "empty.csv", nil)},
		{name: "whitespace only", path: writeFile(t, "blank.csv", []byte("  \r\n\n"))},
		{name: "missing file", path: filepath.Join(dir, "missing.csv")},
		{name: "directory", path: dir},
		{name: "over the size limit", path: writeFile(t, "big.csv", []byte("Time,A\n0,1\n")), opts: Options{MaxFileBytes: 4}},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			table, err := Load(test.path, test.opts)
			assert.True(t, table == nil)

			var loadErr *helpers.DataLoadError
			assert.True(t, errors.As(err, &loadErr))
			assert.Equal(t, test.path, loadErr.Path)
		})
	}
}

func TestFingerprint(t *testing.T) {
	assert.Equal(t, Fingerprint([]byte("a,b\n")), Fingerprint([]byte("a,b\n")))
	assert.False(t, Fingerprint([]byte("a,b\n")) == Fingerprint([]byte("a,c\n")))
}

func TestParseCell(t *testing.T) {
	tests := []struct {
		cell    string
		want    float64
		wantErr bool
	}{
		{cell: "10", want: 10},
		{cell: " 1.5e3 ", want: 1500},
		{cell: "-0.25", want: -0.25},
		{cell: "", wantErr: true},
		{cell: "   ", wantErr: true},
		{cell: "N/A", wantErr: true},
		{cell: "NaN", wantErr: true},
		{cell: "Inf", wantErr: true},
		{cell: "-Infinity", wantErr: true},
		{cell: "12,5", wantErr: true},
		{cell: "0x1p4", wantErr: true},
		{cell: "-0X10", wantErr: true},
		{cell: "0x_1p0", wantErr: true},
		{cell: "007", want: 7},
	}

	for _, test := range tests {
		t.Run(test.cell, func(t *testing.T) {
			got, err := ParseCell(test.cell)
			assert.Equal(t, test.wantErr, err != nil)
			assert.Equal(t, test.want, got)
		})
	}
}
