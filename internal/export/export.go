// Package export writes flattened analysis rows as CSV, JSON, YAML or XLSX.
//
// Rows are single-level maps as produced by chessinsight.Flatten. The column
// set of a table is the sorted union of the keys of all rows; cells missing
// from a row, nil values and empty nested maps are written as empty cells.
package export

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/samber/lo"
	"github.com/xuri/excelize/v2"
	"gopkg.in/yaml.v3"
)

// ErrUnknownFormat indicates an unsupported export format.
var ErrUnknownFormat = errors.New("export: unknown format")

// Format is an output format.
type Format string

// Supported formats.
const (
	CSV  Format = "csv"
	JSON Format = "json"
	YAML Format = "yaml"
	XLSX Format = "xlsx"
)

// SheetName is the worksheet XLSX rows are written to.
const SheetName = "Games"

// Formats returns the supported formats.
func Formats() []Format {
	return []Format{CSV, JSON, YAML, XLSX}
}

// ParseFormat parses a format name, case-insensitively. "yml" is accepted
// for YAML.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	if f == "yml" {
		return YAML, nil
	}
	if !slices.Contains(Formats(), f) {
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
	}
	return f, nil
}

// FormatFromPath picks the format from a file extension.
func FormatFromPath(path string) (Format, error) {
	return ParseFormat(strings.TrimPrefix(filepath.Ext(path), "."))
}

// Columns returns the sorted union of the keys of rows.
func Columns(rows []map[string]any) []string {
	cols := lo.Uniq(lo.FlatMap(rows, func(row map[string]any, _ int) []string {
		return lo.Keys(row)
	}))
	slices.Sort(cols)
	return cols
}

// Write renders rows in format f.
func Write(w io.Writer, f Format, rows []map[string]any) error {
	switch f {
	case CSV:
		return WriteCSV(w, rows)
	case JSON:
		return WriteJSON(w, rows)
	case YAML:
		return WriteYAML(w, rows)
	case XLSX:
		return WriteXLSX(w, rows)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, f)
	}
}

// WriteFile writes rows to path in the format its extension names.
func WriteFile(path string, rows []map[string]any) (err error) {
	f, err := FormatFromPath(path)
	if err != nil {
		return err
	}

	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer func() {
		if cerr := out.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("closing %s: %w", path, cerr)
		}
	}()

	return Write(out, f, rows)
}

// WriteCSV writes a header line followed by one line per row.
func WriteCSV(w io.Writer, rows []map[string]any) error {
	cols := Columns(rows)
	cw := csv.NewWriter(w)

	if err := cw.Write(cols); err != nil {
		return fmt.Errorf("writing CSV header: %w", err)
	}
	record := make([]string, len(cols))
	for i, row := range rows {
		for j, col := range cols {
			record[j] = cellString(row[col])
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("writing CSV row %d: %w", i, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteJSON writes rows as an indented JSON array.
func WriteJSON(w io.Writer, rows []map[string]any) error {
	if rows == nil {
		rows = []map[string]any{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(rows); err != nil {
		return fmt.Errorf("encoding JSON: %w", err)
	}
	return nil
}

// WriteYAML writes rows as a YAML sequence.
func WriteYAML(w io.Writer, rows []map[string]any) error {
	if rows == nil {
		rows = []map[string]any{}
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(rows); err != nil {
		return fmt.Errorf("encoding YAML: %w", err)
	}
	return enc.Close()
}

// WriteXLSX writes rows to a single worksheet with a header row.
// Numbers stay numeric cells.
func WriteXLSX(w io.Writer, rows []map[string]any) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return fmt.Errorf("naming sheet: %w", err)
	}

	cols := Columns(rows)
	header := make([]any, len(cols))
	for i, col := range cols {
		header[i] = col
	}
	if err := setRow(f, 1, header); err != nil {
		return err
	}

	for i, row := range rows {
		cells := make([]any, len(cols))
		for j, col := range cols {
			cells[j] = cellValue(row[col])
		}
		if err := setRow(f, i+2, cells); err != nil {
			return err
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("writing XLSX: %w", err)
	}
	return nil
}

func setRow(f *excelize.File, n int, cells []any) error {
	axis, err := excelize.CoordinatesToCellName(1, n)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(SheetName, axis, &cells); err != nil {
		return fmt.Errorf("writing XLSX row %d: %w", n, err)
	}
	return nil
}

// cellValue keeps numbers and booleans typed and renders the rest as text.
func cellValue(v any) any {
	switch v := v.(type) {
	case int, int64, float64, bool:
		return v
	default:
		return cellString(v)
	}
}

func cellString(v any) string {
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return v
	case map[string]any:
		if len(v) == 0 {
			return ""
		}
		return fmt.Sprint(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case bool:
		return strconv.FormatBool(v)
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}
