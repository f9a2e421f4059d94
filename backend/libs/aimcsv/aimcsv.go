// Package aimcsv reads and writes session exports of the data logger.
//
// An export starts with a fixed block of metadata lines, blank ones included, followed by
// the channel header, a units row, and the samples. Cells that are not finite numbers load
// as missing values.
package aimcsv

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"nmsportal/backend/libs/derive"
)

// MetadataRows is the number of physical lines preceding the header: 13 metadata lines
// and a blank separator.
const MetadataRows = 14

// ErrNoHeader is returned when the file ends before the header and units rows.
var ErrNoHeader = errors.New("aimcsv: header or units row missing")

// ReadFile loads a session export from disk.
func ReadFile(path string) (*derive.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("aimcsv: open %s: %w", path, err)
	}
	defer f.Close()

	table, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("aimcsv: %s: %w", path, err)
	}
	return table, nil
}

// Read parses a session export.
func Read(r io.Reader) (*derive.Table, error) {
	// The csv reader drops blank lines, so metadata is skipped line by line first.
	br := bufio.NewReader(r)
	for i := 0; i < MetadataRows; i++ {
		if _, err := br.ReadString('\n'); err != nil {
			if errors.Is(err, io.EOF) {
				return nil, ErrNoHeader
			}
			return nil, fmt.Errorf("read metadata line %d: %w", i+1, err)
		}
	}

	reader := csv.NewReader(br)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrNoHeader
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	names := uniqueNames(header)

	// Units row, skipped by position.
	if _, err := reader.Read(); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrNoHeader
		}
		return nil, fmt.Errorf("read units row: %w", err)
	}

	columns := make([][]float64, len(names))
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read sample: %w", err)
		}
		for c := range columns {
			value := derive.Missing
			if c < len(record) {
				value = parseCell(record[c])
			}
			columns[c] = append(columns[c], value)
		}
	}
	for c := range columns {
		if columns[c] == nil {
			columns[c] = []float64{}
		}
	}

	return derive.NewTable(names, columns)
}

func parseCell(cell string) float64 {
	cell = strings.TrimSpace(cell)
	if cell == "" {
		return derive.Missing
	}
	v, err := strconv.ParseFloat(cell, 64)
	if err != nil || derive.IsMissing(v) {
		return derive.Missing
	}
	return v
}

// uniqueNames trims header cells and suffixes repeats with ".1", ".2", ...
// Blank cells become "Unnamed: <index>".
func uniqueNames(header []string) []string {
	names := make([]string, len(header))
	taken := make(map[string]bool, len(header))
	for i, raw := range header {
		name := strings.TrimSpace(raw)
		if name == "" {
			name = fmt.Sprintf("Unnamed: %d", i)
		}
		candidate := name
		for n := 1; taken[candidate]; n++ {
			candidate = fmt.Sprintf("%s.%d", name, n)
		}
		taken[candidate] = true
		names[i] = candidate
	}
	return names
}

// Write emits a table as plain CSV: a header row then one row per sample.
// Missing values are written as empty cells.
func Write(w io.Writer, table *derive.Table) error {
	names := table.Names()
	writer := csv.NewWriter(w)
	if err := writer.Write(names); err != nil {
		return fmt.Errorf("aimcsv: write header: %w", err)
	}

	columns := make([][]float64, len(names))
	for i, name := range names {
		columns[i], _ = table.Column(name)
	}

	record := make([]string, len(names))
	for row := 0; row < table.Len(); row++ {
		for c := range columns {
			record[c] = formatCell(columns[c][row])
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("aimcsv: write row %d: %w", row, err)
		}
	}

	writer.Flush()
	return writer.Error()
}

func formatCell(v float64) string {
	if derive.IsMissing(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
