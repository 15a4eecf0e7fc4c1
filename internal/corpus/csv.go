package corpus

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"
)

// Column names recognized in corpus CSV files. Title and description are
// required; date and source are optional.
const (
	ColumnTitle       = "TITLE"
	ColumnDescription = "DESCRIPTION"
	ColumnDate        = "MOD_DATE"
	ColumnSource      = "SOURCE_NAME"
)

// dateLayouts are tried in order when parsing the optional date column.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
	"01/02/2006",
}

// LoadCSV reads a corpus CSV file and returns documents in row order.
// Document ids are 0-based row offsets. Missing optional fields are left as
// zero values; a missing required column is an error.
func LoadCSV(path string) ([]Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open corpus file: %w", err)
	}
	defer f.Close()

	docs, err := ReadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("read corpus %s: %w", path, err)
	}

	slog.Info("corpus_loaded",
		slog.String("path", path),
		slog.Int("documents", len(docs)))
	return docs, nil
}

// ReadCSV parses corpus records from r. The first row is the header.
func ReadCSV(r io.Reader) ([]Document, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.ToUpper(strings.TrimSpace(name))] = i
	}
	for _, required := range []string{ColumnTitle, ColumnDescription} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("missing required column %q (have: %s)", required, strings.Join(header, ", "))
		}
	}

	var docs []Document
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", len(docs)+1, err)
		}

		doc := Document{
			ID:          len(docs),
			Title:       field(record, cols, ColumnTitle),
			Description: field(record, cols, ColumnDescription),
			Source:      field(record, cols, ColumnSource),
		}
		if raw := field(record, cols, ColumnDate); raw != "" {
			doc.Date = parseDate(raw)
		}
		docs = append(docs, doc)
	}

	return docs, nil
}

func field(record []string, cols map[string]int, name string) string {
	idx, ok := cols[name]
	if !ok || idx >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[idx])
}

// parseDate tries the known layouts; an unparseable date is dropped rather
// than failing the load, since the date column is advisory.
func parseDate(raw string) time.Time {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t
		}
	}
	return time.Time{}
}
