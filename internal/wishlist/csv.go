package wishlist

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// LoadCSV reads a Goodreads library export and returns the to-read entries.
// Columns are located by header name, the export format gains columns now
// and then. A limit of 0 means no limit.
func LoadCSV(path string, limit int) ([]Entry, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer func() { _ = file.Close() }()

	reader := csv.NewReader(file)
	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[name] = i
	}
	field := func(record []string, name string) string {
		idx, ok := columns[name]
		if !ok || idx >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[idx])
	}

	var entries []Entry
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			slog.Warn("Error reading CSV record", "error", err)
			continue
		}

		if !strings.EqualFold(field(record, "Exclusive Shelf"), "to-read") {
			continue
		}

		isbn := field(record, "ISBN13")
		if isbn == "" {
			isbn = field(record, "ISBN")
		}

		entries = append(entries, Entry{
			Author: field(record, "Author"),
			Title:  field(record, "Title"),
			ISBN:   sanitizeISBN(isbn),
		})
		if limit > 0 && len(entries) >= limit {
			break
		}
	}

	slog.Info("Loaded wish list from CSV", "path", path, "entries", len(entries))
	return entries, nil
}

// sanitizeISBN unwraps the ="9789916127209" form Goodreads uses to stop
// spreadsheets from eating leading zeros.
func sanitizeISBN(value string) string {
	if strings.HasPrefix(value, `="`) && strings.HasSuffix(value, `"`) {
		return value[2 : len(value)-1]
	}
	return value
}
