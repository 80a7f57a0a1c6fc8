// Package ioformats reads article URL lists and writes run reports.
package ioformats

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

var (
	ErrNoURLs        = errors.New("no urls found")
	ErrMissingColumn = errors.New("csv must contain a 'url' header column")
)

// ReadURLs reads article URLs from a CSV file with a "url" header column or
// from NDJSON, where each line is either a bare URL or {"url": "..."}.
func ReadURLs(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read url list: %w", err)
	}
	return ParseURLs(bytes.NewReader(data), path)
}

// ParseURLs picks the format from the extension of name. Unknown extensions
// are tried as CSV first, then as NDJSON.
func ParseURLs(r io.Reader, name string) ([]string, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv":
		return ParseCSV(r)
	case ".ndjson", ".jsonl":
		return ParseNDJSON(r)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read url list: %w", err)
	}
	if urls, err := ParseCSV(bytes.NewReader(data)); err == nil {
		return urls, nil
	}
	return ParseNDJSON(bytes.NewReader(data))
}

// ParseCSV returns the non-empty values of the "url" column.
func ParseCSV(r io.Reader) ([]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}
	if len(rows) == 0 {
		return nil, ErrNoURLs
	}
	col := -1
	for i, h := range rows[0] {
		if strings.EqualFold(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")), "url") {
			col = i
			break
		}
	}
	if col == -1 {
		return nil, ErrMissingColumn
	}
	var out []string
	for _, row := range rows[1:] {
		if col < len(row) {
			if u := strings.TrimSpace(row[col]); u != "" {
				out = append(out, u)
			}
		}
	}
	if len(out) == 0 {
		return nil, ErrNoURLs
	}
	return out, nil
}

// ParseNDJSON returns one URL per non-blank line.
func ParseNDJSON(r io.Reader) ([]string, error) {
	var out []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "{") {
			var obj struct {
				URL string `json:"url"`
			}
			if err := json.Unmarshal([]byte(line), &obj); err == nil && obj.URL != "" {
				out = append(out, obj.URL)
				continue
			}
		}
		out = append(out, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("scan ndjson: %w", err)
	}
	if len(out) == 0 {
		return nil, ErrNoURLs
	}
	return out, nil
}

// WriteNDJSON writes each item as one JSON line.
func WriteNDJSON(w io.Writer, items ...any) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	for _, it := range items {
		if err := enc.Encode(it); err != nil {
			return err
		}
	}
	return nil
}
