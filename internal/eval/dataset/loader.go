package dataset

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/parquet-go/parquet-go"
)

// Loader reads a labelled dataset
type Loader struct {
	datasetPath string
}

// NewLoader creates a new dataset loader
func NewLoader(datasetPath string) *Loader {
	return &Loader{
		datasetPath: datasetPath,
	}
}

// Load loads records from a dataset file (JSONL or Parquet). Relative image
// paths are resolved against the dataset's directory.
func (l *Loader) Load() ([]LabelledItem, error) {
	var (
		items []LabelledItem
		err   error
	)

	ext := strings.ToLower(filepath.Ext(l.datasetPath))
	switch ext {
	case ".parquet":
		items, err = l.loadParquet()
	case ".jsonl", ".json":
		items, err = l.loadJSONL()
	default:
		return nil, fmt.Errorf("unsupported file format: %s (supported: .parquet, .jsonl)", ext)
	}
	if err != nil {
		return nil, err
	}

	base := filepath.Dir(l.datasetPath)
	for i := range items {
		if items[i].ImagePath != "" && !filepath.IsAbs(items[i].ImagePath) {
			items[i].ImagePath = filepath.Join(base, items[i].ImagePath)
		}
		if items[i].ID == "" {
			items[i].ID = fmt.Sprintf("item-%d", i+1)
		}
	}
	return items, nil
}

func (l *Loader) loadJSONL() ([]LabelledItem, error) {
	slog.Debug("Opening JSONL file", "path", l.datasetPath)

	file, err := os.Open(l.datasetPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset file: %w", err)
	}
	defer file.Close()

	var items []LabelledItem
	scanner := bufio.NewScanner(file)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var item LabelledItem
		if err := json.Unmarshal([]byte(line), &item); err != nil {
			return nil, fmt.Errorf("failed to parse JSON at line %d: %w", lineNum, err)
		}
		items = append(items, item)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading dataset: %w", err)
	}

	slog.Debug("Finished reading JSONL file", "total_records", len(items), "total_lines", lineNum)
	return items, nil
}

func (l *Loader) loadParquet() ([]LabelledItem, error) {
	slog.Debug("Opening Parquet file", "path", l.datasetPath)

	file, err := os.Open(l.datasetPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open parquet file: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	pf, err := parquet.OpenFile(file, info.Size())
	if err != nil {
		return nil, fmt.Errorf("failed to open parquet: %w", err)
	}

	reader := parquet.NewGenericReader[LabelledItem](pf)
	defer reader.Close()

	var items []LabelledItem
	rows := make([]LabelledItem, 128)
	for {
		n, err := reader.Read(rows)
		items = append(items, rows[:n]...)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read parquet rows: %w", err)
		}
	}

	slog.Debug("Finished reading Parquet file", "total_records", len(items), "num_row_groups", len(pf.RowGroups()))
	return items, nil
}

// Sample returns the first n items, or all of them when n is negative
func Sample(items []LabelledItem, n int) []LabelledItem {
	if n < 0 || n >= len(items) {
		return items
	}
	return items[:n]
}
