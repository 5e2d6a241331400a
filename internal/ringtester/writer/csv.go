package writer

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// CSVWriter appends one row per operation to a CSV file, writing a header
// only the first time the file is created.
type CSVWriter struct {
	mu      sync.Mutex
	file    *os.File
	writer  *csv.Writer
	flushed bool
}

// NewCSVWriter opens (or creates) filename for append.
func NewCSVWriter(filename string) (*CSVWriter, error) {
	dir := filepath.Dir(filename)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create directory %q: %w", dir, err)
	}

	_, statErr := os.Stat(filename)
	fileExists := statErr == nil

	file, err := os.OpenFile(filename, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open csv file: %w", err)
	}

	w := csv.NewWriter(file)
	if !fileExists {
		if err := w.Write([]string{"timestamp", "run_id", "node", "result", "delay_ms"}); err != nil {
			file.Close()
			return nil, fmt.Errorf("write header: %w", err)
		}
		w.Flush()
	}

	return &CSVWriter{file: file, writer: w}, nil
}

func (cw *CSVWriter) WriteRow(runID, node, result string, delay time.Duration) error {
	cw.mu.Lock()
	defer cw.mu.Unlock()

	if cw.flushed {
		return fmt.Errorf("csv writer already closed")
	}

	record := []string{
		time.Now().Format(time.RFC3339Nano),
		runID,
		node,
		result,
		fmt.Sprintf("%.3f", float64(delay.Milliseconds())),
	}
	if err := cw.writer.Write(record); err != nil {
		return fmt.Errorf("csv write: %w", err)
	}
	return nil
}

func (cw *CSVWriter) Flush() error {
	cw.mu.Lock()
	defer cw.mu.Unlock()
	cw.writer.Flush()
	return cw.writer.Error()
}

func (cw *CSVWriter) Close() error {
	cw.mu.Lock()
	defer cw.mu.Unlock()
	if cw.flushed {
		return nil
	}
	cw.writer.Flush()
	cw.flushed = true
	if err := cw.writer.Error(); err != nil {
		_ = cw.file.Close()
		return fmt.Errorf("flush: %w", err)
	}
	return cw.file.Close()
}
