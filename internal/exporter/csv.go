package exporter

import (
	"encoding/csv"
	"fmt"
	"io"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// WriteOptions configures CSV writing behavior
type WriteOptions struct {
	BOMPrefix bool // Add UTF-8 BOM for Excel compatibility
}

// WriteCSV writes one table as CSV
func WriteCSV(w io.Writer, t Table, options WriteOptions) error {
	sw, err := NewStreamWriter(w, t.Headers, options)
	if err != nil {
		return err
	}
	for i, row := range t.Rows {
		if err := sw.WriteRow(row); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}
	return sw.Flush()
}

// StreamWriter writes CSV rows as they are produced
type StreamWriter struct {
	writer *csv.Writer
	record []string
}

// NewStreamWriter writes the optional BOM and the header line
func NewStreamWriter(w io.Writer, headers []string, options WriteOptions) (*StreamWriter, error) {
	if options.BOMPrefix {
		if _, err := w.Write(utf8BOM); err != nil {
			return nil, fmt.Errorf("failed to write BOM: %w", err)
		}
	}

	writer := csv.NewWriter(w)
	if len(headers) > 0 {
		if err := writer.Write(headers); err != nil {
			return nil, fmt.Errorf("failed to write headers: %w", err)
		}
	}
	return &StreamWriter{writer: writer}, nil
}

// WriteRow formats and writes a single row
func (s *StreamWriter) WriteRow(row []any) error {
	s.record = s.record[:0]
	for _, cell := range row {
		s.record = append(s.record, formatCell(cell))
	}
	return s.writer.Write(s.record)
}

// Flush flushes buffered rows and reports any write error
func (s *StreamWriter) Flush() error {
	s.writer.Flush()
	return s.writer.Error()
}
