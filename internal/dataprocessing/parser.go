package dataprocessing

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Supported source formats
const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
)

// DetectFormat infers the source format from a file name.
func DetectFormat(path string) (string, error) {
	lower := strings.ToLower(path)
	switch {
	case strings.HasSuffix(lower, ".csv"), strings.HasSuffix(lower, ".txt"):
		return FormatCSV, nil
	case strings.HasSuffix(lower, ".xlsx"), strings.HasSuffix(lower, ".xlsm"):
		return FormatXLSX, nil
	}
	return "", fmt.Errorf("unsupported file type %q", path)
}

// readCSV returns every record including the header row.
func readCSV(data []byte) ([][]string, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	r.TrimLeadingSpace = true

	var rows [][]string
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				return nil, &LoadError{Line: perr.Line, Reason: "malformed csv", Err: perr.Err}
			}
			return nil, err
		}
		rows = append(rows, rec)
	}
	return rows, nil
}

// readXLSX returns the rows of the named sheet. With no sheet name it
// picks the first sheet whose header row carries the required columns.
func readXLSX(data []byte, sheet string) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	if sheet != "" {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
		}
		return rows, nil
	}

	sheets := f.GetSheetList()
	var first [][]string
	for i, name := range sheets {
		rows, err := f.GetRows(name)
		if err != nil {
			continue
		}
		if i == 0 {
			first = rows
		}
		if len(rows) > 0 {
			if _, missing := resolveLayout(rows[0]); len(missing) == 0 {
				return rows, nil
			}
		}
	}
	if len(sheets) == 0 {
		return nil, errors.New("workbook has no sheets")
	}
	return first, nil
}

// dropBlankRows removes rows whose cells are all empty. Spreadsheets
// frequently carry trailing blank rows.
func dropBlankRows(rows [][]string) ([][]string, []int) {
	kept := make([][]string, 0, len(rows))
	lines := make([]int, 0, len(rows))
	for i, row := range rows {
		blank := true
		for _, c := range row {
			if strings.TrimSpace(c) != "" {
				blank = false
				break
			}
		}
		if !blank {
			kept = append(kept, row)
			lines = append(lines, i+1)
		}
	}
	return kept, lines
}
