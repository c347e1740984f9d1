// Package exporter turns dashboard views into downloadable tables.
//
// A view is first flattened into one or more Tables by TablesFor. Tables
// are written as CSV (optionally with a UTF-8 BOM so Excel detects the
// encoding) or as an XLSX workbook with one sheet per table.
//
// Example usage:
//
//	tables, err := exporter.TablesFor(services.ViewConcentration, view)
//	if err != nil {
//	    return err
//	}
//	err = exporter.Write(w, exporter.FormatXLSX, tables)
package exporter
