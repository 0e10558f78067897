package dossier

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatCSV, "":
		return FormatCSV, nil
	case FormatXLSX:
		return FormatXLSX, nil
	}
	return "", fmt.Errorf("unsupported export format %q", s)
}

func (f Format) ContentType() string {
	if f == FormatXLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv; charset=utf-8"
}

func (f Format) Extension() string {
	return "." + string(f)
}

// Table is a header row plus one normalized row per dossier.
type Table struct {
	Header []string
	Rows   [][]string
}

// BuildTable flattens every dossier against the same field list so all rows
// share the header's width.
func BuildTable(fields []FieldDef, dossiers []Dossier) Table {
	t := Table{
		Header: ExportHeaders(fields),
		Rows:   make([][]string, 0, len(dossiers)),
	}
	for _, d := range dossiers {
		t.Rows = append(t.Rows, NormalizeRow(dataWithFields(d, fields)))
	}
	return t
}

func (t Table) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Header); err != nil {
		return fmt.Errorf("error writing CSV header: %w", err)
	}
	if err := cw.WriteAll(t.Rows); err != nil {
		return fmt.Errorf("error writing CSV rows: %w", err)
	}
	return nil
}

const xlsxSheetName = "Dossiers"

func (t Table) WriteXLSX(w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", xlsxSheetName); err != nil {
		return fmt.Errorf("error naming sheet: %w", err)
	}

	sw, err := f.NewStreamWriter(xlsxSheetName)
	if err != nil {
		return fmt.Errorf("error opening sheet writer: %w", err)
	}

	if err := writeXLSXRow(sw, 1, t.Header); err != nil {
		return err
	}
	for i, row := range t.Rows {
		if err := writeXLSXRow(sw, i+2, row); err != nil {
			return err
		}
	}

	if err := sw.Flush(); err != nil {
		return fmt.Errorf("error flushing sheet: %w", err)
	}
	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("error writing workbook: %w", err)
	}
	return nil
}

func writeXLSXRow(sw *excelize.StreamWriter, rowNumber int, values []string) error {
	cell, err := excelize.CoordinatesToCellName(1, rowNumber)
	if err != nil {
		return err
	}
	cells := make([]interface{}, len(values))
	for i, v := range values {
		cells[i] = v
	}
	if err := sw.SetRow(cell, cells); err != nil {
		return fmt.Errorf("error writing row %d: %w", rowNumber, err)
	}
	return nil
}

// Write encodes the table in the given format.
func (t Table) Write(w io.Writer, format Format) error {
	switch format {
	case FormatCSV:
		return t.WriteCSV(w)
	case FormatXLSX:
		return t.WriteXLSX(w)
	}
	return fmt.Errorf("unsupported export format %q", format)
}
