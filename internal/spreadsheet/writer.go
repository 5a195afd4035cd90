package spreadsheet

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// Sheet is a header plus rows of plain cell values, ready to be written as a
// workbook or CSV.
type Sheet struct {
	Name    string
	Headers []string
	Rows    [][]any
}

func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case "", FormatXLSX:
		return FormatXLSX, nil
	case FormatCSV:
		return FormatCSV, nil
	default:
		return "", fmt.Errorf("unsupported format %q", s)
	}
}

func (f Format) ContentType() string {
	if f == FormatCSV {
		return "text/csv; charset=utf-8"
	}
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

func (s Sheet) Filename(format Format) string {
	return fmt.Sprintf("%s_template.%s", s.Name, format)
}

// Write encodes the sheet in the requested format.
func (s Sheet) Write(w io.Writer, format Format) error {
	if format == FormatCSV {
		return s.WriteCSV(w)
	}
	return s.WriteXLSX(w)
}

func (s Sheet) WriteXLSX(w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	sheetName := s.Name
	if sheetName == "" {
		sheetName = "Sheet1"
	}
	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
	})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}

	header := make([]any, len(s.Headers))
	for i, h := range s.Headers {
		header[i] = h
	}
	if err := f.SetSheetRow(sheetName, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	if len(s.Headers) > 0 {
		lastCol, err := excelize.ColumnNumberToName(len(s.Headers))
		if err != nil {
			return err
		}
		if err := f.SetCellStyle(sheetName, "A1", lastCol+"1", headerStyle); err != nil {
			return fmt.Errorf("style header: %w", err)
		}
		if err := f.SetColWidth(sheetName, "A", lastCol, 18); err != nil {
			return fmt.Errorf("set column width: %w", err)
		}
	}

	for i, row := range s.Rows {
		cells := make([]any, len(row))
		for j, v := range row {
			cells[j] = xlsxValue(v)
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheetName, cell, &cells); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func (s Sheet) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(s.Headers); err != nil {
		return err
	}
	for _, row := range s.Rows {
		record := make([]string, len(row))
		for i, v := range row {
			record[i] = cellText(v)
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// xlsxValue maps values excelize has no cell type for onto ones it has.
func xlsxValue(v any) any {
	if d, ok := v.(decimal.Decimal); ok {
		f, _ := d.Float64()
		return f
	}
	return v
}

func cellText(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case bool:
		return strconv.FormatBool(t)
	case decimal.Decimal:
		return t.String()
	case fmt.Stringer:
		return t.String()
	default:
		return fmt.Sprint(t)
	}
}
