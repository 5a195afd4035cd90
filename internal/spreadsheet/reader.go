package spreadsheet

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/grachmannico95/shopease-be/internal/domain"
	"github.com/xuri/excelize/v2"
)

type Format string

const (
	FormatXLSX Format = "xlsx"
	FormatCSV  Format = "csv"
)

var (
	zipSignature = []byte("PK\x03\x04")
	oleSignature = []byte{0xD0, 0xCF, 0x11, 0xE0}
	utf8BOM      = []byte{0xEF, 0xBB, 0xBF}
)

// Rows iterates over the data rows of the first sheet of a workbook. The
// first row is the header.
//
//	rows, err := spreadsheet.Open(r)
//	defer rows.Close()
//	for rows.Next() {
//		row := rows.Row()
//	}
//	err = rows.Err()
type Rows struct {
	format  Format
	headers []string
	read    func() ([]string, error)
	close   func() error
	line    int
	current Row
	err     error
}

// Open sniffs the payload and returns a row iterator. It fails with a
// *domain.ParseError when the payload is not a workbook or CSV text.
func Open(r io.Reader) (*Rows, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, &domain.ParseError{Err: fmt.Errorf("read payload: %w", err)}
	}

	switch {
	case len(data) == 0:
		return nil, &domain.ParseError{Err: errors.New("file is empty")}
	case bytes.HasPrefix(data, zipSignature):
		return openXLSX(data)
	case bytes.HasPrefix(data, oleSignature):
		return nil, &domain.ParseError{Err: errors.New("legacy .xls workbooks are not supported, save as .xlsx")}
	default:
		return openCSV(data)
	}
}

func openXLSX(data []byte) (*Rows, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data), excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, &domain.ParseError{Err: fmt.Errorf("open workbook: %w", err)}
	}

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		f.Close()
		return nil, &domain.ParseError{Err: errors.New("workbook has no sheets")}
	}

	sheetRows, err := f.Rows(sheets[0])
	if err != nil {
		f.Close()
		return nil, &domain.ParseError{Err: fmt.Errorf("read sheet %q: %w", sheets[0], err)}
	}

	rows := &Rows{
		format: FormatXLSX,
		read: func() ([]string, error) {
			if !sheetRows.Next() {
				if err := sheetRows.Error(); err != nil {
					return nil, err
				}
				return nil, io.EOF
			}
			return sheetRows.Columns(excelize.Options{RawCellValue: true})
		},
		close: func() error {
			sheetRows.Close()
			return f.Close()
		},
	}

	if err := rows.readHeader(); err != nil {
		rows.Close()
		return nil, err
	}
	return rows, nil
}

func openCSV(data []byte) (*Rows, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	if !utf8.Valid(data) || bytes.IndexByte(data, 0) >= 0 {
		return nil, &domain.ParseError{Err: errors.New("not a spreadsheet: expected .xlsx or CSV text")}
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	reader.LazyQuotes = true

	rows := &Rows{
		format: FormatCSV,
		read:   reader.Read,
		close:  func() error { return nil },
	}

	if err := rows.readHeader(); err != nil {
		return nil, err
	}
	return rows, nil
}

// readHeader consumes the first row. A sheet with no rows at all is valid
// and simply yields nothing.
func (r *Rows) readHeader() error {
	cells, err := r.read()
	if errors.Is(err, io.EOF) {
		return nil
	}
	if err != nil {
		return &domain.ParseError{Err: fmt.Errorf("read header: %w", err)}
	}
	r.line = 1

	r.headers = make([]string, len(cells))
	for i, c := range cells {
		r.headers[i] = NormalizeHeader(c)
	}
	return nil
}

func (r *Rows) Format() Format { return r.format }

func (r *Rows) Headers() []string { return r.headers }

// Next advances to the next non-blank row.
func (r *Rows) Next() bool {
	if r.err != nil || r.headers == nil {
		return false
	}

	for {
		cells, err := r.read()
		if errors.Is(err, io.EOF) {
			return false
		}
		if err != nil {
			r.err = &domain.ParseError{Err: fmt.Errorf("line %d: %w", r.line+1, err)}
			return false
		}
		r.line++

		row := Row{Line: r.line, cells: make(map[string]string, len(r.headers))}
		for i, header := range r.headers {
			if header == "" || i >= len(cells) {
				continue
			}
			if _, exists := row.cells[header]; exists {
				continue
			}
			row.cells[header] = cells[i]
		}

		if row.IsBlank() {
			continue
		}
		r.current = row
		return true
	}
}

func (r *Rows) Row() Row { return r.current }

func (r *Rows) Err() error { return r.err }

func (r *Rows) Close() error {
	if r.close == nil {
		return nil
	}
	err := r.close()
	r.close = nil
	return err
}
