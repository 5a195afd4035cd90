package spreadsheet

import (
	"bytes"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSheet_WriteCSV(t *testing.T) {
	sheet := Sheet{
		Name:    "sales",
		Headers: []string{"store_slug", "sale_date", "total_amount", "customer_count"},
		Rows: [][]any{
			{"demo-store", "2025-08-01", 1250.5, 8},
			{"demo-store", "2025-08-02", decimal.RequireFromString("980.75"), nil},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, sheet.WriteCSV(&buf))

	expected := "store_slug,sale_date,total_amount,customer_count\n" +
		"demo-store,2025-08-01,1250.5,8\n" +
		"demo-store,2025-08-02,980.75,\n"
	assert.Equal(t, expected, buf.String())
}

func TestSheet_Filename(t *testing.T) {
	assert.Equal(t, "offers_template.xlsx", Sheet{Name: "offers"}.Filename(FormatXLSX))
	assert.Equal(t, "sales_template.csv", Sheet{Name: "sales"}.Filename(FormatCSV))
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, FormatXLSX, f)

	f, err = ParseFormat("csv")
	require.NoError(t, err)
	assert.Equal(t, FormatCSV, f)
	assert.Equal(t, "text/csv; charset=utf-8", f.ContentType())

	_, err = ParseFormat("pdf")
	assert.Error(t, err)
}
