package handler

import (
	"bytes"
	"fmt"
	"net/http"
	"strings"

	"github.com/grachmannico95/shopease-be/internal/domain"
	"github.com/grachmannico95/shopease-be/internal/spreadsheet"
	"github.com/grachmannico95/shopease-be/pkg/logger"
	"github.com/labstack/echo/v4"
)

// writeTemplate sends sheet as an attachment in the format named by the
// "format" query parameter. A workbook that fails to build is sent as CSV.
func writeTemplate(c echo.Context, log *logger.Logger, sheet spreadsheet.Sheet) error {
	ctx := c.Request().Context()

	format, err := spreadsheet.ParseFormat(strings.ToLower(c.QueryParam("format")))
	if err != nil {
		return respondError(c, log, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err))
	}

	var buf bytes.Buffer
	if err := sheet.Write(&buf, format); err != nil {
		if format == spreadsheet.FormatCSV {
			log.Error(ctx, "Failed to build template", "template", sheet.Name, "error", err)
			return c.JSON(http.StatusInternalServerError, errorResponse{Error: "Could not generate template"})
		}

		log.Warn(ctx, "Workbook template failed, falling back to CSV", "template", sheet.Name, "error", err)
		format = spreadsheet.FormatCSV
		buf.Reset()
		if err := sheet.Write(&buf, format); err != nil {
			log.Error(ctx, "Failed to build template", "template", sheet.Name, "error", err)
			return c.JSON(http.StatusInternalServerError, errorResponse{Error: "Could not generate template"})
		}
	}

	c.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf("attachment; filename=%s", sheet.Filename(format)))
	return c.Blob(http.StatusOK, format.ContentType(), buf.Bytes())
}
