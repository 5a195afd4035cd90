package handler

import (
	"fmt"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
)

type uploadedFile struct {
	io.ReadCloser
	name string
}

// openUpload returns the multipart "file" field, refusing files above limit.
func openUpload(c echo.Context, limit int64) (*uploadedFile, error) {
	header, err := c.FormFile("file")
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "File is required")
	}
	if limit > 0 && header.Size > limit {
		return nil, echo.NewHTTPError(http.StatusRequestEntityTooLarge,
			fmt.Sprintf("File is too large (limit is %d bytes)", limit))
	}

	src, err := header.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload: %w", err)
	}
	return &uploadedFile{ReadCloser: src, name: header.Filename}, nil
}
