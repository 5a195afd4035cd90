package handler

import (
	"net/http"
	"strconv"

	"github.com/grachmannico95/shopease-be/internal/ingest"
	"github.com/grachmannico95/shopease-be/internal/service"
	"github.com/grachmannico95/shopease-be/pkg/logger"
	"github.com/labstack/echo/v4"
)

type SalesHandler struct {
	service     service.SalesService
	logger      *logger.Logger
	uploadLimit int64
}

func NewSalesHandler(service service.SalesService, log *logger.Logger, uploadLimit int64) *SalesHandler {
	return &SalesHandler{
		service:     service,
		logger:      log,
		uploadLimit: uploadLimit,
	}
}

type salesUploadResponse struct {
	Inserted  int                 `json:"inserted"`
	RowsFound int                 `json:"rows_found"`
	Skipped   []ingest.SkippedRow `json:"skipped"`
	DryRun    bool                `json:"dry_run,omitempty"`
}

func (h *SalesHandler) Upload(c echo.Context) error {
	ctx := c.Request().Context()

	file, err := openUpload(c, h.uploadLimit)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	defer file.Close()

	dryRun, _ := strconv.ParseBool(c.QueryParam("dryRun"))

	h.logger.Info(ctx, "Handling sales upload",
		"filename", file.name,
		"dry_run", dryRun,
	)

	var res *ingest.Result
	if dryRun {
		res, err = h.service.PreviewSales(ctx, file)
	} else {
		res, err = h.service.ImportSales(ctx, file)
	}
	if err != nil {
		return respondError(c, h.logger, err)
	}

	return c.JSON(http.StatusOK, salesUploadResponse{
		Inserted:  res.Inserted,
		RowsFound: res.RowsFound,
		Skipped:   skippedOrEmpty(res.Skipped),
		DryRun:    dryRun,
	})
}

func (h *SalesHandler) Template(c echo.Context) error {
	return writeTemplate(c, h.logger, h.service.Template(c.QueryParam("storeSlug")))
}
