package handler

import (
	"net/http"
	"strconv"

	"github.com/grachmannico95/shopease-be/internal/domain"
	"github.com/grachmannico95/shopease-be/internal/ingest"
	"github.com/grachmannico95/shopease-be/internal/service"
	"github.com/grachmannico95/shopease-be/pkg/logger"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

type OfferHandler struct {
	service     service.OfferService
	logger      *logger.Logger
	uploadLimit int64
}

func NewOfferHandler(service service.OfferService, log *logger.Logger, uploadLimit int64) *OfferHandler {
	return &OfferHandler{
		service:     service,
		logger:      log,
		uploadLimit: uploadLimit,
	}
}

type bulkOffersResponse struct {
	Inserted  int                 `json:"inserted"`
	RowsFound int                 `json:"rows_found"`
	Skipped   []ingest.SkippedRow `json:"skipped"`
	Items     []domain.Offer      `json:"items"`
	DryRun    bool                `json:"dry_run,omitempty"`
}

type createOfferRequest struct {
	StoreID            string           `json:"store_id"`
	StoreSlug          string           `json:"store_slug"`
	SectionID          string           `json:"section_id"`
	SectionName        string           `json:"section_name"`
	CategoryID         string           `json:"category_id"`
	CategoryName       string           `json:"category_name"`
	Title              string           `json:"title" validate:"required,max=255"`
	Description        string           `json:"description"`
	OriginalPrice      *decimal.Decimal `json:"original_price"`
	OfferPrice         *decimal.Decimal `json:"offer_price"`
	DiscountPercentage *int             `json:"discount_percentage" validate:"omitempty,min=0,max=100"`
	ImageURL           string           `json:"image_url" validate:"omitempty,url"`
	ValidFrom          *domain.Date     `json:"valid_from"`
	ValidUntil         *domain.Date     `json:"valid_until"`
	IsActive           *bool            `json:"is_active"`
}

// Bulk imports offers from an uploaded spreadsheet. With dryRun=true the
// rows are checked and returned but not stored.
func (h *OfferHandler) Bulk(c echo.Context) error {
	ctx := c.Request().Context()

	file, err := openUpload(c, h.uploadLimit)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	defer file.Close()

	dryRun, _ := strconv.ParseBool(c.QueryParam("dryRun"))

	h.logger.Info(ctx, "Handling offers upload",
		"filename", file.name,
		"dry_run", dryRun,
	)

	var res *ingest.Result
	if dryRun {
		res, err = h.service.PreviewOffers(ctx, file)
	} else {
		res, err = h.service.ImportOffers(ctx, file)
	}
	if err != nil {
		return respondError(c, h.logger, err)
	}

	status := http.StatusCreated
	if dryRun {
		status = http.StatusOK
	}
	return c.JSON(status, bulkOffersResponse{
		Inserted:  res.Inserted,
		RowsFound: res.RowsFound,
		Skipped:   skippedOrEmpty(res.Skipped),
		Items:     res.Offers,
		DryRun:    dryRun,
	})
}

func (h *OfferHandler) List(c echo.Context) error {
	ctx := c.Request().Context()

	preview, _ := strconv.ParseBool(c.QueryParam("preview"))
	limit, _ := strconv.Atoi(c.QueryParam("limit"))

	offers, err := h.service.ListOffers(ctx, service.OfferQuery{
		StoreID:    c.QueryParam("storeId"),
		SectionID:  c.QueryParam("sectionId"),
		CategoryID: c.QueryParam("categoryId"),
		Preview:    preview,
		Limit:      limit,
	})
	if err != nil {
		return respondError(c, h.logger, err)
	}
	if offers == nil {
		offers = []domain.Offer{}
	}
	return c.JSON(http.StatusOK, offers)
}

func (h *OfferHandler) Create(c echo.Context) error {
	ctx := c.Request().Context()

	var req createOfferRequest
	if err := c.Bind(&req); err != nil {
		return respondError(c, h.logger, err)
	}
	if err := c.Validate(&req); err != nil {
		return respondError(c, h.logger, err)
	}

	offer, err := h.service.CreateOffer(ctx, service.CreateOfferInput{
		StoreID:            req.StoreID,
		StoreSlug:          req.StoreSlug,
		SectionID:          req.SectionID,
		SectionName:        req.SectionName,
		CategoryID:         req.CategoryID,
		CategoryName:       req.CategoryName,
		Title:              req.Title,
		Description:        req.Description,
		OriginalPrice:      req.OriginalPrice,
		OfferPrice:         req.OfferPrice,
		DiscountPercentage: req.DiscountPercentage,
		ImageURL:           req.ImageURL,
		ValidFrom:          req.ValidFrom,
		ValidUntil:         req.ValidUntil,
		IsActive:           req.IsActive,
	})
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusCreated, offer)
}

func (h *OfferHandler) Update(c echo.Context) error {
	ctx := c.Request().Context()

	var patch domain.OfferPatch
	if err := c.Bind(&patch); err != nil {
		return respondError(c, h.logger, err)
	}
	if err := c.Validate(&patch); err != nil {
		return respondError(c, h.logger, err)
	}

	offer, err := h.service.UpdateOffer(ctx, c.Param("id"), patch)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, offer)
}

func (h *OfferHandler) Delete(c echo.Context) error {
	if err := h.service.DeleteOffer(c.Request().Context(), c.Param("id")); err != nil {
		return respondError(c, h.logger, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *OfferHandler) Template(c echo.Context) error {
	return writeTemplate(c, h.logger, h.service.Template(c.QueryParam("storeSlug")))
}

func skippedOrEmpty(s []ingest.SkippedRow) []ingest.SkippedRow {
	if s == nil {
		return []ingest.SkippedRow{}
	}
	return s
}
