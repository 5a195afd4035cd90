package handler

import (
	"net/http"

	"github.com/grachmannico95/shopease-be/internal/domain"
	"github.com/grachmannico95/shopease-be/internal/service"
	"github.com/grachmannico95/shopease-be/pkg/logger"
	"github.com/labstack/echo/v4"
)

type CatalogHandler struct {
	service service.CatalogService
	logger  *logger.Logger
}

func NewCatalogHandler(service service.CatalogService, log *logger.Logger) *CatalogHandler {
	return &CatalogHandler{
		service: service,
		logger:  log,
	}
}

func (h *CatalogHandler) Stores(c echo.Context) error {
	stores, err := h.service.ListStores(c.Request().Context(), c.QueryParam("search"))
	if err != nil {
		return respondError(c, h.logger, err)
	}
	if stores == nil {
		stores = []domain.Store{}
	}
	return c.JSON(http.StatusOK, stores)
}

func (h *CatalogHandler) Sections(c echo.Context) error {
	sections, err := h.service.ListSections(c.Request().Context(), c.QueryParam("storeId"))
	if err != nil {
		return respondError(c, h.logger, err)
	}
	if sections == nil {
		sections = []domain.Section{}
	}
	return c.JSON(http.StatusOK, sections)
}

func (h *CatalogHandler) Categories(c echo.Context) error {
	categories, err := h.service.ListCategories(c.Request().Context())
	if err != nil {
		return respondError(c, h.logger, err)
	}
	if categories == nil {
		categories = []domain.Category{}
	}
	return c.JSON(http.StatusOK, categories)
}
