package server

import (
	"context"
	"fmt"
	"sync"

	"github.com/grachmannico95/shopease-be/internal/config"
	"github.com/grachmannico95/shopease-be/internal/handler"
	"github.com/grachmannico95/shopease-be/internal/middleware"
	"github.com/grachmannico95/shopease-be/pkg/logger"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
)

// multipartOverhead is headroom for multipart framing on top of the file
// size limit.
const multipartOverhead = 1 << 20

type Handlers struct {
	Offers    *handler.OfferHandler
	Sales     *handler.SalesHandler
	Catalog   *handler.CatalogHandler
	Feedback  *handler.FeedbackHandler
	Analytics *handler.AnalyticsHandler
	Health    *handler.HealthHandler
}

type Server struct {
	echo     *echo.Echo
	cfg      *config.Config
	logger   *logger.Logger
	handlers Handlers
	setup    sync.Once
}

func New(cfg *config.Config, log *logger.Logger, handlers Handlers) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewRequestValidator()
	e.HTTPErrorHandler = handler.ErrorHandler(log)

	return &Server{
		echo:     e,
		cfg:      cfg,
		logger:   log,
		handlers: handlers,
	}
}

func (s *Server) Start() error {
	s.init()

	addr := fmt.Sprintf("%s:%s", s.cfg.Server.Host, s.cfg.Server.Port)
	s.logger.Info(context.Background(), "Starting HTTP server",
		"address", addr,
	)

	return s.echo.Start(addr)
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info(ctx, "Shutting down HTTP server")
	return s.echo.Shutdown(ctx)
}

func (s *Server) init() {
	s.setup.Do(func() {
		s.setupMiddleware()
		s.setupRoutes()
	})
}

func (s *Server) setupMiddleware() {
	s.echo.Use(echoMiddleware.Recover())
	s.echo.Use(echoMiddleware.CORSWithConfig(echoMiddleware.CORSConfig{
		AllowOrigins:  []string{s.cfg.Server.CORSOrigin},
		ExposeHeaders: []string{middleware.HeaderTraceID, echo.HeaderContentDisposition},
	}))
	s.echo.Use(middleware.RequestID())
	s.echo.Use(middleware.Logging(s.logger))
}

func (s *Server) setupRoutes() {
	h := s.handlers
	uploadLimit := echoMiddleware.BodyLimit(
		fmt.Sprintf("%dK", (s.cfg.Ingest.MaxUploadBytes+multipartOverhead)/1024),
	)

	s.echo.GET("/health", h.Health.Check)

	api := s.echo.Group("/api")

	api.GET("/offers", h.Offers.List)
	api.POST("/offers", h.Offers.Create)
	api.POST("/offers/bulk", h.Offers.Bulk, uploadLimit)
	api.GET("/offers/template", h.Offers.Template)
	api.PUT("/offers/:id", h.Offers.Update)
	api.DELETE("/offers/:id", h.Offers.Delete)

	api.POST("/sales/upload", h.Sales.Upload, uploadLimit)
	api.GET("/sales/template", h.Sales.Template)

	api.GET("/stores", h.Catalog.Stores)
	api.GET("/sections", h.Catalog.Sections)
	api.GET("/categories", h.Catalog.Categories)

	api.GET("/feedback/questions", h.Feedback.Questions)
	api.POST("/feedback/submit", h.Feedback.Submit)

	api.POST("/analytics/scan", h.Analytics.Scan)
	api.GET("/analytics/overview", h.Analytics.Overview)
	api.GET("/analytics/daily-scans", h.Analytics.DailyScans)
	api.GET("/analytics/feedback-summary", h.Analytics.FeedbackSummary)
}

func (s *Server) Handler() *echo.Echo {
	s.init()
	return s.echo
}
