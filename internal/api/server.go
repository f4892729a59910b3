// internal/api/server.go
package api

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"product-chatbot/internal/common/config"
	apperrors "product-chatbot/internal/common/errors"
	"product-chatbot/internal/common/logger"
	"product-chatbot/internal/common/observability"
	productsearch "product-chatbot/internal/services/catalog/product-search"
	intentrouter "product-chatbot/internal/services/chat/intent-router"
)

// Catalog is what readiness reporting needs from the product store.
type Catalog interface {
	Len() int
}

// DelegateStatus reports whether the generative delegate has credentials.
type DelegateStatus interface {
	Configured() bool
}

type Options struct {
	Config   config.ServerConfig
	Catalog  Catalog
	Search   *productsearch.Handler
	Router   *intentrouter.Handler
	Delegate DelegateStatus
	Obs      *observability.Observability
	Logger   logger.Logger
}

// Server serves the product and chat endpoints plus health and metrics.
type Server struct {
	echo     *echo.Echo
	httpSrv  *http.Server
	cfg      config.ServerConfig
	catalog  Catalog
	search   *productsearch.Handler
	router   *intentrouter.Handler
	delegate DelegateStatus
	obs      *observability.Observability
	logger   logger.Logger
}

func NewServer(opts Options) *Server {
	obs := opts.Obs
	if obs == nil {
		obs = observability.Noop()
	}

	s := &Server{
		echo:     echo.New(),
		cfg:      opts.Config,
		catalog:  opts.Catalog,
		search:   opts.Search,
		router:   opts.Router,
		delegate: opts.Delegate,
		obs:      obs,
		logger:   opts.Logger.With(map[string]interface{}{"component": "api"}),
	}

	e := s.echo
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = apperrors.NewHTTPErrorHandler(s.logger)

	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(requestLogger(s.logger))
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: corsOrigins(s.cfg.CORSOrigins),
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderContentType, echo.HeaderAccept},
	}))
	if s.cfg.BodyLimit != "" {
		e.Use(middleware.BodyLimit(s.cfg.BodyLimit))
	}

	s.registerRoutes()

	s.httpSrv = &http.Server{
		Addr:         s.cfg.Address(),
		Handler:      e,
		ReadTimeout:  config.GetDuration(s.cfg.ReadTimeout),
		WriteTimeout: config.GetDuration(s.cfg.WriteTimeout),
	}
	return s
}

func corsOrigins(origins []string) []string {
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}

// Handler exposes the router for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start blocks serving until Shutdown; it returns http.ErrServerClosed after a clean stop.
func (s *Server) Start() error {
	s.logger.Info("http server listening", map[string]interface{}{
		"address": s.httpSrv.Addr,
	})
	return s.echo.StartServer(s.httpSrv)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpSrv.Shutdown(ctx)
}
