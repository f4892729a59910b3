// internal/api/routes.go
package api

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func (s *Server) registerRoutes() {
	e := s.echo

	e.GET("/products", s.getProducts)
	e.POST("/chat", s.postChat)

	e.GET("/health", s.health)
	e.GET("/ready", s.ready)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	if s.cfg.StaticDir != "" {
		e.Static("/", s.cfg.StaticDir)
	}
}
