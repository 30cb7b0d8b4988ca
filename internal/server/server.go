// Package server exposes the workspace lifecycle over HTTP.
package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"gridworkspaces/internal/errs"
	"gridworkspaces/internal/lifecycle"
)

type Server struct {
	echo   *echo.Echo
	svc    *lifecycle.Service
	logger *zap.Logger
}

type errorBody struct {
	Error string `json:"error"`
}

func New(svc *lifecycle.Service, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	s := &Server{echo: e, svc: svc, logger: logger}
	e.HTTPErrorHandler = s.handleError
	e.Use(middleware.Recover())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:  true,
		LogURI:     true,
		LogStatus:  true,
		LogLatency: true,
		LogError:   true,
		LogValuesFunc: func(_ echo.Context, v middleware.RequestLoggerValues) error {
			logger.Debug("request",
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency),
			)
			return nil
		},
	}))
	s.routes()
	return s
}

func (s *Server) routes() {
	v1 := s.echo.Group("/v1")

	configs := v1.Group("/workspaces-configs")
	configs.POST("", s.createConfig)
	configs.GET("/:id", s.getConfig)
	configs.DELETE("/:id", s.deleteConfig)
	configs.GET("/:id/workspaces", s.listWorkspaces)

	ws := v1.Group("/workspaces")
	ws.POST("", s.duplicateWorkspace)
	ws.GET("/:id", s.getWorkspace)
	ws.PUT("/:id", s.replaceWorkspace)
	ws.PUT("/:id/name", s.renameWorkspace)
	ws.DELETE("/:id", s.deleteWorkspace)

	ws.GET("/:id/panels", s.listPanels)
	ws.POST("/:id/panels", s.upsertPanels)
	ws.DELETE("/:id/panels", s.deletePanels)
	ws.GET("/:id/panels/:panelId", s.getPanel)
	ws.PUT("/:id/panels/:panelId/diagram-config", s.saveDiagramConfig)
	ws.DELETE("/:id/panels/:panelId/diagram-config", s.deleteDiagramConfig)
}

// Handler returns the HTTP handler serving every route.
func (s *Server) Handler() http.Handler { return s.echo }

// Start listens on addr until Shutdown is called. It returns
// http.ErrServerClosed after a clean shutdown.
func (s *Server) Start(addr string) error {
	s.logger.Info("listening", zap.String("addr", addr))
	return s.echo.Start(addr)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

func (s *Server) handleError(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	status, msg := statusOf(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed",
			zap.String("method", c.Request().Method),
			zap.String("path", c.Path()),
			zap.Int("status", status),
			zap.Error(err),
		)
	}
	if c.Request().Method == http.MethodHead {
		err = c.NoContent(status)
	} else {
		err = c.JSON(status, errorBody{Error: msg})
	}
	if err != nil {
		s.logger.Warn("could not write error response", zap.Error(err))
	}
}

func statusOf(err error) (int, string) {
	var he *echo.HTTPError
	switch {
	case errors.As(err, &he):
		if m, ok := he.Message.(string); ok {
			return he.Code, m
		}
		return he.Code, http.StatusText(he.Code)
	case errors.Is(err, errs.ErrNotFound):
		return http.StatusNotFound, err.Error()
	case errors.Is(err, errs.ErrInvalidPanelKind), errors.Is(err, errs.ErrValidation):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, errs.ErrExternalDependency):
		return http.StatusBadGateway, err.Error()
	}
	return http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError)
}
