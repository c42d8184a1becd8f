// Package server exposes the simulators over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/theapemachine/errnie"
	"github.com/theapemachine/qsim"
	"github.com/theapemachine/qsim/circuit"
)

// Server routes simulation requests onto the pool.
type Server struct {
	echo   *echo.Echo
	pool   *qsim.Q
	config *qsim.Config
	opts   circuit.Options
}

func NewServer(pool *qsim.Q, cfg *qsim.Config) (*Server, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool cannot be nil")
	}
	if cfg == nil {
		cfg = qsim.NewConfig()
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: cfg.Server.CORSOrigins,
	}))
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)

			errnie.Info(
				"http request - %s %s status=%d duration=%v request_id=%s",
				c.Request().Method,
				c.Request().RequestURI,
				c.Response().Status,
				time.Since(start),
				c.Response().Header().Get(echo.HeaderXRequestID),
			)

			return err
		}
	})

	s := &Server{
		echo:   e,
		pool:   pool,
		config: cfg,
		opts: circuit.Options{
			MaxQubits:           cfg.MaxQubits,
			MaxStabilizerQubits: cfg.MaxStabilizerQubits,
		},
	}

	s.registerRoutes()

	return s, nil
}

func (s *Server) registerRoutes() {
	s.echo.GET("/health", s.handleHealth)
	s.echo.GET("/status", s.handleStatus)
	s.echo.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	s.echo.GET("/api/hello", s.handleHello)

	q := s.echo.Group("/quantum")
	q.POST("/circuit/simulate", s.handleCircuit)
	q.POST("/circuit/chart", s.handleChart)
	q.POST("/stabilizer/simulate", s.handleStabilizer)
	q.POST("/qec/simulate", s.handleQEC)

	if s.config.Server.StaticDir != "" {
		s.echo.Static("/", s.config.Server.StaticDir)
	}
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.echo
}

func (s *Server) Start() error {
	addr := s.config.Server.Addr()
	errnie.Info("Server.Start - listening on %s", addr)
	return s.echo.Start(addr)
}

func (s *Server) Shutdown(ctx context.Context) error {
	errnie.Info("Server.Shutdown - shutting down http server")
	return s.echo.Shutdown(ctx)
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
}

/*
fail maps simulation errors onto status codes: request problems are 400, a
spent rate limit is 429, a saturated pool is 503, and anything else is a 500.
*/
func fail(c echo.Context, err error) error {
	status := http.StatusInternalServerError

	switch {
	case circuit.IsCallerError(err):
		status = http.StatusBadRequest
	case errors.Is(err, qsim.ErrRateLimited):
		status = http.StatusTooManyRequests
	case errors.Is(err, qsim.ErrOverloaded), errors.Is(err, qsim.ErrSchedulingTimeout), errors.Is(err, qsim.ErrPoolClosed):
		status = http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		status = http.StatusGatewayTimeout
	}

	if status >= http.StatusInternalServerError {
		errnie.Info("Server.fail - %d: %v", status, err)
	}

	return c.JSON(status, ErrorResponse{Error: err.Error()})
}
