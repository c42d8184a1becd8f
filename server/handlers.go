package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/theapemachine/qsim/circuit"
	"github.com/theapemachine/qsim/render"
)

type HealthResponse struct {
	Status string `json:"status"`
}

type HelloResponse struct {
	Message string `json:"message"`
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthResponse{Status: "ok"})
}

func (s *Server) handleHello(c echo.Context) error {
	return c.JSON(http.StatusOK, HelloResponse{Message: "Hello from the qsim backend!"})
}

func (s *Server) handleStatus(c echo.Context) error {
	return c.JSON(http.StatusOK, s.pool.Metrics().Export())
}

func (s *Server) runCircuit(c echo.Context) (*circuit.CircuitResult, error) {
	var req circuit.CircuitRequest
	if err := c.Bind(&req); err != nil {
		return nil, fmt.Errorf("%w: %v", circuit.ErrInvalidRequest, err)
	}

	out, err := s.pool.Run(c.Request().Context(), func(ctx context.Context) (any, error) {
		return circuit.RunCircuit(ctx, req, s.opts)
	})
	if err != nil {
		return nil, err
	}

	return out.(*circuit.CircuitResult), nil
}

func (s *Server) handleCircuit(c echo.Context) error {
	res, err := s.runCircuit(c)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

func (s *Server) handleChart(c echo.Context) error {
	res, err := s.runCircuit(c)
	if err != nil {
		return fail(c, err)
	}

	c.Response().Header().Set(echo.HeaderContentType, echo.MIMETextHTMLCharsetUTF8)
	c.Response().WriteHeader(http.StatusOK)
	return render.WriteChart(c.Response(), "Circuit probabilities", res)
}

func (s *Server) handleStabilizer(c echo.Context) error {
	var req circuit.StabilizerRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, fmt.Errorf("%w: %v", circuit.ErrInvalidRequest, err))
	}

	out, err := s.pool.Run(c.Request().Context(), func(ctx context.Context) (any, error) {
		return circuit.RunStabilizer(ctx, req, s.opts)
	})
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

func (s *Server) handleQEC(c echo.Context) error {
	var req circuit.QECRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, fmt.Errorf("%w: %v", circuit.ErrInvalidRequest, err))
	}

	out, err := s.pool.Run(c.Request().Context(), func(ctx context.Context) (any, error) {
		return circuit.RunQEC(ctx, req, s.opts)
	})
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(http.StatusOK, out)
}
