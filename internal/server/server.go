// Package server exposes the research pipeline over HTTP.
package server

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"forge-research/internal/model"
	"forge-research/internal/research"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// Runner executes one research run per request.
type Runner interface {
	Run(ctx context.Context, req research.Request) (model.PipelineResult, *research.Trace)
}

// Server wires the pipeline behind an echo instance.
type Server struct {
	echo     *echo.Echo
	pipeline Runner
	// configured reports whether completion-service credentials are present;
	// missing configuration is a 500, not a pipeline outcome.
	configured bool
}

type researchResponse struct {
	model.PipelineResult
	Trace *research.Trace `json:"trace,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func New(pipeline Runner, configured bool) *Server {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())

	s := &Server{echo: e, pipeline: pipeline, configured: configured}
	e.GET("/healthz", s.health)
	e.POST("/api/research", s.research)
	return s
}

// Start blocks serving HTTP until the listener fails or is shut down.
func (s *Server) Start(addr string) error {
	return s.echo.Start(addr)
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

func (s *Server) health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// research handles one pipeline invocation. 400 covers structurally invalid
// input only; 500 covers missing configuration or an unclassified hard error;
// every expected outcome, negative results included, is a 200.
func (s *Server) research(c echo.Context) error {
	var req research.Request
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request body"})
	}
	if strings.TrimSpace(req.Prompt) == "" || strings.TrimSpace(req.Company) == "" {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "prompt and companyDescription are required"})
	}
	if !s.configured {
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: "completion service credentials are not configured"})
	}

	result, trace := s.pipeline.Run(c.Request().Context(), req)
	slog.Info("server: research run finished",
		"run_id", trace.RunID,
		"success", result.Success,
		"seconds", result.ProcessingTimeSeconds,
	)
	status := http.StatusOK
	if result.Error != "" {
		// hard faults with no defined negative-outcome path
		status = http.StatusInternalServerError
	}
	return c.JSON(status, researchResponse{PipelineResult: result, Trace: trace})
}
