// Package statusapi exposes a read-only HTTP surface over a
// bridge.Discovery, for dashboards or health checks that want the
// controller's view of candidate target processes without speaking the
// wire protocol directly.
package statusapi

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/slighter12/uiinspect-go/bridge"
	"github.com/slighter12/uiinspect-go/logger"
	"github.com/slighter12/uiinspect-go/wire"
)

// Server hosts the status API over a single Discovery instance.
type Server struct {
	discovery *bridge.Discovery
	newBridge func(pid int) *bridge.Bridge
	echo      *echo.Echo
}

// NewServer builds a Server that reports discovery's candidates and
// dials through newBridge (typically bridge.New bound to the caller's
// rendezvous prefix and timeouts) for the tree endpoint.
func NewServer(discovery *bridge.Discovery, newBridge func(pid int) *bridge.Bridge) *Server {
	s := &Server{discovery: discovery, newBridge: newBridge, echo: echo.New()}
	s.setupEcho()
	return s
}

func (s *Server) setupEcho() {
	s.echo.Use(middleware.Logger())
	s.echo.Use(middleware.Recover())
	s.echo.GET("/healthz", s.handleHealthz)
	s.echo.GET("/targets", s.handleTargets)
	s.echo.GET("/targets/:pid/tree", s.handleTargetTree)
}

// Start begins serving the status API at addr (e.g. ":8090"), blocking
// until the listener fails or the process is asked to stop.
func (s *Server) Start(addr string) error {
	logger.Info("statusapi starting to listen", "address", addr)
	return s.echo.Start(addr)
}

// StartCleanupLoop periodically evicts candidates not seen within
// timeout, mirroring the teacher's background registry-cleanup ticker.
func (s *Server) StartCleanupLoop(ctx context.Context, interval, timeout time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.discovery.Cleanup(timeout)
		}
	}
}

func (s *Server) handleHealthz(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{"status": "ok"})
}

func (s *Server) handleTargets(c echo.Context) error {
	if err := s.discovery.Refresh(c.Request().Context()); err != nil {
		logger.Warn("discovery refresh failed", "error", err)
	}
	return c.JSON(http.StatusOK, map[string]any{"targets": s.discovery.Candidates()})
}

func (s *Server) handleTargetTree(c echo.Context) error {
	pid, err := strconv.Atoi(c.Param("pid"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]any{"error": "pid must be an integer"})
	}

	b := s.newBridge(pid)
	if err := b.Attach(c.Request().Context(), pid, ""); err != nil {
		return c.JSON(http.StatusNotFound, map[string]any{"error": err.Error()})
	}

	rootHandle := c.QueryParam("rootHandle")
	tree, err := bridge.InvokeTyped[bridge.TreeResult](c.Request().Context(), b, wire.GetVisualTree, map[string]any{
		"rootHandle": rootHandle,
	})
	if err != nil {
		return c.JSON(http.StatusBadGateway, map[string]any{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, tree)
}
