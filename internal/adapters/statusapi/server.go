package statusapi

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/bnema/memefi-tapper/internal/domain"
	"github.com/bnema/memefi-tapper/internal/ports"
)

const shutdownTimeout = 5 * time.Second

type sessionView struct {
	SessionName   string    `json:"session_name"`
	Proxy         string    `json:"proxy,omitempty"`
	Balance       int64     `json:"balance"`
	Energy        int64     `json:"energy"`
	MaxEnergy     int64     `json:"max_energy"`
	BossLevel     int       `json:"boss_level"`
	BossHealth    int64     `json:"boss_health"`
	BossMaxHealth int64     `json:"boss_max_health"`
	TurboActive   bool      `json:"turbo_active"`
	Passes        int       `json:"passes"`
	LastPassAt    time.Time `json:"last_pass_at,omitzero"`
	LastError     string    `json:"last_error,omitempty"`
	Stale         bool      `json:"stale"`
}

// Server exposes the snapshot repository as a read-only JSON API.
type Server struct {
	snapshots  ports.SnapshotRepository
	clock      ports.Clock
	staleAfter time.Duration
	logger     *zap.Logger
	engine     *gin.Engine
}

func NewServer(snapshots ports.SnapshotRepository, clock ports.Clock, staleAfter time.Duration, logger *zap.Logger) *Server {
	if clock == nil {
		clock = ports.SystemClock{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	gin.SetMode(gin.ReleaseMode)
	s := &Server{
		snapshots:  snapshots,
		clock:      clock,
		staleAfter: staleAfter,
		logger:     logger,
		engine:     gin.New(),
	}

	s.engine.Use(s.recovery(), s.accessLog())
	s.engine.GET("/healthz", s.health)
	s.engine.GET("/sessions", s.listSessions)
	s.engine.GET("/sessions/:name", s.getSession)

	return s
}

func (s *Server) Handler() http.Handler {
	return s.engine
}

// Serve listens on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context, addr string) error {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen status api: %w", err)
	}

	return s.serveListener(ctx, listener)
}

func (s *Server) serveListener(ctx context.Context, listener net.Listener) error {
	srv := &http.Server{
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("status api listening", zap.String("addr", listener.Addr().String()))
		errCh <- srv.Serve(listener)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve status api: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown status api: %w", err)
	}

	return nil
}

func (s *Server) health(c *gin.Context) {
	respondOK(c, "ok", gin.H{"time": s.clock.Now().UTC()})
}

func (s *Server) listSessions(c *gin.Context) {
	snapshots, err := s.snapshots.List(c.Request.Context())
	if err != nil {
		s.logger.Error("list snapshots failed", zap.Error(err))
		respondError(c, http.StatusInternalServerError, "failed to list sessions", err)
		return
	}

	now := s.clock.Now()
	views := make([]sessionView, 0, len(snapshots))
	for _, snapshot := range snapshots {
		views = append(views, s.toView(snapshot, now))
	}

	respondOK(c, "sessions", views)
}

func (s *Server) getSession(c *gin.Context) {
	name := c.Param("name")

	snapshot, err := s.snapshots.Get(c.Request.Context(), name)
	if errors.Is(err, domain.ErrSnapshotNotFound) {
		respondError(c, http.StatusNotFound, "session not found", nil)
		return
	}
	if err != nil {
		s.logger.Error("get snapshot failed", zap.String("session", name), zap.Error(err))
		respondError(c, http.StatusInternalServerError, "failed to load session", err)
		return
	}

	respondOK(c, "session", s.toView(snapshot, s.clock.Now()))
}

func (s *Server) toView(snapshot domain.SessionSnapshot, now time.Time) sessionView {
	return sessionView{
		SessionName:   snapshot.SessionName,
		Proxy:         snapshot.Proxy,
		Balance:       snapshot.Balance,
		Energy:        snapshot.Energy,
		MaxEnergy:     snapshot.MaxEnergy,
		BossLevel:     snapshot.BossLevel,
		BossHealth:    snapshot.BossHealth,
		BossMaxHealth: snapshot.BossMaxHealth,
		TurboActive:   snapshot.TurboActive,
		Passes:        snapshot.Passes,
		LastPassAt:    snapshot.LastPassAt,
		LastError:     snapshot.LastError,
		Stale:         snapshot.IsStale(now, s.staleAfter),
	}
}

func (s *Server) recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if rec := recover(); rec != nil {
				s.logger.Error("panic recovered",
					zap.Any("error", rec),
					zap.String("path", c.Request.URL.Path),
				)
				respondError(c, http.StatusInternalServerError, "internal server error", nil)
			}
		}()
		c.Next()
	}
}

func (s *Server) accessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Debug("status api request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		)
	}
}
