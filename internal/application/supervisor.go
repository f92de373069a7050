package application

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/bnema/memefi-tapper/internal/config"
	"github.com/bnema/memefi-tapper/internal/domain"
	"github.com/bnema/memefi-tapper/internal/logging"
	"github.com/bnema/memefi-tapper/internal/ports"
)

var ErrNoCredentials = errors.New("no credentials found")

// ProxyPool hands out the proxy bound to the next session. A nil result
// means a direct connection.
type ProxyPool interface {
	Next() *url.URL
	Len() int
}

// DialFunc builds the game API client for one session, routed through
// proxyURL when it is non-nil.
type DialFunc func(ctx context.Context, identity domain.Identity, proxyURL *url.URL) (ports.GameAPI, error)

type SupervisorDeps struct {
	Credentials ports.ListSource
	Proxies     ProxyPool
	Dial        DialFunc
	Snapshots   ports.SnapshotRepository
	Clock       ports.Clock
	Random      ports.Random
	Logger      *zap.Logger
	Settings    config.GameSettings
}

// Supervisor starts one independent session per credential. A failing
// session never cancels the others.
type Supervisor struct {
	deps SupervisorDeps
}

func NewSupervisor(deps SupervisorDeps) *Supervisor {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	return &Supervisor{deps: deps}
}

// Run blocks until every session has ended. It returns the first session
// failure that was not caused by ctx.
func (s *Supervisor) Run(ctx context.Context) error {
	tokens, err := s.deps.Credentials.Load(ctx)
	if err != nil {
		return fmt.Errorf("load credentials: %w", err)
	}
	if len(tokens) == 0 {
		return ErrNoCredentials
	}

	proxyCount := 0
	if s.deps.Proxies != nil {
		proxyCount = s.deps.Proxies.Len()
	}
	s.deps.Logger.Info("starting sessions",
		zap.Int("accounts", len(tokens)),
		zap.Int("proxies", proxyCount),
	)

	var g errgroup.Group
	for i, raw := range tokens {
		identity, err := domain.ParseIdentity(raw)
		if err != nil {
			logging.Critical(s.deps.Logger, "skipping credential", zap.Int("line", i+1), zap.Error(err))
			continue
		}

		var proxyURL *url.URL
		if s.deps.Proxies != nil {
			proxyURL = s.deps.Proxies.Next()
		}

		g.Go(func() error {
			return s.runSession(ctx, identity, proxyURL)
		})
	}

	return g.Wait()
}

func (s *Supervisor) runSession(ctx context.Context, identity domain.Identity, proxyURL *url.URL) error {
	logger := logging.ForSession(s.deps.Logger, identity.SessionName())

	api, err := s.deps.Dial(ctx, identity, proxyURL)
	if err != nil {
		logger.Error("session setup failed", zap.Error(err))
		return fmt.Errorf("session %s: %w", identity.SessionName(), err)
	}

	proxyLabel := ""
	if proxyURL != nil {
		proxyLabel = proxyURL.Redacted()
	}

	session := NewSession(identity, SessionDeps{
		API:       api,
		Clock:     s.deps.Clock,
		Random:    s.deps.Random,
		Snapshots: s.deps.Snapshots,
		Logger:    s.deps.Logger,
		Settings:  s.deps.Settings,
		Proxy:     proxyLabel,
	})

	err = session.Run(ctx)
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return nil
	}

	return fmt.Errorf("session %s: %w", identity.SessionName(), err)
}
