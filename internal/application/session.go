package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"

	"github.com/bnema/memefi-tapper/internal/config"
	"github.com/bnema/memefi-tapper/internal/domain"
	"github.com/bnema/memefi-tapper/internal/logging"
	"github.com/bnema/memefi-tapper/internal/ports"
)

const (
	loginRetryDelay   = 3 * time.Second
	recoveryDelay     = 60 * time.Second
	postConfigDelay   = 1500 * time.Millisecond
	spinDelay         = time.Second
	boostDelay        = 5 * time.Second
	postActionDelay   = time.Second
	failedActionDelay = 3 * time.Second
	turboWindow       = 10 * time.Second
	cooldownDelay     = time.Second
)

type SessionDeps struct {
	API       ports.GameAPI
	Clock     ports.Clock
	Random    ports.Random
	Snapshots ports.SnapshotRepository
	Logger    *zap.Logger
	Settings  config.GameSettings
	// Proxy is the redacted proxy label recorded in snapshots.
	Proxy string
}

// Session drives one account through repeated game passes.
type Session struct {
	identity  domain.Identity
	api       ports.GameAPI
	clock     ports.Clock
	rand      ports.Random
	snapshots ports.SnapshotRepository
	settings  config.GameSettings
	proxy     string
	baseLog   *zap.Logger
	logger    *zap.Logger
	exec      *Executor

	token          domain.AccessToken
	tokenCreatedAt time.Time
	state          domain.GameState

	turboActive    bool
	turboStartedAt time.Time
	tapBotLogAfter time.Time

	passes     int
	lastPassAt time.Time
	lastError  string
}

func NewSession(identity domain.Identity, deps SessionDeps) *Session {
	if deps.Clock == nil {
		deps.Clock = ports.SystemClock{}
	}
	if deps.Random == nil {
		deps.Random = ports.SystemRandom{}
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}

	logger := logging.ForSession(deps.Logger, identity.SessionName())

	return &Session{
		identity:  identity,
		api:       deps.API,
		clock:     deps.Clock,
		rand:      deps.Random,
		snapshots: deps.Snapshots,
		settings:  deps.Settings,
		proxy:     deps.Proxy,
		baseLog:   logger,
		logger:    logger,
		exec:      NewExecutor(deps.Clock, logger),
	}
}

func (s *Session) Name() string {
	return s.identity.SessionName()
}

// Run loops over passes until ctx is cancelled or the credential turns out
// to be invalid. Other failures back off and start over with a new login.
func (s *Session) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		err := s.runPass(ctx)
		if err == nil {
			continue
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		s.lastError = err.Error()

		switch {
		case errors.Is(err, domain.ErrInvalidSession):
			logging.Critical(s.logger, "invalid session", zap.Error(err))
			s.persist(ctx)
			return err
		case domain.IsRecoverable(err):
			s.logger.Warn("session interrupted, re-authenticating", zap.Error(err))
		default:
			s.logger.Error("unknown error", zap.Error(err))
		}

		s.resetFreshness()
		s.persist(ctx)

		if err := s.clock.Sleep(ctx, recoveryDelay); err != nil {
			return err
		}
	}
}

func (s *Session) runPass(ctx context.Context) error {
	s.logger = s.baseLog.With(zap.String("pass", ulid.Make().String()))

	current := s.entryPhase()
	for current != phaseRestart {
		next, err := s.step(ctx, current)
		if err != nil {
			return fmt.Errorf("%s: %w", current, err)
		}
		current = next
	}

	return nil
}

func (s *Session) resetFreshness() {
	s.tokenCreatedAt = time.Time{}
}

func (s *Session) sleep(ctx context.Context, d time.Duration) error {
	return s.clock.Sleep(ctx, d)
}

func (s *Session) snapshot() domain.SessionSnapshot {
	return domain.SessionSnapshot{
		SessionName: s.Name(),
		Proxy:       s.proxy,
		TurboActive: s.turboActive,
		Passes:      s.passes,
		LastPassAt:  s.lastPassAt,
		LastError:   s.lastError,
	}.ApplyState(s.state)
}

// persist records the current snapshot. Failures are logged only.
func (s *Session) persist(ctx context.Context) {
	if s.snapshots == nil {
		return
	}

	if err := s.snapshots.Save(ctx, s.snapshot()); err != nil && ctx.Err() == nil {
		s.logger.Warn("save session snapshot failed", zap.Error(err))
	}
}
