package application

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/bnema/memefi-tapper/internal/domain"
	"github.com/bnema/memefi-tapper/internal/logging"
)

const (
	tapBotStartDelay  = 5 * time.Second
	tapBotLogInterval = 15 * time.Minute
)

func (s *Session) runTapBot(ctx context.Context) error {
	cfg, ok, err := Retry(ctx, s.exec, "tapbot config", s.api.TapBotConfig)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}

	if !cfg.Running() {
		if cfg.Purchased {
			return s.startTapBot(ctx, cfg)
		}
		return s.purchaseTapBot(ctx, cfg)
	}

	now := s.clock.Now()
	if !now.Before(s.tapBotLogAfter) {
		s.logger.Info("tapbot running", zap.Time("ends_at", cfg.EndsAt))
		s.tapBotLogAfter = now.Add(tapBotLogInterval)
	}

	switch {
	case cfg.EndsAt.Before(now):
		s.logger.Info("claiming tapbot", zap.Duration("in", tapBotStartDelay))
		if err := s.sleep(ctx, tapBotStartDelay); err != nil {
			return err
		}

		_, ok, err := Retry(ctx, s.exec, "claim tapbot", s.api.ClaimTapBot)
		if err != nil || !ok {
			return err
		}
		logging.Success(s.logger, "tapbot claimed")
		return s.startTapBot(ctx, cfg)
	case !cfg.Purchased:
		return s.purchaseTapBot(ctx, cfg)
	default:
		return nil
	}
}

func (s *Session) startTapBot(ctx context.Context, cfg domain.TapBotConfig) error {
	if !cfg.HasAttempts() {
		s.logger.Info("tapbot attempts spent",
			zap.Int("used", cfg.UsedAttempts),
			zap.Int("total", cfg.TotalAttempts),
		)
		return nil
	}

	s.logger.Info("starting tapbot", zap.Duration("in", tapBotStartDelay))
	if err := s.sleep(ctx, tapBotStartDelay); err != nil {
		return err
	}

	run, ok, err := Retry(ctx, s.exec, "start tapbot", s.api.StartTapBot)
	if err != nil || !ok {
		return err
	}

	logging.Success(s.logger, "tapbot started", zap.Int64("damage_per_sec", run.DamagePerSec))
	return nil
}

func (s *Session) purchaseTapBot(ctx context.Context, cfg domain.TapBotConfig) error {
	ok, err := Do(ctx, s.exec, "purchase tapbot", func(ctx context.Context) error {
		return s.api.PurchaseUpgrade(ctx, domain.UpgradeTapBot)
	})
	if err != nil || !ok {
		return err
	}

	logging.Success(s.logger, "tapbot purchased")
	if err := s.sleep(ctx, postActionDelay); err != nil {
		return err
	}

	return s.startTapBot(ctx, cfg)
}
