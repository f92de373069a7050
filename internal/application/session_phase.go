package application

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/bnema/memefi-tapper/internal/domain"
	"github.com/bnema/memefi-tapper/internal/logging"
)

type phase int

const (
	phaseNeedAuth phase = iota
	phaseAuthenticated
	phaseActing
	phaseMaintaining
	phaseCooldown
	// phaseRestart ends the pass without a cooldown.
	phaseRestart
)

func (p phase) String() string {
	switch p {
	case phaseNeedAuth:
		return "need auth"
	case phaseAuthenticated:
		return "authenticated"
	case phaseActing:
		return "acting"
	case phaseMaintaining:
		return "maintaining"
	case phaseCooldown:
		return "cooldown"
	case phaseRestart:
		return "restart"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// entryPhase skips straight to the cooldown while the token is still fresh.
func (s *Session) entryPhase() phase {
	if s.token.Stale(s.tokenCreatedAt, s.clock.Now()) {
		return phaseNeedAuth
	}
	return phaseCooldown
}

func (s *Session) step(ctx context.Context, p phase) (phase, error) {
	switch p {
	case phaseNeedAuth:
		return s.authenticate(ctx)
	case phaseAuthenticated:
		return s.loadGame(ctx)
	case phaseActing:
		return s.tap(ctx)
	case phaseMaintaining:
		return s.maintain(ctx)
	case phaseCooldown:
		return s.cooldown(ctx)
	default:
		return phaseRestart, nil
	}
}

func (s *Session) authenticate(ctx context.Context) (phase, error) {
	s.api.Authorize("")

	token, ok, err := Once(ctx, s.exec, "login", func(ctx context.Context) (domain.AccessToken, error) {
		return s.api.Login(ctx, s.identity)
	})
	if err != nil {
		return phaseRestart, err
	}
	if !ok || token.Value == "" {
		return phaseRestart, s.sleep(ctx, loginRetryDelay)
	}

	s.token = token
	s.tokenCreatedAt = s.clock.Now()
	s.api.Authorize(token.Value)

	return phaseAuthenticated, nil
}

func (s *Session) loadGame(ctx context.Context) (phase, error) {
	state, ok, err := Retry(ctx, s.exec, "game config", s.api.GameConfig)
	if err != nil {
		return phaseRestart, err
	}
	if !ok {
		return phaseRestart, fmt.Errorf("fetch game config: %w", domain.ErrEmptyResponse)
	}
	s.state = state

	s.logger.Info("game state",
		zap.Int64("balance", state.Coins),
		zap.Int("boss_level", state.Boss.Level),
		zap.Int64("boss_health", state.Boss.CurrentHealth),
		zap.Int64("boss_max_health", state.Boss.MaxHealth),
	)

	if err := s.sleep(ctx, postConfigDelay); err != nil {
		return phaseRestart, err
	}

	if s.settings.AutoPlaySpin {
		if err := s.playSpins(ctx); err != nil {
			return phaseRestart, err
		}
	}

	return phaseActing, nil
}

func (s *Session) playSpins(ctx context.Context) error {
	spins := s.state.SpinEnergy
	for spins > 0 {
		if err := s.sleep(ctx, spinDelay); err != nil {
			return err
		}

		bet := domain.SpinMultiplier(spins)
		result, ok, err := Retry(ctx, s.exec, "spin slot machine", func(ctx context.Context) (domain.SpinResult, error) {
			return s.api.SpinSlotMachine(ctx, bet)
		})
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}

		spins = result.SpinEnergy
		s.state.SpinEnergy = result.SpinEnergy
		s.state.Coins = result.Coins

		logging.Success(s.logger, "played slot machine",
			zap.Int64("balance", result.Coins),
			zap.Int64("reward", result.RewardAmount),
			zap.String("reward_type", result.RewardType),
			zap.Int("spins", spins),
			zap.Int("bet", bet),
		)

		if err := s.sleep(ctx, spinDelay); err != nil {
			return err
		}
	}

	return nil
}

func (s *Session) tap(ctx context.Context) (phase, error) {
	taps := s.settings.RandomTapsCount.Pick(s.rand.IntN)
	available := s.state.CurrentEnergy
	need := int64(taps) * int64(s.state.WeaponLevel)

	if s.turboActive {
		taps += s.settings.AddTapsOnTurbo
		need = 0
		if s.clock.Now().Sub(s.turboStartedAt) > turboWindow {
			s.turboActive = false
			s.turboStartedAt = time.Time{}
		}
	}

	if need > available {
		s.logger.Warn("need more energy",
			zap.Int64("energy", available),
			zap.Int64("needed", need),
			zap.Int("taps", taps),
		)

		wait := s.settings.SleepBetweenTap.PickSeconds(s.rand.IntN)
		s.logger.Info("sleeping", zap.Duration("for", wait))
		if err := s.sleep(ctx, wait); err != nil {
			return phaseRestart, err
		}

		state, ok, err := Retry(ctx, s.exec, "game config", s.api.GameConfig)
		if err != nil {
			return phaseRestart, err
		}
		if ok {
			s.state = state
		}
		return phaseRestart, nil
	}

	nonce := s.state.Nonce
	state, ok, err := Retry(ctx, s.exec, "process taps", func(ctx context.Context) (domain.GameState, error) {
		return s.api.ProcessTaps(ctx, domain.TapBatch{
			Nonce:  nonce,
			Count:  taps,
			Vector: domain.TapVector(taps, s.rand.IntN),
		})
	})
	if err != nil {
		return phaseRestart, err
	}
	if !ok {
		return phaseRestart, nil
	}

	previous := s.state.Coins
	s.state = state

	logging.Success(s.logger, "tapped",
		zap.Int64("balance", state.Coins),
		zap.Int64("gained", state.Coins-previous),
		zap.Int64("boss_health", state.Boss.CurrentHealth),
		zap.Int64("energy", state.CurrentEnergy),
	)

	if state.Boss.Defeated() {
		next := state.Boss.Level + 1
		s.logger.Info("setting next boss", zap.Int("level", next))

		ok, err := Do(ctx, s.exec, "set next boss", s.api.SetNextBoss)
		if err != nil {
			return phaseRestart, err
		}
		if ok {
			logging.Success(s.logger, "next boss set", zap.Int("level", next))
		} else if err := s.sleep(ctx, failedActionDelay); err != nil {
			return phaseRestart, err
		}
		return phaseRestart, nil
	}

	if s.turboActive {
		return phaseCooldown, nil
	}
	return phaseMaintaining, nil
}

func (s *Session) maintain(ctx context.Context) (phase, error) {
	boosts := s.state.FreeBoosts

	if s.settings.ApplyDailyEnergy && boosts.RefillAmount > 0 && s.state.CurrentEnergy < s.settings.MinAvailableEnergy {
		if _, err := s.activateBooster(ctx, domain.BoosterRecharge); err != nil {
			return phaseRestart, err
		}
		return phaseRestart, nil
	}

	if s.settings.ApplyDailyTurbo && boosts.TurboAmount > 0 {
		ok, err := s.activateBooster(ctx, domain.BoosterTurbo)
		if err != nil {
			return phaseRestart, err
		}
		if ok {
			s.turboActive = true
			s.turboStartedAt = s.clock.Now()
		}
		return phaseRestart, nil
	}

	if s.settings.UseTapBot {
		if err := s.runTapBot(ctx); err != nil {
			return phaseRestart, err
		}
	}

	upgrades := []struct {
		kind    domain.UpgradeType
		label   string
		enabled bool
		max     int
	}{
		{kind: domain.UpgradeDamage, label: "tap", enabled: s.settings.AutoUpgradeTap, max: s.settings.MaxTapLevel},
		{kind: domain.UpgradeEnergyCap, label: "energy", enabled: s.settings.AutoUpgradeEnergy, max: s.settings.MaxEnergyLevel},
		{kind: domain.UpgradeEnergyRechargeRate, label: "charge", enabled: s.settings.AutoUpgradeCharge, max: s.settings.MaxChargeLevel},
	}
	for _, u := range upgrades {
		if !u.enabled {
			continue
		}
		if err := s.upgrade(ctx, u.kind, u.label, u.max); err != nil {
			return phaseRestart, err
		}
	}

	if s.settings.AutoClearMission {
		if err := s.runQuests(ctx); err != nil {
			return phaseRestart, err
		}
	}

	if s.state.CurrentEnergy < s.settings.MinAvailableEnergy {
		s.logger.Info("minimum energy reached", zap.Int64("energy", s.state.CurrentEnergy))

		wait := s.settings.SleepByMinEnergy.PickSeconds(s.rand.IntN)
		s.logger.Info("sleeping", zap.Duration("for", wait))
		if err := s.sleep(ctx, wait); err != nil {
			return phaseRestart, err
		}
	}

	return phaseCooldown, nil
}

func (s *Session) activateBooster(ctx context.Context, booster domain.BoosterType) (bool, error) {
	s.logger.Info("activating daily boost", zap.String("booster", string(booster)), zap.Duration("in", boostDelay))
	if err := s.sleep(ctx, boostDelay); err != nil {
		return false, err
	}

	ok, err := Do(ctx, s.exec, "activate booster", func(ctx context.Context) error {
		return s.api.ActivateBooster(ctx, booster)
	})
	if err != nil {
		return false, err
	}
	if !ok {
		return false, s.sleep(ctx, failedActionDelay)
	}

	logging.Success(s.logger, "boost applied", zap.String("booster", string(booster)))
	return true, s.sleep(ctx, postActionDelay)
}

func (s *Session) upgrade(ctx context.Context, kind domain.UpgradeType, label string, maxLevel int) error {
	next := s.state.Level(kind) + 1
	if next > maxLevel {
		return nil
	}

	cost := domain.UpgradeCost(next)
	if !domain.CanAfford(s.state.Coins, next) {
		s.logger.Warn("need more coins for upgrade",
			zap.String("upgrade", label),
			zap.Int("level", next),
			zap.Int64("balance", s.state.Coins),
			zap.Int64("cost", cost),
		)
		return nil
	}

	ok, err := Do(ctx, s.exec, "purchase upgrade", func(ctx context.Context) error {
		return s.api.PurchaseUpgrade(ctx, kind)
	})
	if err != nil || !ok {
		return err
	}

	logging.Success(s.logger, "upgraded", zap.String("upgrade", label), zap.Int("level", next))
	return s.sleep(ctx, postActionDelay)
}

func (s *Session) cooldown(ctx context.Context) (phase, error) {
	if err := s.sleep(ctx, cooldownDelay); err != nil {
		return phaseRestart, err
	}

	wait := s.settings.SleepBetweenTap.PickSeconds(s.rand.IntN)
	if s.turboActive {
		wait = s.settings.ActiveTurboDelay.PickSeconds(s.rand.IntN)
	}

	s.resetFreshness()
	s.passes++
	s.lastPassAt = s.clock.Now()
	s.lastError = ""
	s.persist(ctx)

	s.logger.Info("delay", zap.Duration("for", wait))
	if err := s.sleep(ctx, wait); err != nil {
		return phaseRestart, err
	}

	return phaseRestart, nil
}
