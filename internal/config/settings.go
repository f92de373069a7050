package config

import (
	"fmt"
	"time"

	"github.com/bnema/memefi-tapper/internal/domain"
)

// Range is an inclusive integer interval. Min == Max is a fixed value.
type Range struct {
	Min int
	Max int
}

func Fixed(v int) Range {
	return Range{Min: v, Max: v}
}

// Pick draws uniformly from the range.
func (r Range) Pick(intN func(int) int) int {
	if r.Max <= r.Min {
		return r.Min
	}
	return r.Min + intN(r.Max-r.Min+1)
}

// PickSeconds draws a duration in whole seconds from the range.
func (r Range) PickSeconds(intN func(int) int) time.Duration {
	return time.Duration(r.Pick(intN)) * time.Second
}

func (r Range) validate(name string) error {
	if r.Min < 0 || r.Max < 0 {
		return fmt.Errorf("%s: negative value in [%d, %d]", name, r.Min, r.Max)
	}
	if r.Min > r.Max {
		return fmt.Errorf("%s: inverted range [%d, %d]", name, r.Min, r.Max)
	}
	return nil
}

// GameSettings toggles and tunes the per-session game strategy.
type GameSettings struct {
	RandomTapsCount    Range
	SleepBetweenTap    Range
	MinAvailableEnergy int64
	SleepByMinEnergy   Range
	AddTapsOnTurbo     int
	ActiveTurboDelay   Range

	ApplyDailyEnergy bool
	ApplyDailyTurbo  bool

	AutoUpgradeTap    bool
	MaxTapLevel       int
	AutoUpgradeEnergy bool
	MaxEnergyLevel    int
	AutoUpgradeCharge bool
	MaxChargeLevel    int

	UseTapBot        bool
	AutoPlaySpin     bool
	AutoClearMission bool
}

type RedisSettings struct {
	Addr     string
	Password string
	DB       int
	Key      string
}

type LogSettings struct {
	Level  string
	Format string
}

type Settings struct {
	GraphQLURL     string
	RequestTimeout time.Duration

	QueryIDsPath   string
	ProxiesPath    string
	SignaturesPath string
	SnapshotsPath  string

	UseProxyFromFile bool
	CheckProxy       bool
	ProxyCheckURL    string

	SignatureStore string
	Redis          RedisSettings

	StatusAddr string
	Log        LogSettings

	Game GameSettings
}

const (
	SignatureStoreFile  = "file"
	SignatureStoreRedis = "redis"
	SignatureStoreChain = "chain"
)

func (s Settings) Validate() error {
	if s.GraphQLURL == "" {
		return fmt.Errorf("%s must not be empty", keyGraphQLURL)
	}
	if s.QueryIDsPath == "" {
		return fmt.Errorf("%s must not be empty", keyQueryIDsPath)
	}
	switch s.SignatureStore {
	case SignatureStoreFile, SignatureStoreRedis, SignatureStoreChain:
	default:
		return fmt.Errorf("%s: unsupported backend %q", keySignatureStore, s.SignatureStore)
	}

	ranges := []struct {
		name string
		r    Range
	}{
		{keyRandomTapsCount, s.Game.RandomTapsCount},
		{keySleepBetweenTap, s.Game.SleepBetweenTap},
		{keySleepByMinEnergy, s.Game.SleepByMinEnergy},
		{keyActiveTurboDelay, s.Game.ActiveTurboDelay},
	}
	for _, entry := range ranges {
		if err := entry.r.validate(entry.name); err != nil {
			return err
		}
	}
	if s.Game.RandomTapsCount.Min == 0 {
		return fmt.Errorf("%s: tap count must be positive", keyRandomTapsCount)
	}
	if s.Game.MinAvailableEnergy < 0 || s.Game.AddTapsOnTurbo < 0 {
		return fmt.Errorf("%s and %s must not be negative", keyMinAvailableEnergy, keyAddTapsOnTurbo)
	}

	levels := []struct {
		name  string
		level int
	}{
		{keyMaxTapLevel, s.Game.MaxTapLevel},
		{keyMaxEnergyLevel, s.Game.MaxEnergyLevel},
		{keyMaxChargeLevel, s.Game.MaxChargeLevel},
	}
	for _, entry := range levels {
		if entry.level < 0 || entry.level > domain.MaxUpgradeLevel {
			return fmt.Errorf("%s: level %d outside [0, %d]", entry.name, entry.level, domain.MaxUpgradeLevel)
		}
	}

	return nil
}
