package domain

import (
	"math"
	"strconv"
	"strings"
	"time"
)

type BoosterType string

const (
	BoosterRecharge BoosterType = "Recharge"
	BoosterTurbo    BoosterType = "Turbo"
)

type UpgradeType string

const (
	UpgradeDamage             UpgradeType = "Damage"
	UpgradeEnergyCap          UpgradeType = "EnergyCap"
	UpgradeEnergyRechargeRate UpgradeType = "EnergyRechargeRate"
	UpgradeTapBot             UpgradeType = "TapBot"
)

type Boss struct {
	Level         int
	CurrentHealth int64
	MaxHealth     int64
}

func (b Boss) Defeated() bool {
	return b.CurrentHealth <= 0
}

type FreeBoosts struct {
	TurboAmount  int
	RefillAmount int
}

// GameState is the latest server-reported snapshot of a player's game.
type GameState struct {
	Coins               int64
	CurrentEnergy       int64
	MaxEnergy           int64
	WeaponLevel         int
	EnergyLimitLevel    int
	EnergyRechargeLevel int
	TapBotLevel         int
	SpinEnergy          int
	Boss                Boss
	FreeBoosts          FreeBoosts
	Nonce               string
}

// Level returns the current level of the stat bought by the given upgrade.
func (s GameState) Level(upgrade UpgradeType) int {
	switch upgrade {
	case UpgradeDamage:
		return s.WeaponLevel
	case UpgradeEnergyCap:
		return s.EnergyLimitLevel
	case UpgradeEnergyRechargeRate:
		return s.EnergyRechargeLevel
	case UpgradeTapBot:
		return s.TapBotLevel
	default:
		return 0
	}
}

// MaxUpgradeLevel is the highest level whose cost fits in an int64.
const MaxUpgradeLevel = 54

// UpgradeCost is the coin price of reaching level. Levels past
// MaxUpgradeLevel cost math.MaxInt64, which no balance can exceed.
func UpgradeCost(level int) int64 {
	if level < 1 {
		return 0
	}
	if level > MaxUpgradeLevel {
		return math.MaxInt64
	}
	return 1000 << (level - 1)
}

// CanAfford reports whether balance strictly exceeds the cost of level.
func CanAfford(balance int64, level int) bool {
	return balance > UpgradeCost(level)
}

type TapBatch struct {
	Nonce  string
	Count  int
	Vector string
}

// TapVector builds the comma-joined per-tap vector, one draw in 1..4 per tap.
func TapVector(taps int, intN func(int) int) string {
	if taps <= 0 {
		return ""
	}

	var b strings.Builder
	b.Grow(taps * 2)
	for i := range taps {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.Itoa(intN(4) + 1))
	}
	return b.String()
}

var spinMultipliers = [...]int{150, 50, 25, 10, 5, 3, 2, 1}

// SpinMultiplier picks the largest bet that does not exceed the available
// spin energy. It returns 0 when no spins are left.
func SpinMultiplier(spins int) int {
	for _, m := range spinMultipliers {
		if spins >= m {
			return m
		}
	}
	return 0
}

type SpinResult struct {
	RewardAmount int64
	RewardType   string
	SpinEnergy   int
	Coins        int64
}

const (
	TokenLifetime     = 3000 * time.Second
	tokenExpiryMargin = time.Minute
)

type AccessToken struct {
	Value string
	// ExpiresAt is zero when the token carries no readable expiry.
	ExpiresAt time.Time
}

// Stale reports whether a token created at createdAt must be refreshed.
func (t AccessToken) Stale(createdAt, now time.Time) bool {
	if t.Value == "" || createdAt.IsZero() {
		return true
	}
	if now.Sub(createdAt) >= TokenLifetime {
		return true
	}
	if !t.ExpiresAt.IsZero() && !now.Before(t.ExpiresAt.Add(-tokenExpiryMargin)) {
		return true
	}
	return false
}
