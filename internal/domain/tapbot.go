package domain

import "time"

type TapBotConfig struct {
	UsedAttempts  int
	TotalAttempts int
	Purchased     bool
	// EndsAt is zero when no bot run is scheduled.
	EndsAt time.Time
}

func (c TapBotConfig) HasAttempts() bool {
	return c.UsedAttempts < c.TotalAttempts
}

func (c TapBotConfig) Running() bool {
	return !c.EndsAt.IsZero()
}

type TapBotRun struct {
	DamagePerSec int64
	EndsAt       time.Time
}
