package domain

import "time"

// SessionSnapshot is the last-known state of one running session.
type SessionSnapshot struct {
	SessionName   string
	Proxy         string
	Balance       int64
	Energy        int64
	MaxEnergy     int64
	BossLevel     int
	BossHealth    int64
	BossMaxHealth int64
	TurboActive   bool
	Passes        int
	LastPassAt    time.Time
	LastError     string
}

// ApplyState copies the game-derived fields of state into the snapshot.
func (s SessionSnapshot) ApplyState(state GameState) SessionSnapshot {
	s.Balance = state.Coins
	s.Energy = state.CurrentEnergy
	s.MaxEnergy = state.MaxEnergy
	s.BossLevel = state.Boss.Level
	s.BossHealth = state.Boss.CurrentHealth
	s.BossMaxHealth = state.Boss.MaxHealth
	return s
}

// IsStale reports whether no pass completed within maxAge of now.
func (s SessionSnapshot) IsStale(now time.Time, maxAge time.Duration) bool {
	if s.LastPassAt.IsZero() {
		return true
	}
	if maxAge <= 0 {
		return false
	}
	return now.Sub(s.LastPassAt) > maxAge
}
