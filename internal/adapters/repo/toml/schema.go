package toml

import "fmt"

const currentSchemaVersion = 1

type fileSchema struct {
	Version  int              `toml:"version"`
	Sessions []snapshotSchema `toml:"sessions"`
}

func (s *fileSchema) applyDefaults() {
	if s.Version == 0 {
		s.Version = currentSchemaVersion
	}
}

func (s fileSchema) validateVersion() error {
	if s.Version > currentSchemaVersion {
		return fmt.Errorf("unsupported snapshot schema version %d (current %d)", s.Version, currentSchemaVersion)
	}

	return nil
}

type snapshotSchema struct {
	SessionName string       `toml:"session_name"`
	Proxy       string       `toml:"proxy,omitempty"`
	Balance     int64        `toml:"balance"`
	Energy      energySchema `toml:"energy"`
	Boss        bossSchema   `toml:"boss"`
	TurboActive bool         `toml:"turbo_active"`
	Passes      int          `toml:"passes"`
	LastPassAt  string       `toml:"last_pass_at,omitempty"`
	LastError   string       `toml:"last_error,omitempty"`
}

type energySchema struct {
	Current int64 `toml:"current"`
	Max     int64 `toml:"max"`
}

type bossSchema struct {
	Level     int   `toml:"level"`
	Health    int64 `toml:"health"`
	MaxHealth int64 `toml:"max_health"`
}
