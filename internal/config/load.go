package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cast"
	"github.com/spf13/viper"
)

const (
	keyGraphQLURL         = "graphql_url"
	keyRequestTimeout     = "request_timeout"
	keyQueryIDsPath       = "query_ids_path"
	keyProxiesPath        = "proxies_path"
	keySignaturesPath     = "user_agents_path"
	keySnapshotsPath      = "snapshots_path"
	keyUseProxyFromFile   = "use_proxy_from_file"
	keyCheckProxy         = "check_proxy"
	keyProxyCheckURL      = "proxy_check_url"
	keySignatureStore     = "signature_store"
	keyRedisAddr          = "redis_addr"
	keyRedisPassword      = "redis_password"
	keyRedisDB            = "redis_db"
	keyRedisKey           = "redis_signatures_key"
	keyStatusAddr         = "status_addr"
	keyLogLevel           = "log_level"
	keyLogFormat          = "log_format"
	keyRandomTapsCount    = "random_taps_count"
	keySleepBetweenTap    = "sleep_between_tap"
	keyMinAvailableEnergy = "min_available_energy"
	keySleepByMinEnergy   = "sleep_by_min_energy"
	keyAddTapsOnTurbo     = "add_taps_on_turbo"
	keyActiveTurboDelay   = "active_turbo_delay"
	keyApplyDailyEnergy   = "apply_daily_energy"
	keyApplyDailyTurbo    = "apply_daily_turbo"
	keyAutoUpgradeTap     = "auto_upgrade_tap"
	keyMaxTapLevel        = "max_tap_level"
	keyAutoUpgradeEnergy  = "auto_upgrade_energy"
	keyMaxEnergyLevel     = "max_energy_level"
	keyAutoUpgradeCharge  = "auto_upgrade_charge"
	keyMaxChargeLevel     = "max_charge_level"
	keyUseTapBot          = "use_tap_bot"
	keyAutoPlaySpin       = "auto_play_spin"
	keyAutoClearMission   = "auto_clear_mission"
)

const (
	defaultConfigName = "config"
	defaultEnvFile    = ".env"
)

// Defaults returns a fresh copy of every configurable key and its default.
func Defaults() map[string]any {
	return map[string]any{
		keyGraphQLURL:         "https://api-gw-tg.memefi.club/graphql",
		keyRequestTimeout:     "30s",
		keyQueryIDsPath:       "query_ids.txt",
		keyProxiesPath:        "proxies.txt",
		keySignaturesPath:     "user_agents.json",
		keySnapshotsPath:      "sessions.toml",
		keyUseProxyFromFile:   false,
		keyCheckProxy:         true,
		keyProxyCheckURL:      "http://httpbin.org/ip",
		keySignatureStore:     SignatureStoreFile,
		keyRedisAddr:          "localhost:6379",
		keyRedisPassword:      "",
		keyRedisDB:            0,
		keyRedisKey:           "mtap:signatures",
		keyStatusAddr:         "",
		keyLogLevel:           "info",
		keyLogFormat:          "console",
		keyRandomTapsCount:    []int{50, 200},
		keySleepBetweenTap:    []int{10, 25},
		keyMinAvailableEnergy: 200,
		keySleepByMinEnergy:   []int{1800, 2400},
		keyAddTapsOnTurbo:     2500,
		keyActiveTurboDelay:   2,
		keyApplyDailyEnergy:   true,
		keyApplyDailyTurbo:    true,
		keyAutoUpgradeTap:     true,
		keyMaxTapLevel:        5,
		keyAutoUpgradeEnergy:  true,
		keyMaxEnergyLevel:     5,
		keyAutoUpgradeCharge:  true,
		keyMaxChargeLevel:     5,
		keyUseTapBot:          true,
		keyAutoPlaySpin:       true,
		keyAutoClearMission:   true,
	}
}

type LoadOptions struct {
	// ConfigFile is an explicit config path. When empty, ./config.toml is
	// read if present.
	ConfigFile string
	// EnvFile defaults to ./.env. A missing file is not an error.
	EnvFile string
}

// Load resolves settings from defaults, the optional config file, the .env
// file and the process environment, in increasing precedence.
func Load(opts LoadOptions) (Settings, error) {
	if err := loadEnvFile(opts.EnvFile); err != nil {
		return Settings{}, err
	}

	v := viper.New()
	for key, value := range Defaults() {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return Settings{}, fmt.Errorf("read config file: %w", err)
		}
	} else {
		v.SetConfigName(defaultConfigName)
		v.SetConfigType("toml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return Settings{}, fmt.Errorf("read config file: %w", err)
			}
		}
	}

	settings, err := fromViper(v)
	if err != nil {
		return Settings{}, err
	}
	if err := settings.Validate(); err != nil {
		return Settings{}, fmt.Errorf("validate settings: %w", err)
	}

	return settings, nil
}

func loadEnvFile(path string) error {
	explicit := path != ""
	if !explicit {
		path = defaultEnvFile
	}

	if err := godotenv.Load(path); err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load env file %q: %w", path, err)
	}

	return nil
}

func fromViper(v *viper.Viper) (Settings, error) {
	var errs []error
	rangeOf := func(key string) Range {
		r, err := ParseRange(v.Get(key))
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", key, err))
		}
		return r
	}

	settings := Settings{
		GraphQLURL:       strings.TrimSpace(v.GetString(keyGraphQLURL)),
		RequestTimeout:   v.GetDuration(keyRequestTimeout),
		QueryIDsPath:     v.GetString(keyQueryIDsPath),
		ProxiesPath:      v.GetString(keyProxiesPath),
		SignaturesPath:   v.GetString(keySignaturesPath),
		SnapshotsPath:    v.GetString(keySnapshotsPath),
		UseProxyFromFile: v.GetBool(keyUseProxyFromFile),
		CheckProxy:       v.GetBool(keyCheckProxy),
		ProxyCheckURL:    v.GetString(keyProxyCheckURL),
		SignatureStore:   strings.ToLower(strings.TrimSpace(v.GetString(keySignatureStore))),
		Redis: RedisSettings{
			Addr:     v.GetString(keyRedisAddr),
			Password: v.GetString(keyRedisPassword),
			DB:       v.GetInt(keyRedisDB),
			Key:      v.GetString(keyRedisKey),
		},
		StatusAddr: v.GetString(keyStatusAddr),
		Log: LogSettings{
			Level:  v.GetString(keyLogLevel),
			Format: v.GetString(keyLogFormat),
		},
		Game: GameSettings{
			RandomTapsCount:    rangeOf(keyRandomTapsCount),
			SleepBetweenTap:    rangeOf(keySleepBetweenTap),
			MinAvailableEnergy: v.GetInt64(keyMinAvailableEnergy),
			SleepByMinEnergy:   rangeOf(keySleepByMinEnergy),
			AddTapsOnTurbo:     v.GetInt(keyAddTapsOnTurbo),
			ActiveTurboDelay:   rangeOf(keyActiveTurboDelay),
			ApplyDailyEnergy:   v.GetBool(keyApplyDailyEnergy),
			ApplyDailyTurbo:    v.GetBool(keyApplyDailyTurbo),
			AutoUpgradeTap:     v.GetBool(keyAutoUpgradeTap),
			MaxTapLevel:        v.GetInt(keyMaxTapLevel),
			AutoUpgradeEnergy:  v.GetBool(keyAutoUpgradeEnergy),
			MaxEnergyLevel:     v.GetInt(keyMaxEnergyLevel),
			AutoUpgradeCharge:  v.GetBool(keyAutoUpgradeCharge),
			MaxChargeLevel:     v.GetInt(keyMaxChargeLevel),
			UseTapBot:          v.GetBool(keyUseTapBot),
			AutoPlaySpin:       v.GetBool(keyAutoPlaySpin),
			AutoClearMission:   v.GetBool(keyAutoClearMission),
		},
	}

	if err := errors.Join(errs...); err != nil {
		return Settings{}, err
	}

	return settings, nil
}

// ParseRange accepts a single number, a two-element list, or a string in
// the forms "a", "a,b" and "[a, b]".
func ParseRange(raw any) (Range, error) {
	var values []int

	switch value := raw.(type) {
	case nil:
		return Range{}, errors.New("value is missing")
	case string:
		trimmed := strings.Trim(strings.TrimSpace(value), "[]")
		for _, part := range strings.Split(trimmed, ",") {
			n, err := cast.ToIntE(strings.TrimSpace(part))
			if err != nil {
				return Range{}, fmt.Errorf("parse %q: %w", value, err)
			}
			values = append(values, n)
		}
	case []int:
		values = value
	case []any:
		converted, err := cast.ToIntSliceE(value)
		if err != nil {
			return Range{}, fmt.Errorf("parse list: %w", err)
		}
		values = converted
	default:
		n, err := cast.ToIntE(value)
		if err != nil {
			return Range{}, fmt.Errorf("parse %v: %w", value, err)
		}
		values = []int{n}
	}

	switch len(values) {
	case 1:
		return Fixed(values[0]), nil
	case 2:
		return Range{Min: values[0], Max: values[1]}, nil
	default:
		return Range{}, fmt.Errorf("expected 1 or 2 values, got %d", len(values))
	}
}
