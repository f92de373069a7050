package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

const (
	configFileMode = 0o644
	configDirMode  = 0o755
)

var ErrConfigExists = errors.New("config file already exists")

// WriteDefaults writes every default setting to path. The encoding follows
// the file extension: .yaml/.yml produce YAML, anything else TOML.
func WriteDefaults(path string, overwrite bool) error {
	if path == "" {
		return errors.New("config path is empty")
	}

	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%w: %s", ErrConfigExists, path)
		} else if !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("stat config file: %w", err)
		}
	}

	data, err := encodeDefaults(path)
	if err != nil {
		return err
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, configDirMode); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, data, configFileMode); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}

	return nil
}

func encodeDefaults(path string) ([]byte, error) {
	defaults := Defaults()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err := yaml.Marshal(defaults)
		if err != nil {
			return nil, fmt.Errorf("encode yaml config: %w", err)
		}
		return data, nil
	default:
		data, err := toml.Marshal(defaults)
		if err != nil {
			return nil, fmt.Errorf("encode toml config: %w", err)
		}
		return data, nil
	}
}
