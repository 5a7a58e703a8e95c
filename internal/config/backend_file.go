package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// ConfigFilePath is $XDG_CONFIG_HOME/dogdiet/config.json, or
// ~/.config/dogdiet/config.json when XDG_CONFIG_HOME is unset.
func ConfigFilePath() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		if home, err := os.UserHomeDir(); err == nil {
			dir = filepath.Join(home, ".config")
		} else {
			dir = "."
		}
	}
	return filepath.Join(dir, "dogdiet", "config.json")
}

// fileBackend stores settings as nested JSON ("api.base_url" lives at
// {"api":{"base_url":...}}) through viper.
type fileBackend struct {
	path string
	v    *viper.Viper
}

func newFileBackend(path string) *fileBackend {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("json")
	if err := v.ReadInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "[WARN] could not read config file %s: %v. Using default values.\n", path, err)
	}
	return &fileBackend{path: path, v: v}
}

func (b *fileBackend) save() error {
	if err := os.MkdirAll(filepath.Dir(b.path), 0o700); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}
	if err := b.v.WriteConfigAs(b.path); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return os.Chmod(b.path, 0o600)
}

func (b *fileBackend) GetString(key string) (string, bool, error) {
	if !b.v.IsSet(key) {
		return "", false, nil
	}
	return b.v.GetString(key), true, nil
}

func (b *fileBackend) SetString(key, val string) error {
	b.v.Set(key, val)
	return b.save()
}

// Delete rewrites the file without key. viper has no unset, so the
// remaining settings are copied into a fresh instance.
func (b *fileBackend) Delete(key string) error {
	fresh := viper.New()
	fresh.SetConfigFile(b.path)
	fresh.SetConfigType("json")
	for _, k := range b.v.AllKeys() {
		if k != key {
			fresh.Set(k, b.v.Get(k))
		}
	}
	b.v = fresh
	return b.save()
}
