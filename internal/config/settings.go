package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/sdd-labs/sdd-scaffold/internal/branding"
	"github.com/spf13/viper"
)

const (
	settingsFileName = "config"
	settingsFileType = "yaml"
)

// settingKeys are the keys accepted by Set.
var settingKeys = map[string]bool{
	KeySkillsDir: true,
	KeyStrict:    true,
}

var settings = viper.New()

// Dir returns the settings directory: $SDD_HOME if set, else ~/.sdd/.
func Dir() string {
	if dir := os.Getenv(branding.EnvVar("home")); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", branding.HomeDir())
	}
	return filepath.Join(home, branding.HomeDir())
}

// FilePath returns the full path to the settings file (~/.sdd/config.yaml).
func FilePath() string {
	return filepath.Join(Dir(), settingsFileName+"."+settingsFileType)
}

// EnsureDir creates the settings directory if it does not exist.
func EnsureDir() error {
	dir := Dir()
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}
	return nil
}

// LoadSettings initializes the settings store from the settings file and
// SDD_* environment variables.
func LoadSettings() {
	settings = viper.New()
	settings.SetConfigFile(FilePath())
	settings.SetConfigType(settingsFileType)
	settings.SetEnvPrefix(branding.EnvPrefix())
	settings.AutomaticEnv()

	// Ignore error if the settings file doesn't exist yet.
	_ = settings.ReadInConfig()
}

// Get returns a setting by key. Returns empty string if not set.
func Get(key string) string {
	return settings.GetString(key)
}

// SettingKeys returns the supported setting keys, sorted.
func SettingKeys() []string {
	keys := make([]string, 0, len(settingKeys))
	for k := range settingKeys {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Set writes a setting and saves the settings file.
func Set(key, value string) error {
	if !settingKeys[key] {
		return fmt.Errorf("%w: %q (supported: %v)", ErrUnknownSetting, key, SettingKeys())
	}
	if err := EnsureDir(); err != nil {
		return err
	}

	settings.Set(key, value)

	settingsFile := FilePath()
	if _, err := os.Stat(settingsFile); os.IsNotExist(err) {
		f, err := os.Create(settingsFile)
		if err != nil {
			return fmt.Errorf("creating config file %s: %w", settingsFile, err)
		}
		f.Close()
	}

	if err := settings.WriteConfigAs(settingsFile); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

// StrictDefault reports the user-level strict setting. It is true unless
// the settings file or SDD_STRICT turns it off.
func StrictDefault() bool {
	if !settings.IsSet(KeyStrict) {
		return true
	}
	return settings.GetBool(KeyStrict)
}
