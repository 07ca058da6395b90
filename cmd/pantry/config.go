// Config loading for the pantry CLI.
package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/pantry/internal/logging"
	"github.com/mesh-intelligence/pantry/pkg/types"
)

const (
	configFileName = "config"
	configFileType = "yaml"
	configFileExt  = "config.yaml"

	cfgKeyBackend       = "backend"
	cfgKeyDataDir       = "data_dir"
	cfgKeyLogFile       = "log_file"
	cfgKeyLogLevel      = "log_level"
	cfgKeyLogMaxSizeMB  = "log_max_size_mb"
	cfgKeyLogMaxFiles   = "log_max_files"
	envLogLevel         = "PANTRY_LOG_LEVEL"
	defaultLogLevel     = "warn"
	defaultLogMaxSizeMB = 10
	defaultLogMaxFiles  = 5
)

// settingsFile mirrors config.yaml.
type settingsFile struct {
	Backend      string `yaml:"backend"`
	DataDir      string `yaml:"data_dir,omitempty"`
	LogFile      string `yaml:"log_file,omitempty"`
	LogLevel     string `yaml:"log_level"`
	LogMaxSizeMB int    `yaml:"log_max_size_mb"`
	LogMaxFiles  int    `yaml:"log_max_files"`
}

func defaultSettings() settingsFile {
	return settingsFile{
		Backend:      types.BackendSQLite,
		LogLevel:     defaultLogLevel,
		LogMaxSizeMB: defaultLogMaxSizeMB,
		LogMaxFiles:  defaultLogMaxFiles,
	}
}

// loadConfig reads config.yaml from configDir, creating the directory and a
// default file on first run. PANTRY_LOG_LEVEL overrides log_level.
func loadConfig(configDir string) (settingsFile, error) {
	if err := ensureConfigDir(configDir); err != nil {
		return settingsFile{}, fmt.Errorf("ensure config dir: %w", err)
	}
	if err := ensureDefaultConfigFile(configDir); err != nil {
		return settingsFile{}, fmt.Errorf("ensure default config: %w", err)
	}

	def := defaultSettings()
	v := viper.New()
	v.SetDefault(cfgKeyBackend, def.Backend)
	v.SetDefault(cfgKeyLogLevel, def.LogLevel)
	v.SetDefault(cfgKeyLogMaxSizeMB, def.LogMaxSizeMB)
	v.SetDefault(cfgKeyLogMaxFiles, def.LogMaxFiles)
	if err := v.BindEnv(cfgKeyLogLevel, envLogLevel); err != nil {
		return settingsFile{}, fmt.Errorf("bind env: %w", err)
	}
	v.SetConfigName(configFileName)
	v.SetConfigType(configFileType)
	v.AddConfigPath(configDir)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return settingsFile{}, fmt.Errorf("read config: %w", err)
		}
	}

	return settingsFile{
		Backend:      v.GetString(cfgKeyBackend),
		DataDir:      v.GetString(cfgKeyDataDir),
		LogFile:      v.GetString(cfgKeyLogFile),
		LogLevel:     v.GetString(cfgKeyLogLevel),
		LogMaxSizeMB: v.GetInt(cfgKeyLogMaxSizeMB),
		LogMaxFiles:  v.GetInt(cfgKeyLogMaxFiles),
	}, nil
}

func ensureConfigDir(configDir string) error {
	return os.MkdirAll(configDir, 0o755)
}

// ensureDefaultConfigFile writes the default config.yaml unless one exists.
func ensureDefaultConfigFile(configDir string) error {
	path := filepath.Join(configDir, configFileExt)

	_, err := os.Stat(path)
	if err == nil {
		return nil
	}
	if !os.IsNotExist(err) {
		return fmt.Errorf("stat config file: %w", err)
	}

	body, err := yaml.Marshal(defaultSettings())
	if err != nil {
		return fmt.Errorf("encode default config: %w", err)
	}
	header := []byte("# Pantry CLI configuration\n# data_dir and log_file are optional.\n")
	return os.WriteFile(path, append(header, body...), 0o644)
}

// newLogger builds the operation logger described by s.
func newLogger(s settingsFile) (*slog.Logger, io.Closer, error) {
	l, closer, err := logging.New(logging.Config{
		File:      s.LogFile,
		Level:     s.LogLevel,
		MaxSizeMB: s.LogMaxSizeMB,
		MaxFiles:  s.LogMaxFiles,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("configure logging: %w", err)
	}
	return l, closer, nil
}
