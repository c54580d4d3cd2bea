// Config loading for the almanac CLI.
package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/almanac/internal/decoder"
	"github.com/mesh-intelligence/almanac/internal/logging"
	"github.com/mesh-intelligence/almanac/internal/paths"
	"github.com/mesh-intelligence/almanac/pkg/types"
)

const (
	configFileName = "config"
	configFileType = "yaml"
	configFileExt  = "config.yaml"

	envPrefix = "ALMANAC"
)

// Config keys.
const (
	cfgKeyBackend        = "backend"
	cfgKeyDataDir        = "data_dir"
	cfgKeyDBFile         = "db_file"
	cfgKeyBusyTimeout    = "busy_timeout"
	cfgKeyDecoderPath    = "decoder.path"
	cfgKeyDecoderTimeout = "decoder.timeout"
	cfgKeyLogLevel       = "log.level"
	cfgKeyLogFormat      = "log.format"
	cfgKeyMetricsFile    = "metrics.file"
)

// envKeys are bound to ALMANAC_<KEY> variables. data_dir is absent because
// its environment override is resolved by internal/paths with its own
// precedence.
var envKeys = []string{
	cfgKeyBackend,
	cfgKeyDBFile,
	cfgKeyBusyTimeout,
	cfgKeyDecoderPath,
	cfgKeyDecoderTimeout,
	cfgKeyLogLevel,
	cfgKeyLogFormat,
	cfgKeyMetricsFile,
}

// configFile holds the structure written to config.yaml by init.
type configFile struct {
	Backend string        `yaml:"backend"`
	DataDir string        `yaml:"data_dir,omitempty"`
	DBFile  string        `yaml:"db_file"`
	Decoder decoderConfig `yaml:"decoder"`
	Log     logConfig     `yaml:"log"`
	Metrics metricsConfig `yaml:"metrics"`
}

type decoderConfig struct {
	Path    string `yaml:"path"`
	Timeout string `yaml:"timeout"`
}

type logConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type metricsConfig struct {
	File string `yaml:"file"`
}

func defaultConfigFile(dataDir string) configFile {
	return configFile{
		Backend: types.BackendSQLite,
		DataDir: dataDir,
		DBFile:  types.DefaultDBFile,
		Decoder: decoderConfig{Timeout: decoder.DefaultTimeout.String()},
		Log:     logConfig{Level: "info", Format: logging.FormatConsole},
	}
}

// settings is the resolved configuration of one command run.
type settings struct {
	Store          types.Config
	DecoderPath    string
	DecoderTimeout time.Duration
	LogLevel       string
	LogFormat      string
	MetricsFile    string
}

// newViper returns a viper instance with defaults and environment bindings.
func newViper() *viper.Viper {
	v := viper.New()
	v.SetDefault(cfgKeyBackend, types.BackendSQLite)
	v.SetDefault(cfgKeyDBFile, types.DefaultDBFile)
	v.SetDefault(cfgKeyBusyTimeout, types.DefaultBusyTimeout)
	v.SetDefault(cfgKeyDecoderTimeout, decoder.DefaultTimeout)
	v.SetDefault(cfgKeyLogLevel, "info")
	v.SetDefault(cfgKeyLogFormat, logging.FormatConsole)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	for _, key := range envKeys {
		// BindEnv only fails when called without a key.
		_ = v.BindEnv(key)
	}
	return v
}

// readConfig loads config.yaml from configDir into v. A missing file is not
// an error.
func readConfig(v *viper.Viper, configDir string) error {
	v.SetConfigName(configFileName)
	v.SetConfigType(configFileType)
	v.AddConfigPath(configDir)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	return nil
}

// resolveSettings turns v into settings, resolving the data directory with
// dataDirFlag taking precedence.
func resolveSettings(v *viper.Viper, dataDirFlag string) (settings, error) {
	dataDir, err := paths.ResolveDataDir(dataDirFlag, v.GetString(cfgKeyDataDir))
	if err != nil {
		return settings{}, fmt.Errorf("resolve data dir: %w", err)
	}

	s := settings{
		Store: types.Config{
			Backend:     v.GetString(cfgKeyBackend),
			DataDir:     dataDir,
			DBFile:      v.GetString(cfgKeyDBFile),
			BusyTimeout: v.GetDuration(cfgKeyBusyTimeout),
		},
		DecoderPath:    v.GetString(cfgKeyDecoderPath),
		DecoderTimeout: v.GetDuration(cfgKeyDecoderTimeout),
		LogLevel:       v.GetString(cfgKeyLogLevel),
		LogFormat:      v.GetString(cfgKeyLogFormat),
		MetricsFile:    v.GetString(cfgKeyMetricsFile),
	}
	if err := s.Store.Validate(); err != nil {
		return settings{}, fmt.Errorf("invalid store config: %w", err)
	}
	return s, nil
}

// writeConfigIfMissing creates config.yaml with cfg if the file does not
// exist. An existing file is left untouched. Reports whether it wrote.
func writeConfigIfMissing(path string, cfg configFile) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return false, nil
	}
	if !os.IsNotExist(err) {
		return false, fmt.Errorf("stat config file: %w", err)
	}

	data, err := yaml.Marshal(&cfg)
	if err != nil {
		return false, fmt.Errorf("marshal config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return false, fmt.Errorf("create config dir: %w", err)
	}
	return true, os.WriteFile(path, data, 0o644)
}
