// Package config loads the gridws settings. Values are layered as
// Default < config file < GRIDWS_* environment variables.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"gridworkspaces/internal/dbconn"
	"gridworkspaces/internal/diagramconfig"
	"gridworkspaces/internal/logging"
)

const envPrefix = "GRIDWS_"

type Config struct {
	LogLevel      string                  `json:"logLevel" yaml:"logLevel" toml:"log-level"`
	Listen        string                  `json:"listen" yaml:"listen" toml:"listen"`
	Database      dbconn.ConnectionConfig `json:"database" yaml:"database" toml:"database"`
	DiagramConfig DiagramConfig           `json:"diagramConfig" yaml:"diagramConfig" toml:"diagram-config"`
}

// DiagramConfig points at the external diagram configuration service. An
// empty URL keeps diagram configurations in memory.
type DiagramConfig struct {
	URL      string                    `json:"url,omitempty" yaml:"url" toml:"url"`
	Timeout  time.Duration             `json:"timeout" yaml:"timeout" toml:"timeout"`
	RetryMax int                       `json:"retryMax" yaml:"retryMax" toml:"retry-max"`
	OAuth    diagramconfig.OAuthConfig `json:"oauth" yaml:"oauth" toml:"oauth"`
}

// Default generates default config
func Default() *Config {
	return &Config{
		LogLevel: logging.DefaultLevel,
		Listen:   ":8080",
		Database: dbconn.ConnectionConfig{
			Driver: "sqlite",
			Path:   "gridworkspaces.db",
		},
		DiagramConfig: DiagramConfig{
			Timeout: 10 * time.Second,
		},
	}
}

// Load returns Default overlaid with the file at path, if any, and then with
// the environment. The file format follows the extension: .toml is TOML,
// anything else YAML. Unknown keys are rejected.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		fromFile, err := readFile(path)
		if err != nil {
			return nil, err
		}
		cfg.merge(fromFile)
	}
	fromEnv, err := readFromEnv()
	if err != nil {
		return nil, err
	}
	cfg.merge(fromEnv)
	return cfg, nil
}

func readFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("can't open config: %w", err)
	}
	defer f.Close()

	if strings.EqualFold(filepath.Ext(path), ".toml") {
		return decodeTOML(f)
	}
	return decodeYAML(f)
}

func decodeYAML(r io.Reader) (*Config, error) {
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	tmp := &Config{}
	if err := decoder.Decode(tmp); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("can't decode config: %w", err)
	}
	return tmp, nil
}

func decodeTOML(r io.Reader) (*Config, error) {
	tmp := &Config{}
	md, err := toml.NewDecoder(r).Decode(tmp)
	if err != nil {
		return nil, fmt.Errorf("can't decode config: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("can't decode config: unknown keys %s", strings.Join(keys, ", "))
	}
	return tmp, nil
}

func readFromEnv() (*Config, error) {
	cfg := &Config{}

	cfg.LogLevel = GetEnv("LOG_LEVEL", "")
	cfg.Listen = GetEnv("LISTEN", "")
	cfg.Database.Driver = GetEnv("DB_DRIVER", "")
	cfg.Database.Path = GetEnv("DB_PATH", "")
	cfg.Database.Host = GetEnv("DB_HOST", "")
	cfg.Database.Database = GetEnv("DB_NAME", "")
	cfg.Database.Username = GetEnv("DB_USER", "")
	cfg.Database.Password = GetEnv("DB_PASSWORD", "")
	cfg.DiagramConfig.URL = GetEnv("DIAGRAM_CONFIG_URL", "")

	if port := GetEnv("DB_PORT", ""); port != "" {
		n, err := strconv.Atoi(port)
		if err != nil {
			return nil, fmt.Errorf("invalid %sDB_PORT: %s", envPrefix, port)
		}
		cfg.Database.Port = n
	}
	if timeoutStr := GetEnv("DIAGRAM_CONFIG_TIMEOUT", ""); timeoutStr != "" {
		timeout, err := time.ParseDuration(timeoutStr)
		if err != nil {
			return nil, fmt.Errorf("invalid duration value: %s", timeoutStr)
		}
		cfg.DiagramConfig.Timeout = timeout
	}
	if retry := GetEnv("DIAGRAM_CONFIG_RETRY_MAX", ""); retry != "" {
		n, err := strconv.Atoi(retry)
		if err != nil {
			return nil, fmt.Errorf("invalid %sDIAGRAM_CONFIG_RETRY_MAX: %s", envPrefix, retry)
		}
		cfg.DiagramConfig.RetryMax = n
	}
	return cfg, nil
}

// merge merges this config with another config
// if another config has empty values, then original values are not overwritten
func (cfg *Config) merge(config *Config) {
	if config == nil {
		return
	}
	if config.LogLevel != "" {
		cfg.LogLevel = config.LogLevel
	}
	if config.Listen != "" {
		cfg.Listen = config.Listen
	}
	cfg.Database = mergeDatabase(cfg.Database, config.Database)

	dc := config.DiagramConfig
	if dc.URL != "" {
		cfg.DiagramConfig.URL = dc.URL
	}
	if dc.Timeout != 0 {
		cfg.DiagramConfig.Timeout = dc.Timeout
	}
	if dc.RetryMax != 0 {
		cfg.DiagramConfig.RetryMax = dc.RetryMax
	}
	if dc.OAuth.TokenURL != "" {
		cfg.DiagramConfig.OAuth = dc.OAuth
	}
}

func mergeDatabase(dst, src dbconn.ConnectionConfig) dbconn.ConnectionConfig {
	if src.Driver != "" {
		dst.Driver = src.Driver
	}
	if src.Path != "" {
		dst.Path = src.Path
	}
	if src.Host != "" {
		dst.Host = src.Host
	}
	if src.Port != 0 {
		dst.Port = src.Port
	}
	if src.Database != "" {
		dst.Database = src.Database
	}
	if src.Username != "" {
		dst.Username = src.Username
	}
	if src.Password != "" {
		dst.Password = src.Password
	}
	if src.SSLMode != "" {
		dst.SSLMode = src.SSLMode
	}
	if src.PasswordFromKeyring {
		dst.PasswordFromKeyring = true
	}
	return dst
}

// Validate reports every problem found, not only the first.
func (cfg *Config) Validate() error {
	var problems []error
	if _, err := logging.ParseLevel(cfg.LogLevel); err != nil {
		problems = append(problems, fmt.Errorf("logLevel: %w", err))
	}
	if cfg.Listen == "" {
		problems = append(problems, errors.New("listen is required"))
	}
	if err := cfg.Database.Validate(); err != nil {
		problems = append(problems, err)
	}
	problems = append(problems, cfg.DiagramConfig.validate()...)
	return errors.Join(problems...)
}

func (dc DiagramConfig) validate() []error {
	var problems []error
	if dc.Timeout < 0 {
		problems = append(problems, errors.New("diagramConfig.timeout must not be negative"))
	}
	if dc.RetryMax < 0 {
		problems = append(problems, errors.New("diagramConfig.retryMax must not be negative"))
	}
	if dc.URL == "" && dc.OAuth.Enabled() {
		problems = append(problems, errors.New("diagramConfig.oauth requires diagramConfig.url"))
	}
	return problems
}

// GetEnv returns the GRIDWS_-prefixed variable key, or defaultValue when it
// is not set.
func GetEnv(key, defaultValue string) string {
	if val, ok := os.LookupEnv(envPrefix + key); ok {
		return strings.TrimSpace(val)
	}
	return defaultValue
}
