package config

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/mchmarny/bureau/pkg/feature"
	"github.com/mchmarny/bureau/pkg/finding"
)

const (
	configFileName = "config.yaml"
	dirMode        = 0700
	fileMode       = 0600

	// EnvPrefix prefixes every environment override, e.g. BUREAU_LOG_LEVEL.
	EnvPrefix = "BUREAU"

	DefaultConcurrency = 8
	asOfLayout         = "2006-01-02"
)

// Source locates the raw tradeline table.
type Source struct {
	// URI is a path or URL understood by the source package, or "keyring:"
	// to read it from the OS keyring.
	URI        string `yaml:"uri" split_words:"true"`
	Sheet      string `yaml:"sheet,omitempty" split_words:"true"`
	Table      string `yaml:"table,omitempty" split_words:"true" validate:"omitempty,max=128"`
	S3Region   string `yaml:"s3Region,omitempty" split_words:"true"`
	S3Endpoint string `yaml:"s3Endpoint,omitempty" split_words:"true" validate:"omitempty,url"`
}

// Config represents app config object.
type Config struct {
	LogLevel    string   `yaml:"logLevel" split_words:"true" validate:"oneof=debug info warn warning error"`
	Source      Source   `yaml:"source"`
	OnUsSectors []string `yaml:"onUsSectors" split_words:"true"`
	// AsOf fixes the evaluation date (YYYY-MM-DD); empty means today.
	AsOf        string `yaml:"asOf,omitempty" split_words:"true" validate:"omitempty,datetime=2006-01-02"`
	Concurrency int    `yaml:"concurrency" split_words:"true" validate:"gte=1,lte=256"`
	// ReloadEvery is a cron spec for reloading the source while serving.
	ReloadEvery string `yaml:"reloadEvery,omitempty" split_words:"true"`

	Thresholds finding.Thresholds   `yaml:"thresholds" ignored:"true"`
	Rules      []finding.CustomRule `yaml:"rules,omitempty" ignored:"true" validate:"dive"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		LogLevel:    "info",
		OnUsSectors: append([]string(nil), feature.DefaultOnUsSectors...),
		Concurrency: DefaultConcurrency,
		Thresholds:  finding.DefaultThresholds(),
	}
}

// Validate checks the field constraints and the threshold ladders.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return errors.Wrap(err, "invalid config")
	}
	return nil
}

// FeatureOptions returns the feature builder options. A zero AsOf means the
// caller's clock decides.
func (c *Config) FeatureOptions() (feature.Options, error) {
	o := feature.Options{OnUsSectors: c.OnUsSectors}
	if c.AsOf == "" {
		return o, nil
	}
	t, err := time.Parse(asOfLayout, c.AsOf)
	if err != nil {
		return o, errors.Wrapf(err, "invalid as-of date: %s", c.AsOf)
	}
	o.AsOf = t
	return o, nil
}

// ApplyEnv overrides c with any BUREAU_* environment variables.
func ApplyEnv(c *Config) error {
	if c == nil {
		return errors.New("config required")
	}
	if err := envconfig.Process(EnvPrefix, c); err != nil {
		return errors.Wrap(err, "failed to process environment overrides")
	}
	return nil
}

func Save(dirPath string, c *Config) error {
	if dirPath == "" {
		return errors.New("config directory required")
	}
	if c == nil {
		return errors.New("config required")
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return errors.Wrap(err, "failed to marshal config")
	}
	path := filepath.Join(dirPath, configFileName)
	if err := os.WriteFile(path, b, fileMode); err != nil {
		return errors.Wrapf(err, "failed to write config file: %s", configFileName)
	}
	return nil
}

// ReadOrCreate reads app config from directory or creates a new one. Values
// missing from the file keep their defaults; environment overrides apply
// last and the result is validated.
func ReadOrCreate(dirPath string) (*Config, error) {
	if dirPath == "" {
		return nil, errors.New("config directory required")
	}

	if _, err := os.Stat(dirPath); errors.Is(err, os.ErrNotExist) {
		err := os.MkdirAll(dirPath, dirMode)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to create dir: %s", dirPath)
		}
	}

	path := filepath.Join(dirPath, configFileName)

	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		slog.Debug("creating default config", "path", path)
		if err := Save(dirPath, Default()); err != nil {
			return nil, errors.Wrap(err, "failed to create default config")
		}
	}

	j, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "error opening config file: %s", path)
	}
	defer j.Close()

	b, err := io.ReadAll(j)
	if err != nil {
		return nil, errors.Wrapf(err, "error reading config file: %s", path)
	}

	c := Default()
	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, errors.Wrapf(err, "error unmarshalling config file: %s", path)
	}

	if err := ApplyEnv(c); err != nil {
		return nil, err
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// GetOrCreateHomeDir returns the home directory for the current user.
// The create flag is set to true if the directory was created.
func GetOrCreateHomeDir(name string) (path string, created bool, err error) {
	if name == "" {
		return "", false, errors.New("name cannot be empty")
	}

	if !strings.HasPrefix(name, ".") {
		name = "." + name
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", false, errors.Wrap(err, "failed to get user home dir")
	}
	slog.Debug("home dir", "path", home)

	dir := filepath.Join(home, name)
	if _, err := os.Stat(dir); errors.Is(err, os.ErrNotExist) {
		slog.Debug("creating dir", "path", dir)
		err := os.Mkdir(dir, dirMode)
		if err != nil {
			return "", false, errors.Wrapf(err, "failed to create dir: %s", dir)
		}
		created = true
	}
	return dir, created, nil
}
