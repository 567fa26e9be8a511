package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	urfave "github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"

	"github.com/mchmarny/bureau/pkg/auth"
	"github.com/mchmarny/bureau/pkg/bureau"
	"github.com/mchmarny/bureau/pkg/config"
	"github.com/mchmarny/bureau/pkg/finding"
	"github.com/mchmarny/bureau/pkg/logging"
	"github.com/mchmarny/bureau/pkg/metrics"
	"github.com/mchmarny/bureau/pkg/source"
)

const (
	appName      = "bctl"
	homeDirName  = "bureau"
	appConfigKey = "app-config"
	keyringURI   = "keyring:"

	formatJSON = "json"
	formatYAML = "yaml"
)

var (
	version = "v0.0.1-default"
	commit  = ""
	date    = ""

	debugFlag = &urfave.BoolFlag{
		Name:  "debug",
		Usage: "Prints verbose logs (optional, default: false)",
	}

	configDirFlag = &urfave.StringFlag{
		Name:    "config",
		Usage:   "Config directory (default: $HOME/.bureau)",
		EnvVars: []string{"BUREAU_CONFIG_DIR"},
	}

	sourceFlag = &urfave.StringFlag{
		Name:  "source",
		Usage: "Tradeline source URI [path.tsv|csv|xlsx, http(s)://, s3://, sqlite://, postgres://, keyring:]",
	}

	formatFlag = &urfave.StringFlag{
		Name:  "format",
		Usage: "Output format [json, yaml]",
		Value: formatJSON,
	}

	asOfFlag = &urfave.StringFlag{
		Name:  "as-of",
		Usage: "Evaluation date YYYY-MM-DD (default: today)",
	}
)

// Execute creates and runs the CLI application.
func Execute() {
	logging.SetDefaultCLILogger("info")

	app := newApp()
	if err := app.Run(os.Args); err != nil {
		slog.Error("fatal error", "error", err)
		os.Exit(1)
	}
}

type appConfig struct {
	Dir     string
	Config  *config.Config
	Store   *auth.Store
	Metrics *metrics.Recorder
	Debug   bool
	Format  string

	// built on first use
	loader   source.Loader
	pipeline *bureau.Pipeline
}

func getConfig(c *urfave.Context) *appConfig {
	return c.App.Metadata[appConfigKey].(*appConfig)
}

func newApp() *urfave.App {
	return &urfave.App{
		Name:                 appName,
		Version:              fmt.Sprintf("%s (%s - %s)", version, commit, date),
		Compiled:             time.Now(),
		EnableBashCompletion: true,
		HideHelpCommand:      true,
		Usage:                "Credit-bureau tradeline features and key findings",
		Metadata:             map[string]any{},
		Flags: []urfave.Flag{
			debugFlag,
			configDirFlag,
			sourceFlag,
			formatFlag,
			asOfFlag,
		},
		Commands: []*urfave.Command{
			featuresCmd,
			summaryCmd,
			findingsCmd,
			reportCmd,
			batchCmd,
			customersCmd,
			serverCmd,
			importCmd,
			configCmd,
			authCmd,
		},
		Before: before,
	}
}

func before(c *urfave.Context) error {
	// preset by tests
	if _, ok := c.App.Metadata[appConfigKey].(*appConfig); ok {
		return nil
	}

	dir := c.String(configDirFlag.Name)
	if dir == "" {
		d, _, err := config.GetOrCreateHomeDir(homeDirName)
		if err != nil {
			return fmt.Errorf("resolving config dir: %w", err)
		}
		dir = d
	}

	cfg, err := config.ReadOrCreate(dir)
	if err != nil {
		return fmt.Errorf("reading config: %w", err)
	}

	if v := c.String(sourceFlag.Name); v != "" {
		cfg.Source.URI = v
	}
	if v := c.String(asOfFlag.Name); v != "" {
		cfg.AsOf = v
	}

	debug := c.Bool(debugFlag.Name)
	if debug {
		cfg.LogLevel = "debug"
	}
	logging.SetDefaultCLILogger(cfg.LogLevel)

	format := formatJSON
	if f := strings.ToLower(c.String(formatFlag.Name)); f == formatYAML || f == "yml" {
		format = formatYAML
	}

	c.App.Metadata[appConfigKey] = &appConfig{
		Dir:     dir,
		Config:  cfg,
		Store:   auth.NewStore(auth.DefaultService, dir),
		Metrics: metrics.New(true),
		Debug:   debug,
		Format:  format,
	}
	return nil
}

// resolveSource returns the configured source URI and the optional bearer
// token, reading either from the keyring as needed.
func resolveSource(cfg *appConfig) (string, string, error) {
	uri := strings.TrimSpace(cfg.Config.Source.URI)
	if uri == keyringURI {
		v, err := cfg.Store.Get(auth.KeySourceURI)
		if err != nil {
			return "", "", fmt.Errorf("reading source uri from keyring: %w", err)
		}
		uri = v
	}
	if uri == "" {
		return "", "", errors.New("source not configured: use --source, BUREAU_SOURCE_URI or bctl auth set --uri")
	}

	token, err := cfg.Store.Get(auth.KeySourceToken)
	if err != nil && !errors.Is(err, auth.ErrNotFound) {
		return "", "", fmt.Errorf("reading source token: %w", err)
	}
	return uri, token, nil
}

func getLoader(ctx context.Context, cfg *appConfig) (source.Loader, error) {
	if cfg.loader != nil {
		return cfg.loader, nil
	}

	uri, token, err := resolveSource(cfg)
	if err != nil {
		return nil, err
	}

	s := cfg.Config.Source
	l, err := source.Open(ctx, uri, source.Options{
		Sheet:      s.Sheet,
		Table:      s.Table,
		Token:      token,
		S3Region:   s.S3Region,
		S3Endpoint: s.S3Endpoint,
	})
	if err != nil {
		return nil, fmt.Errorf("opening source: %w", err)
	}
	cfg.loader = l
	return l, nil
}

func getPipeline(ctx context.Context, cfg *appConfig) (*bureau.Pipeline, error) {
	if cfg.pipeline != nil {
		return cfg.pipeline, nil
	}

	l, err := getLoader(ctx, cfg)
	if err != nil {
		return nil, err
	}

	engine, err := finding.NewEngine(
		finding.WithThresholds(cfg.Config.Thresholds),
		finding.WithCustomRules(cfg.Config.Rules...),
	)
	if err != nil {
		return nil, fmt.Errorf("creating rule engine: %w", err)
	}

	fo, err := cfg.Config.FeatureOptions()
	if err != nil {
		return nil, err
	}

	p, err := bureau.New(source.NewCache(l, cfg.Metrics),
		bureau.WithEngine(engine),
		bureau.WithFeatureOptions(fo),
		bureau.WithObserver(cfg.Metrics),
	)
	if err != nil {
		return nil, fmt.Errorf("creating pipeline: %w", err)
	}
	cfg.pipeline = p
	return p, nil
}

func encode(w io.Writer, format string, v any) error {
	if format == formatYAML {
		e := yaml.NewEncoder(w)
		defer e.Close()
		return e.Encode(v)
	}
	e := json.NewEncoder(w)
	e.SetIndent("", "  ")
	return e.Encode(v)
}

func printOut(c *urfave.Context, v any) error {
	return encode(c.App.Writer, getConfig(c).Format, v)
}
