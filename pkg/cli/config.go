package cli

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/mchmarny/bureau/pkg/config"
)

var (
	configCmd = &cli.Command{
		Name:            "config",
		HideHelpCommand: true,
		Usage:           "Show or reset the configuration",
		Subcommands: []*cli.Command{
			{
				Name:   "show",
				Usage:  "Print the effective configuration as YAML",
				Action: cmdConfigShow,
			},
			{
				Name:      "reset",
				Usage:     "Overwrite the config file with defaults, keeping --source if set",
				UsageText: "bctl --source tradelines.xlsx config reset",
				Action:    cmdConfigReset,
			},
		},
	}
)

func cmdConfigShow(c *cli.Context) error {
	return encode(c.App.Writer, formatYAML, getConfig(c).Config)
}

func cmdConfigReset(c *cli.Context) error {
	cfg := getConfig(c)
	d := config.Default()
	d.Source.URI = c.String(sourceFlag.Name)

	if err := config.Save(cfg.Dir, d); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}
	cfg.Config = d

	fmt.Fprintf(c.App.Writer, "Config written to %s\n", cfg.Dir)
	return nil
}
