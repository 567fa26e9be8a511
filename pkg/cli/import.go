package cli

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/mchmarny/bureau/pkg/source"
)

var (
	toFlag = &cli.StringFlag{
		Name:     "to",
		Usage:    "Target database [sqlite://path.db, postgres://...]",
		Required: true,
	}

	tableFlag = &cli.StringFlag{
		Name:  "table",
		Usage: "Target table, replaced on every import",
		Value: source.DefaultTable,
	}

	historyFlag = &cli.BoolFlag{
		Name:  "history",
		Usage: "Print the import log of the target instead of importing",
	}

	importCmd = &cli.Command{
		Name:    "import",
		Aliases: []string{"i"},
		Usage:   "Copy the configured tradeline source into a SQL table",
		UsageText: `bctl --source tradelines.xlsx import --to sqlite://bureau.db   # snapshot a workbook
   bctl import --to postgres://u:p@db:5432/risk --table raw.tradelines
   bctl import --to sqlite://bureau.db --history                 # list previous imports`,
		Action: cmdImport,
		Flags: []cli.Flag{
			toFlag,
			tableFlag,
			historyFlag,
		},
	}
)

// ImportResult is printed after a successful import.
type ImportResult struct {
	Source   string `json:"source" yaml:"source"`
	Target   string `json:"target" yaml:"target"`
	Table    string `json:"table" yaml:"table"`
	Rows     int    `json:"rows" yaml:"rows"`
	Duration string `json:"duration" yaml:"duration"`
}

func cmdImport(c *cli.Context) error {
	start := time.Now()
	cfg := getConfig(c)
	table := c.String(tableFlag.Name)

	driver, dsn, err := source.ParseDSN(c.String(toFlag.Name))
	if err != nil {
		return err
	}

	db, err := source.GetDB(driver, dsn)
	if err != nil {
		return err
	}
	defer db.Close()

	if c.Bool(historyFlag.Name) {
		list, err := source.ImportHistory(c.Context, db)
		if err != nil {
			return fmt.Errorf("reading import log: %w", err)
		}
		return printOut(c, list)
	}

	l, err := getLoader(c.Context, cfg)
	if err != nil {
		return err
	}

	slog.Info("loading tradelines", "source", l.Name())
	records, err := l.Load(c.Context)
	if err != nil {
		return fmt.Errorf("loading source: %w", err)
	}

	n, err := source.Import(c.Context, db, driver, l.Name(), table, records)
	if err != nil {
		return fmt.Errorf("importing into %s: %w", table, err)
	}

	target, err := source.NewSQLLoader(driver, dsn, table)
	if err != nil {
		return err
	}

	return printOut(c, &ImportResult{
		Source:   l.Name(),
		Target:   target.Name(),
		Table:    table,
		Rows:     n,
		Duration: time.Since(start).String(),
	})
}
