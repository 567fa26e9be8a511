package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	urfave "github.com/urfave/cli/v2"

	"github.com/mchmarny/bureau/pkg/behavior"
)

var (
	crnsFlag = &urfave.Int64SliceFlag{
		Name:  "crn",
		Usage: "Customer reference number (can be specified multiple times)",
	}

	allFlag = &urfave.BoolFlag{
		Name:  "all",
		Usage: "Report every customer in the source",
	}

	limitFlag = &urfave.IntFlag{
		Name:  "limit",
		Usage: "Maximum reports computed concurrently (default: config concurrency)",
	}

	behaviorDirFlag = &urfave.StringFlag{
		Name:  "behavior-dir",
		Usage: "Directory of <crn>.json behavioral feature files (optional)",
	}

	batchCmd = &urfave.Command{
		Name:    "batch",
		Aliases: []string{"b"},
		Usage:   "Compute reports for many customers concurrently",
		UsageText: `bctl batch --crn 9449274898 --crn 1234567890   # specific customers
   bctl batch --all --limit 16                    # every customer in the source`,
		Action: cmdBatch,
		Flags: []urfave.Flag{
			crnsFlag,
			allFlag,
			limitFlag,
			behaviorDirFlag,
		},
	}
)

func cmdBatch(c *urfave.Context) error {
	cfg := getConfig(c)
	p, err := getPipeline(c.Context, cfg)
	if err != nil {
		return err
	}

	crns := c.Int64Slice(crnsFlag.Name)
	if c.Bool(allFlag.Name) {
		if crns, err = p.Customers(c.Context); err != nil {
			return fmt.Errorf("listing customers: %w", err)
		}
	}
	if len(crns) == 0 {
		return errors.New("either --crn or --all is required")
	}

	b, err := loadBehaviorDir(c.String(behaviorDirFlag.Name), crns)
	if err != nil {
		return err
	}

	limit := c.Int(limitFlag.Name)
	if limit <= 0 {
		limit = cfg.Config.Concurrency
	}

	list, err := p.ReportAll(c.Context, crns, b, limit)
	if err != nil {
		return fmt.Errorf("computing reports: %w", err)
	}
	return printOut(c, list)
}

// loadBehaviorDir reads <dir>/<crn>.json for each customer that has one.
func loadBehaviorDir(dir string, crns []int64) (map[int64]*behavior.Features, error) {
	m := make(map[int64]*behavior.Features)
	if dir == "" {
		return m, nil
	}

	for _, crn := range crns {
		path := filepath.Join(dir, strconv.FormatInt(crn, 10)+".json")
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			continue
		}
		b, err := behavior.Load(path)
		if err != nil {
			return nil, fmt.Errorf("loading %s: %w", strings.TrimPrefix(path, dir+string(filepath.Separator)), err)
		}
		m[crn] = b
	}
	return m, nil
}
