package cli

import (
	"fmt"

	urfave "github.com/urfave/cli/v2"

	"github.com/mchmarny/bureau/pkg/behavior"
)

var (
	crnFlag = &urfave.Int64Flag{
		Name:     "crn",
		Usage:    "Customer reference number",
		Required: true,
	}

	behaviorFlag = &urfave.StringFlag{
		Name:    "behavior",
		Aliases: []string{"b"},
		Usage:   "Path to a behavioral features JSON file (optional)",
	}

	featuresCmd = &urfave.Command{
		Name:    "features",
		Aliases: []string{"f"},
		Usage:   "Print the per-loan-type feature vectors of a customer",
		Action:  cmdFeatures,
		Flags:   []urfave.Flag{crnFlag},
	}

	summaryCmd = &urfave.Command{
		Name:    "summary",
		Aliases: []string{"s"},
		Usage:   "Print the portfolio summary of a customer",
		Action:  cmdSummary,
		Flags:   []urfave.Flag{crnFlag},
	}

	findingsCmd = &urfave.Command{
		Name:   "findings",
		Usage:  "Print the severity-ranked key findings of a customer",
		Action: cmdFindings,
		Flags:  []urfave.Flag{crnFlag, behaviorFlag},
	}

	reportCmd = &urfave.Command{
		Name:    "report",
		Aliases: []string{"r"},
		Usage:   "Print the full report (features, summary, findings, digest) of a customer",
		Action:  cmdReport,
		Flags:   []urfave.Flag{crnFlag, behaviorFlag},
	}

	customersCmd = &urfave.Command{
		Name:   "customers",
		Usage:  "List the customer reference numbers in the source",
		Action: cmdCustomers,
	}
)

func loadBehavior(c *urfave.Context) (*behavior.Features, error) {
	path := c.String(behaviorFlag.Name)
	if path == "" {
		return nil, nil
	}
	b, err := behavior.Load(path)
	if err != nil {
		return nil, fmt.Errorf("loading behavioral features: %w", err)
	}
	return b, nil
}

func cmdFeatures(c *urfave.Context) error {
	p, err := getPipeline(c.Context, getConfig(c))
	if err != nil {
		return err
	}

	vectors, err := p.ExtractFeatures(c.Context, c.Int64(crnFlag.Name))
	if err != nil {
		return fmt.Errorf("extracting features: %w", err)
	}
	return printOut(c, vectors)
}

func cmdSummary(c *urfave.Context) error {
	p, err := getPipeline(c.Context, getConfig(c))
	if err != nil {
		return err
	}

	vectors, err := p.ExtractFeatures(c.Context, c.Int64(crnFlag.Name))
	if err != nil {
		return fmt.Errorf("extracting features: %w", err)
	}
	return printOut(c, p.Aggregate(vectors))
}

func cmdFindings(c *urfave.Context) error {
	b, err := loadBehavior(c)
	if err != nil {
		return err
	}

	p, err := getPipeline(c.Context, getConfig(c))
	if err != nil {
		return err
	}

	vectors, err := p.ExtractFeatures(c.Context, c.Int64(crnFlag.Name))
	if err != nil {
		return fmt.Errorf("extracting features: %w", err)
	}
	return printOut(c, p.ExtractKeyFindings(p.Aggregate(vectors), vectors, b))
}

func cmdReport(c *urfave.Context) error {
	b, err := loadBehavior(c)
	if err != nil {
		return err
	}

	p, err := getPipeline(c.Context, getConfig(c))
	if err != nil {
		return err
	}

	r, err := p.Report(c.Context, c.Int64(crnFlag.Name), b)
	if err != nil {
		return fmt.Errorf("computing report: %w", err)
	}
	return printOut(c, r)
}

func cmdCustomers(c *urfave.Context) error {
	p, err := getPipeline(c.Context, getConfig(c))
	if err != nil {
		return err
	}

	list, err := p.Customers(c.Context)
	if err != nil {
		return fmt.Errorf("listing customers: %w", err)
	}
	return printOut(c, list)
}
