package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/robfig/cron/v3"

	"github.com/mchmarny/bureau/pkg/bureau"
)

// startReloader reloads the pipeline source on the cron spec. Runs never
// overlap; a run still in progress skips the next tick.
func startReloader(spec string, p *bureau.Pipeline) (*cron.Cron, error) {
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))

	if _, err := c.AddFunc(spec, func() { reloadSource(p) }); err != nil {
		return nil, fmt.Errorf("invalid reload schedule %q: %w", spec, err)
	}

	c.Start()
	slog.Info("scheduled source reload", "schedule", spec)
	return c, nil
}

func reloadSource(p *bureau.Pipeline) {
	ctx, cancel := context.WithTimeout(context.Background(), reloadTimeout)
	defer cancel()

	n, err := p.Cache().Reload(ctx)
	if err != nil {
		slog.Error("scheduled reload failed, keeping previous data", "error", err)
		return
	}
	slog.Info("scheduled reload complete", "rows", n)
}
