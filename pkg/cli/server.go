package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/mchmarny/bureau/pkg/bureau"
	"github.com/mchmarny/bureau/pkg/logging"
	"github.com/mchmarny/bureau/pkg/metrics"
)

const (
	serverShutdownWaitSeconds = 5
	serverTimeoutSeconds      = 300
	serverMaxHeaderBytes      = 20
	serverPortDefault         = 8080
)

var (
	portFlag = &cli.IntFlag{
		Name:     "port",
		Usage:    "Port on which the server will listen",
		Value:    serverPortDefault,
		Required: false,
	}

	addressFlag = &cli.StringFlag{
		Name:  "address",
		Usage: "Interface on which the server will listen",
		Value: "127.0.0.1",
	}

	reloadEveryFlag = &cli.StringFlag{
		Name:  "reload-every",
		Usage: "Cron spec for reloading the source, e.g. '@every 1h' or '0 6 * * *' (optional)",
	}

	serverCmd = &cli.Command{
		Name:    "server",
		Aliases: []string{"serve"},
		Usage:   "Start HTTP API server",
		Action:  cmdStartServer,
		Flags: []cli.Flag{
			portFlag,
			addressFlag,
			reloadEveryFlag,
		},
	}
)

func cmdStartServer(c *cli.Context) error {
	cfg := getConfig(c)
	logging.SetDefaultServerLogger(cfg.Config.LogLevel)

	p, err := getPipeline(c.Context, cfg)
	if err != nil {
		return err
	}

	// fail fast on an unreadable source
	if _, err := p.Cache().Get(c.Context); err != nil {
		return fmt.Errorf("loading source: %w", err)
	}

	spec := c.String(reloadEveryFlag.Name)
	if spec == "" {
		spec = cfg.Config.ReloadEvery
	}
	if spec != "" {
		r, err := startReloader(spec, p)
		if err != nil {
			return err
		}
		defer func() { <-r.Stop().Done() }()
	}

	address := fmt.Sprintf("%s:%d", c.String(addressFlag.Name), c.Int(portFlag.Name))
	s := &http.Server{
		Addr:           address,
		Handler:        makeRouter(p, cfg.Metrics),
		ReadTimeout:    serverTimeoutSeconds * time.Second,
		WriteTimeout:   serverTimeoutSeconds * time.Second,
		MaxHeaderBytes: 1 << serverMaxHeaderBytes,
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := s.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("error starting server", "error", err)
			done <- syscall.SIGTERM
		}
	}()

	slog.Info("server started", "address", fmt.Sprintf("http://%s", address), "source", p.Cache().Name())

	<-done

	ctx, cancel := context.WithTimeout(context.Background(), serverShutdownWaitSeconds*time.Second)
	defer cancel()

	if err := s.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("error shutting down server", "error", err)
	}
	return nil
}

func makeRouter(p *bureau.Pipeline, rec *metrics.Recorder) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", healthHandler(p))
	mux.Handle("GET /metrics", rec.Handler())

	// Customer API
	mux.HandleFunc("GET /api/v1/customers", customersAPIHandler(p))
	mux.HandleFunc("GET /api/v1/customers/{crn}/features", featuresAPIHandler(p))
	mux.HandleFunc("GET /api/v1/customers/{crn}/summary", summaryAPIHandler(p))
	mux.HandleFunc("GET /api/v1/customers/{crn}/findings", findingsAPIHandler(p))
	mux.HandleFunc("POST /api/v1/customers/{crn}/report", reportAPIHandler(p))

	// Source API
	mux.HandleFunc("POST /api/v1/source/reload", reloadAPIHandler(p))

	return mux
}
