// Command harvest-server exposes harvest runs over HTTP.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"seoul-news-harvester/internal/bootstrap"
	"seoul-news-harvester/internal/config"
	"seoul-news-harvester/pkg/logger"
)

const shutdownTimeout = 30 * time.Second

func main() {
	cfgFile := flag.String("config", "", "config file (default ./config.yaml or ./config/config.yaml)")
	dryRun := flag.Bool("dry-run", false, "use in-memory stores")
	flag.Parse()

	if err := run(*cfgFile, *dryRun); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(cfgFile string, dryRun bool) error {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	v, err := config.NewViper(cfgFile)
	if err != nil {
		return &bootstrap.StartupError{Stage: "config", Err: err}
	}
	cfg, err := config.Load(v)
	if err != nil {
		return &bootstrap.StartupError{Stage: "config", Err: err}
	}

	app, err := bootstrap.New(ctx, cfg, bootstrap.Options{DryRun: dryRun})
	if err != nil {
		return err
	}
	defer app.Close()

	if cfg.Logging.Development {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	h := newHandler(app, app.Logger)

	srv := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      h.routes(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		app.Logger.Info("listening", logger.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	app.Logger.Info("shutting down")
	return srv.Shutdown(shutdownCtx)
}
