package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/janisto/hola-starter/internal/app"
	"github.com/janisto/hola-starter/internal/config"
	applog "github.com/janisto/hola-starter/internal/platform/logging"
)

// Version can be overridden at build time: -ldflags "-X main.Version=1.2.3"
var Version = "dev"

// errExit carries a non-zero exit code requested through the fx shutdowner.
type errExit int

func (e errExit) Error() string {
	return fmt.Sprintf("exit code %d", int(e))
}

func main() {
	os.Exit(realMain())
}

func realMain() int {
	cfg, cfgErr := config.Load(".env")
	// The logger is built on first use, so development mode must be set before any log call.
	applog.Configure(cfg.Debug)
	defer func() {
		_ = applog.Sync()
	}()

	ctx := context.Background()
	if err := applog.Err(); err != nil {
		fmt.Fprintf(os.Stderr, "logger init error: %v\n", err)
	}
	if cfgErr != nil {
		applog.LogError(ctx, "invalid configuration", cfgErr)
		return 1
	}
	cfg.Version = Version

	if err := run(ctx, cfg); err != nil {
		var code errExit
		if errors.As(err, &code) {
			return int(code)
		}
		applog.LogError(ctx, "server failed", err)
		return 1
	}
	return 0
}

// run starts the application selected by cfg and blocks until a signal or a shutdown request.
func run(ctx context.Context, cfg config.Config) error {
	application, err := app.New(cfg)
	if err != nil {
		return err
	}
	applog.LogInfo(ctx, "starting application",
		zap.String("factory", cfg.Factory),
		zap.String("version", cfg.Version),
		zap.Bool("debug", cfg.Debug),
	)

	startCtx, cancelStart := context.WithTimeout(ctx, application.StartTimeout())
	defer cancelStart()
	if err := application.Start(startCtx); err != nil {
		return fmt.Errorf("start: %w", err)
	}

	sig := <-application.Wait()
	applog.LogInfo(ctx, "shutdown signal received",
		zap.String("signal", fmt.Sprint(sig.Signal)),
		zap.Int("exitCode", sig.ExitCode),
	)

	stopCtx, cancelStop := context.WithTimeout(ctx, application.StopTimeout())
	defer cancelStop()
	if err := application.Stop(stopCtx); err != nil {
		return fmt.Errorf("stop: %w", err)
	}
	if sig.ExitCode != 0 {
		return errExit(sig.ExitCode)
	}
	return nil
}
