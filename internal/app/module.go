package app

import (
	"fmt"
	"net/http"
	"time"

	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"

	"github.com/janisto/hola-starter/internal/config"
	applog "github.com/janisto/hola-starter/internal/platform/logging"
	"github.com/janisto/hola-starter/internal/server"
)

const (
	startTimeout = 15 * time.Second
	stopTimeout  = 10 * time.Second
)

// New assembles the application selected by cfg.Factory. Extra options are appended last,
// which lets callers populate or decorate the graph.
func New(cfg config.Config, opts ...fx.Option) (*fx.App, error) {
	factory, err := Lookup(cfg.Factory)
	if err != nil {
		return nil, err
	}

	app := fx.New(
		fx.WithLogger(func() fxevent.Logger {
			return applog.FxLogger(applog.Logger())
		}),
		fx.StartTimeout(startTimeout),
		fx.StopTimeout(stopTimeout),
		fx.Supply(cfg),
		fx.Provide(func(cfg config.Config) (http.Handler, error) {
			h, err := factory(cfg)
			if err != nil {
				return nil, fmt.Errorf("factory %s: %w", cfg.Factory, err)
			}
			return h, nil
		}),
		server.Module,
		fx.Options(opts...),
	)
	if err := app.Err(); err != nil {
		return nil, err
	}
	return app, nil
}
