package app

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	_ "github.com/danielgtaylor/huma/v2/formats/cbor"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/janisto/hola-starter/internal/config"
	"github.com/janisto/hola-starter/internal/http/routes"
	applog "github.com/janisto/hola-starter/internal/platform/logging"
	appmiddleware "github.com/janisto/hola-starter/internal/platform/middleware"
	"github.com/janisto/hola-starter/internal/platform/respond"
)

const apiTitle = "Hola Starter"

// NewRouter builds the default application: the full middleware stack in front of the routes.
func NewRouter(cfg config.Config) (http.Handler, error) {
	router := chi.NewRouter()
	router.NotFound(respond.NotFoundHandler())
	router.MethodNotAllowed(respond.MethodNotAllowedHandler())

	router.Use(
		appmiddleware.Security(),
		appmiddleware.Vary(),
		appmiddleware.CORS(),
		appmiddleware.RequestID(),
		// RealIP trusts X-Real-IP / X-Forwarded-For. Only deploy behind a proxy that sets them.
		chimiddleware.RealIP,
		chimiddleware.RequestSize(1<<20), // 1 MB limit
		// HEAD falls through to the GET route when no HEAD route exists.
		chimiddleware.GetHead,
		applog.RequestLogger(),
		applog.AccessLogger(),
		respond.Recoverer(),
	)

	api := humachi.New(router, apiConfig(cfg))
	routes.Register(api)
	return router, nil
}

// NewMinimalRouter builds the bare application: routes, problem responses and panic recovery only.
func NewMinimalRouter(cfg config.Config) (http.Handler, error) {
	router := chi.NewRouter()
	router.NotFound(respond.NotFoundHandler())
	router.MethodNotAllowed(respond.MethodNotAllowedHandler())
	router.Use(
		chimiddleware.GetHead,
		respond.Recoverer(),
	)

	api := humachi.New(router, apiConfig(cfg))
	routes.Register(api)
	return router, nil
}

// apiConfig disables the generated documentation routes so that "/" is the only path served.
func apiConfig(cfg config.Config) huma.Config {
	version := cfg.Version
	if version == "" {
		version = "dev"
	}
	hc := huma.DefaultConfig(apiTitle, version)
	hc.OpenAPIPath = ""
	hc.DocsPath = ""
	hc.SchemasPath = ""
	// The default hook adds a $schema link pointing at SchemasPath.
	hc.CreateHooks = nil
	return hc
}
