package root

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	applog "github.com/janisto/hola-starter/internal/platform/logging"
	appmiddleware "github.com/janisto/hola-starter/internal/platform/middleware"
	"github.com/janisto/hola-starter/internal/platform/respond"
)

func newTestRouter() chi.Router {
	router := chi.NewRouter()
	router.NotFound(respond.NotFoundHandler())
	router.MethodNotAllowed(respond.MethodNotAllowedHandler())
	router.Use(
		appmiddleware.RequestID(),
		applog.RequestLogger(),
		respond.Recoverer(),
	)
	cfg := huma.DefaultConfig("RootTest", "test")
	cfg.OpenAPIPath = ""
	cfg.DocsPath = ""
	cfg.SchemasPath = ""
	api := humachi.New(router, cfg)
	Register(api)
	return router
}

func TestGetReturnsGreeting(t *testing.T) {
	router := newTestRouter()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(chimiddleware.RequestIDHeader, "root-get")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if body := resp.Body.String(); body != "Hola, Flask!" {
		t.Fatalf("expected body %q, got %q", "Hola, Flask!", body)
	}
	if ct := resp.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/plain") {
		t.Fatalf("expected text/plain, got %q", ct)
	}
}

func TestGetIgnoresAcceptAndQuery(t *testing.T) {
	router := newTestRouter()

	for _, accept := range []string{"application/json", "application/cbor", "*/*", "text/html"} {
		req := httptest.NewRequest(http.MethodGet, "/?lista=general", nil)
		req.Header.Set("Accept", accept)
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, req)

		if resp.Code != http.StatusOK {
			t.Fatalf("Accept %q: expected 200, got %d", accept, resp.Code)
		}
		if body := resp.Body.String(); body != Greeting {
			t.Fatalf("Accept %q: expected greeting, got %q", accept, body)
		}
		if ct := resp.Header().Get("Content-Type"); ct != contentTypeText {
			t.Fatalf("Accept %q: expected %q, got %q", accept, contentTypeText, ct)
		}
	}
}

func TestOtherPathsDoNotReturnGreeting(t *testing.T) {
	router := newTestRouter()

	for _, path := range []string{"/tasks", "/listas", "/hello", "/openapi.json", "/docs"} {
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, path, nil))

		if resp.Code != http.StatusNotFound {
			t.Fatalf("%s: expected 404, got %d", path, resp.Code)
		}
		if resp.Body.String() == Greeting {
			t.Fatalf("%s: unexpected greeting body", path)
		}
	}
}

func TestNonGetMethodsAreRejected(t *testing.T) {
	router := newTestRouter()

	for _, method := range []string{http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete} {
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, httptest.NewRequest(method, "/", strings.NewReader("texto=x")))

		if resp.Code != http.StatusMethodNotAllowed {
			t.Fatalf("%s: expected 405, got %d", method, resp.Code)
		}
		if allow := resp.Header().Get("Allow"); !strings.Contains(allow, http.MethodGet) {
			t.Fatalf("%s: expected Allow to list GET, got %q", method, allow)
		}
	}
}
