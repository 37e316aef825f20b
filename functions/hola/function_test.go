package hola

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestHolaGet(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	resp := httptest.NewRecorder()
	holaHandler(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if body := resp.Body.String(); body != Greeting {
		t.Fatalf("expected %q, got %q", Greeting, body)
	}
	if ct := resp.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/plain") {
		t.Fatalf("expected text/plain, got %q", ct)
	}
}

func TestHolaHeadHasNoBody(t *testing.T) {
	req := httptest.NewRequest(http.MethodHead, "/", nil)
	resp := httptest.NewRecorder()
	holaHandler(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if resp.Body.Len() != 0 {
		t.Fatalf("expected empty body, got %q", resp.Body.String())
	}
	if cl := resp.Header().Get("Content-Length"); cl != "12" {
		t.Fatalf("expected Content-Length 12, got %q", cl)
	}
}

func TestHolaUnknownPath(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/tasks", nil)
	resp := httptest.NewRecorder()
	holaHandler(resp, req)

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.Code)
	}
	if resp.Body.String() == Greeting {
		t.Fatal("expected non-greeting body")
	}
}

func TestHolaRejectsOtherMethods(t *testing.T) {
	for _, method := range []string{http.MethodPost, http.MethodPut, http.MethodDelete} {
		t.Run(method, func(t *testing.T) {
			req := httptest.NewRequest(method, "/", nil)
			resp := httptest.NewRecorder()
			holaHandler(resp, req)

			if resp.Code != http.StatusMethodNotAllowed {
				t.Fatalf("expected 405, got %d", resp.Code)
			}
			if allow := resp.Header().Get("Allow"); allow != allowedMethods {
				t.Fatalf("expected Allow %q, got %q", allowedMethods, allow)
			}
		})
	}
}
