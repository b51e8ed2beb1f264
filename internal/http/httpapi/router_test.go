package httpapi

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"artify/internal/http/handlers"
	appmw "artify/internal/middleware"

	"github.com/rs/zerolog"
)

func TestRouter(t *testing.T) {
	app := handlers.NewApp(nil, nil, nil, nil)
	h := NewRouter(app, Options{Logger: zerolog.Nop(), RateLimitPerMin: 10, DefaultLocale: "en"})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("healthz status = %d", rec.Code)
	}
	if rec.Header().Get("X-Request-ID") == "" {
		t.Fatal("expected request id header")
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("index status = %d", rec.Code)
	}
	found := false
	for _, c := range rec.Result().Cookies() {
		if c.Name == appmw.SessionCookie {
			found = true
		}
	}
	if !found {
		t.Fatal("expected session cookie on UI routes")
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Accept-Language", "id-ID,id;q=0.9")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if !strings.Contains(rec.Body.String(), "Generator Gambar AI Profesional") {
		t.Fatal("expected Indonesian page")
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/generate", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("GET /generate status = %d", rec.Code)
	}
}
