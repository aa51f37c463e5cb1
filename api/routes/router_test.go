package routes

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/meganoshop/megano-backend/pkg/config"
)

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "test", Port: "8080"},
		JWT: config.JWTConfig{
			Secret:            "test-secret",
			Issuer:            "megano-test",
			ExpirationMinutes: 15,
		},
		Session: config.SessionConfig{CookieName: "megano_sid"},
	}
}

func TestRouterServesLiveness(t *testing.T) {
	router := NewRouter(testConfig(), nil, nil, nil, nil, nil, nil, nil, Services{})

	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 but got %d", w.Code)
	}
}

func TestRouterGuardsAdminRoutes(t *testing.T) {
	router := NewRouter(testConfig(), nil, nil, nil, nil, nil, nil, nil, Services{})

	req := httptest.NewRequest(http.MethodPost, "/api/admin/v1/attributes", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 but got %d", w.Code)
	}
}

func TestRouterUnknownRoute(t *testing.T) {
	router := NewRouter(testConfig(), nil, nil, nil, nil, nil, nil, nil, Services{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/nope", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 but got %d", w.Code)
	}
}
