package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"research-summary/internal/config"
)

func TestHealthHandler_ReturnsOk(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/health", healthHandler)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/health", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 OK, got %d: %s", w.Code, w.Body.String())
	}
	if !contains(w.Body.String(), "ok") {
		t.Errorf("expected response to contain 'ok', got: %s", w.Body.String())
	}
}

func TestConfigHandler_HidesSecrets(t *testing.T) {
	cfg := &config.Config{}
	cfg.SerpAPI.APIKey = "serp-secret"
	cfg.Gemini.APIKey = "gemini-secret"
	cfg.Gemini.Model = "gemini-1.5-flash"
	cfg.Server.ShareSecret = "share-secret"

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/config", configHandler(cfg, &Deps{}))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/config", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 OK, got %d: %s", w.Code, w.Body.String())
	}
	body := w.Body.String()
	if !contains(body, `"gemini-1.5-flash"`) {
		t.Errorf("expected model in config, got: %s", body)
	}
	if !contains(body, `"configured":false`) {
		t.Errorf("expected provider status, got: %s", body)
	}
	for _, secret := range []string{"serp-secret", "gemini-secret", "share-secret"} {
		if contains(body, secret) {
			t.Errorf("config leaked %q: %s", secret, body)
		}
	}
}
