package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCORSPreflightForRecycleBinPurge(t *testing.T) {
	handler := CORS([]string{"https://admin.jriit.ac.tz"})(okHandler())

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/recycle-bin/media/m1", nil)
	req.Header.Set("Origin", "https://admin.jriit.ac.tz")
	req.Header.Set("Access-Control-Request-Method", http.MethodDelete)
	req.Header.Set("Access-Control-Request-Headers", "Authorization")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, "https://admin.jriit.ac.tz", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), http.MethodDelete)
}

func TestCORSRejectsUnlistedOrigin(t *testing.T) {
	handler := CORS([]string{"https://admin.jriit.ac.tz"})(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/public/news", nil)
	req.Header.Set("Origin", "https://elsewhere.example")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORSExposesRequestHeaders(t *testing.T) {
	handler := CORS(nil)(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/public/news", nil)
	req.Header.Set("Origin", "https://jriit.ac.tz")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rec.Header().Get("Access-Control-Expose-Headers"), "X-Request-Id")
}
