//go:build integration

package app

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/pyhumph/jriit-cms-sub001/internal/config"
	"github.com/pyhumph/jriit-cms-sub001/internal/handler"
	"github.com/pyhumph/jriit-cms-sub001/internal/middleware"
	"github.com/pyhumph/jriit-cms-sub001/internal/model"
	"github.com/pyhumph/jriit-cms-sub001/internal/router"
	"github.com/pyhumph/jriit-cms-sub001/internal/service"
)

const integrationSecret = "integration-secret"

func newIntegrationServer(t *testing.T) (*httptest.Server, *Core) {
	t.Helper()

	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	cfg := &config.Config{
		DatabaseURL:          url,
		DBMaxConns:           4,
		JWTSecret:            integrationSecret,
		CORSOrigins:          []string{"*"},
		RateLimitRPM:         1000,
		MutationRateLimitRPM: 1000,
		RequestTimeout:       10 * time.Second,
		UploadRoot:           t.TempDir(),
		CleanupTimeout:       2 * time.Second,
	}

	core, err := BuildCore(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(core.Close)

	auth := middleware.NewAuthMiddleware(service.NewTokenService(integrationSecret, time.Minute))
	server := httptest.NewServer(router.New(cfg, auth, noop.NewTracerProvider().Tracer("test"), router.Handlers{
		RecycleBin: handler.NewRecycleBinHandler(core.RecycleBin),
		Public:     handler.NewPublicHandler(service.NewPublicService(core.Registry, time.Millisecond)),
		Audit:      handler.NewAuditHandler(core.Audit),
		Health:     handler.NewHealthHandler(core.DB),
		Docs:       handler.NewDocsHandler(""),
	}))
	t.Cleanup(server.Close)

	return server, core
}

func doRequest(t *testing.T, server *httptest.Server, method string, path string, role string) (int, model.APIResponse) {
	t.Helper()

	req, err := http.NewRequest(method, server.URL+path, nil)
	require.NoError(t, err)

	token, err := service.NewTokenService(integrationSecret, time.Minute).IssueAccessToken(uuid.NewString(), role, role)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := server.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var body model.APIResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return resp.StatusCode, body
}

func TestMediaLifecycleOverHTTP(t *testing.T) {
	server, core := newIntegrationServer(t)
	ctx := context.Background()

	id := uuid.NewString()
	storedPath := "media/" + id + ".jpg"
	require.NoError(t, core.Storage.WriteFile(storedPath, []byte("jpeg")))
	_, err := core.DB.Pool.Exec(ctx,
		`INSERT INTO media (id, filename, file_path) VALUES ($1, $2, $3)`, id, "campus.jpg", storedPath)
	require.NoError(t, err)
	t.Cleanup(func() { _, _ = core.DB.Pool.Exec(context.Background(), `DELETE FROM media WHERE id = $1`, id) })

	status, _ := doRequest(t, server, http.MethodDelete, "/api/v1/content/media/"+id, model.RoleEditor)
	require.Equal(t, http.StatusOK, status)

	status, body := doRequest(t, server, http.MethodGet, "/api/v1/recycle-bin", model.RoleViewer)
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, mustJSON(t, body.Data), id)

	status, _ = doRequest(t, server, http.MethodDelete, "/api/v1/recycle-bin/media/"+id, model.RoleAdmin)
	require.Equal(t, http.StatusOK, status)

	exists, err := core.Storage.Exists(storedPath)
	require.NoError(t, err)
	assert.False(t, exists)

	status, body = doRequest(t, server, http.MethodPost, "/api/v1/recycle-bin/media/"+id+"/restore", model.RoleEditor)
	require.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "NOT_FOUND", body.Error.Code)

	status, body = doRequest(t, server, http.MethodGet, "/api/v1/audit?resource=media/"+id, model.RoleAdmin)
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, mustJSON(t, body.Data), model.AuditActionPermanentDelete)
}

func TestUnknownTypeOverHTTP(t *testing.T) {
	server, _ := newIntegrationServer(t)

	status, body := doRequest(t, server, http.MethodDelete, "/api/v1/recycle-bin/widget/x", model.RoleAdmin)
	require.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "UNKNOWN_RESOURCE_TYPE", body.Error.Code)
}

func mustJSON(t *testing.T, v any) string {
	t.Helper()

	raw, err := json.Marshal(v)
	require.NoError(t, err)
	return string(raw)
}
