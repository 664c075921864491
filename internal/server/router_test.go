package server

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fekuna/omnipos-catalog-service/internal/category/handler"
	"github.com/fekuna/omnipos-catalog-service/internal/category/usecase"
	"github.com/fekuna/omnipos-catalog-service/internal/logger"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	log := logger.NewNop()
	uc := usecase.NewCategoryUseCase(nil, log)
	srv := httptest.NewServer(NewRouter(handler.NewCategoryHandler(uc, log), log))
	t.Cleanup(srv.Close)
	return srv
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t)
	res, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer res.Body.Close()
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.NotEmpty(t, res.Header.Get("Content-Type"))
}

func TestCategoryRoutesMounted(t *testing.T) {
	srv := newTestServer(t)

	body := strings.NewReader(`{"name":"Electronics","slug":"electronics"}`)
	req, err := http.NewRequest(http.MethodPost, srv.URL+"/api/v1/categories", body)
	require.NoError(t, err)
	req.Header.Set("X-User-ID", "admin-1")
	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, http.StatusCreated, res.StatusCode)

	res, err = http.Get(srv.URL + "/api/v1/categories/tree")
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, http.StatusOK, res.StatusCode)
}

func TestUnknownRoute(t *testing.T) {
	srv := newTestServer(t)
	res, err := http.Get(srv.URL + "/api/v2/things")
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
}
