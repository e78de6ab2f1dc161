package observability

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danmuck/framelink/internal/testutil/testlog"
)

func TestAdminRoutes(t *testing.T) {
	testlog.Start(t)
	RegisterMetrics()
	a := NewAdminServer("framelink", "127.0.0.1:0", func() []EndpointInfo {
		return []EndpointInfo{{Protocol: 0x0063, Name: "ping"}}
	}, zerolog.Nop())
	r := a.router()

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, w.Code)
	var health map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &health))
	assert.Equal(t, "ok", health["status"])
	assert.Equal(t, "framelink", health["service"])
	assert.Equal(t, version, health["version"])
	assert.NotEmpty(t, health["uptime"])

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/endpoints", nil))
	require.Equal(t, http.StatusOK, w.Code)
	var eps struct {
		Endpoints []map[string]string `json:"endpoints"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &eps))
	require.Len(t, eps.Endpoints, 1)
	assert.Equal(t, "0x0063", eps.Endpoints[0]["protocol"])
	assert.Equal(t, "ping", eps.Endpoints[0]["name"])

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}
