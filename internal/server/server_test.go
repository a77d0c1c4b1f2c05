package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"serotonyl.ru/vending-bot/internal/metrics"
)

func TestRoutes(t *testing.T) {
	srv := httptest.NewServer(NewRouter())
	defer srv.Close()

	for path, want := range map[string]string{"/": "bot is running", "/healthz": "ok"} {
		resp, err := http.Get(srv.URL + path)
		require.NoError(t, err)
		body := make([]byte, 64)
		n, _ := resp.Body.Read(body)
		resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode, path)
		assert.Equal(t, want, string(body[:n]), path)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	metrics.Purchases.WithLabelValues("ok").Inc()

	rec := httptest.NewRecorder()
	NewRouter().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "vending_purchases_total")
}
