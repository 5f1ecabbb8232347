package profiler

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serve(t *testing.T, status StatusFunc, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	Handler(status, zerolog.Nop()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestHandler_routes(t *testing.T) {
	tests := []struct {
		path string
		want int
	}{
		{"/debug/pprof/", http.StatusOK},
		{"/debug/pprof/cmdline", http.StatusOK},
		{"/debug/healthz", http.StatusNoContent},
		{"/debug/status", http.StatusNotFound},
		{"/", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, serve(t, nil, tt.path).Code)
		})
	}
}

func TestHandler_status(t *testing.T) {
	calls := 0
	rec := serve(t, func() any {
		calls++
		return map[string]int{"polls": 3}
	}, "/debug/status")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var got map[string]int
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, 3, got["polls"])
	assert.Equal(t, 1, calls)
}

func TestListen_serves_until_closed(t *testing.T) {
	srv, err := Listen(context.Background(), 0, func() any { return "ok" }, zerolog.Nop())
	require.NoError(t, err)
	assert.NotEmpty(t, srv.Addr())

	resp, err := http.Get(srv.URL("/debug/healthz"))
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, srv.Close(ctx))

	_, err = http.Get(srv.URL("/debug/healthz"))
	assert.Error(t, err)
}

func TestListen_port_in_use(t *testing.T) {
	first, err := Listen(context.Background(), 0, nil, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = first.Close(context.Background()) })

	port := first.addr.(*net.TCPAddr).Port
	_, err = Listen(context.Background(), port, nil, zerolog.Nop())
	assert.Error(t, err)
}
