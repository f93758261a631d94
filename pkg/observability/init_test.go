package observability_test

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/hookpatch/pkg/observability"
)

func TestInit_NoopWhenNoEndpoint(t *testing.T) {
	t.Parallel()

	providers, err := observability.InitWithWriter(observability.DefaultConfig(), io.Discard)
	require.NoError(t, err)

	assert.NotNil(t, providers.Tracer)
	assert.NotNil(t, providers.Meter)
	assert.NotNil(t, providers.Logger)

	ctx, span := providers.Tracer.Start(context.Background(), "test-op")
	span.End()
	assert.NotNil(t, ctx)

	require.NoError(t, providers.Shutdown(context.Background()))
	require.NoError(t, providers.Shutdown(context.Background()))
}

func TestInit_LoggerWritesToWriter(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	cfg := observability.DefaultConfig()
	cfg.LogJSON = true
	cfg.ServiceVersion = "1.2.3"

	providers, err := observability.InitWithWriter(cfg, &buf)
	require.NoError(t, err)

	t.Cleanup(func() { require.NoError(t, providers.Shutdown(context.Background())) })

	providers.Logger.InfoContext(context.Background(), "init test")

	assert.Contains(t, buf.String(), `"msg":"init test"`)
	assert.Contains(t, buf.String(), `"service":"hookpatch"`)
}

type pushRecorder struct {
	mu     sync.Mutex
	method string
	path   string
	body   string
}

func (pr *pushRecorder) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)

	pr.mu.Lock()
	pr.method = r.Method
	pr.path = r.URL.Path
	pr.body = string(body)
	pr.mu.Unlock()

	w.WriteHeader(http.StatusOK)
}

func TestInit_PushesMetricsOnShutdown(t *testing.T) {
	t.Parallel()

	rec := &pushRecorder{}
	srv := httptest.NewServer(rec)
	t.Cleanup(srv.Close)

	cfg := observability.DefaultConfig()
	cfg.PushgatewayURL = srv.URL
	cfg.JobName = "pages-migration"

	providers, err := observability.InitWithWriter(cfg, io.Discard)
	require.NoError(t, err)

	pm, err := observability.NewPatchMetrics(providers.Meter)
	require.NoError(t, err)

	pm.RecordFile(context.Background(), "updated", time.Millisecond, 128)

	require.NoError(t, providers.Shutdown(context.Background()))

	rec.mu.Lock()
	defer rec.mu.Unlock()

	assert.Equal(t, http.MethodPut, rec.method)
	assert.True(t, strings.HasPrefix(rec.path, "/metrics/job/pages-migration"), rec.path)
}

func TestInit_PushFailureSurfacesOnShutdown(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	t.Cleanup(srv.Close)

	cfg := observability.DefaultConfig()
	cfg.PushgatewayURL = srv.URL

	providers, err := observability.InitWithWriter(cfg, io.Discard)
	require.NoError(t, err)

	require.Error(t, providers.Shutdown(context.Background()))
}

func TestParseOTLPHeaders(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  map[string]string
	}{
		{"empty", "", nil},
		{"single", "key=value", map[string]string{"key": "value"}},
		{"multiple", "k1=v1,k2=v2", map[string]string{"k1": "v1", "k2": "v2"}},
		{"spaces", " k1 = v1 , k2 = v2 ", map[string]string{"k1": "v1", "k2": "v2"}},
		{"no_equals", "invalid", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, observability.ParseOTLPHeaders(tt.input))
		})
	}
}
