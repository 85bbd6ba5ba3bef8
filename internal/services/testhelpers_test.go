package services

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prefeitura-rio/app-cadastro/internal/config"
	"github.com/prefeitura-rio/app-cadastro/internal/logging"
)

// setupBackendTest starts a fake backend API and a client pointed at it
func setupBackendTest(t *testing.T, handler http.Handler) (*BackendClient, *httptest.Server) {
	t.Helper()
	_ = logging.InitLogger()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := &config.Config{
		APIBaseURL:     server.URL,
		BackendTimeout: 5 * time.Second,
		HTTPClientPool: 4,
	}
	client := NewBackendClient(cfg, logging.Logger)
	t.Cleanup(client.Close)

	return client, server
}

// requestLog records "METHOD /path" lines seen by a fake backend
type requestLog struct {
	mu    sync.Mutex
	lines []string
}

func (l *requestLog) add(r *http.Request) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lines = append(l.lines, r.Method+" "+r.URL.Path)
}

func (l *requestLog) all() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.lines...)
}

func int64Ptr(v int64) *int64 {
	return &v
}

func strPtr(v string) *string {
	return &v
}

func stringsReader(s string) io.Reader {
	return strings.NewReader(s)
}
