package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/prefeitura-rio/app-cadastro/internal/config"
	"github.com/prefeitura-rio/app-cadastro/internal/logging"
	"github.com/prefeitura-rio/app-cadastro/internal/models"
	"github.com/prefeitura-rio/app-cadastro/internal/services"
)

// fakeAPI is an in-memory registration backend
type fakeAPI struct {
	mu          sync.Mutex
	people      map[int64]models.Pessoa
	nextID      int64
	reportReady bool
	requests    []string
	bodies      []models.Pessoa
	auditHours  []string
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{people: make(map[int64]models.Pessoa), nextID: 1}
}

func (f *fakeAPI) add(p models.Pessoa) int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := f.nextID
	f.nextID++
	p.ID = &id
	f.people[id] = p
	return id
}

func (f *fakeAPI) log() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.requests...)
}

func (f *fakeAPI) hours() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.auditHours...)
}

func (f *fakeAPI) lastBody() models.Pessoa {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.bodies[len(f.bodies)-1]
}

func (f *fakeAPI) handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/pessoas", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		ids := make([]int64, 0, len(f.people))
		for id := range f.people {
			ids = append(ids, id)
		}
		sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
		people := make([]models.Pessoa, 0, len(ids))
		for _, id := range ids {
			people = append(people, f.people[id])
		}
		_ = json.NewEncoder(w).Encode(people)
	})
	mux.HandleFunc("POST /api/pessoas", func(w http.ResponseWriter, r *http.Request) {
		var p models.Pessoa
		_ = json.NewDecoder(r.Body).Decode(&p)
		f.mu.Lock()
		f.bodies = append(f.bodies, p)
		id := f.nextID
		f.nextID++
		p.ID = &id
		f.people[id] = p
		f.mu.Unlock()
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(p)
	})
	mux.HandleFunc("GET /api/pessoas/{id}", func(w http.ResponseWriter, r *http.Request) {
		id, _ := strconv.ParseInt(r.PathValue("id"), 10, 64)
		f.mu.Lock()
		p, ok := f.people[id]
		f.mu.Unlock()
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_ = json.NewEncoder(w).Encode(p)
	})
	mux.HandleFunc("PUT /api/pessoas/{id}", func(w http.ResponseWriter, r *http.Request) {
		id, _ := strconv.ParseInt(r.PathValue("id"), 10, 64)
		var p models.Pessoa
		_ = json.NewDecoder(r.Body).Decode(&p)
		f.mu.Lock()
		f.bodies = append(f.bodies, p)
		f.people[id] = p
		f.mu.Unlock()
		_ = json.NewEncoder(w).Encode(p)
	})
	mux.HandleFunc("DELETE /api/pessoas/{id}", func(w http.ResponseWriter, r *http.Request) {
		id, _ := strconv.ParseInt(r.PathValue("id"), 10, 64)
		f.mu.Lock()
		delete(f.people, id)
		f.mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("GET /api/cep/{cep}", func(w http.ResponseWriter, r *http.Request) {
		if r.PathValue("cep") != "01310100" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte(`{"bairro":"Centro","localidade":"São Paulo","uf":"SP"}`))
	})
	mux.HandleFunc("GET /api/auditoria/recentes", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.auditHours = append(f.auditHours, r.URL.Query().Get("horas"))
		f.mu.Unlock()
		_, _ = w.Write([]byte(`[{"id":1,"timestampRequisicao":"2024-05-01T14:30:05","metodoHttp":"POST","endpoint":"/api/pessoas","ipOrigem":"10.0.0.1","statusResposta":201,"tempoProcessamento":42}]`))
	})
	mux.HandleFunc("GET /api/auditoria/estatisticas", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"totalRequisicoes":1500,"distribuicaoStatus":{"201":1500},"periodoHoras":` + r.URL.Query().Get("horas") + `}`))
	})
	mux.HandleFunc("GET /api/auditoria/endpoint", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	})
	mux.HandleFunc("POST /api/relatorios/csv", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.reportReady = true
		f.mu.Unlock()
		w.WriteHeader(http.StatusAccepted)
	})
	mux.HandleFunc("/api/relatorios/download", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		ready := f.reportReady
		f.mu.Unlock()
		if !ready {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "text/csv")
		if r.Method == http.MethodGet {
			_, _ = w.Write([]byte("ID,Nome,CPF\n1,Ana,52998224725\n"))
		}
	})

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.requests = append(f.requests, r.Method+" "+r.URL.Path)
		f.mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		mux.ServeHTTP(w, r)
	})
}

// setupRouterTest wires the full router against a fake backend
func setupRouterTest(t *testing.T) (*gin.Engine, *fakeAPI, *services.PageSessions) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	_ = logging.InitLogger()

	api := newFakeAPI()
	server := httptest.NewServer(api.handler())
	t.Cleanup(server.Close)

	cfg := &config.Config{
		APIBaseURL:             server.URL,
		BackendTimeout:         5 * time.Second,
		HTTPClientPool:         4,
		EditRedirectDelay:      2 * time.Second,
		SuccessMessageTTL:      5 * time.Second,
		ReportGenerateCooldown: 3 * time.Second,
	}
	backend := services.NewBackendClient(cfg, logging.Logger)
	t.Cleanup(backend.Close)

	sessions := services.NewPageSessions(time.Minute)
	resolver := services.NewCEPResolver(backend, nil, logging.Logger)
	h := NewHandlers(cfg, backend, resolver, sessions, nil, logging.Logger)

	router, err := NewRouter(cfg, h)
	require.NoError(t, err)
	return router, api, sessions
}

func doRequest(router http.Handler, method, target string, form url.Values) *httptest.ResponseRecorder {
	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

var sessionPattern = regexp.MustCompile(`data-session="([0-9a-f-]+)"`)

// sessionOf extracts the page session ID embedded in a rendered page
func sessionOf(t *testing.T, body string) string {
	t.Helper()
	m := sessionPattern.FindStringSubmatch(body)
	require.Len(t, m, 2, "page has no session id")
	return m[1]
}
