package httpclient

import (
	"net/http"
	"sync"
	"time"
)

// HTTPClientPool hands out HTTP clients for backend calls. All clients
// share one transport, so connections are reused across the pool.
type HTTPClientPool struct {
	clients   chan *http.Client
	transport *http.Transport
	timeout   time.Duration
	mu        sync.RWMutex
	closed    bool
}

// NewHTTPClientPool creates a pool of maxClients clients with the given
// per-request timeout. A zero timeout means the transport default applies.
func NewHTTPClientPool(maxClients int, timeout time.Duration) *HTTPClientPool {
	if maxClients < 1 {
		maxClients = 1
	}

	pool := &HTTPClientPool{
		clients: make(chan *http.Client, maxClients),
		timeout: timeout,
		transport: &http.Transport{
			Proxy:               http.ProxyFromEnvironment,
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: maxClients,
			IdleConnTimeout:     90 * time.Second,
		},
	}

	for i := 0; i < maxClients; i++ {
		pool.clients <- pool.newClient()
	}

	return pool
}

func (p *HTTPClientPool) newClient() *http.Client {
	return &http.Client{
		Timeout:   p.timeout,
		Transport: p.transport,
		// redirects are surfaced to the caller, not followed
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

// Get retrieves an HTTP client from the pool, creating one if it is empty
func (p *HTTPClientPool) Get() *http.Client {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return p.newClient()
	}

	select {
	case client := <-p.clients:
		return client
	default:
		return p.newClient()
	}
}

// Put returns an HTTP client to the pool
func (p *HTTPClientPool) Put(client *http.Client) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed || client == nil {
		return
	}

	select {
	case p.clients <- client:
	default:
		// pool is full, discard
	}
}

// Close closes the pool and drops idle connections
func (p *HTTPClientPool) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return
	}
	p.closed = true
	close(p.clients)
	p.transport.CloseIdleConnections()
}

// Do sends req with a pooled client and returns the client afterwards
func (p *HTTPClientPool) Do(req *http.Request) (*http.Response, error) {
	client := p.Get()
	defer p.Put(client)
	return client.Do(req)
}
