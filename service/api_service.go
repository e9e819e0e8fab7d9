package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/vocdoni/passport-z-sandbox/api"
	"github.com/vocdoni/passport-z-sandbox/log"
	"github.com/vocdoni/passport-z-sandbox/storage"
)

// shutdownTimeout bounds the time Stop waits for in-flight requests.
const shutdownTimeout = 10 * time.Second

// APIService manages the commitment tracker HTTP API server.
type APIService struct {
	storage *storage.Storage
	api     *api.API
	mu      sync.Mutex
	cancel  context.CancelFunc
	host    string
	port    int
}

// NewAPI creates a new APIService instance. The storage is owned by the
// caller and is not closed by Stop.
func NewAPI(storage *storage.Storage, host string, port int) *APIService {
	return &APIService{
		storage: storage,
		host:    host,
		port:    port,
	}
}

// Start loads the commitment tree and begins the API server. It returns an
// error if the service is already running or if it fails to start.
func (as *APIService) Start(ctx context.Context) error {
	as.mu.Lock()
	defer as.mu.Unlock()

	if as.cancel != nil {
		return fmt.Errorf("service already running")
	}

	var err error
	as.api, err = api.New(&api.APIConfig{
		Host:    as.host,
		Port:    as.port,
		Storage: as.storage,
	})
	if err != nil {
		return fmt.Errorf("failed to start API server: %w", err)
	}
	ctx, as.cancel = context.WithCancel(ctx)
	go func(a *api.API) {
		<-ctx.Done()
		as.shutdown(a)
	}(as.api)
	return nil
}

// shutdown closes the HTTP server of a, which is detached from the service
// if it is still the running one.
func (as *APIService) shutdown(a *api.API) {
	as.mu.Lock()
	if as.api == a {
		as.api = nil
		as.cancel = nil
	}
	as.mu.Unlock()
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := a.Close(ctx); err != nil {
		log.Warnw("API server shutdown failed", "error", err.Error())
	}
}

// Stop halts the API server.
func (as *APIService) Stop() {
	as.mu.Lock()
	cancel, a := as.cancel, as.api
	as.mu.Unlock()
	if cancel != nil {
		cancel()
		as.shutdown(a)
	}
}

// API returns the running API, nil if the service is stopped.
func (as *APIService) API() *api.API {
	as.mu.Lock()
	defer as.mu.Unlock()
	return as.api
}

// HostPort returns the host and port of the API server.
func (as *APIService) HostPort() (string, int) {
	return as.host, as.port
}
