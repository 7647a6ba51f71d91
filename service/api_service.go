package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/zkaffinity/zkaffinity/api"
	"github.com/zkaffinity/zkaffinity/prover"
	"github.com/zkaffinity/zkaffinity/storage"
	"github.com/zkaffinity/zkaffinity/storage/registry"
)

// APIService represents a service that manages the HTTP API server.
type APIService struct {
	storage  *storage.Storage
	registry *registry.Registry
	prover   *prover.Prover
	api      *api.API
	mu       sync.Mutex
	cancel   context.CancelFunc
	host     string
	port     int
}

// NewAPI creates a new APIService instance over shared backends. The service
// does not own them, closing the storage stays with the caller.
func NewAPI(stg *storage.Storage, reg *registry.Registry, prv *prover.Prover, host string, port int) *APIService {
	return &APIService{
		storage:  stg,
		registry: reg,
		prover:   prv,
		host:     host,
		port:     port,
	}
}

// Start begins the API server. It returns an error if the service
// is already running or if it fails to start.
func (as *APIService) Start(ctx context.Context) error {
	as.mu.Lock()
	defer as.mu.Unlock()

	if as.cancel != nil {
		return fmt.Errorf("service already running")
	}

	_, as.cancel = context.WithCancel(ctx)

	var err error
	as.api, err = api.New(&api.APIConfig{
		Host:     as.host,
		Port:     as.port,
		Storage:  as.storage,
		Registry: as.registry,
		Prover:   as.prover,
	})
	if err != nil {
		as.cancel = nil
		return fmt.Errorf("failed to start API server: %w", err)
	}

	return nil
}

// Stop halts the API server.
func (as *APIService) Stop() {
	as.mu.Lock()
	defer as.mu.Unlock()

	if as.cancel != nil {
		as.cancel()
		as.cancel = nil
	}
}

// API returns the running API instance, nil before Start.
func (as *APIService) API() *api.API {
	as.mu.Lock()
	defer as.mu.Unlock()
	return as.api
}

// HostPort returns the host and port of the API server.
func (as *APIService) HostPort() (string, int) {
	return as.host, as.port
}
