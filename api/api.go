// Package api implements the HTTP API of the attestation service: publisher
// attestation issuance and storage, the asynchronous proof job queue,
// stateless proof verification and the publisher registry.
package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/zkaffinity/zkaffinity/log"
	"github.com/zkaffinity/zkaffinity/prover"
	"github.com/zkaffinity/zkaffinity/storage"
	"github.com/zkaffinity/zkaffinity/storage/registry"
)

// APIConfig type represents the configuration for the API HTTP server.
// It includes the network address and the service backends.
type APIConfig struct {
	Host     string
	Port     int
	Storage  *storage.Storage
	Registry *registry.Registry
	Prover   *prover.Prover
}

// API type represents the API HTTP server.
type API struct {
	router   *chi.Mux
	storage  *storage.Storage
	registry *registry.Registry
	prover   *prover.Prover
}

// New creates a new API instance with the given configuration and starts the
// HTTP server.
func New(conf *APIConfig) (*API, error) {
	if conf == nil {
		return nil, fmt.Errorf("missing API configuration")
	}
	if conf.Storage == nil {
		return nil, fmt.Errorf("missing storage instance")
	}
	if conf.Registry == nil {
		return nil, fmt.Errorf("missing registry instance")
	}
	if conf.Prover == nil {
		return nil, fmt.Errorf("missing prover instance")
	}
	a := &API{
		storage:  conf.Storage,
		registry: conf.Registry,
		prover:   conf.Prover,
	}
	// Initialize router
	a.initRouter()
	go func() {
		log.Infow("starting API server", "host", conf.Host, "port", conf.Port)
		if err := http.ListenAndServe(fmt.Sprintf("%s:%d", conf.Host, conf.Port), a.router); err != nil {
			log.Fatalf("failed to start API server: %v", err)
		}
	}()
	return a, nil
}

// Router returns the chi router for testing purposes.
func (a *API) Router() *chi.Mux {
	return a.router
}

// initRouter creates the router with all the routes and middleware.
func (a *API) initRouter() {
	// Create the router with a basic middleware stack
	a.router = chi.NewRouter()
	a.router.Use(cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "OPTIONS", "DELETE"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		AllowCredentials: false,
		MaxAge:           300,
	}).Handler)
	a.router.Use(middleware.Logger)
	a.router.Use(middleware.Recoverer)
	a.router.Use(middleware.Throttle(100))
	a.router.Use(middleware.ThrottleBacklog(5000, 40000, 60*time.Second))
	a.router.Use(middleware.Timeout(45 * time.Second))
	a.router.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		ErrResourceNotFound.Write(w)
	})

	// Register the API handlers
	a.registerHandlers()
}

// registerHandlers registers all the HTTP handlers for the API endpoints.
func (a *API) registerHandlers() {
	// ping endpoint
	log.Infow("register handler", "endpoint", PingEndpoint, "method", "GET")
	a.router.Get(PingEndpoint, func(w http.ResponseWriter, _ *http.Request) {
		httpWriteOK(w)
	})
	// attestation endpoints
	log.Infow("register handler", "endpoint", SignAttestationEndpoint, "method", "POST")
	a.router.Post(SignAttestationEndpoint, a.signAttestation)
	log.Infow("register handler", "endpoint", AttestationsEndpoint, "method", "POST")
	a.router.Post(AttestationsEndpoint, a.storeAttestation)
	log.Infow("register handler", "endpoint", WalletAttestationsEndpoint, "method", "GET")
	a.router.Get(WalletAttestationsEndpoint, a.attestationsByWallet)
	log.Infow("register handler", "endpoint", VerifyAttestationEndpoint, "method", "POST")
	a.router.Post(VerifyAttestationEndpoint, a.verifyAttestation)
	log.Infow("register handler", "endpoint", TagsEndpoint, "method", "GET")
	a.router.Get(TagsEndpoint, a.tags)
	// proof endpoints
	log.Infow("register handler", "endpoint", ProofsEndpoint, "method", "POST")
	a.router.Post(ProofsEndpoint, a.newProofJob)
	log.Infow("register handler", "endpoint", ProofJobEndpoint, "method", "GET")
	a.router.Get(ProofJobEndpoint, a.proofJob)
	log.Infow("register handler", "endpoint", VerifyProofEndpoint, "method", "POST")
	a.router.Post(VerifyProofEndpoint, a.verifyProof)
	// registry endpoints
	log.Infow("register handler", "endpoint", RegistryRootEndpoint, "method", "GET")
	a.router.Get(RegistryRootEndpoint, a.registryRoot)
	log.Infow("register handler", "endpoint", RegistryDomainEndpoint, "method", "GET")
	a.router.Get(RegistryDomainEndpoint, a.registryEntry)
}
