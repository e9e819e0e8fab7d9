package api

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/vocdoni/passport-z-sandbox/log"
	stg "github.com/vocdoni/passport-z-sandbox/storage"
	"github.com/vocdoni/passport-z-sandbox/tree"
)

// APIConfig type represents the configuration for the API HTTP server.
// It includes the host, port and an existing storage instance.
type APIConfig struct {
	Host    string
	Port    int
	Storage *stg.Storage
	// DisableServer skips the listener, the router is still available
	// through Router().
	DisableServer bool
}

// API type represents the commitment tracker HTTP server.
type API struct {
	router  *chi.Mux
	storage *stg.Storage
	tree    *tree.Tree
	server  *http.Server
	// mu serializes the commitment insertions (tree and storage).
	mu sync.Mutex
}

// New creates a new API instance with the given configuration. The
// commitment tree is rebuilt from the storage and checked against the
// stored root before the HTTP server starts.
func New(conf *APIConfig) (*API, error) {
	if conf == nil {
		return nil, fmt.Errorf("missing API configuration")
	}
	if conf.Storage == nil {
		return nil, fmt.Errorf("missing storage instance")
	}
	a := &API{
		storage: conf.Storage,
		tree:    tree.New(nil),
	}
	if err := a.loadTree(); err != nil {
		return nil, err
	}

	// Initialize router
	a.initRouter()
	if !conf.DisableServer {
		a.server = &http.Server{
			Addr:              fmt.Sprintf("%s:%d", conf.Host, conf.Port),
			Handler:           a.router,
			ReadHeaderTimeout: 10 * time.Second,
		}
		go func() {
			log.Infow("Starting API server", "host", conf.Host, "port", conf.Port)
			if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Fatalf("failed to start the API server: %v", err)
			}
		}()
	}
	return a, nil
}

// Close gracefully stops the HTTP server.
func (a *API) Close(ctx context.Context) error {
	if a.server == nil {
		return nil
	}
	return a.server.Shutdown(ctx)
}

// loadTree imports the stored commitments into the in-memory tree.
func (a *API) loadTree() error {
	leaves, err := a.storage.Commitments()
	if err != nil {
		return fmt.Errorf("cannot read stored commitments: %w", err)
	}
	md, err := a.storage.TreeMetadata()
	if err != nil {
		return fmt.Errorf("cannot read tree metadata: %w", err)
	}
	var root *big.Int
	if md.Root != nil {
		root = md.Root.MathBigInt()
	}
	if err := a.tree.Import(leaves, root); err != nil {
		return fmt.Errorf("cannot rebuild commitment tree: %w", err)
	}
	log.Infow("commitment tree loaded", "size", a.tree.Size(), "root", a.tree.Root())
	return nil
}

// Router returns the chi router for testing purposes
func (a *API) Router() *chi.Mux {
	return a.router
}

// Tree returns the in-memory commitment tree.
func (a *API) Tree() *tree.Tree {
	return a.tree
}

// registerHandlers registers all the API handlers.
func (a *API) registerHandlers() {
	log.Infow("register handler", "endpoint", PingEndpoint, "method", "GET")
	a.router.Get(PingEndpoint, func(w http.ResponseWriter, r *http.Request) {
		httpWriteOK(w)
	})
	a.router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		ErrResourceNotFound.Write(w)
	})
	log.Infow("register handler", "endpoint", CommitmentsEndpoint, "method", "GET")
	a.router.Get(CommitmentsEndpoint, a.commitments)
	log.Infow("register handler", "endpoint", CommitmentsEndpoint, "method", "POST")
	a.router.Post(CommitmentsEndpoint, a.addCommitment)
	log.Infow("register handler", "endpoint", CommitmentsRootEndpoint, "method", "GET")
	a.router.Get(CommitmentsRootEndpoint, a.root)
	log.Infow("register handler", "endpoint", CommitmentProofEndpoint, "method", "GET")
	a.router.Get(CommitmentProofEndpoint, a.proof)
}

// initRouter creates the router with all the routes and middleware.
func (a *API) initRouter() {
	// Create the router with a basic middleware stack
	a.router = chi.NewRouter()
	a.router.Use(cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300, // Maximum value not ignored by any of major browsers
	}).Handler)
	a.router.Use(middleware.Logger)
	a.router.Use(middleware.Recoverer)
	a.router.Use(middleware.Throttle(100))
	a.router.Use(middleware.ThrottleBacklog(5000, 40000, 60*time.Second))
	a.router.Use(middleware.Timeout(45 * time.Second))

	// Register the API handlers
	a.registerHandlers()
}
