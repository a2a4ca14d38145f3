package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/cbodonnell/deacoudre/pkg/api/handlers"
	"github.com/cbodonnell/deacoudre/pkg/api/middleware"
	"github.com/cbodonnell/deacoudre/pkg/log"
	"github.com/cbodonnell/deacoudre/pkg/repositories"
	"github.com/cbodonnell/deacoudre/pkg/state"
	"github.com/gorilla/mux"
)

type APIServer struct {
	server *http.Server
	tls    *TLSConfig
}

type TLSConfig struct {
	CertFile string
	KeyFile  string
}

type NewAPIServerOptions struct {
	Port         int
	TLS          *TLSConfig
	StateManager state.StateManager
	Repository   repositories.Repository
}

// NewAPIServer creates a new http.Server for handling API requests
func NewAPIServer(opts NewAPIServerOptions) *APIServer {
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", opts.Port),
		Handler: NewRouter(opts.StateManager, opts.Repository),
	}
	return &APIServer{
		server: server,
		tls:    opts.TLS,
	}
}

// NewRouter routes the read-only status and results API.
func NewRouter(stateManager state.StateManager, repository repositories.Repository) http.Handler {
	r := mux.NewRouter()
	r.Use(middleware.NewLoggingMiddleware(), middleware.NewCORSMiddleware())

	r.HandleFunc("/healthz", handlers.HandleHealthz()).Methods(http.MethodGet)
	r.HandleFunc("/session", handlers.HandleGetStatus(stateManager)).Methods(http.MethodGet, http.MethodOptions)
	r.HandleFunc("/results", handlers.HandleListResults(repository)).Methods(http.MethodGet, http.MethodOptions)
	r.HandleFunc("/results/{resultID:[0-9]+}", handlers.HandleGetResult(repository)).Methods(http.MethodGet, http.MethodOptions)

	return r
}

// Start serves the API until the context is done.
func (s *APIServer) Start(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		s.server.Shutdown(context.Background())
	}()

	var listenAndServe func() error
	if s.tls != nil {
		log.Info("API server listening on %s with TLS", s.server.Addr)
		listenAndServe = func() error {
			return s.server.ListenAndServeTLS(s.tls.CertFile, s.tls.KeyFile)
		}
	} else {
		log.Info("API server listening on %s", s.server.Addr)
		listenAndServe = s.server.ListenAndServe
	}
	if err := listenAndServe(); err != nil {
		if errors.Is(err, http.ErrServerClosed) {
			log.Info("API server closed")
			return nil
		}
		return fmt.Errorf("api server error: %v", err)
	}
	return nil
}
