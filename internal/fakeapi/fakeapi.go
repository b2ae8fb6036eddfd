// Package fakeapi serves the dog adoption HTTP contract from an in-memory
// catalog. Tests run the API client against it and cmd/fakeapi exposes it
// for local use.
package fakeapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/patric-chuzhbe/dogmatch/internal/gzippedhttp"
	"github.com/patric-chuzhbe/dogmatch/internal/logger"
)

const (
	defaultPageSize = 25
	maxResultWindow = 10000
	maxIDsPerCall   = 100
	shutdownTimeout = 10 * time.Second
	defaultTokenTTL = time.Hour
)

// Server is the fake service.
type Server struct {
	catalog    *Catalog
	signingKey []byte
	tokenTTL   time.Duration
	validate   *validator.Validate
	now        func() time.Time
	log        *zap.SugaredLogger
}

type initOptions struct {
	tokenTTL time.Duration
	now      func() time.Time
}

// InitOption configures a Server.
type InitOption func(*initOptions)

// WithTokenTTL sets how long a session cookie stays valid.
func WithTokenTTL(ttl time.Duration) InitOption {
	return func(options *initOptions) {
		options.tokenTTL = ttl
	}
}

// WithClock replaces time.Now when issuing tokens.
func WithClock(now func() time.Time) InitOption {
	return func(options *initOptions) {
		options.now = now
	}
}

// New returns a service over catalog that signs session cookies with
// signingKey.
func New(catalog *Catalog, signingKey []byte, opts ...InitOption) *Server {
	options := &initOptions{
		tokenTTL: defaultTokenTTL,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(options)
	}

	return &Server{
		catalog:    catalog,
		signingKey: signingKey,
		tokenTTL:   options.tokenTTL,
		validate:   validator.New(),
		now:        options.now,
		log:        logger.Named("fakeapi"),
	}
}

// Handler returns the routed service.
func (s *Server) Handler() http.Handler {
	router := chi.NewRouter()
	router.Use(logger.WithLoggingHTTPMiddleware)
	router.Use(gzippedhttp.UngzipRequest)
	router.Use(gzippedhttp.GzipResponse)

	router.Post("/auth/login", s.postLogin)
	router.Post("/auth/logout", s.postLogout)

	router.Group(func(r chi.Router) {
		r.Use(s.authenticate)
		r.Get("/dogs/breeds", s.getBreeds)
		r.Get("/dogs/search", s.getSearch)
		r.Post("/dogs", s.postDogs)
		r.Post("/dogs/match", s.postMatch)
		r.Post("/locations", s.postLocations)
		r.Post("/locations/search", s.postLocationsSearch)
	})

	return router
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	server := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	s.log.Infoln("fake API running", "addr", addr)

	serverErrCh := make(chan error, 1)
	go func() {
		serverErrCh <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		s.log.Infoln("Received shutdown signal, stopping the fake API...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown error: %w", err)
		}
		return nil

	case err := <-serverErrCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)
	}
}

func writeText(response http.ResponseWriter, status int, text string) {
	response.Header().Set("Content-Type", "text/plain; charset=utf-8")
	response.WriteHeader(status)
	_, _ = io.WriteString(response, text)
}

func (s *Server) writeJSON(response http.ResponseWriter, value any) {
	raw, err := json.Marshal(value)
	if err != nil {
		s.log.Errorw("encoding response", zap.Error(err))
		writeText(response, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	response.Header().Set("Content-Type", "application/json")
	response.WriteHeader(http.StatusOK)
	_, _ = response.Write(raw)
}

func decodeBody(request *http.Request, dst any) error {
	decoder := json.NewDecoder(request.Body)
	if err := decoder.Decode(dst); err != nil {
		return fmt.Errorf("malformed JSON body: %w", err)
	}

	return nil
}
