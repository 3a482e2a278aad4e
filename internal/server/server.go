package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"github.com/technodrive/vehictrl/internal/binding"
	"go.uber.org/zap"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

var ErrNilBindingManager = errors.New("binding manager is nil")

// Server is the companion registration/authorization server running on
// the vehicle's single-board computer
type Server struct {
	bindings *binding.Manager
	logger   *zap.Logger
}

// New initializes a registration server
func New(m *binding.Manager, logger *zap.Logger) (*Server, error) {
	if m == nil {
		return nil, ErrNilBindingManager
	}

	if logger != nil {
		logger = logger.Named("[server]")
	}

	return &Server{
		bindings: m,
		logger:   logger,
	}, nil
}

// Handler builds the HTTP routing
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Get("/", s.handleLiveness)
	r.Post("/register", s.handleRegister)
	r.Get("/verify", s.handleVerify)
	r.Get("/status", s.handleStatus)
	r.Post("/reset", s.handleReset)

	return r
}

// Run starts the server and blocks until the context is cancelled
func Run(ctx context.Context, s *Server, addr string) error {
	srv := &http.Server{
		Addr:    addr,
		Handler: s.Handler(),
	}

	errChan := make(chan error, 1)

	go func() {
		errChan <- srv.ListenAndServe()
	}()

	if s.logger != nil {
		s.logger.Info("registration server listening", zap.String("addr", addr))
	}

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		return srv.Shutdown(shutdownCtx)
	case err := <-errChan:
		return err
	}
}
