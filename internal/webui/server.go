package webui

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"

	"adconvert/internal/advisor"
	"adconvert/internal/config"
	"adconvert/internal/convert"
	"adconvert/internal/logging"
	"adconvert/internal/selection"
)

//go:embed static
var staticFiles embed.FS

// Options wires the server to the controller and advisor it fronts.
type Options struct {
	Config     *config.Config
	Controller *convert.Controller
	Advisor    *advisor.Advisor
	Logger     *slog.Logger
}

// Server is the loopback HTTP surface.
type Server struct {
	cfg        *config.Config
	controller *convert.Controller
	advisor    *advisor.Advisor
	session    *selection.Session
	logger     *slog.Logger

	handler http.Handler

	mu      sync.Mutex
	result  *convert.Result
	running bool

	baseCtx context.Context
	cancel  context.CancelFunc
	jobs    sync.WaitGroup

	listener net.Listener
	server   *http.Server
}

// New builds the router. Nothing listens until Start.
func New(opts Options) (*Server, error) {
	if opts.Config == nil {
		return nil, errors.New("webui: config is required")
	}
	if opts.Controller == nil {
		return nil, errors.New("webui: controller is required")
	}
	if opts.Advisor == nil {
		opts.Advisor = advisor.New(nil, opts.Logger)
	}
	ctx, cancel := context.WithCancel(context.Background())
	s := &Server{
		cfg:        opts.Config,
		controller: opts.Controller,
		advisor:    opts.Advisor,
		session:    &selection.Session{},
		logger:     logging.NewComponentLogger(opts.Logger, "webui"),
		baseCtx:    ctx,
		cancel:     cancel,
	}
	router, err := s.routes()
	if err != nil {
		cancel()
		return nil, err
	}
	s.handler = cors.New(cors.Options{
		AllowedOrigins: []string{"http://localhost:*", "http://127.0.0.1:*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type"},
	}).Handler(router)
	return s, nil
}

func (s *Server) routes() (*mux.Router, error) {
	r := mux.NewRouter()
	r.Use(s.requestContext, metricsMiddleware)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/status", s.handleStatus).Methods(http.MethodGet)
	api.HandleFunc("/events", s.handleEvents).Methods(http.MethodGet)
	api.HandleFunc("/file", s.handleSelectFile).Methods(http.MethodPost)
	api.HandleFunc("/file", s.handleClearFile).Methods(http.MethodDelete)
	api.HandleFunc("/convert", s.handleConvert).Methods(http.MethodPost)
	api.HandleFunc("/download", s.handleDownload).Methods(http.MethodGet)
	api.HandleFunc("/advice", s.handleAdvice).Methods(http.MethodPost)

	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	static, err := fs.Sub(staticFiles, "static")
	if err != nil {
		return nil, fmt.Errorf("webui: static assets: %w", err)
	}
	r.PathPrefix("/").Handler(http.FileServer(http.FS(static))).Methods(http.MethodGet)
	return r, nil
}

// Handler returns the root handler including CORS.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Start listens on the configured bind address, begins loading the engine
// and serves until ctx is canceled or Stop is called.
func (s *Server) Start(ctx context.Context) error {
	bind := strings.TrimSpace(s.cfg.Paths.APIBind)
	if bind == "" {
		return errors.New("webui: paths.api_bind is empty")
	}
	listener, err := net.Listen("tcp", bind)
	if err != nil {
		return fmt.Errorf("webui listen: %w", err)
	}
	s.listener = listener
	s.server = &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 5 * time.Second,
		// Uploads and the event stream are long-lived.
		ReadTimeout:  0,
		WriteTimeout: 0,
		IdleTimeout:  60 * time.Second,
	}

	s.controller.InitializeAsync(s.baseCtx)

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("webui server error", logging.Error(err))
		}
	}()
	go func() {
		select {
		case <-ctx.Done():
			s.Stop()
		case <-s.baseCtx.Done():
		}
	}()

	s.logger.Info("webui listening", logging.String("address", "http://"+listener.Addr().String()))
	return nil
}

// Addr returns the bound address once Start has succeeded.
func (s *Server) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Stop shuts the listener down, cancels a running conversion and waits for
// it to unwind.
func (s *Server) Stop() {
	s.cancel()
	if s.server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}
	s.jobs.Wait()
}
