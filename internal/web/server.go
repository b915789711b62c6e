package web

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"

	"github.com/ricardo-wurzmann/healthtech/internal/pipeline"
	"github.com/ricardo-wurzmann/healthtech/internal/web/handlers"
	"github.com/ricardo-wurzmann/healthtech/internal/web/middleware"
)

// Server represents the web server
type Server struct {
	config     *Config
	pipeline   *pipeline.Pipeline
	info       handlers.EngineInfo
	httpServer *http.Server
	router     *mux.Router
}

// NewServer creates a new web server instance around a loaded pipeline
func NewServer(config *Config, p *pipeline.Pipeline, info handlers.EngineInfo) (*Server, error) {
	if p == nil {
		return nil, fmt.Errorf("pipeline is required")
	}

	server := &Server{
		config:   config,
		pipeline: p,
		info:     info,
	}

	server.setupRoutes()

	server.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", config.Server.Host, config.Server.Port),
		Handler:      server.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return server, nil
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() {
	s.router = mux.NewRouter()

	// Convert config for handlers (to avoid import cycle)
	handlerConfig := &handlers.Config{}
	handlerConfig.Features.DebugEndpointEnabled = s.config.Features.DebugEndpointEnabled
	handlerConfig.Features.StatsEnabled = s.config.Features.StatsEnabled

	apiHandler := &handlers.APIHandler{Info: s.info, Started: time.Now(), Config: handlerConfig}
	pipelineHandler := &handlers.PipelineHandler{Runner: s.pipeline, Config: handlerConfig}

	api := s.router.PathPrefix("/api").Subrouter()

	api.HandleFunc("/pipeline/process", pipelineHandler.Process).Methods("POST")
	if s.config.Features.DebugEndpointEnabled {
		api.HandleFunc("/pipeline/debug", pipelineHandler.Debug).Methods("POST")
	}
	if s.config.Features.StatsEnabled {
		api.HandleFunc("/stats", apiHandler.GetStats).Methods("GET")
	}

	s.router.HandleFunc("/healthz", apiHandler.Health).Methods("GET")

	s.router.Use(middleware.CORS())
	s.router.Use(middleware.RequestLogging())
}

// Handler exposes the configured router so tests can drive it directly
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start starts the web server and blocks until an interrupt arrives
func (s *Server) Start() error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		fmt.Printf("Starting server on http://%s\n", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			fmt.Printf("Server error: %v\n", err)
		}
	}()

	<-stop
	fmt.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		fmt.Printf("Server shutdown error: %v\n", err)
	}

	fmt.Println("Server stopped")
	return nil
}
