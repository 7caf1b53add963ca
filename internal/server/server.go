// FilePath: internal/server/server.go
package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/handlers"
	nuts "github.com/vaudience/go-nuts"

	"github.com/digicatapult/wasp-api/api"
	"github.com/digicatapult/wasp-api/internal/cache"
	"github.com/digicatapult/wasp-api/internal/config"
	"github.com/digicatapult/wasp-api/internal/graph"
	"github.com/digicatapult/wasp-api/internal/services"
)

// Server represents our HTTP server
type Server struct {
	config *config.Config
	srv    *http.Server
}

// New creates a new server instance
func New(cfg *config.Config) *Server {
	return &Server{
		config: cfg,
		srv: &http.Server{
			Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
		},
	}
}

// Start wires the upstream clients, cache and schema, then listens until an
// interrupt arrives
func (s *Server) Start() error {
	handler, err := s.buildHandler()
	if err != nil {
		return err
	}
	s.srv.Handler = handler

	go func() {
		nuts.L.Infof("[Server] Starting server on %s", s.srv.Addr)
		if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			nuts.L.Errorf("[Server] Error starting server: %v", err)
			os.Exit(1)
		}
	}()

	return s.waitForShutdown()
}

// buildHandler assembles the full middleware chain over the GraphQL router
func (s *Server) buildHandler() (http.Handler, error) {
	things := services.NewThingsClient(s.config.Services.Things.BaseURL())
	readings := services.NewReadingsClient(s.config.Services.Readings.BaseURL())
	users := services.NewUsersClient(s.config.Services.Users.BaseURL())

	store, err := cache.NewStore(s.config.Cache)
	if err != nil {
		return nil, fmt.Errorf("error initializing cache store: %w", err)
	}
	if redisStore, ok := store.(*cache.RedisStore); ok {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := redisStore.Ping(ctx); err != nil {
			return nil, err
		}
	}
	nuts.L.Infof("[Server] Field cache backend: %s", s.config.Cache.Backend)

	g := graph.New(things, readings, users, store, s.config.Cache.MaxTTL)
	schema, err := g.Schema()
	if err != nil {
		return nil, fmt.Errorf("error building schema: %w", err)
	}

	router := api.NewRouter(g, schema, users, s.config.GraphQL.MaxQuerySize)

	var handler http.Handler = router
	handler = requestLogging(handler)
	handler = handlers.CompressHandler(handler)
	handler = handlers.CORS(
		handlers.AllowedOrigins([]string{"*"}),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Content-Type", "user-id"}),
	)(handler)
	handler = handlers.RecoveryHandler(
		handlers.RecoveryLogger(recoveryLogger{}),
	)(handler)

	return handler, nil
}

// waitForShutdown waits for interrupt signal and gracefully shuts down the server
func (s *Server) waitForShutdown() error {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	nuts.L.Infof("[Server] Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), s.config.Server.ShutdownTimeout)
	defer cancel()

	if err := s.srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("error shutting down server: %w", err)
	}

	nuts.L.Infof("[Server] Server shut down successfully")
	return nil
}

// requestLogging tags and logs every request except health probes
func requestLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/health") {
			next.ServeHTTP(w, r)
			return
		}
		requestID := uuid.NewString()
		w.Header().Set("X-Request-Id", requestID)
		nuts.L.Debugf("[Server] %s %s (%s)", r.Method, r.URL.Path, requestID)
		next.ServeHTTP(w, r)
	})
}

type recoveryLogger struct{}

func (recoveryLogger) Println(v ...interface{}) {
	nuts.L.Errorf("[Server] Panic recovered: %v", v)
}
