// Package runtime is the library an Arkos application embeds. It owns the
// HTTP server, health and metrics endpoints, graceful shutdown, and the
// handshake file the arkos CLI reads to learn the bound address.
package runtime

import (
	"context"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Config is the resolved runtime configuration of a running application.
type Config struct {
	Host string
	Port string
	Env  string
}

// Options configures an App. Zero values fall back to the HOST/PORT
// environment variables, then to 0.0.0.0:8000.
type Options struct {
	Host       string
	Port       string
	ProjectDir string
	Logger     *zap.Logger
}

// App is an Arkos application: a chi router plus the runtime plumbing the
// supervisor expects.
type App struct {
	cfg      Config
	dir      string
	log      *zap.Logger
	router   chi.Router
	registry *prometheus.Registry
	requests *prometheus.CounterVec
	server   *http.Server
}

// New creates an application.
func New(opts Options) *App {
	host := opts.Host
	if host == "" {
		host = os.Getenv("HOST")
	}
	if host == "" {
		host = "0.0.0.0"
	}
	port := opts.Port
	if port == "" {
		port = os.Getenv("PORT")
	}
	if port == "" {
		port = "8000"
	}
	dir := opts.ProjectDir
	if dir == "" {
		dir, _ = os.Getwd()
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	mode := os.Getenv("ARKOS_ENV")
	if mode == "" {
		mode = "development"
	}

	a := &App{
		cfg:      Config{Host: host, Port: port, Env: mode},
		dir:      dir,
		log:      log,
		registry: prometheus.NewRegistry(),
	}

	a.requests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "arkos_http_requests_total",
			Help: "HTTP requests handled, by method and status code.",
		},
		[]string{"method", "code"},
	)
	a.registry.MustRegister(a.requests)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(a.countRequests)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{}))

	a.router = r
	return a
}

// Router exposes the application router for registering handlers.
func (a *App) Router() chi.Router {
	return a.router
}

// Config returns the resolved runtime configuration.
func (a *App) Config() Config {
	return a.cfg
}

// countRequests tracks request counts per method and status.
func (a *App) countRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		a.requests.WithLabelValues(r.Method, strconv.Itoa(ww.Status())).Inc()
	})
}

// Listen binds the configured address, writes the handshake file, and serves
// until the context is cancelled or a termination signal arrives. The
// handshake file is removed on the way out.
func (a *App) Listen(ctx context.Context) error {
	addr := net.JoinHostPort(a.cfg.Host, a.cfg.Port)
	a.server = &http.Server{Addr: addr, Handler: a.router}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}

	if err := WriteState(a.dir, State{
		Host:      a.cfg.Host,
		Port:      a.cfg.Port,
		PID:       os.Getpid(),
		StartedAt: time.Now(),
	}); err != nil {
		a.log.Warn("could not write runtime state", zap.Error(err))
	}
	defer RemoveState(a.dir)

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		if err := a.server.Serve(ln); err != nil && err != http.ErrServerClosed {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	a.log.Info("listening", zap.String("addr", addr))

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		a.server.Shutdown(shutdownCtx)
		return <-errCh
	case err := <-errCh:
		return err
	}
}
