// Package preview serves a compiled dashboard project over HTTP and keeps it
// current while the tree and data files change.
package preview

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/leapstack-labs/dashgen/internal/preview/notifier"
	"github.com/leapstack-labs/dashgen/internal/project"
	"github.com/leapstack-labs/dashgen/internal/provider"
	"github.com/leapstack-labs/dashgen/internal/registry"
	"github.com/leapstack-labs/dashgen/pkg/codegen"
	"github.com/leapstack-labs/dashgen/pkg/uitree"
	"golang.org/x/sync/errgroup"
)

// DefaultPort is used when Config.Port is zero.
const DefaultPort = 8766

// Config holds configuration for the preview server.
type Config struct {
	// Registry defaults to the built-in registry.
	Registry *registry.Registry
	// Compiler defaults to a compiler over Registry.
	Compiler *codegen.Compiler
	// Provider supplies data when DataFile is empty. Optional.
	Provider *provider.Provider

	// TreeFile and DataFile are reloaded on every rebuild when set.
	TreeFile string
	DataFile string
	// Tree and Data are used when the matching file is not set.
	Tree *uitree.Tree
	Data map[string]any

	ProjectName string
	Port        int
	Watch       bool
	Logger      *slog.Logger
}

// Snapshot is one compiled state of the project.
type Snapshot struct {
	Revision    uint64
	ProjectName string
	Result      codegen.Result
	Digest      string
	CompiledAt  time.Time
}

// Server is the preview server.
type Server struct {
	registry    *registry.Registry
	compiler    *codegen.Compiler
	provider    *provider.Provider
	treeFile    string
	dataFile    string
	tree        *uitree.Tree
	data        map[string]any
	projectName string
	port        int
	watch       bool
	logger      *slog.Logger
	notifier    *notifier.Notifier

	mu      sync.RWMutex
	current *Snapshot
	lastErr error
}

// NewServer creates a new preview server instance.
func NewServer(cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	reg := cfg.Registry
	if reg == nil {
		reg = registry.Default()
	}
	compiler := cfg.Compiler
	if compiler == nil {
		compiler = codegen.New(codegen.Config{Templates: reg, Logger: logger})
	}
	port := cfg.Port
	if port == 0 {
		port = DefaultPort
	}

	return &Server{
		registry:    reg,
		compiler:    compiler,
		provider:    cfg.Provider,
		treeFile:    cfg.TreeFile,
		dataFile:    cfg.DataFile,
		tree:        cfg.Tree,
		data:        cfg.Data,
		projectName: cfg.ProjectName,
		port:        port,
		watch:       cfg.Watch,
		logger:      logger,
		notifier:    notifier.New(),
	}
}

// Notifier returns the server's notifier for SSE updates.
func (s *Server) Notifier() *notifier.Notifier {
	return s.notifier
}

// Current returns the latest snapshot, or nil before the first rebuild.
func (s *Server) Current() *Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// LastError returns the error of the most recent failed rebuild, if the
// project has not rebuilt successfully since.
func (s *Server) LastError() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastErr
}

// Rebuild reloads the inputs, compiles the project and broadcasts the new
// revision. A failed load keeps the previous snapshot.
func (s *Server) Rebuild(ctx context.Context) error {
	tree, data, err := s.loadInputs(ctx)
	if err != nil {
		s.mu.Lock()
		s.lastErr = err
		s.mu.Unlock()
		s.logger.Error("rebuild failed", slog.String("error", err.Error()))
		return err
	}

	res := s.compiler.Compile(tree, codegen.Options{ProjectName: s.projectName, Data: data})
	snap := &Snapshot{
		ProjectName: s.projectName,
		Result:      res,
		Digest:      project.Digest(res.Files),
		CompiledAt:  time.Now().UTC(),
	}

	s.mu.Lock()
	if s.current != nil && s.current.Digest == snap.Digest {
		s.lastErr = nil
		s.mu.Unlock()
		s.logger.Debug("rebuild produced no changes")
		return nil
	}
	snap.Revision = s.notifier.Broadcast()
	s.current = snap
	s.lastErr = nil
	s.mu.Unlock()

	s.logger.Info("project rebuilt",
		slog.Uint64("revision", snap.Revision),
		slog.Int("files", len(res.Files)),
		slog.Int("diagnostics", len(res.Diagnostics)))
	return nil
}

func (s *Server) loadInputs(ctx context.Context) (*uitree.Tree, map[string]any, error) {
	tree := s.tree
	if s.treeFile != "" {
		t, err := uitree.LoadFile(s.treeFile)
		if err != nil {
			return nil, nil, err
		}
		tree = t
	}
	if tree == nil {
		return nil, nil, errors.New("no tree to compile")
	}

	data := s.data
	switch {
	case s.dataFile != "":
		d, err := uitree.LoadDataFile(s.dataFile)
		if err != nil {
			return nil, nil, err
		}
		data = d
	case data == nil && s.provider != nil:
		data, _ = s.provider.Collect(ctx)
	}
	return tree, data, nil
}

// Handler returns the HTTP handler with all routes.
func (s *Server) Handler() http.Handler {
	r := chi.NewMux()
	r.Use(
		middleware.RequestID,
		middleware.Recoverer,
		middleware.Compress(5, "application/json", "text/plain", "text/css", "text/javascript"),
	)
	r.Use(requestLogger(s.logger))
	s.routes(r)
	return r
}

// requestLogger logs each request at debug level.
func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			logger.Debug("request",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", ww.Status()),
				slog.Duration("elapsed", time.Since(start)),
				slog.String("request_id", middleware.GetReqID(r.Context())))
		})
	}
}

// Serve builds the project, starts the server and blocks until the context
// is cancelled.
func (s *Server) Serve(ctx context.Context) error {
	if err := s.Rebuild(ctx); err != nil {
		return fmt.Errorf("failed to build project: %w", err)
	}

	addr := fmt.Sprintf(":%d", s.port)
	s.logger.Info("starting preview server", "addr", fmt.Sprintf("http://localhost:%d", s.port))

	eg, egctx := errgroup.WithContext(ctx)

	srv := &http.Server{
		Addr:    addr,
		Handler: s.Handler(),
		BaseContext: func(_ net.Listener) context.Context {
			return egctx
		},
		ReadHeaderTimeout: 10 * time.Second,
	}

	if s.watch {
		eg.Go(func() error {
			return s.watchFiles(egctx)
		})
	}

	eg.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	// Graceful shutdown
	eg.Go(func() error {
		<-egctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Debug("shutting down preview server...")
		return srv.Shutdown(shutdownCtx)
	})

	return eg.Wait()
}
