package preview

import (
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/leapstack-labs/dashgen/pkg/codegen"
	"github.com/leapstack-labs/dashgen/pkg/uitree"
	"github.com/starfederation/datastar-go/datastar"
)

// maxRequestBody caps POST bodies.
const maxRequestBody = 8 << 20

func (s *Server) routes(r chi.Router) {
	r.Get("/healthz", s.Health)

	r.Route("/api", func(r chi.Router) {
		r.Get("/components", s.Components)
		r.Get("/components/{name}", s.Component)
		r.Post("/generate", s.Generate)
		r.Post("/rebuild", s.RebuildNow)
		r.Get("/data", s.Data)
		r.Get("/project", s.Project)
		r.Get("/project/files/*", s.ProjectFile)
		r.Get("/events", s.Events)
	})
}

// GenerateRequest is the body of POST /api/generate.
type GenerateRequest struct {
	Tree        *uitree.Tree   `json:"tree"`
	ProjectName string         `json:"projectName"`
	Data        map[string]any `json:"data"`
}

// FileInfo summarizes one generated file.
type FileInfo struct {
	Path string `json:"path"`
	Size int    `json:"size"`
}

// ProjectResponse is the body of GET /api/project.
type ProjectResponse struct {
	Revision     uint64               `json:"revision"`
	ProjectName  string               `json:"projectName"`
	Digest       string               `json:"digest"`
	CompiledAt   time.Time            `json:"compiledAt"`
	Files        []FileInfo           `json:"files"`
	Components   []string             `json:"components"`
	Unregistered []string             `json:"unregistered,omitempty"`
	Diagnostics  []codegen.Diagnostic `json:"diagnostics,omitempty"`
	Error        string               `json:"error,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// Health reports liveness.
func (s *Server) Health(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok"))
}

// Components lists the registered templates.
func (s *Server) Components(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.registry.DescribeAll())
}

// Component describes one registered template.
func (s *Server) Component(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	info, ok := s.registry.Describe(name)
	if !ok {
		writeError(w, http.StatusNotFound, "unknown component: "+name)
		return
	}
	writeJSON(w, http.StatusOK, info)
}

// Generate compiles the posted tree without touching the served project.
func (s *Server) Generate(w http.ResponseWriter, r *http.Request) {
	var req GenerateRequest
	dec := json.NewDecoder(io.LimitReader(r.Body, maxRequestBody))
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if err := req.Tree.Validate(); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	res := s.compiler.Compile(req.Tree, codegen.Options{ProjectName: req.ProjectName, Data: req.Data})
	writeJSON(w, http.StatusOK, res)
}

// RebuildNow reloads the inputs and rebuilds the served project.
func (s *Server) RebuildNow(w http.ResponseWriter, r *http.Request) {
	if s.provider != nil {
		s.provider.InvalidateAll()
	}
	if err := s.Rebuild(r.Context()); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	s.Project(w, r)
}

// Data reports the data sources and their latest results.
func (s *Server) Data(w http.ResponseWriter, r *http.Request) {
	if s.provider == nil {
		writeError(w, http.StatusNotFound, "no data provider configured")
		return
	}
	_, results := s.provider.Collect(r.Context())
	writeJSON(w, http.StatusOK, results)
}

// Project summarizes the served project.
func (s *Server) Project(w http.ResponseWriter, _ *http.Request) {
	snap := s.Current()
	if snap == nil {
		msg := "project has not been built"
		if err := s.LastError(); err != nil {
			msg = err.Error()
		}
		writeError(w, http.StatusServiceUnavailable, msg)
		return
	}

	resp := ProjectResponse{
		Revision:     snap.Revision,
		ProjectName:  snap.ProjectName,
		Digest:       snap.Digest,
		CompiledAt:   snap.CompiledAt,
		Files:        make([]FileInfo, len(snap.Result.Files)),
		Components:   snap.Result.Components,
		Unregistered: snap.Result.Unregistered,
		Diagnostics:  snap.Result.Diagnostics,
	}
	for i, f := range snap.Result.Files {
		resp.Files[i] = FileInfo{Path: f.Path, Size: len(f.Content)}
	}
	if err := s.LastError(); err != nil {
		resp.Error = err.Error()
	}
	writeJSON(w, http.StatusOK, resp)
}

// ProjectFile serves the raw content of one generated file.
func (s *Server) ProjectFile(w http.ResponseWriter, r *http.Request) {
	snap := s.Current()
	if snap == nil {
		writeError(w, http.StatusServiceUnavailable, "project has not been built")
		return
	}

	p := strings.TrimPrefix(chi.URLParam(r, "*"), "/")
	f, ok := snap.Result.File(p)
	if !ok {
		writeError(w, http.StatusNotFound, "file not found: "+p)
		return
	}

	w.Header().Set("Content-Type", contentType(p))
	w.Header().Set("ETag", `"`+snap.Digest[:16]+`"`)
	_, _ = w.Write([]byte(f.Content))
}

func contentType(p string) string {
	switch ext := path.Ext(p); ext {
	case ".ts", ".tsx":
		return "text/plain; charset=utf-8"
	default:
		if ct := mime.TypeByExtension(ext); ct != "" {
			return ct
		}
		return "text/plain; charset=utf-8"
	}
}

// Events streams the project revision as datastar signal patches. The
// current revision is sent on connect, then every new one.
func (s *Server) Events(w http.ResponseWriter, r *http.Request) {
	updates := s.notifier.Subscribe()
	defer s.notifier.Unsubscribe(updates)

	sse := datastar.NewSSE(w, r)

	send := func(rev uint64) error {
		signals := map[string]any{"revision": rev}
		if snap := s.Current(); snap != nil {
			signals["digest"] = snap.Digest
			signals["files"] = len(snap.Result.Files)
		}
		return sse.MarshalAndPatchSignals(signals)
	}

	if err := send(s.notifier.Revision()); err != nil {
		return
	}

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case rev, ok := <-updates:
			if !ok {
				return
			}
			if err := send(rev); err != nil {
				if !errors.Is(err, ctx.Err()) {
					s.logger.Debug("event stream closed", "error", err)
				}
				return
			}
		}
	}
}
