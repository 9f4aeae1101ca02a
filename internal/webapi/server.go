package webapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shirou/gopsutil/v4/process"

	"github.com/kayz/codeloom/internal/catalog"
	"github.com/kayz/codeloom/internal/persist"
	"github.com/kayz/codeloom/internal/pipeline"
	"github.com/kayz/codeloom/internal/workspace"
)

// maxUploadBytes caps requirements document uploads.
const maxUploadBytes = 4 << 20

// Server exposes the generation pipeline over HTTP. The store may be
// nil, in which case run history endpoints report service unavailable.
type Server struct {
	catalog   *catalog.Catalog
	generator pipeline.Generator
	store     *persist.Store
	outputDir string
	startedAt time.Time
}

// NewServer creates a web API server.
func NewServer(cat *catalog.Catalog, gen pipeline.Generator, store *persist.Store, outputDir string) *Server {
	return &Server{
		catalog:   cat,
		generator: gen,
		store:     store,
		outputDir: outputDir,
		startedAt: time.Now().UTC(),
	}
}

// Handler returns the HTTP handler for the server.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/api/status", s.handleStatus)
	mux.HandleFunc("/api/flavors", s.handleFlavors)
	mux.HandleFunc("/api/generate", s.handleGenerate)
	mux.HandleFunc("/api/generate/stream", s.handleGenerateStream)
	mux.HandleFunc("/api/upload", s.handleUpload)
	mux.HandleFunc("/api/runs", s.handleRuns)
	mux.HandleFunc("/api/runs/", s.handleRunByID)
	return mux
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(defaultIndexHTML))
}

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	payload := map[string]any{
		"ok":         true,
		"started_at": s.startedAt.Format(time.RFC3339),
		"uptime_sec": int(time.Since(s.startedAt).Seconds()),
	}
	if proc, err := process.NewProcess(int32(os.Getpid())); err == nil {
		if mem, err := proc.MemoryInfo(); err == nil {
			payload["rss_mb"] = mem.RSS / (1 << 20)
		}
	}
	writeJSON(w, http.StatusOK, payload)
}

type flavorInfo struct {
	ID          string   `json:"id"`
	Description string   `json:"description"`
	TurnBudget  int      `json:"turn_budget"`
	Roles       []string `json:"roles"`
}

func (s *Server) handleFlavors(w http.ResponseWriter, _ *http.Request) {
	flavors := make([]flavorInfo, 0)
	for _, f := range s.catalog.List() {
		roles := make([]string, len(f.Spec.Roles))
		for i, r := range f.Spec.Roles {
			roles[i] = r.Label
		}
		flavors = append(flavors, flavorInfo{
			ID:          f.ID,
			Description: f.Description,
			TurnBudget:  f.Spec.TurnBudget,
			Roles:       roles,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"flavors": flavors})
}

type generateRequest struct {
	Flavor       string `json:"flavor"`
	Project      string `json:"project"`
	Requirements string `json:"requirements"`
	WriteToDisk  bool   `json:"write_to_disk"`
}

type generateResponse struct {
	RunID    string   `json:"run_id"`
	Flavor   string   `json:"flavor"`
	Project  string   `json:"project"`
	Degraded bool     `json:"degraded"`
	Turns    int      `json:"turns"`
	Files    []string `json:"files"`
	Failure  string   `json:"failure,omitempty"`
	Written  int      `json:"written,omitempty"`
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json body"})
		return
	}
	if err := normalizeGenerateRequest(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	resp, err := s.executeRun(r.Context(), req, nil)
	if errors.Is(err, catalog.ErrUnknownFlavor) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
		return
	}
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// executeRun drives one pipeline run, records it, and optionally writes
// the artifacts under the output root.
func (s *Server) executeRun(ctx context.Context, req generateRequest, observer pipeline.TurnObserver) (generateResponse, error) {
	coord := pipeline.NewCoordinator(s.catalog, s.generator, observer)
	result, err := coord.Run(ctx, req.Flavor, req.Requirements, req.Project)
	if err != nil {
		return generateResponse{}, err
	}

	resp := generateResponse{
		RunID:    uuid.NewString(),
		Flavor:   req.Flavor,
		Project:  req.Project,
		Degraded: result.Degraded,
		Turns:    result.Turns,
		Files:    result.Artifacts.Paths(),
	}
	if result.Failure != nil {
		resp.Failure = result.Failure.Error()
	}

	if s.store != nil {
		run := &persist.Run{
			ID:          resp.RunID,
			Flavor:      req.Flavor,
			Project:     req.Project,
			TaskPreview: persist.TaskPreviewOf(req.Requirements),
			Degraded:    result.Degraded,
			Turns:       result.Turns,
			Failure:     resp.Failure,
		}
		if err := s.store.SaveRun(run, result.Artifacts); err != nil {
			return generateResponse{}, fmt.Errorf("failed to record run: %w", err)
		}
	}

	if req.WriteToDisk && s.outputDir != "" {
		written, err := workspace.WriteAll(filepath.Join(s.outputDir, resp.RunID), result.Artifacts)
		if err != nil {
			return generateResponse{}, fmt.Errorf("failed to write output: %w", err)
		}
		resp.Written = written
	}

	return resp, nil
}

func normalizeGenerateRequest(req *generateRequest) error {
	req.Flavor = strings.TrimSpace(req.Flavor)
	req.Project = strings.TrimSpace(req.Project)
	req.Requirements = strings.TrimSpace(req.Requirements)

	if req.Flavor == "" {
		return fmt.Errorf("flavor is required")
	}
	if req.Requirements == "" {
		return fmt.Errorf("requirements text is required")
	}
	if req.Project == "" {
		req.Project = "generated_" + req.Flavor
	}
	return nil
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid multipart body"})
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "file field is required"})
		return
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if ext != ".txt" && ext != ".md" {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": fmt.Sprintf("unsupported file format %q, allowed: .txt, .md", ext),
		})
		return
	}

	data, err := io.ReadAll(io.LimitReader(file, maxUploadBytes))
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to read upload"})
		return
	}

	text := strings.TrimSpace(string(data))
	if text == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "no text content found in document"})
		return
	}

	preview := text
	if len(preview) > 500 {
		preview = preview[:500] + "..."
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"filename": header.Filename,
		"chars":    len(text),
		"preview":  preview,
		"text":     text,
	})
}

type runInfo struct {
	ID            string `json:"id"`
	Flavor        string `json:"flavor"`
	Project       string `json:"project"`
	Degraded      bool   `json:"degraded"`
	Turns         int    `json:"turns"`
	ArtifactCount int    `json:"artifact_count"`
	Failure       string `json:"failure,omitempty"`
	CreatedAt     string `json:"created_at"`
}

func runInfoOf(run *persist.Run) runInfo {
	return runInfo{
		ID:            run.ID,
		Flavor:        run.Flavor,
		Project:       run.Project,
		Degraded:      run.Degraded,
		Turns:         run.Turns,
		ArtifactCount: run.ArtifactCount,
		Failure:       run.Failure,
		CreatedAt:     run.CreatedAt.Format(time.RFC3339),
	}
}

func (s *Server) handleRuns(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "run history is not enabled"})
		return
	}

	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}

	runs, err := s.store.ListRuns(limit)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	infos := make([]runInfo, 0, len(runs))
	for _, run := range runs {
		infos = append(infos, runInfoOf(run))
	}
	writeJSON(w, http.StatusOK, map[string]any{"runs": infos})
}

func (s *Server) handleRunByID(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "run history is not enabled"})
		return
	}

	rest := strings.TrimPrefix(r.URL.Path, "/api/runs/")
	id, sub, _ := strings.Cut(rest, "/")
	if id == "" {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "run id is required"})
		return
	}

	run, err := s.store.GetRun(id)
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "run not found"})
		return
	}

	switch sub {
	case "":
		artifacts, err := s.store.GetRunArtifacts(id)
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"run":   runInfoOf(run),
			"files": artifacts.Files(),
		})
	case "archive":
		artifacts, err := s.store.GetRunArtifacts(id)
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
			return
		}
		data, err := workspace.BuildZip(artifacts)
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
			return
		}
		w.Header().Set("Content-Type", "application/zip")
		w.Header().Set("Content-Disposition",
			fmt.Sprintf("attachment; filename=%q", run.Project+".zip"))
		_, _ = w.Write(data)
	default:
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
