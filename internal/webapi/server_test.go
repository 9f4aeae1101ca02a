package webapi

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gorilla/websocket"

	"github.com/kayz/codeloom/internal/catalog"
	"github.com/kayz/codeloom/internal/extract"
	"github.com/kayz/codeloom/internal/persist"
	"github.com/kayz/codeloom/internal/pipeline"
	"github.com/kayz/codeloom/internal/synth"
)

func testCatalog() *catalog.Catalog {
	return catalog.New(&catalog.Flavor{
		ID:          "backend",
		Description: "test backend flavor",
		Spec: catalog.PipelineSpec{
			TurnBudget: 2,
			Roles: []catalog.RoleSpec{
				{Label: "planner", Instructions: "plan"},
				{Label: "builder", Instructions: "build"},
			},
		},
		Extract: extract.Rules{
			CommentMarkers: []string{"#"},
			Extensions:     []string{".py", ".md", ".txt"},
		},
		Scaffold: synth.Scaffold{
			CombinedPath: "{project}/generated_code.py",
			CommentLead:  "#",
			Files: []synth.ScaffoldFile{
				{Path: "{project}/README.md", Content: "# {project}"},
			},
		},
	})
}

func fencedGenerator() pipeline.Generator {
	return pipeline.GeneratorFunc(func(_ context.Context, _, _ string) (string, error) {
		return "# main.py\n```python\nprint('hi')\n```", nil
	})
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	store, err := persist.NewStore(filepath.Join(t.TempDir(), "runs.db"))
	if err != nil {
		t.Fatalf("store init failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return NewServer(testCatalog(), fencedGenerator(), store, t.TempDir())
}

func TestStatusEndpoint(t *testing.T) {
	handler := newTestServer(t).Handler()

	req := httptest.NewRequest(http.MethodGet, "/api/status", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "\"ok\":true") {
		t.Fatalf("unexpected status payload: %s", rr.Body.String())
	}
}

func TestFlavorsEndpoint(t *testing.T) {
	handler := newTestServer(t).Handler()

	req := httptest.NewRequest(http.MethodGet, "/api/flavors", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var payload struct {
		Flavors []flavorInfo `json:"flavors"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &payload); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if len(payload.Flavors) != 1 || payload.Flavors[0].ID != "backend" {
		t.Fatalf("unexpected flavors: %+v", payload.Flavors)
	}
	if payload.Flavors[0].TurnBudget != 2 || len(payload.Flavors[0].Roles) != 2 {
		t.Fatalf("flavor detail missing: %+v", payload.Flavors[0])
	}
}

func postJSON(t *testing.T, handler http.Handler, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	data, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	return rr
}

func TestGenerateEndpoint(t *testing.T) {
	server := newTestServer(t)
	handler := server.Handler()

	rr := postJSON(t, handler, "/api/generate", generateRequest{
		Flavor:       "backend",
		Project:      "demo",
		Requirements: "build a shop",
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rr.Code, rr.Body.String())
	}

	var resp generateResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.RunID == "" || resp.Degraded || resp.Turns != 2 {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if len(resp.Files) != 1 || resp.Files[0] != "main.py" {
		t.Fatalf("unexpected files: %v", resp.Files)
	}

	// The run must be queryable afterwards.
	req := httptest.NewRequest(http.MethodGet, "/api/runs/"+resp.RunID, nil)
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("run lookup failed: %d %s", rr.Code, rr.Body.String())
	}
	if !strings.Contains(rr.Body.String(), "print('hi')") {
		t.Fatalf("artifact content missing from run payload: %s", rr.Body.String())
	}
}

func TestGenerateUnknownFlavor(t *testing.T) {
	handler := newTestServer(t).Handler()

	rr := postJSON(t, handler, "/api/generate", generateRequest{
		Flavor:       "mobile",
		Requirements: "build it",
	})
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
}

func TestGenerateValidation(t *testing.T) {
	handler := newTestServer(t).Handler()

	rr := postJSON(t, handler, "/api/generate", generateRequest{Flavor: "backend"})
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for empty requirements, got %d", rr.Code)
	}
}

func TestArchiveEndpoint(t *testing.T) {
	handler := newTestServer(t).Handler()

	rr := postJSON(t, handler, "/api/generate", generateRequest{
		Flavor:       "backend",
		Project:      "demo",
		Requirements: "build a shop",
	})
	var resp generateResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/runs/"+resp.RunID+"/archive", nil)
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); ct != "application/zip" {
		t.Fatalf("unexpected content type: %s", ct)
	}
	if rr.Body.Len() == 0 {
		t.Fatalf("empty archive")
	}
}

func TestUploadEndpoint(t *testing.T) {
	handler := newTestServer(t).Handler()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, _ := mw.CreateFormFile("file", "requirements.txt")
	_, _ = fw.Write([]byte("The system shall manage inventory."))
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rr.Code, rr.Body.String())
	}
	if !strings.Contains(rr.Body.String(), "The system shall manage inventory.") {
		t.Fatalf("uploaded text missing: %s", rr.Body.String())
	}
}

func TestUploadRejectsUnsupportedFormat(t *testing.T) {
	handler := newTestServer(t).Handler()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, _ := mw.CreateFormFile("file", "requirements.pdf")
	_, _ = fw.Write([]byte("%PDF-1.4"))
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for pdf, got %d", rr.Code)
	}
}

func TestGenerateStream(t *testing.T) {
	ts := httptest.NewServer(newTestServer(t).Handler())
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/generate/stream"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	defer conn.Close()

	err = conn.WriteJSON(generateRequest{
		Flavor:       "backend",
		Project:      "demo",
		Requirements: "build a shop",
	})
	if err != nil {
		t.Fatalf("send failed: %v", err)
	}

	var turns int
	for {
		var ev streamEvent
		if err := conn.ReadJSON(&ev); err != nil {
			t.Fatalf("read failed after %d turns: %v", turns, err)
		}
		switch ev.Type {
		case "turn":
			turns++
		case "result":
			if turns != 2 {
				t.Fatalf("expected 2 turn events, got %d", turns)
			}
			if ev.Result == nil || len(ev.Result.Files) != 1 {
				t.Fatalf("unexpected result: %+v", ev.Result)
			}
			return
		default:
			t.Fatalf("unexpected event: %+v", ev)
		}
	}
}
