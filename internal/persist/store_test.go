package persist

import (
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/kayz/codeloom/internal/artifact"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(filepath.Join(t.TempDir(), "runs.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleArtifacts() *artifact.Map {
	m := artifact.NewMap()
	m.Set("app/main.py", "print('hi')")
	m.Set("app/models.py", "x = 1")
	m.Set("README.md", "# demo")
	return m
}

func TestSaveAndGetRun(t *testing.T) {
	s := newTestStore(t)

	run := &Run{
		ID:          uuid.NewString(),
		Flavor:      "backend",
		Project:     "demo",
		TaskPreview: TaskPreviewOf("build a shop"),
		Degraded:    false,
		Turns:       7,
	}
	if err := s.SaveRun(run, sampleArtifacts()); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	got, err := s.GetRun(run.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got.Flavor != "backend" || got.Project != "demo" || got.Turns != 7 {
		t.Fatalf("unexpected run: %+v", got)
	}
	if got.ArtifactCount != 3 {
		t.Fatalf("artifact count not recorded: %d", got.ArtifactCount)
	}
	if got.Degraded {
		t.Fatalf("degraded flag corrupted")
	}
}

func TestRunArtifactsRoundTripPreservesOrder(t *testing.T) {
	s := newTestStore(t)

	run := &Run{ID: uuid.NewString(), Flavor: "backend", Project: "demo"}
	want := sampleArtifacts()
	if err := s.SaveRun(run, want); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	got, err := s.GetRunArtifacts(run.ID)
	if err != nil {
		t.Fatalf("artifacts query failed: %v", err)
	}
	if !reflect.DeepEqual(got.Paths(), want.Paths()) {
		t.Fatalf("order lost: want %v got %v", want.Paths(), got.Paths())
	}
	if c, _ := got.Get("app/main.py"); c != "print('hi')" {
		t.Fatalf("content lost: %q", c)
	}
}

func TestListRunsNewestFirst(t *testing.T) {
	s := newTestStore(t)

	old := &Run{ID: uuid.NewString(), Flavor: "backend", Project: "old",
		CreatedAt: time.Now().Add(-2 * time.Hour)}
	recent := &Run{ID: uuid.NewString(), Flavor: "frontend", Project: "recent",
		CreatedAt: time.Now()}

	for _, r := range []*Run{old, recent} {
		if err := s.SaveRun(r, artifact.NewMap()); err != nil {
			t.Fatalf("save failed: %v", err)
		}
	}

	runs, err := s.ListRuns(10)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 2 || runs[0].Project != "recent" {
		t.Fatalf("unexpected order: %+v", runs)
	}
}

func TestDeleteRunsBefore(t *testing.T) {
	s := newTestStore(t)

	stale := &Run{ID: uuid.NewString(), Flavor: "backend", Project: "stale",
		CreatedAt: time.Now().Add(-48 * time.Hour)}
	fresh := &Run{ID: uuid.NewString(), Flavor: "backend", Project: "fresh",
		CreatedAt: time.Now()}

	for _, r := range []*Run{stale, fresh} {
		if err := s.SaveRun(r, sampleArtifacts()); err != nil {
			t.Fatalf("save failed: %v", err)
		}
	}

	deleted, err := s.DeleteRunsBefore(time.Now().Add(-24 * time.Hour))
	if err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if deleted != 1 {
		t.Fatalf("expected 1 deleted run, got %d", deleted)
	}

	if _, err := s.GetRun(stale.ID); err == nil {
		t.Fatalf("stale run should be gone")
	}
	arts, err := s.GetRunArtifacts(stale.ID)
	if err != nil {
		t.Fatalf("artifacts query failed: %v", err)
	}
	if arts.Len() != 0 {
		t.Fatalf("stale artifacts should be gone, got %v", arts.Paths())
	}
	if _, err := s.GetRun(fresh.ID); err != nil {
		t.Fatalf("fresh run must survive: %v", err)
	}
}

func TestTaskPreviewTruncation(t *testing.T) {
	long := make([]byte, 1200)
	for i := range long {
		long[i] = 'a'
	}
	preview := TaskPreviewOf(string(long))
	if len(preview) != previewLimit+3 {
		t.Fatalf("unexpected preview length: %d", len(preview))
	}
}
