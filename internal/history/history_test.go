package history

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func newTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	tmpDir := t.TempDir()

	store, err := NewStore(filepath.Join(tmpDir, "history.db"), filepath.Join(tmpDir, "history.jsonl"))
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	return store, tmpDir
}

func TestStoreRecordAndList(t *testing.T) {
	store, _ := newTestStore(t)

	base := time.Date(2026, 10, 17, 9, 30, 0, 0, time.UTC)
	runs := []*Run{
		{Root: "/proj", Pattern: "**/*.py", Excludes: []string{".git"}, Matches: 3, StartedAt: base},
		{Root: "/proj", Pattern: "**/*.go", Matches: 7, Skipped: 1, Duration: 1500 * time.Millisecond, StartedAt: base.Add(time.Second)},
		{Root: "/other", Pattern: "*", Gitignore: true, StartedAt: base.Add(500 * time.Millisecond)},
	}
	for _, r := range runs {
		if err := store.Record(r); err != nil {
			t.Fatalf("record: %v", err)
		}
		if r.ID == "" {
			t.Error("Record did not assign an ID")
		}
	}

	got, err := store.List(0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3", len(got))
	}

	// Newest first
	wantOrder := []string{"**/*.go", "*", "**/*.py"}
	for i, w := range wantOrder {
		if got[i].Pattern != w {
			t.Errorf("got[%d].Pattern = %q, want %q", i, got[i].Pattern, w)
		}
	}

	first := got[0]
	if first.Matches != 7 || first.Skipped != 1 {
		t.Errorf("counts = %d/%d, want 7/1", first.Matches, first.Skipped)
	}
	if first.Duration != 1500*time.Millisecond {
		t.Errorf("Duration = %v", first.Duration)
	}
	if !first.StartedAt.Equal(base.Add(time.Second)) {
		t.Errorf("StartedAt = %v", first.StartedAt)
	}
	if !got[1].Gitignore {
		t.Error("Gitignore not persisted")
	}
	if len(got[2].Excludes) != 1 || got[2].Excludes[0] != ".git" {
		t.Errorf("Excludes = %v", got[2].Excludes)
	}

	limited, err := store.List(2)
	if err != nil {
		t.Fatalf("list limit: %v", err)
	}
	if len(limited) != 2 {
		t.Errorf("limited len = %d, want 2", len(limited))
	}
}

func TestStoreRebuild(t *testing.T) {
	store, tmpDir := newTestStore(t)

	start := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	for i := 0; i < 3; i++ {
		r := &Run{Root: "/proj", Pattern: "**", StartedAt: start.Add(time.Duration(i) * time.Minute)}
		if err := store.Record(r); err != nil {
			t.Fatalf("record: %v", err)
		}
	}

	// Simulate a lost cache
	if err := store.DB().ReplaceAll(nil); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if n, _ := store.DB().Count(); n != 0 {
		t.Fatalf("count after clear = %d", n)
	}

	n, err := store.Rebuild()
	if err != nil {
		t.Fatalf("rebuild: %v", err)
	}
	if n != 3 {
		t.Errorf("rebuilt %d runs, want 3", n)
	}
	if c, _ := store.DB().Count(); c != 3 {
		t.Errorf("count after rebuild = %d, want 3", c)
	}

	if _, err := os.Stat(filepath.Join(tmpDir, "history.jsonl")); err != nil {
		t.Errorf("jsonl missing: %v", err)
	}
}

func TestJSONLReadAllMissingFile(t *testing.T) {
	j := NewJSONL(filepath.Join(t.TempDir(), "none.jsonl"))
	runs, err := j.ReadAll()
	if err != nil {
		t.Fatalf("read missing: %v", err)
	}
	if runs != nil {
		t.Errorf("runs = %v, want nil", runs)
	}
}

func TestJSONLReadAllBadLine(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.jsonl")
	os.WriteFile(path, []byte("{\"id\":\"run-1\"}\n\nnot json\n"), 0644)

	if _, err := NewJSONL(path).ReadAll(); err == nil {
		t.Error("expected parse error")
	}
}

func TestNewIDIsStable(t *testing.T) {
	at := time.Unix(1700000000, 42)
	a := NewID("/proj", "**", at)
	b := NewID("/proj", "**", at)
	c := NewID("/proj", "*", at)

	if a != b {
		t.Errorf("same inputs gave %q and %q", a, b)
	}
	if a == c {
		t.Errorf("different patterns gave the same ID %q", a)
	}
	if len(a) != len("run-")+12 {
		t.Errorf("ID %q has unexpected length", a)
	}
}
