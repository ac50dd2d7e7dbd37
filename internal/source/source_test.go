package source_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gyaneshwarpardhi/scrimstats/internal/source"
)

func writeFile(t *testing.T, path, body string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestLoadNestedAndMultiLine(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.json"), `{"seqIdx": 1, "payload": {"x": 1}}
{"seqIdx": 2}

{"seqIdx": 3}
`)
	writeFile(t, filepath.Join(dir, "game", "deep", "b.json"), `{
  "seqIdx": 4,
  "payload": {"payload": {"type": "SNAPSHOT"}}
}`)
	writeFile(t, filepath.Join(dir, "notes.txt"), "ignored")

	recs, err := source.NewLoader(2, nil).Load(context.Background(), dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(recs) != 4 {
		t.Fatalf("got %d records, want 4", len(recs))
	}
	var seqs []float64
	for _, r := range recs {
		seqs = append(seqs, r["seqIdx"].(float64))
	}
	if seqs[0] != 1 || seqs[3] != 4 {
		t.Errorf("records out of file order: %v", seqs)
	}
}

func TestLoadReportsBadLine(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "ok.json"), `{"seqIdx": 1}`)
	writeFile(t, filepath.Join(dir, "bad.json"), "{\"seqIdx\": 1}\n[1, 2]\n")

	_, err := source.NewLoader(4, nil).Load(context.Background(), dir)
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "bad.json:2") {
		t.Errorf("error should name file and line: %v", err)
	}
}

func TestLoadEmptyDirAndCancel(t *testing.T) {
	dir := t.TempDir()
	if _, err := source.NewLoader(1, nil).Load(context.Background(), dir); err == nil {
		t.Error("empty directory should fail")
	}

	writeFile(t, filepath.Join(dir, "a.json"), `{"seqIdx": 1}`)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := source.NewLoader(1, nil).Load(ctx, dir); err == nil {
		t.Error("cancelled context should fail")
	}
	if _, err := source.NewLoader(1, nil).Load(context.Background(), filepath.Join(dir, "missing")); err == nil {
		t.Error("missing directory should fail")
	}
}
