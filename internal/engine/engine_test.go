package engine_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/gyaneshwarpardhi/scrimstats/internal/config"
	"github.com/gyaneshwarpardhi/scrimstats/internal/engine"
	"github.com/gyaneshwarpardhi/scrimstats/internal/identity"
	"github.com/gyaneshwarpardhi/scrimstats/internal/matchtest"
	"github.com/gyaneshwarpardhi/scrimstats/internal/pipeline"
	"github.com/gyaneshwarpardhi/scrimstats/internal/roles"
)

func newPipeline(t *testing.T, body string) *pipeline.Pipeline {
	t.Helper()
	cfg, err := config.Parse([]byte(body))
	if err != nil {
		t.Fatal(err)
	}
	if err := config.Validate(cfg); err != nil {
		t.Fatal(err)
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	p, err := pipeline.New(cfg, roles.NewStatic(matchtest.Lookup(), nil), logger)
	if err != nil {
		t.Fatal(err)
	}
	return p
}

const homeCLG = "version: \"1\"\nhome:\n  players: [Palafox]\n"

var conf = config.EngineConf{Workers: 2, QueueDepth: 8, JobTimeoutMs: 10000}

func TestProcessSync(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	eng := engine.New(ctx, newPipeline(t, homeCLG), conf)
	defer eng.Shutdown()

	dir := matchtest.WriteDir(t, matchtest.Records())
	res, err := eng.ProcessSync(ctx, dir)
	if err != nil {
		t.Fatalf("ProcessSync: %v", err)
	}
	if res.Dir != dir || res.Variant != "standard" || res.Result == nil {
		t.Fatalf("result = %+v", res)
	}
	if res.Result.Row.Team != "Dignitas" {
		t.Errorf("team = %q", res.Result.Row.Team)
	}
}

func TestProcessSyncPipelineError(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	eng := engine.New(ctx, newPipeline(t, "version: \"1\"\nhome:\n  players: [Nobody]\n"), conf)
	defer eng.Shutdown()

	res, err := eng.ProcessSync(ctx, matchtest.WriteDir(t, matchtest.Records()))
	if !errors.Is(err, identity.ErrAmbiguousIdentity) {
		t.Fatalf("err = %v, want ErrAmbiguousIdentity", err)
	}
	if res == nil || res.Error == "" {
		t.Errorf("result should carry the error: %+v", res)
	}
}

func TestRunBatchKeepsOrder(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	eng := engine.New(ctx, newPipeline(t, homeCLG), conf)
	defer eng.Shutdown()

	good := matchtest.WriteDir(t, matchtest.Records())
	missing := filepath.Join(t.TempDir(), "nope")
	dirs := []string{good, missing, good, good}

	results, err := eng.RunBatch(ctx, dirs)
	if err != nil {
		t.Fatalf("RunBatch: %v", err)
	}
	if len(results) != len(dirs) {
		t.Fatalf("got %d results", len(results))
	}
	for i, res := range results {
		if res.Dir != dirs[i] {
			t.Errorf("result %d dir = %s, want %s", i, res.Dir, dirs[i])
		}
		if wantErr := dirs[i] == missing; (res.Err != nil) != wantErr {
			t.Errorf("result %d err = %v", i, res.Err)
		}
	}
}

func TestQueueFull(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	// No workers: the first match occupies the only slot and times out.
	eng := engine.New(ctx, newPipeline(t, homeCLG), config.EngineConf{Workers: 0, QueueDepth: 1, JobTimeoutMs: 20})

	dir := matchtest.WriteDir(t, matchtest.Records())
	if _, err := eng.ProcessSync(ctx, dir); !errors.Is(err, engine.ErrTimeout) {
		t.Fatalf("first err = %v, want ErrTimeout", err)
	}
	if got := eng.QueueUtilization(); got != 1 {
		t.Errorf("utilization = %v, want 1", got)
	}
	if _, err := eng.ProcessSync(ctx, dir); !errors.Is(err, engine.ErrQueueFull) {
		t.Fatalf("second err = %v, want ErrQueueFull", err)
	}
}

func TestSwapPipeline(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	eng := engine.New(ctx, newPipeline(t, homeCLG), conf)
	defer eng.Shutdown()

	eng.SwapPipeline(newPipeline(t, homeCLG+"variant:\n  name: secondary\n"))
	res, err := eng.ProcessSync(ctx, matchtest.WriteDir(t, matchtest.Records()))
	if err != nil {
		t.Fatalf("ProcessSync: %v", err)
	}
	if res.Variant != "secondary" || res.Result.Row.Win != nil {
		t.Errorf("variant = %s, win = %v", res.Variant, res.Result.Row.Win)
	}
}

func TestShutdownRejects(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	eng := engine.New(ctx, newPipeline(t, homeCLG), conf)
	eng.Shutdown()
	eng.Shutdown()

	if _, err := eng.ProcessSync(ctx, t.TempDir()); err == nil {
		t.Fatal("expected error after shutdown")
	}
}
