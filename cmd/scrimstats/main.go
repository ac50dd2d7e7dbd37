// Command scrimstats summarizes match directories into CSV rows.
//
//	scrimstats -config configs/pipeline.yaml -out summary.csv matches/g1 matches/g2
//	scrimstats -each matches/        # every subdirectory is one match
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/gyaneshwarpardhi/scrimstats/internal/config"
	"github.com/gyaneshwarpardhi/scrimstats/internal/engine"
	"github.com/gyaneshwarpardhi/scrimstats/internal/pipeline"
	"github.com/gyaneshwarpardhi/scrimstats/internal/roles"
	"github.com/gyaneshwarpardhi/scrimstats/internal/store"
	"github.com/gyaneshwarpardhi/scrimstats/internal/summary"
)

type options struct {
	configPath  string
	out         string
	format      string
	dbPath      string
	metricsFile string
	each        bool
	verbose     bool
	dirs        []string
}

func main() {
	env, err := config.LoadEnv()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	var opts options
	flag.StringVar(&opts.configPath, "config", env.ConfigPath, "Path to pipeline YAML config")
	flag.StringVar(&opts.out, "out", "-", "Output file (- for stdout)")
	flag.StringVar(&opts.format, "format", "csv", "Output format: csv or json")
	flag.StringVar(&opts.dbPath, "db", "", "Also save rows to this SQLite database")
	flag.StringVar(&opts.metricsFile, "metrics-file", "", "Write Prometheus metrics to this textfile on exit")
	flag.BoolVar(&opts.each, "each", false, "Treat every subdirectory of each argument as a match")
	flag.BoolVar(&opts.verbose, "v", false, "Debug logging")
	flag.Parse()
	opts.dirs = flag.Args()
	if len(opts.dirs) == 0 {
		flag.Usage()
		os.Exit(2)
	}
	if opts.format != "csv" && opts.format != "json" {
		fmt.Fprintf(os.Stderr, "unknown format %q\n", opts.format)
		os.Exit(2)
	}

	var level slog.LevelVar
	setLevel(&level, env.LogLevel, opts.verbose)
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: &level}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	failed, err := run(ctx, env, opts, &level, logger)
	if opts.metricsFile != "" {
		if werr := prometheus.WriteToTextfile(opts.metricsFile, prometheus.DefaultGatherer); werr != nil {
			slog.Warn("failed to write metrics", "path", opts.metricsFile, "err", werr)
		}
	}
	if err != nil {
		slog.Error("scrimstats failed", "err", err)
		os.Exit(1)
	}
	if failed > 0 {
		os.Exit(1)
	}
}

// run processes every match and writes the successful rows. It returns the
// number of failed matches.
func run(ctx context.Context, env *config.Env, opts options, level *slog.LevelVar, logger *slog.Logger) (int, error) {
	loader, err := config.NewLoader(opts.configPath, env.Apply, logger)
	if err != nil {
		return 0, err
	}
	cfg := loader.Config()
	setLevel(level, cfg.LogLevel, opts.verbose)

	var cache roles.Cache
	if env.RedisURL != "" {
		rc, err := roles.NewRedisCache(ctx, env.RedisURL)
		if err != nil {
			logger.Warn("redis unavailable, role tables will not be cached", "err", err)
		} else {
			defer rc.Close()
			cache = rc
		}
	}

	p, err := pipeline.NewBuilder(cache, logger).Build(ctx, cfg)
	if err != nil {
		return 0, err
	}

	dirs, err := expand(opts.dirs, opts.each)
	if err != nil {
		return 0, err
	}
	eng := engine.New(ctx, p, cfg.Engine)
	defer eng.Shutdown()

	results, err := eng.RunBatch(ctx, dirs)
	if err != nil {
		return 0, err
	}

	dbPath := opts.dbPath
	if dbPath == "" {
		dbPath = cfg.Store.Path
	}
	var st *store.Store
	if dbPath != "" {
		if st, err = store.Open(ctx, dbPath, logger); err != nil {
			return 0, err
		}
		defer st.Close()
	}

	var (
		rows   []*summary.Row
		failed int
	)
	for _, res := range results {
		if res.Err != nil {
			failed++
			logger.Error("match failed", "dir", res.Dir, "err", res.Err)
			continue
		}
		r := res.Result
		if len(r.Unresolved) > 0 {
			logger.Warn("match has unresolved players", "dir", res.Dir, "players", r.Unresolved)
		}
		rows = append(rows, r.Row)
		if st != nil {
			if _, err := st.Save(ctx, res.Dir, res.Variant, r.Row); err != nil {
				return failed, err
			}
		}
	}
	logger.Info("matches processed", "total", len(results), "failed", failed)

	if err := write(opts, rows); err != nil {
		return failed, err
	}
	return failed, nil
}

func write(opts options, rows []*summary.Row) (err error) {
	var w io.Writer = os.Stdout
	if opts.out != "-" {
		f, ferr := os.Create(opts.out)
		if ferr != nil {
			return ferr
		}
		defer func() {
			if cerr := f.Close(); err == nil {
				err = cerr
			}
		}()
		w = f
	}
	if opts.format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if rows == nil {
			rows = []*summary.Row{}
		}
		return enc.Encode(rows)
	}
	return summary.WriteCSV(w, rows...)
}

// expand returns the match directories named by args. With each set, the
// immediate subdirectories of every argument are used instead.
func expand(args []string, each bool) ([]string, error) {
	if !each {
		return args, nil
	}
	var out []string
	for _, a := range args {
		entries, err := os.ReadDir(a)
		if err != nil {
			return nil, err
		}
		for _, e := range entries {
			if e.IsDir() {
				out = append(out, filepath.Join(a, e.Name()))
			}
		}
	}
	if len(out) == 0 {
		return nil, errors.New("no match directories found")
	}
	sort.Strings(out)
	return out, nil
}

// setLevel applies a named log level. -v forces debug regardless of name;
// an empty or unknown name keeps the current level.
func setLevel(v *slog.LevelVar, name string, verbose bool) {
	if verbose {
		v.Set(slog.LevelDebug)
		return
	}
	if name == "" {
		return
	}
	var l slog.Level
	if err := l.UnmarshalText([]byte(name)); err != nil {
		slog.Warn("unknown log level, keeping current", "level", name)
		return
	}
	v.Set(l)
}
