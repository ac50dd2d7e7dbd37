// Package source reads a match's event files from disk.
package source

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/gyaneshwarpardhi/scrimstats/internal/event"
)

// Loader walks a match directory and decodes every *.json file as a
// stream of JSON objects (one per line, or a single object per file).
type Loader struct {
	workers int
	logger  *slog.Logger
}

// NewLoader returns a Loader reading at most workers files at once.
func NewLoader(workers int, logger *slog.Logger) *Loader {
	if workers <= 0 {
		workers = 1
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{workers: workers, logger: logger}
}

// Load returns every record under dir. Files are read concurrently; the
// result is ordered by file path, then position in the file.
func (l *Loader) Load(ctx context.Context, dir string) ([]event.Record, error) {
	paths, err := l.walk(ctx, dir)
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no .json files under %s", dir)
	}

	perFile := make([][]event.Record, len(paths))
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(l.workers)
	for i, p := range paths {
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			recs, err := readFile(p)
			if err != nil {
				return err
			}
			perFile[i] = recs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	total := 0
	for _, recs := range perFile {
		total += len(recs)
	}
	out := make([]event.Record, 0, total)
	for _, recs := range perFile {
		out = append(out, recs...)
	}
	l.logger.Debug("event files loaded", "dir", dir, "files", len(paths), "records", total)
	return out, nil
}

func (l *Loader) walk(ctx context.Context, dir string) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if !d.IsDir() && strings.EqualFold(filepath.Ext(path), ".json") {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", dir, err)
	}
	return paths, nil
}

func readFile(path string) ([]event.Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	var out []event.Record
	for {
		start := dec.InputOffset()
		var v interface{}
		err := dec.Decode(&v)
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return nil, fmt.Errorf("%s:%d: %w", path, lineAt(data, dec.InputOffset()), err)
		}
		m, ok := v.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("%s:%d: expected a JSON object, got %T", path, lineAt(data, skipSpace(data, start)), v)
		}
		out = append(out, event.Record(m))
	}
}

func skipSpace(data []byte, off int64) int64 {
	for off < int64(len(data)) && strings.ContainsRune(" \t\r\n", rune(data[off])) {
		off++
	}
	return off
}

func lineAt(data []byte, off int64) int {
	off = min(off, int64(len(data)))
	return 1 + bytes.Count(data[:off], []byte{'\n'})
}
