package config

import (
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"

	"github.com/gyaneshwarpardhi/scrimstats/internal/roles"
)

// Loader reads a YAML config file and watches it for changes.
type Loader struct {
	path     string
	overlay  func(*PipelineConfig)
	logger   *slog.Logger
	mu       sync.RWMutex
	current  *PipelineConfig
	onChange []func(*PipelineConfig)
}

// NewLoader creates a Loader and performs the initial load. overlay, when
// non-nil, is applied to every loaded config before validation (used for
// environment overrides).
func NewLoader(path string, overlay func(*PipelineConfig), logger *slog.Logger) (*Loader, error) {
	if logger == nil {
		logger = slog.Default()
	}
	l := &Loader{path: path, overlay: overlay, logger: logger}
	cfg, err := l.load()
	if err != nil {
		return nil, err
	}
	l.current = cfg
	return l, nil
}

// Path returns the watched file.
func (l *Loader) Path() string { return l.path }

// Config returns the current (latest) configuration.
func (l *Loader) Config() *PipelineConfig {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.current
}

// OnChange registers a callback invoked whenever the config reloads.
func (l *Loader) OnChange(fn func(*PipelineConfig)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.onChange = append(l.onChange, fn)
}

// Watch starts a background goroutine that hot-reloads the config on file changes.
// Call the returned stop function to clean up.
func (l *Loader) Watch() (stop func(), err error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("config watcher: %w", err)
	}
	if err := w.Add(l.path); err != nil {
		w.Close()
		return nil, fmt.Errorf("config watcher add %s: %w", l.path, err)
	}

	done := make(chan struct{})
	go func() {
		defer w.Close()
		for {
			select {
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) {
					if _, err := l.Reload(); err != nil {
						l.logger.Error("config reload failed, keeping previous config", "path", l.path, "err", err)
						continue
					}
					l.logger.Info("config reloaded", "path", l.path)
				}
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				l.logger.Warn("config watcher error", "err", err)
			case <-done:
				return
			}
		}
	}()

	var once sync.Once
	return func() { once.Do(func() { close(done) }) }, nil
}

// Reload forces an immediate re-read of the config file. An invalid file
// leaves the current config in place.
func (l *Loader) Reload() (*PipelineConfig, error) {
	cfg, err := l.load()
	if err != nil {
		return nil, err
	}
	l.mu.Lock()
	l.current = cfg
	callbacks := make([]func(*PipelineConfig), len(l.onChange))
	copy(callbacks, l.onChange)
	l.mu.Unlock()
	for _, fn := range callbacks {
		fn(cfg)
	}
	return cfg, nil
}

func (l *Loader) load() (*PipelineConfig, error) {
	data, err := os.ReadFile(l.path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", l.path, err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse config %s: %w", l.path, err)
	}
	if l.overlay != nil {
		l.overlay(cfg)
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse decodes YAML and applies defaults. It does not validate.
func Parse(data []byte) (*PipelineConfig, error) {
	var cfg PipelineConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	ApplyDefaults(&cfg)
	return &cfg, nil
}

// Variant presets.
const (
	VariantStandard  = "standard"
	VariantSecondary = "secondary"

	TeamLabelSource = "source"
	TeamLabelTag    = "tag"
)

// ApplyDefaults fills unset fields.
func ApplyDefaults(cfg *PipelineConfig) {
	if cfg.Engine.Workers == 0 {
		cfg.Engine.Workers = 4
	}
	if cfg.Engine.QueueDepth == 0 {
		cfg.Engine.QueueDepth = 64
	}
	if cfg.Engine.JobTimeoutMs == 0 {
		cfg.Engine.JobTimeoutMs = 120000
	}
	if cfg.Engine.LoaderWorkers == 0 {
		cfg.Engine.LoaderWorkers = 16
	}
	if cfg.RosterSize == 0 {
		cfg.RosterSize = 5
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}

	v := &cfg.Variant
	if v.Name == "" {
		v.Name = VariantStandard
	}
	strict, tags, label, schema := true, "split", TeamLabelSource, VariantStandard
	if v.Name == VariantSecondary {
		strict, tags, label, schema = false, "majority", TeamLabelTag, VariantSecondary
	}
	if v.Strict == nil {
		v.Strict = &strict
	}
	if v.TagParsing == "" {
		v.TagParsing = tags
	}
	if v.TeamLabel == "" {
		v.TeamLabel = label
	}
	if v.Schema == "" {
		v.Schema = schema
	}

	cols := &cfg.Roles.Columns
	if cols.Name == "" {
		cols.Name = roles.DefaultColumns.Name
	}
	if cols.Team == "" {
		cols.Team = roles.DefaultColumns.Team
	}
	if cols.Position == "" {
		cols.Position = roles.DefaultColumns.Position
	}
	if cfg.Roles.CacheTTL == 0 {
		cfg.Roles.CacheTTL = 24 * time.Hour
	}
	if cfg.Roles.FetchTimeout == 0 {
		cfg.Roles.FetchTimeout = 10 * time.Second
	}
}
