// Package engine runs matches through the pipeline on a bounded worker pool.
package engine

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/gyaneshwarpardhi/scrimstats/internal/config"
	"github.com/gyaneshwarpardhi/scrimstats/internal/metrics"
	"github.com/gyaneshwarpardhi/scrimstats/internal/pipeline"
)

// ErrQueueFull is returned by ProcessSync when no queue slot is free.
var ErrQueueFull = errors.New("match queue full")

// ErrTimeout is returned when a match exceeds the configured job timeout.
var ErrTimeout = errors.New("match processing timeout")

// MatchResult is the outcome of processing one match directory.
type MatchResult struct {
	Dir        string           `json:"dir"`
	Variant    string           `json:"variant"`
	DurationMs int64            `json:"duration_ms"`
	Result     *pipeline.Result `json:"result,omitempty"`
	Error      string           `json:"error,omitempty"`

	// Err is the pipeline error behind Error.
	Err error `json:"-"`
}

// Engine processes match directories through the current pipeline.
type Engine struct {
	pipeline atomic.Pointer[pipeline.Pipeline]
	pool     *workerPool[*matchWork]
	conf     config.EngineConf
}

type matchWork struct {
	ctx     context.Context
	dir     string
	resultC chan *MatchResult
}

// New creates an Engine using conf and starts its worker pool.
func New(ctx context.Context, p *pipeline.Pipeline, conf config.EngineConf) *Engine {
	e := &Engine{conf: conf}
	e.pipeline.Store(p)
	e.pool = newWorkerPool[*matchWork](
		ctx,
		conf.Workers,
		conf.QueueDepth,
		func(ctx context.Context, w *matchWork) {
			w.resultC <- e.processMatch(ctx, w)
		},
	)
	return e
}

// SwapPipeline atomically replaces the pipeline (used on hot-reload).
// Matches already running finish on the pipeline they started with.
func (e *Engine) SwapPipeline(p *pipeline.Pipeline) {
	e.pipeline.Store(p)
}

// Pipeline returns the pipeline new matches will run on.
func (e *Engine) Pipeline() *pipeline.Pipeline {
	return e.pipeline.Load()
}

// ProcessSync runs one match and waits for its result. It fails fast with
// ErrQueueFull when the queue has no room. A pipeline failure is returned
// both as the error and on the result.
func (e *Engine) ProcessSync(ctx context.Context, dir string) (*MatchResult, error) {
	w := &matchWork{ctx: ctx, dir: dir, resultC: make(chan *MatchResult, 1)}
	ok, err := e.pool.TrySubmit(w)
	if err != nil {
		return nil, err
	}
	if !ok {
		metrics.MatchesRejected.Inc()
		return nil, fmt.Errorf("%w (capacity %d)", ErrQueueFull, e.conf.QueueDepth)
	}
	metrics.MatchesEnqueued.Inc()
	metrics.QueueUtilization.Set(e.QueueUtilization())

	timeout := e.conf.JobTimeout()
	select {
	case res := <-w.resultC:
		return res, res.Err
	case <-time.After(timeout):
		return nil, fmt.Errorf("%w after %v", ErrTimeout, timeout)
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// RunBatch runs every directory and returns results in input order.
// Submission waits for queue room instead of rejecting. Per-match
// failures are reported on the results; the error is non-nil only when
// the batch itself could not complete.
func (e *Engine) RunBatch(ctx context.Context, dirs []string) ([]*MatchResult, error) {
	works := make([]*matchWork, len(dirs))
	for i, dir := range dirs {
		works[i] = &matchWork{ctx: ctx, dir: dir, resultC: make(chan *MatchResult, 1)}
		if err := e.pool.Submit(ctx, works[i]); err != nil {
			return nil, fmt.Errorf("submit %s: %w", dir, err)
		}
		metrics.MatchesEnqueued.Inc()
	}

	results := make([]*MatchResult, len(dirs))
	for i, w := range works {
		select {
		case res := <-w.resultC:
			results[i] = res
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return results, nil
}

// QueueUtilization returns queue used / capacity (0-1).
func (e *Engine) QueueUtilization() float64 {
	if e.pool.QueueCap() == 0 {
		return 0
	}
	return float64(e.pool.QueueLen()) / float64(e.pool.QueueCap())
}

func (e *Engine) processMatch(poolCtx context.Context, w *matchWork) *MatchResult {
	start := time.Now()
	p := e.pipeline.Load()

	ctx, cancel := context.WithTimeout(w.ctx, e.conf.JobTimeout())
	defer cancel()
	stop := context.AfterFunc(poolCtx, cancel)
	defer stop()

	res, err := p.RunDir(ctx, w.dir)
	mr := &MatchResult{
		Dir:        w.dir,
		Variant:    p.Config().Variant.Name,
		Result:     res,
		DurationMs: time.Since(start).Milliseconds(),
	}

	status := "success"
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		status = "timeout"
		err = fmt.Errorf("%w: %w", ErrTimeout, err)
	case err != nil:
		status = "error"
	}
	if err != nil {
		mr.Err = err
		mr.Error = err.Error()
	}

	metrics.MatchesProcessed.WithLabelValues(status).Inc()
	metrics.MatchProcessingDuration.Observe(float64(mr.DurationMs))
	metrics.QueueUtilization.Set(e.QueueUtilization())
	return mr
}

// Shutdown stops accepting matches and waits for queued ones to finish.
func (e *Engine) Shutdown() {
	e.pool.Drain()
}
