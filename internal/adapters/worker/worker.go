// Package worker runs bounded parallel fan-out for batch scoring.
package worker

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/attriwatch/attriwatch/pkg/logger"
	"github.com/attriwatch/attriwatch/pkg/metrics"
	"golang.org/x/sync/errgroup"
)

// Task handles item i. Failures belong to the item and are recorded by the
// task itself, so one bad item never stops the others.
type Task func(ctx context.Context, i int)

// Pool runs tasks on at most Size goroutines at a time.
type Pool struct {
	size   int
	name   string
	logger logger.Logger
}

// NewPool creates a pool. size < 1 means one worker per CPU.
func NewPool(size int, opts ...Option) *Pool {
	if size < 1 {
		size = runtime.NumCPU()
	}
	p := &Pool{
		size: size,
		name: "worker-pool",
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Size returns the concurrency limit.
func (p *Pool) Size() int { return p.size }

// Run calls task for every index in [0,n) and waits for all started tasks.
// Once ctx is done no further indexes are handed out and ctx's error is
// returned.
func (p *Pool) Run(ctx context.Context, n int, task Task) error {
	start := time.Now()
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.size)

	dispatched := 0
	for i := 0; i < n; i++ {
		if gctx.Err() != nil {
			break
		}
		dispatched++
		g.Go(func() error {
			metrics.WorkerStarted()
			defer metrics.WorkerFinished()
			task(gctx, i)
			return nil
		})
	}
	_ = g.Wait()

	if p.logger != nil {
		p.logger.Debug(ctx, "pool run finished",
			logger.String("pool", p.name),
			logger.Int("items", n),
			logger.Int("dispatched", dispatched),
			logger.Duration("elapsed", time.Since(start)),
		)
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: dispatched %d of %d: %w", p.name, dispatched, n, err)
	}
	return nil
}
