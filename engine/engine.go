// Package engine implements the multiplexer's fan-out task: a single
// goroutine that reads sentences off the central queue and copies each one
// onto every eligible output's private queue. It is a direct port of
// kplex.c's engine().
package engine

import (
	"context"
	"log/slog"
	"time"

	"github.com/kplex-io/kplexmux/iface"
	"github.com/kplex-io/kplexmux/router"
	"github.com/kplex-io/kplexmux/senblk"
	"github.com/kplex-io/kplexmux/squeue"
)

// Metrics is the nil-safe observability hook the engine reports fan-out
// throughput into.
type Metrics interface {
	RecordSentenceRouted(output string)
	RecordFanOutDuration(d time.Duration)
}

// Engine owns the central queue and fans every sentence it receives out to
// the router's current output list.
type Engine struct {
	central *squeue.Queue
	router  *router.Router
	metrics Metrics
	logger  *slog.Logger
}

// New creates an Engine reading from central and fanning out via r. A nil
// logger falls back to slog.Default().
func New(central *squeue.Queue, r *router.Router, metrics Metrics, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{central: central, router: r, metrics: metrics, logger: logger}
}

// Run drives the fan-out loop until the central queue closes or ctx is
// cancelled. It returns when the central queue reports end-of-stream,
// matching engine()'s "sptr==NULL: break" exit condition — the last input
// closing the central queue is what stops the engine.
func (e *Engine) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		u, ok := e.central.Next()
		if !ok {
			e.fanOut(nil)
			e.logger.Debug("engine exiting: central queue closed")
			return
		}

		e.fanOut(u)
		e.central.Free(u)
	}
}

// fanOut copies u onto every output whose Pair is not u's source, skipping
// loop-prevention pairs exactly as engine()'s inner loop does. u may be nil
// to propagate end-of-stream to every output's queue.
func (e *Engine) fanOut(u *senblk.SenBlk) {
	start := time.Now()

	e.router.WithOutputsLocked(func(outputs *iface.Endpoint) {
		for ep := outputs; ep != nil; ep = ep.Next() {
			if u != nil && ep.Pair != nil && sameSrc(u.Src, ep.Pair) {
				continue
			}
			ep.Q.Push(u)
			if u != nil && e.metrics != nil {
				e.metrics.RecordSentenceRouted(ep.Name)
			}
		}
	})

	if e.metrics != nil {
		e.metrics.RecordFanOutDuration(time.Since(start))
	}
}

func sameSrc(src any, ep *iface.Endpoint) bool {
	s, ok := src.(*iface.Endpoint)
	return ok && s == ep
}
