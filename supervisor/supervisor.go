// Package supervisor owns the multiplexer's bring-up and teardown sequence:
// building the central queue and router, constructing every configured
// endpoint, starting the fan-out engine, waiting for every endpoint to
// finish initializing, then running the reaper loop that watches for dying
// endpoints and tears the remaining topology down once nothing is left to
// deliver sentences to. It is the Go rendering of kplex.c's main().
package supervisor

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/kplex-io/kplexmux/config"
	"github.com/kplex-io/kplexmux/engine"
	"github.com/kplex-io/kplexmux/errors"
	"github.com/kplex-io/kplexmux/iface"
	"github.com/kplex-io/kplexmux/router"
	"github.com/kplex-io/kplexmux/squeue"
	"github.com/kplex-io/kplexmux/transport"
)

// Builder constructs one endpoint from its parsed configuration. Transport
// packages register a Builder per iface.Type; the supervisor never knows how
// a TCP socket or serial line is opened, only that Builder returns an
// Endpoint with Init/Read/Write/Cleanup (and DupInfo, for direction=both)
// populated. Mirrors kplex.c's per-type "ifsetup" function pointer table. The
// metrics handle is threaded through so each adapter can report bytes moved
// without the supervisor knowing anything about its transport.
type Builder func(ifc config.Interface, global config.Global, metrics transport.Metrics) (*iface.Endpoint, error)

// Registry maps interface types to the Builder that knows how to construct
// them.
type Registry map[iface.Type]Builder

// Metrics is the union of every core package's nil-safe metrics interface,
// satisfied by *metric.Metrics. The supervisor forwards it to the router,
// engine, queues, and transport builders it constructs; it never records
// metrics itself.
type Metrics interface {
	router.Metrics
	engine.Metrics
	squeue.Metrics
	transport.Metrics

	RecordEndpointStatus(endpoint, direction string, state int)
	RecordEndpointError(endpoint, errType string)
}

// Supervisor drives one multiplexer instance from configuration to shutdown.
type Supervisor struct {
	cfg      *config.Config
	registry Registry
	metrics  Metrics
	logger   *slog.Logger

	router  *router.Router
	central *squeue.Queue
	engine  *engine.Engine
}

// New prepares a Supervisor for cfg using registry to construct endpoints. A
// nil logger falls back to slog.Default().
func New(cfg *config.Config, registry Registry, metrics Metrics, logger *slog.Logger) *Supervisor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Supervisor{cfg: cfg, registry: registry, metrics: metrics, logger: logger}
}

// Run brings up the central queue, router, engine, and every configured
// endpoint, blocks until ctx is cancelled or every endpoint has torn itself
// down, then returns. It combines main()'s bring-up sequence and reaper loop
// into a single call driven by an errgroup instead of raw pthreads.
func (s *Supervisor) Run(ctx context.Context) error {
	central, err := squeue.New("central", s.cfg.Global.QueueSize)
	if err != nil {
		return errors.WrapFatal(err, "supervisor", "Run", "failed to create central queue")
	}
	central.WithMetrics(s.metrics)
	s.central = central
	s.router = router.New(s.metrics, s.logger)
	s.engine = engine.New(s.central, s.router, s.metrics, s.logger)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.engine.Run(gctx)
		return nil
	})

	endpoints, err := s.buildEndpoints()
	if err != nil {
		return err
	}

	for _, ep := range endpoints {
		ep := ep
		s.router.LinkInitialized(ep)
		g.Go(func() error {
			return s.runEndpoint(gctx, ep)
		})
	}

	s.router.WaitUntilAllInitialized()
	s.logger.Info("supervisor: bring-up complete", "endpoints", len(endpoints))

	g.Go(func() error {
		s.reap(gctx)
		return nil
	})

	return g.Wait()
}

// buildEndpoints constructs one Endpoint per configured interface, splitting
// direction=both interfaces into a paired IN/OUT half exactly as ifdup does,
// each half sharing the same Info via DupInfo.
func (s *Supervisor) buildEndpoints() ([]*iface.Endpoint, error) {
	var out []*iface.Endpoint

	for _, ifc := range s.cfg.Interfaces {
		build, ok := s.registry[ifc.Type]
		if !ok {
			return nil, errors.WrapFatal(
				fmt.Errorf("no builder registered for interface type %q", ifc.Type),
				"supervisor", "buildEndpoints", "unsupported interface type")
		}

		ep, err := build(ifc, s.cfg.Global, s.metrics)
		if err != nil {
			return nil, errors.WrapFatal(err, "supervisor", "buildEndpoints",
				fmt.Sprintf("failed to construct %s interface", ifc.Type))
		}

		if ep.Direction != iface.BOTH {
			out = append(out, ep)
			continue
		}

		in, outEp := s.split(ep)
		out = append(out, in, outEp)
	}

	return out, nil
}

// split turns a direction=both endpoint into two paired halves, one IN and
// one OUT, matching ifdup's duplication of a single interface into its
// read/write pair.
func (s *Supervisor) split(ep *iface.Endpoint) (in, out *iface.Endpoint) {
	in = iface.New(ep.Name+"-in", ep.Type, iface.IN)
	in.Init, in.Read, in.Cleanup = ep.Init, ep.Read, ep.Cleanup
	in.Info = ep.Info

	out = iface.New(ep.Name+"-out", ep.Type, iface.OUT)
	if ep.DupInfo != nil {
		out.Info = ep.DupInfo(ep.Info)
	} else {
		out.Info = ep.Info
	}
	out.Write, out.Cleanup = ep.Write, ep.Cleanup

	in.Pair, out.Pair = out, in
	return in, out
}

// runEndpoint carries one endpoint through its whole lifecycle: Init, then
// promotion onto the router's active lists, then its Read or Write loop,
// then unlink. A failed Init demotes the endpoint's direction to NONE so
// Promote removes it from the initialized list without ever activating it,
// matching iface_thread_exit's early-exit path.
func (s *Supervisor) runEndpoint(ctx context.Context, ep *iface.Endpoint) error {
	ep.State = iface.StateInitializing

	if ep.Direction == iface.IN || ep.Direction == iface.BOTH {
		ep.Q = s.central
	} else {
		q, err := squeue.New(ep.Name, s.cfg.Global.QueueSize)
		if err != nil {
			return errors.WrapFatal(err, "supervisor", "runEndpoint", "failed to create output queue")
		}
		q.WithMetrics(s.metrics)
		ep.Q = q
	}

	s.recordStatus(ep)

	if ep.Init != nil {
		if err := ep.Init(ctx, ep); err != nil {
			s.logger.Error("endpoint initialization failed", "endpoint", ep.Name, "error", err)
			s.recordError(ep, "init")
			ep.Direction = iface.NONE
		}
	}

	if skip := s.router.Promote(ep); skip {
		return nil
	}
	s.recordStatus(ep)
	defer func() {
		ep.State = iface.StateDestroyed
		s.recordStatus(ep)
	}()
	defer s.router.Unlink(ep)

	switch ep.Direction {
	case iface.IN:
		if ep.Read != nil {
			ep.Read(ctx, ep)
		}
	case iface.OUT:
		if ep.Write != nil {
			ep.Write(ctx, ep)
		}
	}

	return nil
}

func (s *Supervisor) recordStatus(ep *iface.Endpoint) {
	if s.metrics == nil {
		return
	}
	s.metrics.RecordEndpointStatus(ep.Name, ep.Direction.String(), int(ep.State))
}

func (s *Supervisor) recordError(ep *iface.Endpoint, errType string) {
	if s.metrics == nil {
		return
	}
	s.metrics.RecordEndpointError(ep.Name, errType)
}

// reap runs the reaper loop: it waits for endpoints to die, drains them, and
// once the process is shutting down or every output has gone, asks every
// remaining input to stop, matching main()'s reaper loop and its
// pthread_kill(SIGUSR1) broadcast to all inputs.
func (s *Supervisor) reap(ctx context.Context) {
	timeToDie := func() bool {
		select {
		case <-ctx.Done():
			return true
		default:
			return false
		}
	}

	for s.router.Active() {
		s.router.WaitForDead(timeToDie)

		for _, ep := range s.router.ReapAll() {
			s.logger.Info("endpoint reaped", "endpoint", ep.Name, "type", ep.Type.String())
		}

		if timeToDie() || !s.router.HasOutputs() {
			s.router.RequestStopAllInputs()
		}
	}

	s.logger.Info("supervisor: all endpoints reaped, shutting down")
}
