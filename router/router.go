// Package router holds the multiplexer's endpoint registry: the
// "initialized", "inputs", "outputs", and "dead" lists kplex.c calls
// iolists, together with the mutex and condition variables that coordinate
// bring-up and teardown across the supervisor, engine, and endpoint
// goroutines.
package router

import (
	"log/slog"
	"sync"

	"github.com/kplex-io/kplexmux/iface"
)

// Metrics is the nil-safe observability hook a Router reports active
// endpoint counts into.
type Metrics interface {
	RecordActiveEndpoints(direction string, count int)
}

// Router tracks every endpoint through its lifecycle: linked while its
// adapter initializes, promoted to inputs/outputs once active, and finally
// moved to dead once unlinked, awaiting reap by the supervisor.
type Router struct {
	mu sync.Mutex

	initialized *iface.Endpoint
	inputs      *iface.Endpoint
	outputs     *iface.Endpoint
	dead        *iface.Endpoint

	initCond *sync.Cond
	deadCond *sync.Cond

	metrics Metrics
	logger  *slog.Logger
}

// New creates an empty Router. A nil logger falls back to slog.Default(),
// matching the teacher's dependency-injection convention.
func New(metrics Metrics, logger *slog.Logger) *Router {
	if logger == nil {
		logger = slog.Default()
	}
	r := &Router{metrics: metrics, logger: logger}
	r.initCond = sync.NewCond(&r.mu)
	r.deadCond = sync.NewCond(&r.mu)
	return r
}

// LinkInitialized adds ep to the initialized list while its adapter's
// Init runs. Mirrors link_to_initialized.
func (r *Router) LinkInitialized(ep *iface.Endpoint) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.initialized == nil {
		r.initialized = ep
	} else {
		tail := r.initialized
		for tail.Next() != nil {
			tail = tail.Next()
		}
		tail.SetNext(ep)
	}
	ep.SetNext(nil)
}

// Promote moves ep off the initialized list and onto inputs or outputs
// according to its direction, matching start_interface's list surgery. An
// endpoint whose Direction is NONE is promoted without being added to any
// list, and true is returned so the caller's goroutine can exit immediately.
//
// A direction=both interface never reaches Promote as a single endpoint:
// Supervisor.split always turns it into a paired IN endpoint and OUT
// endpoint first, each with its own iface.Endpoint (and so its own
// intrusive next pointer), exactly as ifdup does before start_interface
// ever runs. Endpoint has exactly one next pointer, so linking the same
// endpoint onto both lists would corrupt whichever list already had
// elements; Router relies on never being handed Direction==BOTH.
func (r *Router) Promote(ep *iface.Endpoint) (skip bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.unlinkFrom(&r.initialized, ep)

	if ep.Direction == iface.NONE {
		r.signalIfDrained()
		return true
	}

	ep.State = iface.StateActive

	switch ep.Direction {
	case iface.IN:
		r.pushFront(&r.inputs, ep)
	case iface.OUT:
		r.pushFront(&r.outputs, ep)
	}

	r.recordCounts()
	r.signalIfDrained()
	return false
}

func (r *Router) signalIfDrained() {
	if r.initialized == nil {
		r.initCond.Broadcast()
	}
}

// WaitUntilAllInitialized blocks until the initialized list is empty,
// matching main()'s "while (lists.initialized) cond_wait" bring-up barrier.
func (r *Router) WaitUntilAllInitialized() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for r.initialized != nil {
		r.initCond.Wait()
	}
}

// Unlink removes ep from whichever list it is active on, applies the
// teardown side effects (closing its queue when it was the last input,
// notifying and unpairing its weak partner), and moves it to the dead list
// for the supervisor's reaper to collect. Mirrors unlink_interface.
func (r *Router) Unlink(ep *iface.Endpoint) {
	r.mu.Lock()
	defer r.mu.Unlock()

	ep.State = iface.StateDying

	// See Promote: a direction=both interface is always split into a
	// separate IN and OUT endpoint before either reaches the router, so
	// ep.Direction here is always IN or OUT.
	switch ep.Direction {
	case iface.IN:
		r.unlinkFrom(&r.inputs, ep)
	case iface.OUT:
		r.unlinkFrom(&r.outputs, ep)
	}

	if ep.Direction != iface.OUT {
		// An input's queue is the shared central queue: only close it once
		// the last input is gone, exactly as kplex only deactivates it when
		// lists.inputs becomes empty.
		if r.inputs == nil && ep.Q != nil {
			ep.Q.Push(nil)
		}
	}

	if ep.Pair != nil {
		pair := ep.Pair
		ep.Pair = nil
		pair.Pair = nil
		if pair.Direction == iface.OUT {
			if pair.Q != nil {
				pair.Q.Push(nil)
			}
		} else {
			pair.Direction = iface.NONE
			pair.RequestStop()
		}
	}

	if ep.Cleanup != nil {
		ep.Cleanup(ep)
	}

	ep.SetNext(nil)
	if r.dead == nil {
		r.dead = ep
	} else {
		tail := r.dead
		for tail.Next() != nil {
			tail = tail.Next()
		}
		tail.SetNext(ep)
	}

	r.recordCounts()
	r.deadCond.Signal()

	r.logger.Debug("endpoint unlinked", "endpoint", ep.Name, "type", ep.Type.String())
}

// WaitForDead blocks until at least one endpoint is on the dead list, or
// until timeToDie reports true (a process-level shutdown is in progress),
// matching the reaper's "while (lists.dead == NULL && !timetodie)" wait.
func (r *Router) WaitForDead(timeToDie func() bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for r.dead == nil && !timeToDie() {
		r.deadCond.Wait()
	}
}

// ReapAll drains the dead list and returns its members for the supervisor to
// join/release.
func (r *Router) ReapAll() []*iface.Endpoint {
	r.mu.Lock()
	defer r.mu.Unlock()

	var reaped []*iface.Endpoint
	for ep := r.dead; ep != nil; ep = ep.Next() {
		reaped = append(reaped, ep)
	}
	r.dead = nil
	return reaped
}

// RequestStopAllInputs asks every current input's goroutine to exit,
// matching the reaper's pthread_kill(SIGUSR1) broadcast to all inputs when
// timetodie fires or the last output has gone.
func (r *Router) RequestStopAllInputs() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for ep := r.inputs; ep != nil; ep = ep.Next() {
		ep.RequestStop()
	}
}

// Active reports whether there is still at least one output, input, or
// unreaped dead endpoint, matching main()'s outer reaper-loop condition.
func (r *Router) Active() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.outputs != nil || r.inputs != nil || r.dead != nil
}

// HasOutputs reports whether any output is still linked, matching the
// reaper's "outputs==NULL" check that triggers tearing down every input once
// nothing remains to deliver sentences to.
func (r *Router) HasOutputs() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.outputs != nil
}

// WithOutputsLocked runs fn with the outputs list head, holding the
// router's lock for the duration. Intended for the engine's fan-out loop.
func (r *Router) WithOutputsLocked(fn func(outputs *iface.Endpoint)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fn(r.outputs)
}

// WithInputsLocked runs fn with the inputs list head, holding the router's
// lock for the duration. Intended for diagnostic snapshots.
func (r *Router) WithInputsLocked(fn func(inputs *iface.Endpoint)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fn(r.inputs)
}

func (r *Router) pushFront(list **iface.Endpoint, ep *iface.Endpoint) {
	ep.SetNext(*list)
	*list = ep
}

func (r *Router) unlinkFrom(list **iface.Endpoint, ep *iface.Endpoint) {
	if *list == ep {
		*list = ep.Next()
		return
	}
	for cur := *list; cur != nil; cur = cur.Next() {
		if cur.Next() == ep {
			cur.SetNext(ep.Next())
			return
		}
	}
}

func (r *Router) recordCounts() {
	if r.metrics == nil {
		return
	}
	r.metrics.RecordActiveEndpoints("in", countList(r.inputs))
	r.metrics.RecordActiveEndpoints("out", countList(r.outputs))
}

func countList(head *iface.Endpoint) int {
	n := 0
	for ep := head; ep != nil; ep = ep.Next() {
		n++
	}
	return n
}
