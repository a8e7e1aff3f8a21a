// Package iface defines the endpoint abstraction: direction, lifecycle
// state, and the adapter contract every transport package implements. It is
// the Go rendering of kplex.c's iface_t.
package iface

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/kplex-io/kplexmux/squeue"
)

// Direction describes which way sentences flow through an endpoint.
type Direction int

const (
	// NONE marks an endpoint that has been told to stop: its goroutine
	// should exit at the next opportunity.
	NONE Direction = iota
	IN
	OUT
	BOTH
)

func (d Direction) String() string {
	switch d {
	case IN:
		return "in"
	case OUT:
		return "out"
	case BOTH:
		return "both"
	default:
		return "none"
	}
}

// Type identifies the transport an endpoint is backed by.
type Type int

const (
	UnknownType Type = iota
	Global
	FileIO
	Serial
	TCP
	Broadcast
	PTY
	SeaTalk
	NATS
	WebSocket
)

func (t Type) String() string {
	switch t {
	case Global:
		return "global"
	case FileIO:
		return "file"
	case Serial:
		return "serial"
	case TCP:
		return "tcp"
	case Broadcast:
		return "broadcast"
	case PTY:
		return "pty"
	case SeaTalk:
		return "seatalk"
	case NATS:
		return "nats"
	case WebSocket:
		return "websocket"
	default:
		return "unknown"
	}
}

// State is the endpoint lifecycle state machine: NEW -> INITIALIZING ->
// ACTIVE -> DYING -> DESTROYED.
type State int

const (
	StateNew State = iota
	StateInitializing
	StateActive
	StateDying
	StateDestroyed
)

func (s State) String() string {
	switch s {
	case StateNew:
		return "new"
	case StateInitializing:
		return "initializing"
	case StateActive:
		return "active"
	case StateDying:
		return "dying"
	case StateDestroyed:
		return "destroyed"
	default:
		return "unknown"
	}
}

// InitFunc opens the underlying transport (a socket, a file, a serial line)
// and populates ep.Info. It runs once, before the endpoint is promoted onto
// the router's active lists; returning an error leaves the endpoint
// unpromoted and its goroutine exits without ever reading or writing.
type InitFunc func(ctx context.Context, ep *Endpoint) error

// ReadFunc is an input adapter's read loop: it pushes SenBlks onto ep.Q until
// ctx is cancelled or the underlying transport errors out.
type ReadFunc func(ctx context.Context, ep *Endpoint)

// WriteFunc is an output adapter's write loop: it drains ep.Q and writes each
// sentence to the underlying transport until ctx is cancelled or ep.Q closes.
type WriteFunc func(ctx context.Context, ep *Endpoint)

// CleanupFunc releases any transport-specific resources (file handles,
// sockets, serial lines) held in ep.Info. It runs exactly once, from the
// endpoint's deferred unlink.
type CleanupFunc func(ep *Endpoint)

// DupInfoFunc duplicates a BOTH endpoint's transport-specific Info for its
// split-off IN/OUT half, so both halves of a bidirectional interface (e.g. a
// serial port read by one goroutine and written by another) hold their own
// copy of whatever state Info carries rather than aliasing it. Ported from
// kplex.c's ifdup, which duplicates the iface_t and its info struct when
// splitting a direction=both interface into its paired IN and OUT endpoints.
type DupInfoFunc func(info any) any

// Endpoint is a single input or output in the multiplexer topology. Its
// lifecycle is owned by the router; transport packages only populate the
// fields below and implement Read/Write/Cleanup.
type Endpoint struct {
	ID   uuid.UUID
	Name string

	Type      Type
	Direction Direction
	State     State

	Init    InitFunc
	Read    ReadFunc
	Write   WriteFunc
	Cleanup CleanupFunc
	DupInfo DupInfoFunc

	// Info holds transport-specific state (an open file, socket, serial
	// port). It is opaque to the core.
	Info any

	// Q is the endpoint's private queue: the central queue for inputs, a
	// per-output queue fed by the engine for outputs.
	Q *squeue.Queue

	// Pair is a weak reference to this endpoint's other half when it was
	// produced by splitting a BOTH interface (e.g. a serial port used for
	// both talk and listen). Only the router nulls this field, under its
	// own lock.
	Pair *Endpoint

	// Done, when closed, asks this endpoint's goroutine to exit. It is the
	// substitute for kplex's thread-directed SIGUSR1.
	Done chan struct{}

	stopOnce sync.Once
	next     *Endpoint
}

// New creates an endpoint in StateNew with a freshly allocated instance ID.
func New(name string, typ Type, direction Direction) *Endpoint {
	return &Endpoint{
		ID:        uuid.New(),
		Name:      name,
		Type:      typ,
		Direction: direction,
		State:     StateNew,
		Done:      make(chan struct{}),
	}
}

// RequestStop closes Done exactly once, signalling the endpoint's goroutine
// to exit at its next cancellation check. Safe to call concurrently.
func (e *Endpoint) RequestStop() {
	e.stopOnce.Do(func() { close(e.Done) })
}

// Next returns the intrusive list successor used by router's iolists.
func (e *Endpoint) Next() *Endpoint {
	return e.next
}

// SetNext sets the intrusive list successor.
func (e *Endpoint) SetNext(next *Endpoint) {
	e.next = next
}
