// Package squeue implements the bounded sentence queue every endpoint reads
// from or writes to. It is a direct port of kplex.c's ioqueue_t: a
// fixed-size slab of senblk.SenBlk, a free list, and a FIFO built from
// intrusive next pointers, guarded by a mutex/condition-variable pair in the
// style of the teacher's pkg/buffer.circularBuffer.
package squeue

import (
	"fmt"
	"sync"

	"github.com/kplex-io/kplexmux/errors"
	"github.com/kplex-io/kplexmux/senblk"
)

func errInvalidSize(size int) error {
	return fmt.Errorf("invalid queue size %d", size)
}

// Metrics is the nil-safe observability hook a Queue reports into. A nil
// Metrics disables all recording, matching pkg/buffer's optional-metrics
// pattern.
type Metrics interface {
	RecordQueueDepth(queue string, depth int)
	RecordQueueDropped(queue string)
}

// Queue is a bounded FIFO of senblk.SenBlk with overrun semantics: pushing
// onto a full queue drops the oldest queued sentence rather than blocking or
// rejecting the new one. Queue never blocks on Push; Next blocks until data
// is available or the queue is closed.
type Queue struct {
	mu   sync.Mutex
	cond *sync.Cond

	name string

	base []senblk.SenBlk
	free *senblk.SenBlk
	head *senblk.SenBlk
	tail *senblk.SenBlk

	active  bool
	metrics Metrics

	size   int
	queued int
}

// New creates a Queue with the given number of slots. size must be at least
// 2: one slot for data in flight and one spare, matching kplex's minimum
// sensible queue depth.
func New(name string, size int) (*Queue, error) {
	if size < 2 {
		return nil, errors.WrapInvalid(
			errInvalidSize(size), "squeue", "New", "queue size must be at least 2")
	}

	q := &Queue{
		name:   name,
		base:   make([]senblk.SenBlk, size),
		active: true,
		size:   size,
	}
	q.cond = sync.NewCond(&q.mu)

	for i := 0; i < size-1; i++ {
		q.base[i].SetNext(&q.base[i+1])
	}
	q.free = &q.base[0]

	return q, nil
}

// WithMetrics attaches a metrics sink to an existing queue. Passing nil
// disables recording.
func (q *Queue) WithMetrics(m Metrics) *Queue {
	q.mu.Lock()
	q.metrics = m
	q.mu.Unlock()
	return q
}

// Push enqueues a copy of u, or closes the queue if u is nil. Push never
// blocks: if the free list is exhausted it steals and overwrites the oldest
// queued sentence.
func (q *Queue) Push(u *senblk.SenBlk) {
	q.mu.Lock()

	if u == nil {
		q.active = false
		q.cond.Broadcast()
		q.mu.Unlock()
		return
	}

	var slot *senblk.SenBlk
	if q.free != nil {
		slot = q.free
		q.free = slot.Next()
	} else {
		slot = q.head
		q.head = slot.Next()
		if q.head == nil {
			q.tail = nil
		}
		q.queued--
		if q.metrics != nil {
			q.metrics.RecordQueueDropped(q.name)
		}
	}

	senblk.Copy(slot, u)
	slot.SetNext(nil)

	if q.tail != nil {
		q.tail.SetNext(slot)
	}
	q.tail = slot
	if q.head == nil {
		q.head = slot
	}
	q.queued++

	if q.metrics != nil {
		q.metrics.RecordQueueDepth(q.name, q.queued)
	}

	q.cond.Broadcast()
	q.mu.Unlock()
}

// Next blocks until a sentence is available or the queue has been closed and
// drained, returning (nil, false) in the latter case.
func (q *Queue) Next() (*senblk.SenBlk, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for q.head == nil {
		if !q.active {
			return nil, false
		}
		q.cond.Wait()
	}

	u := q.head
	q.head = u.Next()
	if q.head == nil {
		q.tail = nil
	}
	q.queued--
	if q.metrics != nil {
		q.metrics.RecordQueueDepth(q.name, q.queued)
	}

	u.SetNext(nil)
	return u, true
}

// Free returns u to the queue's free list.
func (q *Queue) Free(u *senblk.SenBlk) {
	q.mu.Lock()
	u.SetNext(q.free)
	q.free = u
	q.mu.Unlock()
}

// Active reports whether the queue is still accepting pushes.
func (q *Queue) Active() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.active
}

// Name returns the queue's label, used in metrics and logs.
func (q *Queue) Name() string {
	return q.name
}
