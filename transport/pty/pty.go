// Package pty implements a pseudo-terminal transport using creack/pty: a
// virtual serial device other processes (e.g. chartplotter software
// expecting a serial GPS) can open as if it were a real port. Grounded on
// original_source/kplex.c's PTY interface type, which behaves identically to
// a serial endpoint except the device node is allocated rather than
// pre-existing.
package pty

import (
	"context"
	"os"
	"sync"

	"github.com/creack/pty"

	"github.com/kplex-io/kplexmux/config"
	"github.com/kplex-io/kplexmux/iface"
	"github.com/kplex-io/kplexmux/transport"
)

// handle is shared between an IN/OUT endpoint pair split from the same
// direction=both pty interface, so whichever half's goroutine runs first
// allocates the pty for both.
type handle struct {
	mu     sync.Mutex
	master *os.File
	slave  *os.File
}

func (h *handle) open(link string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.master != nil {
		return nil
	}
	master, slave, err := pty.Open()
	if err != nil {
		return err
	}
	h.master, h.slave = master, slave

	if link != "" {
		os.Remove(link)
		if err := os.Symlink(slave.Name(), link); err != nil {
			return err
		}
	}
	return nil
}

type info struct {
	h        *handle
	link     string // optional symlink path published for other processes to open
	original bool
	metrics  transport.Metrics
}

// Build constructs a pty endpoint. The optional "link" option names a
// symlink path to create pointing at the allocated slave device, so
// consuming software can use a stable path instead of the kernel-assigned
// /dev/pts/N.
func Build(ifc config.Interface, global config.Global, metrics transport.Metrics) (*iface.Endpoint, error) {
	ep := iface.New(ifc.Name, ifc.Type, ifc.Direction)
	ep.Info = &info{h: &handle{}, link: transport.StringOpt(ifc.Options, "link", ""), original: true, metrics: metrics}
	ep.Init = initPTY
	ep.Read = readPTY
	ep.Write = writePTY
	ep.Cleanup = cleanupPTY
	ep.DupInfo = func(i any) any {
		orig := i.(*info)
		return &info{h: orig.h, link: orig.link, original: false, metrics: orig.metrics}
	}
	return ep, nil
}

func initPTY(ctx context.Context, ep *iface.Endpoint) error {
	in := ep.Info.(*info)
	return in.h.open(in.link)
}

func readPTY(ctx context.Context, ep *iface.Endpoint) {
	in := ep.Info.(*info)
	go func() {
		select {
		case <-ctx.Done():
		case <-ep.Done:
		}
		if in.original {
			in.h.master.Close()
		}
	}()
	_ = transport.ScanLines(ctx, in.h.master, ep, in.metrics)
}

func writePTY(ctx context.Context, ep *iface.Endpoint) {
	in := ep.Info.(*info)
	_ = transport.WriteLoop(ctx, in.h.master, ep, in.metrics)
}

func cleanupPTY(ep *iface.Endpoint) {
	in, ok := ep.Info.(*info)
	if !ok || !in.original {
		return
	}
	if in.h.slave != nil {
		in.h.slave.Close()
	}
	if in.h.master != nil {
		in.h.master.Close()
	}
	if in.link != "" {
		os.Remove(in.link)
	}
}
