// Package tcp implements a TCP transport: direction=in/both listens and
// accepts a single client connection, direction=out dials a remote host.
// A golang.org/x/time/rate limiter guards input read loops against a
// misbehaving peer flooding the central queue, grounded on
// processor/graph/processor.go's queryLimiter usage.
package tcp

import (
	"context"
	"net"

	"golang.org/x/time/rate"

	"github.com/kplex-io/kplexmux/config"
	"github.com/kplex-io/kplexmux/iface"
	"github.com/kplex-io/kplexmux/transport"
)

const defaultRateLimit = 1000 // reads/sec

type info struct {
	address string
	server  bool

	listener net.Listener
	conn     net.Conn

	limiter *rate.Limiter
	metrics transport.Metrics
}

// Build constructs a TCP endpoint. The "address" option is host:port; the
// "mode" option selects "server" (default for direction=in) or "client"
// (default for direction=out).
func Build(ifc config.Interface, global config.Global, metrics transport.Metrics) (*iface.Endpoint, error) {
	addr, err := transport.RequireOpt(ifc.Options, "address")
	if err != nil {
		return nil, err
	}

	limit, err := transport.IntOpt(ifc.Options, "ratelimit", defaultRateLimit)
	if err != nil {
		return nil, err
	}

	defaultMode := "server"
	if ifc.Direction == iface.OUT {
		defaultMode = "client"
	}
	server := transport.StringOpt(ifc.Options, "mode", defaultMode) == "server"

	ep := iface.New(ifc.Name, ifc.Type, ifc.Direction)
	ep.Info = &info{
		address: addr,
		server:  server,
		limiter: rate.NewLimiter(rate.Limit(limit), limit),
		metrics: metrics,
	}
	ep.Init = initTCP
	ep.Read = readTCP
	ep.Write = writeTCP
	ep.Cleanup = cleanupTCP
	ep.DupInfo = func(i any) any {
		orig := i.(*info)
		return &info{address: orig.address, server: orig.server,
			limiter: rate.NewLimiter(rate.Limit(limit), limit), metrics: orig.metrics}
	}
	return ep, nil
}

func initTCP(ctx context.Context, ep *iface.Endpoint) error {
	in := ep.Info.(*info)

	if !in.server {
		conn, err := net.Dial("tcp", in.address)
		if err != nil {
			return err
		}
		in.conn = conn
		return nil
	}

	ln, err := net.Listen("tcp", in.address)
	if err != nil {
		return err
	}
	in.listener = ln

	conn, err := ln.Accept()
	if err != nil {
		ln.Close()
		return err
	}
	in.conn = conn
	return nil
}

func readTCP(ctx context.Context, ep *iface.Endpoint) {
	in := ep.Info.(*info)
	go func() {
		select {
		case <-ctx.Done():
		case <-ep.Done:
		}
		in.conn.Close()
	}()
	_ = transport.ScanLines(ctx, rateLimitedReader{in.conn, in.limiter, ctx}, ep, in.metrics)
}

func writeTCP(ctx context.Context, ep *iface.Endpoint) {
	in := ep.Info.(*info)
	_ = transport.WriteLoop(ctx, in.conn, ep, in.metrics)
}

func cleanupTCP(ep *iface.Endpoint) {
	in, ok := ep.Info.(*info)
	if !ok {
		return
	}
	if in.conn != nil {
		in.conn.Close()
	}
	if in.listener != nil {
		in.listener.Close()
	}
}

// rateLimitedReader wraps an io.Reader, blocking on limiter before every
// read to bound the rate of reads from an untrusted peer.
type rateLimitedReader struct {
	r       net.Conn
	limiter *rate.Limiter
	ctx     context.Context
}

func (r rateLimitedReader) Read(p []byte) (int, error) {
	if err := r.limiter.Wait(r.ctx); err != nil {
		return 0, err
	}
	return r.r.Read(p)
}
