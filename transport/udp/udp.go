// Package udp implements a UDP transport. Unlike the stream transports,
// each datagram is treated as exactly one sentence rather than being
// CRLF-scanned, since UDP already preserves message boundaries. Grounded on
// input/udp/udp.go's listener and rate-limiting shape, ported from its
// NATS-publish batch loop to the read/write-loop adapter contract. The
// socket read and the push onto the router's queue are decoupled by a
// pkg/buffer circular buffer so a burst of datagrams doesn't stall on a slow
// downstream consumer and cause the kernel to drop them instead.
package udp

import (
	"context"
	"net"
	"time"

	"golang.org/x/time/rate"

	"github.com/kplex-io/kplexmux/config"
	"github.com/kplex-io/kplexmux/iface"
	"github.com/kplex-io/kplexmux/pkg/buffer"
	"github.com/kplex-io/kplexmux/senblk"
	"github.com/kplex-io/kplexmux/transport"
)

const (
	defaultRateLimit = 2000 // datagrams/sec
	batchCapacity    = 256
	drainInterval    = 5 * time.Millisecond
)

type info struct {
	address string
	out     net.Conn       // set when Direction == OUT, via net.Dial
	in      net.PacketConn // set otherwise, via net.ListenPacket
	limiter *rate.Limiter
	batch   buffer.Buffer[[]byte] // absorbs read bursts ahead of ep.Q, input side only
	metrics transport.Metrics
}

// Build constructs a UDP endpoint. direction=in/both binds "address" and
// receives; direction=out sends to "address".
func Build(ifc config.Interface, global config.Global, metrics transport.Metrics) (*iface.Endpoint, error) {
	addr, err := transport.RequireOpt(ifc.Options, "address")
	if err != nil {
		return nil, err
	}
	limit, err := transport.IntOpt(ifc.Options, "ratelimit", defaultRateLimit)
	if err != nil {
		return nil, err
	}

	ep := iface.New(ifc.Name, ifc.Type, ifc.Direction)
	ep.Info = &info{address: addr, limiter: rate.NewLimiter(rate.Limit(limit), limit), metrics: metrics}
	ep.Init = initUDP
	ep.Read = readUDP
	ep.Write = writeUDP
	ep.Cleanup = cleanupUDP
	ep.DupInfo = func(i any) any {
		orig := i.(*info)
		return &info{address: orig.address, limiter: rate.NewLimiter(rate.Limit(limit), limit), metrics: orig.metrics}
	}
	return ep, nil
}

func initUDP(ctx context.Context, ep *iface.Endpoint) error {
	in := ep.Info.(*info)

	if ep.Direction == iface.OUT {
		conn, err := net.Dial("udp", in.address)
		if err != nil {
			return err
		}
		in.out = conn
		return nil
	}

	conn, err := net.ListenPacket("udp", in.address)
	if err != nil {
		return err
	}
	in.in = conn

	batch, err := buffer.NewCircularBuffer[[]byte](batchCapacity, buffer.WithOverflowPolicy[[]byte](buffer.DropOldest))
	if err != nil {
		conn.Close()
		return err
	}
	in.batch = batch
	return nil
}

// readUDP runs two loops: pump reads datagrams off the socket as fast as the
// rate limiter allows and writes them into in.batch, absorbing bursts;
// drain periodically flushes the batch onto ep.Q. Decoupling the two means a
// momentarily slow router never blocks the socket read and causes the
// kernel to drop datagrams that already arrived.
func readUDP(ctx context.Context, ep *iface.Endpoint) {
	in := ep.Info.(*info)
	go func() {
		select {
		case <-ctx.Done():
		case <-ep.Done:
		}
		in.in.Close()
	}()

	go pumpUDP(ctx, ep.Name, in)
	drainUDP(ctx, ep, in)
}

func pumpUDP(ctx context.Context, name string, in *info) {
	buf := make([]byte, senblk.SenMax)
	for {
		if err := in.limiter.Wait(ctx); err != nil {
			return
		}
		n, _, err := in.in.ReadFrom(buf)
		if err != nil {
			return
		}
		if n == 0 || n > senblk.SenMax {
			continue
		}
		payload := make([]byte, n)
		copy(payload, buf[:n])
		in.batch.Write(payload)
		transport.RecordBytes(in.metrics, name, "in", n)
	}
}

func drainUDP(ctx context.Context, ep *iface.Endpoint, in *info) {
	ticker := time.NewTicker(drainInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ep.Done:
			return
		case <-ticker.C:
			for _, payload := range in.batch.ReadBatch(batchCapacity) {
				u := &senblk.SenBlk{Src: ep}
				u.Len = copy(u.Data[:], payload)
				ep.Q.Push(u)
			}
		}
	}
}

func writeUDP(ctx context.Context, ep *iface.Endpoint) {
	in := ep.Info.(*info)
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}
		u, ok := ep.Q.Next()
		if !ok {
			return
		}
		n, err := in.out.Write(u.Bytes())
		ep.Q.Free(u)
		if err != nil {
			return
		}
		transport.RecordBytes(in.metrics, ep.Name, "out", n)
	}
}

func cleanupUDP(ep *iface.Endpoint) {
	in, ok := ep.Info.(*info)
	if !ok {
		return
	}
	if in.out != nil {
		in.out.Close()
	}
	if in.in != nil {
		in.in.Close()
	}
	if in.batch != nil {
		in.batch.Close()
	}
}
