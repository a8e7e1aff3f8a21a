// Package nats implements a bidirectional endpoint bridging NMEA sentences
// over NATS pub/sub, wrapping the teacher's natsclient.Client. direction=in
// subscribes "subject" and pushes every received payload onto the endpoint's
// queue; direction=out drains the queue and publishes each sentence.
package nats

import (
	"context"

	"github.com/kplex-io/kplexmux/config"
	"github.com/kplex-io/kplexmux/iface"
	"github.com/kplex-io/kplexmux/natsclient"
	"github.com/kplex-io/kplexmux/senblk"
	"github.com/kplex-io/kplexmux/transport"
)

type info struct {
	url     string
	subject string
	client  *natsclient.Client
	metrics transport.Metrics
}

// Build constructs a NATS endpoint. "url" is the NATS server URL, "subject"
// the subject to subscribe to (direction=in) or publish on (direction=out).
func Build(ifc config.Interface, global config.Global, metrics transport.Metrics) (*iface.Endpoint, error) {
	url, err := transport.RequireOpt(ifc.Options, "url")
	if err != nil {
		return nil, err
	}
	subject, err := transport.RequireOpt(ifc.Options, "subject")
	if err != nil {
		return nil, err
	}

	ep := iface.New(ifc.Name, ifc.Type, ifc.Direction)
	ep.Info = &info{url: url, subject: subject, metrics: metrics}
	ep.Init = initNATS
	ep.Read = readNATS
	ep.Write = writeNATS
	ep.Cleanup = cleanupNATS
	return ep, nil
}

func initNATS(ctx context.Context, ep *iface.Endpoint) error {
	in := ep.Info.(*info)
	client, err := natsclient.NewClient(in.url)
	if err != nil {
		return err
	}
	if err := client.Connect(ctx); err != nil {
		return err
	}
	in.client = client
	return nil
}

func readNATS(ctx context.Context, ep *iface.Endpoint) {
	in := ep.Info.(*info)

	err := in.client.Subscribe(ctx, in.subject, func(_ context.Context, data []byte) {
		if len(data) == 0 || len(data) > senblk.SenMax {
			return
		}
		u := &senblk.SenBlk{Src: ep}
		u.Len = copy(u.Data[:], data)
		ep.Q.Push(u)
		transport.RecordBytes(in.metrics, ep.Name, "in", len(data))
	})
	if err != nil {
		return
	}

	select {
	case <-ctx.Done():
	case <-ep.Done:
	}
}

func writeNATS(ctx context.Context, ep *iface.Endpoint) {
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
		n := len(u.Bytes())
		err := in.client.Publish(ctx, in.subject, append([]byte{}, u.Bytes()...))
		ep.Q.Free(u)
		if err != nil {
			return
		}
		transport.RecordBytes(in.metrics, ep.Name, "out", n)
	}
}

func cleanupNATS(ep *iface.Endpoint) {
	in, ok := ep.Info.(*info)
	if ok && in.client != nil {
		in.client.Close(context.Background())
	}
}
