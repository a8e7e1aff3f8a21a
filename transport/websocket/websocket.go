// Package websocket implements an output-only endpoint that broadcasts
// sentences to every connected websocket client. Grounded on the teacher's
// output/websocket/websocket.go, ported from its NATS-subject broadcast loop
// to draining an endpoint's own queue, and from gorilla/websocket's upgrade
// handshake rather than the teacher's security/tlsutil-wrapped listener.
package websocket

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/kplex-io/kplexmux/config"
	"github.com/kplex-io/kplexmux/iface"
	"github.com/kplex-io/kplexmux/transport"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

type info struct {
	address string
	path    string

	server *http.Server

	mu      sync.Mutex
	clients map[*websocket.Conn]struct{}

	metrics transport.Metrics
}

// Build constructs a websocket output endpoint. "address" is the listen
// address (host:port), "path" the upgrade endpoint (default "/").
// Websocket only supports direction=out: there is no upstream consumer for
// a feed of client-sent frames in this protocol's use here.
func Build(ifc config.Interface, global config.Global, metrics transport.Metrics) (*iface.Endpoint, error) {
	if ifc.Direction != iface.OUT {
		return nil, fmt.Errorf("websocket output only supports direction=out")
	}
	addr, err := transport.RequireOpt(ifc.Options, "address")
	if err != nil {
		return nil, err
	}
	path := transport.StringOpt(ifc.Options, "path", "/")

	ep := iface.New(ifc.Name, ifc.Type, ifc.Direction)
	ep.Info = &info{address: addr, path: path, clients: map[*websocket.Conn]struct{}{}, metrics: metrics}
	ep.Init = initWS
	ep.Write = writeWS
	ep.Cleanup = cleanupWS
	return ep, nil
}

func initWS(ctx context.Context, ep *iface.Endpoint) error {
	in := ep.Info.(*info)

	mux := http.NewServeMux()
	mux.HandleFunc(in.path, func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		in.mu.Lock()
		in.clients[conn] = struct{}{}
		in.mu.Unlock()
	})

	srv := &http.Server{Addr: in.address, Handler: mux}
	in.server = srv

	ln, err := net.Listen("tcp", in.address)
	if err != nil {
		return err
	}
	go srv.Serve(ln)
	return nil
}

func writeWS(ctx context.Context, ep *iface.Endpoint) {
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
		broadcast(in, u.Bytes())
		ep.Q.Free(u)
		transport.RecordBytes(in.metrics, ep.Name, "out", n)
	}
}

func broadcast(in *info, payload []byte) {
	in.mu.Lock()
	defer in.mu.Unlock()
	for c := range in.clients {
		if err := c.WriteMessage(websocket.TextMessage, payload); err != nil {
			c.Close()
			delete(in.clients, c)
		}
	}
}

func cleanupWS(ep *iface.Endpoint) {
	in, ok := ep.Info.(*info)
	if !ok {
		return
	}
	in.mu.Lock()
	for c := range in.clients {
		c.Close()
	}
	in.mu.Unlock()
	if in.server != nil {
		in.server.Close()
	}
}
