package main

import (
	"github.com/kplex-io/kplexmux/iface"
	"github.com/kplex-io/kplexmux/supervisor"
	"github.com/kplex-io/kplexmux/transport/file"
	"github.com/kplex-io/kplexmux/transport/nats"
	"github.com/kplex-io/kplexmux/transport/pty"
	"github.com/kplex-io/kplexmux/transport/seatalk"
	"github.com/kplex-io/kplexmux/transport/serial"
	"github.com/kplex-io/kplexmux/transport/tcp"
	"github.com/kplex-io/kplexmux/transport/udp"
	"github.com/kplex-io/kplexmux/transport/websocket"
)

// buildRegistry wires every transport package's Build function to the
// iface.Type it constructs, the Go equivalent of kplex.c's ifsetup function
// pointer table indexed by interface type.
func buildRegistry() supervisor.Registry {
	return supervisor.Registry{
		iface.FileIO:    file.Build,
		iface.Serial:    serial.Build,
		iface.TCP:       tcp.Build,
		iface.Broadcast: udp.Build,
		iface.PTY:       pty.Build,
		iface.SeaTalk:   seatalk.Build,
		iface.NATS:      nats.Build,
		iface.WebSocket: websocket.Build,
	}
}
