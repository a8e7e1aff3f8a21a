// Package serial implements a serial-port transport using go.bug.st/serial.
// direction=both opens the port once and splits into a paired IN/OUT
// endpoint pair sharing the same underlying handle; only the original
// (non-duplicated) side closes the shared port on cleanup. The port's
// original mode is not restored.
package serial

import (
	"context"
	"sync"

	"go.bug.st/serial"

	"github.com/kplex-io/kplexmux/config"
	"github.com/kplex-io/kplexmux/iface"
	"github.com/kplex-io/kplexmux/transport"
)

const defaultBaud = 4800

// handle is shared between an IN/OUT endpoint pair split from the same
// direction=both serial interface, so whichever half's goroutine runs first
// opens the port for both.
type handle struct {
	mu   sync.Mutex
	port serial.Port
}

func (h *handle) open(device string, baud int) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.port != nil {
		return nil
	}
	p, err := serial.Open(device, &serial.Mode{BaudRate: baud})
	if err != nil {
		return err
	}
	h.port = p
	return nil
}

type info struct {
	device string
	baud   int

	h        *handle
	original bool // false for the DupInfo-created paired half
	metrics  transport.Metrics
}

// Build constructs a serial endpoint. "device" names the serial device
// (e.g. /dev/ttyUSB0); "baud" defaults to 4800, matching NMEA-0183's
// conventional speed.
func Build(ifc config.Interface, global config.Global, metrics transport.Metrics) (*iface.Endpoint, error) {
	device, err := transport.RequireOpt(ifc.Options, "device")
	if err != nil {
		return nil, err
	}
	baud, err := transport.IntOpt(ifc.Options, "baud", defaultBaud)
	if err != nil {
		return nil, err
	}

	ep := iface.New(ifc.Name, ifc.Type, ifc.Direction)
	ep.Info = &info{device: device, baud: baud, h: &handle{}, original: true, metrics: metrics}
	ep.Init = initSerial
	ep.Read = readSerial
	ep.Write = writeSerial
	ep.Cleanup = cleanupSerial
	ep.DupInfo = func(i any) any {
		orig := i.(*info)
		return &info{device: orig.device, baud: orig.baud, h: orig.h, original: false, metrics: orig.metrics}
	}
	return ep, nil
}

func initSerial(ctx context.Context, ep *iface.Endpoint) error {
	in := ep.Info.(*info)
	return in.h.open(in.device, in.baud)
}

func readSerial(ctx context.Context, ep *iface.Endpoint) {
	in := ep.Info.(*info)
	go func() {
		select {
		case <-ctx.Done():
		case <-ep.Done:
		}
		if in.original {
			in.h.port.Close()
		}
	}()
	_ = transport.ScanLines(ctx, in.h.port, ep, in.metrics)
}

func writeSerial(ctx context.Context, ep *iface.Endpoint) {
	in := ep.Info.(*info)
	_ = transport.WriteLoop(ctx, in.h.port, ep, in.metrics)
}

func cleanupSerial(ep *iface.Endpoint) {
	in, ok := ep.Info.(*info)
	if ok && in.original && in.h.port != nil {
		in.h.port.Close()
	}
}
