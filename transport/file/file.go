// Package file implements a file-backed endpoint: an input that reads
// sentences from a file (or a FIFO/character device opened for reading), and
// an output that appends sentences to a file. Grounded on
// output/file/file.go's option handling and append-mode file opening, ported
// from the NATS-subscriber/batch-writer shape to the read/write-loop
// adapter contract.
package file

import (
	"context"
	"os"

	"github.com/kplex-io/kplexmux/config"
	"github.com/kplex-io/kplexmux/iface"
	"github.com/kplex-io/kplexmux/transport"
)

type info struct {
	path    string
	file    *os.File
	metrics transport.Metrics
}

// Build constructs a file-backed endpoint from its parsed configuration. The
// "filename" option names the file to read from or append to.
func Build(ifc config.Interface, global config.Global, metrics transport.Metrics) (*iface.Endpoint, error) {
	path, err := transport.RequireOpt(ifc.Options, "filename")
	if err != nil {
		return nil, err
	}

	ep := iface.New(ifc.Name, ifc.Type, ifc.Direction)
	ep.Info = &info{path: path, metrics: metrics}
	ep.Init = initFile
	ep.Read = readFile
	ep.Write = writeFile
	ep.Cleanup = cleanupFile
	ep.DupInfo = func(i any) any {
		orig := i.(*info)
		return &info{path: orig.path, metrics: orig.metrics}
	}
	return ep, nil
}

func initFile(ctx context.Context, ep *iface.Endpoint) error {
	in := ep.Info.(*info)

	flag := os.O_RDONLY
	if ep.Direction == iface.OUT {
		flag = os.O_WRONLY | os.O_CREATE | os.O_APPEND
	}

	f, err := os.OpenFile(in.path, flag, 0o644)
	if err != nil {
		return err
	}
	in.file = f
	return nil
}

func readFile(ctx context.Context, ep *iface.Endpoint) {
	in := ep.Info.(*info)
	_ = transport.ScanLines(ctx, in.file, ep, in.metrics)
}

func writeFile(ctx context.Context, ep *iface.Endpoint) {
	in := ep.Info.(*info)
	_ = transport.WriteLoop(ctx, in.file, ep, in.metrics)
}

func cleanupFile(ep *iface.Endpoint) {
	in, ok := ep.Info.(*info)
	if ok && in.file != nil {
		in.file.Close()
	}
}
