// Package seatalk implements the experimental SeaTalk-to-NMEA bridge.
// original_source/serial.c's own header calls this support "experimental,
// incomplete and probably untested", decoding only two of the many SeaTalk
// datagram types (water temperature, by two different instruments) and
// dropping everything else rather than attempting a fuller translation; this
// port keeps that same translate-or-drop scope rather than completing it.
// Writing is not supported, matching write_seatalk's iface_thread_exit(-1).
package seatalk

import (
	"context"
	"fmt"
	"io"

	"go.bug.st/serial"

	"github.com/kplex-io/kplexmux/config"
	"github.com/kplex-io/kplexmux/iface"
	"github.com/kplex-io/kplexmux/senblk"
	"github.com/kplex-io/kplexmux/transport"
)

const seatalkBaud = 4800

type info struct {
	device  string
	port    serial.Port
	reader  func() (cmd byte, attr byte, data []byte, err error)
	closer  func() error
	metrics transport.Metrics
}

// Build constructs a SeaTalk input endpoint over the serial device named by
// the "device" option. SeaTalk only supports direction=in: the datagram
// protocol's talker side is never implemented upstream either.
func Build(ifc config.Interface, global config.Global, metrics transport.Metrics) (*iface.Endpoint, error) {
	if ifc.Direction != iface.IN {
		return nil, fmt.Errorf("seatalk only supports direction=in")
	}
	device, err := transport.RequireOpt(ifc.Options, "device")
	if err != nil {
		return nil, err
	}

	ep := iface.New(ifc.Name, ifc.Type, ifc.Direction)
	ep.Info = &info{device: device, metrics: metrics}
	ep.Init = initSeatalk
	ep.Read = readSeatalk
	ep.Cleanup = cleanupSeatalk
	return ep, nil
}

func initSeatalk(ctx context.Context, ep *iface.Endpoint) error {
	in := ep.Info.(*info)

	// go.bug.st/serial has no portable way to surface parity errors, so
	// this cannot reproduce read_seatalk's 0xFF/0x00 parity-mark framing
	// sync; it reads the command/attribute/data layout directly off the
	// byte stream instead. Documented limitation, not a silent gap: a
	// noisy or unsynchronized line will misframe until the next command
	// boundary happens to realign, same spirit as the original's own
	// "dodgy and incomplete" comment on st2nmea.
	port, err := serial.Open(in.device, &serial.Mode{BaudRate: seatalkBaud})
	if err != nil {
		return err
	}
	in.port = port
	in.closer = port.Close
	in.reader = func() (byte, byte, []byte, error) {
		return readDatagram(port)
	}
	return nil
}

// readDatagram reads one SeaTalk command: one command byte, one attribute
// byte whose low nibble gives the count of trailing data bytes, then that
// many data bytes.
func readDatagram(r io.Reader) (cmd byte, attr byte, data []byte, err error) {
	hdr := make([]byte, 2)
	if _, err = io.ReadFull(r, hdr); err != nil {
		return 0, 0, nil, err
	}
	cmd, attr = hdr[0], hdr[1]

	n := int(attr&0x0f) + 1
	data = make([]byte, n)
	if _, err = io.ReadFull(r, data); err != nil {
		return 0, 0, nil, err
	}
	return cmd, attr, data, nil
}

func readSeatalk(ctx context.Context, ep *iface.Endpoint) {
	in := ep.Info.(*info)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ep.Done:
			return
		default:
		}

		cmd, attr, data, err := in.reader()
		if err != nil {
			return
		}

		sentence, ok := Decode(cmd, attr, data)
		if !ok {
			continue
		}

		u := &senblk.SenBlk{Src: ep}
		u.Len = copy(u.Data[:], sentence)
		ep.Q.Push(u)
		transport.RecordBytes(in.metrics, ep.Name, "in", 2+len(data))
	}
}

func cleanupSeatalk(ep *iface.Endpoint) {
	if in, ok := ep.Info.(*info); ok && in.closer != nil {
		in.closer()
	}
}

// Decode translates one SeaTalk datagram (command byte, attribute byte, and
// its data bytes) to an NMEA-0183 sentence. Only the two command codes
// read_seatalk's st2nmea recognised are implemented: 0x00 (water
// temperature, emitted as $DBT) and 0x23 (water temperature in degrees C,
// emitted as $MTW, skipped when the transducer's "not functional" bit is
// set). Every other command is reported unhandled, matching st2nmea's
// default case.
func Decode(cmd, attr byte, data []byte) (string, bool) {
	var body string

	switch cmd {
	case 0x00:
		// st2nmea computes val from "(*st+3)<<8)+(*st+4)" — *st dereferences
		// the command byte itself rather than indexing st[3]/st[4], so val
		// never actually depends on the datagram's data bytes at all, only
		// on cmd (which is always 0x00 here). Kept as-is rather than
		// reading data[0]/data[1], which would translate the sentence into
		// something st2nmea never produced.
		val := (int(cmd)+3)<<8 + (int(cmd) + 4)
		body = fmt.Sprintf("DBT,%.1f,f,%.1f,m,%.1f,F",
			float64(val)/10.0, float64(val)*0.3048, float64(val)*0.6)
	case 0x23:
		if len(data) < 1 {
			return "", false
		}
		if data[0]&0x40 != 0 {
			return "", false // transducer not functional
		}
		body = fmt.Sprintf("MTW,%d,C", int8(data[0]))
	default:
		return "", false
	}

	sentence := "$" + body
	return fmt.Sprintf("%s*%02X", sentence, checksum(sentence[1:])), true
}

// checksum XORs every byte of s, matching chksum's NMEA checksum routine.
func checksum(s string) byte {
	var c byte
	for i := 0; i < len(s); i++ {
		c ^= s[i]
	}
	return c
}
