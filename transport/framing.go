// Package transport holds framing and option-parsing helpers shared by every
// transport/* adapter package. NMEA-0183 sentences are framed as a line of
// ASCII text terminated by CRLF, bounded by senblk.SenMax bytes; a sentence
// longer than the bound is dropped, matching original_source/kplex.c's fixed
// SENMAX buffer rather than resizing to fit an oversized line.
package transport

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/kplex-io/kplexmux/iface"
	"github.com/kplex-io/kplexmux/senblk"
)

// Metrics is the nil-safe hook every transport/* adapter reports bytes moved
// through the underlying socket/file/port into, keyed by endpoint name and
// direction ("in"/"out").
type Metrics interface {
	RecordTransportBytes(endpoint, direction string, n int)
}

// RecordBytes reports n bytes moved for endpoint/direction if metrics is non-nil.
func RecordBytes(m Metrics, endpoint, direction string, n int) {
	if m != nil {
		m.RecordTransportBytes(endpoint, direction, n)
	}
}

// ScanLines splits r into CRLF- or LF-terminated lines, pushing one SenBlk
// per line onto ep.Q tagged with ep as the source, until r returns an error,
// ctx is cancelled, or ep.Done is closed. A line longer than senblk.SenMax is
// dropped rather than truncated or split.
func ScanLines(ctx context.Context, r io.Reader, ep *iface.Endpoint, metrics Metrics) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, senblk.SenMax), senblk.SenMax*4)
	sc.Split(scanCRLF)

	for sc.Scan() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ep.Done:
			return nil
		default:
		}

		line := sc.Bytes()
		if len(line) == 0 || len(line) > senblk.SenMax {
			continue
		}

		u := &senblk.SenBlk{Src: ep}
		u.Len = copy(u.Data[:], line)
		ep.Q.Push(u)
		RecordBytes(metrics, ep.Name, "in", len(line))
	}
	return sc.Err()
}

// scanCRLF is a bufio.SplitFunc that splits on '\n', trimming a preceding
// '\r' so CRLF- and LF-only framing both produce the bare sentence text.
func scanCRLF(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	if i := indexByte(data, '\n'); i >= 0 {
		end := i
		if end > 0 && data[end-1] == '\r' {
			end--
		}
		return i + 1, data[:end], nil
	}
	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}

func indexByte(b []byte, c byte) int {
	for i := range b {
		if b[i] == c {
			return i
		}
	}
	return -1
}

// WriteLine writes one sentence to w, terminated by CRLF, matching
// original_source/kplex.c's output framing.
func WriteLine(w io.Writer, u *senblk.SenBlk) error {
	_, err := w.Write(append(append([]byte{}, u.Bytes()...), '\r', '\n'))
	return err
}

// WriteLoop drains ep.Q, framing each sentence onto w, until the queue
// closes, ctx is cancelled, or a write fails.
func WriteLoop(ctx context.Context, w io.Writer, ep *iface.Endpoint, metrics Metrics) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		u, ok := ep.Q.Next()
		if !ok {
			return nil
		}
		n := len(u.Bytes())
		err := WriteLine(w, u)
		ep.Q.Free(u)
		if err != nil {
			return err
		}
		RecordBytes(metrics, ep.Name, "out", n+2)
	}
}

// StringOpt returns opts[key], or fallback if the key is absent.
func StringOpt(opts map[string]string, key, fallback string) string {
	if v, ok := opts[key]; ok && v != "" {
		return v
	}
	return fallback
}

// IntOpt parses opts[key] as an integer, or returns fallback if the key is
// absent or malformed.
func IntOpt(opts map[string]string, key string, fallback int) (int, error) {
	v, ok := opts[key]
	if !ok || v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("option %q: %w", key, err)
	}
	return n, nil
}

// RequireOpt returns opts[key], or an error if the key is absent.
func RequireOpt(opts map[string]string, key string) (string, error) {
	v, ok := opts[key]
	if !ok || strings.TrimSpace(v) == "" {
		return "", fmt.Errorf("missing required option %q", key)
	}
	return v, nil
}
