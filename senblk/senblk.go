// Package senblk defines the sentence unit kplexmux routes between endpoints.
package senblk

// SenMax is the maximum payload size of a single sentence, not counting its
// terminating CRLF. A sentence that does not reach its terminator within
// SenMax bytes is discarded by the reading adapter.
const SenMax = 96

// SenBlk is a single NMEA-0183 sentence in flight. It is always owned by
// exactly one queue, free-list, or in-flight task at a time; ownership moves
// by pointer, never by value copy of its Data array.
type SenBlk struct {
	Data [SenMax]byte
	Len  int

	// Src is a weak reference to the endpoint that produced this sentence.
	// It is used by the engine for loop prevention and is never dereferenced
	// for lifecycle purposes.
	Src any

	next *SenBlk
}

// Copy overwrites dst's Data/Len/Src from src, clears dst's next pointer, and
// returns dst. It never touches src.
func Copy(dst, src *SenBlk) *SenBlk {
	dst.Len = src.Len
	dst.Src = src.Src
	dst.next = nil
	copy(dst.Data[:dst.Len], src.Data[:src.Len])
	return dst
}

// Next returns the intrusive list successor, used by squeue to thread free
// lists and FIFOs through a slab of SenBlk without extra allocation.
func (s *SenBlk) Next() *SenBlk {
	return s.next
}

// SetNext sets the intrusive list successor.
func (s *SenBlk) SetNext(next *SenBlk) {
	s.next = next
}

// Bytes returns the sentence payload.
func (s *SenBlk) Bytes() []byte {
	return s.Data[:s.Len]
}
