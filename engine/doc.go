// Package engine implements the single fan-out goroutine at the heart of
// kplexmux: every sentence pulled from the central queue is copied onto
// every output whose weak Pair does not match the sentence's source
// endpoint, enforcing input/output loop prevention for paired bidirectional
// endpoints (e.g. a serial port used for both talk and listen).
//
// The central queue is closed by the router when the last input endpoint
// unlinks; Engine.Run observes that closure and propagates it to every
// output's queue by fanning out a nil SenBlk, then returns.
package engine
