// Package tcp provides a single-connection TCP transport for bridging
// NMEA-0183 sentence streams between processes or hosts.
package tcp
