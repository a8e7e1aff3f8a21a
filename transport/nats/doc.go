// Package nats bridges NMEA sentences between the multiplexer and a NATS
// subject, for fan-out across processes or hosts without an ad hoc socket
// protocol.
package nats
