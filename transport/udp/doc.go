// Package udp provides a datagram transport, typically used for broadcast
// or multicast NMEA feeds from chartplotters and AIS receivers.
package udp
