// Package pty provides a pseudo-terminal transport for presenting a
// multiplexed sentence feed as a virtual serial device.
package pty
