// Package websocket broadcasts the multiplexer's sentence stream to browser
// and dashboard clients over a websocket upgrade endpoint.
package websocket
