package tcp

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kplex-io/kplexmux/config"
	"github.com/kplex-io/kplexmux/iface"
	"github.com/kplex-io/kplexmux/senblk"
	"github.com/kplex-io/kplexmux/squeue"
)

func TestBuild_MissingAddressErrors(t *testing.T) {
	_, err := Build(config.Interface{Options: map[string]string{}}, config.Global{}, nil)
	assert.Error(t, err)
}

func TestTCP_ServerClientRoundTrip(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	ln.Close()

	serverEp, err := Build(config.Interface{
		Name: "srv", Type: iface.TCP, Direction: iface.IN,
		Options: map[string]string{"address": addr, "mode": "server"},
	}, config.Global{}, nil)
	require.NoError(t, err)
	q, err := squeue.New("srv", 8)
	require.NoError(t, err)
	serverEp.Q = q

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	initErr := make(chan error, 1)
	go func() { initErr <- serverEp.Init(ctx, serverEp) }()

	// give the listener a moment to bind before the client dials
	time.Sleep(20 * time.Millisecond)

	clientEp, err := Build(config.Interface{
		Name: "cli", Type: iface.TCP, Direction: iface.OUT,
		Options: map[string]string{"address": addr, "mode": "client"},
	}, config.Global{}, nil)
	require.NoError(t, err)
	cq, err := squeue.New("cli", 8)
	require.NoError(t, err)
	clientEp.Q = cq
	require.NoError(t, clientEp.Init(ctx, clientEp))
	defer clientEp.Cleanup(clientEp)

	require.NoError(t, <-initErr)
	defer serverEp.Cleanup(serverEp)

	u := &senblk.SenBlk{}
	u.Len = copy(u.Data[:], "$GPGGA,tcp")
	cq.Push(u)

	go clientEp.Write(ctx, clientEp)

	readDone := make(chan struct{})
	go func() {
		serverEp.Read(ctx, serverEp)
		close(readDone)
	}()

	got, ok := q.Next()
	require.True(t, ok)
	assert.Equal(t, "$GPGGA,tcp", string(got.Bytes()))

	serverEp.RequestStop()
	<-readDone
}
