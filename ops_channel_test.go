package qnxcomm

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestChannelCreateDestroy(t *testing.T) {
	reg := NewRegistry(nil)
	p, err := reg.Open(1)
	require.NoError(t, err)
	defer reg.Close(p)

	chid, err := p.ChannelCreate(0)
	require.NoError(t, err)
	require.Greater(t, chid, int32(0))

	require.NoError(t, p.ChannelDestroy(chid))

	err = p.ChannelDestroy(chid)
	require.Error(t, err)
	require.True(t, IsCode(err, ErrCodeNotFound))
}

func TestChannelDestroyDrainsQueuedSenders(t *testing.T) {
	reg := NewRegistry(nil)
	server, err := reg.Open(1)
	require.NoError(t, err)
	defer reg.Close(server)

	client, err := reg.Open(2)
	require.NoError(t, err)
	defer reg.Close(client)

	chid, err := server.ChannelCreate(0)
	require.NoError(t, err)

	coid, err := client.ConnectAttach(1, chid)
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() {
		_, _, sendErr := client.MsgSend(testCtx(), coid, []byte("x"), nil, 0)
		done <- sendErr
	}()

	waitUntilQueued(t, server, chid)
	require.NoError(t, server.ChannelDestroy(chid))

	err = <-done
	require.Error(t, err)
	require.True(t, IsCode(err, ErrCodeBadDescriptor))
}
