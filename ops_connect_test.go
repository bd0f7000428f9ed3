package qnxcomm

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestConnectAttachDetach(t *testing.T) {
	reg := NewRegistry(nil)
	p, err := reg.Open(1)
	require.NoError(t, err)
	defer reg.Close(p)

	coid, err := p.ConnectAttach(2, 7)
	require.NoError(t, err)
	require.Greater(t, coid, int32(0))

	require.NoError(t, p.ConnectDetach(coid))

	err = p.ConnectDetach(coid)
	require.Error(t, err)
	require.True(t, IsCode(err, ErrCodeNotFound))
}

func TestConnectAttachTargetNeedNotExistYet(t *testing.T) {
	reg := NewRegistry(nil)
	p, err := reg.Open(1)
	require.NoError(t, err)
	defer reg.Close(p)

	// No pid 99 has ever been opened; attaching still succeeds, per
	// spec.md §4.3's "no requirement that the target channel exists now".
	_, err = p.ConnectAttach(99, 1)
	require.NoError(t, err)
}
