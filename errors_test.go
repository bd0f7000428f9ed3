package qnxcomm

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStructuredError(t *testing.T) {
	err := NewError("ChannelCreate", ErrCodeInvalid, "invalid flags")

	require.Equal(t, "ChannelCreate", err.Op)
	require.Equal(t, ErrCodeInvalid, err.Code)
	require.Equal(t, "qnxcomm: invalid flags (op=ChannelCreate)", err.Error())
}

func TestDescriptorError(t *testing.T) {
	err := NewDescriptorError("MsgSend", 42, ErrCodeBadDescriptor, "unknown coid")

	require.EqualValues(t, 42, err.Pid)
	require.Equal(t, "qnxcomm: unknown coid (op=MsgSend)", err.Error())
}

func TestRcvidError(t *testing.T) {
	err := NewRcvidError("MsgReply", 7, ErrCodeNotFound, "no such rcvid")

	require.EqualValues(t, 7, err.Rcvid)
	require.Equal(t, ErrCodeNotFound, err.Code)
}

func TestWrapError(t *testing.T) {
	inner := errors.New("boom")
	err := WrapError("MsgReceive", inner)

	require.Equal(t, ErrCodeFault, err.Code)
	require.ErrorIs(t, err, inner)
}

func TestWrapErrorPreservesCategory(t *testing.T) {
	qe := NewDescriptorError("MsgSend", 1, ErrCodeBadDescriptor, "bad coid")
	wrapped := WrapError("MsgSendv", qe)

	require.Equal(t, "MsgSendv", wrapped.Op)
	require.Equal(t, ErrCodeBadDescriptor, wrapped.Code)
	require.EqualValues(t, 1, wrapped.Pid)
}

func TestIsCode(t *testing.T) {
	err := NewError("MsgSend", ErrCodeTimeout, "operation timed out")

	require.True(t, IsCode(err, ErrCodeTimeout))
	require.False(t, IsCode(err, ErrCodeFault))
	require.False(t, IsCode(nil, ErrCodeTimeout))
}

func TestStatusFor(t *testing.T) {
	require.EqualValues(t, 0, StatusFor(nil))
	require.EqualValues(t, -3, StatusFor(NewError("x", ErrCodeNotFound, "")))
	require.EqualValues(t, -110, StatusFor(NewError("x", ErrCodeTimeout, "")))
	require.EqualValues(t, -14, StatusFor(errors.New("unstructured")))
}

func TestErrorFromAbortStatus(t *testing.T) {
	err := errorFromAbortStatus("MsgSend", 9, statusByCode[ErrCodeBadDescriptor])
	require.True(t, IsCode(err, ErrCodeBadDescriptor))
	require.EqualValues(t, 9, err.Rcvid)

	unknown := errorFromAbortStatus("MsgSend", 9, -999)
	require.True(t, IsCode(unknown, ErrCodeFault))
}

func TestErrorIsByCategory(t *testing.T) {
	a := NewError("MsgSend", ErrCodeBadDescriptor, "")
	b := &Error{Code: ErrCodeBadDescriptor}

	require.True(t, errors.Is(a, b))
}
