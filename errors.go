package qnxcomm

import (
	"errors"
	"fmt"
)

// ErrCode is the high-level error category surfaced by every operation
// handler. The operation table in spec.md §6 maps each of these to a
// negative status value via StatusFor.
type ErrCode string

const (
	ErrCodeBadDescriptor ErrCode = "bad descriptor"
	ErrCodeNotFound      ErrCode = "not found"
	ErrCodeTimeout       ErrCode = "timeout"
	ErrCodeInterrupted   ErrCode = "interrupted"
	ErrCodeFault         ErrCode = "fault"
	ErrCodeNoMemory      ErrCode = "no memory"
	ErrCodeInvalid       ErrCode = "invalid"
	ErrCodeNoSpace       ErrCode = "no space"
)

// statusByCode is the negative status an operation returns for each
// category, chosen to read like errno without binding the core to one
// host's errno table.
var statusByCode = map[ErrCode]int32{
	ErrCodeBadDescriptor: -9,   // EBADF
	ErrCodeNotFound:      -3,   // ESRCH: no such rcvid (matches the original driver's handle_msgreply/handle_msgerror/handle_msgread)
	ErrCodeTimeout:       -110, // ETIMEDOUT
	ErrCodeInterrupted:   -4,   // EINTR
	ErrCodeFault:         -14,  // EFAULT
	ErrCodeNoMemory:      -12,  // ENOMEM
	ErrCodeInvalid:       -22,  // EINVAL
	ErrCodeNoSpace:       -28,  // ENOSPC
}

// codeByStatus is statusByCode inverted, used to turn a core-aborted
// Record's raw Status back into an ErrCode without each operation
// handler hand-rolling the mapping.
var codeByStatus = func() map[int32]ErrCode {
	m := make(map[int32]ErrCode, len(statusByCode))
	for code, status := range statusByCode {
		m[status] = code
	}
	return m
}()

// Error is a structured error carrying the operation, the identifiers in
// play, and the category. It implements errors.Is/As so callers can test
// for a specific ErrCode without string matching.
type Error struct {
	Op    string // operation name, e.g. "MsgSend"
	Pid   int32  // 0 if not applicable
	Chid  int32  // 0 if not applicable
	Coid  int32  // 0 if not applicable
	Rcvid int64  // 0 if not applicable
	Code  ErrCode
	Msg   string
	Inner error
}

// Error implements the error interface
func (e *Error) Error() string {
	var parts []string

	if e.Op != "" {
		parts = append(parts, fmt.Sprintf("op=%s", e.Op))
	}
	if e.Pid != 0 {
		parts = append(parts, fmt.Sprintf("pid=%d", e.Pid))
	}
	if e.Chid != 0 {
		parts = append(parts, fmt.Sprintf("chid=%d", e.Chid))
	}
	if e.Coid != 0 {
		parts = append(parts, fmt.Sprintf("coid=%d", e.Coid))
	}
	if e.Rcvid != 0 {
		parts = append(parts, fmt.Sprintf("rcvid=%d", e.Rcvid))
	}

	msg := e.Msg
	if msg == "" {
		msg = string(e.Code)
	}

	if len(parts) > 0 {
		return fmt.Sprintf("qnxcomm: %s (%s)", msg, parts[0])
	}
	return fmt.Sprintf("qnxcomm: %s", msg)
}

// Unwrap returns the wrapped error for errors.Is/As support
func (e *Error) Unwrap() error {
	return e.Inner
}

// Is provides errors.Is support based on error category
func (e *Error) Is(target error) bool {
	if target == nil {
		return false
	}
	if te, ok := target.(*Error); ok {
		return e.Code == te.Code
	}
	return false
}

// NewError creates a structured error with no identifier context.
func NewError(op string, code ErrCode, msg string) *Error {
	return &Error{Op: op, Code: code, Msg: msg}
}

// NewDescriptorError reports a bad coid/chid or a missing peer process.
func NewDescriptorError(op string, pid int32, code ErrCode, msg string) *Error {
	return &Error{Op: op, Pid: pid, Code: code, Msg: msg}
}

// NewRcvidError reports a failure keyed by receive-id (Reply/Error/Read).
func NewRcvidError(op string, rcvid int64, code ErrCode, msg string) *Error {
	return &Error{Op: op, Rcvid: rcvid, Code: code, Msg: msg}
}

// WrapError attaches an operation name to an existing error, preserving
// its category if it is already a structured Error.
func WrapError(op string, inner error) *Error {
	if inner == nil {
		return nil
	}

	if qe, ok := inner.(*Error); ok {
		return &Error{
			Op:    op,
			Pid:   qe.Pid,
			Chid:  qe.Chid,
			Coid:  qe.Coid,
			Rcvid: qe.Rcvid,
			Code:  qe.Code,
			Msg:   qe.Msg,
			Inner: qe.Inner,
		}
	}

	return &Error{Op: op, Code: ErrCodeFault, Msg: inner.Error(), Inner: inner}
}

// IsCode checks if an error matches a specific error category.
func IsCode(err error, code ErrCode) bool {
	var qe *Error
	if errors.As(err, &qe) {
		return qe.Code == code
	}
	return false
}

// StatusFor converts an error into the negative status value an
// operation handler returns to its caller. nil maps to 0.
func StatusFor(err error) int32 {
	if err == nil {
		return 0
	}
	var qe *Error
	if errors.As(err, &qe) {
		if s, ok := statusByCode[qe.Code]; ok {
			return s
		}
	}
	return statusByCode[ErrCodeFault]
}

// ErrReceiverGone is wrapped as Inner when a sender is woken because the
// receiving process tore down its channel or exited mid-rendezvous.
var ErrReceiverGone = errors.New("receiver gone")

// errorFromAbortStatus turns a core-aborted Record's raw Status (always
// one of statusByCode's values, since the core itself chose it) back into
// a structured *Error. Used wherever a sender adopts an Aborted record's
// Status instead of a genuine reply's.
func errorFromAbortStatus(op string, rcvid int64, status int32) *Error {
	code, ok := codeByStatus[status]
	if !ok {
		code = ErrCodeFault
	}
	e := NewRcvidError(op, rcvid, code, "")
	e.Inner = ErrReceiverGone
	return e
}
