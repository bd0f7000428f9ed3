package wire

// MaxIovecLen is the inline scatter/gather capacity (spec.md §4.4,
// "Scatter/gather variant"). Vectors at or under this count live in the
// IOVecs' inline array; longer vectors spill into a heap-allocated slice
// for the duration of the call, mirroring go-ublk's preallocated-array
// idiom for its per-tag command structs (internal/queue/runner.go's
// ioCmds field) generalized to an overflow-on-demand shape.
const MaxIovecLen = 4

// IOVecs holds a list of buffer descriptors without allocating for the
// common case of a handful of small vectors.
type IOVecs struct {
	inline   [MaxIovecLen][]byte
	n        int
	overflow [][]byte
}

// NewIOVecs builds an IOVecs from a plain slice of buffers.
func NewIOVecs(bufs [][]byte) IOVecs {
	var v IOVecs
	for _, b := range bufs {
		v.Append(b)
	}
	return v
}

// Append adds one more buffer descriptor.
func (v *IOVecs) Append(buf []byte) {
	if v.n < MaxIovecLen {
		v.inline[v.n] = buf
	} else {
		v.overflow = append(v.overflow, buf)
	}
	v.n++
}

// Len returns the number of buffer descriptors.
func (v *IOVecs) Len() int { return v.n }

// At returns the i'th buffer descriptor.
func (v *IOVecs) At(i int) []byte {
	if i < MaxIovecLen {
		return v.inline[i]
	}
	return v.overflow[i-MaxIovecLen]
}

// TotalLen returns the sum of all buffer lengths.
func (v *IOVecs) TotalLen() int {
	total := 0
	for i := 0; i < v.n; i++ {
		total += len(v.At(i))
	}
	return total
}

// CopyIn copies min(TotalLen(), len(src)) bytes from src across the
// vector boundaries into the underlying buffers, returning the number of
// bytes written. The scatter counterpart of CopyOut: used to distribute a
// replier's flat reply payload into a sender's MsgReceivev-style output
// vectors.
func (v *IOVecs) CopyIn(src []byte) int {
	copied := 0
	for i := 0; i < v.n && copied < len(src); i++ {
		buf := v.At(i)
		n := copy(buf, src[copied:])
		copied += n
	}
	return copied
}

// CopyOut copies min(TotalLen()-offset, len(dst)) bytes starting at
// offset across the vector boundaries into dst, returning the number of
// bytes copied. Used by MsgRead and by the receiver's copy-out.
func (v *IOVecs) CopyOut(offset int, dst []byte) int {
	copied := 0
	pos := 0
	for i := 0; i < v.n && copied < len(dst); i++ {
		buf := v.At(i)
		bufEnd := pos + len(buf)
		if offset >= bufEnd {
			pos = bufEnd
			continue
		}
		start := 0
		if offset > pos {
			start = offset - pos
		}
		n := copy(dst[copied:], buf[start:])
		copied += n
		pos = bufEnd
	}
	return copied
}
