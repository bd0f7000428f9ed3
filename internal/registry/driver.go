package registry

import (
	"errors"
	"sync"

	"github.com/abilashjram/qnxcomm/internal/ids"
)

// ErrAlreadyOpen is returned by Open when pid already has an entry: "at
// most one Process Entry per pid" (spec.md §3).
var ErrAlreadyOpen = errors.New("already open")

// Driver is the process-wide pid -> ProcessEntry table, the root through
// which cross-process lookups happen (spec.md §3).
type Driver struct {
	mu         sync.RWMutex
	entries    map[int32]*ProcessEntry
	rcvidAlloc ids.RcvidAllocator
}

// NewDriver creates an empty registry.
func NewDriver() *Driver {
	return &Driver{entries: make(map[int32]*ProcessEntry)}
}

// Open creates a new ProcessEntry for pid. Fails with ErrAlreadyOpen if
// pid already has one (a second concurrent opening, or post-fork reuse of
// the parent's pid without re-opening — spec.md §6).
func (d *Driver) Open(pid int32) (*ProcessEntry, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.entries[pid]; ok {
		return nil, ErrAlreadyOpen
	}
	entry := New(pid)
	d.entries[pid] = entry
	return entry, nil
}

// Close removes pid's entry from the registry so no further lookups can
// see it, and returns it for the caller to Teardown. Returns false if pid
// has no open entry.
func (d *Driver) Close(pid int32) (*ProcessEntry, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	entry, ok := d.entries[pid]
	if !ok {
		return nil, false
	}
	delete(d.entries, pid)
	return entry, true
}

// Find performs a ref-counted lookup of pid's entry. Callers must call
// Release on the returned entry when done.
func (d *Driver) Find(pid int32) (*ProcessEntry, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	entry, ok := d.entries[pid]
	if !ok {
		return nil, false
	}
	entry.Ref()
	return entry, true
}

// NextRcvid allocates the next globally unique receive-id.
func (d *Driver) NextRcvid() int64 {
	return d.rcvidAlloc.Next()
}
