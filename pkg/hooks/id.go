package hooks

import "sync/atomic"

// globalIDCounter is the source of unique IDs for dispatch handles.
var globalIDCounter uint64

// nextID returns the next unique handle ID. IDs are monotonically
// increasing and never reused.
func nextID() uint64 {
	return atomic.AddUint64(&globalIDCounter, 1)
}
