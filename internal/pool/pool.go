// Package pool provides bucketed sync.Pool instances for the scratch pixel
// buffers used while cleaning mattes and compositing frames. Buffers are
// organized by size class so that a canvas of a given preset keeps landing
// in the same bucket.
package pool

import "sync"

// Size classes for bucketed pools. The largest class covers a 1024x1024
// RGBA canvas; bigger requests are allocated directly and never pooled.
const (
	Size64K  = 1 << 16
	Size256K = 1 << 18
	Size1M   = 1 << 20
	Size4M   = 1 << 22
)

var sizes = [...]int{Size64K, Size256K, Size1M, Size4M}

var pools [len(sizes)]sync.Pool

func init() {
	for i := range pools {
		sz := sizes[i]
		pools[i] = sync.Pool{
			New: func() any {
				b := make([]byte, sz)
				return &b
			},
		}
	}
}

// bucketIndex returns the pool index for a given size, or -1 when the size
// is above the largest class.
func bucketIndex(size int) int {
	for i, sz := range sizes {
		if size <= sz {
			return i
		}
	}
	return -1
}

// Get returns a byte slice of length size. The contents are unspecified;
// callers that need a cleared buffer use GetZeroed. The caller should call
// Put when done.
func Get(size int) []byte {
	idx := bucketIndex(size)
	if idx < 0 {
		return make([]byte, size)
	}
	bp := pools[idx].Get().(*[]byte)
	return (*bp)[:size]
}

// GetZeroed is like Get but clears the returned slice.
func GetZeroed(size int) []byte {
	b := Get(size)
	clear(b)
	return b
}

// Put returns a byte slice to the pool. Slices whose capacity is not exactly
// a size class (including oversized direct allocations) are dropped.
func Put(b []byte) {
	c := cap(b)
	idx := bucketIndex(c)
	if idx < 0 || sizes[idx] != c {
		return
	}
	b = b[:c]
	pools[idx].Put(&b)
}
