package util

import "sync"

// DefaultBufSize is the seed capacity for pooled frame buffers. A
// buffer grows past this for near-limit frames and the grown backing
// array is what returns to the pool.
const DefaultBufSize = 4 * 1024

// BufPool provides reusable byte buffers for encoding outbound frames,
// reducing GC pressure on the send path.
var BufPool = sync.Pool{
	New: func() interface{} {
		buf := make([]byte, 0, DefaultBufSize)
		return &buf
	},
}

// GetBuf retrieves a buffer from the pool. Callers must return it
// with [PutBuf] when finished.
func GetBuf() *[]byte {
	return BufPool.Get().(*[]byte)
}

// PutBuf returns a buffer to the pool for reuse.
func PutBuf(buf *[]byte) {
	if buf == nil {
		return
	}
	BufPool.Put(buf)
}
