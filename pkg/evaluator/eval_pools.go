package evaluator

import (
	"bytes"
	"sync"
)

// bufPool is a process-wide pool of *bytes.Buffer used by the string
// building builtins (join, concat, fmt) to reduce GC pressure from
// short-lived buffers.
//
// THREAD-SAFETY AUDIT: safe.
//   - sync.Pool is designed for concurrent use; Get/Put are internally locked.
//   - Each caller receives exclusive ownership of a buffer for the duration of its
//     use; the buffer is never shared between goroutines.
//   - Buffers are always Reset via acquireBuf() before use.
var bufPool = sync.Pool{
	New: func() any { return new(bytes.Buffer) },
}

// acquireBuf returns a reset buffer from the pool.
func acquireBuf() *bytes.Buffer {
	b := bufPool.Get().(*bytes.Buffer)
	b.Reset()
	return b
}

// releaseBuf returns a buffer to the pool. Very large buffers are dropped
// to prevent unbounded memory retention.
func releaseBuf(b *bytes.Buffer) {
	if b.Cap() <= 64*1024 { // 64 KB ceiling
		bufPool.Put(b)
	}
}

// argsPool recycles the argument stacks built for every call of every row.
//
// THREAD-SAFETY AUDIT: safe.
//   - A stack is owned by a single call and released once the function returned.
//   - releaseArgs clears the stack so that no borrowed pointer into a previous
//     row survives in the pool.
var argsPool = sync.Pool{
	New: func() any { return NewBoundArguments(4) },
}

func acquireArgs() *BoundArguments {
	return argsPool.Get().(*BoundArguments)
}

func releaseArgs(b *BoundArguments) {
	if cap(b.stack) > 64 {
		return
	}
	b.reset()
	argsPool.Put(b)
}
