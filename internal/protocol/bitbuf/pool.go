package bitbuf

import "sync"

// Writers grown past this are dropped instead of pooled.
const maxPooledCap = 64 * 1024

var writerPool = sync.Pool{
	New: func() any { return NewWriter() },
}

// AcquireWriter checks out an empty writer owned by the caller until
// ReleaseWriter.
func AcquireWriter() *Writer {
	w := writerPool.Get().(*Writer)
	w.Reset()
	return w
}

// ReleaseWriter returns w to the pool. The caller must not touch w or any
// slice obtained from w.Bytes afterwards.
func ReleaseWriter(w *Writer) {
	if w == nil || cap(w.buf) > maxPooledCap {
		return
	}
	w.Reset()
	writerPool.Put(w)
}
