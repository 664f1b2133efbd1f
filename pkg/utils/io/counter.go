package io

import (
	"io"
	"sync/atomic"
)

// CountReader counts up bytes which have been read through it.
//
// It is safe to read the count from other goroutines than the reading one.
type CountReader struct {
	source io.Reader
	n      atomic.Int64
}

func NewCountReader(source io.Reader) *CountReader {
	return &CountReader{source: source}
}

func (cr *CountReader) Read(p []byte) (int, error) {
	n, err := cr.source.Read(p)
	if 0 < n {
		cr.n.Add(int64(n))
	}
	return n, err
}

// Count returns total bytes read so far.
func (cr *CountReader) Count() int64 {
	return cr.n.Load()
}
