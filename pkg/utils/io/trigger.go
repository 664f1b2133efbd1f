package io

import (
	"io"
	"sync"
)

// TriggerReader fires callbacks when its stream runs out.
//
// Callbacks registered with OnEnd run once, at the first io.EOF from
// the underlying reader. Registering after that point runs the callback
// immediately.
type TriggerReader interface {
	io.Reader
	OnEnd(func())
}

type triggerReader struct {
	base      io.Reader
	onEnd     []func()
	exhausted bool
	mux       sync.Mutex
}

func NewTriggerReader(base io.Reader) TriggerReader {
	return &triggerReader{base: base}
}

func (t *triggerReader) Read(p []byte) (int, error) {
	n, err := t.base.Read(p)
	if err == io.EOF {
		t.mux.Lock()
		defer t.mux.Unlock()
		if !t.exhausted {
			t.exhausted = true
			for _, f := range t.onEnd {
				f()
			}
			t.onEnd = nil
		}
	}
	return n, err
}

func (t *triggerReader) OnEnd(callback func()) {
	t.mux.Lock()
	defer t.mux.Unlock()

	if t.exhausted {
		callback()
		return
	}
	t.onEnd = append(t.onEnd, callback)
}
