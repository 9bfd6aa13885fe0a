package collection

import (
	"context"
	"sync"
)

// Mirror is a live local copy of one collection, ordered by descending
// creation time. It is replaced wholesale on every remote change event, never
// patched incrementally, so a reader can never observe a stale partial merge.
// Under rapid successive changes intermediate snapshots may be skipped; the
// mirror always reflects the most recent snapshot received.
type Mirror struct {
	mu      sync.RWMutex
	items   []Document
	loading bool
	err     error
	cancel  context.CancelFunc
}

func newMirror(cancel context.CancelFunc) *Mirror {
	return &Mirror{loading: true, cancel: cancel}
}

// Items returns the current snapshot. The returned slice must not be mutated.
func (m *Mirror) Items() []Document {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.items
}

// Loading is true until the first snapshot (or first error) arrives.
func (m *Mirror) Loading() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.loading
}

// Err returns the subscription error, if any. The mirror does not retry by
// itself; the caller re-subscribes to recover.
func (m *Mirror) Err() error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.err
}

// Close tears down the standing subscription. Must be called when the
// consumer goes away, otherwise the stream stays open for the process lifetime.
func (m *Mirror) Close() {
	if m.cancel != nil {
		m.cancel()
	}
}

func (m *Mirror) replace(items []Document) {
	m.mu.Lock()
	m.items = items
	m.loading = false
	m.mu.Unlock()
}

func (m *Mirror) fail(err error) {
	m.mu.Lock()
	m.err = err
	m.loading = false
	m.mu.Unlock()
}
