package collection

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"
)

// MemoryStore is an in-memory Store used for unit tests and local runs without
// a Mongo deployment. Change notifications are delivered to subscribers the
// same way the Mongo change stream does: the mirror re-reads the whole
// collection on every event.
type MemoryStore struct {
	mu     sync.RWMutex
	data   map[string]map[string]Document // collection -> id -> doc
	subs   map[string][]chan struct{}
	nextID int
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		data: map[string]map[string]Document{},
		subs: map[string][]chan struct{}{},
	}
}

func (s *MemoryStore) Add(ctx context.Context, collection string, fields map[string]interface{}) (string, error) {
	s.mu.Lock()
	now := time.Now().UTC()
	s.nextID++
	id := fmt.Sprintf("doc_%d_%d", now.UnixNano(), s.nextID)
	doc := Document{ID: id, Fields: map[string]interface{}{}}
	for k, v := range fields {
		doc.Fields[k] = v
	}
	doc.Fields["createdAt"] = now
	doc.Fields["updatedAt"] = now
	if s.data[collection] == nil {
		s.data[collection] = map[string]Document{}
	}
	s.data[collection][id] = doc
	s.mu.Unlock()
	s.notify(collection)
	return id, nil
}

func (s *MemoryStore) Update(ctx context.Context, collection, id string, partial map[string]interface{}) error {
	s.mu.Lock()
	doc, ok := s.data[collection][id]
	if !ok {
		s.mu.Unlock()
		return ErrNotFound
	}
	for k, v := range partial {
		doc.Fields[k] = v
	}
	doc.Fields["updatedAt"] = time.Now().UTC()
	s.data[collection][id] = doc
	s.mu.Unlock()
	s.notify(collection)
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, collection, id string) error {
	s.mu.Lock()
	if _, ok := s.data[collection][id]; !ok {
		s.mu.Unlock()
		return ErrNotFound
	}
	delete(s.data[collection], id)
	s.mu.Unlock()
	s.notify(collection)
	return nil
}

func (s *MemoryStore) Find(ctx context.Context, collection string, filter map[string]interface{}) ([]Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.orderedLocked(collection, filter), nil
}

func (s *MemoryStore) Subscribe(ctx context.Context, collection string) (*Mirror, error) {
	ch := make(chan struct{}, 1)
	s.mu.Lock()
	s.subs[collection] = append(s.subs[collection], ch)
	s.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	m := newMirror(cancel)
	go func() {
		items, _ := s.Find(context.Background(), collection, nil)
		m.replace(items)
		for {
			select {
			case <-ctx.Done():
				return
			case <-ch:
				items, _ := s.Find(context.Background(), collection, nil)
				m.replace(items)
			}
		}
	}()
	return m, nil
}

func (s *MemoryStore) notify(collection string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, ch := range s.subs[collection] {
		select {
		case ch <- struct{}{}:
		default: // subscriber already has a pending event; snapshots coalesce
		}
	}
}

func (s *MemoryStore) orderedLocked(collection string, filter map[string]interface{}) []Document {
	out := []Document{}
	for _, d := range s.data[collection] {
		if matches(d, filter) {
			cp := Document{ID: d.ID, Fields: map[string]interface{}{}}
			for k, v := range d.Fields {
				cp.Fields[k] = v
			}
			out = append(out, cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		ti, _ := out[i].Fields["createdAt"].(time.Time)
		tj, _ := out[j].Fields["createdAt"].(time.Time)
		if ti.Equal(tj) {
			return out[i].ID > out[j].ID
		}
		return ti.After(tj)
	})
	return out
}

func matches(d Document, filter map[string]interface{}) bool {
	for k, v := range filter {
		if k == "_id" {
			if d.ID != v {
				return false
			}
			continue
		}
		if d.Fields[k] != v {
			return false
		}
	}
	return true
}
