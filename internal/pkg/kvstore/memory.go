package kvstore

import (
	"context"
	"sync"
)

// memoryStore is an in-process Store for tests and single-binary setups
// without Redis. Watch signals are fanned out to every subscriber of a key.
type memoryStore struct {
	mu      sync.RWMutex
	data    map[string][]byte
	watches map[string][]chan struct{}
}

// NewMemory returns an empty in-memory Store.
func NewMemory() Store {
	return &memoryStore{
		data:    make(map[string][]byte),
		watches: make(map[string][]chan struct{}),
	}
}

func (s *memoryStore) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	val, ok := s.data[key]
	if !ok {
		return nil, nil
	}
	cp := make([]byte, len(val))
	copy(cp, val)
	return cp, nil
}

func (s *memoryStore) Set(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	cp := make([]byte, len(value))
	copy(cp, value)
	s.data[key] = cp
	s.mu.Unlock()
	s.notify(key)
	return nil
}

func (s *memoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	delete(s.data, key)
	s.mu.Unlock()
	s.notify(key)
	return nil
}

func (s *memoryStore) Watch(ctx context.Context, key string) (<-chan struct{}, error) {
	ch := make(chan struct{}, 1)
	out := make(chan struct{}, 1)

	s.mu.Lock()
	s.watches[key] = append(s.watches[key], ch)
	s.mu.Unlock()

	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				s.unsubscribe(key, ch)
				return
			case <-ch:
				select {
				case out <- struct{}{}:
				default:
				}
			}
		}
	}()
	return out, nil
}

func (s *memoryStore) notify(key string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, ch := range s.watches[key] {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

func (s *memoryStore) unsubscribe(key string, ch chan struct{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	subs := s.watches[key]
	for i, c := range subs {
		if c == ch {
			s.watches[key] = append(subs[:i], subs[i+1:]...)
			break
		}
	}
}

func (s *memoryStore) Close() error {
	return nil
}
