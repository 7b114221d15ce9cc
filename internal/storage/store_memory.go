package storage

import (
	"context"
	"sync"
)

type memKey struct {
	ns, key string
}

type MemStore struct {
	mu sync.RWMutex
	m  map[memKey][]byte
}

func NewMemStore() *MemStore {
	return &MemStore{m: map[memKey][]byte{}}
}

func (s *MemStore) Ping(context.Context) error { return nil }
func (s *MemStore) Close() error                { return nil }

func (s *MemStore) Get(_ context.Context, ns, key string) ([]byte, bool, error) {
	if err := validKey(ns, key); err != nil {
		return nil, false, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.m[memKey{ns, key}]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}

func (s *MemStore) Set(_ context.Context, ns, key string, val []byte) error {
	if err := validKey(ns, key); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[memKey{ns, key}] = append([]byte(nil), val...)
	return nil
}

func (s *MemStore) Delete(_ context.Context, ns, key string) error {
	if err := validKey(ns, key); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.m, memKey{ns, key})
	return nil
}
