package catalog

import (
	"context"
	"sync"
)

// MemStore keeps products in document order.
type MemStore struct {
	mu   sync.RWMutex
	list []Product
	byID map[string]int
}

func NewMemStore(products ...Product) *MemStore {
	s := &MemStore{}
	s.Replace(products)
	return s
}

// NewSeededStore returns a MemStore with the default bouquets.
func NewSeededStore() *MemStore {
	return NewMemStore(seed...)
}

var seed = []Product{
	{ID: "p-101", Title: "15 red roses", Price: 4500, Img: "assets/images/izobr/rose-15.jpg", Excerpt: "Classic bouquet in kraft paper"},
	{ID: "p-102", Title: "Spring tulips", Price: 2100, Img: "assets/images/izobr/tulips.jpg", Excerpt: "25 mixed tulips"},
	{ID: "p-103", Title: "Peony cloud", Price: 7900, Img: "assets/images/izobr/peony.jpg", Excerpt: "Seasonal, pink peonies"},
	{ID: "p-104", Title: "Box of chrysanthemums", Price: 3300, Img: "assets/images/izobr/chrysanthemum.jpg"},
}

// Replace swaps the whole list. Entries repeating an earlier id are skipped.
func (s *MemStore) Replace(products []Product) {
	list := make([]Product, 0, len(products))
	byID := make(map[string]int, len(products))
	for _, p := range products {
		if _, dup := byID[p.ID]; dup || p.ID == "" {
			continue
		}
		byID[p.ID] = len(list)
		list = append(list, p)
	}

	s.mu.Lock()
	s.list, s.byID = list, byID
	s.mu.Unlock()
}

func (s *MemStore) Ping(context.Context) error { return nil }

func (s *MemStore) List(context.Context) ([]Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Product, len(s.list))
	copy(out, s.list)
	return out, nil
}

func (s *MemStore) Get(_ context.Context, id string) (Product, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i, ok := s.byID[id]
	if !ok {
		return Product{}, false, nil
	}
	return s.list[i], true, nil
}

func (s *MemStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.list)
}
