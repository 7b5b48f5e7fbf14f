package catalog

import (
	"context"
	"sort"
	"strings"
	"sync"
)

type MemStore struct {
	mu     sync.RWMutex
	m      map[int64]Product
	lastID int64
}

func NewMemStore() *MemStore {
	return &MemStore{m: map[int64]Product{}}
}

func (s *MemStore) Ping(ctx context.Context) error { return nil }

func (s *MemStore) List(ctx context.Context, search string) ([]Product, error) {
	needle := strings.ToLower(search)

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Product, 0, len(s.m))
	for _, p := range s.m {
		if needle != "" && !strings.Contains(strings.ToLower(p.Name), needle) {
			continue
		}
		out = append(out, copyProduct(p))
	}

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *MemStore) Create(ctx context.Context, in ProductInput) (Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lastID++
	p := in.product(s.lastID)
	s.m[p.ID] = p
	return copyProduct(p), nil
}

func (s *MemStore) Get(ctx context.Context, id int64) (Product, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.m[id]
	if !ok {
		return Product{}, false, nil
	}
	return copyProduct(p), true, nil
}

func (s *MemStore) Update(ctx context.Context, id int64, in ProductInput) (Product, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.m[id]; !ok {
		return Product{}, false, nil
	}

	p := in.product(id)
	s.m[id] = p
	return copyProduct(p), true, nil
}

func (s *MemStore) Delete(ctx context.Context, id int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.m[id]; !ok {
		return false, nil
	}
	delete(s.m, id)
	return true, nil
}

func copyProduct(p Product) Product {
	p.ImageURL = cloneString(p.ImageURL)
	return p
}
