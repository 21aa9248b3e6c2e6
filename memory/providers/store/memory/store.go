package memorystore

import (
	"context"
	"sync"

	"github.com/w-h-a/amigo/memory"
	"github.com/w-h-a/amigo/memory/providers/store"
)

type memoryStore struct {
	options store.Options
	items   []memory.Item
	mtx     sync.RWMutex
}

func (s *memoryStore) Append(ctx context.Context, item memory.Item) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	s.items = append([]memory.Item{item}, s.items...)

	return nil
}

func (s *memoryStore) List(ctx context.Context, limit int) ([]memory.Item, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	n := len(s.items)
	if limit > 0 && limit < n {
		n = limit
	}

	cpy := make([]memory.Item, n)
	copy(cpy, s.items[:n])

	return cpy, nil
}

func (s *memoryStore) Find(ctx context.Context, id string) (memory.Item, bool, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	for _, item := range s.items {
		if item.Id == id {
			return item, true, nil
		}
	}

	return memory.Item{}, false, nil
}

func NewStore(opts ...store.Option) store.Store {
	options := store.NewOptions(opts...)

	s := &memoryStore{
		options: options,
		items:   []memory.Item{},
		mtx:     sync.RWMutex{},
	}

	return s
}
