package file

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/w-h-a/amigo/memory"
	"github.com/w-h-a/amigo/memory/providers/store"
)

// document is the on-disk shape: {"items": [...]}, newest item first.
type document struct {
	Items []memory.Item `json:"items"`
}

// fileStore keeps the whole document in memory behind a single-writer lock
// and rewrites the backing file wholesale on every mutation.
type fileStore struct {
	options store.Options
	items   []memory.Item
	loaded  bool
	mtx     sync.Mutex
}

func (s *fileStore) Append(ctx context.Context, item memory.Item) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if err := s.load(ctx); err != nil {
		return err
	}

	s.items = append([]memory.Item{item}, s.items...)

	if err := s.persist(); err != nil {
		// keep the in-memory view consistent with disk
		s.items = s.items[1:]
		return err
	}

	return nil
}

func (s *fileStore) List(ctx context.Context, limit int) ([]memory.Item, error) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if err := s.load(ctx); err != nil {
		return nil, err
	}

	n := len(s.items)
	if limit > 0 && limit < n {
		n = limit
	}

	cpy := make([]memory.Item, n)
	copy(cpy, s.items[:n])

	return cpy, nil
}

func (s *fileStore) Find(ctx context.Context, id string) (memory.Item, bool, error) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if err := s.load(ctx); err != nil {
		return memory.Item{}, false, err
	}

	for _, item := range s.items {
		if item.Id == id {
			return item, true, nil
		}
	}

	return memory.Item{}, false, nil
}

// load reads the backing document once, creating it empty if absent. A
// corrupt document is reported and treated as empty rather than propagated.
func (s *fileStore) load(ctx context.Context) error {
	if s.loaded {
		return nil
	}

	path := s.options.Location

	if _, err := os.Stat(path); os.IsNotExist(err) {
		s.items = []memory.Item{}
		s.loaded = true
		return s.persist()
	}

	bs, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read store document: %w", err)
	}

	var doc document
	if err := json.Unmarshal(bs, &doc); err != nil {
		slog.WarnContext(ctx, "store document is corrupt, starting empty", "path", path, "error", err)
		doc.Items = []memory.Item{}
	}

	if doc.Items == nil {
		doc.Items = []memory.Item{}
	}

	s.items = doc.Items
	s.loaded = true

	return nil
}

// persist serializes the full document and swaps it into place via rename so
// other readers never observe a partial write.
func (s *fileStore) persist() error {
	path := s.options.Location

	if dir := filepath.Dir(path); len(dir) > 0 {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create store directory: %w", err)
		}
	}

	bs, err := json.MarshalIndent(document{Items: s.items}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize store document: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, bs, 0o644); err != nil {
		return fmt.Errorf("failed to write store document: %w", err)
	}

	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("failed to replace store document: %w", err)
	}

	return nil
}

func NewStore(opts ...store.Option) store.Store {
	options := store.NewOptions(opts...)

	s := &fileStore{
		options: options,
		mtx:     sync.Mutex{},
	}

	return s
}
