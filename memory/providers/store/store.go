package store

import (
	"context"

	"github.com/w-h-a/amigo/memory"
)

// Store is the persistence contract for memory items. Items are ordered
// newest first; Append prepends and nothing ever mutates or removes an
// existing item.
type Store interface {
	Append(ctx context.Context, item memory.Item) error
	List(ctx context.Context, limit int) ([]memory.Item, error)
	Find(ctx context.Context, id string) (memory.Item, bool, error)
}
