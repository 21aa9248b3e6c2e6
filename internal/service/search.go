package service

import (
	"context"
	"strings"

	"github.com/w-h-a/amigo/memory"
)

const (
	defaultQueryLimit  = 50
	defaultRecentLimit = 20
)

// Search filters the local store with a case-insensitive substring match
// over title+content or any tag, preserving newest-first order. A blank
// query matches nothing.
func (m *Memory) Search(ctx context.Context, query string, limit int) ([]memory.Item, error) {
	if len(strings.TrimSpace(query)) == 0 {
		return []memory.Item{}, nil
	}

	if limit <= 0 {
		limit = defaultQueryLimit
	}

	items, err := m.store.List(ctx, 0)
	if err != nil {
		return nil, err
	}

	q := strings.ToLower(query)

	matched := []memory.Item{}
	for _, item := range items {
		if matches(item, q) {
			matched = append(matched, item)
			if len(matched) == limit {
				break
			}
		}
	}

	return matched, nil
}

func matches(item memory.Item, q string) bool {
	if strings.Contains(strings.ToLower(item.Title+" "+item.Content), q) {
		return true
	}

	for _, tag := range item.Tags {
		if strings.Contains(strings.ToLower(tag), q) {
			return true
		}
	}

	return false
}
