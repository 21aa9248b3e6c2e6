package memorystore_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/w-h-a/amigo/memory"
	memorystore "github.com/w-h-a/amigo/memory/providers/store/memory"
)

func TestAppendListFind(t *testing.T) {
	ctx := context.Background()
	s := memorystore.NewStore()

	first := memory.New(memory.Input{Content: "first"})
	second := memory.New(memory.Input{Content: "second"})

	require.NoError(t, s.Append(ctx, first))
	require.NoError(t, s.Append(ctx, second))

	items, err := s.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, second.Id, items[0].Id)

	items, err = s.List(ctx, 1)
	require.NoError(t, err)
	require.Len(t, items, 1)

	found, ok, err := s.Find(ctx, first.Id)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "first", found.Content)
}

func TestListReturnsCopies(t *testing.T) {
	ctx := context.Background()
	s := memorystore.NewStore()

	require.NoError(t, s.Append(ctx, memory.New(memory.Input{Content: "original"})))

	items, err := s.List(ctx, 0)
	require.NoError(t, err)
	items[0].Content = "mutated"

	again, err := s.List(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, "original", again[0].Content)
}
