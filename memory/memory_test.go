package memory_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/w-h-a/amigo/memory"
)

func TestNewDerivesTitleFromContent(t *testing.T) {
	content := "I realized something important about my habits and routines today"

	item := memory.New(memory.Input{Content: content})

	require.Equal(t, string([]rune(content)[:40]), item.Title)
}

func TestNewKeepsShortContentAsTitle(t *testing.T) {
	item := memory.New(memory.Input{Content: "short note"})

	require.Equal(t, "short note", item.Title)
}

func TestNewPrefersSuppliedTitle(t *testing.T) {
	item := memory.New(memory.Input{Title: "my title", Content: "whatever content"})

	require.Equal(t, "my title", item.Title)
}

func TestNewAppliesDefaults(t *testing.T) {
	before := time.Now().UTC()

	item := memory.New(memory.Input{Content: ""})

	assert.Equal(t, "", item.Content)
	assert.NotNil(t, item.Tags)
	assert.Empty(t, item.Tags)
	assert.NotNil(t, item.Metadata.Categories)
	assert.Nil(t, item.Metadata.Mood)
	assert.Nil(t, item.Metadata.AudioURL)
	assert.Equal(t, "voice", item.Metadata.Source)
	assert.False(t, item.Metadata.Date.Before(before))
	assert.True(t, strings.HasPrefix(item.Id, "mem-"))
}

func TestNewKeepsSuppliedValues(t *testing.T) {
	date := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	item := memory.New(memory.Input{
		Content:  "entry",
		Tags:     []string{"a", "b"},
		Mood:     "happy",
		Date:     date,
		Source:   "typed",
		AudioURL: "https://cdn/audio.mp3",
	})

	require.NotNil(t, item.Metadata.Mood)
	assert.Equal(t, "happy", *item.Metadata.Mood)
	assert.Equal(t, date, item.Metadata.Date)
	assert.Equal(t, "typed", item.Metadata.Source)
	require.NotNil(t, item.Metadata.AudioURL)
	assert.Equal(t, "https://cdn/audio.mp3", *item.Metadata.AudioURL)
}

func TestNewIdsAreUnique(t *testing.T) {
	seen := map[string]bool{}
	for range 100 {
		item := memory.New(memory.Input{Content: "x"})
		require.False(t, seen[item.Id])
		seen[item.Id] = true
	}
}

func TestTruncateRespectsRuneBoundaries(t *testing.T) {
	assert.Equal(t, "héllo", memory.Truncate("héllo", 10))
	assert.Equal(t, "hél", memory.Truncate("héllo", 3))
	assert.Equal(t, "", memory.Truncate("anything", 0))
}
