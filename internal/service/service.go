package service

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/w-h-a/amigo/generator"
	"github.com/w-h-a/amigo/memory"
	"github.com/w-h-a/amigo/memory/providers/store"
	"github.com/w-h-a/amigo/raindrop"
)

const (
	ProviderRaindrop = "raindrop"
	ProviderMock     = "mock"

	ModeWeeklySummary = "weekly_summary"

	remoteListLimit = 20
)

// Memory routes operations between the raindrop provider and the local
// store. The store is required; the remote client and model are optional.
type Memory struct {
	store  store.Store
	remote *raindrop.Client
	model  generator.Generator
}

// SaveResult reports which provider recorded the item. Remote is populated
// only when Provider is "raindrop".
type SaveResult struct {
	Item     memory.Item
	Provider string
	Remote   raindrop.Envelope
}

// Save builds the canonical item, attempts raindrop only when it is
// configured, and falls back to the local store on any non-success outcome.
// The caller sees an error only when the local write itself fails.
func (m *Memory) Save(ctx context.Context, in memory.Input) (SaveResult, error) {
	item := memory.New(in)

	if m.remote != nil && m.remote.Configured() {
		env := m.remote.Call(ctx, http.MethodPost, "/smartmemory/save", itemPayload(item))
		if env.Succeeded() {
			return SaveResult{Item: item, Provider: ProviderRaindrop, Remote: env}, nil
		}
		slog.WarnContext(
			ctx,
			"raindrop save did not succeed, falling back to local store",
			"code", env.ErrCode,
			"status", env.Status,
		)
	}

	if err := m.store.Append(ctx, item); err != nil {
		return SaveResult{}, fmt.Errorf("failed to persist item locally: %w", err)
	}

	return SaveResult{Item: item, Provider: ProviderMock}, nil
}

// SaveLocal writes straight to the local store, bypassing raindrop.
func (m *Memory) SaveLocal(ctx context.Context, in memory.Input) (memory.Item, error) {
	item := memory.New(in)

	if err := m.store.Append(ctx, item); err != nil {
		return memory.Item{}, fmt.Errorf("failed to persist item locally: %w", err)
	}

	return item, nil
}

// List returns the newest items from the local store, default window 20.
func (m *Memory) List(ctx context.Context, limit int) ([]memory.Item, error) {
	if limit <= 0 {
		limit = defaultRecentLimit
	}
	return m.store.List(ctx, limit)
}

// Find looks an item up by id in the local store.
func (m *Memory) Find(ctx context.Context, id string) (memory.Item, bool, error) {
	return m.store.Find(ctx, id)
}

// RemoteSearch runs the query against raindrop's query family.
func (m *Memory) RemoteSearch(ctx context.Context, query string) (raindrop.Envelope, error) {
	if m.remote == nil || !m.remote.Configured() {
		return raindrop.Envelope{}, raindrop.ErrNotConfigured
	}

	return m.remote.Call(ctx, http.MethodPost, "/smartsql/query", map[string]any{
		"query": query,
		"limit": remoteListLimit,
	}), nil
}

// RemoteRecent lists the newest items from raindrop's memory family.
func (m *Memory) RemoteRecent(ctx context.Context) (raindrop.Envelope, error) {
	if m.remote == nil || !m.remote.Configured() {
		return raindrop.Envelope{}, raindrop.ErrNotConfigured
	}

	return m.remote.Call(ctx, http.MethodPost, "/smartmemory/list", map[string]any{
		"limit": remoteListLimit,
	}), nil
}

// RemoteInfer sends the prompt for the given mode to raindrop's inference
// family, or to the configured model when raindrop is absent.
func (m *Memory) RemoteInfer(ctx context.Context, mode string, query string, contextEntries []string) (raindrop.Envelope, error) {
	prompt := inferencePrompt(mode, query, contextEntries)

	if m.remote != nil && m.remote.Configured() {
		return m.remote.Call(ctx, http.MethodPost, "/smartinference/infer", map[string]any{
			"prompt": prompt,
			"options": map[string]any{
				"temperature": 0.2,
				"maxTokens":   500,
			},
		}), nil
	}

	if m.model != nil {
		text, err := m.model.Generate(ctx, prompt)
		if err != nil {
			return raindrop.Envelope{ErrCode: raindrop.CodeCallFailed, ErrMsg: err.Error()}, nil
		}
		return raindrop.Envelope{
			Parsed: map[string]any{
				"ok":     true,
				"result": map[string]any{"response": text},
			},
		}, nil
	}

	return raindrop.Envelope{}, raindrop.ErrNotConfigured
}

func inferencePrompt(mode string, query string, contextEntries []string) string {
	joined := strings.Join(contextEntries, "\n\n")

	if mode == ModeWeeklySummary {
		return fmt.Sprintf("Write a weekly summary using:\n%s", joined)
	}

	return fmt.Sprintf("Answer the query: %s\nUsing memory:\n%s", query, joined)
}

func itemPayload(item memory.Item) map[string]any {
	return map[string]any{
		"title":   item.Title,
		"content": item.Content,
		"tags":    item.Tags,
		"metadata": map[string]any{
			"categories": item.Metadata.Categories,
			"mood":       item.Metadata.Mood,
			"date":       item.Metadata.Date.Format(time.RFC3339),
			"source":     item.Metadata.Source,
			"audio_url":  item.Metadata.AudioURL,
		},
	}
}

func New(
	store store.Store,
	remote *raindrop.Client,
	model generator.Generator,
) *Memory {
	if store == nil {
		panic("store is required")
	}

	return &Memory{
		store:  store,
		remote: remote,
		model:  model,
	}
}
