package service

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/w-h-a/amigo/memory"
)

const (
	summaryWindow    = 20
	topCount         = 3
	learningPreview  = 150
	answerPreview    = 140
	maxAnswerMatches = 8

	neutralMood = "neutral"

	// NoMatches is the sentinel answer when nothing in the recent window
	// matches the query.
	NoMatches = "no matches found"
)

// learningKeywords is a deliberately blunt substring heuristic: it matches
// "lesson" inside unrelated words too.
var learningKeywords = []string{"learn", "realize", "understand", "lesson"}

var noThemesPlaceholder = "No clear themes yet - keep capturing memories"

var nextSteps = []string{
	"Keep logging one memory a day",
	"Revisit entries from your top theme",
	"Set aside time to act on this week's learnings",
}

// WeeklySummary is the structured digest over the recent window.
type WeeklySummary struct {
	Themes       []string `json:"themes"`
	MoodSummary  []string `json:"mood_summary"`
	TopLearnings []string `json:"top_learnings"`
	NextSteps    []string `json:"next_steps"`
}

// WeeklyDigest aggregates the newest 20 items from the local store.
func (m *Memory) WeeklyDigest(ctx context.Context) (WeeklySummary, error) {
	items, err := m.store.List(ctx, summaryWindow)
	if err != nil {
		return WeeklySummary{}, err
	}

	return buildDigest(items), nil
}

// Answer scans the same recent window for substring matches in
// title+content and formats up to 8 of them as bullet lines.
func (m *Memory) Answer(ctx context.Context, query string) (string, error) {
	items, err := m.store.List(ctx, summaryWindow)
	if err != nil {
		return "", err
	}

	q := strings.ToLower(strings.TrimSpace(query))

	lines := []string{}
	for _, item := range items {
		if len(q) == 0 || !strings.Contains(strings.ToLower(item.Title+" "+item.Content), q) {
			continue
		}
		lines = append(lines, fmt.Sprintf("- %s: %s", item.Title, memory.Truncate(item.Content, answerPreview)))
		if len(lines) == maxAnswerMatches {
			break
		}
	}

	if len(lines) == 0 {
		return NoMatches, nil
	}

	return strings.Join(lines, "\n"), nil
}

func buildDigest(items []memory.Item) WeeklySummary {
	themes := countCategories(items).top(topCount)
	if len(themes) == 0 {
		themes = []string{noThemesPlaceholder}
	}

	moods := countMoods(items)
	moodSummary := []string{}
	for _, mood := range moods.top(topCount) {
		moodSummary = append(moodSummary, fmt.Sprintf("%s (%d)", mood, moods.counts[mood]))
	}

	learnings := []string{}
	for _, item := range items {
		if !mentionsLearning(item.Content) {
			continue
		}
		learnings = append(learnings, memory.Truncate(item.Content, learningPreview))
		if len(learnings) == topCount {
			break
		}
	}

	return WeeklySummary{
		Themes:       themes,
		MoodSummary:  moodSummary,
		TopLearnings: learnings,
		NextSteps:    nextSteps,
	}
}

func countCategories(items []memory.Item) *counter {
	c := newCounter()
	for _, item := range items {
		for _, category := range item.Metadata.Categories {
			c.add(category)
		}
	}
	return c
}

func countMoods(items []memory.Item) *counter {
	c := newCounter()
	for _, item := range items {
		mood := neutralMood
		if item.Metadata.Mood != nil && len(*item.Metadata.Mood) > 0 {
			mood = *item.Metadata.Mood
		}
		c.add(mood)
	}
	return c
}

func mentionsLearning(content string) bool {
	lower := strings.ToLower(content)
	for _, kw := range learningKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// counter tallies strings while remembering first-encountered order so that
// ties break stably.
type counter struct {
	counts map[string]int
	order  []string
}

func newCounter() *counter {
	return &counter{counts: map[string]int{}}
}

func (c *counter) add(key string) {
	if _, seen := c.counts[key]; !seen {
		c.order = append(c.order, key)
	}
	c.counts[key]++
}

func (c *counter) top(n int) []string {
	keys := append([]string(nil), c.order...)

	sort.SliceStable(keys, func(i, j int) bool {
		return c.counts[keys[i]] > c.counts[keys[j]]
	})

	if len(keys) > n {
		keys = keys[:n]
	}

	return keys
}
