package memory

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

const (
	titleLimit = 40

	defaultSource = "voice"
)

// Metadata carries the structured attributes of an item. Mood and AudioURL
// are nullable so that absent values persist as JSON null.
type Metadata struct {
	Categories []string  `json:"categories"`
	Mood       *string   `json:"mood"`
	Date       time.Time `json:"date"`
	Source     string    `json:"source"`
	AudioURL   *string   `json:"audio_url"`
}

// Item is the sole persisted entity: a single stored text entry with tags
// and metadata. Ids are assigned at creation time and never reassigned.
type Item struct {
	Id       string   `json:"id"`
	Title    string   `json:"title"`
	Content  string   `json:"content"`
	Tags     []string `json:"tags"`
	Metadata Metadata `json:"metadata"`
}

// Input is the raw material for an item before canonicalization.
type Input struct {
	Title      string
	Content    string
	Tags       []string
	Categories []string
	Mood       string
	Date       time.Time
	Source     string
	AudioURL   string
}

// New canonicalizes an input into an item: a missing title is derived from
// the first 40 characters of content, date defaults to now, source defaults
// to "voice". Empty content is valid.
func New(in Input) Item {
	title := in.Title
	if len(title) == 0 {
		title = Truncate(in.Content, titleLimit)
	}

	tags := in.Tags
	if tags == nil {
		tags = []string{}
	}

	categories := in.Categories
	if categories == nil {
		categories = []string{}
	}

	var mood *string
	if len(in.Mood) > 0 {
		mood = &in.Mood
	}

	date := in.Date
	if date.IsZero() {
		date = time.Now().UTC()
	}

	source := in.Source
	if len(source) == 0 {
		source = defaultSource
	}

	var audioURL *string
	if len(in.AudioURL) > 0 {
		audioURL = &in.AudioURL
	}

	return Item{
		Id:      newId(),
		Title:   title,
		Content: in.Content,
		Tags:    tags,
		Metadata: Metadata{
			Categories: categories,
			Mood:       mood,
			Date:       date,
			Source:     source,
			AudioURL:   audioURL,
		},
	}
}

// Truncate cuts s to at most limit runes, never splitting a rune.
func Truncate(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}

// newId produces ids that sort by creation order, with a uuid fragment to
// disambiguate same-nanosecond creations.
func newId() string {
	return fmt.Sprintf("mem-%d-%s", time.Now().UTC().UnixNano(), uuid.NewString()[:8])
}
