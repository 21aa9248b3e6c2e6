package transcriber

import (
	"context"
	"io"
)

// Transcript is the outcome of a speech-to-text call. Raw carries whatever
// the provider returned so callers can relay fields this package does not
// model.
type Transcript struct {
	Text string
	Raw  map[string]any
}

type Transcriber interface {
	Transcribe(ctx context.Context, filename string, audio io.Reader) (Transcript, error)
}
