package elevenlabs

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/w-h-a/amigo/transcriber"
)

const (
	defaultLocation = "https://api.elevenlabs.io/v1/speech-to-text"
	defaultModel    = "scribe_v1"
)

type elevenLabsTranscriber struct {
	options transcriber.Options
}

func (t *elevenLabsTranscriber) Transcribe(ctx context.Context, filename string, audio io.Reader) (transcriber.Transcript, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	partWriter, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return transcriber.Transcript{}, err
	}

	if _, err := io.Copy(partWriter, audio); err != nil {
		return transcriber.Transcript{}, err
	}

	if err := writer.WriteField("model_id", t.options.Model); err != nil {
		return transcriber.Transcript{}, err
	}

	if err := writer.Close(); err != nil {
		return transcriber.Transcript{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.options.Location, body)
	if err != nil {
		return transcriber.Transcript{}, err
	}

	req.Header.Add("xi-api-key", t.options.ApiKey)
	req.Header.Add("Content-Type", writer.FormDataContentType())

	rsp, err := t.options.Client.Do(req)
	if err != nil {
		return transcriber.Transcript{}, err
	}
	defer rsp.Body.Close()

	text, err := io.ReadAll(rsp.Body)
	if err != nil {
		return transcriber.Transcript{}, err
	}

	if rsp.StatusCode >= 400 {
		return transcriber.Transcript{}, fmt.Errorf("status: %s", rsp.Status)
	}

	var parsed map[string]any
	if err := json.Unmarshal(text, &parsed); err != nil {
		parsed = map[string]any{"raw": string(text)}
	}

	return transcriber.Transcript{
		Text: extractText(parsed),
		Raw:  parsed,
	}, nil
}

// extractText probes the fields different provider versions have used for
// the transcript.
func extractText(parsed map[string]any) string {
	for _, key := range []string{"text", "transcript", "result"} {
		if v, ok := parsed[key]; ok {
			if s, ok := v.(string); ok {
				return s
			}
		}
	}
	return ""
}

func NewTranscriber(opts ...transcriber.Option) transcriber.Transcriber {
	options := transcriber.NewOptions(opts...)

	if len(options.Location) == 0 {
		options.Location = defaultLocation
	}

	if len(options.Model) == 0 {
		options.Model = defaultModel
	}

	t := &elevenLabsTranscriber{
		options: options,
	}

	return t
}
