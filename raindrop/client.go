package raindrop

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

const (
	// Error codes carried in envelopes.
	CodeNotConfigured = "RAINDROP_NOT_CONFIGURED"
	CodeNoValidKey    = "NO_VALID_KEY_FOR_ENDPOINT"
	CodeCallFailed    = "RAINDROP_CALL_FAILED"
)

// ErrNotConfigured is returned by callers that need raindrop but find it
// unusable (placeholder URL or missing credentials).
var ErrNotConfigured = errors.New("raindrop is not configured")

// placeholderMarkers flag base URLs that were copied from documentation and
// never filled in.
var placeholderMarkers = []string{
	"example.com",
	"example.org",
	"your-",
	"placeholder",
	"changeme",
}

// Client talks to the raindrop memory/query/inference provider. Each logical
// service family carries its own credential; configuration is resolved once
// and injected at construction.
type Client struct {
	options Options
}

// Configured reports whether the provider is worth attempting at all: the
// base URL must be present and not a placeholder, and at least one family
// credential must exist.
func (c *Client) Configured() bool {
	url := strings.TrimSpace(c.options.BaseURL)
	if len(url) == 0 {
		return false
	}

	lower := strings.ToLower(url)
	for _, marker := range placeholderMarkers {
		if strings.Contains(lower, marker) {
			return false
		}
	}

	for _, key := range []string{c.options.MemoryKey, c.options.QueryKey, c.options.InferenceKey} {
		if len(strings.TrimSpace(key)) > 0 {
			return true
		}
	}

	return false
}

// Call issues one request against the given operation path and always
// returns an envelope: parsed JSON, raw body plus status, or a local error
// code. Identity fields are injected per family without overwriting
// caller-supplied values.
func (c *Client) Call(ctx context.Context, method string, path string, payload map[string]any) Envelope {
	key, ok := c.keyFor(path)
	if !ok {
		return failure(CodeNoValidKey, fmt.Sprintf("no credential for operation path %q", path))
	}

	body := map[string]any{}
	for k, v := range payload {
		body[k] = v
	}
	for k, v := range c.identityFor(path) {
		if _, exists := body[k]; !exists {
			body[k] = v
		}
	}

	bs, err := json.Marshal(body)
	if err != nil {
		return failure(CodeCallFailed, err.Error())
	}

	req, err := http.NewRequestWithContext(
		ctx,
		method,
		fmt.Sprintf("%s%s", strings.TrimSuffix(c.options.BaseURL, "/"), path),
		bytes.NewReader(bs),
	)
	if err != nil {
		return failure(CodeCallFailed, err.Error())
	}

	req.Header.Add("Authorization", fmt.Sprintf("Bearer %s", key))
	req.Header.Add("Content-Type", "application/json")

	rsp, err := c.options.Client.Do(req)
	if err != nil {
		return failure(CodeCallFailed, err.Error())
	}
	defer rsp.Body.Close()

	text, err := io.ReadAll(rsp.Body)
	if err != nil {
		return failure(CodeCallFailed, err.Error())
	}

	var decoded map[string]any
	if err := json.Unmarshal(text, &decoded); err != nil {
		return raw(string(text), rsp.StatusCode)
	}

	return parsed(decoded, rsp.StatusCode)
}

// keyFor selects the credential for the operation's service family from the
// first path segment.
func (c *Client) keyFor(path string) (string, bool) {
	segment := strings.TrimPrefix(path, "/")
	if idx := strings.Index(segment, "/"); idx >= 0 {
		segment = segment[:idx]
	}

	var key string
	switch segment {
	case "smartmemory":
		key = c.options.MemoryKey
	case "smartsql":
		key = c.options.QueryKey
	case "smartinference":
		key = c.options.InferenceKey
	default:
		return "", false
	}

	if len(strings.TrimSpace(key)) == 0 {
		return "", false
	}

	return key, true
}

// identityFor lists the mandatory identity fields for the operation's
// family. Memory storage is scoped per user; query and inference only need
// the organization.
func (c *Client) identityFor(path string) map[string]string {
	fields := map[string]string{}

	if len(c.options.OrgId) > 0 {
		fields["organization_id"] = c.options.OrgId
	}

	if strings.HasPrefix(strings.TrimPrefix(path, "/"), "smartmemory") && len(c.options.UserId) > 0 {
		fields["user_id"] = c.options.UserId
	}

	return fields
}

func New(opts ...Option) *Client {
	options := NewOptions(opts...)

	c := &Client{
		options: options,
	}

	return c
}
