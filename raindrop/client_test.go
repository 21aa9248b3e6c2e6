package raindrop_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/w-h-a/amigo/raindrop"
)

func TestConfigured(t *testing.T) {
	tests := []struct {
		name string
		opts []raindrop.Option
		want bool
	}{
		{
			name: "empty url",
			opts: []raindrop.Option{raindrop.WithMemoryKey("k")},
			want: false,
		},
		{
			name: "placeholder domain",
			opts: []raindrop.Option{
				raindrop.WithBaseURL("https://api.example.com/mcp"),
				raindrop.WithMemoryKey("k"),
			},
			want: false,
		},
		{
			name: "unfilled template url",
			opts: []raindrop.Option{
				raindrop.WithBaseURL("https://YOUR-org.raindrop.dev"),
				raindrop.WithMemoryKey("k"),
			},
			want: false,
		},
		{
			name: "no credentials",
			opts: []raindrop.Option{
				raindrop.WithBaseURL("https://mcp.raindrop.dev"),
			},
			want: false,
		},
		{
			name: "url plus one credential",
			opts: []raindrop.Option{
				raindrop.WithBaseURL("https://mcp.raindrop.dev"),
				raindrop.WithQueryKey("k"),
			},
			want: true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c := raindrop.New(tc.opts...)
			assert.Equal(t, tc.want, c.Configured())
		})
	}
}

func TestCallSelectsFamilyCredential(t *testing.T) {
	ctx := context.Background()

	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		json.NewEncoder(w).Encode(map[string]any{"ok": true})
	}))
	defer server.Close()

	c := raindrop.New(
		raindrop.WithBaseURL(server.URL),
		raindrop.WithMemoryKey("memory-key"),
		raindrop.WithQueryKey("query-key"),
	)

	env := c.Call(ctx, http.MethodPost, "/smartsql/query", map[string]any{"query": "x"})
	require.True(t, env.Succeeded())
	assert.Equal(t, "Bearer query-key", gotAuth)

	env = c.Call(ctx, http.MethodPost, "/smartmemory/save", nil)
	require.True(t, env.Succeeded())
	assert.Equal(t, "Bearer memory-key", gotAuth)
}

func TestCallWithoutFamilyCredential(t *testing.T) {
	ctx := context.Background()

	c := raindrop.New(
		raindrop.WithBaseURL("https://mcp.raindrop.dev"),
		raindrop.WithMemoryKey("memory-key"),
	)

	env := c.Call(ctx, http.MethodPost, "/smartinference/infer", nil)
	require.True(t, env.Failed())
	assert.Equal(t, raindrop.CodeNoValidKey, env.ErrCode)

	env = c.Call(ctx, http.MethodPost, "/unknown/op", nil)
	require.True(t, env.Failed())
	assert.Equal(t, raindrop.CodeNoValidKey, env.ErrCode)
}

func TestCallInjectsIdentityWithoutOverwriting(t *testing.T) {
	ctx := context.Background()

	var gotBody map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		json.NewDecoder(r.Body).Decode(&body)
		gotBody = body
		json.NewEncoder(w).Encode(map[string]any{"ok": true})
	}))
	defer server.Close()

	c := raindrop.New(
		raindrop.WithBaseURL(server.URL),
		raindrop.WithMemoryKey("k"),
		raindrop.WithQueryKey("k"),
		raindrop.WithOrgId("org-1"),
		raindrop.WithUserId("user-1"),
	)

	c.Call(ctx, http.MethodPost, "/smartmemory/save", map[string]any{"content": "x"})
	assert.Equal(t, "org-1", gotBody["organization_id"])
	assert.Equal(t, "user-1", gotBody["user_id"])

	c.Call(ctx, http.MethodPost, "/smartmemory/save", map[string]any{"organization_id": "caller-org"})
	assert.Equal(t, "caller-org", gotBody["organization_id"])

	c.Call(ctx, http.MethodPost, "/smartsql/query", map[string]any{"query": "x"})
	assert.Equal(t, "org-1", gotBody["organization_id"])
	_, hasUser := gotBody["user_id"]
	assert.False(t, hasUser, "query family should not carry user_id")
}

func TestCallNetworkFailureReturnsEnvelope(t *testing.T) {
	ctx := context.Background()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	c := raindrop.New(
		raindrop.WithBaseURL(server.URL),
		raindrop.WithMemoryKey("k"),
	)

	env := c.Call(ctx, http.MethodPost, "/smartmemory/save", nil)
	require.True(t, env.Failed())
	assert.Equal(t, raindrop.CodeCallFailed, env.ErrCode)
	assert.NotEmpty(t, env.ErrMsg)
	assert.False(t, env.Succeeded())
}

func TestCallNonJSONBodyDegradesToRaw(t *testing.T) {
	ctx := context.Background()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("upstream exploded"))
	}))
	defer server.Close()

	c := raindrop.New(
		raindrop.WithBaseURL(server.URL),
		raindrop.WithMemoryKey("k"),
	)

	env := c.Call(ctx, http.MethodPost, "/smartmemory/save", nil)
	assert.False(t, env.Failed())
	assert.False(t, env.Succeeded())
	assert.Equal(t, "upstream exploded", env.Raw)
	assert.Equal(t, http.StatusBadGateway, env.Status)
}

func TestSucceededPredicate(t *testing.T) {
	tests := []struct {
		name string
		env  raindrop.Envelope
		want bool
	}{
		{"ok true", raindrop.Envelope{Parsed: map[string]any{"ok": true}}, true},
		{"result present", raindrop.Envelope{Parsed: map[string]any{"result": map[string]any{}}}, true},
		{"ok false no result", raindrop.Envelope{Parsed: map[string]any{"ok": false}}, false},
		{"ok truthy but not bool", raindrop.Envelope{Parsed: map[string]any{"ok": "yes"}}, false},
		{"raw body", raindrop.Envelope{Raw: "text", Status: 200}, false},
		{"failure", raindrop.Envelope{ErrCode: raindrop.CodeCallFailed}, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.env.Succeeded())
		})
	}
}
