package raindrop

import (
	"context"
	"net/http"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

type Option func(*Options)

type Options struct {
	BaseURL      string
	MemoryKey    string
	QueryKey     string
	InferenceKey string
	OrgId        string
	UserId       string
	Client       *http.Client
	Context      context.Context
}

func WithBaseURL(url string) Option {
	return func(o *Options) {
		o.BaseURL = url
	}
}

func WithMemoryKey(key string) Option {
	return func(o *Options) {
		o.MemoryKey = key
	}
}

func WithQueryKey(key string) Option {
	return func(o *Options) {
		o.QueryKey = key
	}
}

func WithInferenceKey(key string) Option {
	return func(o *Options) {
		o.InferenceKey = key
	}
}

func WithOrgId(id string) Option {
	return func(o *Options) {
		o.OrgId = id
	}
}

func WithUserId(id string) Option {
	return func(o *Options) {
		o.UserId = id
	}
}

func WithClient(client *http.Client) Option {
	return func(o *Options) {
		o.Client = client
	}
}

func NewOptions(opts ...Option) Options {
	options := Options{
		Client: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		Context: context.Background(),
	}
	for _, opt := range opts {
		opt(&options)
	}
	return options
}
