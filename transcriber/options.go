package transcriber

import (
	"context"
	"net/http"
)

type Option func(*Options)

type Options struct {
	Location string
	ApiKey   string
	Model    string
	Client   *http.Client
	Context  context.Context
}

func WithLocation(loc string) Option {
	return func(o *Options) {
		o.Location = loc
	}
}

func WithApiKey(apiKey string) Option {
	return func(o *Options) {
		o.ApiKey = apiKey
	}
}

func WithModel(model string) Option {
	return func(o *Options) {
		o.Model = model
	}
}

func WithClient(client *http.Client) Option {
	return func(o *Options) {
		o.Client = client
	}
}

func NewOptions(opts ...Option) Options {
	options := Options{
		Client:  http.DefaultClient,
		Context: context.Background(),
	}
	for _, opt := range opts {
		opt(&options)
	}
	return options
}
