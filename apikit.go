// Package apikit is the entry point of the APIKit SDK. It builds clients
// from a base URL or from APIKIT_* environment variables.
package apikit

import (
	"github.com/codeartlibs/apikit-go/client"
	"github.com/codeartlibs/apikit-go/config"
)

// New builds a *client.Client for baseURL with default settings.
func New(baseURL string, opts ...client.Option) (*client.Client, error) {
	return client.Build(config.New(baseURL), opts...)
}

// FromEnv builds a *client.Client from the environment, loading envFile
// first when it is not empty. See config.Load for the recognized keys.
func FromEnv(envFile string, opts ...client.Option) (*client.Client, error) {
	cfg, err := config.Load(envFile)
	if err != nil {
		return nil, err
	}

	return client.Build(cfg, opts...)
}

// NewAsync wraps api in the non-blocking variant.
func NewAsync(api client.API, opts ...client.AsyncOption) *client.Async {
	return client.NewAsync(api, opts...)
}
