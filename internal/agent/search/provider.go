// Package search adapts web search APIs to model.SearchProvider.
package search

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/Wayfarer-core-poc-v1/server/internal/agent/model"
	errx "github.com/Wayfarer-core-poc-v1/server/internal/core/error"
)

const (
	ProviderSerper = "serper"
	ProviderBrave  = "brave"
)

var ErrUnsupportedProvider = errors.New("unsupported search provider")

// New builds the configured provider. A nil client uses a client with cfg.Timeout.
func New(cfg model.SearchConfig, client *http.Client) (model.SearchProvider, error) {
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("SEARCH_API_KEY is required: %w", errx.ErrNotConfigured)
	}
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case "", ProviderSerper:
		return &Serper{APIKey: cfg.APIKey, BaseURL: cfg.BaseURL, Client: client}, nil
	case ProviderBrave:
		return &Brave{APIKey: cfg.APIKey, BaseURL: cfg.BaseURL, Client: client}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedProvider, cfg.Provider)
	}
}

// checkStatus turns a non-2xx response into an upstream error carrying a body excerpt.
func checkStatus(provider string, resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	return errx.WrapUpstream(fmt.Errorf("%s: status %d: %s", provider, resp.StatusCode, strings.TrimSpace(string(body))))
}
