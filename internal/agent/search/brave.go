package search

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/Wayfarer-core-poc-v1/server/internal/agent/model"
	errx "github.com/Wayfarer-core-poc-v1/server/internal/core/error"
)

const braveURL = "https://api.search.brave.com/res/v1/web/search"

// Brave searches through the Brave web search API.
type Brave struct {
	APIKey  string
	BaseURL string
	Client  *http.Client
}

type braveResponse struct {
	Web struct {
		Results []struct {
			Title         string   `json:"title"`
			URL           string   `json:"url"`
			Description   string   `json:"description"`
			ExtraSnippets []string `json:"extra_snippets"`
		} `json:"results"`
	} `json:"web"`
}

func (b *Brave) Search(ctx context.Context, query string, limit int) ([]model.SearchNote, error) {
	endpoint := braveURL
	if b.BaseURL != "" {
		endpoint = strings.TrimRight(b.BaseURL, "/") + "/res/v1/web/search"
	}
	params := url.Values{}
	params.Set("q", query)
	if limit > 0 {
		params.Set("count", strconv.Itoa(limit))
	}
	params.Set("extra_snippets", "true")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Subscription-Token", b.APIKey)

	resp, err := b.Client.Do(req)
	if err != nil {
		return nil, errx.WrapUpstream(fmt.Errorf("brave: %w", err))
	}
	defer resp.Body.Close()
	if err := checkStatus(ProviderBrave, resp); err != nil {
		return nil, err
	}

	var raw braveResponse
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, errx.WrapUpstream(fmt.Errorf("brave: decode: %w", err))
	}

	out := make([]model.SearchNote, 0, len(raw.Web.Results))
	for i, r := range raw.Web.Results {
		if limit > 0 && i >= limit {
			break
		}
		content := r.Description
		if len(r.ExtraSnippets) > 0 {
			content += "\n" + strings.Join(r.ExtraSnippets, "\n")
		}
		out = append(out, model.SearchNote{
			Title:   r.Title,
			Content: content,
			Source:  ProviderBrave,
			URL:     r.URL,
		})
	}
	return out, nil
}
