package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/Wayfarer-core-poc-v1/server/internal/agent/model"
	errx "github.com/Wayfarer-core-poc-v1/server/internal/core/error"
)

const serperURL = "https://google.serper.dev/search"

// Serper searches through serper.dev (Google results).
type Serper struct {
	APIKey  string
	BaseURL string
	Client  *http.Client
}

type serperResponse struct {
	Organic []struct {
		Title    string `json:"title"`
		Link     string `json:"link"`
		Snippet  string `json:"snippet"`
		Reviews  int    `json:"ratingCount"`
		Sitelink []struct {
			Title string `json:"title"`
		} `json:"sitelinks"`
	} `json:"organic"`
}

func (s *Serper) Search(ctx context.Context, query string, limit int) ([]model.SearchNote, error) {
	body, err := json.Marshal(map[string]any{"q": query, "num": limit})
	if err != nil {
		return nil, err
	}
	url := serperURL
	if s.BaseURL != "" {
		url = strings.TrimRight(s.BaseURL, "/") + "/search"
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("X-API-KEY", s.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.Client.Do(req)
	if err != nil {
		return nil, errx.WrapUpstream(fmt.Errorf("serper: %w", err))
	}
	defer resp.Body.Close()
	if err := checkStatus(ProviderSerper, resp); err != nil {
		return nil, err
	}

	var raw serperResponse
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, errx.WrapUpstream(fmt.Errorf("serper: decode: %w", err))
	}

	out := make([]model.SearchNote, 0, len(raw.Organic))
	for i, r := range raw.Organic {
		if limit > 0 && i >= limit {
			break
		}
		content := r.Snippet
		if len(r.Sitelink) > 0 {
			titles := make([]string, 0, len(r.Sitelink))
			for _, sl := range r.Sitelink {
				titles = append(titles, sl.Title)
			}
			content += "\n" + strings.Join(titles, ", ")
		}
		out = append(out, model.SearchNote{
			Title:   r.Title,
			Content: content,
			Likes:   model.Likes(r.Reviews),
			Source:  ProviderSerper,
			URL:     r.Link,
		})
	}
	return out, nil
}
