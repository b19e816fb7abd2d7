package search

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/deepshard/hyphae/pkg/config"
)

const semanticScholarEngineID = "semantic_scholar"

// SemanticScholar — клиент Semantic Scholar Graph API для поиска научных статей.
//
// Работает без API ключа (с жестким rate limit на стороне API),
// ключ в конфигурации снимает ограничение.
type SemanticScholar struct {
	client *Client
	cfg    config.SearchEngineConfig
}

// NewSemanticScholar создает клиент Semantic Scholar из конфигурации.
func NewSemanticScholar(cfg config.SearchEngineConfig) (*SemanticScholar, error) {
	cfg = cfg.GetDefaults()
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.semanticscholar.org/graph/v1"
	}

	client, err := NewClient(cfg)
	if err != nil {
		return nil, err
	}
	// Graph API принимает ключ в заголовке x-api-key, не в Authorization
	client.SetAuthHeader("x-api-key")
	return &SemanticScholar{client: client, cfg: cfg}, nil
}

// paperSearchResponse — ответ /paper/search endpoint.
type paperSearchResponse struct {
	Total int `json:"total"`
	Data  []struct {
		PaperID  string `json:"paperId"`
		Title    string `json:"title"`
		Abstract string `json:"abstract"`
		Year     int    `json:"year"`
		URL      string `json:"url"`
		Authors  []struct {
			Name string `json:"name"`
		} `json:"authors"`
	} `json:"data"`
}

// Search реализует Searcher для поиска научных публикаций.
func (s *SemanticScholar) Search(ctx context.Context, query string, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 10
	}

	params := url.Values{}
	params.Set("query", query)
	params.Set("limit", strconv.Itoa(limit))
	params.Set("fields", "title,abstract,year,url,authors")

	var resp paperSearchResponse
	err := s.client.Get(ctx, semanticScholarEngineID, s.cfg.BaseURL,
		s.cfg.RateLimit, s.cfg.BurstLimit, "/paper/search", params, &resp)
	if err != nil {
		return nil, fmt.Errorf("semantic scholar search: %w", err)
	}

	records := make([]Record, 0, len(resp.Data))
	for _, p := range resp.Data {
		snippet := p.Abstract
		if len(p.Authors) > 0 {
			byline := p.Authors[0].Name
			if len(p.Authors) > 1 {
				byline += " et al."
			}
			snippet = byline + ": " + snippet
		}

		rec := Record{
			Title:   p.Title,
			URL:     p.URL,
			Snippet: snippet,
			Source:  semanticScholarEngineID,
		}
		if p.Year > 0 {
			rec.Date = strconv.Itoa(p.Year)
		}
		records = append(records, rec)
	}
	return records, nil
}

var _ Searcher = (*SemanticScholar)(nil)
