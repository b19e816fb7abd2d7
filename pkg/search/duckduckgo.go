package search

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"time"

	"github.com/deepshard/hyphae/pkg/config"
)

const duckduckgoEngineID = "duckduckgo"

// vqdPattern извлекает сессионный токен из HTML страницы выдачи.
var vqdPattern = regexp.MustCompile(`vqd=['"]([\d-]+)['"]`)

// DuckDuckGo — клиент веб- и новостного поиска DuckDuckGo.
//
// API требует сессионный токен vqd: сначала запрашивается HTML страница
// выдачи, из нее извлекается токен, затем вызывается JSON endpoint
// (d.js для веба, news.js для новостей).
type DuckDuckGo struct {
	client *Client
	cfg    config.SearchEngineConfig
}

// NewDuckDuckGo создает клиент DuckDuckGo из конфигурации.
//
// API ключа не требует.
func NewDuckDuckGo(cfg config.SearchEngineConfig) (*DuckDuckGo, error) {
	cfg = cfg.GetDefaults()
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://duckduckgo.com"
	}

	client, err := NewClient(cfg)
	if err != nil {
		return nil, err
	}
	return &DuckDuckGo{client: client, cfg: cfg}, nil
}

// fetchVQD запрашивает страницу выдачи и извлекает токен vqd.
func (d *DuckDuckGo) fetchVQD(ctx context.Context, query string) (string, error) {
	pageURL := d.cfg.BaseURL + "/?q=" + url.QueryEscape(query)
	body, err := d.client.GetRaw(ctx, duckduckgoEngineID, pageURL, d.cfg.RateLimit, d.cfg.BurstLimit)
	if err != nil {
		return "", fmt.Errorf("fetch vqd token: %w", err)
	}

	m := vqdPattern.FindSubmatch(body)
	if m == nil {
		return "", fmt.Errorf("vqd token not found in response")
	}
	return string(m[1]), nil
}

// ddgWebResponse — ответ d.js endpoint.
type ddgWebResponse struct {
	Results []struct {
		Title   string `json:"t"`
		URL     string `json:"u"`
		Snippet string `json:"a"`
	} `json:"results"`
}

// Search реализует Searcher для обычного веб-поиска.
func (d *DuckDuckGo) Search(ctx context.Context, query string, limit int) ([]Record, error) {
	vqd, err := d.fetchVQD(ctx, query)
	if err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("vqd", vqd)
	params.Set("o", "json")

	var resp ddgWebResponse
	err = d.client.Get(ctx, duckduckgoEngineID, "https://links.duckduckgo.com",
		d.cfg.RateLimit, d.cfg.BurstLimit, "/d.js", params, &resp)
	if err != nil {
		return nil, fmt.Errorf("duckduckgo web search: %w", err)
	}

	records := make([]Record, 0, len(resp.Results))
	for _, r := range resp.Results {
		if r.URL == "" {
			continue // Служебные записи выдачи (реклама, навигация)
		}
		records = append(records, Record{
			Title:   r.Title,
			URL:     r.URL,
			Snippet: r.Snippet,
			Source:  duckduckgoEngineID,
		})
		if limit > 0 && len(records) >= limit {
			break
		}
	}
	return records, nil
}

// ddgNewsResponse — ответ news.js endpoint.
type ddgNewsResponse struct {
	Results []struct {
		Title   string `json:"title"`
		URL     string `json:"url"`
		Excerpt string `json:"excerpt"`
		Date    int64  `json:"date"` // unix timestamp
		Source  string `json:"source"`
	} `json:"results"`
}

// SearchNews ищет новостные статьи по запросу.
func (d *DuckDuckGo) SearchNews(ctx context.Context, query string, limit int) ([]Record, error) {
	vqd, err := d.fetchVQD(ctx, query)
	if err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("vqd", vqd)
	params.Set("o", "json")

	var resp ddgNewsResponse
	err = d.client.Get(ctx, duckduckgoEngineID, d.cfg.BaseURL,
		d.cfg.RateLimit, d.cfg.BurstLimit, "/news.js", params, &resp)
	if err != nil {
		return nil, fmt.Errorf("duckduckgo news search: %w", err)
	}

	records := make([]Record, 0, len(resp.Results))
	for _, r := range resp.Results {
		rec := Record{
			Title:   r.Title,
			URL:     r.URL,
			Snippet: r.Excerpt,
			Source:  duckduckgoEngineID,
		}
		if r.Date > 0 {
			rec.Date = time.Unix(r.Date, 0).UTC().Format("2006-01-02")
		}
		records = append(records, rec)
		if limit > 0 && len(records) >= limit {
			break
		}
	}
	return records, nil
}

var _ Searcher = (*DuckDuckGo)(nil)
