package search

import (
	"context"
	"fmt"
	"strings"

	"github.com/deepshard/hyphae/pkg/config"
)

const perplexityEngineID = "perplexity"

// Perplexity — клиент AI-поиска Perplexity (OpenAI-совместимый chat API).
//
// В отличие от обычных движков возвращает готовый синтезированный ответ
// плюс список источников (citations).
type Perplexity struct {
	client *Client
	cfg    config.SearchEngineConfig
}

// NewPerplexity создает клиент Perplexity из конфигурации.
func NewPerplexity(cfg config.SearchEngineConfig) (*Perplexity, error) {
	cfg = cfg.GetDefaults()
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("search.perplexity.api_key is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.perplexity.ai"
	}
	if cfg.Model == "" {
		cfg.Model = "sonar"
	}

	client, err := NewClient(cfg)
	if err != nil {
		return nil, err
	}
	return &Perplexity{client: client, cfg: cfg}, nil
}

// perplexityRequest — тело запроса chat/completions.
type perplexityRequest struct {
	Model    string              `json:"model"`
	Messages []perplexityMessage `json:"messages"`
}

type perplexityMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// perplexityResponse — ответ chat/completions с citations.
type perplexityResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Citations []string `json:"citations"`
}

// Ask отправляет вопрос и возвращает синтезированный ответ и источники.
func (p *Perplexity) Ask(ctx context.Context, query string) (string, []string, error) {
	req := perplexityRequest{
		Model: p.cfg.Model,
		Messages: []perplexityMessage{
			{Role: "system", Content: "Be precise and concise. Cite your sources."},
			{Role: "user", Content: query},
		},
	}

	var resp perplexityResponse
	err := p.client.Post(ctx, perplexityEngineID, p.cfg.BaseURL,
		p.cfg.RateLimit, p.cfg.BurstLimit, "/chat/completions", req, &resp)
	if err != nil {
		return "", nil, fmt.Errorf("perplexity request: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", nil, fmt.Errorf("perplexity: empty choices in response")
	}

	return resp.Choices[0].Message.Content, resp.Citations, nil
}

// Search реализует Searcher: ответ идет первой записью, источники следом.
func (p *Perplexity) Search(ctx context.Context, query string, limit int) ([]Record, error) {
	answer, citations, err := p.Ask(ctx, query)
	if err != nil {
		return nil, err
	}

	records := []Record{{
		Title:   query,
		Snippet: answer,
		Source:  perplexityEngineID,
	}}
	for i, c := range citations {
		if limit > 0 && len(records) >= limit {
			break
		}
		records = append(records, Record{
			Title:  fmt.Sprintf("Source %d", i+1),
			URL:    strings.TrimSpace(c),
			Source: perplexityEngineID,
		})
	}
	return records, nil
}

var _ Searcher = (*Perplexity)(nil)
