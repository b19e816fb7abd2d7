// Package search provides reusable clients for external search APIs.
//
// Architecture:
//
// This is an **API SDK**, not just a "dumb" HTTP client. It provides:
//   - HTTP client with retry, rate limiting, and error classification
//   - High-level clients for each engine (Perplexity, DuckDuckGo, Semantic Scholar)
//     that hide engine-specific response wrappers
//
// Usage pattern:
//   - pkg/search - reusable SDK (can be used in any project)
//   - internal/research - thin tool wrappers for LLM function calling
package search

import (
	"context"
)

// Record — один результат поиска в едином формате для всех движков.
type Record struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet"`
	Source  string `json:"source"` // имя движка: "perplexity", "duckduckgo", "semantic_scholar"
	Date    string `json:"date,omitempty"`
}

// Searcher — общий интерфейс поискового движка.
//
// Rule 9: инструменты зависят от интерфейса, тесты подставляют мок.
type Searcher interface {
	// Search выполняет поиск и возвращает до limit результатов.
	Search(ctx context.Context, query string, limit int) ([]Record, error)
}
