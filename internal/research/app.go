package research

import (
	"fmt"
	"time"

	"github.com/deepshard/hyphae/pkg/config"
	"github.com/deepshard/hyphae/pkg/events"
	"github.com/deepshard/hyphae/pkg/llm"
	"github.com/deepshard/hyphae/pkg/llm/openai"
	"github.com/deepshard/hyphae/pkg/notes"
	"github.com/deepshard/hyphae/pkg/runtime"
	"github.com/deepshard/hyphae/pkg/search"
	"github.com/deepshard/hyphae/pkg/tools"
	"github.com/deepshard/hyphae/pkg/upload"
	"github.com/deepshard/hyphae/pkg/utils"
)

// defaultMinDuration — минимальное время самостоятельной работы
// до ответа пользователю, если конфигурация не задала свое.
const defaultMinDuration = 5 * time.Minute

// NewDriver собирает research-агента из конфигурации.
//
// emitter может быть nil (headless режим без UI).
func NewDriver(cfg *config.AppConfig, emitter events.Emitter) (*runtime.Driver[*State], error) {
	chatDef, ok := cfg.GetChatModel("")
	if !ok {
		return nil, fmt.Errorf("research: chat model is not configured")
	}
	provider := openai.NewClient(chatDef)

	var summarizer llm.Provider
	if sumDef, ok := cfg.GetSummarizeModel(); ok {
		summarizer = openai.NewClient(sumDef)
	}

	state, err := newState(cfg)
	if err != nil {
		return nil, err
	}

	registry := tools.NewRegistry[*State]()
	if err := RegisterTools(registry); err != nil {
		return nil, fmt.Errorf("research: %w", err)
	}

	var uploader upload.Uploader
	if cfg.S3.Bucket != "" {
		s3, err := upload.NewS3(cfg.S3, cfg.ImageProcessing)
		if err != nil {
			return nil, fmt.Errorf("research: s3 uploader: %w", err)
		}
		uploader = s3
	}

	driver, err := runtime.NewDriver(runtime.Config[*State]{
		State:        state,
		Registry:     registry,
		Provider:     provider,
		Uploader:     uploader,
		Hooks:        Hooks(summarizer, llm.WithMaxTokens(cfg.Hooks.SummaryMaxTokens)),
		Emitter:      emitter,
		SystemPrompt: systemPrompt,
		MaxTurns:     cfg.App.MaxTurns,
		CompressAt:   cfg.Hooks.CompressAt,
	})
	if err != nil {
		return nil, err
	}
	return driver, nil
}

// newState создает состояние сессии и подключает коллабораторов поиска.
//
// Поисковые движки опциональны: отсутствие ключа отключает движок,
// а не валит приложение.
func newState(cfg *config.AppConfig) (*State, error) {
	minDuration := cfg.Research.MinDuration
	if minDuration <= 0 {
		minDuration = defaultMinDuration
	}

	notesPath := cfg.Research.NotesDB
	if notesPath == "" {
		notesPath = "research-notes.db"
	}
	store, err := notes.Open(notesPath)
	if err != nil {
		return nil, fmt.Errorf("research: notes store: %w", err)
	}

	state := &State{
		Notes:       store,
		StartTime:   time.Now(),
		MinDuration: minDuration,
		WorkDir:     cfg.Research.WorkDir,
	}

	if cfg.Search.Perplexity.APIKey != "" {
		perplexity, err := search.NewPerplexity(cfg.Search.Perplexity)
		if err != nil {
			return nil, fmt.Errorf("research: perplexity: %w", err)
		}
		state.Perplexity = perplexity
	} else {
		utils.Warn("perplexity api key is not set, perplexity_search disabled")
	}

	web, err := search.NewDuckDuckGo(cfg.Search.DuckDuckGo)
	if err != nil {
		return nil, fmt.Errorf("research: duckduckgo: %w", err)
	}
	state.Web = web

	papers, err := search.NewSemanticScholar(cfg.Search.SemanticScholar)
	if err != nil {
		return nil, fmt.Errorf("research: semantic scholar: %w", err)
	}
	state.Papers = papers

	trends, err := search.NewGoogleTrends(cfg.Search.GoogleTrends)
	if err != nil {
		return nil, fmt.Errorf("research: google trends: %w", err)
	}
	state.Trends = trends

	// Модель с алиасом "expert" включает инструмент ask_expert.
	if def, ok := cfg.Models.Definitions["expert"]; ok {
		state.Expert = openai.NewClient(def)
	}

	return state, nil
}
