package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// AppConfig — корневая структура конфигурации.
// Она зеркалит структуру config.yaml.
type AppConfig struct {
	Models          ModelsConfig    `yaml:"models"`
	S3              S3Config        `yaml:"s3"`
	ImageProcessing ImageProcConfig `yaml:"image_processing"`
	Search          SearchConfig    `yaml:"search"`
	Hooks           HooksConfig     `yaml:"hooks"`
	App             AppSpecific     `yaml:"app"`
	Research        ResearchConfig  `yaml:"research"`
}

// ModelsConfig — настройки AI моделей.
type ModelsConfig struct {
	DefaultChat      string              `yaml:"default_chat"`      // Алиас модели для основного цикла
	DefaultSummarize string              `yaml:"default_summarize"` // Алиас модели для компрессии контекста
	Definitions      map[string]ModelDef `yaml:"definitions"`       // Словарь определений моделей
}

// ModelDef — параметры конкретной модели.
type ModelDef struct {
	Provider    string        `yaml:"provider"`   // "openai", "zai", "perplexity" и т.д.
	ModelName   string        `yaml:"model_name"` // Реальное имя в API
	APIKey      string        `yaml:"api_key"`    // Поддерживает ${VAR}
	BaseURL     string        `yaml:"base_url"`   // Custom BaseURL для OpenAI-совместимых API
	MaxTokens   int           `yaml:"max_tokens"`
	Temperature float64       `yaml:"temperature"`
	Timeout     time.Duration `yaml:"timeout"` // Go умеет парсить строки вида "60s", "1m"
}

// S3Config — настройки объектного хранилища для загрузки файлов агента.
type S3Config struct {
	Endpoint  string `yaml:"endpoint"`
	Region    string `yaml:"region"`
	Bucket    string `yaml:"bucket"`
	AccessKey string `yaml:"access_key"` // Поддерживает ${VAR}
	SecretKey string `yaml:"secret_key"` // Поддерживает ${VAR}
	UseSSL    bool   `yaml:"use_ssl"`
	Prefix    string `yaml:"prefix"` // Префикс ключей для загруженных файлов
}

// ImageProcConfig — настройки обработки изображений перед загрузкой.
type ImageProcConfig struct {
	MaxWidth int `yaml:"max_width"`
	Quality  int `yaml:"quality"`
}

// SearchConfig — настройки внешних поисковых коллабораторов.
type SearchConfig struct {
	Perplexity      SearchEngineConfig `yaml:"perplexity"`
	DuckDuckGo      SearchEngineConfig `yaml:"duckduckgo"`
	SemanticScholar SearchEngineConfig `yaml:"semantic_scholar"`
	GoogleTrends    SearchEngineConfig `yaml:"google_trends"`
}

// SearchEngineConfig — параметры одного поискового API.
type SearchEngineConfig struct {
	APIKey        string `yaml:"api_key"`        // Поддерживает ${VAR}
	BaseURL       string `yaml:"base_url"`       // Базовый URL API
	Model         string `yaml:"model"`          // Только для AI-поиска (Perplexity)
	RateLimit     int    `yaml:"rate_limit"`     // Запросов в минуту
	BurstLimit    int    `yaml:"burst_limit"`    // Burst для rate limiter
	RetryAttempts int    `yaml:"retry_attempts"` // Количество retry попыток
	Timeout       string `yaml:"timeout"`        // Timeout для HTTP запросов (например, "30s")
}

// GetDefaults возвращает дефолтные значения для незаполненных полей.
func (c *SearchEngineConfig) GetDefaults() SearchEngineConfig {
	result := *c // Копируем текущие значения

	if result.RateLimit == 0 {
		result.RateLimit = 60 // запросов в минуту
	}
	if result.BurstLimit == 0 {
		result.BurstLimit = 5
	}
	if result.RetryAttempts == 0 {
		result.RetryAttempts = 3
	}
	if result.Timeout == "" {
		result.Timeout = "30s"
	}

	return result
}

// HooksConfig — настройки пайплайна хуков контекста.
type HooksConfig struct {
	// CompressAt — порог размера контекста (в символах), после которого
	// вызывается on_compress хук. 0 отключает компрессию.
	CompressAt int `yaml:"compress_at"`

	// SummaryMaxTokens — лимит токенов для модели-суммаризатора.
	SummaryMaxTokens int `yaml:"summary_max_tokens"`
}

// AppSpecific — общие настройки приложения.
type AppSpecific struct {
	Debug    bool `yaml:"debug"`
	MaxTurns int  `yaml:"max_turns"` // Максимум ходов цикла за один Run (0 = дефолт)
}

// ResearchConfig — настройки research-приложения.
type ResearchConfig struct {
	// MinDuration — минимальное время работы до RespondToUser после
	// follow-up вопроса (например, "5m").
	MinDuration time.Duration `yaml:"min_duration"`

	// NotesDB — путь к sqlite базе заметок.
	NotesDB string `yaml:"notes_db"`

	// WorkDir — директория для WriteFile/ReadFile по умолчанию.
	WorkDir string `yaml:"work_dir"`
}

// Load читает YAML файл, подставляет ENV переменные и возвращает готовую структуру.
func Load(path string) (*AppConfig, error) {
	// 1. Проверяем существование файла
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file not found at: %s", path)
	}

	// 2. Читаем файл целиком
	rawBytes, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// 3. Подставляем переменные окружения.
	// os.ExpandEnv заменяет ${VAR} или $VAR на значение из системы.
	contentWithEnv := os.ExpandEnv(string(rawBytes))

	// 4. Парсим YAML в структуру
	var cfg AppConfig
	if err := yaml.Unmarshal([]byte(contentWithEnv), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse yaml: %w", err)
	}

	// 5. Валидируем критические настройки
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// validate проверяет обязательные поля.
func (c *AppConfig) validate() error {
	if c.Models.DefaultChat != "" {
		if _, ok := c.Models.Definitions[c.Models.DefaultChat]; !ok {
			return fmt.Errorf("default_chat model '%s' is not defined in definitions", c.Models.DefaultChat)
		}
	}
	if c.Models.DefaultSummarize != "" {
		if _, ok := c.Models.Definitions[c.Models.DefaultSummarize]; !ok {
			return fmt.Errorf("default_summarize model '%s' is not defined in definitions", c.Models.DefaultSummarize)
		}
	}
	return nil
}

// Helper методы для удобства доступа (Syntactic sugar)

// GetChatModel возвращает конфигурацию chat-модели по умолчанию или по имени.
func (c *AppConfig) GetChatModel(name string) (ModelDef, bool) {
	if name == "" {
		name = c.Models.DefaultChat
	}
	m, ok := c.Models.Definitions[name]
	return m, ok
}

// GetSummarizeModel возвращает модель для компрессии контекста.
//
// Если default_summarize не задан — падаем обратно на chat-модель.
func (c *AppConfig) GetSummarizeModel() (ModelDef, bool) {
	if c.Models.DefaultSummarize != "" {
		m, ok := c.Models.Definitions[c.Models.DefaultSummarize]
		return m, ok
	}
	return c.GetChatModel("")
}
