// Package runtime реализует основной цикл агента.
//
// Driver связывает коллабораторов: реестр инструментов (pkg/tools),
// движок диспатча (pkg/dispatch), LLM провайдер (pkg/llm), пайплайн
// хуков (pkg/hooks) и загрузчик файлов (pkg/upload).
//
// Один ход цикла:
//
//  1. Пересчитать видимые инструменты от текущего состояния
//  2. Собрать контекст (системный промпт + определения инструментов + история)
//  3. Применить on_context_build хук
//  4. Запросить модель
//  5. Распарсить и задиспатчить вызов инструмента
//  6. Применить on_compress хук, если контекст превысил порог
//
// Run завершается когда терминальный инструмент возвращает Final,
// либо по исчерпании MaxTurns.
//
// Rule 5: Run сериализует ходы через мьютекс — конкурентные вызовы
// Run на одном Driver безопасны, но выполняются по очереди.
package runtime

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/deepshard/hyphae/pkg/convo"
	"github.com/deepshard/hyphae/pkg/dispatch"
	"github.com/deepshard/hyphae/pkg/events"
	"github.com/deepshard/hyphae/pkg/hooks"
	"github.com/deepshard/hyphae/pkg/llm"
	"github.com/deepshard/hyphae/pkg/tools"
	"github.com/deepshard/hyphae/pkg/upload"
	"github.com/deepshard/hyphae/pkg/utils"
)

// defaultMaxTurns ограничивает цикл, если приложение не задало лимит.
const defaultMaxTurns = 50

// noToolCallNudge отправляется модели, когда ответ не содержит вызова.
const noToolCallNudge = `Your previous reply did not contain a valid tool call. ` +
	`Respond with a single JSON object: {"tool": {"tool_name": "<name>", "args": {...}}}`

// Config — конфигурация Driver. Обязательны State, Registry и Provider.
type Config[S any] struct {
	// State — состояние приложения, передается в предикаты и обработчики.
	State S

	// Registry — реестр инструментов. Driver запечатывает его при создании.
	Registry *tools.Registry[S]

	// Provider — LLM провайдер основного цикла.
	Provider llm.Provider

	// Uploader — загрузчик файлов для ответов с вложениями. Может быть nil:
	// тогда любой инструмент с файлами завершится UploadError.
	Uploader upload.Uploader

	// Hooks — хуки жизненного цикла приложения. Любое поле может быть nil.
	Hooks hooks.Set[S]

	// Emitter — порт событий для UI. Может быть nil.
	Emitter events.Emitter

	// SystemPrompt — статический системный промпт. Приложения с динамическим
	// промптом оставляют его пустым и пересобирают контекст в OnContextBuild.
	SystemPrompt string

	// MaxTurns — максимум ходов за один Run (0 = defaultMaxTurns).
	MaxTurns int

	// CompressAt — порог компрессии контекста в символах (0 = выключено).
	CompressAt int

	// ChatOptions — параметры генерации для основного цикла.
	ChatOptions []llm.GenerateOption
}

// Answer — финальный результат Run.
type Answer struct {
	Text  string
	Files []upload.FileHandle
}

// Driver — основной цикл агента.
type Driver[S any] struct {
	engine       *dispatch.Engine[S]
	registry     *tools.Registry[S]
	provider     llm.Provider
	pipeline     *hooks.Pipeline[S]
	emitter      events.Emitter
	opts         llm.GenerateOptions
	systemPrompt string
	maxTurns     int

	mu        sync.Mutex
	history   *convo.Context
	connected bool
}

// NewDriver создает Driver и запечатывает реестр инструментов.
//
// После этого Register на реестре возвращает ErrRegistrySealed:
// набор инструментов фиксируется на все время жизни Driver.
func NewDriver[S any](cfg Config[S]) (*Driver[S], error) {
	if cfg.Registry == nil {
		return nil, fmt.Errorf("runtime: registry is required")
	}
	if cfg.Provider == nil {
		return nil, fmt.Errorf("runtime: llm provider is required")
	}

	engine, err := dispatch.NewEngine(cfg.Registry, cfg.State, cfg.Uploader)
	if err != nil {
		return nil, fmt.Errorf("runtime: %w", err)
	}

	cfg.Registry.Seal()

	maxTurns := cfg.MaxTurns
	if maxTurns <= 0 {
		maxTurns = defaultMaxTurns
	}

	return &Driver[S]{
		engine:       engine,
		registry:     cfg.Registry,
		provider:     cfg.Provider,
		pipeline:     hooks.NewPipeline(cfg.Hooks, cfg.CompressAt),
		emitter:      cfg.Emitter,
		opts:         llm.NewGenerateOptions(cfg.ChatOptions...),
		systemPrompt: cfg.SystemPrompt,
		maxTurns:     maxTurns,
		history:      convo.New(),
	}, nil
}

// State возвращает состояние приложения.
func (d *Driver[S]) State() S {
	return d.engine.State()
}

// Connect помечает сессию активной и вызывает on_connect хук.
//
// Повторный вызов на активной сессии — no-op.
func (d *Driver[S]) Connect(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.connectLocked(ctx)
}

func (d *Driver[S]) connectLocked(ctx context.Context) error {
	if d.connected {
		return nil
	}
	if err := d.pipeline.Connect(ctx, d.engine.State()); err != nil {
		return err
	}
	d.connected = true
	return nil
}

// Disconnect завершает сессию и вызывает on_disconnect хук.
//
// Повторный вызов на неактивной сессии — no-op.
func (d *Driver[S]) Disconnect(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.connected {
		return nil
	}
	d.connected = false
	return d.pipeline.Disconnect(ctx, d.engine.State())
}

// Run принимает сообщение пользователя и крутит цикл до терминального
// инструмента или исчерпания лимита ходов.
//
// История разговора сохраняется между вызовами Run: следующее сообщение
// пользователя продолжает ту же сессию.
func (d *Driver[S]) Run(ctx context.Context, userMessage string) (Answer, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.connectLocked(ctx); err != nil {
		return Answer{}, err
	}

	d.history.AppendUser(userMessage)
	state := d.engine.State()

	for turn := 1; turn <= d.maxTurns; turn++ {
		d.emit(ctx, events.EventTurnStart, events.TurnData{
			Turn:        turn,
			ContextSize: d.history.Size(),
		})

		// Видимость пересчитывается каждый ход от живого состояния.
		visible := d.registry.Visible(state)

		working := convo.New()
		if d.systemPrompt != "" {
			working.AppendSystem(d.systemPrompt)
		}
		working.AppendSystem(renderToolPrompt(visible))
		working.Messages = append(working.Messages, d.history.Messages...)

		working = d.pipeline.BuildContext(ctx, state, working)

		raw, err := d.provider.Chat(ctx, d.opts.Request(working.Messages))
		if err != nil {
			d.emit(ctx, events.EventError, events.ErrorData{Err: err})
			return Answer{}, fmt.Errorf("runtime: chat turn %d: %w", turn, err)
		}

		req, ok := parseToolCall(raw)
		if !ok {
			// Модель ответила прозой. Напоминаем формат и продолжаем.
			utils.Warn("model reply without tool call", "turn", turn)
			d.emit(ctx, events.EventMessage, events.MessageData{Content: raw})
			d.history.AppendAssistant(raw)
			d.history.AppendUser(noToolCallNudge)
			d.compress(ctx, state)
			continue
		}

		d.emit(ctx, events.EventToolCall, events.ToolCallData{
			ToolName: req.ToolName,
			Args:     fmt.Sprintf("%v", req.Arguments),
		})

		started := time.Now()
		outcome := d.engine.Invoke(ctx, req)

		d.emit(ctx, events.EventToolResult, events.ToolResultData{
			ToolName: req.ToolName,
			Result:   outcome.AgentText(),
			Failed:   outcome.Failed(),
			Duration: time.Since(started),
		})

		d.history.AppendAssistant(raw)

		if outcome.Failed() {
			// Текст ошибки уходит модели: пусть исправляется сама.
			d.history.AppendUser(outcome.AgentText())
			d.compress(ctx, state)
			continue
		}

		if outcome.Success.Final {
			d.history.AppendUser("Final answer delivered to the user.")
			answer := Answer{
				Text:  outcome.Success.Text,
				Files: outcome.Success.Files,
			}
			urls := make([]string, 0, len(answer.Files))
			for _, f := range answer.Files {
				urls = append(urls, f.URL)
			}
			d.emit(ctx, events.EventDone, events.MessageData{
				Content: answer.Text,
				Files:   urls,
			})
			return answer, nil
		}

		d.history.AppendUser("Tool result: " + outcome.AgentText())
		d.compress(ctx, state)
	}

	err := fmt.Errorf("runtime: no final answer after %d turns", d.maxTurns)
	d.emit(ctx, events.EventError, events.ErrorData{Err: err})
	return Answer{}, err
}

// compress прогоняет историю через on_compress при превышении порога.
//
// Вызывается в конце хода, после диспатча, а не между инференсом и
// диспатчем: для модели разницы нет — сжатая история в любом случае
// попадает в контекст только на следующем инференсе.
func (d *Driver[S]) compress(ctx context.Context, state S) {
	before := d.history.Size()
	compressed, did := d.pipeline.MaybeCompress(ctx, state, d.history)
	d.history = compressed
	if did {
		d.emit(ctx, events.EventCompressed, events.CompressedData{
			Before: before,
			After:  d.history.Size(),
		})
	}
}

// emit отправляет событие, если подключен Emitter.
func (d *Driver[S]) emit(ctx context.Context, t events.EventType, data events.EventData) {
	if d.emitter == nil {
		return
	}
	d.emitter.Emit(ctx, events.Event{
		Type:      t,
		Data:      data,
		Timestamp: time.Now(),
	})
}
