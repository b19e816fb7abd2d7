// Package hooks реализует пайплайн хуков жизненного цикла агента.
//
// Приложение регистрирует чистые функции от состояния (правило 1 для
// хуков: явный state на входе, новый контекст на выходе), рантайм
// вызывает их в фиксированном порядке:
//
//	OnConnect    — один раз при подключении клиента
//	OnContextBuild — каждый ход, перед запросом к модели
//	OnCompress   — каждый ход после ответа модели, если контекст
//	               превысил порог CompressAt
//	OnDisconnect — один раз при отключении клиента
//
// Все хуки опциональны: nil хук пропускается без ошибки.
package hooks

import (
	"context"
	"fmt"

	"github.com/deepshard/hyphae/pkg/convo"
	"github.com/deepshard/hyphae/pkg/utils"
)

// ContextHook трансформирует контекст разговора.
//
// Получает клон текущего контекста и возвращает новую версию.
// Ошибка хука не прерывает ход: рантайм логирует и продолжает
// с исходным контекстом.
type ContextHook[S any] func(ctx context.Context, state S, c *convo.Context) (*convo.Context, error)

// LifecycleHook вызывается на границах сессии (connect/disconnect).
type LifecycleHook[S any] func(ctx context.Context, state S) error

// Set — полный набор хуков приложения. Любое поле может быть nil.
type Set[S any] struct {
	OnConnect      LifecycleHook[S]
	OnDisconnect   LifecycleHook[S]
	OnContextBuild ContextHook[S]
	OnCompress     ContextHook[S]
}

// Pipeline применяет набор хуков с учетом порога компрессии.
type Pipeline[S any] struct {
	set        Set[S]
	compressAt int
}

// NewPipeline создает пайплайн.
//
// compressAt — порог размера контекста в символах, после которого
// вызывается OnCompress. Ноль отключает компрессию.
func NewPipeline[S any](set Set[S], compressAt int) *Pipeline[S] {
	return &Pipeline[S]{set: set, compressAt: compressAt}
}

// Connect вызывает OnConnect хук, если он задан.
func (p *Pipeline[S]) Connect(ctx context.Context, state S) error {
	if p.set.OnConnect == nil {
		return nil
	}
	if err := p.set.OnConnect(ctx, state); err != nil {
		return fmt.Errorf("on_connect hook: %w", err)
	}
	return nil
}

// Disconnect вызывает OnDisconnect хук, если он задан.
func (p *Pipeline[S]) Disconnect(ctx context.Context, state S) error {
	if p.set.OnDisconnect == nil {
		return nil
	}
	if err := p.set.OnDisconnect(ctx, state); err != nil {
		return fmt.Errorf("on_disconnect hook: %w", err)
	}
	return nil
}

// BuildContext применяет OnContextBuild к клону контекста.
//
// Хук может полностью пересобрать контекст (пересчитать системный
// промпт, подмешать динамические данные из состояния). Ошибка хука
// логируется, ход продолжается с исходным контекстом.
func (p *Pipeline[S]) BuildContext(ctx context.Context, state S, c *convo.Context) *convo.Context {
	if p.set.OnContextBuild == nil {
		return c
	}

	rebuilt, err := p.set.OnContextBuild(ctx, state, c.Clone())
	if err != nil {
		utils.Error("on_context_build hook failed, keeping original context", "error", err)
		return c
	}
	if rebuilt == nil {
		utils.Warn("on_context_build returned nil context, keeping original")
		return c
	}
	return rebuilt
}

// MaybeCompress вызывает OnCompress, если контекст превысил порог.
//
// Возвращает (контекст, был ли он сжат). При ошибке или отказе хука
// возвращается исходный контекст с добавленным уведомлением о том,
// что компрессия не удалась: модель должна знать, что история растет.
func (p *Pipeline[S]) MaybeCompress(ctx context.Context, state S, c *convo.Context) (*convo.Context, bool) {
	if p.set.OnCompress == nil || p.compressAt <= 0 {
		return c, false
	}
	if c.Size() <= p.compressAt {
		return c, false
	}

	utils.Info("context over compression threshold",
		"size", c.Size(),
		"threshold", p.compressAt,
	)

	compressed, err := p.set.OnCompress(ctx, state, c.Clone())
	if err != nil || compressed == nil {
		utils.Error("on_compress hook failed, continuing uncompressed", "error", err)
		fallback := c.Clone()
		fallback.AppendSystem("Note: context compression failed; continuing with full history.")
		return fallback, false
	}

	utils.Info("context compressed",
		"before", c.Size(),
		"after", compressed.Size(),
	)
	return compressed, true
}
