// Движок диспетчеризации: lookup → видимость → валидация → выполнение.
package dispatch

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"github.com/deepshard/hyphae/pkg/tools"
	"github.com/deepshard/hyphae/pkg/upload"
	"github.com/deepshard/hyphae/pkg/utils"
)

// Engine выполняет вызовы инструментов против состояния приложения.
//
// Вызовы строго сериализованы: один активный Invoke за раз (single-writer
// дисциплина над состоянием S). Обработчики могут блокироваться на сетевых
// вызовах — движок ждёт их синхронно, внутреннего токена отмены нет,
// отмена приходит только через ctx от транспортного слоя.
type Engine[S any] struct {
	registry *tools.Registry[S]
	state    S
	uploader upload.Uploader

	// mu сериализует Invoke: никакие два обработчика не мутируют
	// состояние параллельно.
	mu sync.Mutex
}

// NewEngine создаёт движок. Uploader может быть nil — тогда инструменты,
// прикладывающие файлы, получают KindUploadError.
func NewEngine[S any](registry *tools.Registry[S], state S, uploader upload.Uploader) (*Engine[S], error) {
	if registry == nil {
		return nil, fmt.Errorf("registry is required")
	}
	return &Engine[S]{
		registry: registry,
		state:    state,
		uploader: uploader,
	}, nil
}

// State возвращает состояние приложения (для рантайма и тестов).
func (e *Engine[S]) State() S {
	return e.state
}

// Invoke выполняет один запрос агента и возвращает структурированный исход.
//
// Шаги контракта:
//  1. Точный lookup имени в реестре → KindUnknownTool
//  2. Пересчёт видимого набора на ТЕКУЩЕМ состоянии → KindToolNotAvailable
//     (защита от вызова инструмента, показанного в устаревшем ходе)
//  3. Валидация и coercion аргументов (bind.go)
//  4. Выполнение обработчика; паника/ошибка → KindHandlerError
//  5. Маршалинг результата, включая загрузку файлов (marshal.go)
//
// Ошибка вызова никогда не роняет цикл: следующий Invoke работает как обычно.
func (e *Engine[S]) Invoke(ctx context.Context, req Request) Outcome {
	e.mu.Lock()
	defer e.mu.Unlock()

	start := time.Now()

	// 1. Lookup: строго регистрозависимое совпадение имени
	desc, err := e.registry.Get(req.ToolName)
	if err != nil {
		return failure(KindUnknownTool, "no tool named %q is registered", req.ToolName)
	}

	// 2. Видимость пересчитывается на каждом вызове, без кэша:
	// предикаты могут зависеть от времени и любых полей состояния.
	if !e.currentlyVisible(desc.Name) {
		return failure(KindToolNotAvailable,
			"tool %q exists but is not available in the current state", desc.Name)
	}

	// 3. Аргументы
	args, bindFail := bindArgs(desc, req.Arguments)
	if bindFail != nil {
		return Outcome{Failure: bindFail}
	}

	// 4. Обработчик
	result, handlerErr := e.runHandler(ctx, desc, args)
	if handlerErr != nil {
		utils.Warn("Tool handler failed",
			"tool", desc.Name,
			"duration_ms", time.Since(start).Milliseconds(),
			"error", handlerErr,
		)
		return failure(KindHandlerError, "%v", handlerErr)
	}

	// 5. Маршалинг (включая загрузку приложенных файлов)
	outcome := e.marshal(ctx, result)

	utils.Debug("Tool invoked",
		"tool", desc.Name,
		"duration_ms", time.Since(start).Milliseconds(),
		"failed", outcome.Failed(),
	)
	return outcome
}

// currentlyVisible проверяет вхождение инструмента в видимый набор.
func (e *Engine[S]) currentlyVisible(name string) bool {
	for _, d := range e.registry.Visible(e.state) {
		if d.Name == name {
			return true
		}
	}
	return false
}

// runHandler выполняет обработчик, гася панику на границе движка.
//
// Rule 7: паника внутри обработчика не имеет права уронить цикл ходов.
func (e *Engine[S]) runHandler(ctx context.Context, desc *tools.Descriptor[S], args tools.Args) (result tools.Result, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			utils.Error("Tool handler panicked",
				"tool", desc.Name,
				"panic", rec,
				"stack", string(debug.Stack()),
			)
			err = fmt.Errorf("handler panicked: %v", rec)
		}
	}()

	return desc.Handler(ctx, e.state, args)
}
