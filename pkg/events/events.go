// Package events предоставляет интерфейсы для реализации Port & Adapter паттерна.
//
// Это Port (интерфейс) для подписки на события рантайма агента.
// Позволяет подключать любые UI (TUI, Web, CLI) без изменения библиотечной логики.
//
// # Port & Adapter Pattern
//
//	Port — это интерфейс (Emitter, Subscriber), определённый в библиотеке.
//	Adapter — это реализация интерфейса для конкретного UI (TUI, Web, etc).
//
// # Basic Usage
//
//	// В UI:
//	sub := emitter.Subscribe()
//	for event := range sub.Events() {
//	    switch event.Type {
//	    case events.EventToolCall:
//	        ui.showToolActivity(event.Data)
//	    case events.EventDone:
//	        ui.showAnswer(event.Data)
//	    }
//	}
//
// # Thread Safety
//
// Все реализации интерфейсов должны быть thread-safe.
//
// # Rule 11: Context Propagation
//
// Emitter.Emit() принимает context.Context для отмены операции.
package events

import (
	"context"
	"time"
)

// EventType представляет тип события рантайма.
type EventType string

const (
	// EventTurnStart отправляется в начале каждого хода цикла.
	EventTurnStart EventType = "turn_start"

	// EventToolCall отправляется когда рантайм диспатчит инструмент.
	EventToolCall EventType = "tool_call"

	// EventToolResult отправляется когда диспатч вернул результат.
	EventToolResult EventType = "tool_result"

	// EventMessage отправляется когда модель сгенерировала текст без вызова инструмента.
	EventMessage EventType = "message"

	// EventCompressed отправляется после успешной компрессии контекста.
	EventCompressed EventType = "compressed"

	// EventError отправляется при ошибке рантайма.
	EventError EventType = "error"

	// EventDone отправляется когда терминальный инструмент завершил Run.
	EventDone EventType = "done"
)

// EventData — sealed interface для данных события.
//
// Только типы из пакета events могут реализовать этот интерфейс,
// что обеспечивает compile-time type safety.
type EventData interface {
	eventData()
}

// TurnData содержит данные для EventTurnStart.
type TurnData struct {
	Turn        int
	ContextSize int
}

func (TurnData) eventData() {}

// ToolCallData содержит данные о вызове инструмента.
type ToolCallData struct {
	ToolName string
	Args     string
}

func (ToolCallData) eventData() {}

// ToolResultData содержит результат диспатча инструмента.
type ToolResultData struct {
	ToolName string
	Result   string
	Failed   bool
	Duration time.Duration
}

func (ToolResultData) eventData() {}

// MessageData содержит данные для EventMessage и EventDone.
type MessageData struct {
	Content string
	Files   []string // URLs загруженных файлов, только для EventDone
}

func (MessageData) eventData() {}

// CompressedData содержит размеры контекста до и после компрессии.
type CompressedData struct {
	Before int
	After  int
}

func (CompressedData) eventData() {}

// ErrorData содержит данные для EventError.
type ErrorData struct {
	Err error
}

func (ErrorData) eventData() {}

// Event представляет событие рантайма.
//
// Data содержит типизированные данные события (EventData).
// Для каждого EventType существует соответствующий тип данных:
//   - EventTurnStart: TurnData
//   - EventToolCall: ToolCallData (имя инструмента, аргументы)
//   - EventToolResult: ToolResultData (результат диспатча)
//   - EventMessage: MessageData (текст модели)
//   - EventCompressed: CompressedData (размеры до/после)
//   - EventError: ErrorData (ошибка)
//   - EventDone: MessageData (финальный ответ + файлы)
type Event struct {
	Type      EventType
	Data      EventData
	Timestamp time.Time
}

// Emitter — это Port для отправки событий.
//
// Emitter инвертирует зависимость: библиотека (pkg/runtime) зависит
// от этого интерфейса, а не от конкретного UI.
//
// Rule 11: все операции должны уважать context.Context.
type Emitter interface {
	// Emit отправляет событие.
	//
	// Если context отменён, операция должна прерваться.
	Emit(ctx context.Context, event Event)
}

// Subscriber позволяет читать события из канала.
//
// Rule 5: thread-safe операции.
type Subscriber interface {
	// Events возвращает read-only канал событий.
	//
	// Канал закрывается при вызове Close().
	Events() <-chan Event

	// Close закрывает канал событий и освобождает ресурсы.
	Close()
}
