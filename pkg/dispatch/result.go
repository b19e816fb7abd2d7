// Package dispatch реализует движок диспетчеризации вызовов инструментов.
//
// Движок принимает запрос агента (имя инструмента + аргументы), проверяет
// его против реестра и текущего видимого набора, валидирует аргументы,
// выполняет обработчик и маршалит результат (включая загрузку приложенных
// файлов). Все ошибки уровня вызова возвращаются агенту как tagged variant
// Failure — цикл ходов они не роняют никогда.
//
//   - Rule 3: инструменты только через tools.Registry
//   - Rule 5: single-writer — один активный вызов, мутекс сериализует
//   - Rule 7: паника обработчика гасится на границе движка
package dispatch

import (
	"fmt"

	"github.com/deepshard/hyphae/pkg/upload"
)

// FailureKind — таксономия ошибок уровня одного вызова.
type FailureKind int

const (
	KindUnknownTool FailureKind = iota
	KindToolNotAvailable
	KindUnknownArgument
	KindArgumentType
	KindHandlerError
	KindUploadError
)

// String возвращает строковое представление вида ошибки.
func (k FailureKind) String() string {
	switch k {
	case KindUnknownTool:
		return "unknown_tool"
	case KindToolNotAvailable:
		return "tool_not_available"
	case KindUnknownArgument:
		return "unknown_argument"
	case KindArgumentType:
		return "argument_type"
	case KindHandlerError:
		return "handler_error"
	case KindUploadError:
		return "upload_error"
	default:
		return fmt.Sprintf("unknown(%d)", int(k))
	}
}

// Request — один запрос агента на вызов инструмента.
//
// Arguments — сырые значения из JSON tool call (до coercion).
type Request struct {
	ToolName  string
	Arguments map[string]any
}

// Success — успешный результат вызова.
type Success struct {
	Text  string
	Files []upload.FileHandle

	// Final — сигнал терминального инструмента (RespondToUser):
	// рантайм завершает сессию и доставляет Text пользователю.
	Final bool
}

// Failure — структурированная ошибка вызова, возвращаемая агенту.
type Failure struct {
	Kind    FailureKind
	Message string
}

// AgentText рендерит ошибку в строку для агента: он должен адаптироваться,
// а не завершать сессию.
func (f *Failure) AgentText() string {
	return fmt.Sprintf("Tool call failed (%s): %s", f.Kind, f.Message)
}

// Outcome — tagged variant результата вызова: ровно одно из полей не nil.
type Outcome struct {
	Success *Success
	Failure *Failure
}

// Failed сообщает, провалился ли вызов.
func (o Outcome) Failed() bool {
	return o.Failure != nil
}

// AgentText рендерит исход в строку для истории диалога агента.
func (o Outcome) AgentText() string {
	if o.Failure != nil {
		return o.Failure.AgentText()
	}
	if o.Success != nil {
		return o.Success.Text
	}
	return ""
}

// failure — шорткат для построения Outcome-ошибки.
func failure(kind FailureKind, format string, args ...any) Outcome {
	return Outcome{Failure: &Failure{
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
	}}
}
