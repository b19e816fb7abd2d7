package runtime

import (
	"encoding/json"

	"github.com/deepshard/hyphae/pkg/dispatch"
	"github.com/deepshard/hyphae/pkg/utils"
)

// toolCallEnvelope — проволочный формат вызова инструмента.
//
// Модель обязана отвечать JSON объектом вида:
//
//	{"tool": {"tool_name": "take_note", "args": {"content": "..."}}}
type toolCallEnvelope struct {
	Tool *struct {
		ToolName string         `json:"tool_name"`
		Args     map[string]any `json:"args"`
	} `json:"tool"`
}

// parseToolCall извлекает вызов инструмента из сырого ответа модели.
//
// Модели оборачивают JSON в markdown блоки и сопровождают прозой,
// поэтому сначала чистим блок, затем ищем первый сбалансированный
// JSON объект. Возвращает (запрос, true) при успехе.
func parseToolCall(raw string) (dispatch.Request, bool) {
	cleaned := utils.CleanJsonBlock(raw)

	candidate := utils.ExtractJsonObject(cleaned)
	if candidate == "" {
		return dispatch.Request{}, false
	}

	var envelope toolCallEnvelope
	if err := json.Unmarshal([]byte(candidate), &envelope); err != nil {
		utils.Debug("tool call candidate is not valid json", "error", err)
		return dispatch.Request{}, false
	}
	if envelope.Tool == nil || envelope.Tool.ToolName == "" {
		return dispatch.Request{}, false
	}

	args := envelope.Tool.Args
	if args == nil {
		args = map[string]any{}
	}
	return dispatch.Request{
		ToolName:  envelope.Tool.ToolName,
		Arguments: args,
	}, true
}
