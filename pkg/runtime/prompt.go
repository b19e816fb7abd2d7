package runtime

import (
	"encoding/json"
	"strings"

	"github.com/deepshard/hyphae/pkg/tools"
)

// wireFormatInstructions объясняет модели проволочный формат вызова.
const wireFormatInstructions = `To use a tool, respond with a single JSON object of the form:

{"tool": {"tool_name": "<name>", "args": {"<arg>": <value>}}}

Respond with exactly one tool call per turn. Do not wrap the JSON in markdown fences.
Only the tools listed below are available right now; the list may change between turns.`

// renderToolPrompt собирает системное сообщение с определениями
// видимых инструментов.
//
// Определения сериализуются в JSON Schema формат (pkg/tools/schema.go),
// чтобы модель видела типы, дефолты и обязательность аргументов.
func renderToolPrompt[S any](visible []*tools.Descriptor[S]) string {
	defs := tools.Definitions(visible)

	encoded, err := json.MarshalIndent(defs, "", "  ")
	if err != nil {
		// Definitions строится из статических дескрипторов, marshal
		// не падает на практике; пустой список лучше паники (Rule 7).
		encoded = []byte("[]")
	}

	var sb strings.Builder
	sb.WriteString(wireFormatInstructions)
	sb.WriteString("\n\nAvailable tools:\n")
	sb.Write(encoded)
	return sb.String()
}
