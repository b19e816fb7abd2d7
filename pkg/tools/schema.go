// Рендеринг определений инструментов для LLM.
package tools

// JSONSchema представляет JSON Schema для параметров инструмента.
//
// Используется вместо interface{} для типобезопасности.
// Формат соответствует JSON Schema specification для Function Calling API.
type JSONSchema map[string]any

// Definition описывает инструмент для LLM (Function Calling API format).
type Definition struct {
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Icon        string     `json:"icon,omitempty"`
	Parameters  JSONSchema `json:"parameters"`
}

// Definition строит schema-представление дескриптора для отправки в LLM.
//
// Обязательные аргументы (без Default) попадают в "required".
func (d *Descriptor[S]) Definition() Definition {
	properties := make(JSONSchema, len(d.Args))
	required := make([]string, 0, len(d.Args))

	for _, spec := range d.Args {
		prop := JSONSchema{
			"type":        spec.Type.String(),
			"description": spec.Description,
		}
		if spec.Type == TypeStringList {
			prop["items"] = JSONSchema{"type": "string"}
		}
		if spec.Default != nil {
			prop["default"] = spec.Default
		} else {
			required = append(required, spec.Name)
		}
		properties[spec.Name] = prop
	}

	return Definition{
		Name:        d.Name,
		Description: d.Description,
		Icon:        d.Icon,
		Parameters: JSONSchema{
			"type":       "object",
			"properties": properties,
			"required":   required,
		},
	}
}

// Definitions возвращает определения набора дескрипторов, сохраняя порядок.
func Definitions[S any](descs []*Descriptor[S]) []Definition {
	defs := make([]Definition, 0, len(descs))
	for _, d := range descs {
		defs = append(defs, d.Definition())
	}
	return defs
}
