// Валидация и приведение аргументов к спецификации инструмента.
package dispatch

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/deepshard/hyphae/pkg/tools"
)

// bindArgs валидирует сырые аргументы запроса против ArgSpec дескриптора
// и возвращает канонический tools.Args.
//
// Правила (§ контракта движка):
//   - необъявленное имя → KindUnknownArgument
//   - отсутствующий обязательный аргумент → KindArgumentType
//   - неприводимое значение → KindArgumentType
//   - пропущенный опциональный аргумент → подставляется Default
func bindArgs[S any](desc *tools.Descriptor[S], raw map[string]any) (tools.Args, *Failure) {
	// 1. Необъявленные имена
	for name := range raw {
		if _, ok := desc.Arg(name); !ok {
			return nil, &Failure{
				Kind:    KindUnknownArgument,
				Message: fmt.Sprintf("tool %q has no argument %q", desc.Name, name),
			}
		}
	}

	// 2. Coercion + defaults в порядке спецификации
	bound := make(tools.Args, len(desc.Args))
	for _, spec := range desc.Args {
		value, supplied := raw[spec.Name]
		if !supplied {
			if spec.Default == nil {
				return nil, &Failure{
					Kind:    KindArgumentType,
					Message: fmt.Sprintf("missing required argument %q for tool %q", spec.Name, desc.Name),
				}
			}
			coerced, err := coerce(spec.Type, spec.Default)
			if err != nil {
				// Default не соответствует заявленному типу — ошибка автора
				// инструмента, но агенту всё равно отвечаем структурированно.
				return nil, &Failure{
					Kind:    KindArgumentType,
					Message: fmt.Sprintf("invalid default for argument %q: %v", spec.Name, err),
				}
			}
			bound[spec.Name] = coerced
			continue
		}

		coerced, err := coerce(spec.Type, value)
		if err != nil {
			return nil, &Failure{
				Kind:    KindArgumentType,
				Message: fmt.Sprintf("argument %q: %v", spec.Name, err),
			}
		}
		bound[spec.Name] = coerced
	}

	return bound, nil
}

// coerce приводит значение из JSON к каноническому Go-типу аргумента.
//
// JSON decoder отдаёт числа как float64 (или json.Number), списки как
// []any — приводим их к string/int/float64/bool/[]string.
func coerce(t tools.ArgType, value any) (any, error) {
	switch t {
	case tools.TypeString:
		s, ok := value.(string)
		if !ok {
			return nil, fmt.Errorf("expected string, got %T", value)
		}
		return s, nil

	case tools.TypeInt:
		switch v := value.(type) {
		case int:
			return v, nil
		case float64:
			if v != math.Trunc(v) {
				return nil, fmt.Errorf("expected integer, got %v", v)
			}
			return int(v), nil
		case json.Number:
			i, err := v.Int64()
			if err != nil {
				return nil, fmt.Errorf("expected integer, got %q", v.String())
			}
			return int(i), nil
		default:
			return nil, fmt.Errorf("expected integer, got %T", value)
		}

	case tools.TypeFloat:
		switch v := value.(type) {
		case float64:
			return v, nil
		case int:
			return float64(v), nil
		case json.Number:
			f, err := v.Float64()
			if err != nil {
				return nil, fmt.Errorf("expected number, got %q", v.String())
			}
			return f, nil
		default:
			return nil, fmt.Errorf("expected number, got %T", value)
		}

	case tools.TypeBool:
		b, ok := value.(bool)
		if !ok {
			return nil, fmt.Errorf("expected boolean, got %T", value)
		}
		return b, nil

	case tools.TypeStringList:
		switch v := value.(type) {
		case []string:
			return append([]string(nil), v...), nil
		case []any:
			list := make([]string, 0, len(v))
			for i, item := range v {
				s, ok := item.(string)
				if !ok {
					return nil, fmt.Errorf("expected string at index %d, got %T", i, item)
				}
				list = append(list, s)
			}
			return list, nil
		default:
			return nil, fmt.Errorf("expected array of strings, got %T", value)
		}

	default:
		return nil, fmt.Errorf("unsupported argument type %v", t)
	}
}
