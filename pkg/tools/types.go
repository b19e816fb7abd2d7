// Дескрипторы инструментов и типы аргументов.

package tools

import "context"

// ArgType — перечисление типов аргументов инструмента.
//
// Поддерживаются примитивы и списки строк — этого достаточно для
// Function Calling API и JSON tool call протокола агента.
type ArgType int

const (
	TypeString ArgType = iota
	TypeInt
	TypeFloat
	TypeBool
	TypeStringList
)

// String возвращает имя типа в терминах JSON Schema.
func (t ArgType) String() string {
	switch t {
	case TypeString:
		return "string"
	case TypeInt:
		return "integer"
	case TypeFloat:
		return "number"
	case TypeBool:
		return "boolean"
	case TypeStringList:
		return "array"
	default:
		return "unknown"
	}
}

// ArgSpec описывает один аргумент инструмента.
//
// Инвариант: имена аргументов уникальны внутри одного дескриптора.
// Аргумент без Default обязателен при каждом вызове.
type ArgSpec struct {
	Name        string
	Description string
	Type        ArgType

	// Default — значение для опциональных аргументов.
	// nil означает что аргумент обязателен.
	Default any
}

// Args — провалидированные и приведённые к каноническим Go-типам аргументы.
//
// Заполняется движком диспетчеризации после coercion: геттеры безопасны
// для объявленных аргументов, для необъявленных возвращают zero value.
type Args map[string]any

// String возвращает строковый аргумент.
func (a Args) String(name string) string {
	v, _ := a[name].(string)
	return v
}

// Int возвращает целочисленный аргумент.
func (a Args) Int(name string) int {
	v, _ := a[name].(int)
	return v
}

// Float возвращает числовой аргумент.
func (a Args) Float(name string) float64 {
	v, _ := a[name].(float64)
	return v
}

// Bool возвращает булев аргумент.
func (a Args) Bool(name string) bool {
	v, _ := a[name].(bool)
	return v
}

// StringList возвращает аргумент-список строк.
func (a Args) StringList(name string) []string {
	v, _ := a[name].([]string)
	return v
}

// Result — возвращаемое значение обработчика инструмента.
//
// Text — текст для агента. Files — абсолютные пути файлов, которые
// нужно приложить к ответу (загружаются upload-коллаборатором).
// Final сигнализирует рантайму что сессия завершена и Text адресован
// пользователю (семантика RespondToUser).
type Result struct {
	Text  string
	Files []string
	Final bool
}

// Predicate решает, виден ли инструмент агенту при текущем состоянии.
//
// Контракт: предикат только ЧИТАЕТ состояние. Предикат, мутирующий
// состояние — ошибка вызывающего кода, поведение не определено.
// Паника внутри предиката гасится вычислителем (fail-closed, §Visible).
type Predicate[S any] func(state S) bool

// Handler — конкретная функция, реализующая поведение инструмента.
//
// Выполняется синхронно относительно мутаций состояния: движок
// сериализует вызовы, двух параллельных Handler не бывает.
type Handler[S any] func(ctx context.Context, state S, args Args) (Result, error)

// Descriptor — неизменяемые метаданные одного инструмента.
//
// После регистрации дескриптор принадлежит реестру и не меняется.
// Predicate == nil означает что инструмент виден всегда.
type Descriptor[S any] struct {
	Name        string
	Description string

	// Icon — опциональный тег иконки для клиента (например, "magnifyingglass").
	Icon string

	Args      []ArgSpec
	Predicate Predicate[S]
	Handler   Handler[S]
}

// Arg возвращает спецификацию аргумента по имени.
func (d *Descriptor[S]) Arg(name string) (ArgSpec, bool) {
	for _, spec := range d.Args {
		if spec.Name == name {
			return spec, true
		}
	}
	return ArgSpec{}, false
}
