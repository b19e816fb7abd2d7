// Реестр для хранения и поиска инструментов.
package tools

import (
	"errors"
	"fmt"
	"sync"
)

var (
	// ErrDuplicateTool — инструмент с таким именем уже зарегистрирован.
	// Фатально для старта приложения: реестр не может быть неоднозначным.
	ErrDuplicateTool = errors.New("tool already registered")

	// ErrToolNameEmpty — пустое имя инструмента.
	ErrToolNameEmpty = errors.New("tool name is empty")

	// ErrNilHandler — дескриптор без обработчика.
	ErrNilHandler = errors.New("tool handler is nil")

	// ErrDuplicateArg — имена аргументов не уникальны внутри дескриптора.
	ErrDuplicateArg = errors.New("duplicate argument name")

	// ErrRegistrySealed — регистрация после старта цикла диспетчеризации.
	ErrRegistrySealed = errors.New("registry is sealed")

	// ErrUnknownTool — инструмент не найден в реестре.
	ErrUnknownTool = errors.New("tool not found")
)

// Registry — хранилище дескрипторов инструментов.
//
// Реестр строится один раз на старте приложения и запечатывается
// (Seal) перед запуском цикла диспетчеризации — после этого он
// read-only. Порядок регистрации стабилен: агент может полагаться
// на порядок представления инструментов.
//
// Thread-safe через sync.RWMutex.
type Registry[S any] struct {
	mu     sync.RWMutex
	byName map[string]*Descriptor[S]
	order  []string
	sealed bool
}

// NewRegistry создает новый пустой реестр.
func NewRegistry[S any]() *Registry[S] {
	return &Registry[S]{
		byName: make(map[string]*Descriptor[S]),
	}
}

// Register добавляет дескриптор в реестр.
//
// Возвращает ErrDuplicateTool если имя занято (реестр сохраняет
// первую регистрацию), ErrRegistrySealed после Seal().
// Сопоставление имён строго регистрозависимое, без fuzzy matching.
func (r *Registry[S]) Register(desc Descriptor[S]) error {
	if desc.Name == "" {
		return ErrToolNameEmpty
	}
	if desc.Handler == nil {
		return fmt.Errorf("%w: %q", ErrNilHandler, desc.Name)
	}
	if err := validateArgs(desc); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.sealed {
		return fmt.Errorf("%w: cannot register %q", ErrRegistrySealed, desc.Name)
	}
	if _, exists := r.byName[desc.Name]; exists {
		return fmt.Errorf("%w: %q", ErrDuplicateTool, desc.Name)
	}

	// Копируем дескриптор: после регистрации он принадлежит реестру
	// и не должен меняться через указатель вызывающего.
	d := desc
	d.Args = append([]ArgSpec(nil), desc.Args...)

	r.byName[d.Name] = &d
	r.order = append(r.order, d.Name)
	return nil
}

// validateArgs проверяет уникальность имён аргументов дескриптора.
func validateArgs[S any](desc Descriptor[S]) error {
	seen := make(map[string]struct{}, len(desc.Args))
	for _, spec := range desc.Args {
		if spec.Name == "" {
			return fmt.Errorf("tool %q: argument name is empty", desc.Name)
		}
		if _, dup := seen[spec.Name]; dup {
			return fmt.Errorf("%w: tool %q, argument %q", ErrDuplicateArg, desc.Name, spec.Name)
		}
		seen[spec.Name] = struct{}{}
	}
	return nil
}

// Seal запечатывает реестр перед стартом цикла диспетчеризации.
//
// После Seal любой Register возвращает ErrRegistrySealed.
// Повторный Seal — no-op.
func (r *Registry[S]) Seal() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sealed = true
}

// Sealed сообщает, запечатан ли реестр.
func (r *Registry[S]) Sealed() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sealed
}

// Get ищет инструмент по точному имени.
func (r *Registry[S]) Get(name string) (*Descriptor[S], error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	desc, ok := r.byName[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTool, name)
	}
	return desc, nil
}

// All возвращает все дескрипторы в порядке регистрации.
func (r *Registry[S]) All() []*Descriptor[S] {
	r.mu.RLock()
	defer r.mu.RUnlock()

	descs := make([]*Descriptor[S], 0, len(r.order))
	for _, name := range r.order {
		descs = append(descs, r.byName[name])
	}
	return descs
}

// Len возвращает количество зарегистрированных инструментов.
func (r *Registry[S]) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}
