// Вычисление видимого набора инструментов по предикатам.
package tools

import (
	"github.com/deepshard/hyphae/pkg/utils"
)

// Visible возвращает инструменты, доступные агенту при данном состоянии.
//
// Детерминированная чистая функция состояния на момент вызова:
// результат НИКОГДА не кэшируется между ходами — предикаты могут
// зависеть от времени и любых полей состояния.
//
// Правила:
//   - Predicate == nil → инструмент виден всегда
//   - Predicate(state) == true → виден
//   - паника внутри предиката → гасится, логируется, инструмент
//     скрыт на этот ход (fail-closed)
//
// Порядок результата — порядок регистрации.
func (r *Registry[S]) Visible(state S) []*Descriptor[S] {
	all := r.All()

	visible := make([]*Descriptor[S], 0, len(all))
	for _, desc := range all {
		if evalPredicate(desc, state) {
			visible = append(visible, desc)
		}
	}
	return visible
}

// evalPredicate вычисляет предикат одного дескриптора fail-closed.
func evalPredicate[S any](desc *Descriptor[S], state S) (visible bool) {
	if desc.Predicate == nil {
		return true
	}

	defer func() {
		if rec := recover(); rec != nil {
			// Fail-closed: упавший предикат скрывает инструмент,
			// ошибка не доходит до агента — инструмент не вызывался.
			utils.Error("Tool predicate panicked, hiding tool for this turn",
				"tool", desc.Name,
				"panic", rec,
			)
			visible = false
		}
	}()

	return desc.Predicate(state)
}
