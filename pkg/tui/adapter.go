// Package tui предоставляет reusable helpers для подключения Bubble Tea TUI к рантайму.
//
// Port & Adapter паттерн:
//   - pkg/events.* — Port (интерфейсы)
//   - pkg/tui.* — Adapter helpers (переиспользуемые утилиты)
//
// Rule 6: только reusable код, без app-specific логики.
package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/deepshard/hyphae/pkg/events"
)

// EventMsg конвертирует events.Event в Bubble Tea сообщение.
//
// Используется в Bubble Tea Update() для обработки событий рантайма.
type EventMsg events.Event

// ReceiveEventCmd возвращает Bubble Tea Cmd для чтения событий из Subscriber.
//
// Функция-конвертер вызывается для каждого полученного события и должна
// возвращать Bubble Tea сообщение.
//
// Пример использования в Bubble Tea Model:
//
//	func (m model) Init() tea.Cmd {
//	    return tui.ReceiveEventCmd(subscriber, func(evt events.Event) tea.Msg {
//	        return EventMsg(evt)
//	    })
//	}
func ReceiveEventCmd(sub events.Subscriber, converter func(events.Event) tea.Msg) tea.Cmd {
	return func() tea.Msg {
		event, ok := <-sub.Events()
		if !ok {
			return tea.QuitMsg{}
		}
		return converter(event)
	}
}

// WaitForEvent возвращает Cmd который ждёт следующего события.
//
// Используется в Update() для продолжения чтения событий:
//
//	case EventMsg(event):
//	    // ... обработка события
//	    return m, tui.WaitForEvent(sub, converter)
func WaitForEvent(sub events.Subscriber, converter func(events.Event) tea.Msg) tea.Cmd {
	return ReceiveEventCmd(sub, converter)
}
