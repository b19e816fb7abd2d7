// Package tui предоставляет color schemes и стили для TUI компонентов.
//
// ColorSchemes позволяют пользователям кастомизировать внешний вид TUI
// через ChatUIConfig без изменения кода.
package tui

import "github.com/charmbracelet/lipgloss"

// ColorScheme определяет цвета для различных элементов TUI.
//
// Каждое поле - это lipgloss.Color (может быть hex, ANSI, или named color).
type ColorScheme struct {
	// Status Bar
	StatusBackground lipgloss.Color // Фон статус-бара
	StatusForeground lipgloss.Color // Текст в статус-баре

	// Messages
	SystemMessage lipgloss.Color // Системные сообщения (серый)
	UserMessage   lipgloss.Color // Сообщения пользователя (желтый)
	AIMessage     lipgloss.Color // Сообщения AI (cyan)
	ErrorMessage  lipgloss.Color // Ошибки (красный)

	// Input Area
	InputPrompt     lipgloss.Color // Приглашение ввода
	InputForeground lipgloss.Color // Текст ввода

	// UI Elements
	Border lipgloss.Color // Границы и разделители
}

// ColorSchemes предоставляет предустановленные цветовые схемы.
//
// Пользователи могут использовать их напрямую или создать свои на основе.
var ColorSchemes = map[string]ColorScheme{
	"default": {
		StatusBackground: lipgloss.Color("235"),
		StatusForeground: lipgloss.Color("252"),
		SystemMessage:    lipgloss.Color("242"),
		UserMessage:      lipgloss.Color("226"),
		AIMessage:        lipgloss.Color("86"),
		ErrorMessage:     lipgloss.Color("196"),
		InputPrompt:      lipgloss.Color("252"),
		InputForeground:  lipgloss.Color("252"),
		Border:           lipgloss.Color("240"),
	},
	"dark": {
		StatusBackground: lipgloss.Color("0"),
		StatusForeground: lipgloss.Color("15"),
		SystemMessage:    lipgloss.Color("8"),
		UserMessage:      lipgloss.Color("11"),
		AIMessage:        lipgloss.Color("14"),
		ErrorMessage:     lipgloss.Color("9"),
		InputPrompt:      lipgloss.Color("15"),
		InputForeground:  lipgloss.Color("15"),
		Border:           lipgloss.Color("4"),
	},
	"light": {
		StatusBackground: lipgloss.Color("255"),
		StatusForeground: lipgloss.Color("0"),
		SystemMessage:    lipgloss.Color("8"),
		UserMessage:      lipgloss.Color("130"),
		AIMessage:        lipgloss.Color("31"),
		ErrorMessage:     lipgloss.Color("1"),
		InputPrompt:      lipgloss.Color("0"),
		InputForeground:  lipgloss.Color("0"),
		Border:           lipgloss.Color("8"),
	},
}

// DefaultColorScheme возвращает схему по умолчанию.
//
// Используется как fallback когда схема не найдена.
func DefaultColorScheme() ColorScheme {
	return ColorSchemes["default"]
}

// GetColorScheme возвращает цветовую схему по имени.
//
// Если схема не найдена, возвращает default.
func GetColorScheme(name string) ColorScheme {
	if scheme, ok := ColorSchemes[name]; ok {
		return scheme
	}
	return DefaultColorScheme()
}
