// viewport_helpers.go содержит функции для умной обработки прокрутки,
// которые сохраняют позицию пользователя при добавлении нового контента.
package tui

import "github.com/charmbracelet/bubbles/viewport"

// shouldGotoBottom проверяет, следует ли скроллить viewport вниз.
//
// Возвращает true если пользователь находится в нижней позиции viewport.
// Сохраняет позицию пользователя если он прокрутил вверх для просмотра истории.
func shouldGotoBottom(vp viewport.Model) bool {
	return vp.YOffset+vp.Height >= vp.TotalLineCount()
}

// AppendToViewport добавляет текст в viewport с умной обработкой прокрутки.
//
// Проверяет позицию пользователя ДО изменения контента и скроллит вниз
// только если пользователь был в нижней позиции. Это позволяет просматривать
// историю сообщений без прыжков при поступлении новых сообщений.
func AppendToViewport(vp *viewport.Model, newContent string) {
	wasAtBottom := shouldGotoBottom(*vp)
	vp.SetContent(newContent)
	if wasAtBottom {
		vp.GotoBottom()
	}
}
