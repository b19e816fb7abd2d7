// Интерфейс провайдера инференса, через который работает весь рантайм.

package llm

import "context"

// Provider — контракт для любого AI-сервиса.
//
// Используется тремя потребителями:
//   - основным циклом ходов рантайма
//   - компрессором контекста (on_compress хук)
//   - делегированными "экспертными" вызовами внутри обработчиков
type Provider interface {
	// Chat отправляет запрос и возвращает текстовый ответ (или JSON строку)
	Chat(ctx context.Context, req ChatRequest) (string, error)
}
