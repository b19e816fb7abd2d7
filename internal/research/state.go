// Package research реализует research-агента: поиск, заметки, файлы
// и терминальный ответ пользователю.
//
// Жизненный цикл сессии:
//
//  1. Фаза уточнения: доступен только respond_to_user, агент задает
//     follow-up вопросы по задаче.
//  2. После первого ответа открывается полный набор инструментов,
//     а respond_to_user скрывается до истечения минимального времени
//     работы (MinDuration).
//  3. Агент исследует, копит заметки и по готовности возвращает
//     финальный ответ с файлами.
package research

import (
	"time"

	"github.com/deepshard/hyphae/pkg/llm"
	"github.com/deepshard/hyphae/pkg/notes"
	"github.com/deepshard/hyphae/pkg/search"
)

// State — состояние research-сессии.
//
// Мутируется только обработчиками инструментов и хуками; рантайм
// сериализует диспатч, поэтому дополнительных блокировок не нужно.
type State struct {
	// Notes — персистентный блокнот (переживает компрессию контекста).
	Notes *notes.Store

	// AskedFollowup — агент уже задал уточняющие вопросы.
	AskedFollowup bool

	// StartTime — начало текущей фазы работы. Сбрасывается при каждом
	// ответе пользователю: отсчет минимального времени начинается заново.
	StartTime time.Time

	// MinDuration — минимальное время работы до следующего ответа.
	MinDuration time.Duration

	// WorkDir — директория по умолчанию для файловых инструментов.
	WorkDir string

	// Коллабораторы поиска.
	Perplexity *search.Perplexity
	Web        *search.DuckDuckGo
	Papers     *search.SemanticScholar
	Trends     *search.GoogleTrends

	// Expert — модель для делегированных подзапросов.
	Expert llm.Provider

	// Now — источник времени. Подменяется в тестах для проверки
	// временных предикатов без реального ожидания.
	Now func() time.Time
}

func (s *State) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// HasFullToolAccess — полный набор инструментов открывается после
// первого раунда уточняющих вопросов.
func (s *State) HasFullToolAccess() bool {
	return s.AskedFollowup
}

// CanRespondToUser — ответить пользователю можно либо в фазе уточнения,
// либо после MinDuration самостоятельной работы.
func (s *State) CanRespondToUser() bool {
	if !s.AskedFollowup {
		return true
	}
	return s.now().Sub(s.StartTime) > s.MinDuration
}
