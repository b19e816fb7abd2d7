package hooks

import (
	"context"
	"fmt"

	"github.com/deepshard/hyphae/pkg/convo"
	"github.com/deepshard/hyphae/pkg/llm"
)

// summaryPrompt — инструкция для модели-суммаризатора.
const summaryPrompt = `You are a summarization assistant. Condense the following ` +
	`conversation transcript into a compact summary. Preserve every fact, ` +
	`decision, tool result and open task. Write the summary so the agent can ` +
	`continue its work from the summary alone. Output only the summary text.`

// NewSummarizingCompressor возвращает OnCompress хук, который сжимает
// историю разговора через отдельную модель-суммаризатор.
//
// Результирующий контекст: системные сообщения исходного контекста
// (обычно это промпт агента) + исходная задача + одно user-сообщение
// со сводкой. Ошибка провайдера возвращается наверх: пайплайн сам
// сделает fallback на несжатый контекст.
func NewSummarizingCompressor[S any](provider llm.Provider, opts ...llm.GenerateOption) ContextHook[S] {
	return func(ctx context.Context, _ S, c *convo.Context) (*convo.Context, error) {
		req := llm.NewGenerateOptions(opts...).Request([]llm.Message{
			{Role: llm.RoleSystem, Content: summaryPrompt},
			{Role: llm.RoleUser, Content: c.Transcript()},
		})

		summary, err := provider.Chat(ctx, req)
		if err != nil {
			return nil, fmt.Errorf("summarize context: %w", err)
		}

		// Системные сообщения и исходная задача переживают компрессию:
		// без них агент теряет свою роль и цель.
		out := convo.New()
		for _, m := range c.Messages {
			if m.Role == llm.RoleSystem {
				out.Messages = append(out.Messages, m)
			}
		}
		if task := c.Task(); task != "" {
			out.AppendUser(task)
		}
		out.AppendUser("Summary of the conversation so far:\n\n" + summary)
		return out, nil
	}
}
