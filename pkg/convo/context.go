// Package convo содержит рабочий контекст разговора агента.
//
// Context — это упорядоченный список сообщений, который рантайм собирает
// каждый ход и отдает провайдеру. Хуки приложения получают копию контекста
// и возвращают новую версию (правило 5: никакого shared mutable state).
package convo

import (
	"strings"

	"github.com/deepshard/hyphae/pkg/llm"
)

// Context — снимок контекста разговора для одного хода.
type Context struct {
	Messages []llm.Message
}

// New создает контекст из начального списка сообщений.
func New(messages ...llm.Message) *Context {
	cp := make([]llm.Message, len(messages))
	copy(cp, messages)
	return &Context{Messages: cp}
}

// Clone возвращает глубокую копию контекста.
//
// Хуки получают именно клон: мутации внутри хука не влияют
// на историю до тех пор, пока рантайм не примет результат.
func (c *Context) Clone() *Context {
	cp := make([]llm.Message, len(c.Messages))
	copy(cp, c.Messages)
	return &Context{Messages: cp}
}

// Append добавляет сообщение в конец контекста.
func (c *Context) Append(role, content string) {
	c.Messages = append(c.Messages, llm.Message{Role: role, Content: content})
}

// AppendSystem добавляет системное сообщение.
func (c *Context) AppendSystem(content string) {
	c.Append(llm.RoleSystem, content)
}

// AppendUser добавляет сообщение пользователя.
func (c *Context) AppendUser(content string) {
	c.Append(llm.RoleUser, content)
}

// AppendAssistant добавляет ответ модели.
func (c *Context) AppendAssistant(content string) {
	c.Append(llm.RoleAssistant, content)
}

// Size возвращает суммарный размер контекста в символах.
//
// Используется пайплайном хуков для решения о компрессии.
// Считаем только содержимое: роли и структура не влияют на порог.
func (c *Context) Size() int {
	total := 0
	for _, m := range c.Messages {
		total += len(m.Content)
	}
	return total
}

// Len возвращает количество сообщений.
func (c *Context) Len() int {
	return len(c.Messages)
}

// InitialPrompt возвращает первое системное сообщение контекста
// (промпт агента), либо пустую строку.
func (c *Context) InitialPrompt() string {
	for _, m := range c.Messages {
		if m.Role == llm.RoleSystem {
			return m.Content
		}
	}
	return ""
}

// Task возвращает первое сообщение пользователя (исходную задачу),
// либо пустую строку.
func (c *Context) Task() string {
	for _, m := range c.Messages {
		if m.Role == llm.RoleUser {
			return m.Content
		}
	}
	return ""
}

// Transcript возвращает контекст одной строкой для суммаризации.
func (c *Context) Transcript() string {
	var sb strings.Builder
	for _, m := range c.Messages {
		sb.WriteString(m.Role)
		sb.WriteString(": ")
		sb.WriteString(m.Content)
		sb.WriteString("\n\n")
	}
	return sb.String()
}
