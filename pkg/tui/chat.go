// chat.go содержит ChatTui — примитивный "lego brick" TUI компонент.
//
// ChatTui это максимально простой, переиспользуемый TUI для AI агентов.
// Он НЕ содержит бизнес-логики агента, только UI компоненты.
//
// # Layout
//
//	┌─────────────────────────────────────────────────┐
//	│ Research Agent | Model: sonar | WORKING         │ ← Status Bar
//	├─────────────────────────────────────────────────┤
//	│  [14:32:15] User: climate change report please  │
//	│  [14:32:20] Tool: perplexity_search(...)        │
//	│  [14:32:24] Result: perplexity_search (4012ms)  │
//	│                                                 │
//	│  Main Area (auto-scroll)                        │
//	├─────────────────────────────────────────────────┤
//	│ > user input here                               │ ← Input Area
//	└─────────────────────────────────────────────────┘
//
// # Basic Usage
//
//	emitter := events.NewChanEmitter(64)
//	driver, _ := research.NewDriver(cfg, emitter)
//
//	chat := tui.NewChatTui(emitter.Subscribe(), tui.ChatUIConfig{
//	    Colors: tui.GetColorScheme("dark"),
//	    Title:  "Research Agent",
//	})
//	chat.OnInput(func(input string) {
//	    driver.Run(ctx, input)
//	})
//	chat.Run()
package tui

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/muesli/reflow/wordwrap"

	"github.com/deepshard/hyphae/pkg/events"
)

// ChatUIConfig конфигурирует ChatTui.
//
// Все поля опциональны, используются дефолтные значения если не заданы.
type ChatUIConfig struct {
	// Colors определяет цветовую схему
	Colors ColorScheme

	// StatusHeight — высота статус-бара
	StatusHeight int

	// InputHeight — высота поля ввода
	InputHeight int

	// InputPrompt — текст приглашения ввода
	InputPrompt string

	// ShowTimestamp — показывать timestamp в сообщениях
	ShowTimestamp bool

	// MaxMessages — максимальное количество сообщений в логе (0 = безлимит)
	MaxMessages int

	// WrapText — включить перенос длинных строк
	WrapText bool

	// Title — заголовок приложения (отображается в статус-баре)
	Title string

	// ModelName — имя модели для отображения в статус-баре
	ModelName string
}

// ChatTui примитивный "lego brick" TUI компонент.
//
// Thread-safe.
//
// Не содержит бизнес-логики агента, только UI.
// Работает с events.Subscriber для получения событий рантайма.
type ChatTui struct {
	// config — конфигурация TUI
	config ChatUIConfig

	// subscriber — подписчик на события рантайма (Port & Adapter)
	subscriber events.Subscriber

	// onInput — callback для обработки пользовательского ввода
	onInput func(input string)

	// Bubble Tea компоненты
	viewport viewport.Model
	textarea textarea.Model

	// Состояние
	mu           sync.RWMutex
	messages     []string // История сообщений
	ready        bool     // Флаг первой инициализации размеров
	isProcessing bool     // Флаг занятости агента
}

// NewChatTui создаёт новый ChatTui.
//
// Parameters:
//   - subscriber: Подписчик на события рантайма (events.Subscriber)
//   - config: Конфигурация TUI (используются дефолтные значения если пустые)
func NewChatTui(subscriber events.Subscriber, config ChatUIConfig) *ChatTui {
	// Применяем дефолтные значения
	if config.StatusHeight == 0 {
		config.StatusHeight = 1
	}
	if config.InputHeight == 0 {
		config.InputHeight = 3
	}
	if config.InputPrompt == "" {
		config.InputPrompt = "> "
	}
	if config.Colors.StatusForeground == "" {
		config.Colors = DefaultColorScheme()
	}
	if config.Title == "" {
		config.Title = "AI Agent"
	}

	// Настройка textarea
	ta := textarea.New()
	ta.Placeholder = "Введите запрос..."
	ta.Focus()
	ta.Prompt = config.InputPrompt
	ta.CharLimit = 500
	ta.SetHeight(config.InputHeight)
	ta.ShowLineNumbers = false

	// Настройка viewport
	vp := viewport.New(0, 0)
	vp.SetContent(SystemStyle("Agent initialized. Type your query...") + "\n")

	return &ChatTui{
		config:     config,
		subscriber: subscriber,
		viewport:   vp,
		textarea:   ta,
		messages:   []string{},
	}
}

// OnInput устанавливает callback для обработки пользовательского ввода.
//
// Вызывается каждый раз когда пользователь нажимает Enter.
func (t *ChatTui) OnInput(handler func(input string)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onInput = handler
}

// Run запускает TUI (блокирующий вызов).
func (t *ChatTui) Run() error {
	p := tea.NewProgram(t)
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}

// ===== BUBBLE TEA MODEL INTERFACE =====

// Init реализует tea.Model интерфейс.
func (t *ChatTui) Init() tea.Cmd {
	return tea.Batch(
		textarea.Blink,
		ReceiveEventCmd(t.subscriber, func(event events.Event) tea.Msg {
			return EventMsg(event)
		}),
	)
}

// Update реализует tea.Model интерфейс.
func (t *ChatTui) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var (
		tiCmd tea.Cmd
		vpCmd tea.Cmd
	)

	t.textarea, tiCmd = t.textarea.Update(msg)
	t.viewport, vpCmd = t.viewport.Update(msg)

	switch msg := msg.(type) {
	case EventMsg:
		return t.handleRuntimeEvent(events.Event(msg))

	case tea.WindowSizeMsg:
		return t.handleWindowSize(msg)

	case tea.KeyMsg:
		return t.handleKeyPress(msg)
	}

	return t, tea.Batch(tiCmd, vpCmd)
}

// handleRuntimeEvent обрабатывает события от рантайма.
func (t *ChatTui) handleRuntimeEvent(event events.Event) (tea.Model, tea.Cmd) {
	switch event.Type {
	case events.EventTurnStart:
		t.mu.Lock()
		t.isProcessing = true
		t.mu.Unlock()

	case events.EventMessage:
		if msgData, ok := event.Data.(events.MessageData); ok {
			t.appendMessage(AIMessageStyle("AI: ")+msgData.Content, true)
		}

	case events.EventToolCall:
		if toolData, ok := event.Data.(events.ToolCallData); ok {
			t.appendMessage(ToolCallStyle(fmt.Sprintf("Tool: %s(%s)", toolData.ToolName, toolData.Args)), false)
		}

	case events.EventToolResult:
		if resultData, ok := event.Data.(events.ToolResultData); ok {
			label := "Result"
			if resultData.Failed {
				label = "Failed"
			}
			duration := resultData.Duration.Milliseconds()
			t.appendMessage(ToolResultStyle(fmt.Sprintf("%s: %s (%dms)", label, resultData.ToolName, duration)), false)
		}

	case events.EventCompressed:
		if data, ok := event.Data.(events.CompressedData); ok {
			t.appendMessage(SystemStyle(fmt.Sprintf("Context compressed: %d -> %d chars", data.Before, data.After)), false)
		}

	case events.EventError:
		if errData, ok := event.Data.(events.ErrorData); ok {
			t.appendMessage(ErrorStyle("ERROR: "+errData.Err.Error()), true)
		}
		t.mu.Lock()
		t.isProcessing = false
		t.mu.Unlock()
		t.textarea.Focus()

	case events.EventDone:
		if msgData, ok := event.Data.(events.MessageData); ok {
			t.appendMessage(AIMessageStyle("AI: ")+msgData.Content, true)
			for _, url := range msgData.Files {
				t.appendMessage(SystemStyle("Attachment: "+url), false)
			}
		}
		t.mu.Lock()
		t.isProcessing = false
		t.mu.Unlock()
		t.textarea.Focus()
	}

	return t, WaitForEvent(t.subscriber, func(e events.Event) tea.Msg {
		return EventMsg(e)
	})
}

// handleWindowSize обрабатывает изменение размера терминала.
func (t *ChatTui) handleWindowSize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	headerHeight := t.config.StatusHeight
	footerHeight := t.textarea.Height() + 1

	vpHeight := msg.Height - headerHeight - footerHeight
	if vpHeight < 1 {
		vpHeight = 1
	}

	vpWidth := msg.Width
	if vpWidth < 20 {
		vpWidth = 20
	}

	t.viewport.Width = vpWidth
	t.viewport.Height = vpHeight
	t.textarea.SetWidth(vpWidth)

	if !t.ready {
		t.ready = true
	}

	return t, nil
}

// handleKeyPress обрабатывает нажатия клавиш.
func (t *ChatTui) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC, tea.KeyEsc:
		return t, tea.Quit

	case tea.KeyEnter:
		input := t.textarea.Value()
		if input == "" {
			return t, nil
		}

		t.textarea.Reset()
		t.appendMessage(UserMessageStyle("User: ")+input, true)

		t.mu.RLock()
		handler := t.onInput
		t.mu.RUnlock()

		if handler != nil {
			// Запускаем handler в отдельной горутине, Run блокирует
			go handler(input)
		}
	}

	return t, nil
}

// View реализует tea.Model интерфейс.
func (t *ChatTui) View() string {
	status := "IDLE"
	t.mu.RLock()
	if t.isProcessing {
		status = "WORKING"
	}
	t.mu.RUnlock()

	return fmt.Sprintf("%s\n%s\n%s",
		RenderStatusBar(t.config.Title, t.config.ModelName, status, t.config.Colors),
		t.viewport.View(),
		t.textarea.View(),
	)
}

// appendMessage добавляет сообщение в лог.
func (t *ChatTui) appendMessage(msg string, showTimestamp bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	var line string
	if showTimestamp && t.config.ShowTimestamp {
		line = fmt.Sprintf("[%s] %s", time.Now().Format("15:04:05"), msg)
	} else {
		line = msg
	}

	if t.config.WrapText && t.viewport.Width > 0 {
		line = wordwrap.String(line, t.viewport.Width)
	}

	t.messages = append(t.messages, line)

	// Trim если превышен лимит
	if t.config.MaxMessages > 0 && len(t.messages) > t.config.MaxMessages {
		t.messages = t.messages[len(t.messages)-t.config.MaxMessages:]
	}

	// Обновляем viewport с умной прокруткой (сохраняет позицию пользователя)
	content := strings.Join(t.messages, "\n")
	AppendToViewport(&t.viewport, content)
}

// Ensure ChatTui implements tea.Model
var _ tea.Model = (*ChatTui)(nil)
