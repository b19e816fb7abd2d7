package research

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/deepshard/hyphae/pkg/llm"
	"github.com/deepshard/hyphae/pkg/notes"
	"github.com/deepshard/hyphae/pkg/search"
	"github.com/deepshard/hyphae/pkg/tools"
	"github.com/deepshard/hyphae/pkg/utils"
)

// installTimeout — таймаут для команд установки пакетов: модель
// стабильно недооценивает время работы pip и apk.
const installTimeout = 300 * time.Second

// RegisterTools регистрирует все инструменты research-агента.
//
// Порядок регистрации фиксирует порядок в промпте модели:
// respond_to_user идет первым как самый важный.
func RegisterTools(reg *tools.Registry[*State]) error {
	descriptors := []tools.Descriptor[*State]{
		{
			Name:        "respond_to_user",
			Description: "Send a message back to the user, usually after performing a task with many tool calls",
			Icon:        "message",
			Args: []tools.ArgSpec{
				{Name: "response", Description: "The message to send back to the user", Type: tools.TypeString},
				{Name: "files", Description: "Absolute paths to files within your environment to send back to the user, if any", Type: tools.TypeStringList, Default: []string{}},
			},
			Predicate: func(s *State) bool { return s.CanRespondToUser() },
			Handler:   respondToUser,
		},
		{
			Name:        "perplexity_search",
			Description: "Searches with Perplexity, an advanced AI search tool",
			Icon:        "magnifyingglass",
			Args: []tools.ArgSpec{
				{Name: "query", Description: "The search query, write like a prompt not a google search", Type: tools.TypeString},
			},
			Predicate: func(s *State) bool { return s.HasFullToolAccess() },
			Handler:   perplexitySearch,
		},
		{
			Name:        "take_note",
			Description: "Take notes",
			Icon:        "pencil.tip",
			Args: []tools.ArgSpec{
				{Name: "note", Description: "The note to take, it will be saved for future access, even when the context is compressed", Type: tools.TypeString},
			},
			Predicate: func(s *State) bool { return s.HasFullToolAccess() },
			Handler:   takeNote,
		},
		{
			Name:        "read_notes",
			Description: "Read notes",
			Icon:        "eyeglasses",
			Args: []tools.ArgSpec{
				{Name: "clear_after", Description: "Clear notes after reading", Type: tools.TypeBool, Default: false},
			},
			Predicate: func(s *State) bool { return s.HasFullToolAccess() },
			Handler:   readNotes,
		},
		{
			Name:        "web_search",
			Description: "Search the web with DuckDuckGo",
			Icon:        "globe",
			Args: []tools.ArgSpec{
				{Name: "query", Description: "The search query", Type: tools.TypeString},
				{Name: "num_results", Description: "How many results to return", Type: tools.TypeInt, Default: 10},
			},
			Predicate: func(s *State) bool { return s.HasFullToolAccess() },
			Handler:   webSearch,
		},
		{
			Name:        "search_news_articles",
			Description: "Get news articles from the last week",
			Icon:        "newspaper.fill",
			Args: []tools.ArgSpec{
				{Name: "query", Description: "News search query", Type: tools.TypeString},
				{Name: "num_results", Description: "The number of news results to return", Type: tools.TypeInt, Default: 10},
			},
			Predicate: func(s *State) bool { return s.HasFullToolAccess() },
			Handler:   searchNews,
		},
		{
			Name:        "find_related_keywords",
			Description: "Gets related keywords, and classifies the input",
			Icon:        "rectangle.and.text.magnifyingglass",
			Args: []tools.ArgSpec{
				{Name: "keyword", Description: "What to get related keywords for", Type: tools.TypeString},
			},
			Predicate: func(s *State) bool { return s.HasFullToolAccess() },
			Handler:   findRelatedKeywords,
		},
		{
			Name:        "google_trends",
			Description: "Get Google Trends",
			Icon:        "chart.line.flattrend.trend.xyaxis",
			Args: []tools.ArgSpec{
				{Name: "trends", Description: "Topics to get trends for, max 5", Type: tools.TypeStringList},
			},
			Predicate: func(s *State) bool { return s.HasFullToolAccess() },
			Handler:   googleTrends,
		},
		{
			Name:        "search_papers",
			Description: "Search academic papers on Semantic Scholar",
			Icon:        "doc.text.magnifyingglass",
			Args: []tools.ArgSpec{
				{Name: "query", Description: "The paper search query", Type: tools.TypeString},
				{Name: "num_results", Description: "How many papers to return", Type: tools.TypeInt, Default: 10},
			},
			Predicate: func(s *State) bool { return s.HasFullToolAccess() },
			Handler:   searchPapers,
		},
		{
			Name:        "ask_expert",
			Description: "Ask a stronger reasoning model a self-contained question and get its answer",
			Icon:        "brain",
			Args: []tools.ArgSpec{
				{Name: "question", Description: "The full question with all necessary context included", Type: tools.TypeString},
			},
			Predicate: func(s *State) bool { return s.HasFullToolAccess() && s.Expert != nil },
			Handler:   askExpert,
		},
		{
			Name:        "write_file",
			Description: "This tool writes a file to the given path with the given content. Only use it if the user requested a report",
			Icon:        "keyboard",
			Args: []tools.ArgSpec{
				{Name: "path", Description: "The path to write the file to", Type: tools.TypeString},
				{Name: "content", Description: "The content to write to the file", Type: tools.TypeString},
			},
			Predicate: func(s *State) bool { return s.HasFullToolAccess() },
			Handler:   writeFile,
		},
		{
			Name:        "read_file",
			Description: "Reads a file, execute_command can also do this",
			Icon:        "book.closed",
			Args: []tools.ArgSpec{
				{Name: "path", Description: "The path to the file to read", Type: tools.TypeString},
				{Name: "max_lines", Description: "The maximum number of lines to read, leave 0 for no limit", Type: tools.TypeInt, Default: 0},
			},
			Predicate: func(s *State) bool { return s.HasFullToolAccess() },
			Handler:   readFile,
		},
		{
			Name:        "execute_command",
			Description: "This tool executes a shell command and returns the output",
			Icon:        "apple.terminal",
			Args: []tools.ArgSpec{
				{Name: "command", Description: "The shell command to execute", Type: tools.TypeString},
				{Name: "timeout", Description: "The timeout (seconds) for the command execution", Type: tools.TypeInt, Default: 60},
			},
			Predicate: func(s *State) bool { return s.HasFullToolAccess() },
			Handler:   executeCommand,
		},
	}

	for _, d := range descriptors {
		if err := reg.Register(d); err != nil {
			return fmt.Errorf("register %s: %w", d.Name, err)
		}
	}
	return nil
}

// respondToUser — терминальный инструмент: доставляет ответ пользователю.
//
// Мутации состояния происходят ДО загрузки файлов и сохраняются даже
// если загрузка провалится: агент уже "потратил" свой ответ.
func respondToUser(ctx context.Context, s *State, args tools.Args) (tools.Result, error) {
	s.AskedFollowup = true
	s.StartTime = s.now() // отсчет MinDuration начинается заново

	return tools.Result{
		Text:  args.String("response"),
		Files: args.StringList("files"),
		Final: true,
	}, nil
}

func perplexitySearch(ctx context.Context, s *State, args tools.Args) (tools.Result, error) {
	if s.Perplexity == nil {
		return tools.Result{}, fmt.Errorf("perplexity search is not configured")
	}

	answer, citations, err := s.Perplexity.Ask(ctx, args.String("query"))
	if err != nil {
		return tools.Result{}, err
	}

	var sb strings.Builder
	sb.WriteString(answer)
	if len(citations) > 0 {
		sb.WriteString("\n\nSources:\n")
		for _, c := range citations {
			sb.WriteString("- " + c + "\n")
		}
	}
	return tools.Result{Text: sb.String()}, nil
}

func takeNote(ctx context.Context, s *State, args tools.Args) (tools.Result, error) {
	if err := s.Notes.Append(ctx, args.String("note")); err != nil {
		return tools.Result{}, err
	}

	all, err := s.Notes.ReadAll(ctx)
	if err != nil {
		return tools.Result{}, err
	}
	return tools.Result{Text: "Added note.\nCurrent notes:\n" + renderNotes(all)}, nil
}

func readNotes(ctx context.Context, s *State, args tools.Args) (tools.Result, error) {
	all, err := s.Notes.ReadAll(ctx)
	if err != nil {
		return tools.Result{}, err
	}

	if args.Bool("clear_after") {
		if err := s.Notes.Clear(ctx); err != nil {
			return tools.Result{}, err
		}
	}
	return tools.Result{Text: "Current notes:\n" + renderNotes(all)}, nil
}

func webSearch(ctx context.Context, s *State, args tools.Args) (tools.Result, error) {
	if s.Web == nil {
		return tools.Result{}, fmt.Errorf("web search is not configured")
	}

	records, err := s.Web.Search(ctx, args.String("query"), args.Int("num_results"))
	if err != nil {
		return tools.Result{}, err
	}
	return tools.Result{Text: renderRecords(records)}, nil
}

func searchNews(ctx context.Context, s *State, args tools.Args) (tools.Result, error) {
	if s.Web == nil {
		return tools.Result{}, fmt.Errorf("news search is not configured")
	}

	records, err := s.Web.SearchNews(ctx, args.String("query"), args.Int("num_results"))
	if err != nil {
		return tools.Result{}, err
	}
	return tools.Result{Text: renderRecords(records)}, nil
}

func findRelatedKeywords(ctx context.Context, s *State, args tools.Args) (tools.Result, error) {
	if s.Trends == nil {
		return tools.Result{}, fmt.Errorf("google trends is not configured")
	}

	keywords, err := s.Trends.Suggestions(ctx, args.String("keyword"))
	if err != nil {
		return tools.Result{}, err
	}
	if len(keywords) == 0 {
		return tools.Result{Text: "No related keywords found."}, nil
	}

	var sb strings.Builder
	sb.WriteString("| title | type |\n|---|---|\n")
	for _, k := range keywords {
		sb.WriteString(fmt.Sprintf("| %s | %s |\n", k.Title, k.Type))
	}
	return tools.Result{Text: sb.String()}, nil
}

func googleTrends(ctx context.Context, s *State, args tools.Args) (tools.Result, error) {
	if s.Trends == nil {
		return tools.Result{}, fmt.Errorf("google trends is not configured")
	}

	topics := args.StringList("trends")
	points, err := s.Trends.InterestOverTime(ctx, topics)
	if err != nil {
		return tools.Result{}, err
	}
	if len(points) == 0 {
		return tools.Result{Text: "No trend data found."}, nil
	}

	if len(topics) > 5 {
		topics = topics[:5]
	}
	var sb strings.Builder
	sb.WriteString("| time | " + strings.Join(topics, " | ") + " |\n")
	sb.WriteString("|---" + strings.Repeat("|---", len(topics)) + "|\n")
	for _, p := range points {
		sb.WriteString("| " + p.Time)
		for _, v := range p.Values {
			sb.WriteString(fmt.Sprintf(" | %d", v))
		}
		sb.WriteString(" |\n")
	}
	return tools.Result{Text: sb.String()}, nil
}

func searchPapers(ctx context.Context, s *State, args tools.Args) (tools.Result, error) {
	if s.Papers == nil {
		return tools.Result{}, fmt.Errorf("paper search is not configured")
	}

	records, err := s.Papers.Search(ctx, args.String("query"), args.Int("num_results"))
	if err != nil {
		return tools.Result{}, err
	}
	return tools.Result{Text: renderRecords(records)}, nil
}

func askExpert(ctx context.Context, s *State, args tools.Args) (tools.Result, error) {
	answer, err := s.Expert.Chat(ctx, llm.ChatRequest{
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: args.String("question")},
		},
	})
	if err != nil {
		return tools.Result{}, fmt.Errorf("expert call: %w", err)
	}
	return tools.Result{Text: answer}, nil
}

// writeFile пишет файл, создавая недостающие директории.
//
// Модели иногда путают порядок аргументов: если "path" заметно длиннее
// "content", считаем что они переставлены местами.
func writeFile(ctx context.Context, s *State, args tools.Args) (tools.Result, error) {
	path := args.String("path")
	content := args.String("content")
	if len(path) > len(content) {
		path, content = content, path
	}

	path = s.resolvePath(path)
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return tools.Result{Text: fmt.Sprintf("Error writing file %s: %v", path, err)}, nil
		}
	}

	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return tools.Result{Text: fmt.Sprintf("Error writing file %s: %v", path, err)}, nil
	}

	utils.Info("file written", "path", path, "bytes", len(content))
	return tools.Result{Text: fmt.Sprintf("Wrote %d bytes successfully to %s", len(content), filepath.Base(path))}, nil
}

func readFile(ctx context.Context, s *State, args tools.Args) (tools.Result, error) {
	path := s.resolvePath(args.String("path"))

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return tools.Result{Text: fmt.Sprintf("ReadFile Error: <File %s does not exist.>", path)}, nil
		}
		return tools.Result{Text: fmt.Sprintf("ReadFile Error: path %s: %v", path, err)}, nil
	}

	text := string(data)
	if maxLines := args.Int("max_lines"); maxLines > 0 {
		lines := strings.SplitAfter(text, "\n")
		if len(lines) > maxLines {
			text = strings.Join(lines[:maxLines], "")
		}
	}
	return tools.Result{Text: text}, nil
}

// executeCommand запускает shell команду с таймаутом.
//
// Ошибки команды возвращаются агенту текстом, а не error: агент должен
// увидеть вывод и адаптироваться, а не получить handler_error.
func executeCommand(ctx context.Context, s *State, args tools.Args) (tools.Result, error) {
	command := args.String("command")
	timeout := time.Duration(args.Int("timeout")) * time.Second
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	if strings.Contains(command, "pip") || strings.Contains(command, "apk") {
		timeout = installTimeout
	}

	utils.Info("executing command", "command", command, "timeout", timeout)

	cmdCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(cmdCtx, "sh", "-c", command)
	if s.WorkDir != "" {
		cmd.Dir = s.WorkDir
	}
	output, err := cmd.CombinedOutput()

	switch {
	case cmdCtx.Err() == context.DeadlineExceeded:
		return tools.Result{Text: fmt.Sprintf("Shell Command Timeout: %s", command)}, nil
	case err != nil:
		return tools.Result{Text: fmt.Sprintf("Shell Command Error (%v): %s", err, string(output))}, nil
	default:
		return tools.Result{Text: string(output)}, nil
	}
}

// resolvePath превращает относительный путь в путь внутри WorkDir.
func (s *State) resolvePath(path string) string {
	if filepath.IsAbs(path) || s.WorkDir == "" {
		return path
	}
	return filepath.Join(s.WorkDir, path)
}

func renderRecords(records []search.Record) string {
	if len(records) == 0 {
		return "No results found."
	}

	var sb strings.Builder
	for _, r := range records {
		sb.WriteString(fmt.Sprintf("[%s](%s)", r.Title, r.URL))
		if r.Date != "" {
			sb.WriteString(" - " + r.Date)
		}
		sb.WriteString("\n" + r.Snippet + "\n\n")
	}
	return strings.TrimSpace(sb.String())
}

func renderNotes(all []notes.Note) string {
	if len(all) == 0 {
		return "(empty)"
	}
	var sb strings.Builder
	for _, n := range all {
		sb.WriteString(n.Content)
		sb.WriteString("\n")
	}
	return sb.String()
}
