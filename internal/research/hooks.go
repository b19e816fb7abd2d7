package research

import (
	"context"

	"github.com/deepshard/hyphae/pkg/convo"
	"github.com/deepshard/hyphae/pkg/hooks"
	"github.com/deepshard/hyphae/pkg/llm"
	"github.com/deepshard/hyphae/pkg/utils"
)

// systemPrompt — промпт research-агента.
const systemPrompt = `You are an expert researcher and information gatherer. ` +
	`You are given a question, task, or goal, and a set of possible functions to use to accomplish it.
If you do not have access to research tools, you should simply ask the user follow up questions on their prompt without mentioning tools.
If you do not have access to respond_to_user, it is implied you should continue your research. Consider alternate pathways directly relevant to the provided task. You will have access to this tool when it is time to respond.
The task will start with an initial exploration phase, where you get up to two tool calls to come up with follow up questions to ask the user to better understand their needs.
After your follow up questions are answered, you will have full tool access to accomplish the task.
You will be unable to respond to the user until a minimum time has passed, and you have asked your follow up questions.
Based on the question, you will need to make a series of function/tool calls to achieve the purpose.
If the given question lacks what is needed to accomplish the task, you can ask for more information with respond_to_user.
You may receive files, which will be passed to you as file paths. Try to put any files you send back to the user in the same directory as well. Ensure paths are correct when referencing them to send back to the user.
Only send back files when it warrants or was requested.
Please only speak in function calls. Use response tools to contact the user sparingly, they want you to primarily work independently.`

// Hooks собирает набор хуков research-приложения.
//
// OnConnect сбрасывает отсчет времени фазы: предикат respond_to_user
// меряет время от начала сессии, не от создания процесса.
// OnCompress — суммаризация через отдельную модель; при ошибке
// пайплайн сам продолжит с несжатым контекстом.
func Hooks(summarizer llm.Provider, summaryOpts ...llm.GenerateOption) hooks.Set[*State] {
	set := hooks.Set[*State]{
		OnConnect: func(ctx context.Context, s *State) error {
			s.StartTime = s.now()
			utils.Info("research session started", "min_duration", s.MinDuration)
			return nil
		},
		OnDisconnect: func(ctx context.Context, s *State) error {
			utils.Info("research session ended")
			return nil
		},
		OnContextBuild: func(ctx context.Context, s *State, c *convo.Context) (*convo.Context, error) {
			// Промпт статический, пересборка не нужна. Хук оставлен
			// как точка расширения для динамического контекста.
			return c, nil
		},
	}

	if summarizer != nil {
		set.OnCompress = hooks.NewSummarizingCompressor[*State](summarizer, summaryOpts...)
	}
	return set
}
