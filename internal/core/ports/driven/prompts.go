package driven

// Prompt names understood by PromptStore.
const (
	// PromptAnswerSystem is the system prompt sent with every answer request.
	PromptAnswerSystem = "answer_system"

	// PromptAnswer is the answer template. It takes the context and the
	// question as two %s verbs, in that order.
	PromptAnswer = "answer"
)

// PromptStore loads user-customisable prompt templates.
type PromptStore interface {
	// Load returns the prompt for name, falling back to the built-in default.
	Load(name string) (string, error)
}
