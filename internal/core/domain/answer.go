package domain

// NoRelevantDocumentsAnswer is returned when retrieval finds no usable context.
const NoRelevantDocumentsAnswer = "Sorry, no documents related to your question were found. Please try a different question."

// Answer is a generated response together with the chunks it was based on.
type Answer struct {
	// Answer is the generated text.
	Answer string `json:"answer"`

	// Sources are previews of the context chunks, in ranking order.
	Sources []Source `json:"sources"`

	// Confidence is a heuristic in [0, 1], rounded to two decimals.
	Confidence float64 `json:"confidence"`

	// Model names the LLM that produced the answer.
	Model string `json:"model,omitempty"`
}

// Source is a preview of one context chunk.
type Source struct {
	Content  string        `json:"content"`
	Metadata ChunkMetadata `json:"metadata"`
	Distance float64       `json:"distance"`
}

// DefaultAnswerSystemPrompt sets the assistant role for every answer.
const DefaultAnswerSystemPrompt = "You are a technical documentation Q&A assistant for developers."

// DefaultAnswerPromptTemplate wraps the context and the question. The first
// %s receives the context chunks and the second the question.
const DefaultAnswerPromptTemplate = `Context:
%s

Question: %s

Answer the question using only the context above. Do not mention information that is not in the context. Give a clear, structured answer.`
