package gemini

import (
	"context"
	"fmt"
	"strings"

	"github.com/fwojciec/sitechat"
	"google.golang.org/genai"
)

// DefaultModel is the model used for answering and condensing questions.
const DefaultModel = "gemini-2.5-flash"

// DefaultSourceCount is the number of passages retrieved per question.
const DefaultSourceCount = 4

// Ensure Asker implements sitechat.Asker at compile time.
var _ sitechat.Asker = (*Asker)(nil)

// Asker answers questions about indexed websites using Google Gemini.
//
// A follow-up question is first rewritten into a standalone question using
// the conversation history. The standalone question retrieves the most
// relevant passages, which are then given to the model as context.
type Asker struct {
	client    *genai.Client
	retriever sitechat.Retriever
	model     string
	sources   int
	language  string
}

// AskerOption configures an Asker.
type AskerOption func(*Asker)

// WithModel sets the generation model.
func WithModel(model string) AskerOption {
	return func(a *Asker) { a.model = model }
}

// WithSourceCount sets how many passages are retrieved per question.
func WithSourceCount(n int) AskerOption {
	return func(a *Asker) { a.sources = n }
}

// WithAnswerLanguage asks the model to answer in the given language.
func WithAnswerLanguage(language string) AskerOption {
	return func(a *Asker) { a.language = language }
}

// NewAsker creates a new Asker.
func NewAsker(client *genai.Client, retriever sitechat.Retriever, opts ...AskerOption) *Asker {
	a := &Asker{
		client:    client,
		retriever: retriever,
		model:     DefaultModel,
		sources:   DefaultSourceCount,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Ask answers question taking the earlier conversation into account.
func (a *Asker) Ask(ctx context.Context, question string, history []sitechat.ChatMessage) (*sitechat.Answer, error) {
	question = sitechat.SanitizeQuestion(question)
	if question == "" {
		return nil, sitechat.Errorf(sitechat.EINVALID, "question required")
	}

	standalone := question
	if len(history) > 0 {
		condensed, err := a.generate(ctx, BuildCondensePrompt(history, question))
		if err != nil {
			return nil, fmt.Errorf("condensing question: %w", err)
		}
		if condensed = strings.TrimSpace(condensed); condensed != "" {
			standalone = condensed
		}
	}

	results, err := a.retriever.Retrieve(ctx, standalone, a.sources)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, sitechat.Errorf(sitechat.ENOTFOUND, "no indexed content to answer from")
	}

	text, err := a.generate(ctx, BuildQAPrompt(results, history, standalone, a.language))
	if err != nil {
		return nil, err
	}

	answer := &sitechat.Answer{Text: text}
	for _, r := range results {
		answer.SourceDocuments = append(answer.SourceDocuments, r.Chunk.Document())
	}
	return answer, nil
}

func (a *Asker) generate(ctx context.Context, prompt string) (string, error) {
	result, err := a.client.Models.GenerateContent(ctx, a.model,
		[]*genai.Content{genai.NewContentFromText(prompt, genai.RoleUser)},
		BuildConfig(),
	)
	if err != nil {
		return "", err
	}
	if result == nil {
		return "", sitechat.Errorf(sitechat.EINTERNAL, "gemini returned nil result")
	}
	return result.Text(), nil
}

// BuildConfig returns the GenerateContentConfig for Gemini API calls.
func BuildConfig() *genai.GenerateContentConfig {
	temp := float32(0.7)
	return &genai.GenerateContentConfig{
		Temperature: &temp,
	}
}

// BuildCondensePrompt builds the prompt that rewrites a follow-up question
// into a standalone question.
func BuildCondensePrompt(history []sitechat.ChatMessage, question string) string {
	var sb strings.Builder
	sb.WriteString("Given the following conversation and a follow up question, rephrase the follow up question to be a standalone question.\n\n")
	sb.WriteString("Chat History:\n")
	for _, m := range history {
		fmt.Fprintf(&sb, "Human: %s\nAssistant: %s\n", m.Question, m.Answer)
	}
	fmt.Fprintf(&sb, "Follow Up Input: %s\n", question)
	sb.WriteString("Standalone question:")
	return sb.String()
}

// BuildQAPrompt builds the prompt answering question from the retrieved
// passages and the earlier conversation.
func BuildQAPrompt(results []sitechat.SearchResult, history []sitechat.ChatMessage, question, language string) string {
	var sb strings.Builder
	sb.WriteString("You are an AI assistant. Use the following pieces of context as help to do what is asked in the question at the end.\n")
	if language != "" {
		fmt.Fprintf(&sb, "Give the answer in %s. ", language)
	}
	sb.WriteString("Take into account the chat history to answer only in case the question can be related to it. ")
	sb.WriteString("If you do not find information in the context, answer that the context has not been useful.\n\n")
	if len(history) > 0 {
		sb.WriteString("Chat History:\n")
		for _, m := range history {
			fmt.Fprintf(&sb, "Human: %s\nAssistant: %s\n", m.Question, m.Answer)
		}
		sb.WriteString("\n")
	}
	sb.WriteString(sitechat.FormatContext(results))
	fmt.Fprintf(&sb, "\n\nQuestion: %s\n", question)
	sb.WriteString("Helpful answer in markdown:")
	return sb.String()
}
