package sitechat

import (
	"context"
	"strings"
)

// ChatMessage is one earlier exchange of a conversation.
type ChatMessage struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// Answer is the reply to a question along with the documents it was based on.
type Answer struct {
	Text            string      `json:"text"`
	SourceDocuments []*Document `json:"sourceDocuments"`
}

// Asker answers natural language questions about the indexed site.
type Asker interface {
	// Ask answers question taking the earlier conversation into account.
	// Returns EINVALID if the question is empty.
	Ask(ctx context.Context, question string, history []ChatMessage) (*Answer, error)
}

// SanitizeQuestion trims the question and replaces newlines with spaces,
// which embedding models handle better.
func SanitizeQuestion(question string) string {
	question = strings.TrimSpace(question)
	question = strings.ReplaceAll(question, "\r\n", " ")
	return strings.ReplaceAll(question, "\n", " ")
}
