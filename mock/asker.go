package mock

import (
	"context"

	"github.com/fwojciec/sitechat"
)

var _ sitechat.Asker = (*Asker)(nil)

// Asker is a mock implementation of sitechat.Asker.
type Asker struct {
	AskFn func(ctx context.Context, question string, history []sitechat.ChatMessage) (*sitechat.Answer, error)
}

func (a *Asker) Ask(ctx context.Context, question string, history []sitechat.ChatMessage) (*sitechat.Answer, error) {
	return a.AskFn(ctx, question, history)
}
