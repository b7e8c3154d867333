package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
)

// ChatModelProvider adapts an eino ChatModel, such as the Ark model.
type ChatModelProvider struct {
	name      string
	chatModel model.BaseChatModel
}

// NewChatModelProvider wraps chatModel under name.
func NewChatModelProvider(name string, chatModel model.BaseChatModel) *ChatModelProvider {
	return &ChatModelProvider{name: name, chatModel: chatModel}
}

func (p *ChatModelProvider) Name() string {
	return p.name
}

func (p *ChatModelProvider) Complete(ctx context.Context, messages []Message) (string, error) {
	input := make([]*schema.Message, 0, len(messages))
	for _, msg := range messages {
		switch msg.Role {
		case RoleSystem:
			input = append(input, schema.SystemMessage(msg.Content))
		case RoleAssistant:
			input = append(input, schema.AssistantMessage(msg.Content, nil))
		default:
			input = append(input, schema.UserMessage(msg.Content))
		}
	}

	response, err := p.chatModel.Generate(ctx, input)
	if err != nil {
		if isTimeout(err) {
			return "", fmt.Errorf("%s: %w", p.name, ErrCompletionTimeout)
		}
		return "", &APIError{Provider: p.name, Message: err.Error(), Err: err}
	}
	if response == nil || strings.TrimSpace(response.Content) == "" {
		return "", fmt.Errorf("%s: %w", p.name, ErrEmptyCompletion)
	}
	return strings.TrimSpace(response.Content), nil
}
