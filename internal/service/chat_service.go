package service

import (
	"context"
	"strings"
	"time"

	"blood-request-coordinator/internal/models"
	"blood-request-coordinator/internal/validation"
)

//go:generate mockgen -destination=mocks/mock_generator.go -package=mocks . Generator

// SystemInstruction fixes the assistant persona for every conversation
const SystemInstruction = "You are RaktSahayak, a helpful assistant for a blood donation app. " +
	"Your name means 'Blood Helper'. Answer questions about blood eligibility, safety, and post-donation care. " +
	"Keep answers short and encouraging. If the user asks about unrelated topics, politely refuse by saying " +
	"'As RaktSahayak, I can only answer questions related to blood donation. How can I help you with that?'"

// Generator produces the next model turn of a conversation
type Generator interface {
	Generate(ctx context.Context, system string, history []models.ChatMessage) (string, error)
}

type ChatService struct {
	generator Generator
	timeout   time.Duration
}

// NewChatService returns a service that reports itself unconfigured when
// generator is nil.
func NewChatService(generator Generator, timeout time.Duration) *ChatService {
	return &ChatService{generator: generator, timeout: timeout}
}

// Reply answers the last user message of history
func (s *ChatService) Reply(ctx context.Context, history []models.ChatMessage) (string, error) {
	if err := checkHistory(history); err != nil {
		return "", err
	}
	if s.generator == nil {
		return "", &Error{Kind: KindStoreUnavailable, Message: "Chat assistant is not configured."}
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	reply, err := s.generator.Generate(ctx, SystemInstruction, history)
	if err != nil {
		return "", translate("chat", err, "RaktSahayak is unavailable right now. Please try again.")
	}
	return strings.TrimSpace(reply), nil
}

func checkHistory(history []models.ChatMessage) error {
	verr := &validation.Error{Fields: map[string]string{}}
	if len(history) == 0 {
		verr.Fields["messages"] = "At least one message is required."
	}
	for _, msg := range history {
		if msg.Role != models.ChatRoleUser && msg.Role != models.ChatRoleModel {
			verr.Fields["role"] = "Role must be either user or model."
		}
		if strings.TrimSpace(msg.Content) == "" {
			verr.Fields["content"] = "Message content cannot be empty."
		}
	}
	if len(verr.Fields) > 0 {
		return invalid("Invalid chat history provided.", verr)
	}
	return nil
}
