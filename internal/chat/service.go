package chat

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

const (
	DefaultMaxLength    = 2000
	DefaultHistoryLimit = 50
	MaxHistoryLimit     = 200
)

// Service implements the chat screen: users send text, the conversation is listed back.
type Service struct {
	store     Store
	maxLength int
	now       func() time.Time
}

// NewService creates a chat service. maxLength <= 0 uses DefaultMaxLength.
func NewService(store Store, maxLength int) *Service {
	if maxLength <= 0 {
		maxLength = DefaultMaxLength
	}
	return &Service{
		store:     store,
		maxLength: maxLength,
		now:       time.Now,
	}
}

// Send stores a user message. Text is trimmed; blank messages are rejected.
func (s *Service) Send(ctx context.Context, sessionID, text string) (Message, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Message{}, ErrEmptyMessage
	}
	if utf8.RuneCountInString(text) > s.maxLength {
		return Message{}, ErrMessageTooLong
	}

	msg := Message{
		ID:        uuid.New(),
		SessionID: sessionID,
		Text:      text,
		Sender:    SenderUser,
		CreatedAt: s.now().UTC(),
	}
	if err := s.store.Append(ctx, msg); err != nil {
		return Message{}, fmt.Errorf("failed to store message: %w", err)
	}
	return msg, nil
}

// History returns the newest messages of a session, oldest first.
func (s *Service) History(ctx context.Context, sessionID string, limit int) ([]Message, error) {
	msgs, err := s.store.List(ctx, sessionID, ClampLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	return msgs, nil
}

// ClampLimit bounds a requested history size to [1, MaxHistoryLimit].
func ClampLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultHistoryLimit
	case limit > MaxHistoryLimit:
		return MaxHistoryLimit
	}
	return limit
}
