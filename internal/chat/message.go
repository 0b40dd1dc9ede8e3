package chat

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

type Sender string

const (
	SenderUser Sender = "user"
	SenderBot  Sender = "bot"
)

var (
	ErrEmptyMessage   = errors.New("message text is empty")
	ErrMessageTooLong = errors.New("message text is too long")
	ErrInvalidSession = errors.New("invalid chat session")
)

// Message is one entry in a chat conversation.
type Message struct {
	ID        uuid.UUID `json:"id"`
	SessionID string    `json:"session_id"`
	Text      string    `json:"text"`
	Sender    Sender    `json:"sender"`
	CreatedAt time.Time `json:"created_at"`
}

// Store persists chat messages. List returns at most limit of the newest
// messages for a session, oldest first.
type Store interface {
	Append(ctx context.Context, msg Message) error
	List(ctx context.Context, sessionID string, limit int) ([]Message, error)
}
