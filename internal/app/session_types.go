package app

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// DefaultTitle is the placeholder every session starts with until its first
// user message rewrites it.
const DefaultTitle = "New chat"

// titlePrefixLen is how many runes of the first user message become the
// session title. The ellipsis is appended unconditionally, even when the
// message is shorter than the prefix.
const titlePrefixLen = 30

type Message struct {
	ID        string    `json:"id"`
	Role      string    `json:"role"` // user|assistant
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

type Session struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Messages  []Message `json:"messages"`
	CreatedAt time.Time `json:"created_at"`
}

func NewMessage(role, content string) Message {
	return Message{
		ID:        uuid.NewString(),
		Role:      role,
		Content:   content,
		Timestamp: time.Now(),
	}
}

// NewSessionID derives an id from the creation instant.
func NewSessionID(now time.Time) string {
	return fmt.Sprintf("%d", now.UnixNano())
}

// TitleFor computes the session title from the first message of a
// conversation: a fixed-length rune prefix plus an ellipsis.
func TitleFor(firstMessage string) string {
	r := []rune(firstMessage)
	if len(r) > titlePrefixLen {
		r = r[:titlePrefixLen]
	}
	return string(r) + "..."
}

// cloneMessages copies a message slice so persisted snapshots never alias the
// live in-memory list.
func cloneMessages(msgs []Message) []Message {
	out := make([]Message, len(msgs))
	copy(out, msgs)
	return out
}
