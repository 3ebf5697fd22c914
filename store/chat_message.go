package store

import (
	"context"
	"strings"
	"unicode/utf8"
)

// ChatMessage is one persisted turn of a conversation. Actions holds
// the JSON-encoded side effect list recorded with an assistant turn,
// or an empty string for turns without side effects.
type ChatMessage struct {
	ID        int32
	UID       string
	UserID    int32
	SessionID string
	Role      string
	Content   string
	Actions   string
	CreatedTs int64
}

type FindChatMessage struct {
	UserID    *int32
	SessionID *string
	Limit     *int
	// OrderDescending lists newest first. Used with Limit to fetch the
	// tail of a session.
	OrderDescending bool
}

type DeleteChatMessage struct {
	UserID    int32
	SessionID string
}

// ChatSession is a derived view over the messages of one session id.
type ChatSession struct {
	SessionID    string
	Title        string
	MessageCount int
	StartedTs    int64
	UpdatedTs    int64
}

const sessionTitleMaxLen = 60

func (s *Store) CreateChatMessage(ctx context.Context, create *ChatMessage) (*ChatMessage, error) {
	return s.driver.CreateChatMessage(ctx, create)
}

func (s *Store) UpdateChatMessageActions(ctx context.Context, uid string, actions string) error {
	return s.driver.UpdateChatMessageActions(ctx, uid, actions)
}

func (s *Store) ListChatMessages(ctx context.Context, find *FindChatMessage) ([]*ChatMessage, error) {
	return s.driver.ListChatMessages(ctx, find)
}

func (s *Store) DeleteChatSession(ctx context.Context, delete *DeleteChatMessage) error {
	return s.driver.DeleteChatMessages(ctx, delete)
}

// ListRecentChatMessages returns the last limit messages of a session
// in chronological order.
func (s *Store) ListRecentChatMessages(ctx context.Context, userID int32, sessionID string, limit int) ([]*ChatMessage, error) {
	find := &FindChatMessage{
		UserID:          &userID,
		SessionID:       &sessionID,
		Limit:           &limit,
		OrderDescending: true,
	}
	list, err := s.driver.ListChatMessages(ctx, find)
	if err != nil {
		return nil, err
	}
	for i, j := 0, len(list)-1; i < j; i, j = i+1, j-1 {
		list[i], list[j] = list[j], list[i]
	}
	return list, nil
}

// ListChatSessions returns the sessions of a user, newest activity
// first, with titles derived from each session's first user message.
func (s *Store) ListChatSessions(ctx context.Context, userID int32) ([]*ChatSession, error) {
	sessions, err := s.driver.ListChatSessions(ctx, userID)
	if err != nil {
		return nil, err
	}
	for _, session := range sessions {
		session.Title = deriveSessionTitle(session.Title)
	}
	return sessions, nil
}

// deriveSessionTitle trims a first user message down to a short label.
func deriveSessionTitle(content string) string {
	title := strings.TrimSpace(content)
	if title == "" {
		return "New conversation"
	}
	if line, _, found := strings.Cut(title, "\n"); found {
		title = strings.TrimSpace(line)
	}
	if utf8.RuneCountInString(title) > sessionTitleMaxLen {
		runes := []rune(title)
		title = string(runes[:sessionTitleMaxLen]) + "..."
	}
	return title
}
