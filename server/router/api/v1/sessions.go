package v1

import (
	"encoding/json"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/donna-ai/donna/plugin/ai/agent"
	apierrors "github.com/donna-ai/donna/server/internal/errors"
	"github.com/donna-ai/donna/store"
)

type sessionPayload struct {
	SessionID    string `json:"session_id"`
	Title        string `json:"title"`
	MessageCount int    `json:"message_count"`
	StartedTs    int64  `json:"started_ts"`
	UpdatedTs    int64  `json:"updated_ts"`
}

type messagePayload struct {
	UID       string         `json:"uid"`
	Role      string         `json:"role"`
	Content   string         `json:"content"`
	Actions   []agent.Action `json:"actions,omitempty"`
	CreatedTs int64          `json:"created_ts"`
}

// ListSessions returns the user's conversations, newest first.
func (s *APIV1Service) ListSessions(c echo.Context) error {
	user := currentUser(c)

	sessions, err := s.Store.ListChatSessions(c.Request().Context(), user.ID)
	if err != nil {
		return internalError(c, err)
	}

	payload := make([]*sessionPayload, 0, len(sessions))
	for _, session := range sessions {
		payload = append(payload, &sessionPayload{
			SessionID:    session.SessionID,
			Title:        session.Title,
			MessageCount: session.MessageCount,
			StartedTs:    session.StartedTs,
			UpdatedTs:    session.UpdatedTs,
		})
	}
	return c.JSON(http.StatusOK, payload)
}

// ListSessionMessages returns the full transcript of one session.
func (s *APIV1Service) ListSessionMessages(c echo.Context) error {
	user := currentUser(c)
	sessionID := c.Param("sessionId")

	messages, err := s.Store.ListChatMessages(c.Request().Context(), &store.FindChatMessage{
		UserID:    &user.ID,
		SessionID: &sessionID,
	})
	if err != nil {
		return internalError(c, err)
	}

	payload := make([]*messagePayload, 0, len(messages))
	for _, message := range messages {
		payload = append(payload, &messagePayload{
			UID:       message.UID,
			Role:      message.Role,
			Content:   message.Content,
			Actions:   unmarshalActions(message.Actions),
			CreatedTs: message.CreatedTs,
		})
	}
	return c.JSON(http.StatusOK, payload)
}

// DeleteSession removes a session and all of its messages.
func (s *APIV1Service) DeleteSession(c echo.Context) error {
	user := currentUser(c)
	sessionID := c.Param("sessionId")

	if err := s.Store.DeleteChatSession(c.Request().Context(), &store.DeleteChatMessage{
		UserID:    user.ID,
		SessionID: sessionID,
	}); err != nil {
		return apiError(c, http.StatusNotFound, apierrors.ErrCodeInvalidArgument, "session not found")
	}
	return c.NoContent(http.StatusNoContent)
}

func unmarshalActions(encoded string) []agent.Action {
	if encoded == "" {
		return nil
	}
	var actions []agent.Action
	if err := json.Unmarshal([]byte(encoded), &actions); err != nil {
		return nil
	}
	return actions
}
