package v1

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/lithammer/shortuuid/v4"

	"github.com/donna-ai/donna/plugin/ai"
	"github.com/donna-ai/donna/plugin/ai/agent"
	"github.com/donna-ai/donna/plugin/ai/schedule"
	"github.com/donna-ai/donna/server/calendar"
	apierrors "github.com/donna-ai/donna/server/internal/errors"
	"github.com/donna-ai/donna/store"
)

// historyWindow is the number of prior turns replayed to the model.
const historyWindow = 20

type chatRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id"`
}

type chatResponse struct {
	SessionID string         `json:"session_id"`
	Response  string         `json:"response"`
	Actions   []agent.Action `json:"actions"`
}

// Chat runs one turn of conversation: classify, dispatch, persist,
// then execute any pending calendar writes.
func (s *APIV1Service) Chat(c echo.Context) error {
	ctx := c.Request().Context()
	user := currentUser(c)

	if s.router == nil {
		return apiError(c, http.StatusServiceUnavailable, apierrors.ErrCodeGateway, "assistant is not configured")
	}

	request := &chatRequest{}
	if err := c.Bind(request); err != nil {
		return apiError(c, http.StatusBadRequest, apierrors.ErrCodeInvalidArgument, "malformed request body")
	}
	request.Message = strings.TrimSpace(request.Message)
	if request.Message == "" {
		return apiError(c, http.StatusBadRequest, apierrors.ErrCodeInvalidArgument, "message must not be empty")
	}

	if err := s.chatSemaphore.Acquire(ctx, 1); err != nil {
		return apiError(c, http.StatusServiceUnavailable, apierrors.ErrCodeGateway, "server is shutting down")
	}
	defer s.chatSemaphore.Release(1)

	sessionID := strings.TrimSpace(request.SessionID)
	if sessionID == "" {
		sessionID = shortuuid.New()
	}

	history, err := s.chatHistory(ctx, user.ID, sessionID)
	if err != nil {
		return internalError(c, err)
	}

	responseText, actions := s.router.Route(ctx, request.Message, history)

	now := time.Now().Unix()
	if _, err := s.Store.CreateChatMessage(ctx, &store.ChatMessage{
		UID:       shortuuid.New(),
		UserID:    user.ID,
		SessionID: sessionID,
		Role:      "user",
		Content:   request.Message,
		CreatedTs: now,
	}); err != nil {
		return internalError(c, err)
	}

	assistantUID := shortuuid.New()
	if _, err := s.Store.CreateChatMessage(ctx, &store.ChatMessage{
		UID:       assistantUID,
		UserID:    user.ID,
		SessionID: sessionID,
		Role:      "assistant",
		Content:   responseText,
		Actions:   marshalActions(actions),
		CreatedTs: now,
	}); err != nil {
		return internalError(c, err)
	}

	if s.executeCalendarActions(ctx, user, actions) {
		if err := s.Store.UpdateChatMessageActions(ctx, assistantUID, marshalActions(actions)); err != nil {
			slog.Error("failed to update persisted actions", "error", err, "uid", assistantUID)
		}
	}

	return c.JSON(http.StatusOK, &chatResponse{
		SessionID: sessionID,
		Response:  responseText,
		Actions:   actions,
	})
}

// chatHistory replays the tail of the session as model messages.
func (s *APIV1Service) chatHistory(ctx context.Context, userID int32, sessionID string) ([]ai.Message, error) {
	messages, err := s.Store.ListRecentChatMessages(ctx, userID, sessionID, historyWindow)
	if err != nil {
		return nil, err
	}
	history := make([]ai.Message, 0, len(messages))
	for _, message := range messages {
		switch message.Role {
		case "user":
			history = append(history, ai.UserMessage(message.Content))
		case "assistant":
			history = append(history, ai.AssistantMessage(message.Content))
		}
	}
	return history, nil
}

// executeCalendarActions performs the pending calendar writes in the
// action list, mutating each entry with the outcome. It reports
// whether anything changed.
func (s *APIV1Service) executeCalendarActions(ctx context.Context, user *store.User, actions []agent.Action) bool {
	changed := false
	for i := range actions {
		if actions[i].Type != agent.ActionCalendarEventPending {
			continue
		}
		changed = true

		draft, err := draftFromDetails(actions[i].Details)
		if err != nil {
			actions[i].Type = agent.ActionCalendarEventFailed
			actions[i].Details["error"] = err.Error()
			continue
		}

		event, err := s.calendar.InsertDraft(ctx, user.RefreshToken, draft)
		switch {
		case err == nil:
			actions[i].Type = agent.ActionCalendarEventCreated
			actions[i].Details["eventId"] = event.ID
			actions[i].Details["htmlLink"] = event.HTMLLink
		case errors.Is(err, calendar.ErrNotAuthorized):
			actions[i].Type = agent.ActionCalendarEventNeedsAuth
		default:
			providerErr := apierrors.Provider("calendar write rejected", err)
			slog.Warn("calendar write failed", "error", providerErr, "user_id", user.ID)
			actions[i].Type = agent.ActionCalendarEventFailed
			actions[i].Details["error"] = providerErr.Error()
		}
	}
	return changed
}

// draftFromDetails rebuilds the event draft persisted with a pending
// action.
func draftFromDetails(details map[string]any) (*schedule.CalendarEventDraft, error) {
	start, err := time.Parse(time.RFC3339, detailString(details, "start_datetime"))
	if err != nil {
		return nil, err
	}
	end, err := time.Parse(time.RFC3339, detailString(details, "end_datetime"))
	if err != nil {
		return nil, err
	}
	isAllDay, _ := details["is_all_day"].(bool)
	return &schedule.CalendarEventDraft{
		Summary:     detailString(details, "summary"),
		Description: detailString(details, "description"),
		Location:    detailString(details, "location"),
		Start:       start,
		End:         end,
		Timezone:    detailString(details, "timezone"),
		IsAllDay:    isAllDay,
		Recurrence:  detailString(details, "recurrence"),
	}, nil
}

func detailString(details map[string]any, key string) string {
	value, _ := details[key].(string)
	return value
}

func marshalActions(actions []agent.Action) string {
	if len(actions) == 0 {
		return ""
	}
	encoded, err := json.Marshal(actions)
	if err != nil {
		slog.Error("failed to encode actions", "error", err)
		return ""
	}
	return string(encoded)
}
