package v1

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/donna-ai/donna/server/calendar"
	"github.com/donna-ai/donna/store"
)

func connectedUser(t *testing.T, service *APIV1Service) *store.User {
	t.Helper()
	user, err := service.Store.CreateUser(context.Background(), &store.User{
		Email:        "user@example.com",
		GoogleID:     "g-123",
		RefreshToken: "refresh-token",
	})
	require.NoError(t, err)
	return user
}

func performCalendarRequest(t *testing.T, service *APIV1Service, user *store.User, method, target, body string, handler func(echo.Context) error, pathParam ...string) *httptest.ResponseRecorder {
	t.Helper()

	e := echo.New()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set(userContextKey, user)
	if len(pathParam) == 2 {
		c.SetParamNames(pathParam[0])
		c.SetParamValues(pathParam[1])
	}

	require.NoError(t, handler(c))
	return rec
}

func TestListCalendarEvents(t *testing.T) {
	calendarServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		require.Equal(t, "2024-06-01T00:00:00Z", r.URL.Query().Get("timeMin"))
		json.NewEncoder(w).Encode(map[string]any{
			"items": []map[string]string{
				{"id": "evt_1", "summary": "Sync"},
			},
		})
	}))
	defer calendarServer.Close()

	service := newTestService(t, &memoryDriver{}, calendarServer.URL)
	user := connectedUser(t, service)

	rec := performCalendarRequest(t, service, user, http.MethodGet,
		"/api/v1/calendar/events?timeMin=2024-06-01T00%3A00%3A00Z", "", service.ListCalendarEvents)
	require.Equal(t, http.StatusOK, rec.Code)

	var events []*calendar.Event
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &events))
	require.Len(t, events, 1)
	require.Equal(t, "evt_1", events[0].ID)
	require.Equal(t, "Sync", events[0].Summary)
}

func TestListCalendarEvents_NotConnected(t *testing.T) {
	service := newTestService(t, &memoryDriver{}, "http://calendar.invalid")
	user, err := service.Store.CreateUser(context.Background(), &store.User{
		Email:    "user@example.com",
		GoogleID: "g-123",
	})
	require.NoError(t, err)

	rec := performCalendarRequest(t, service, user, http.MethodGet,
		"/api/v1/calendar/events", "", service.ListCalendarEvents)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Contains(t, rec.Body.String(), "UNAUTHORIZED")
}

func TestCreateCalendarEvent(t *testing.T) {
	var received map[string]any
	calendarServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		json.NewEncoder(w).Encode(map[string]string{
			"id":       "evt_7",
			"htmlLink": "https://calendar.google.com/event?eid=evt_7",
		})
	}))
	defer calendarServer.Close()

	service := newTestService(t, &memoryDriver{}, calendarServer.URL)
	user := connectedUser(t, service)

	rec := performCalendarRequest(t, service, user, http.MethodPost, "/api/v1/calendar/events",
		`{"summary": "Planning", "start_datetime": "2024-06-02T15:00:00+06:00"}`,
		service.CreateCalendarEvent)
	require.Equal(t, http.StatusCreated, rec.Code)

	event := &calendar.Event{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), event))
	require.Equal(t, "evt_7", event.ID)

	require.Equal(t, "Planning", received["summary"])
	start := received["start"].(map[string]any)
	end := received["end"].(map[string]any)
	require.Equal(t, "2024-06-02T15:00:00+06:00", start["dateTime"])
	require.Equal(t, "Asia/Dhaka", start["timeZone"])
	// The end defaults to one hour after the start.
	require.Equal(t, "2024-06-02T16:00:00+06:00", end["dateTime"])
}

func TestCreateCalendarEvent_MissingStartRejected(t *testing.T) {
	service := newTestService(t, &memoryDriver{}, "http://calendar.invalid")
	user := connectedUser(t, service)

	rec := performCalendarRequest(t, service, user, http.MethodPost, "/api/v1/calendar/events",
		`{"summary": "Planning"}`, service.CreateCalendarEvent)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), "start_datetime")
}

func TestGetCalendarEvent_NotFound(t *testing.T) {
	calendarServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer calendarServer.Close()

	service := newTestService(t, &memoryDriver{}, calendarServer.URL)
	user := connectedUser(t, service)

	rec := performCalendarRequest(t, service, user, http.MethodGet,
		"/api/v1/calendar/events/evt_missing", "", service.GetCalendarEvent, "eventId", "evt_missing")
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUpdateCalendarEvent_PartialPatch(t *testing.T) {
	var received map[string]any
	calendarServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPatch, r.Method)
		require.Equal(t, "/calendars/primary/events/evt_9", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		json.NewEncoder(w).Encode(map[string]string{"id": "evt_9", "summary": "Moved sync"})
	}))
	defer calendarServer.Close()

	service := newTestService(t, &memoryDriver{}, calendarServer.URL)
	user := connectedUser(t, service)

	rec := performCalendarRequest(t, service, user, http.MethodPatch,
		"/api/v1/calendar/events/evt_9", `{"summary": "Moved sync"}`,
		service.UpdateCalendarEvent, "eventId", "evt_9")
	require.Equal(t, http.StatusOK, rec.Code)

	require.Equal(t, "Moved sync", received["summary"])
	require.NotContains(t, received, "start")
	require.NotContains(t, received, "end")
}

func TestDeleteCalendarEvent(t *testing.T) {
	calendarServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodDelete, r.Method)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer calendarServer.Close()

	service := newTestService(t, &memoryDriver{}, calendarServer.URL)
	user := connectedUser(t, service)

	rec := performCalendarRequest(t, service, user, http.MethodDelete,
		"/api/v1/calendar/events/evt_9", "", service.DeleteCalendarEvent, "eventId", "evt_9")
	require.Equal(t, http.StatusNoContent, rec.Code)
}
