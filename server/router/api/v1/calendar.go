package v1

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/donna-ai/donna/plugin/ai/schedule"
	"github.com/donna-ai/donna/server/calendar"
	apierrors "github.com/donna-ai/donna/server/internal/errors"
	"github.com/donna-ai/donna/store"
)

type createCalendarEventRequest struct {
	Summary     string    `json:"summary"`
	Description string    `json:"description"`
	Location    string    `json:"location"`
	Start       time.Time `json:"start_datetime"`
	End         time.Time `json:"end_datetime"`
	Timezone    string    `json:"timezone"`
	IsAllDay    bool      `json:"is_all_day"`
	Recurrence  string    `json:"recurrence"`
}

type updateCalendarEventRequest struct {
	Summary     *string    `json:"summary"`
	Description *string    `json:"description"`
	Location    *string    `json:"location"`
	Start       *time.Time `json:"start_datetime"`
	End         *time.Time `json:"end_datetime"`
	Timezone    string     `json:"timezone"`
}

// ListCalendarEvents returns the user's calendar events, optionally
// bounded by timeMin and timeMax query parameters in RFC 3339.
func (s *APIV1Service) ListCalendarEvents(c echo.Context) error {
	user := currentUser(c)
	refreshToken, err := s.calendarToken(user)
	if err != nil {
		return calendarError(c, err)
	}

	events, err := s.calendar.ListEvents(c.Request().Context(), refreshToken, c.QueryParam("timeMin"), c.QueryParam("timeMax"))
	if err != nil {
		return calendarError(c, err)
	}
	return c.JSON(http.StatusOK, events)
}

// GetCalendarEvent fetches one event by its provider id.
func (s *APIV1Service) GetCalendarEvent(c echo.Context) error {
	user := currentUser(c)
	refreshToken, err := s.calendarToken(user)
	if err != nil {
		return calendarError(c, err)
	}

	event, err := s.calendar.GetEvent(c.Request().Context(), refreshToken, c.Param("eventId"))
	if err != nil {
		return calendarError(c, err)
	}
	return c.JSON(http.StatusOK, event)
}

// CreateCalendarEvent writes a new event to the user's calendar.
func (s *APIV1Service) CreateCalendarEvent(c echo.Context) error {
	user := currentUser(c)
	refreshToken, err := s.calendarToken(user)
	if err != nil {
		return calendarError(c, err)
	}

	request := &createCalendarEventRequest{}
	if err := c.Bind(request); err != nil {
		return apiError(c, http.StatusBadRequest, apierrors.ErrCodeInvalidArgument, "malformed request body")
	}
	if request.Start.IsZero() {
		return apiError(c, http.StatusBadRequest, apierrors.ErrCodeInvalidArgument, "start_datetime is required")
	}
	if request.End.IsZero() {
		request.End = request.Start.Add(time.Hour)
	}
	if request.Timezone == "" {
		request.Timezone = s.Profile.DefaultTimezone
	}
	if request.Summary == "" {
		request.Summary = "Meeting"
	}

	event, err := s.calendar.InsertDraft(c.Request().Context(), refreshToken, &schedule.CalendarEventDraft{
		Summary:     request.Summary,
		Description: request.Description,
		Location:    request.Location,
		Start:       request.Start,
		End:         request.End,
		Timezone:    request.Timezone,
		IsAllDay:    request.IsAllDay,
		Recurrence:  request.Recurrence,
	})
	if err != nil {
		return calendarError(c, err)
	}
	return c.JSON(http.StatusCreated, event)
}

// UpdateCalendarEvent applies a partial update to an existing event.
// Only the fields present in the body are sent to the provider.
func (s *APIV1Service) UpdateCalendarEvent(c echo.Context) error {
	user := currentUser(c)
	refreshToken, err := s.calendarToken(user)
	if err != nil {
		return calendarError(c, err)
	}

	request := &updateCalendarEventRequest{}
	if err := c.Bind(request); err != nil {
		return apiError(c, http.StatusBadRequest, apierrors.ErrCodeInvalidArgument, "malformed request body")
	}

	update := &calendar.Event{}
	if request.Summary != nil {
		update.Summary = *request.Summary
	}
	if request.Description != nil {
		update.Description = *request.Description
	}
	if request.Location != nil {
		update.Location = *request.Location
	}
	timeZone := request.Timezone
	if timeZone == "" {
		timeZone = s.Profile.DefaultTimezone
	}
	if request.Start != nil {
		update.Start = &calendar.EventTime{DateTime: request.Start.Format(time.RFC3339), TimeZone: timeZone}
	}
	if request.End != nil {
		update.End = &calendar.EventTime{DateTime: request.End.Format(time.RFC3339), TimeZone: timeZone}
	}

	event, err := s.calendar.PatchEvent(c.Request().Context(), refreshToken, c.Param("eventId"), update)
	if err != nil {
		return calendarError(c, err)
	}
	return c.JSON(http.StatusOK, event)
}

// DeleteCalendarEvent removes an event from the user's calendar.
func (s *APIV1Service) DeleteCalendarEvent(c echo.Context) error {
	user := currentUser(c)
	refreshToken, err := s.calendarToken(user)
	if err != nil {
		return calendarError(c, err)
	}

	if err := s.calendar.DeleteEvent(c.Request().Context(), refreshToken, c.Param("eventId")); err != nil {
		return calendarError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *APIV1Service) calendarToken(user *store.User) (string, error) {
	if user.RefreshToken == "" {
		return "", calendar.ErrNotAuthorized
	}
	return user.RefreshToken, nil
}

func calendarError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, calendar.ErrNotAuthorized):
		return apiError(c, http.StatusUnauthorized, apierrors.ErrCodeUnauthorized, "google calendar is not connected for this account")
	case errors.Is(err, calendar.ErrEventNotFound):
		return apiError(c, http.StatusNotFound, apierrors.ErrCodeProvider, "calendar event not found")
	default:
		return apiError(c, http.StatusBadGateway, apierrors.ErrCodeProvider, err.Error())
	}
}
