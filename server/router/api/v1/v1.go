// Package v1 implements the JSON API of the assistant.
package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"golang.org/x/sync/semaphore"

	"github.com/donna-ai/donna/internal/profile"
	"github.com/donna-ai/donna/plugin/ai"
	"github.com/donna-ai/donna/plugin/ai/agent"
	"github.com/donna-ai/donna/plugin/ai/aitime"
	"github.com/donna-ai/donna/plugin/ai/image"
	"github.com/donna-ai/donna/plugin/ai/schedule"
	"github.com/donna-ai/donna/plugin/ai/search"
	"github.com/donna-ai/donna/server/auth"
	"github.com/donna-ai/donna/server/calendar"
	apierrors "github.com/donna-ai/donna/server/internal/errors"
	"github.com/donna-ai/donna/server/timezone"
	"github.com/donna-ai/donna/store"
)

// maxConcurrentChats bounds in-flight chat requests. Each request can
// fan out into several model calls, so the bound is deliberately low.
const maxConcurrentChats = 4

type APIV1Service struct {
	Secret  string
	Profile *profile.Profile
	Store   *store.Store

	signer   *auth.Signer
	google   *auth.GoogleProvider
	calendar *calendar.Client
	router   *agent.Router

	chatSemaphore *semaphore.Weighted
}

func NewAPIV1Service(secret string, profile *profile.Profile, store *store.Store) (*APIV1Service, error) {
	googleProvider := auth.NewGoogleProvider(profile)

	service := &APIV1Service{
		Secret:        secret,
		Profile:       profile,
		Store:         store,
		signer:        auth.NewSigner(secret),
		google:        googleProvider,
		calendar:      calendar.NewClient(googleProvider),
		chatSemaphore: semaphore.NewWeighted(maxConcurrentChats),
	}

	if profile.IsAIEnabled() {
		cfg := ai.NewConfigFromProfile(profile)
		if err := cfg.Validate(); err != nil {
			return nil, errors.Wrap(err, "invalid ai config")
		}
		llm, err := ai.NewLLMService(cfg)
		if err != nil {
			return nil, errors.Wrap(err, "failed to create llm service")
		}

		defaultZone, err := timezone.ParseTimezone(profile.DefaultTimezone)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid default timezone %q", profile.DefaultTimezone)
		}
		resolver := aitime.NewResolver(ai.NewExtractor(llm, cfg.ClassifierModel), aitime.DefaultPolicy())
		builder := schedule.NewBuilder(resolver, defaultZone)
		images := image.NewService(cfg)
		searcher := search.NewService(llm, cfg.SearchModel, cfg.WeakModel)
		service.router = agent.NewRouter(llm, cfg, builder, images, searcher, defaultZone)
	}

	return service, nil
}

// RegisterRoutes attaches all API handlers to the echo instance.
func (s *APIV1Service) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api/v1")

	g.GET("/auth/google/login", s.GoogleLogin)
	g.GET("/auth/google/callback", s.GoogleCallback)

	authed := g.Group("", s.requireAuth)
	authed.GET("/me", s.GetCurrentUser)
	authed.POST("/chat", s.Chat)
	authed.GET("/sessions", s.ListSessions)
	authed.GET("/sessions/:sessionId/messages", s.ListSessionMessages)
	authed.DELETE("/sessions/:sessionId", s.DeleteSession)
	authed.GET("/calendar/events", s.ListCalendarEvents)
	authed.POST("/calendar/events", s.CreateCalendarEvent)
	authed.GET("/calendar/events/:eventId", s.GetCalendarEvent)
	authed.PATCH("/calendar/events/:eventId", s.UpdateCalendarEvent)
	authed.DELETE("/calendar/events/:eventId", s.DeleteCalendarEvent)
}

// errorResponse is the uniform error body of the API.
type errorResponse struct {
	Code    apierrors.ErrorCode `json:"code"`
	Message string              `json:"message"`
}

func apiError(c echo.Context, status int, code apierrors.ErrorCode, message string) error {
	return c.JSON(status, &errorResponse{Code: code, Message: message})
}

func internalError(c echo.Context, err error) error {
	code := apierrors.GetCodeFromError(err, apierrors.ErrCodeGateway)
	return apiError(c, http.StatusInternalServerError, code, err.Error())
}
