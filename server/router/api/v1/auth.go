package v1

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/lithammer/shortuuid/v4"

	apierrors "github.com/donna-ai/donna/server/internal/errors"
	"github.com/donna-ai/donna/store"
)

const (
	stateCookieName = "oauth_state"
	stateCookieAge  = 10 * time.Minute

	userContextKey = "donna.user"
)

// GoogleLogin starts the Google sign-in flow. The state value is
// pinned in a short-lived cookie and checked on callback.
func (s *APIV1Service) GoogleLogin(c echo.Context) error {
	if !s.google.IsConfigured() {
		return apiError(c, http.StatusNotImplemented, apierrors.ErrCodeUnauthorized, "Google sign-in is not configured")
	}

	state := shortuuid.New()
	c.SetCookie(&http.Cookie{
		Name:     stateCookieName,
		Value:    state,
		Path:     "/",
		MaxAge:   int(stateCookieAge.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	return c.JSON(http.StatusOK, map[string]string{
		"auth_url": s.google.AuthURL(state),
	})
}

// GoogleCallback finishes the sign-in flow: it exchanges the code,
// upserts the account and returns an access token.
func (s *APIV1Service) GoogleCallback(c echo.Context) error {
	ctx := c.Request().Context()

	code := c.QueryParam("code")
	if code == "" {
		return apiError(c, http.StatusBadRequest, apierrors.ErrCodeInvalidArgument, "missing authorization code")
	}
	state := c.QueryParam("state")
	cookie, err := c.Cookie(stateCookieName)
	if err != nil || cookie.Value == "" || cookie.Value != state {
		return apiError(c, http.StatusBadRequest, apierrors.ErrCodeInvalidArgument, "state mismatch")
	}

	token, err := s.google.Exchange(ctx, code)
	if err != nil {
		return apiError(c, http.StatusUnauthorized, apierrors.ErrCodeUnauthorized, "failed to exchange authorization code")
	}
	info, err := s.google.FetchUserInfo(ctx, token)
	if err != nil {
		return apiError(c, http.StatusUnauthorized, apierrors.ErrCodeUnauthorized, "failed to fetch user info")
	}

	user, err := s.upsertGoogleUser(c, info.Sub, info.Email, info.Name, info.Picture, token.RefreshToken)
	if err != nil {
		return internalError(c, err)
	}

	accessToken, err := s.signer.Issue(user.ID, user.Email)
	if err != nil {
		return internalError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]any{
		"access_token": accessToken,
		"user": map[string]any{
			"id":      user.ID,
			"email":   user.Email,
			"name":    user.Name,
			"picture": user.Picture,
		},
	})
}

func (s *APIV1Service) upsertGoogleUser(c echo.Context, googleID, email, name, picture, refreshToken string) (*store.User, error) {
	ctx := c.Request().Context()

	existing, err := s.Store.GetUser(ctx, &store.FindUser{GoogleID: &googleID})
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return s.Store.CreateUser(ctx, &store.User{
			Email:        email,
			Name:         name,
			Picture:      picture,
			GoogleID:     googleID,
			RefreshToken: refreshToken,
			CreatedTs:    time.Now().Unix(),
		})
	}

	update := &store.UpdateUser{
		ID:      existing.ID,
		Name:    &name,
		Picture: &picture,
	}
	// Google only returns a refresh token on consent. Keep the stored
	// one when the callback omits it.
	if refreshToken != "" {
		update.RefreshToken = &refreshToken
	}
	return s.Store.UpdateUser(c.Request().Context(), update)
}

// requireAuth verifies the bearer token and loads the account into the
// request context.
func (s *APIV1Service) requireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		header := c.Request().Header.Get(echo.HeaderAuthorization)
		tokenString, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || tokenString == "" {
			return apiError(c, http.StatusUnauthorized, apierrors.ErrCodeUnauthorized, "missing bearer token")
		}

		userID, _, err := s.signer.Verify(tokenString)
		if err != nil {
			return apiError(c, http.StatusUnauthorized, apierrors.ErrCodeUnauthorized, "invalid access token")
		}

		user, err := s.Store.GetUser(c.Request().Context(), &store.FindUser{ID: &userID})
		if err != nil {
			return internalError(c, err)
		}
		if user == nil {
			return apiError(c, http.StatusUnauthorized, apierrors.ErrCodeUnauthorized, "account no longer exists")
		}

		c.Set(userContextKey, user)
		return next(c)
	}
}

func currentUser(c echo.Context) *store.User {
	user, _ := c.Get(userContextKey).(*store.User)
	return user
}

// GetCurrentUser returns the authenticated account.
func (s *APIV1Service) GetCurrentUser(c echo.Context) error {
	user := currentUser(c)
	return c.JSON(http.StatusOK, map[string]any{
		"id":      user.ID,
		"email":   user.Email,
		"name":    user.Name,
		"picture": user.Picture,
	})
}
