package auth

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/pkg/errors"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/donna-ai/donna/internal/profile"
)

const userInfoURL = "https://openidconnect.googleapis.com/v1/userinfo"

// calendarScope lets the assistant write events on the user's behalf.
const calendarScope = "https://www.googleapis.com/auth/calendar.events"

// GoogleUser is the subset of the OpenID userinfo response we keep.
type GoogleUser struct {
	Sub     string `json:"sub"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
}

// GoogleProvider drives the Google OAuth code flow.
type GoogleProvider struct {
	config *oauth2.Config
}

func NewGoogleProvider(profile *profile.Profile) *GoogleProvider {
	return &GoogleProvider{
		config: &oauth2.Config{
			ClientID:     profile.GoogleClientID,
			ClientSecret: profile.GoogleClientSecret,
			RedirectURL:  profile.GoogleRedirectURI,
			Scopes:       []string{"openid", "email", "profile", calendarScope},
			Endpoint:     google.Endpoint,
		},
	}
}

// IsConfigured reports whether Google sign-in can be used.
func (p *GoogleProvider) IsConfigured() bool {
	return p.config.ClientID != "" && p.config.ClientSecret != "" && p.config.RedirectURL != ""
}

// AuthURL builds the consent page URL. Offline access with forced
// consent is required to receive a refresh token on every sign-in.
func (p *GoogleProvider) AuthURL(state string) string {
	return p.config.AuthCodeURL(state,
		oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("prompt", "consent"))
}

// Exchange trades an authorization code for tokens.
func (p *GoogleProvider) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	token, err := p.config.Exchange(ctx, code)
	if err != nil {
		return nil, errors.Wrap(err, "failed to exchange authorization code")
	}
	return token, nil
}

// TokenSource returns a self-refreshing token source built from a
// stored refresh token.
func (p *GoogleProvider) TokenSource(ctx context.Context, refreshToken string) oauth2.TokenSource {
	return p.config.TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken})
}

// FetchUserInfo fetches the signed-in user's OpenID profile.
func (p *GoogleProvider) FetchUserInfo(ctx context.Context, token *oauth2.Token) (*GoogleUser, error) {
	client := p.config.Client(ctx, token)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, userInfoURL, nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to build userinfo request")
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "failed to fetch userinfo")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		return nil, errors.Errorf("userinfo request failed with status %d: %s", resp.StatusCode, body)
	}

	user := &GoogleUser{}
	if err := json.NewDecoder(resp.Body).Decode(user); err != nil {
		return nil, errors.Wrap(err, "failed to decode userinfo response")
	}
	if user.Sub == "" || user.Email == "" {
		return nil, errors.New("userinfo response missing subject or email")
	}
	return user, nil
}
