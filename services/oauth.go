package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/github"
	"golang.org/x/oauth2/google"

	"github.com/cppla/serene/config"
	"github.com/cppla/serene/models"
	"github.com/cppla/serene/store"
	"github.com/cppla/serene/utils"
)

const oauthStateTTL = 10 * time.Minute

// OAuthIdentity is what a provider reports about the signed-in account.
type OAuthIdentity struct {
	ID        string
	Username  string
	Email     string
	AvatarURL string
}

// OAuthProvider is one external sign-in provider.
type OAuthProvider interface {
	AuthCodeURL(state string) string
	Identify(ctx context.Context, code string) (*OAuthIdentity, error)
}

type oauthProvider struct {
	config *oauth2.Config
	fetch  func(ctx context.Context, client *http.Client) (*OAuthIdentity, error)
}

func (p *oauthProvider) AuthCodeURL(state string) string {
	return p.config.AuthCodeURL(state, oauth2.AccessTypeOnline)
}

func (p *oauthProvider) Identify(ctx context.Context, code string) (*OAuthIdentity, error) {
	token, err := p.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("exchange code: %w", err)
	}
	return p.fetch(ctx, p.config.Client(ctx, token))
}

// ConfigureProviders registers GitHub and Google when their credentials are set.
func (a *AuthService) ConfigureProviders(cfg config.AppConfig) {
	base := strings.TrimRight(cfg.OAuthRedirectBase, "/")
	if cfg.GitHubClientID != "" && cfg.GitHubClientSecret != "" {
		a.RegisterProvider(models.ProviderGitHub, &oauthProvider{
			config: &oauth2.Config{
				ClientID:     cfg.GitHubClientID,
				ClientSecret: cfg.GitHubClientSecret,
				RedirectURL:  base + "/api/v1/auth/oauth/github/callback",
				Scopes:       []string{"read:user", "user:email"},
				Endpoint:     github.Endpoint,
			},
			fetch: fetchGitHubUser,
		})
	}
	if cfg.GoogleClientID != "" && cfg.GoogleClientSecret != "" {
		a.RegisterProvider(models.ProviderGoogle, &oauthProvider{
			config: &oauth2.Config{
				ClientID:     cfg.GoogleClientID,
				ClientSecret: cfg.GoogleClientSecret,
				RedirectURL:  base + "/api/v1/auth/oauth/google/callback",
				Scopes:       []string{"openid", "profile", "email"},
				Endpoint:     google.Endpoint,
			},
			fetch: fetchGoogleUser,
		})
	}
}

func (a *AuthService) RegisterProvider(name string, p OAuthProvider) {
	a.providers[strings.ToLower(name)] = p
}

func (a *AuthService) provider(name string) (OAuthProvider, error) {
	p, ok := a.providers[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedProvider, name)
	}
	return p, nil
}

// OAuthLoginURL issues a single-use state and returns the provider's consent URL.
func (a *AuthService) OAuthLoginURL(provider string) (authURL, state string, err error) {
	p, err := a.provider(provider)
	if err != nil {
		return "", "", err
	}
	state = uuid.NewString()
	utils.SaveState(state, oauthStateTTL)
	return p.AuthCodeURL(state), state, nil
}

// OAuthCallback completes the provider round trip and signs the user in,
// creating the account and profile on first sign-in.
func (a *AuthService) OAuthCallback(ctx context.Context, provider, code, state string) (*AuthResult, error) {
	if code == "" || state == "" {
		return nil, validationErrorf("missing code or state")
	}
	p, err := a.provider(provider)
	if err != nil {
		return nil, err
	}
	if !utils.ConsumeState(state) {
		return nil, ErrInvalidState
	}
	identity, err := p.Identify(ctx, code)
	if err != nil {
		return nil, err
	}
	if identity.ID == "" {
		return nil, fmt.Errorf("%s returned an empty account id", provider)
	}
	user, err := a.findOrCreateOAuthUser(ctx, strings.ToLower(provider), identity)
	if err != nil {
		return nil, err
	}
	return a.issue(user)
}

func (a *AuthService) findOrCreateOAuthUser(ctx context.Context, provider string, id *OAuthIdentity) (*models.User, error) {
	user, err := a.stores.Users.FindByProvider(ctx, provider, id.ID)
	if err == nil {
		if err := a.stores.Users.UpdateOAuth(ctx, user.ID, id.Email, id.AvatarURL); err != nil {
			utils.Logger.Warn("oauth profile refresh failed", zap.Uint("user_id", user.ID), zap.Error(err))
		}
		return user, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	username, err := a.ensureUniqueUsername(ctx, id.Username, provider, id.ID)
	if err != nil {
		return nil, err
	}
	user = &models.User{
		Email:      strings.TrimSpace(id.Email),
		Provider:   provider,
		ProviderID: id.ID,
		AvatarURL:  id.AvatarURL,
	}
	err = a.stores.Transaction(ctx, func(tx *store.Stores) error {
		if err := tx.Users.Create(ctx, user); err != nil {
			return fmt.Errorf("create user: %w", err)
		}
		profile, err := a.createProfile(ctx, tx, user.ID, username)
		if err != nil {
			return err
		}
		user.Profile = profile
		return nil
	})
	if err != nil {
		return nil, err
	}
	utils.Logger.Info("oauth user created", zap.String("provider", provider), zap.Uint("user_id", user.ID))
	return user, nil
}

// ensureUniqueUsername derives a valid username from the provider's handle
// and appends a counter until it is free.
func (a *AuthService) ensureUniqueUsername(ctx context.Context, base, provider, id string) (string, error) {
	base = sanitizeUsername(base)
	if len([]rune(base)) < MinUsernameLength {
		base = sanitizeUsername(provider + "_" + id)
	}
	if r := []rune(base); len(r) > MaxUsernameLength-4 {
		base = string(r[:MaxUsernameLength-4])
	}

	candidate := base
	for suffix := 1; ; suffix++ {
		taken, err := a.stores.Profiles.UsernameTaken(ctx, candidate, 0)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
		candidate = base + "_" + strconv.Itoa(suffix)
	}
}

func sanitizeUsername(input string) string {
	input = strings.ToLower(strings.TrimSpace(input))
	var b strings.Builder
	for _, r := range input {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-':
			b.WriteRune(r)
		case r == '_' || r == '.' || r == '@' || r == ' ':
			b.WriteRune('_')
		}
	}
	return strings.Trim(b.String(), "_")
}

func fetchGitHubUser(ctx context.Context, client *http.Client) (*OAuthIdentity, error) {
	var payload struct {
		ID        int64  `json:"id"`
		Login     string `json:"login"`
		AvatarURL string `json:"avatar_url"`
	}
	if err := getJSON(ctx, client, "https://api.github.com/user", &payload); err != nil {
		return nil, fmt.Errorf("github user: %w", err)
	}

	var emails []struct {
		Email    string `json:"email"`
		Primary  bool   `json:"primary"`
		Verified bool   `json:"verified"`
	}
	email := ""
	if err := getJSON(ctx, client, "https://api.github.com/user/emails", &emails); err == nil {
		for _, e := range emails {
			if e.Primary && e.Verified {
				email = e.Email
				break
			}
		}
	}

	return &OAuthIdentity{
		ID:        strconv.FormatInt(payload.ID, 10),
		Username:  payload.Login,
		Email:     email,
		AvatarURL: payload.AvatarURL,
	}, nil
}

func fetchGoogleUser(ctx context.Context, client *http.Client) (*OAuthIdentity, error) {
	var payload struct {
		ID      string `json:"id"`
		Email   string `json:"email"`
		Picture string `json:"picture"`
	}
	if err := getJSON(ctx, client, "https://www.googleapis.com/oauth2/v2/userinfo", &payload); err != nil {
		return nil, fmt.Errorf("google user: %w", err)
	}
	handle, _, _ := strings.Cut(payload.Email, "@")
	return &OAuthIdentity{
		ID:        payload.ID,
		Username:  handle,
		Email:     payload.Email,
		AvatarURL: payload.Picture,
	}, nil
}

func getJSON(ctx context.Context, client *http.Client, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("request failed: %s", resp.Status)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
