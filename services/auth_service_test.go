package services

import (
	"context"
	"errors"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cppla/serene/config"
	"github.com/cppla/serene/models"
	"github.com/cppla/serene/utils"
)

type fakeProvider struct {
	identity *OAuthIdentity
	err      error
}

func (f *fakeProvider) AuthCodeURL(state string) string {
	return "https://provider.test/authorize?state=" + url.QueryEscape(state)
}

func (f *fakeProvider) Identify(ctx context.Context, code string) (*OAuthIdentity, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.identity, nil
}

func newAuth(t *testing.T) *AuthService {
	t.Helper()
	return NewAuthService(openStores(t), "Europe/Paris", time.Hour)
}

func TestRegisterAndLogin(t *testing.T) {
	auth := newAuth(t)
	ctx := context.Background()

	res, err := auth.Register(ctx, RegisterInput{Email: " Ada@Example.com ", Password: "secret123", Username: "ada"})
	require.NoError(t, err)
	assert.NotEmpty(t, res.Token)
	assert.Equal(t, "ada@example.com", res.User.Email)
	require.NotNil(t, res.User.Profile)
	assert.Equal(t, 1, res.User.Profile.CurrentLevel)
	assert.Equal(t, "Europe/Paris", res.User.Profile.Timezone)

	claims, err := utils.ParseToken(res.Token)
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, claims.UserID)
	assert.Equal(t, "ada", claims.Username)

	login, err := auth.Login(ctx, "ADA@example.com", "secret123")
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, login.User.ID)

	_, err = auth.Login(ctx, "ada@example.com", "wrong-password")
	require.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = auth.Login(ctx, "ghost@example.com", "secret123")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	me, err := auth.Me(ctx, Session{UserID: res.User.ID})
	require.NoError(t, err)
	assert.Equal(t, "ada", me.Profile.Username)
}

func TestRegisterRejectsDuplicatesAndBadInput(t *testing.T) {
	auth := newAuth(t)
	ctx := context.Background()
	_, err := auth.Register(ctx, RegisterInput{Email: "grace@example.com", Password: "secret123", Username: "grace"})
	require.NoError(t, err)

	tests := []struct {
		name string
		in   RegisterInput
		want error
	}{
		{"duplicate email", RegisterInput{Email: "GRACE@example.com", Password: "secret123", Username: "other"}, ErrEmailTaken},
		{"duplicate username", RegisterInput{Email: "g2@example.com", Password: "secret123", Username: "Grace"}, ErrUsernameTaken},
		{"bad email", RegisterInput{Email: "not-an-email", Password: "secret123", Username: "valid"}, ErrValidation},
		{"short password", RegisterInput{Email: "s@example.com", Password: "123", Username: "valid"}, ErrValidation},
		{"bad username", RegisterInput{Email: "u@example.com", Password: "secret123", Username: "a b"}, ErrValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := auth.Register(ctx, tt.in)
			require.ErrorIs(t, err, tt.want)
		})
	}
}

func TestLogoutBlacklistsToken(t *testing.T) {
	auth := newAuth(t)
	res, err := auth.Register(context.Background(), RegisterInput{Email: "bye@example.com", Password: "secret123", Username: "bye"})
	require.NoError(t, err)

	assert.False(t, utils.IsTokenBlacklisted(res.Token))
	auth.Logout(res.Token, res.ExpiresAt)
	assert.True(t, utils.IsTokenBlacklisted(res.Token))
}

func TestOAuthCallbackCreatesThenReusesUser(t *testing.T) {
	auth := newAuth(t)
	ctx := context.Background()
	_, err := auth.Register(ctx, RegisterInput{Email: "octo@example.com", Password: "secret123", Username: "octocat"})
	require.NoError(t, err)

	auth.RegisterProvider(models.ProviderGitHub, &fakeProvider{identity: &OAuthIdentity{
		ID:        "42",
		Username:  "OctoCat",
		Email:     "octo@github.test",
		AvatarURL: "https://avatars.test/42.png",
	}})

	authURL, state, err := auth.OAuthLoginURL("GitHub")
	require.NoError(t, err)
	assert.Contains(t, authURL, url.QueryEscape(state))

	first, err := auth.OAuthCallback(ctx, "github", "code", state)
	require.NoError(t, err)
	assert.Equal(t, models.ProviderGitHub, first.User.Provider)
	assert.Equal(t, "octocat_1", first.User.Profile.Username)

	_, err = auth.OAuthCallback(ctx, "github", "code", state)
	require.ErrorIs(t, err, ErrInvalidState)

	_, state, err = auth.OAuthLoginURL("github")
	require.NoError(t, err)
	second, err := auth.OAuthCallback(ctx, "github", "code", state)
	require.NoError(t, err)
	assert.Equal(t, first.User.ID, second.User.ID)
}

func TestOAuthErrors(t *testing.T) {
	auth := newAuth(t)
	ctx := context.Background()

	_, _, err := auth.OAuthLoginURL("myspace")
	require.ErrorIs(t, err, ErrUnsupportedProvider)

	boom := errors.New("exchange failed")
	auth.RegisterProvider(models.ProviderGoogle, &fakeProvider{err: boom})
	_, state, err := auth.OAuthLoginURL("google")
	require.NoError(t, err)
	_, err = auth.OAuthCallback(ctx, "google", "code", state)
	require.ErrorIs(t, err, boom)

	_, err = auth.OAuthCallback(ctx, "google", "", "x")
	require.ErrorIs(t, err, ErrValidation)
}

func TestConfigureProvidersNeedsCredentials(t *testing.T) {
	auth := newAuth(t)
	auth.ConfigureProviders(config.AppConfig{
		OAuthRedirectBase:  "https://serene.test/",
		GitHubClientID:     "id",
		GitHubClientSecret: "secret",
		GoogleClientID:     "only-id",
	})

	authURL, _, err := auth.OAuthLoginURL("github")
	require.NoError(t, err)
	u, err := url.Parse(authURL)
	require.NoError(t, err)
	assert.Equal(t, "github.com", u.Host)
	assert.Equal(t, "https://serene.test/api/v1/auth/oauth/github/callback", u.Query().Get("redirect_uri"))

	_, _, err = auth.OAuthLoginURL("google")
	require.ErrorIs(t, err, ErrUnsupportedProvider)
}

func TestSanitizeUsername(t *testing.T) {
	assert.Equal(t, "jane_doe", sanitizeUsername("  Jane.Doe "))
	assert.Equal(t, "dev-ops", sanitizeUsername("dev-ops!!"))
	assert.Equal(t, "", sanitizeUsername("@@@"))
}
