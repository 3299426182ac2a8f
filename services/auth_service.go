package services

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/cppla/serene/models"
	"github.com/cppla/serene/store"
	"github.com/cppla/serene/utils"
)

const (
	MinPasswordLength = 6
	MaxPasswordLength = 72
)

// AuthService manages accounts and issues bearer tokens.
type AuthService struct {
	stores          *store.Stores
	defaultTimezone string
	tokenTTL        time.Duration
	providers       map[string]OAuthProvider
}

func NewAuthService(stores *store.Stores, defaultTimezone string, tokenTTL time.Duration) *AuthService {
	if defaultTimezone == "" {
		defaultTimezone = "UTC"
	}
	return &AuthService{
		stores:          stores,
		defaultTimezone: defaultTimezone,
		tokenTTL:        tokenTTL,
		providers:       map[string]OAuthProvider{},
	}
}

// AuthResult is returned by every successful sign-in.
type AuthResult struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      *models.User `json:"user"`
}

// RegisterInput is a local sign-up request.
type RegisterInput struct {
	Email    string
	Password string
	Username string
}

// Register creates a local account together with a fresh profile at level 1.
func (a *AuthService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	email, err := normalizeEmail(in.Email)
	if err != nil {
		return nil, err
	}
	if err := validatePassword(in.Password); err != nil {
		return nil, err
	}
	username := strings.TrimSpace(in.Username)
	if err := ValidateUsername(username); err != nil {
		return nil, err
	}

	if taken, err := a.stores.Users.EmailTaken(ctx, email); err != nil {
		return nil, err
	} else if taken {
		return nil, ErrEmailTaken
	}
	if taken, err := a.stores.Profiles.UsernameTaken(ctx, username, 0); err != nil {
		return nil, err
	} else if taken {
		return nil, ErrUsernameTaken
	}

	hash, err := utils.HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &models.User{Email: email, PasswordHash: hash, Provider: models.ProviderLocal}
	err = a.stores.Transaction(ctx, func(tx *store.Stores) error {
		if err := tx.Users.Create(ctx, user); err != nil {
			return fmt.Errorf("create user: %w", err)
		}
		profile, err := a.createProfile(ctx, tx, user.ID, username)
		if err != nil {
			if errors.Is(err, store.ErrDuplicate) {
				return ErrUsernameTaken
			}
			return err
		}
		user.Profile = profile
		return nil
	})
	if err != nil {
		return nil, err
	}
	utils.Logger.Info("user registered", zap.Uint("user_id", user.ID), zap.String("username", username))
	return a.issue(user)
}

// Login checks local credentials. Unknown email and wrong password are
// indistinguishable to the caller.
func (a *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	user, err := a.stores.Users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !utils.CheckPassword(user.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	return a.issue(user)
}

// Logout revokes token until it would have expired anyway.
func (a *AuthService) Logout(token string, expiresAt time.Time) {
	utils.BlacklistToken(token, expiresAt)
}

// Me returns the account with its profile.
func (a *AuthService) Me(ctx context.Context, sess Session) (*models.User, error) {
	return a.stores.Users.Get(ctx, sess.UserID)
}

func (a *AuthService) createProfile(ctx context.Context, tx *store.Stores, userID uint, username string) (*models.Profile, error) {
	profile := &models.Profile{
		UserID:       userID,
		Username:     username,
		CurrentLevel: 1,
		Timezone:     a.defaultTimezone,
	}
	if err := tx.Profiles.Create(ctx, profile); err != nil {
		return nil, fmt.Errorf("create profile: %w", err)
	}
	return profile, nil
}

func (a *AuthService) issue(user *models.User) (*AuthResult, error) {
	username := ""
	if user.Profile != nil {
		username = user.Profile.Username
	}
	token, err := utils.GenerateToken(user.ID, username, a.tokenTTL)
	if err != nil {
		return nil, fmt.Errorf("generate token: %w", err)
	}
	return &AuthResult{Token: token, ExpiresAt: time.Now().Add(a.tokenTTL), User: user}, nil
}

func normalizeEmail(raw string) (string, error) {
	email := strings.ToLower(strings.TrimSpace(raw))
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", validationErrorf("invalid email address")
	}
	return email, nil
}

func validatePassword(p string) error {
	if len(p) < MinPasswordLength {
		return validationErrorf("password too short")
	}
	if len(p) > MaxPasswordLength {
		return validationErrorf("password too long")
	}
	return nil
}
