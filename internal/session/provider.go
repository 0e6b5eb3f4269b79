// Package session is the identity provider: account sign-up, password sign-in,
// bearer-token resolution and sign-out. Provider is stateless and shared by the
// API; Client wraps it with the single current session a storefront holds.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Skotchmaster/pcshop/internal/events"
	"github.com/Skotchmaster/pcshop/internal/hash"
	"github.com/Skotchmaster/pcshop/internal/logging"
	"github.com/Skotchmaster/pcshop/internal/models"
	"github.com/Skotchmaster/pcshop/internal/repo"
	"github.com/Skotchmaster/pcshop/internal/tokens"
)

var (
	ErrValidation         = errors.New("validation")
	ErrConflict           = errors.New("conflict")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnauthorized       = errors.New("unauthorized")
)

const minPasswordLen = 6

type Session struct {
	AccessToken string      `json:"access_token"`
	ExpiresAt   time.Time   `json:"expires_at"`
	User        models.User `json:"user"`
}

type Provider struct {
	Repo   *repo.GormRepo
	Secret []byte
	TTL    time.Duration
	Events events.Publisher
	Now    func() time.Time
}

func (p *Provider) now() time.Time {
	if p.Now != nil {
		return p.Now().UTC()
	}
	return time.Now().UTC()
}

type Profile struct {
	FirstName *string
	LastName  *string
}

func (p *Provider) SignUp(ctx context.Context, email, password string, profile Profile) (*models.User, error) {
	l := logging.FromContext(ctx).With("svc", "session.sign_up")

	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, fmt.Errorf("%w: valid email required", ErrValidation)
	}
	if len(password) < minPasswordLen {
		return nil, fmt.Errorf("%w: password must be at least %d characters", ErrValidation, minPasswordLen)
	}

	pwHash, err := hash.HashPassword(password)
	if err != nil {
		l.Error("sign_up_error", "status", 500, "reason", "cannot hash the password", "error", err)
		return nil, err
	}

	now := p.now()
	identity := &models.Identity{
		Email:            email,
		PasswordHash:     pwHash,
		EmailConfirmedAt: &now,
	}
	user := &models.User{
		FirstName: profile.FirstName,
		LastName:  profile.LastName,
	}

	if err := p.Repo.CreateAccount(ctx, identity, user); err != nil {
		if errors.Is(err, repo.ErrUserAlreadyExist) {
			l.Warn("sign_up_error", "status", 409, "reason", "user already exist")
			return nil, fmt.Errorf("%w: user already exist", ErrConflict)
		}
		l.Error("sign_up_error", "status", 500, "reason", "cannot create account", "error", err)
		return nil, err
	}

	events.Publish(ctx, p.Events, events.TopicUsers, user.ID.String(), map[string]any{
		"type":   "user_signed_up",
		"userID": user.ID,
	})
	return user, nil
}

func (p *Provider) SignIn(ctx context.Context, email, password string) (*Session, error) {
	l := logging.FromContext(ctx).With("svc", "session.sign_in")

	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, fmt.Errorf("%w: email and password required", ErrValidation)
	}

	identity, err := p.Repo.GetIdentityByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			l.Warn("sign_in_failed", "status", 401, "reason", "unknown email")
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !hash.CheckPassword(identity.PasswordHash, password) {
		l.Warn("sign_in_failed", "status", 401, "reason", "wrong password")
		return nil, ErrInvalidCredentials
	}

	user, err := p.Repo.GetUserById(ctx, identity.ID)
	if err != nil {
		return nil, fmt.Errorf("load profile: %w", err)
	}

	now := p.now()
	exp := now.Add(p.TTL)
	jti := tokens.NewJTI()
	token, err := tokens.SignAccessToken(identity.ID, identity.Email, jti, exp, p.Secret)
	if err != nil {
		return nil, err
	}
	if err := p.Repo.AddSession(ctx, uuid.MustParse(jti), identity.ID, token, exp); err != nil {
		return nil, err
	}
	if err := p.Repo.TouchSignIn(ctx, identity.ID, now); err != nil {
		l.Warn("touch_sign_in_failed", "error", err)
	}

	return &Session{AccessToken: token, ExpiresAt: exp, User: *user}, nil
}

// GetUser resolves a bearer token to the profile of its owner.
func (p *Provider) GetUser(ctx context.Context, token string) (*models.User, error) {
	claims, err := p.claims(ctx, token)
	if err != nil {
		return nil, err
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, fmt.Errorf("%w: bad subject", ErrUnauthorized)
	}

	user, err := p.Repo.GetUserById(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: user not found", ErrUnauthorized)
		}
		return nil, err
	}
	return user, nil
}

func (p *Provider) claims(ctx context.Context, token string) (*tokens.AccessClaims, error) {
	if token == "" {
		return nil, fmt.Errorf("%w: missing token", ErrUnauthorized)
	}
	claims, err := tokens.AccessClaimsFromToken(token, p.Secret)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}
	jti, err := uuid.Parse(claims.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: bad token id", ErrUnauthorized)
	}
	active, err := p.Repo.SessionActive(ctx, jti, p.now())
	if err != nil {
		return nil, err
	}
	if !active {
		return nil, fmt.Errorf("%w: session expired or revoked", ErrUnauthorized)
	}
	return claims, nil
}

func (p *Provider) IsAdmin(ctx context.Context, userID uuid.UUID) (bool, error) {
	user, err := p.Repo.GetUserById(ctx, userID)
	if err != nil {
		return false, err
	}
	return user.IsAdmin, nil
}

// SignOut revokes the session behind the token.
func (p *Provider) SignOut(ctx context.Context, token string) error {
	claims, err := p.claims(ctx, token)
	if err != nil {
		return err
	}
	return p.Repo.RevokeSession(ctx, uuid.MustParse(claims.ID))
}
