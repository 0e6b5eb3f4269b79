package users

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Skotchmaster/pcshop/internal/events"
	"github.com/Skotchmaster/pcshop/internal/logging"
	"github.com/Skotchmaster/pcshop/internal/repo"
)

var (
	ErrValidation   = errors.New("validation")
	ErrNotFound     = errors.New("not found")
	ErrSelfDemotion = errors.New("cannot remove your own admin rights")
)

// Account is an identity record merged with its profile row.
type Account struct {
	ID               uuid.UUID  `json:"id"`
	Email            string     `json:"email"`
	FirstName        *string    `json:"first_name"`
	LastName         *string    `json:"last_name"`
	IsAdmin          bool       `json:"is_admin"`
	EmailConfirmedAt *time.Time `json:"email_confirmed_at"`
	LastSignInAt     *time.Time `json:"last_sign_in_at"`
	CreatedAt        time.Time  `json:"created_at"`
}

type UserService struct {
	Repo   *repo.GormRepo
	Events events.Publisher
}

// ListUsers returns every identity, newest first. Identities without a
// profile row are listed with empty profile fields.
func (s *UserService) ListUsers(ctx context.Context) ([]Account, error) {
	identities, err := s.Repo.ListIdentities(ctx)
	if err != nil {
		return nil, err
	}
	profiles, err := s.Repo.ListUsers(ctx)
	if err != nil {
		return nil, err
	}

	byID := make(map[uuid.UUID]int, len(profiles))
	for i, p := range profiles {
		byID[p.ID] = i
	}

	out := make([]Account, 0, len(identities))
	for _, id := range identities {
		acc := Account{
			ID:               id.ID,
			Email:            id.Email,
			EmailConfirmedAt: id.EmailConfirmedAt,
			LastSignInAt:     id.LastSignInAt,
			CreatedAt:        id.CreatedAt,
		}
		if i, ok := byID[id.ID]; ok {
			p := profiles[i]
			acc.FirstName = p.FirstName
			acc.LastName = p.LastName
			acc.IsAdmin = p.IsAdmin
		}
		out = append(out, acc)
	}
	return out, nil
}

// ToggleAdmin flips the target's admin flag. An admin may not clear their own.
func (s *UserService) ToggleAdmin(ctx context.Context, callerID, targetID uuid.UUID) (bool, error) {
	l := logging.FromContext(ctx).With("svc", "users.toggle_admin")

	target, err := s.Repo.GetUserById(ctx, targetID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, fmt.Errorf("%w: user %s", ErrNotFound, targetID)
		}
		return false, err
	}
	if callerID == targetID && target.IsAdmin {
		l.Warn("toggle_admin_refused", "status", 409, "reason", "self demotion", "user_id", targetID)
		return false, ErrSelfDemotion
	}

	isAdmin, err := s.Repo.ToggleAdmin(ctx, targetID)
	if err != nil {
		return false, err
	}

	events.Publish(ctx, s.Events, events.TopicUsers, targetID.String(), map[string]any{
		"type":    "user_admin_toggled",
		"userID":  targetID,
		"isAdmin": isAdmin,
		"by":      callerID,
	})
	return isAdmin, nil
}

type ProfileInput struct {
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
}

func (s *UserService) UpdateProfile(ctx context.Context, userID uuid.UUID, in ProfileInput) (*Account, error) {
	updates := map[string]any{}
	if in.FirstName != nil {
		updates["first_name"] = strings.TrimSpace(*in.FirstName)
	}
	if in.LastName != nil {
		updates["last_name"] = strings.TrimSpace(*in.LastName)
	}
	if len(updates) == 0 {
		return nil, fmt.Errorf("%w: nothing to update", ErrValidation)
	}

	user, err := s.Repo.UpdateUser(ctx, userID, updates)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: user %s", ErrNotFound, userID)
		}
		return nil, err
	}

	events.Publish(ctx, s.Events, events.TopicUsers, userID.String(), map[string]any{
		"type":   "user_profile_updated",
		"userID": userID,
	})
	return &Account{
		ID:        user.ID,
		Email:     user.Email,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		IsAdmin:   user.IsAdmin,
		CreatedAt: user.CreatedAt,
	}, nil
}
