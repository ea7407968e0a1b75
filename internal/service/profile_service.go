package service

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/kishan34-Mac/AcreCap-Full-stack/internal/auth"
	"github.com/kishan34-Mac/AcreCap-Full-stack/internal/models"
	"github.com/kishan34-Mac/AcreCap-Full-stack/internal/repository"
)

type ProfileService struct {
	profiles *repository.ProfileRepo
	authz    *Authorizer
	activity *ActivityService
}

func NewProfileService(profiles *repository.ProfileRepo, authz *Authorizer, activity *ActivityService) *ProfileService {
	return &ProfileService{profiles: profiles, authz: authz, activity: activity}
}

// Me returns the caller's profile, or nil when the identity has not
// synced yet. A missing profile is not an error here; the frontend
// calls sync on first login.
func (s *ProfileService) Me(ctx context.Context, caller *auth.Identity) (*models.Profile, error) {
	if caller == nil {
		return nil, ErrUnauthorized
	}
	return s.profiles.FindByID(ctx, caller.ID)
}

// ProfileUpdateInput carries the caller-editable fields.
type ProfileUpdateInput struct {
	FullName *string `json:"full_name"`
	Phone    *string `json:"phone"`
}

func (in *ProfileUpdateInput) validate() *ValidationError {
	ve := &ValidationError{}
	if in.FullName != nil {
		name := strings.TrimSpace(*in.FullName)
		if name == "" || len(name) > 120 {
			ve.add("full_name", "must be 1-120 characters")
		}
	}
	if in.Phone != nil {
		phone := strings.TrimSpace(*in.Phone)
		if len(phone) < 8 || len(phone) > 20 {
			ve.add("phone", "must be 8-20 characters")
		}
	}
	return ve.orNil()
}

// UpdateMe patches the caller's own name/phone.
func (s *ProfileService) UpdateMe(ctx context.Context, caller *auth.Identity, in *ProfileUpdateInput) (*models.Profile, error) {
	if caller == nil {
		return nil, ErrUnauthorized
	}
	if ve := in.validate(); ve != nil {
		return nil, ve
	}
	return s.profiles.UpdateSelf(ctx, caller.ID, in.FullName, in.Phone)
}

// RoleUpdateInput is the admin role-change payload.
type RoleUpdateInput struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
}

func (in *RoleUpdateInput) validate() *ValidationError {
	ve := &ValidationError{}
	if _, err := uuid.Parse(in.UserID); err != nil {
		ve.add("user_id", "must be a valid uuid")
	}
	if in.Role != models.RoleUser && in.Role != models.RoleAdmin {
		ve.add("role", "must be user or admin")
	}
	return ve.orNil()
}

// UpdateRole grants or revokes the admin role on another profile.
func (s *ProfileService) UpdateRole(ctx context.Context, caller *auth.Identity, in *RoleUpdateInput) (*models.Profile, error) {
	if caller == nil {
		return nil, ErrUnauthorized
	}
	if !s.authz.IsAdmin(ctx, caller) {
		return nil, ErrForbidden
	}
	if ve := in.validate(); ve != nil {
		return nil, ve
	}

	profile, err := s.profiles.UpdateRole(ctx, in.UserID, in.Role)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, ErrNotFound
	}

	callerID := caller.ID
	s.activity.Log(ctx, "admin_update_role",
		map[string]any{"user_id": in.UserID, "role": in.Role}, &callerID)
	return profile, nil
}

// Sync upserts the caller's profile from the validated token claims.
// Idempotent; called by the frontend after every login.
func (s *ProfileService) Sync(ctx context.Context, caller *auth.Identity) (*models.Profile, error) {
	if caller == nil {
		return nil, ErrUnauthorized
	}
	if caller.Email == "" {
		// Dev-header identities carry no email claim; there is nothing
		// trustworthy to upsert.
		return nil, ErrUnauthorized
	}

	profile, err := s.profiles.Upsert(ctx, &models.Profile{
		ID:       caller.ID,
		Email:    strings.ToLower(caller.Email),
		FullName: caller.FullName,
		Phone:    caller.Phone,
		Role:     models.RoleUser,
	})
	if err != nil {
		return nil, err
	}

	callerID := caller.ID
	s.activity.Log(ctx, "profile_sync", map[string]any{"email": profile.Email}, &callerID)
	return profile, nil
}
