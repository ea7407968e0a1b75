package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/kishan34-Mac/AcreCap-Full-stack/internal/auth"
	"github.com/kishan34-Mac/AcreCap-Full-stack/internal/models"
	"github.com/kishan34-Mac/AcreCap-Full-stack/internal/repository"
)

// Authorizer decides whether a resolved identity carries admin
// privileges. The email allowlist wins without touching the database;
// otherwise the stored profile role decides. Either source granting is
// enough.
type Authorizer struct {
	adminEmails []string
	profiles    *repository.ProfileRepo
	log         *zap.Logger
}

func NewAuthorizer(adminEmails []string, profiles *repository.ProfileRepo, log *zap.Logger) *Authorizer {
	return &Authorizer{adminEmails: adminEmails, profiles: profiles, log: log}
}

// IsAdmin is fail-closed: any lookup error means no.
func (a *Authorizer) IsAdmin(ctx context.Context, id *auth.Identity) bool {
	if id == nil {
		return false
	}

	if email := strings.ToLower(id.Email); email != "" {
		for _, allowed := range a.adminEmails {
			if allowed == email {
				return true
			}
		}
	}

	if a.profiles == nil {
		return false
	}
	profile, err := a.profiles.FindByID(ctx, id.ID)
	if err != nil {
		a.log.Warn("authz: profile lookup failed", zap.String("user_id", id.ID), zap.Error(err))
		return false
	}
	return profile != nil && profile.Role == models.RoleAdmin
}
