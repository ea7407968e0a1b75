package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/kishan34-Mac/AcreCap-Full-stack/internal/models"
)

type ProfileRepo struct {
	db *gorm.DB
}

func NewProfileRepo(db *gorm.DB) *ProfileRepo {
	return &ProfileRepo{db: db}
}

// FindByID returns nil, nil when no profile exists for id.
func (r *ProfileRepo) FindByID(ctx context.Context, id string) (*models.Profile, error) {
	var p models.Profile
	err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Upsert inserts or refreshes a profile keyed by the identity subject
// id. Role is deliberately left out of the update set so a sync can
// never demote an admin.
func (r *ProfileRepo) Upsert(ctx context.Context, p *models.Profile) (*models.Profile, error) {
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"email", "full_name", "phone", "updated_at"}),
	}).Create(p).Error
	if err != nil {
		return nil, err
	}
	return r.FindByID(ctx, p.ID)
}

// UpdateSelf patches the caller-editable fields.
func (r *ProfileRepo) UpdateSelf(ctx context.Context, id string, fullName, phone *string) (*models.Profile, error) {
	updates := map[string]any{}
	if fullName != nil {
		updates["full_name"] = *fullName
	}
	if phone != nil {
		updates["phone"] = *phone
	}
	if len(updates) > 0 {
		if err := r.db.WithContext(ctx).Model(&models.Profile{}).
			Where("id = ?", id).Updates(updates).Error; err != nil {
			return nil, err
		}
	}
	return r.FindByID(ctx, id)
}

func (r *ProfileRepo) UpdateRole(ctx context.Context, id, role string) (*models.Profile, error) {
	res := r.db.WithContext(ctx).Model(&models.Profile{}).
		Where("id = ?", id).Update("role", role)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, nil
	}
	return r.FindByID(ctx, id)
}
