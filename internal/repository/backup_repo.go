package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/kishan34-Mac/AcreCap-Full-stack/internal/models"
)

type BackupRepo struct {
	db *gorm.DB
}

func NewBackupRepo(db *gorm.DB) *BackupRepo {
	return &BackupRepo{db: db}
}

func (r *BackupRepo) Create(ctx context.Context, b *models.Backup) error {
	return r.db.WithContext(ctx).Create(b).Error
}
