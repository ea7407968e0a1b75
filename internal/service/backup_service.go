package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"

	"github.com/kishan34-Mac/AcreCap-Full-stack/internal/auth"
	"github.com/kishan34-Mac/AcreCap-Full-stack/internal/models"
	"github.com/kishan34-Mac/AcreCap-Full-stack/internal/repository"
)

// SnapshotUploader archives a snapshot object somewhere off-box.
// Implemented by S3Uploader; nil means archival is disabled.
type SnapshotUploader interface {
	Upload(ctx context.Context, key string, body []byte) error
}

// S3Uploader writes snapshot objects to a bucket.
type S3Uploader struct {
	client *s3.Client
	bucket string
}

func NewS3Uploader(ctx context.Context, bucket string) (*S3Uploader, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}
	client := s3.New(s3.Options{
		Region:       cfg.Region,
		Credentials:  cfg.Credentials,
		HTTPClient:   cfg.HTTPClient,
		BaseEndpoint: cfg.BaseEndpoint,
		UsePathStyle: true,
	})
	return &S3Uploader{client: client, bucket: bucket}, nil
}

func (u *S3Uploader) Upload(ctx context.Context, key string, body []byte) error {
	_, err := u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(u.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
	})
	return err
}

// BackupService takes admin-triggered snapshots of the submissions
// table. The database row is the record; the S3 object is a best-effort
// copy.
type BackupService struct {
	subs     *repository.SubmissionRepo
	backups  *repository.BackupRepo
	authz    *Authorizer
	activity *ActivityService
	uploader SnapshotUploader
	log      *zap.Logger
}

func NewBackupService(
	subs *repository.SubmissionRepo,
	backups *repository.BackupRepo,
	authz *Authorizer,
	activity *ActivityService,
	uploader SnapshotUploader,
	log *zap.Logger,
) *BackupService {
	return &BackupService{
		subs:     subs,
		backups:  backups,
		authz:    authz,
		activity: activity,
		uploader: uploader,
		log:      log,
	}
}

// Snapshot stores all current submissions as one backup row. Admin only.
func (s *BackupService) Snapshot(ctx context.Context, caller *auth.Identity) (*models.Backup, error) {
	if caller == nil {
		return nil, ErrUnauthorized
	}
	if !s.authz.IsAdmin(ctx, caller) {
		return nil, ErrForbidden
	}

	subs, err := s.subs.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	snapshot, err := json.Marshal(subs)
	if err != nil {
		return nil, err
	}

	callerID := caller.ID
	backup := &models.Backup{
		CreatedBy: &callerID,
		ItemCount: len(subs),
		Snapshot:  snapshot,
	}
	if err := s.backups.Create(ctx, backup); err != nil {
		return nil, err
	}

	if s.uploader != nil {
		key := fmt.Sprintf("backups/%s.json", backup.ID)
		if err := s.uploader.Upload(ctx, key, snapshot); err != nil {
			s.log.Warn("backup: archive upload failed",
				zap.String("backup_id", backup.ID), zap.Error(err))
		}
	}

	s.activity.Log(ctx, "admin_backup",
		map[string]any{"id": backup.ID, "item_count": backup.ItemCount}, &callerID)
	return backup, nil
}
