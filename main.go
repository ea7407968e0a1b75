package main

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/kishan34-Mac/AcreCap-Full-stack/internal/auth"
	"github.com/kishan34-Mac/AcreCap-Full-stack/internal/config"
	"github.com/kishan34-Mac/AcreCap-Full-stack/internal/db"
	"github.com/kishan34-Mac/AcreCap-Full-stack/internal/handler"
	"github.com/kishan34-Mac/AcreCap-Full-stack/internal/logger"
	"github.com/kishan34-Mac/AcreCap-Full-stack/internal/metrics"
	"github.com/kishan34-Mac/AcreCap-Full-stack/internal/notify"
	"github.com/kishan34-Mac/AcreCap-Full-stack/internal/repository"
	"github.com/kishan34-Mac/AcreCap-Full-stack/internal/router"
	"github.com/kishan34-Mac/AcreCap-Full-stack/internal/service"
	"github.com/kishan34-Mac/AcreCap-Full-stack/internal/stream"
)

func main() {
	cfg := config.Load()

	log, err := logger.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	defer log.Sync()
	log.Info("starting AcreCap backend", zap.String("env", cfg.Env))

	if cfg.AllowDevHeader {
		log.Warn("ALLOW_DEV_HEADER enabled, X-User-Id is trusted verbatim; never run this in production")
	}

	gdb, err := db.Open(cfg, log)
	if err != nil {
		log.Fatal("database init failed", zap.Error(err))
	}

	m := metrics.New(cfg.MetricsPrefix)
	resolver := auth.NewResolver(cfg.AuthJWTSecret, cfg.AllowDevHeader)
	notifier := notify.NewNotifier(cfg.StatusEmailWebhookURL, cfg.SheetWebhookURL, cfg.AdminNotifyWebhookURL, log)
	events := stream.NewBroadcaster()

	// Services exist only when persistence does; handlers answer 503
	// for the rest.
	var (
		profileSvc *service.ProfileService
		subSvc     *service.SubmissionService
		backupSvc  *service.BackupService
		authz      *service.Authorizer
	)
	if gdb != nil {
		profiles := repository.NewProfileRepo(gdb)
		subs := repository.NewSubmissionRepo(gdb)
		activities := repository.NewActivityRepo(gdb)
		backups := repository.NewBackupRepo(gdb)

		authz = service.NewAuthorizer(cfg.AdminEmails, profiles, log)

		kafkaWriter := service.NewKafkaWriter(cfg.KafkaBrokers, cfg.KafkaTopic)
		if kafkaWriter != nil {
			defer kafkaWriter.Close()
			log.Info("audit event stream enabled", zap.Strings("brokers", cfg.KafkaBrokers))
		}
		activity := service.NewActivityService(activities, kafkaWriter, log)

		var uploader service.SnapshotUploader
		if cfg.BackupS3Bucket != "" {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			s3up, err := service.NewS3Uploader(ctx, cfg.BackupS3Bucket)
			cancel()
			if err != nil {
				log.Warn("backup archival disabled", zap.Error(err))
			} else {
				uploader = s3up
				log.Info("backup archival enabled", zap.String("bucket", cfg.BackupS3Bucket))
			}
		}

		profileSvc = service.NewProfileService(profiles, authz, activity)
		subSvc = service.NewSubmissionService(subs, authz, notifier, activity, events, m, log)
		backupSvc = service.NewBackupService(subs, backups, authz, activity, uploader, log)
	} else {
		authz = service.NewAuthorizer(cfg.AdminEmails, nil, log)
	}

	userH := handler.NewUserHandler(profileSvc, log)
	subH := handler.NewSubmissionHandler(subSvc, backupSvc, authz, events, log)

	r := router.New(cfg, log, m, resolver, userH, subH)

	log.Info("listening", zap.String("addr", cfg.HTTPAddr),
		zap.Strings("allowed_origins", cfg.AllowedOrigins))
	if err := http.ListenAndServe(cfg.HTTPAddr, r); err != nil {
		log.Fatal("server failed", zap.Error(err))
	}
}
