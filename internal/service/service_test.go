package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/kishan34-Mac/AcreCap-Full-stack/internal/db"
	"github.com/kishan34-Mac/AcreCap-Full-stack/internal/metrics"
	"github.com/kishan34-Mac/AcreCap-Full-stack/internal/models"
	"github.com/kishan34-Mac/AcreCap-Full-stack/internal/repository"
	"github.com/kishan34-Mac/AcreCap-Full-stack/internal/stream"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared",
		strings.ReplaceAll(t.Name(), "/", "_"))
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.Migrate(gdb))
	return gdb
}

// fakeNotifier records deliveries instead of calling webhooks.
type fakeNotifier struct {
	mu           sync.Mutex
	statusEmails []string // "<submissionID>:<status>"
	exports      []string
	adminPings   []string
	fail         bool
}

func (f *fakeNotifier) SendStatusEmail(ctx context.Context, sub *models.Submission, status string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.statusEmails = append(f.statusEmails, sub.ID+":"+status)
	if f.fail {
		return fmt.Errorf("delivery failed")
	}
	return nil
}

func (f *fakeNotifier) ExportRow(ctx context.Context, sub *models.Submission) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.exports = append(f.exports, sub.ID)
	return nil
}

func (f *fakeNotifier) NotifyAdmins(ctx context.Context, sub *models.Submission) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.adminPings = append(f.adminPings, sub.ID)
	return nil
}

func (f *fakeNotifier) statusEmailCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.statusEmails)
}

type testEnv struct {
	gdb      *gorm.DB
	profiles *repository.ProfileRepo
	subs     *repository.SubmissionRepo
	activity *repository.ActivityRepo
	authz    *Authorizer
	notifier *fakeNotifier
	events   *stream.Broadcaster
	subSvc   *SubmissionService
	proSvc   *ProfileService
	bakSvc   *BackupService
}

func newTestEnv(t *testing.T, adminEmails ...string) *testEnv {
	t.Helper()
	gdb := testDB(t)
	log := zap.NewNop()
	m := metrics.NewWith("test", prometheus.NewRegistry())

	profiles := repository.NewProfileRepo(gdb)
	subs := repository.NewSubmissionRepo(gdb)
	activities := repository.NewActivityRepo(gdb)
	backups := repository.NewBackupRepo(gdb)

	authz := NewAuthorizer(adminEmails, profiles, log)
	activity := NewActivityService(activities, nil, log)
	notifier := &fakeNotifier{}
	events := stream.NewBroadcaster()

	return &testEnv{
		gdb:      gdb,
		profiles: profiles,
		subs:     subs,
		activity: activities,
		authz:    authz,
		notifier: notifier,
		events:   events,
		subSvc:   NewSubmissionService(subs, authz, notifier, activity, events, m, log),
		proSvc:   NewProfileService(profiles, authz, activity),
		bakSvc:   NewBackupService(subs, backups, authz, activity, nil, log),
	}
}

func validInput() *SubmissionInput {
	return &SubmissionInput{
		Name:            "A",
		Mobile:          "1234567890",
		Email:           "a@b.com",
		City:            "X",
		BusinessName:    "B",
		BusinessType:    "T",
		AnnualTurnover:  "1L",
		YearsInBusiness: "2",
		LoanAmount:      "100000",
		LoanPurpose:     "growth",
		Tenure:          "12",
	}
}

func seedProfile(t *testing.T, env *testEnv, id, email, role string) {
	t.Helper()
	require.NoError(t, env.gdb.Create(&models.Profile{
		ID:    id,
		Email: email,
		Role:  role,
	}).Error)
}
