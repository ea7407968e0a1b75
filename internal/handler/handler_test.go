package handler_test

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/kishan34-Mac/AcreCap-Full-stack/internal/auth"
	"github.com/kishan34-Mac/AcreCap-Full-stack/internal/config"
	"github.com/kishan34-Mac/AcreCap-Full-stack/internal/db"
	"github.com/kishan34-Mac/AcreCap-Full-stack/internal/handler"
	"github.com/kishan34-Mac/AcreCap-Full-stack/internal/metrics"
	"github.com/kishan34-Mac/AcreCap-Full-stack/internal/models"
	"github.com/kishan34-Mac/AcreCap-Full-stack/internal/notify"
	"github.com/kishan34-Mac/AcreCap-Full-stack/internal/repository"
	"github.com/kishan34-Mac/AcreCap-Full-stack/internal/router"
	"github.com/kishan34-Mac/AcreCap-Full-stack/internal/service"
	"github.com/kishan34-Mac/AcreCap-Full-stack/internal/stream"
)

const (
	testSecret = "handler-test-secret"
	adminEmail = "ops@acrecap.in"
)

type apiEnv struct {
	gdb    *gorm.DB
	subs   *repository.SubmissionRepo
	events *stream.Broadcaster
	mux    http.Handler
}

func newAPI(t *testing.T) *apiEnv {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared",
		strings.ReplaceAll(t.Name(), "/", "_"))
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.Migrate(gdb))

	cfg := &config.Config{
		Env:            "test",
		AuthJWTSecret:  testSecret,
		AdminEmails:    []string{adminEmail},
		AllowedOrigins: []string{"http://localhost:5173"},
		RateLimitRPM:   6000,
	}
	log := zap.NewNop()
	m := metrics.NewWith("test", prometheus.NewRegistry())

	profiles := repository.NewProfileRepo(gdb)
	subs := repository.NewSubmissionRepo(gdb)
	activities := repository.NewActivityRepo(gdb)
	backups := repository.NewBackupRepo(gdb)

	authz := service.NewAuthorizer(cfg.AdminEmails, profiles, log)
	activity := service.NewActivityService(activities, nil, log)
	notifier := notify.NewNotifier("", "", "", log)
	events := stream.NewBroadcaster()

	subSvc := service.NewSubmissionService(subs, authz, notifier, activity, events, m, log)
	proSvc := service.NewProfileService(profiles, authz, activity)
	bakSvc := service.NewBackupService(subs, backups, authz, activity, nil, log)

	resolver := auth.NewResolver(cfg.AuthJWTSecret, false)
	userH := handler.NewUserHandler(proSvc, log)
	subH := handler.NewSubmissionHandler(subSvc, bakSvc, authz, events, log)

	return &apiEnv{
		gdb:    gdb,
		subs:   subs,
		events: events,
		mux:    router.New(cfg, log, m, resolver, userH, subH),
	}
}

// newUnconfiguredAPI builds the router the way main does when no
// database DSN is set: handlers exist but their services are nil.
func newUnconfiguredAPI(t *testing.T) http.Handler {
	t.Helper()
	cfg := &config.Config{
		Env:           "test",
		AuthJWTSecret: testSecret,
		RateLimitRPM:  6000,
	}
	log := zap.NewNop()
	m := metrics.NewWith("test", prometheus.NewRegistry())
	authz := service.NewAuthorizer(nil, nil, log)
	resolver := auth.NewResolver(cfg.AuthJWTSecret, false)
	userH := handler.NewUserHandler(nil, log)
	subH := handler.NewSubmissionHandler(nil, nil, authz, stream.NewBroadcaster(), log)
	return router.New(cfg, log, m, resolver, userH, subH)
}

func (e *apiEnv) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.mux.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func token(t *testing.T, subject, email string) string {
	t.Helper()
	tok, err := auth.GenerateToken(testSecret, subject, email)
	require.NoError(t, err)
	return tok
}

func applicationBody() map[string]any {
	return map[string]any{
		"name":              "Asha Patel",
		"mobile":            "9876543210",
		"email":             "asha@example.com",
		"city":              "Pune",
		"business_name":     "Patel Traders",
		"business_type":     "Proprietorship",
		"annual_turnover":   "50L",
		"years_in_business": "6",
		"loan_amount":       "500000",
		"loan_purpose":      "working capital",
		"tenure":            "24",
	}
}

func (e *apiEnv) createSubmission(t *testing.T) string {
	t.Helper()
	rec := e.do(t, http.MethodPost, "/api/submissions", "", applicationBody())
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	sub := decode(t, rec)["submission"].(map[string]any)
	return sub["id"].(string)
}

func TestCreateSubmissionAnonymous(t *testing.T) {
	env := newAPI(t)

	body := applicationBody()
	body["status"] = "approved" // client cannot pick its own status
	rec := env.do(t, http.MethodPost, "/api/submissions", "", body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	sub := decode(t, rec)["submission"].(map[string]any)
	assert.Equal(t, "pending", sub["status"])
	assert.Nil(t, sub["user_id"])
	assert.NotEmpty(t, sub["id"])
}

func TestCreateSubmissionAttributedToCaller(t *testing.T) {
	env := newAPI(t)
	userID := uuid.NewString()

	rec := env.do(t, http.MethodPost, "/api/submissions",
		token(t, userID, "asha@example.com"), applicationBody())
	require.Equal(t, http.StatusOK, rec.Code)

	sub := decode(t, rec)["submission"].(map[string]any)
	assert.Equal(t, userID, sub["user_id"])
}

func TestCreateSubmissionValidation(t *testing.T) {
	env := newAPI(t)

	rec := env.do(t, http.MethodPost, "/api/submissions", "", map[string]any{
		"name":  "Asha",
		"email": "not-an-email",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	resp := decode(t, rec)
	assert.Equal(t, "validation_error", resp["error"])
	fields := resp["details"].(map[string]any)["fieldErrors"].(map[string]any)
	assert.Contains(t, fields, "email")
	assert.Contains(t, fields, "mobile")
}

func TestCreateSubmissionMalformedBody(t *testing.T) {
	env := newAPI(t)
	req := httptest.NewRequest(http.MethodPost, "/api/submissions",
		strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	env.mux.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_body", decode(t, rec)["error"])
}

func TestListSubmissionsRequiresAdmin(t *testing.T) {
	env := newAPI(t)
	env.createSubmission(t)

	rec := env.do(t, http.MethodGet, "/api/submissions", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "unauthorized", decode(t, rec)["error"])

	rec = env.do(t, http.MethodGet, "/api/submissions",
		token(t, uuid.NewString(), "user@example.com"), nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "forbidden", decode(t, rec)["error"])

	rec = env.do(t, http.MethodGet, "/api/submissions",
		token(t, uuid.NewString(), adminEmail), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	subs := decode(t, rec)["submissions"].([]any)
	assert.Len(t, subs, 1)
}

func TestListMine(t *testing.T) {
	env := newAPI(t)
	userID := uuid.NewString()
	tok := token(t, userID, "mine@example.com")

	rec := env.do(t, http.MethodPost, "/api/submissions", tok, applicationBody())
	require.Equal(t, http.StatusOK, rec.Code)
	env.createSubmission(t) // someone else's, anonymous

	rec = env.do(t, http.MethodGet, "/api/submissions/mine", tok, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	subs := decode(t, rec)["submissions"].([]any)
	assert.Len(t, subs, 1)

	rec = env.do(t, http.MethodGet, "/api/submissions/mine", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestPatchStatus(t *testing.T) {
	env := newAPI(t)
	id := env.createSubmission(t)
	adminTok := token(t, uuid.NewString(), adminEmail)

	rec := env.do(t, http.MethodPatch, "/api/submissions/"+id, adminTok,
		map[string]string{"status": "approved"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	sub := decode(t, rec)["submission"].(map[string]any)
	assert.Equal(t, "approved", sub["status"])
}

func TestPatchStatusNonAdminLeavesRowUntouched(t *testing.T) {
	env := newAPI(t)
	id := env.createSubmission(t)

	rec := env.do(t, http.MethodPatch, "/api/submissions/"+id,
		token(t, uuid.NewString(), "user@example.com"),
		map[string]string{"status": "approved"})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "forbidden", decode(t, rec)["error"])

	sub, err := env.subs.FindByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, sub.Status)
}

func TestPatchStatusUnknownID(t *testing.T) {
	env := newAPI(t)
	rec := env.do(t, http.MethodPatch, "/api/submissions/"+uuid.NewString(),
		token(t, uuid.NewString(), adminEmail),
		map[string]string{"status": "approved"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not_found", decode(t, rec)["error"])
}

func TestPatchStatusInvalidState(t *testing.T) {
	env := newAPI(t)
	id := env.createSubmission(t)
	rec := env.do(t, http.MethodPatch, "/api/submissions/"+id,
		token(t, uuid.NewString(), adminEmail),
		map[string]string{"status": "archived"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "validation_error", decode(t, rec)["error"])
}

func TestMeRequiresAuth(t *testing.T) {
	env := newAPI(t)
	rec := env.do(t, http.MethodGet, "/api/users/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "unauthorized", decode(t, rec)["error"])
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
}

func TestSyncThenMe(t *testing.T) {
	env := newAPI(t)
	tok := token(t, uuid.NewString(), "Person@Example.com")

	rec := env.do(t, http.MethodPost, "/api/users/sync", tok, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	profile := decode(t, rec)["profile"].(map[string]any)
	assert.Equal(t, "person@example.com", profile["email"])
	assert.Equal(t, "user", profile["role"])

	rec = env.do(t, http.MethodGet, "/api/users/me", tok, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	profile = decode(t, rec)["profile"].(map[string]any)
	assert.Equal(t, "person@example.com", profile["email"])
}

func TestUpdateRoleEndpoint(t *testing.T) {
	env := newAPI(t)
	targetTok := token(t, uuid.NewString(), "target@example.com")
	rec := env.do(t, http.MethodPost, "/api/users/sync", targetTok, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	targetID := decode(t, rec)["profile"].(map[string]any)["id"].(string)

	rec = env.do(t, http.MethodPost, "/api/users/role",
		token(t, uuid.NewString(), adminEmail),
		map[string]string{"user_id": targetID, "role": "admin"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "admin", decode(t, rec)["profile"].(map[string]any)["role"])
}

func TestBackupEndpoint(t *testing.T) {
	env := newAPI(t)
	env.createSubmission(t)

	rec := env.do(t, http.MethodPost, "/api/admin/backup",
		token(t, uuid.NewString(), "user@example.com"), nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/admin/backup",
		token(t, uuid.NewString(), adminEmail), nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	backup := decode(t, rec)["backup"].(map[string]any)
	assert.Equal(t, float64(1), backup["item_count"])
}

func TestUnconfiguredPersistenceAnswers503(t *testing.T) {
	mux := newUnconfiguredAPI(t)

	paths := []struct{ method, path string }{
		{http.MethodPost, "/api/submissions"},
		{http.MethodGet, "/api/submissions"},
		{http.MethodGet, "/api/submissions/mine"},
		{http.MethodPatch, "/api/submissions/some-id"},
		{http.MethodGet, "/api/users/me"},
		{http.MethodPost, "/api/users/sync"},
		{http.MethodPost, "/api/admin/backup"},
	}
	for _, p := range paths {
		req := httptest.NewRequest(p.method, p.path, strings.NewReader("{}"))
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code, p.path)

		var resp map[string]string
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "service_unavailable", resp["error"])
		assert.Equal(t, "persistence not configured", resp["message"])
	}

	// health stays up regardless
	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestInfraEndpoints(t *testing.T) {
	env := newAPI(t)

	rec := env.do(t, http.MethodGet, "/", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "AcreCap backend running")

	rec = env.do(t, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())

	rec = env.do(t, http.MethodGet, "/api/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, decode(t, rec)["ok"])

	rec = env.do(t, http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/definitely-not-a-route", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not_found", decode(t, rec)["error"])
}

func TestCORS(t *testing.T) {
	env := newAPI(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/submissions", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	rec := httptest.NewRecorder()
	env.mux.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	rec = httptest.NewRecorder()
	env.mux.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestStreamGates(t *testing.T) {
	env := newAPI(t)

	rec := env.do(t, http.MethodGet, "/api/submissions/stream", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/submissions/stream",
		token(t, uuid.NewString(), "user@example.com"), nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestStreamDeliversEvents(t *testing.T) {
	env := newAPI(t)
	srv := httptest.NewServer(env.mux)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		srv.URL+"/api/submissions/stream", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+token(t, uuid.NewString(), adminEmail))

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	// subscription is live once the headers arrive
	env.events.Publish(stream.Event{Type: "created", Submission: map[string]string{"id": "s1"}})

	scanner := bufio.NewScanner(resp.Body)
	require.True(t, scanner.Scan())
	assert.Equal(t, "event: created", scanner.Text())
	require.True(t, scanner.Scan())
	assert.True(t, strings.HasPrefix(scanner.Text(), "data: "))
}
