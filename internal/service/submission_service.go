package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kishan34-Mac/AcreCap-Full-stack/internal/auth"
	"github.com/kishan34-Mac/AcreCap-Full-stack/internal/metrics"
	"github.com/kishan34-Mac/AcreCap-Full-stack/internal/models"
	"github.com/kishan34-Mac/AcreCap-Full-stack/internal/repository"
	"github.com/kishan34-Mac/AcreCap-Full-stack/internal/stream"
)

// Notifier is the outbound delivery surface the submission workflow
// needs. Satisfied by notify.Notifier; tests substitute fakes.
type Notifier interface {
	SendStatusEmail(ctx context.Context, sub *models.Submission, status string) error
	ExportRow(ctx context.Context, sub *models.Submission) error
	NotifyAdmins(ctx context.Context, sub *models.Submission) error
}

const sideEffectTimeout = 15 * time.Second

type SubmissionService struct {
	subs     *repository.SubmissionRepo
	authz    *Authorizer
	notifier Notifier
	activity *ActivityService
	events   *stream.Broadcaster
	metrics  *metrics.Metrics
	log      *zap.Logger
}

func NewSubmissionService(
	subs *repository.SubmissionRepo,
	authz *Authorizer,
	notifier Notifier,
	activity *ActivityService,
	events *stream.Broadcaster,
	m *metrics.Metrics,
	log *zap.Logger,
) *SubmissionService {
	return &SubmissionService{
		subs:     subs,
		authz:    authz,
		notifier: notifier,
		activity: activity,
		events:   events,
		metrics:  m,
		log:      log,
	}
}

// Create validates and stores a new application. Status always starts
// pending no matter what the payload says, and the user id comes from
// the resolved caller, never from the body. Anonymous submissions are
// allowed.
func (s *SubmissionService) Create(ctx context.Context, in *SubmissionInput, caller *auth.Identity) (*models.Submission, error) {
	if ve := in.Validate(); ve != nil {
		return nil, ve
	}

	var userID *string
	if caller != nil {
		id := caller.ID
		userID = &id
	}

	sub := &models.Submission{
		UserID:          userID,
		Name:            strings.TrimSpace(in.Name),
		Mobile:          strings.TrimSpace(in.Mobile),
		Email:           strings.TrimSpace(in.Email),
		City:            strings.TrimSpace(in.City),
		BusinessName:    strings.TrimSpace(in.BusinessName),
		BusinessType:    strings.TrimSpace(in.BusinessType),
		AnnualTurnover:  strings.TrimSpace(in.AnnualTurnover),
		YearsInBusiness: strings.TrimSpace(in.YearsInBusiness),
		LoanAmount:      strings.TrimSpace(in.LoanAmount),
		LoanPurpose:     strings.TrimSpace(in.LoanPurpose),
		Tenure:          strings.TrimSpace(in.Tenure),
		PANNumber:       in.PANNumber,
		GSTNumber:       in.GSTNumber,
		Status:          models.StatusPending,
	}

	if err := s.subs.Create(ctx, sub); err != nil {
		return nil, err
	}
	s.metrics.SubmissionsReceived.Inc()

	created := *sub
	s.dispatch(func(ctx context.Context) {
		if err := s.notifier.ExportRow(ctx, &created); err != nil {
			s.metrics.NotificationsFailed.Inc()
		}
		if err := s.notifier.NotifyAdmins(ctx, &created); err != nil {
			s.metrics.NotificationsFailed.Inc()
		}
		if err := s.notifier.SendStatusEmail(ctx, &created, models.StatusPending); err != nil {
			s.metrics.NotificationsFailed.Inc()
		} else {
			s.metrics.NotificationsSent.Inc()
		}
		s.activity.Log(ctx, "submission_created", map[string]any{"id": created.ID}, created.UserID)
		s.events.Publish(stream.Event{Type: "created", Submission: &created})
	})

	return sub, nil
}

// ListAll returns every submission, newest first. Admin only.
func (s *SubmissionService) ListAll(ctx context.Context, caller *auth.Identity) ([]models.Submission, error) {
	if caller == nil {
		return nil, ErrUnauthorized
	}
	if !s.authz.IsAdmin(ctx, caller) {
		return nil, ErrForbidden
	}
	return s.subs.ListAll(ctx)
}

// ListMine returns the caller's own submissions, newest first.
func (s *SubmissionService) ListMine(ctx context.Context, caller *auth.Identity) ([]models.Submission, error) {
	if caller == nil {
		return nil, ErrUnauthorized
	}
	return s.subs.ListByUser(ctx, caller.ID)
}

// Get fetches a single submission by id.
func (s *SubmissionService) Get(ctx context.Context, id string) (*models.Submission, error) {
	sub, err := s.subs.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if sub == nil {
		return nil, ErrNotFound
	}
	return sub, nil
}

// UpdateStatus moves a submission to newStatus. Any of the three states
// may follow any other (the admin panel has a "Reset" action back to
// pending), and re-applying the current state is a valid no-op that
// still bumps updated_at. On success the notification, audit entry and
// realtime broadcast are dispatched without blocking the response.
func (s *SubmissionService) UpdateStatus(ctx context.Context, id, newStatus string, caller *auth.Identity) (*models.Submission, error) {
	if caller == nil {
		return nil, ErrUnauthorized
	}
	if !s.authz.IsAdmin(ctx, caller) {
		return nil, ErrForbidden
	}
	if !models.ValidStatus(newStatus) {
		ve := &ValidationError{}
		ve.add("status", "must be one of pending, approved, rejected")
		return nil, ve
	}

	sub, err := s.subs.UpdateStatus(ctx, id, newStatus)
	if err != nil {
		return nil, err
	}
	if sub == nil {
		return nil, ErrNotFound
	}
	s.metrics.StatusChanges.WithLabelValues(newStatus).Inc()

	updated := *sub
	callerID := caller.ID
	s.dispatch(func(ctx context.Context) {
		if err := s.notifier.SendStatusEmail(ctx, &updated, newStatus); err != nil {
			s.metrics.NotificationsFailed.Inc()
		} else {
			s.metrics.NotificationsSent.Inc()
		}
		s.activity.Log(ctx, "admin_update_status",
			map[string]any{"id": updated.ID, "status": newStatus}, &callerID)
		s.events.Publish(stream.Event{Type: "status_changed", Submission: &updated})
	})

	return sub, nil
}

// dispatch runs fn on its own goroutine with a fresh timeout context,
// detached from the request so a slow webhook cannot hold the response.
func (s *SubmissionService) dispatch(fn func(ctx context.Context)) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), sideEffectTimeout)
		defer cancel()
		defer func() {
			if r := recover(); r != nil {
				s.log.Error("side effect panicked", zap.Any("panic", r))
			}
		}()
		fn(ctx)
	}()
}
