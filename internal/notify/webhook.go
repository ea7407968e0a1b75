package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/kishan34-Mac/AcreCap-Full-stack/internal/models"
)

// Notifier posts best-effort JSON payloads to the configured delivery
// webhooks. Every method swallows failures: a down mail relay must
// never fail an admin action or a public submission.
type Notifier struct {
	statusEmailURL string
	sheetURL       string
	adminNotifyURL string
	client         *http.Client
	log            *zap.Logger
}

func NewNotifier(statusEmailURL, sheetURL, adminNotifyURL string, log *zap.Logger) *Notifier {
	return &Notifier{
		statusEmailURL: statusEmailURL,
		sheetURL:       sheetURL,
		adminNotifyURL: adminNotifyURL,
		client:         &http.Client{Timeout: 10 * time.Second},
		log:            log,
	}
}

// SendStatusEmail renders and delivers the status notification for sub.
// Unconfigured webhook skips silently.
func (n *Notifier) SendStatusEmail(ctx context.Context, sub *models.Submission, status string) error {
	if n.statusEmailURL == "" {
		return nil
	}
	email := BuildStatusEmail(sub, status)
	return n.post(ctx, n.statusEmailURL, map[string]any{
		"type":    "status_email",
		"to":      sub.Email,
		"subject": email.Subject,
		"html":    email.HTML,
		"text":    email.Text,
		"meta":    map[string]any{"submissionId": sub.ID, "status": status},
	})
}

// ExportRow pushes a freshly created submission to the spreadsheet
// webhook for the sales team.
func (n *Notifier) ExportRow(ctx context.Context, sub *models.Submission) error {
	if n.sheetURL == "" {
		return nil
	}
	return n.post(ctx, n.sheetURL, map[string]any{
		"type":       "sheet_row",
		"submission": sub,
	})
}

// NotifyAdmins pings the back-office channel about a new application.
func (n *Notifier) NotifyAdmins(ctx context.Context, sub *models.Submission) error {
	if n.adminNotifyURL == "" {
		return nil
	}
	return n.post(ctx, n.adminNotifyURL, map[string]any{
		"type":         "new_submission",
		"submissionId": sub.ID,
		"name":         sub.Name,
		"city":         sub.City,
		"loan_amount":  sub.LoanAmount,
	})
}

func (n *Notifier) post(ctx context.Context, url string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		n.log.Warn("notify: marshal payload failed", zap.Error(err))
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		n.log.Warn("notify: build request failed", zap.Error(err))
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		n.log.Warn("notify: webhook call failed", zap.String("url", url), zap.Error(err))
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		n.log.Warn("notify: webhook rejected payload",
			zap.String("url", url), zap.Int("status", resp.StatusCode))
		return fmt.Errorf("webhook %s responded %d", url, resp.StatusCode)
	}
	return nil
}
