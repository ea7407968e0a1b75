package notify

import (
	"fmt"
	"strings"

	"github.com/kishan34-Mac/AcreCap-Full-stack/internal/models"
)

const companyName = "AcreCap"

// StatusEmail is a rendered notification ready for the delivery webhook.
type StatusEmail struct {
	Subject string `json:"subject"`
	HTML    string `json:"html"`
	Text    string `json:"text"`
}

// BuildStatusEmail renders the subject/body pair for a submission in
// the given status. The copy mirrors what applicants have been
// receiving; change it together with the marketing team.
func BuildStatusEmail(sub *models.Submission, status string) StatusEmail {
	name := strings.TrimSpace(sub.Name)
	if name == "" {
		name = "Valued Customer"
	}

	var subject, intro, nextSteps, textIntro string
	switch status {
	case models.StatusApproved:
		subject = "Good news! Your loan application has been approved"
		intro = fmt.Sprintf("<p>Congratulations %s! We&rsquo;re excited to share that your loan application has been <strong>approved</strong>.</p>", name)
		nextSteps = `<ul>
  <li>Our team will contact you within 24 hours to verify details</li>
  <li>Prepare KYC documents (PAN, Aadhaar), business proof, and bank statements</li>
  <li>We&rsquo;ll share the sanction letter and finalize disbursement timeline</li>
</ul>`
		textIntro = fmt.Sprintf("Congratulations %s! Your application has been approved. Next steps: verification call, prepare documents, and we'll share the sanction letter.", name)
	case models.StatusRejected:
		subject = "Update on your loan application"
		intro = fmt.Sprintf("<p>Hello %s, thank you for applying with %s. After careful review, we&rsquo;re unable to approve your application at this time.</p>", name, companyName)
		nextSteps = `<p>While we&rsquo;re unable to proceed right now, here are some options you can consider:</p>
<ul>
  <li>Apply for a lower loan amount</li>
  <li>Share additional business documents to strengthen your profile</li>
  <li>Explore secured loan options with collateral</li>
</ul>
<p>Reply to this email and our team will help you with the best available alternatives.</p>`
		textIntro = fmt.Sprintf("Hello %s, we're unable to approve your application at this time. Consider a lower amount, add documents, or explore secured options. Reply and we'll assist.", name)
	default:
		subject = "We received your loan application"
		intro = fmt.Sprintf("<p>Hello %s, thank you for applying with %s. Your application is currently under review. We&rsquo;ll reach out shortly.</p>", name, companyName)
		nextSteps = ""
		textIntro = fmt.Sprintf("Hello %s, your application is under review. We'll contact you shortly.", name)
	}

	details := fmt.Sprintf(`<table role="presentation" width="100%%" style="border-collapse:collapse">
  <tr><td style="padding:8px 12px;background:#f9fafb;border:1px solid #e5e7eb">Application ID</td><td style="padding:8px 12px;border:1px solid #e5e7eb">%s</td></tr>
  <tr><td style="padding:8px 12px;background:#f9fafb;border:1px solid #e5e7eb">Name</td><td style="padding:8px 12px;border:1px solid #e5e7eb">%s</td></tr>
  <tr><td style="padding:8px 12px;background:#f9fafb;border:1px solid #e5e7eb">Loan Amount</td><td style="padding:8px 12px;border:1px solid #e5e7eb">%s</td></tr>
  <tr><td style="padding:8px 12px;background:#f9fafb;border:1px solid #e5e7eb">Purpose</td><td style="padding:8px 12px;border:1px solid #e5e7eb">%s</td></tr>
  <tr><td style="padding:8px 12px;background:#f9fafb;border:1px solid #e5e7eb">Tenure</td><td style="padding:8px 12px;border:1px solid #e5e7eb">%s</td></tr>
</table>`, sub.ID, sub.Name, sub.LoanAmount, sub.LoanPurpose, sub.Tenure)

	html := fmt.Sprintf(`<!doctype html>
<html>
<head>
  <meta name="viewport" content="width=device-width, initial-scale=1" />
  <title>%s</title>
</head>
<body style="margin:0;background:#f3f4f6;font-family:-apple-system,Segoe UI,Roboto,Arial,sans-serif;color:#111827">
  <div style="max-width:640px;margin:0 auto;padding:24px">
    <div style="background:#ffffff;border-radius:12px;padding:24px">
      <h1 style="margin:0 0 8px">%s</h1>
      %s
      %s
      %s
      <p>If you have any questions, simply reply to this email. We&rsquo;re here to help.</p>
      <p style="color:#6b7280">Regards,<br/>%s Team</p>
    </div>
    <p style="margin:16px 0 0;text-align:center;color:#6b7280;font-size:12px">This is an automated notification for your application %s. If you didn&rsquo;t initiate this request, please ignore.</p>
  </div>
</body>
</html>`, subject, subject, intro, details, nextSteps, companyName, sub.ID)

	text := fmt.Sprintf("%s\n\n%s\n\nApplication ID: %s\nLoan Amount: %s\nPurpose: %s\nTenure: %s\n\nRegards, %s Team",
		subject, textIntro, sub.ID, sub.LoanAmount, sub.LoanPurpose, sub.Tenure, companyName)

	return StatusEmail{Subject: subject, HTML: html, Text: text}
}
