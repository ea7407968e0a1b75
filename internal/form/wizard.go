package form

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"github.com/kishan34-Mac/AcreCap-Full-stack/internal/auth"
	"github.com/kishan34-Mac/AcreCap-Full-stack/internal/models"
	"github.com/kishan34-Mac/AcreCap-Full-stack/internal/service"
)

// Step is the wizard position. Steps advance only after the current
// one validates.
type Step int

const (
	StepBasics Step = iota
	StepBusiness
	StepLoan
	StepDocuments
	StepDone
)

var (
	// ErrIncomplete is returned by Submit before the loan step clears.
	ErrIncomplete = errors.New("application incomplete")

	panRe = regexp.MustCompile(`^[A-Z]{5}[0-9]{4}[A-Z]$`)
	gstRe = regexp.MustCompile(`^[0-9]{2}[A-Z]{5}[0-9]{4}[A-Z][1-9A-Z]Z[0-9A-Z]$`)
)

// Wizard drives the four-step public application form: basic details,
// business info, loan details, optional documents. It accumulates a
// SubmissionInput and hands it to the submission service on Submit.
type Wizard struct {
	svc   *service.SubmissionService
	step  Step
	input service.SubmissionInput
}

func NewWizard(svc *service.SubmissionService) *Wizard {
	return &Wizard{svc: svc, step: StepBasics}
}

func (w *Wizard) Step() Step { return w.step }

// Basics validates and records step one. The step pointer only moves
// forward; revisiting an earlier step re-validates without regressing.
func (w *Wizard) Basics(name, mobile, email, city string) *service.ValidationError {
	in := w.input
	in.Name, in.Mobile, in.Email, in.City = name, mobile, email, city
	if ve := in.ValidateBasics(); ve != nil {
		return ve
	}
	w.input = in
	w.advance(StepBusiness)
	return nil
}

// Business validates and records step two.
func (w *Wizard) Business(businessName, businessType, annualTurnover, yearsInBusiness string) *service.ValidationError {
	in := w.input
	in.BusinessName, in.BusinessType = businessName, businessType
	in.AnnualTurnover, in.YearsInBusiness = annualTurnover, yearsInBusiness
	if ve := in.ValidateBusiness(); ve != nil {
		return ve
	}
	w.input = in
	w.advance(StepLoan)
	return nil
}

// Loan validates and records step three.
func (w *Wizard) Loan(amount, purpose, tenure string) *service.ValidationError {
	in := w.input
	in.LoanAmount, in.LoanPurpose, in.Tenure = amount, purpose, tenure
	if ve := in.ValidateLoan(); ve != nil {
		return ve
	}
	w.input = in
	w.advance(StepDocuments)
	return nil
}

// Documents records the optional government IDs. Validation here is
// soft: a malformed PAN or GST is dropped, it never blocks submission.
func (w *Wizard) Documents(pan, gst string) {
	if p := strings.ToUpper(strings.TrimSpace(pan)); panRe.MatchString(p) {
		w.input.PANNumber = &p
	} else {
		w.input.PANNumber = nil
	}
	if g := strings.ToUpper(strings.TrimSpace(gst)); gstRe.MatchString(g) {
		w.input.GSTNumber = &g
	} else {
		w.input.GSTNumber = nil
	}
	w.advance(StepDone)
}

// Submit files the application. The documents step is optional, so
// Submit is valid from StepDocuments onward.
func (w *Wizard) Submit(ctx context.Context, caller *auth.Identity) (*models.Submission, error) {
	if w.step < StepDocuments {
		return nil, ErrIncomplete
	}
	in := w.input
	return w.svc.Create(ctx, &in, caller)
}

func (w *Wizard) advance(to Step) {
	if to > w.step {
		w.step = to
	}
}
