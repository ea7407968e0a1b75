package service

import (
	"fmt"
	"regexp"
	"strings"
)

// Field bounds follow the public form contract; keep them in sync with
// the frontend schemas.
var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// SubmissionInput is the caller-supplied application payload. A
// caller-supplied status is accepted by the decoder and then ignored:
// every new application starts pending.
type SubmissionInput struct {
	Name   string `json:"name"`
	Mobile string `json:"mobile"`
	Email  string `json:"email"`
	City   string `json:"city"`

	BusinessName    string `json:"business_name"`
	BusinessType    string `json:"business_type"`
	AnnualTurnover  string `json:"annual_turnover"`
	YearsInBusiness string `json:"years_in_business"`

	LoanAmount  string `json:"loan_amount"`
	LoanPurpose string `json:"loan_purpose"`
	Tenure      string `json:"tenure"`

	PANNumber *string `json:"pan_number"`
	GSTNumber *string `json:"gst_number"`

	Status string `json:"status"`
}

func checkRequired(ve *ValidationError, field, value string, max int) {
	v := strings.TrimSpace(value)
	if v == "" {
		ve.add(field, "is required")
		return
	}
	if len(v) > max {
		ve.add(field, fmt.Sprintf("must be at most %d characters", max))
	}
}

// ValidateBasics covers step one of the public form: applicant contact
// details.
func (in *SubmissionInput) ValidateBasics() *ValidationError {
	ve := &ValidationError{}
	checkRequired(ve, "name", in.Name, 120)
	checkRequired(ve, "city", in.City, 120)

	mobile := strings.TrimSpace(in.Mobile)
	if len(mobile) < 8 || len(mobile) > 20 {
		ve.add("mobile", "must be 8-20 characters")
	}

	email := strings.TrimSpace(in.Email)
	if email == "" || !emailRe.MatchString(email) {
		ve.add("email", "must be a valid email address")
	} else if len(email) > 160 {
		ve.add("email", "must be at most 160 characters")
	}
	return ve.orNil()
}

// ValidateBusiness covers step two: business information.
func (in *SubmissionInput) ValidateBusiness() *ValidationError {
	ve := &ValidationError{}
	checkRequired(ve, "business_name", in.BusinessName, 160)
	checkRequired(ve, "business_type", in.BusinessType, 160)
	checkRequired(ve, "annual_turnover", in.AnnualTurnover, 160)
	checkRequired(ve, "years_in_business", in.YearsInBusiness, 60)
	return ve.orNil()
}

// ValidateLoan covers step three: loan terms.
func (in *SubmissionInput) ValidateLoan() *ValidationError {
	ve := &ValidationError{}
	checkRequired(ve, "loan_amount", in.LoanAmount, 120)
	checkRequired(ve, "loan_purpose", in.LoanPurpose, 200)
	checkRequired(ve, "tenure", in.Tenure, 60)
	return ve.orNil()
}

// Validate runs the full schema and collects every failing field.
func (in *SubmissionInput) Validate() *ValidationError {
	ve := &ValidationError{}
	ve.merge(in.ValidateBasics())
	ve.merge(in.ValidateBusiness())
	ve.merge(in.ValidateLoan())
	return ve.orNil()
}
