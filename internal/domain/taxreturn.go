package domain

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/equitytax/tax-calculator/pkg/dateutil"
)

// ReturnStatus is the review lifecycle state of a return.
type ReturnStatus string

const (
	StatusDraft       ReturnStatus = "draft"
	StatusPending     ReturnStatus = "pending"
	StatusUnderReview ReturnStatus = "under_review"
	StatusApproved    ReturnStatus = "approved"
	StatusRejected    ReturnStatus = "rejected"
	StatusCompleted   ReturnStatus = "completed"
)

// ReturnStatuses lists every status in lifecycle order.
var ReturnStatuses = []ReturnStatus{StatusDraft, StatusPending, StatusUnderReview, StatusApproved, StatusRejected, StatusCompleted}

// Valid reports whether s is a known status.
func (s ReturnStatus) Valid() bool {
	for _, v := range ReturnStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// Priority orders returns in the review queue.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Valid reports whether p is a known priority.
func (p Priority) Valid() bool {
	return p == PriorityLow || p == PriorityMedium || p == PriorityHigh
}

// FilingStatus is collected from the filer. Bracket selection only uses it
// when the rules for the year define status-specific tables.
type FilingStatus string

const (
	FilingSingle            FilingStatus = "single"
	FilingMarriedJointly    FilingStatus = "married_filing_jointly"
	FilingMarriedSeparately FilingStatus = "married_filing_separately"
	FilingHeadOfHousehold   FilingStatus = "head_of_household"
	FilingQualifyingWidow   FilingStatus = "qualifying_widow"
)

// FilingStatuses lists every accepted filing status.
var FilingStatuses = []FilingStatus{FilingSingle, FilingMarriedJointly, FilingMarriedSeparately, FilingHeadOfHousehold, FilingQualifyingWidow}

// Valid reports whether fs is a known filing status.
func (fs FilingStatus) Valid() bool {
	for _, v := range FilingStatuses {
		if fs == v {
			return true
		}
	}
	return false
}

// SubmissionMethod records the channel a return arrived through.
type SubmissionMethod string

const (
	SubmissionWeb    SubmissionMethod = "web"
	SubmissionMobile SubmissionMethod = "mobile"
	SubmissionAPI    SubmissionMethod = "api"
)

// Address is the filer's mailing address.
type Address struct {
	Street  string `yaml:"street" json:"street"`
	City    string `yaml:"city" json:"city"`
	State   string `yaml:"state" json:"state"`
	ZipCode string `yaml:"zip_code" json:"zip_code"`
}

// PersonalInfo identifies the filer. SSN is read from input files but never written to JSON.
type PersonalInfo struct {
	FirstName    string       `yaml:"first_name" json:"first_name"`
	LastName     string       `yaml:"last_name" json:"last_name"`
	SSN          string       `yaml:"ssn" json:"-"`
	DateOfBirth  time.Time    `yaml:"date_of_birth" json:"date_of_birth"`
	Address      Address      `yaml:"address" json:"address"`
	FilingStatus FilingStatus `yaml:"filing_status" json:"filing_status"`
}

// MaskedSSN returns the SSN with all but the last four digits hidden.
func (pi PersonalInfo) MaskedSSN() string {
	digits := strings.ReplaceAll(pi.SSN, "-", "")
	if len(digits) < 4 {
		return ""
	}
	return "***-**-" + digits[len(digits)-4:]
}

// Metadata records where a return came from.
type Metadata struct {
	IPAddress        string           `yaml:"ip_address,omitempty" json:"ip_address,omitempty"`
	UserAgent        string           `yaml:"user_agent,omitempty" json:"user_agent,omitempty"`
	SubmissionMethod SubmissionMethod `yaml:"submission_method,omitempty" json:"submission_method,omitempty"`
}

// TaxReturn is one filer's return for one tax year.
type TaxReturn struct {
	ID              string               `yaml:"id,omitempty" json:"id"`
	UserID          string               `yaml:"user_id" json:"user_id"`
	TaxYear         int                  `yaml:"tax_year" json:"tax_year"`
	Status          ReturnStatus         `yaml:"status,omitempty" json:"status"`
	Priority        Priority             `yaml:"priority,omitempty" json:"priority"`
	PersonalInfo    PersonalInfo         `yaml:"personal_info" json:"personal_info"`
	Income          IncomeBreakdown      `yaml:"income" json:"income"`
	Deductions      DeductionSelection   `yaml:"deductions" json:"deductions"`
	Calculations    TaxComputationResult `yaml:"calculations,omitempty" json:"calculations"`
	SubmittedAt     *time.Time           `yaml:"submitted_at,omitempty" json:"submitted_at,omitempty"`
	ReviewedAt      *time.Time           `yaml:"reviewed_at,omitempty" json:"reviewed_at,omitempty"`
	ReviewedBy      string               `yaml:"reviewed_by,omitempty" json:"reviewed_by,omitempty"`
	ReviewComments  string               `yaml:"review_comments,omitempty" json:"review_comments,omitempty"`
	RejectionReason string               `yaml:"rejection_reason,omitempty" json:"rejection_reason,omitempty"`
	DueDate         time.Time            `yaml:"due_date,omitempty" json:"due_date"`
	Metadata        Metadata             `yaml:"metadata,omitempty" json:"metadata"`
	CreatedAt       time.Time            `yaml:"created_at,omitempty" json:"created_at"`
	UpdatedAt       time.Time            `yaml:"updated_at,omitempty" json:"updated_at"`
}

// NewReturnID returns a fresh identifier for a return.
func NewReturnID() string {
	return uuid.NewString()
}

var (
	ssnPattern = regexp.MustCompile(`^\d{3}-?\d{2}-?\d{4}$`)
	zipPattern = regexp.MustCompile(`^\d{5}(-\d{4})?$`)
)

// ApplyDefaults fills unset fields with their defaults.
func (tr *TaxReturn) ApplyDefaults() {
	if tr.Status == "" {
		tr.Status = StatusDraft
	}
	if tr.Priority == "" {
		tr.Priority = PriorityMedium
	}
	if tr.Deductions.Type == "" {
		tr.Deductions.Type = DeductionStandard
	}
	if tr.Metadata.SubmissionMethod == "" {
		tr.Metadata.SubmissionMethod = SubmissionWeb
	}
	if tr.DueDate.IsZero() && tr.TaxYear > 0 {
		tr.DueDate = dateutil.DueDate(tr.TaxYear)
	}
	tr.PersonalInfo.FirstName = strings.TrimSpace(tr.PersonalInfo.FirstName)
	tr.PersonalInfo.LastName = strings.TrimSpace(tr.PersonalInfo.LastName)
}

// Validate checks every field and returns ValidationErrors listing all problems.
func (tr *TaxReturn) Validate(now time.Time) error {
	var errs ValidationErrors

	if strings.TrimSpace(tr.UserID) == "" {
		errs.add("user_id", "is required")
	}
	if !dateutil.ValidTaxYear(tr.TaxYear, now) {
		errs.add("tax_year", fmt.Sprintf("must be between %d and %d", dateutil.MinTaxYear, now.Year()))
	}
	if tr.Status != "" && !tr.Status.Valid() {
		errs.add("status", fmt.Sprintf("unknown status %q", tr.Status))
	}
	if tr.Priority != "" && !tr.Priority.Valid() {
		errs.add("priority", fmt.Sprintf("unknown priority %q", tr.Priority))
	}
	switch tr.Metadata.SubmissionMethod {
	case "", SubmissionWeb, SubmissionMobile, SubmissionAPI:
	default:
		errs.add("metadata.submission_method", fmt.Sprintf("unknown submission method %q", tr.Metadata.SubmissionMethod))
	}

	errs = append(errs, tr.PersonalInfo.validate(now)...)
	errs = append(errs, ValidateAmounts(tr.Income, tr.Deductions)...)

	return errs.Err()
}

// ValidateAmounts checks the deduction type and that no income or deduction
// amount is negative.
func ValidateAmounts(income IncomeBreakdown, deductions DeductionSelection) ValidationErrors {
	errs := validateNonNegative("income", income.Categories())
	if _, err := ParseDeductionType(string(deductions.Type)); err != nil {
		errs.add("deductions.type", err.Error())
	}
	if deductions.StandardAmount.IsNegative() {
		errs.add("deductions.standard_amount", "cannot be negative")
	}
	return append(errs, validateNonNegative("deductions.itemized", deductions.Itemized.Categories())...)
}

func (pi PersonalInfo) validate(now time.Time) ValidationErrors {
	var errs ValidationErrors
	if strings.TrimSpace(pi.FirstName) == "" {
		errs.add("personal_info.first_name", "is required")
	}
	if strings.TrimSpace(pi.LastName) == "" {
		errs.add("personal_info.last_name", "is required")
	}
	if pi.SSN == "" {
		errs.add("personal_info.ssn", "is required")
	} else if !ssnPattern.MatchString(pi.SSN) {
		errs.add("personal_info.ssn", "must look like XXX-XX-XXXX")
	}
	switch {
	case pi.DateOfBirth.IsZero():
		errs.add("personal_info.date_of_birth", "is required")
	case pi.DateOfBirth.After(now):
		errs.add("personal_info.date_of_birth", "cannot be in the future")
	case pi.DateOfBirth.Year() < 1900:
		errs.add("personal_info.date_of_birth", "is not a valid date")
	}
	if pi.Address.Street == "" {
		errs.add("personal_info.address.street", "is required")
	}
	if pi.Address.City == "" {
		errs.add("personal_info.address.city", "is required")
	}
	if pi.Address.State == "" {
		errs.add("personal_info.address.state", "is required")
	}
	if pi.Address.ZipCode == "" {
		errs.add("personal_info.address.zip_code", "is required")
	} else if !zipPattern.MatchString(pi.Address.ZipCode) {
		errs.add("personal_info.address.zip_code", "must be a 5 or 9 digit ZIP code")
	}
	if !pi.FilingStatus.Valid() {
		errs.add("personal_info.filing_status", fmt.Sprintf("must be one of %v", FilingStatuses))
	}
	return errs
}

// FullName returns "First Last".
func (tr *TaxReturn) FullName() string {
	return strings.TrimSpace(tr.PersonalInfo.FirstName + " " + tr.PersonalInfo.LastName)
}

// AgeAtYearEnd returns the filer's age on December 31 of the tax year, or 0
// when no date of birth is set.
func (tr *TaxReturn) AgeAtYearEnd() int {
	if tr.PersonalInfo.DateOfBirth.IsZero() {
		return 0
	}
	return dateutil.Age(tr.PersonalInfo.DateOfBirth, dateutil.EndOfYear(tr.TaxYear))
}

// DaysUntilDue returns the whole days left before the due date, rounded up.
func (tr *TaxReturn) DaysUntilDue(now time.Time) int {
	return dateutil.DaysUntil(tr.DueDate, now)
}

// IsOverdue reports whether the due date has passed.
func (tr *TaxReturn) IsOverdue(now time.Time) bool {
	return dateutil.IsOverdue(tr.DueDate, now)
}

// Editable reports whether the filer may still change inputs.
func (tr *TaxReturn) Editable() bool {
	return tr.Status == StatusDraft || tr.Status == StatusRejected
}

func (tr *TaxReturn) transition(to ReturnStatus, allowed ...ReturnStatus) error {
	for _, from := range allowed {
		if tr.Status == from {
			tr.Status = to
			return nil
		}
	}
	return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, tr.Status, to)
}

// Submit moves a draft or rejected return into the review queue.
func (tr *TaxReturn) Submit(now time.Time) error {
	if err := tr.transition(StatusPending, StatusDraft, StatusRejected); err != nil {
		return err
	}
	tr.SubmittedAt = &now
	tr.RejectionReason = ""
	return nil
}

// StartReview marks a pending return as picked up by reviewer.
func (tr *TaxReturn) StartReview(reviewer string, now time.Time) error {
	if err := tr.transition(StatusUnderReview, StatusPending); err != nil {
		return err
	}
	tr.ReviewedBy = reviewer
	tr.ReviewedAt = &now
	return nil
}

// Approve accepts a pending or in-review return.
func (tr *TaxReturn) Approve(reviewer, comments string, now time.Time) error {
	if err := tr.transition(StatusApproved, StatusPending, StatusUnderReview); err != nil {
		return err
	}
	tr.ReviewedBy = reviewer
	tr.ReviewedAt = &now
	tr.ReviewComments = comments
	return nil
}

// Reject sends a pending or in-review return back to the filer. A reason is required.
func (tr *TaxReturn) Reject(reviewer, reason, comments string, now time.Time) error {
	if strings.TrimSpace(reason) == "" {
		return ValidationErrors{{Field: "rejection_reason", Message: "is required"}}
	}
	if err := tr.transition(StatusRejected, StatusPending, StatusUnderReview); err != nil {
		return err
	}
	tr.ReviewedBy = reviewer
	tr.ReviewedAt = &now
	tr.RejectionReason = reason
	tr.ReviewComments = comments
	return nil
}

// Complete closes out an approved return.
func (tr *TaxReturn) Complete() error {
	return tr.transition(StatusCompleted, StatusApproved)
}
