// Package service coordinates validation, tax computation, lifecycle changes,
// and persistence of tax returns.
package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/equitytax/tax-calculator/internal/calculation"
	"github.com/equitytax/tax-calculator/internal/domain"
	"github.com/equitytax/tax-calculator/internal/storage"
)

var (
	// ErrDuplicateReturn is returned when a user already has a return for the tax year.
	ErrDuplicateReturn = storage.ErrDuplicate
	// ErrNotEditable is returned when inputs are changed outside draft or rejected.
	ErrNotEditable = errors.New("tax return can only be edited while draft or rejected")
)

// TaxReturnService is the only writer of tax returns. Derived totals are
// recomputed explicitly before every save.
//
// Writes are serialized by mu so each read-check-save sequence sees the
// state it acts on. Across processes sharing one database only the store's
// (user, tax year) uniqueness is enforced.
type TaxReturnService struct {
	mu     sync.Mutex
	repo   storage.Repository
	calc   *calculation.Calculator
	logger calculation.Logger
}

// NewTaxReturnService wires a service. A nil logger discards output.
func NewTaxReturnService(repo storage.Repository, calc *calculation.Calculator, logger calculation.Logger) *TaxReturnService {
	if logger == nil {
		logger = calculation.NopLogger{}
	}
	return &TaxReturnService{repo: repo, calc: calc, logger: logger}
}

// Calculator returns the calculator the service computes with.
func (s *TaxReturnService) Calculator() *calculation.Calculator {
	return s.calc
}

// Create validates and stores a new draft return. The caller's ID, status,
// review fields, and calculations are ignored.
func (s *TaxReturnService) Create(ctx context.Context, in *domain.TaxReturn) (*domain.TaxReturn, error) {
	now := nowFunc()

	r := &domain.TaxReturn{
		ID:           domain.NewReturnID(),
		UserID:       in.UserID,
		TaxYear:      in.TaxYear,
		Status:       domain.StatusDraft,
		Priority:     in.Priority,
		PersonalInfo: in.PersonalInfo,
		Income:       in.Income,
		Deductions:   in.Deductions,
		Metadata:     in.Metadata,
		CreatedAt:    now,
	}
	r.ApplyDefaults()
	s.calc.DefaultStandardAmount(r)

	if err := s.validate(r, now); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := s.repo.FindByUserAndYear(ctx, r.UserID, r.TaxYear)
	switch {
	case err == nil:
		return nil, fmt.Errorf("%w: %s", ErrDuplicateReturn, existing.ID)
	case !errors.Is(err, storage.ErrNotFound):
		return nil, err
	}

	if err := s.save(ctx, r, now); err != nil {
		return nil, err
	}
	s.logger.Infof("created tax return %s for user %s, tax year %d", r.ID, r.UserID, r.TaxYear)
	return r, nil
}

// Update replaces the filer-editable inputs of a draft or rejected return.
// An empty SSN keeps the stored one.
func (s *TaxReturnService) Update(ctx context.Context, id string, in *domain.TaxReturn) (*domain.TaxReturn, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !r.Editable() {
		return nil, fmt.Errorf("%w (status %s)", ErrNotEditable, r.Status)
	}

	ssn := r.PersonalInfo.SSN
	r.PersonalInfo = in.PersonalInfo
	if r.PersonalInfo.SSN == "" {
		r.PersonalInfo.SSN = ssn
	}
	r.Income = in.Income
	r.Deductions = in.Deductions
	if in.Priority != "" {
		r.Priority = in.Priority
	}
	if in.Metadata.SubmissionMethod != "" {
		r.Metadata = in.Metadata
	}
	r.ApplyDefaults()
	s.calc.DefaultStandardAmount(r)

	now := nowFunc()
	if err := s.validate(r, now); err != nil {
		return nil, err
	}
	if err := s.save(ctx, r, now); err != nil {
		return nil, err
	}
	s.logger.Infof("updated tax return %s", r.ID)
	return r, nil
}

// Get returns a return by ID.
func (s *TaxReturnService) Get(ctx context.Context, id string) (*domain.TaxReturn, error) {
	return s.repo.Get(ctx, id)
}

// Delete removes a draft return.
func (s *TaxReturnService) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if r.Status != domain.StatusDraft {
		return fmt.Errorf("%w: only drafts can be deleted (status %s)", domain.ErrInvalidTransition, r.Status)
	}
	return s.repo.Delete(ctx, id)
}

// List returns returns matching f.
func (s *TaxReturnService) List(ctx context.Context, f storage.Filter) ([]*domain.TaxReturn, error) {
	return s.repo.List(ctx, f)
}

// ListByUser returns every return belonging to userID.
func (s *TaxReturnService) ListByUser(ctx context.Context, userID string) ([]*domain.TaxReturn, error) {
	return s.repo.List(ctx, storage.Filter{UserID: userID})
}

// FindByUserAndYear returns the user's return for a tax year.
func (s *TaxReturnService) FindByUserAndYear(ctx context.Context, userID string, taxYear int) (*domain.TaxReturn, error) {
	return s.repo.FindByUserAndYear(ctx, userID, taxYear)
}

// FindByStatus returns every return in status.
func (s *TaxReturnService) FindByStatus(ctx context.Context, status domain.ReturnStatus) ([]*domain.TaxReturn, error) {
	if !status.Valid() {
		return nil, domain.ValidationErrors{{Field: "status", Message: fmt.Sprintf("unknown status %q", status)}}
	}
	return s.repo.List(ctx, storage.Filter{Status: status})
}

// FindPending returns the review queue: pending returns, highest priority
// first, then oldest submission first.
func (s *TaxReturnService) FindPending(ctx context.Context) ([]*domain.TaxReturn, error) {
	pending, err := s.repo.List(ctx, storage.Filter{Status: domain.StatusPending})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(pending, func(i, j int) bool {
		pi, pj := priorityRank(pending[i].Priority), priorityRank(pending[j].Priority)
		if pi != pj {
			return pi > pj
		}
		return submittedBefore(pending[i], pending[j])
	})
	return pending, nil
}

func priorityRank(p domain.Priority) int {
	switch p {
	case domain.PriorityHigh:
		return 3
	case domain.PriorityMedium:
		return 2
	case domain.PriorityLow:
		return 1
	}
	return 0
}

func submittedBefore(a, b *domain.TaxReturn) bool {
	switch {
	case a.SubmittedAt == nil:
		return false
	case b.SubmittedAt == nil:
		return true
	}
	return a.SubmittedAt.Before(*b.SubmittedAt)
}

// Submit validates a draft or rejected return and puts it in the review queue.
func (s *TaxReturnService) Submit(ctx context.Context, id string) (*domain.TaxReturn, error) {
	return s.transition(ctx, id, func(r *domain.TaxReturn, now time.Time) error {
		if err := s.validate(r, now); err != nil {
			return err
		}
		return r.Submit(now)
	})
}

// StartReview marks a pending return as being reviewed.
func (s *TaxReturnService) StartReview(ctx context.Context, id, reviewer string) (*domain.TaxReturn, error) {
	return s.transition(ctx, id, func(r *domain.TaxReturn, now time.Time) error {
		return r.StartReview(reviewer, now)
	})
}

// Approve accepts a pending or in-review return.
func (s *TaxReturnService) Approve(ctx context.Context, id, reviewer, comments string) (*domain.TaxReturn, error) {
	return s.transition(ctx, id, func(r *domain.TaxReturn, now time.Time) error {
		return r.Approve(reviewer, comments, now)
	})
}

// Reject returns a pending or in-review return to the filer.
func (s *TaxReturnService) Reject(ctx context.Context, id, reviewer, reason, comments string) (*domain.TaxReturn, error) {
	return s.transition(ctx, id, func(r *domain.TaxReturn, now time.Time) error {
		return r.Reject(reviewer, reason, comments, now)
	})
}

// Complete closes out an approved return.
func (s *TaxReturnService) Complete(ctx context.Context, id string) (*domain.TaxReturn, error) {
	return s.transition(ctx, id, func(r *domain.TaxReturn, _ time.Time) error {
		return r.Complete()
	})
}

func (s *TaxReturnService) transition(ctx context.Context, id string, apply func(*domain.TaxReturn, time.Time) error) (*domain.TaxReturn, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	from := r.Status
	now := nowFunc()
	if err := apply(r, now); err != nil {
		return nil, err
	}
	if err := s.save(ctx, r, now); err != nil {
		return nil, err
	}
	s.logger.Infof("tax return %s: %s -> %s", r.ID, from, r.Status)
	return r, nil
}

// validate runs the return's own checks and confirms rules exist for its year.
func (s *TaxReturnService) validate(r *domain.TaxReturn, now time.Time) error {
	err := r.Validate(now)
	if _, yerr := s.calc.Rules.ForYear(r.TaxYear); yerr != nil {
		var errs domain.ValidationErrors
		errors.As(err, &errs)
		errs = append(errs, domain.ValidationError{Field: "tax_year", Message: yerr.Error()})
		return errs
	}
	return err
}

// save recomputes the derived totals from the current inputs, then persists.
func (s *TaxReturnService) save(ctx context.Context, r *domain.TaxReturn, now time.Time) error {
	if err := s.calc.Apply(r); err != nil {
		return err
	}
	r.UpdatedAt = now
	if err := s.repo.Save(ctx, r); err != nil {
		s.logger.Errorf("saving tax return %s: %v", r.ID, err)
		return err
	}
	return nil
}

// PreviewRequest is the input to a speculative computation.
type PreviewRequest struct {
	TaxYear      int                       `json:"tax_year"`
	FilingStatus domain.FilingStatus       `json:"filing_status"`
	Income       domain.IncomeBreakdown    `json:"income"`
	Deductions   domain.DeductionSelection `json:"deductions"`
}

// Preview is a computed result that is never stored.
type Preview struct {
	TaxYear       int                         `json:"tax_year"`
	Result        domain.TaxComputationResult `json:"result"`
	Slices        []domain.BracketSlice       `json:"slices"`
	MarginalRate  decimal.Decimal             `json:"marginal_rate"`
	EffectiveRate decimal.Decimal             `json:"effective_rate"`
	// Recommended is the larger of standard and itemized. It is not applied.
	Recommended domain.DeductionSelection `json:"recommended_deduction"`
}

// Preview computes totals for unsaved inputs. A zero tax year means the
// latest loaded year; an empty standard amount uses the year's default.
func (s *TaxReturnService) Preview(req PreviewRequest) (*Preview, error) {
	if req.TaxYear == 0 {
		req.TaxYear = s.calc.Rules.Latest()
	}
	if req.FilingStatus == "" {
		req.FilingStatus = domain.FilingSingle
	}
	if req.Deductions.Type == "" {
		req.Deductions.Type = domain.DeductionStandard
	}

	var errs domain.ValidationErrors
	if !req.FilingStatus.Valid() {
		errs = append(errs, domain.ValidationError{Field: "filing_status", Message: fmt.Sprintf("must be one of %v", domain.FilingStatuses)})
	}
	errs = append(errs, domain.ValidateAmounts(req.Income, req.Deductions)...)
	if err := errs.Err(); err != nil {
		return nil, err
	}

	yr, err := s.calc.Rules.ForYear(req.TaxYear)
	if err != nil {
		return nil, domain.ValidationErrors{{Field: "tax_year", Message: err.Error()}}
	}
	standard := yr.StandardDeduction(req.FilingStatus)
	if req.Deductions.StandardAmount.IsZero() {
		req.Deductions.StandardAmount = standard
	}

	table := yr.Table(req.FilingStatus)
	result := calculation.ComputeDerivedTotals(req.Income, req.Deductions, table)
	return &Preview{
		TaxYear:       req.TaxYear,
		Result:        result,
		Slices:        calculation.Breakdown(result.TaxableIncome, table),
		MarginalRate:  calculation.MarginalRate(result.TaxableIncome, table),
		EffectiveRate: calculation.EffectiveRate(result.TaxOwed, result.TotalIncome),
		Recommended:   calculation.BestDeduction(req.Deductions.StandardAmount, req.Deductions.Itemized),
	}, nil
}
