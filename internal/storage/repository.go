// Package storage persists tax returns. Stores never compute derived totals;
// they save exactly what they are given.
package storage

import (
	"context"
	"errors"

	"github.com/equitytax/tax-calculator/internal/domain"
)

// ErrNotFound is returned when no return matches the lookup.
var ErrNotFound = errors.New("tax return not found")

// ErrDuplicate is returned by Save when another return already exists for
// the same user and tax year.
var ErrDuplicate = errors.New("tax return already exists for this user and tax year")

// Filter narrows List results. Zero-valued fields match everything.
type Filter struct {
	UserID string
	Status domain.ReturnStatus
}

func (f Filter) matches(r *domain.TaxReturn) bool {
	if f.UserID != "" && r.UserID != f.UserID {
		return false
	}
	if f.Status != "" && r.Status != f.Status {
		return false
	}
	return true
}

// Repository stores tax returns by ID. Implementations return copies so
// callers cannot mutate stored state.
type Repository interface {
	// Save inserts or replaces r by ID. It fails with ErrDuplicate when a
	// different return holds the same (user, tax year) pair.
	Save(ctx context.Context, r *domain.TaxReturn) error
	Get(ctx context.Context, id string) (*domain.TaxReturn, error)
	FindByUserAndYear(ctx context.Context, userID string, taxYear int) (*domain.TaxReturn, error)
	// List returns matching returns ordered by creation time, then ID.
	List(ctx context.Context, f Filter) ([]*domain.TaxReturn, error)
	Delete(ctx context.Context, id string) error
	Close() error
}

func clone(r *domain.TaxReturn) *domain.TaxReturn {
	c := *r
	if r.SubmittedAt != nil {
		t := *r.SubmittedAt
		c.SubmittedAt = &t
	}
	if r.ReviewedAt != nil {
		t := *r.ReviewedAt
		c.ReviewedAt = &t
	}
	return &c
}
