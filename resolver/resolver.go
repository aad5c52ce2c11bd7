// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package resolver

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/danielhkuo/accent-vote/catalog"
	"github.com/danielhkuo/accent-vote/models"
)

// Reserved range, see models.ReservedKeyMin
const (
	ReservedKeyMin = models.ReservedKeyMin
	ReservedKeyMax = models.ReservedKeyMax
)

// IsReservedKey reports whether ref falls in the reserved semantic key range
func IsReservedKey(ref int64) bool {
	return models.IsReservedKey(ref)
}

// Resolver turns client supplied references into a canonical target
type Resolver struct {
	store catalog.Store
}

func New(store catalog.Store) *Resolver {
	return &Resolver{store: store}
}

// Resolve handles the legacy single-field form, where optionRef is either a
// reserved semantic key code for subjectID or a global option id.
//
// An option id owned by another subject is rejected with
// ErrSubjectOptionMismatch; it is never rewritten to its real subject.
func (r *Resolver) Resolve(ctx context.Context, subjectID, optionRef int64) (models.Target, error) {
	if subjectID <= 0 {
		return models.Target{}, fmt.Errorf("subject %d: %w", subjectID, models.ErrSubjectNotFound)
	}
	if optionRef <= 0 {
		return models.Target{}, fmt.Errorf("option_ref %d: %w", optionRef, models.ErrInvalidOptionRef)
	}

	if IsReservedKey(optionRef) {
		return r.byKey(ctx, subjectID, strconv.FormatInt(optionRef, 10))
	}
	return r.byID(ctx, subjectID, optionRef)
}

// ResolveExplicit handles the two-field form. Exactly one of semanticKey
// and optionID must be set; no range check is involved.
func (r *Resolver) ResolveExplicit(ctx context.Context, subjectID int64, semanticKey *string, optionID *int64) (models.Target, error) {
	if subjectID <= 0 {
		return models.Target{}, fmt.Errorf("subject %d: %w", subjectID, models.ErrSubjectNotFound)
	}

	switch {
	case semanticKey != nil && optionID != nil:
		return models.Target{}, fmt.Errorf("both semantic_key and option_id given: %w", models.ErrInvalidOptionRef)
	case semanticKey != nil:
		if *semanticKey == "" {
			return models.Target{}, fmt.Errorf("empty semantic_key: %w", models.ErrInvalidOptionRef)
		}
		return r.byKey(ctx, subjectID, *semanticKey)
	case optionID != nil:
		if *optionID <= 0 {
			return models.Target{}, fmt.Errorf("option_id %d: %w", *optionID, models.ErrInvalidOptionRef)
		}
		return r.byID(ctx, subjectID, *optionID)
	default:
		return models.Target{}, fmt.Errorf("no option given: %w", models.ErrInvalidOptionRef)
	}
}

func (r *Resolver) byKey(ctx context.Context, subjectID int64, key string) (models.Target, error) {
	opt, err := r.store.GetOptionBySubjectAndKey(ctx, subjectID, key)
	if errors.Is(err, catalog.ErrNotFound) {
		return models.Target{}, fmt.Errorf("subject %d key %s: %w", subjectID, key, models.ErrOptionNotAvailableForSubject)
	}
	if err != nil {
		return models.Target{}, err
	}
	return target(opt), nil
}

func (r *Resolver) byID(ctx context.Context, subjectID, optionID int64) (models.Target, error) {
	opt, err := r.store.GetOption(ctx, optionID)
	if errors.Is(err, catalog.ErrNotFound) {
		return models.Target{}, fmt.Errorf("option %d: %w", optionID, models.ErrOptionNotFound)
	}
	if err != nil {
		return models.Target{}, err
	}

	if opt.SubjectID != subjectID {
		return models.Target{}, fmt.Errorf("option %d belongs to subject %d, not %d: %w",
			optionID, opt.SubjectID, subjectID, models.ErrSubjectOptionMismatch)
	}
	return target(opt), nil
}

func target(opt models.Option) models.Target {
	return models.Target{
		SubjectID:   opt.SubjectID,
		OptionID:    opt.ID,
		SemanticKey: opt.SemanticKey,
	}
}
