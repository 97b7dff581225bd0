package proxy

import (
	"context"
	"fmt"
)

// NopRepo is used when no ledger database is configured.
type NopRepo struct{}

func (NopRepo) CreateRun(context.Context, *Run) error { return nil }
func (NopRepo) UpdateRun(context.Context, *Run) error { return nil }
func (NopRepo) AddFailure(context.Context, string, int, Failure) error { return nil }

func (NopRepo) GetRun(_ context.Context, id string) (*Run, error) {
	return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
}
