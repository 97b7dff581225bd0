package proxy

import (
	"context"
	"io"

	"proxydeck/internal/card"
	"proxydeck/internal/decklist"
	"proxydeck/internal/storage"
)

type Allocator interface {
	Allocate(ctx context.Context) (storage.Handle, error)
	Open(id string) (storage.Handle, error)
}

type Ingestor interface {
	IngestFile(name string, r io.Reader, path string) (decklist.Deck, error)
}

type Resolver interface {
	Resolve(ctx context.Context, name string) ([]card.Printing, error)
}

type Fetcher interface {
	Fetch(ctx context.Context, p card.Printing, h storage.Handle) (string, error)
}

// Repository records pipeline runs.
type Repository interface {
	CreateRun(ctx context.Context, run *Run) error
	UpdateRun(ctx context.Context, run *Run) error
	AddFailure(ctx context.Context, runID string, position int, f Failure) error
	GetRun(ctx context.Context, id string) (*Run, error)
}
