package card

import (
	"context"

	"proxydeck/internal/platform/mtgapi"
	"proxydeck/internal/storage"
)

// Lookup is the upstream card data source.
type Lookup interface {
	GetCards(ctx context.Context, name string) ([]mtgapi.Card, error)
}

// ImageFetcher writes a printing's image into a storage handle.
type ImageFetcher interface {
	Fetch(ctx context.Context, p Printing, h storage.Handle) (string, error)
}

type ScratchAllocator interface {
	Allocate(ctx context.Context) (storage.Handle, error)
}
