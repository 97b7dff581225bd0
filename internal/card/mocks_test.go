package card

import (
	"context"

	"github.com/stretchr/testify/mock"

	"proxydeck/internal/platform/mtgapi"
	"proxydeck/internal/storage"
)

type mockLookup struct {
	mock.Mock
}

func (m *mockLookup) GetCards(ctx context.Context, name string) ([]mtgapi.Card, error) {
	args := m.Called(ctx, name)
	cards, _ := args.Get(0).([]mtgapi.Card)
	return cards, args.Error(1)
}

type mockFetcher struct {
	mock.Mock
}

func (m *mockFetcher) Fetch(ctx context.Context, p Printing, h storage.Handle) (string, error) {
	args := m.Called(ctx, p, h)
	return args.String(0), args.Error(1)
}
