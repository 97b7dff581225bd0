package proxy

import (
	"context"
	"os"
	"strconv"
	"sync"

	"github.com/stretchr/testify/mock"

	"proxydeck/internal/card"
	"proxydeck/internal/imagefetch"
	"proxydeck/internal/storage"
)

type mockResolver struct {
	mock.Mock
}

func (m *mockResolver) Resolve(ctx context.Context, name string) ([]card.Printing, error) {
	args := m.Called(ctx, name)
	printings, _ := args.Get(0).([]card.Printing)
	return printings, args.Error(1)
}

type mockRepo struct {
	mock.Mock
}

func (m *mockRepo) CreateRun(ctx context.Context, run *Run) error {
	return m.Called(ctx, run).Error(0)
}

func (m *mockRepo) UpdateRun(ctx context.Context, run *Run) error {
	return m.Called(ctx, run).Error(0)
}

func (m *mockRepo) AddFailure(ctx context.Context, runID string, position int, f Failure) error {
	return m.Called(ctx, runID, position, f).Error(0)
}

func (m *mockRepo) GetRun(ctx context.Context, id string) (*Run, error) {
	args := m.Called(ctx, id)
	run, _ := args.Get(0).(*Run)
	return run, args.Error(1)
}

// fileFetcher writes a small file per printing and counts calls per key.
type fileFetcher struct {
	mu     sync.Mutex
	calls  map[string]int
	fail   map[string]error
	before func(ctx context.Context, key string) error
}

func newFileFetcher() *fileFetcher {
	return &fileFetcher{calls: map[string]int{}, fail: map[string]error{}}
}

func (f *fileFetcher) Fetch(ctx context.Context, p card.Printing, h storage.Handle) (string, error) {
	key := p.Key()
	f.mu.Lock()
	f.calls[key]++
	err := f.fail[key]
	f.mu.Unlock()

	if f.before != nil {
		if err := f.before(ctx, key); err != nil {
			return "", err
		}
	}
	if err != nil {
		return "", err
	}
	path := imagefetch.Path(h, p)
	if err := os.WriteFile(path, []byte("png:"+key), 0o644); err != nil {
		return "", err
	}
	return path, nil
}

func (f *fileFetcher) callsFor(key string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[key]
}

func printing(name string, id int) card.Printing {
	return card.Printing{Name: name, MultiverseID: id, ImageURL: "http://img/" + strconv.Itoa(id)}
}
