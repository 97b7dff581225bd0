package card

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"proxydeck/internal/platform/mtgapi"
)

var (
	ErrUpstream   = errors.New("card lookup failed")
	ErrNotFound   = errors.New("card not found")
	ErrNoPrinting = errors.New("no printing with an image")
)

// Resolver maps card names to their printings. It does not cache: every
// call queries the lookup.
type Resolver struct {
	lookup      Lookup
	concurrency int
}

func NewResolver(lookup Lookup, concurrency int) *Resolver {
	if concurrency <= 0 {
		concurrency = 1
	}
	return &Resolver{lookup: lookup, concurrency: concurrency}
}

// Resolve returns every printing of name. An unknown name, whether reported
// as an empty result or as a 404, yields an empty slice and a nil error.
func (r *Resolver) Resolve(ctx context.Context, name string) ([]Printing, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return []Printing{}, nil
	}

	cards, err := r.lookup.GetCards(ctx, name)
	if errors.Is(err, mtgapi.ErrNotFound) {
		return []Printing{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %w", ErrUpstream, name, err)
	}

	printings := make([]Printing, 0, len(cards))
	for _, c := range cards {
		printings = append(printings, fromAPI(c))
	}
	return printings, nil
}

// Choose resolves name and applies policy.
func (r *Resolver) Choose(ctx context.Context, name string, policy Policy) (Printing, error) {
	printings, err := r.Resolve(ctx, name)
	if err != nil {
		return Printing{}, err
	}
	if len(printings) == 0 {
		return Printing{}, fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	p, ok := Select(printings, policy)
	if !ok {
		return Printing{}, fmt.Errorf("%w: %q", ErrNoPrinting, name)
	}
	return p, nil
}

// NameResult holds the printings found for one requested name.
type NameResult struct {
	Name      string     `json:"name"`
	Printings []Printing `json:"-"`
}

// ResolveMany resolves every name concurrently. Results keep the order of
// names. The first lookup failure cancels the rest.
func (r *Resolver) ResolveMany(ctx context.Context, names []string) ([]NameResult, error) {
	results := make([]NameResult, len(names))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)
	for i, name := range names {
		g.Go(func() error {
			printings, err := r.Resolve(gctx, name)
			if err != nil {
				return err
			}
			results[i] = NameResult{Name: strings.TrimSpace(name), Printings: printings}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
