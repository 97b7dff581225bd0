package proxy

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"proxydeck/internal/card"
	"proxydeck/internal/decklist"
	"proxydeck/internal/imagefetch"
	"proxydeck/internal/storage"
)

var (
	ErrInvalidUpload = errors.New("invalid decklist upload")
	ErrRunNotFound   = errors.New("run not found")
	ErrImageNotFound = errors.New("image not found")
)

type Config struct {
	Concurrency int
	Policy      card.Policy
}

type Service struct {
	allocator Allocator
	ingestor  Ingestor
	resolver  Resolver
	fetcher   Fetcher
	repo      Repository
	cfg       Config
	logger    *zap.Logger
}

func NewService(allocator Allocator, ingestor Ingestor, resolver Resolver, fetcher Fetcher, repo Repository, cfg Config, logger *zap.Logger) *Service {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 1
	}
	if cfg.Policy == "" {
		cfg.Policy = card.PolicyNewest
	}
	if repo == nil {
		repo = NopRepo{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		allocator: allocator,
		ingestor:  ingestor,
		resolver:  resolver,
		fetcher:   fetcher,
		repo:      repo,
		cfg:       cfg,
		logger:    logger,
	}
}

// Build allocates storage for one upload, ingests the decklist into it and
// fetches an image for every card. Only allocation and ingestion errors are
// returned; per-card problems are reported in Result.Failures.
func (s *Service) Build(ctx context.Context, name string, r io.Reader) (*Result, error) {
	handle, err := s.allocator.Allocate(ctx)
	if err != nil {
		return nil, fmt.Errorf("allocate storage: %w", err)
	}

	if strings.TrimSpace(name) == "" {
		name = handle.ID
	}
	run := &Run{
		ID:        handle.ID,
		DeckName:  name,
		Status:    StatusRunning,
		StartedAt: time.Now().UTC(),
	}
	ledgerCtx := context.WithoutCancel(ctx)
	if err := s.repo.CreateRun(ledgerCtx, run); err != nil {
		s.logger.Warn("create run failed", zap.String("run_id", run.ID), zap.Error(err))
	}

	deck, err := s.ingestor.IngestFile(name, r, handle.File(decklist.FileName))
	if err != nil {
		run.Status = StatusFailed
		run.Error = err.Error()
		s.finish(ledgerCtx, run, nil)
		return nil, fmt.Errorf("ingest decklist: %w", err)
	}

	result := s.assemble(ctx, handle, deck)

	run.CardsTotal = len(deck.Cards)
	run.CardsResolved = len(deck.Cards) - countReasons(result.Failures, ReasonNotFound, ReasonUpstream, ReasonCancelled)
	run.ImagesFetched = len(result.Deck.Cards)
	switch {
	case result.Complete():
		run.Status = StatusCompleted
	case len(result.Deck.Cards) > 0:
		run.Status = StatusPartial
	default:
		run.Status = StatusFailed
	}
	if err := ctx.Err(); err != nil {
		run.Error = err.Error()
	}
	s.finish(ledgerCtx, run, result.Failures)

	s.logger.Info("deck built",
		zap.String("run_id", run.ID),
		zap.String("status", run.Status),
		zap.Int("cards", run.CardsTotal),
		zap.Int("images", run.ImagesFetched),
		zap.Int("failures", len(result.Failures)),
	)
	return result, nil
}

type selection struct {
	printing card.Printing
	failure  *Failure
}

type download struct {
	path string
	err  error
}

// assemble resolves every card, then fetches each distinct printing once.
// Every task owns one result slot, so no locking is needed.
func (s *Service) assemble(ctx context.Context, h storage.Handle, deck decklist.Deck) *Result {
	selections := make([]selection, len(deck.Cards))

	var resolve errgroup.Group
	resolve.SetLimit(s.cfg.Concurrency)
	for i, c := range deck.Cards {
		resolve.Go(func() error {
			selections[i] = s.selectPrinting(ctx, c)
			return nil
		})
	}
	_ = resolve.Wait()

	var keys []string
	byKey := make(map[string]card.Printing)
	for _, sel := range selections {
		if sel.failure != nil {
			continue
		}
		key := sel.printing.Key()
		if _, ok := byKey[key]; !ok {
			byKey[key] = sel.printing
			keys = append(keys, key)
		}
	}

	downloads := make([]download, len(keys))
	var fetch errgroup.Group
	fetch.SetLimit(s.cfg.Concurrency)
	for i, key := range keys {
		fetch.Go(func() error {
			if err := ctx.Err(); err != nil {
				downloads[i] = download{err: err}
				return nil
			}
			path, err := s.fetcher.Fetch(ctx, byKey[key], h)
			downloads[i] = download{path: path, err: err}
			return nil
		})
	}
	_ = fetch.Wait()

	byKeyResult := make(map[string]download, len(keys))
	for i, key := range keys {
		byKeyResult[key] = downloads[i]
	}

	result := &Result{
		UploadID:  h.ID,
		Requested: len(deck.Cards),
		Deck:      ProxyDeck{Name: deck.Name, Cards: make([]ProxyCard, 0, len(deck.Cards))},
		Failures:  []Failure{},
	}
	for i, c := range deck.Cards {
		sel := selections[i]
		if sel.failure != nil {
			result.Failures = append(result.Failures, *sel.failure)
			continue
		}
		key := sel.printing.Key()
		d := byKeyResult[key]
		if d.err != nil {
			result.Failures = append(result.Failures, fetchFailure(ctx, c, d.err))
			continue
		}
		result.Deck.Cards = append(result.Deck.Cards, ProxyCard{Card: c, PrintingKey: key, ImagePath: d.path})
	}
	return result
}

func (s *Service) selectPrinting(ctx context.Context, c decklist.Card) selection {
	if err := ctx.Err(); err != nil {
		return selection{failure: &Failure{Card: c, Reason: ReasonCancelled, Message: err.Error()}}
	}

	printings, err := s.resolver.Resolve(ctx, c.Name)
	if err != nil {
		reason := ReasonUpstream
		if ctx.Err() != nil {
			reason = ReasonCancelled
		}
		return selection{failure: &Failure{Card: c, Reason: reason, Message: err.Error()}}
	}
	if len(printings) == 0 {
		return selection{failure: &Failure{Card: c, Reason: ReasonNotFound, Message: fmt.Sprintf("no card named %q", c.Name)}}
	}

	p, ok := card.Select(printings, s.cfg.Policy)
	if !ok {
		return selection{failure: &Failure{Card: c, Reason: ReasonNoImage, Message: fmt.Sprintf("no printing of %q has an image", c.Name)}}
	}
	return selection{printing: p}
}

func fetchFailure(ctx context.Context, c decklist.Card, err error) Failure {
	reason := ReasonDownload
	switch {
	case errors.Is(err, imagefetch.ErrNoImage):
		reason = ReasonNoImage
	case ctx.Err() != nil:
		reason = ReasonCancelled
	}
	return Failure{Card: c, Reason: reason, Message: err.Error()}
}

func countReasons(failures []Failure, reasons ...Reason) int {
	n := 0
	for _, f := range failures {
		for _, r := range reasons {
			if f.Reason == r {
				n++
				break
			}
		}
	}
	return n
}

func (s *Service) finish(ctx context.Context, run *Run, failures []Failure) {
	for i, f := range failures {
		if err := s.repo.AddFailure(ctx, run.ID, i, f); err != nil {
			s.logger.Warn("record failure failed", zap.String("run_id", run.ID), zap.Error(err))
		}
	}
	now := time.Now().UTC()
	run.FinishedAt = &now
	if err := s.repo.UpdateRun(ctx, run); err != nil {
		s.logger.Warn("update run failed", zap.String("run_id", run.ID), zap.Error(err))
	}
}

// GetRun returns the ledger record of a previous upload.
func (s *Service) GetRun(ctx context.Context, id string) (*Run, error) {
	if parsed, err := uuid.Parse(id); err != nil || parsed.String() != id {
		return nil, fmt.Errorf("%w: %s", storage.ErrInvalidID, id)
	}
	return s.repo.GetRun(ctx, id)
}

// DecklistPath returns the normalized decklist stored for an upload.
func (s *Service) DecklistPath(id string) (string, error) {
	h, err := s.allocator.Open(id)
	if err != nil {
		return "", err
	}
	path := h.File(decklist.FileName)
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	return path, nil
}

// ImagePath returns a stored image of an upload by printing key.
func (s *Service) ImagePath(uploadID, key string) (string, error) {
	h, err := s.allocator.Open(uploadID)
	if err != nil {
		return "", err
	}
	id, err := strconv.Atoi(key)
	if err != nil || id <= 0 || strconv.Itoa(id) != key {
		return "", fmt.Errorf("%w: %s", ErrImageNotFound, key)
	}
	path := imagefetch.Path(h, card.Printing{MultiverseID: id})
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("%w: %s", ErrImageNotFound, key)
	}
	return path, nil
}
