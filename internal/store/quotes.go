package store

import (
	"context"
	"slices"

	"github.com/google/uuid"

	types "github.com/dryad-restoration/dryad-backend/internal/domain"
	"github.com/dryad-restoration/dryad-backend/internal/invalidation"
	"github.com/dryad-restoration/dryad-backend/internal/pkg/dbctx"
	"github.com/dryad-restoration/dryad-backend/internal/pkg/logger"
)

type QuoteSource interface {
	List(dbc dbctx.Context) ([]*types.Quote, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Quote, error)
}

type QuoteStore struct {
	loadState
	log      *logger.Logger
	source   QuoteSource
	quotes   []*types.Quote
	selected *types.Quote
}

func NewQuoteStore(log *logger.Logger, source QuoteSource) *QuoteStore {
	return &QuoteStore{
		log:    log.With("store", "QuoteStore"),
		source: source,
		quotes: []*types.Quote{},
	}
}

func (s *QuoteStore) Name() string      { return "quotes" }
func (s *QuoteStore) Markers() []string { return []string{invalidation.Quotes} }

func (s *QuoteStore) Load(ctx context.Context) error {
	s.mu.Lock()
	s.begin()
	s.mu.Unlock()

	quotes, err := s.source.List(readCtx(ctx))

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.log.Error("Loading quotes failed", "error", err)
		s.finish(err, "an error occurred loading quotes")
		return err
	}
	s.quotes = quotes
	if s.selected != nil {
		if i := slices.IndexFunc(quotes, func(q *types.Quote) bool { return q.ID == s.selected.ID }); i >= 0 {
			s.selected = quotes[i]
		} else {
			s.selected = nil
		}
	}
	s.finish(nil, "")
	return nil
}

// Select loads quote id and makes it the selected quote.
func (s *QuoteStore) Select(ctx context.Context, id uuid.UUID) (*types.Quote, error) {
	s.mu.Lock()
	s.begin()
	s.mu.Unlock()

	q, err := s.source.GetByID(readCtx(ctx), id)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.log.Warn("Loading quote failed", "quote_id", id, "error", err)
		s.finish(err, "an error occurred loading quote "+id.String())
		return nil, err
	}
	s.selected = q
	s.finish(nil, "")
	return q, nil
}

func (s *QuoteStore) Selected() *types.Quote {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selected
}

func (s *QuoteStore) ClearSelection() {
	s.mu.Lock()
	s.selected = nil
	s.mu.Unlock()
}

func (s *QuoteStore) Quotes() []*types.Quote {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.quotes)
}
