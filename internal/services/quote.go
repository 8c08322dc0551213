package services

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/dryad-restoration/dryad-backend/internal/data/aggregates"
	"github.com/dryad-restoration/dryad-backend/internal/data/repos"
	types "github.com/dryad-restoration/dryad-backend/internal/domain"
	"github.com/dryad-restoration/dryad-backend/internal/domain/quotes"
	"github.com/dryad-restoration/dryad-backend/internal/invalidation"
	"github.com/dryad-restoration/dryad-backend/internal/pkg/dbctx"
	perr "github.com/dryad-restoration/dryad-backend/internal/pkg/errors"
	"github.com/dryad-restoration/dryad-backend/internal/pkg/logger"
)

type CreateQuoteInput struct {
	QuoteType   types.QuoteType       `json:"quoteType"`
	CustomerID  uuid.UUID             `json:"customerId"`
	SiteAddress types.Address         `json:"siteAddress"`
	ScopeOfWork types.ScopeOfWork     `json:"scopeOfWork"`
	LineItems   []types.QuoteLineItem `json:"lineItems"`
	TaxRate     *float64              `json:"taxRate,omitempty"`
	DateExpires *time.Time            `json:"dateExpires,omitempty"`
	Notes       string                `json:"notes,omitempty"`
}

type QuotePatch struct {
	Status      *types.QuoteStatus     `json:"status,omitempty"`
	QuoteType   *types.QuoteType       `json:"quoteType,omitempty"`
	SiteAddress *types.Address         `json:"siteAddress,omitempty"`
	ScopeOfWork *types.ScopeOfWork     `json:"scopeOfWork,omitempty"`
	LineItems   *[]types.QuoteLineItem `json:"lineItems,omitempty"`
	TaxRate     *float64               `json:"taxRate,omitempty"`
	DateSent    *time.Time             `json:"dateSent,omitempty"`
	DateExpires *time.Time             `json:"dateExpires,omitempty"`
	Notes       *string                `json:"notes,omitempty"`
}

type ConvertedQuote struct {
	Quote *types.Quote `json:"quote"`
	Job   *types.Job   `json:"job"`
}

type QuoteService interface {
	List(dbc dbctx.Context) ([]*types.Quote, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Quote, error)
	ListByCustomer(dbc dbctx.Context, customerID uuid.UUID) ([]*types.Quote, error)
	Create(dbc dbctx.Context, in CreateQuoteInput) (*types.Quote, error)
	Update(dbc dbctx.Context, id uuid.UUID, patch QuotePatch) (*types.Quote, error)
	Delete(dbc dbctx.Context, id uuid.UUID) error
	ConvertToJob(dbc dbctx.Context, id uuid.UUID) (*ConvertedQuote, error)
}

type quoteService struct {
	db           *gorm.DB
	log          *logger.Logger
	quoteRepo    repos.QuoteRepo
	customerRepo repos.CustomerRepo
	jobService   JobService
	markers      invalidation.Markers
	now          func() time.Time
}

func NewQuoteService(
	db *gorm.DB,
	log *logger.Logger,
	quoteRepo repos.QuoteRepo,
	customerRepo repos.CustomerRepo,
	jobService JobService,
	markers invalidation.Markers,
) QuoteService {
	return &quoteService{
		db:           db,
		log:          log.With("service", "QuoteService"),
		quoteRepo:    quoteRepo,
		customerRepo: customerRepo,
		jobService:   jobService,
		markers:      markers,
		now:          utcNow,
	}
}

func (s *quoteService) List(dbc dbctx.Context) ([]*types.Quote, error) {
	return s.quoteRepo.List(dbc)
}

func (s *quoteService) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Quote, error) {
	if err := requireID("quote id", id); err != nil {
		return nil, err
	}
	return s.quoteRepo.GetByID(dbc, id)
}

func (s *quoteService) ListByCustomer(dbc dbctx.Context, customerID uuid.UUID) ([]*types.Quote, error) {
	if err := requireID("customer id", customerID); err != nil {
		return nil, err
	}
	return s.quoteRepo.ListByCustomer(dbc, customerID)
}

func (s *quoteService) Create(dbc dbctx.Context, in CreateQuoteInput) (*types.Quote, error) {
	preparedBy, err := requireStaff(dbc.Ctx)
	if err != nil {
		return nil, err
	}
	if err := requireID("customer id", in.CustomerID); err != nil {
		return nil, err
	}
	if in.QuoteType == "" {
		in.QuoteType = quotes.TypeFixedPrice
	}
	if in.QuoteType != quotes.TypeFixedPrice && in.QuoteType != quotes.TypeTimeAndExp {
		return nil, fmt.Errorf("%w: unknown quote type %q", perr.ErrInvalidArgument, in.QuoteType)
	}
	items, err := normalizeLineItems(in.LineItems)
	if err != nil {
		return nil, err
	}
	if err := validTaxRate(in.TaxRate); err != nil {
		return nil, err
	}

	var created *types.Quote
	err = inTx(s.db, dbc, func(inner dbctx.Context) error {
		ok, err := s.customerRepo.Exists(inner, in.CustomerID)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%w: customer %s does not exist", perr.ErrInvalidReference, in.CustomerID)
		}
		now := s.now()
		number, err := s.nextQuoteNumber(inner, now)
		if err != nil {
			return err
		}
		q := &types.Quote{
			ID:               uuid.New(),
			QuoteNumber:      number,
			Status:           quotes.StatusDraft,
			QuoteType:        in.QuoteType,
			CustomerID:       in.CustomerID,
			SiteAddress:      datatypes.NewJSONType(in.SiteAddress),
			ScopeOfWork:      datatypes.NewJSONType(in.ScopeOfWork),
			LineItems:        datatypes.JSONSlice[types.QuoteLineItem](items),
			TaxRate:          in.TaxRate,
			DateCreated:      now,
			DateExpires:      in.DateExpires,
			Notes:            in.Notes,
			PreparedByUserID: preparedBy,
		}
		q.Recalculate()
		if _, err := s.quoteRepo.Create(inner, []*types.Quote{q}); err != nil {
			return err
		}
		created = q
		return nil
	})
	if err != nil {
		return nil, aggregates.MapError("quote.create", err)
	}
	s.log.Info("Quote created", "quote_id", created.ID, "quote_number", created.QuoteNumber, "total", created.Total)
	bump(dbc.Ctx, s.log, s.markers, invalidation.Quotes)
	return created, nil
}

// nextQuoteNumber numbers quotes per month: Q-2026-10-0001.
func (s *quoteService) nextQuoteNumber(dbc dbctx.Context, now time.Time) (string, error) {
	prefix := fmt.Sprintf("Q-%d-%02d-", now.Year(), int(now.Month()))
	n, err := s.quoteRepo.MaxNumberWithPrefix(dbc, prefix)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s%04d", prefix, n+1), nil
}

func normalizeLineItems(in []types.QuoteLineItem) ([]types.QuoteLineItem, error) {
	out := make([]types.QuoteLineItem, 0, len(in))
	for _, li := range in {
		if err := requireText("line item description", li.Description); err != nil {
			return nil, err
		}
		if li.Quantity < 0 || li.UnitPrice < 0 {
			return nil, fmt.Errorf("%w: line item %q has a negative quantity or price", perr.ErrInvalidArgument, li.Description)
		}
		if li.ID == uuid.Nil {
			li.ID = uuid.New()
		}
		out = append(out, li)
	}
	return out, nil
}

func validTaxRate(r *float64) error {
	if r != nil && (*r < 0 || *r > 1) {
		return fmt.Errorf("%w: tax rate must be a fraction between 0 and 1", perr.ErrInvalidArgument)
	}
	return nil
}

func (s *quoteService) Update(dbc dbctx.Context, id uuid.UUID, p QuotePatch) (*types.Quote, error) {
	if _, err := requireStaff(dbc.Ctx); err != nil {
		return nil, err
	}
	if err := requireID("quote id", id); err != nil {
		return nil, err
	}
	var updated *types.Quote
	err := inTx(s.db, dbc, func(inner dbctx.Context) error {
		q, err := s.quoteRepo.GetByID(inner, id)
		if err != nil {
			return err
		}
		if q.Status == quotes.StatusConvertedToJob {
			return fmt.Errorf("%w: quote %s was converted and is read-only", perr.ErrConflict, q.QuoteNumber)
		}
		if p.Status != nil {
			switch *p.Status {
			case quotes.StatusDraft, quotes.StatusSent, quotes.StatusAccepted, quotes.StatusDeclined:
			case quotes.StatusConvertedToJob:
				return fmt.Errorf("%w: convert the quote to set %s", perr.ErrInvalidArgument, *p.Status)
			default:
				return fmt.Errorf("%w: unknown quote status %q", perr.ErrInvalidArgument, *p.Status)
			}
			q.Status = *p.Status
			if q.Status == quotes.StatusSent && q.DateSent == nil && p.DateSent == nil {
				now := s.now()
				q.DateSent = &now
			}
		}
		if p.QuoteType != nil {
			if *p.QuoteType != quotes.TypeFixedPrice && *p.QuoteType != quotes.TypeTimeAndExp {
				return fmt.Errorf("%w: unknown quote type %q", perr.ErrInvalidArgument, *p.QuoteType)
			}
			q.QuoteType = *p.QuoteType
		}
		if p.SiteAddress != nil {
			q.SiteAddress = datatypes.NewJSONType(*p.SiteAddress)
		}
		if p.ScopeOfWork != nil {
			q.ScopeOfWork = datatypes.NewJSONType(*p.ScopeOfWork)
		}
		if p.LineItems != nil {
			items, err := normalizeLineItems(*p.LineItems)
			if err != nil {
				return err
			}
			q.LineItems = datatypes.JSONSlice[types.QuoteLineItem](items)
		}
		if p.TaxRate != nil {
			if err := validTaxRate(p.TaxRate); err != nil {
				return err
			}
			q.TaxRate = p.TaxRate
		}
		if p.DateSent != nil {
			q.DateSent = p.DateSent
		}
		if p.DateExpires != nil {
			q.DateExpires = p.DateExpires
		}
		if p.Notes != nil {
			q.Notes = *p.Notes
		}
		q.Recalculate()
		if err := s.quoteRepo.Save(inner, q); err != nil {
			return err
		}
		updated = q
		return nil
	})
	if err != nil {
		return nil, aggregates.MapError("quote.update", err)
	}
	bump(dbc.Ctx, s.log, s.markers, invalidation.Quotes)
	return updated, nil
}

func (s *quoteService) Delete(dbc dbctx.Context, id uuid.UUID) error {
	if _, err := requireStaff(dbc.Ctx); err != nil {
		return err
	}
	if err := requireID("quote id", id); err != nil {
		return err
	}
	err := inTx(s.db, dbc, func(inner dbctx.Context) error {
		q, err := s.quoteRepo.GetByID(inner, id)
		if err != nil {
			return err
		}
		if q.Status == quotes.StatusConvertedToJob {
			return fmt.Errorf("%w: quote %s backs job %v", perr.ErrConflict, q.QuoteNumber, q.AssociatedJobID)
		}
		return s.quoteRepo.Delete(inner, id)
	})
	if err != nil {
		return aggregates.MapError("quote.delete", err)
	}
	s.log.Info("Quote deleted", "quote_id", id)
	bump(dbc.Ctx, s.log, s.markers, invalidation.Quotes)
	return nil
}

func (s *quoteService) ConvertToJob(dbc dbctx.Context, id uuid.UUID) (*ConvertedQuote, error) {
	job, err := s.jobService.ConvertFromQuote(dbc, id)
	if err != nil {
		return nil, err
	}
	q, err := s.quoteRepo.GetByID(dbc, id)
	if err != nil {
		return nil, err
	}
	return &ConvertedQuote{Quote: q, Job: job}, nil
}
