package quotes

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dryad-restoration/dryad-backend/internal/data/repos/sqlutil"
	types "github.com/dryad-restoration/dryad-backend/internal/domain"
	"github.com/dryad-restoration/dryad-backend/internal/pkg/dbctx"
	perr "github.com/dryad-restoration/dryad-backend/internal/pkg/errors"
	"github.com/dryad-restoration/dryad-backend/internal/pkg/logger"
)

type QuoteRepo interface {
	Create(dbc dbctx.Context, quotes []*types.Quote) ([]*types.Quote, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Quote, error)
	List(dbc dbctx.Context) ([]*types.Quote, error)
	ListByCustomer(dbc dbctx.Context, customerID uuid.UUID) ([]*types.Quote, error)
	Save(dbc dbctx.Context, quote *types.Quote) error
	Delete(dbc dbctx.Context, id uuid.UUID) error
	// MaxNumberWithPrefix returns the highest numeric suffix in use under prefix.
	MaxNumberWithPrefix(dbc dbctx.Context, prefix string) (int, error)
}

type quoteRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewQuoteRepo(db *gorm.DB, baseLog *logger.Logger) QuoteRepo {
	return &quoteRepo{
		db:  db,
		log: baseLog.With("repo", "QuoteRepo"),
	}
}

func (r *quoteRepo) Create(dbc dbctx.Context, quotes []*types.Quote) ([]*types.Quote, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if len(quotes) == 0 {
		return []*types.Quote{}, nil
	}
	if err := transaction.WithContext(dbc.Ctx).Create(&quotes).Error; err != nil {
		return nil, err
	}
	return quotes, nil
}

func (r *quoteRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Quote, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out types.Quote
	err := transaction.WithContext(dbc.Ctx).Where("id = ?", id).First(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("quote %s: %w", id, perr.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *quoteRepo) List(dbc dbctx.Context) ([]*types.Quote, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.Quote
	if err := transaction.WithContext(dbc.Ctx).
		Order("date_created DESC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *quoteRepo) ListByCustomer(dbc dbctx.Context, customerID uuid.UUID) ([]*types.Quote, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.Quote
	if err := transaction.WithContext(dbc.Ctx).
		Where("customer_id = ?", customerID).
		Order("date_created DESC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *quoteRepo) Save(dbc dbctx.Context, quote *types.Quote) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if quote == nil || quote.ID == uuid.Nil {
		return fmt.Errorf("%w: quote id required", perr.ErrInvalidArgument)
	}
	return transaction.WithContext(dbc.Ctx).Save(quote).Error
}

func (r *quoteRepo) Delete(dbc dbctx.Context, id uuid.UUID) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	res := transaction.WithContext(dbc.Ctx).Where("id = ?", id).Delete(&types.Quote{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("quote %s: %w", id, perr.ErrNotFound)
	}
	return nil
}

func (r *quoteRepo) MaxNumberWithPrefix(dbc dbctx.Context, prefix string) (int, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var numbers []string
	if err := transaction.WithContext(dbc.Ctx).
		Model(&types.Quote{}).
		Where("quote_number LIKE ?"+sqlutil.LikeEscape, sqlutil.EscapeLike(prefix)+"%").
		Pluck("quote_number", &numbers).Error; err != nil {
		return 0, err
	}
	return sqlutil.MaxSuffix(numbers, prefix), nil
}
