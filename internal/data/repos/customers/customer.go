package customers

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dryad-restoration/dryad-backend/internal/data/repos/sqlutil"
	types "github.com/dryad-restoration/dryad-backend/internal/domain"
	"github.com/dryad-restoration/dryad-backend/internal/pkg/dbctx"
	perr "github.com/dryad-restoration/dryad-backend/internal/pkg/errors"
	"github.com/dryad-restoration/dryad-backend/internal/pkg/logger"
)

type CustomerRepo interface {
	Create(dbc dbctx.Context, customers []*types.Customer) ([]*types.Customer, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Customer, error)
	GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.Customer, error)
	Exists(dbc dbctx.Context, id uuid.UUID) (bool, error)
	List(dbc dbctx.Context) ([]*types.Customer, error)
	Search(dbc dbctx.Context, query string) ([]*types.Customer, error)
}

type customerRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCustomerRepo(db *gorm.DB, baseLog *logger.Logger) CustomerRepo {
	return &customerRepo{
		db:  db,
		log: baseLog.With("repo", "CustomerRepo"),
	}
}

func (r *customerRepo) Create(dbc dbctx.Context, customers []*types.Customer) ([]*types.Customer, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if len(customers) == 0 {
		return []*types.Customer{}, nil
	}
	if err := transaction.WithContext(dbc.Ctx).Create(&customers).Error; err != nil {
		return nil, err
	}
	return customers, nil
}

func (r *customerRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Customer, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out types.Customer
	err := transaction.WithContext(dbc.Ctx).Where("id = ?", id).First(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("customer %s: %w", id, perr.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *customerRepo) GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.Customer, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.Customer
	if len(ids) == 0 {
		return out, nil
	}
	if err := transaction.WithContext(dbc.Ctx).
		Where("id IN ?", ids).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *customerRepo) Exists(dbc dbctx.Context, id uuid.UUID) (bool, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var count int64
	if err := transaction.WithContext(dbc.Ctx).
		Model(&types.Customer{}).
		Where("id = ?", id).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *customerRepo) List(dbc dbctx.Context) ([]*types.Customer, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.Customer
	if err := transaction.WithContext(dbc.Ctx).
		Order("name ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// Search matches name, contact person and email case-insensitively.
func (r *customerRepo) Search(dbc dbctx.Context, query string) ([]*types.Customer, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return r.List(dbc)
	}
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	like := sqlutil.Contains(query)
	var out []*types.Customer
	if err := transaction.WithContext(dbc.Ctx).
		Where(
			"LOWER(name) LIKE ?"+sqlutil.LikeEscape+
				" OR LOWER(contact_person) LIKE ?"+sqlutil.LikeEscape+
				" OR LOWER(email) LIKE ?"+sqlutil.LikeEscape,
			like, like, like,
		).
		Order("name ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
