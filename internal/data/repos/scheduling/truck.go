package scheduling

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/dryad-restoration/dryad-backend/internal/domain"
	"github.com/dryad-restoration/dryad-backend/internal/pkg/dbctx"
	perr "github.com/dryad-restoration/dryad-backend/internal/pkg/errors"
	"github.com/dryad-restoration/dryad-backend/internal/pkg/logger"
)

type TruckRepo interface {
	Create(dbc dbctx.Context, trucks []*types.Truck) ([]*types.Truck, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Truck, error)
	List(dbc dbctx.Context) ([]*types.Truck, error)
}

type truckRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewTruckRepo(db *gorm.DB, baseLog *logger.Logger) TruckRepo {
	return &truckRepo{
		db:  db,
		log: baseLog.With("repo", "TruckRepo"),
	}
}

func (r *truckRepo) Create(dbc dbctx.Context, trucks []*types.Truck) ([]*types.Truck, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if len(trucks) == 0 {
		return []*types.Truck{}, nil
	}
	if err := transaction.WithContext(dbc.Ctx).Create(&trucks).Error; err != nil {
		return nil, err
	}
	return trucks, nil
}

func (r *truckRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Truck, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out types.Truck
	err := transaction.WithContext(dbc.Ctx).Where("id = ?", id).First(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("truck %s: %w", id, perr.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *truckRepo) List(dbc dbctx.Context) ([]*types.Truck, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.Truck
	if err := transaction.WithContext(dbc.Ctx).
		Order("name ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
