package equipment

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

type EquipmentRepo interface {
	Create(dbc dbctx.Context, items []*types.Equipment) ([]*types.Equipment, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Equipment, error)
	GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.Equipment, error)
	List(dbc dbctx.Context) ([]*types.Equipment, error)
	ListByStatus(dbc dbctx.Context, status types.EquipmentStatus) ([]*types.Equipment, error)
	ListByJob(dbc dbctx.Context, jobID uuid.UUID) ([]*types.Equipment, error)
	// UpdateFieldsIfStatus applies updates only while the row still has the
	// expected status and reports whether it did.
	UpdateFieldsIfStatus(dbc dbctx.Context, id uuid.UUID, expected types.EquipmentStatus, updates map[string]interface{}) (bool, error)
}

type equipmentRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewEquipmentRepo(db *gorm.DB, baseLog *logger.Logger) EquipmentRepo {
	return &equipmentRepo{
		db:  db,
		log: baseLog.With("repo", "EquipmentRepo"),
	}
}

func (r *equipmentRepo) Create(dbc dbctx.Context, items []*types.Equipment) ([]*types.Equipment, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if len(items) == 0 {
		return []*types.Equipment{}, nil
	}
	if err := transaction.WithContext(dbc.Ctx).Create(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *equipmentRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Equipment, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out types.Equipment
	err := transaction.WithContext(dbc.Ctx).Where("id = ?", id).First(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("equipment %s: %w", id, perr.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *equipmentRepo) GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.Equipment, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.Equipment
	if len(ids) == 0 {
		return out, nil
	}
	if err := transaction.WithContext(dbc.Ctx).
		Where("id IN ?", ids).
		Order("type ASC, serial_number ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *equipmentRepo) List(dbc dbctx.Context) ([]*types.Equipment, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.Equipment
	if err := transaction.WithContext(dbc.Ctx).
		Order("type ASC, serial_number ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *equipmentRepo) ListByStatus(dbc dbctx.Context, status types.EquipmentStatus) ([]*types.Equipment, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.Equipment
	if err := transaction.WithContext(dbc.Ctx).
		Where("status = ?", status).
		Order("type ASC, serial_number ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *equipmentRepo) ListByJob(dbc dbctx.Context, jobID uuid.UUID) ([]*types.Equipment, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.Equipment
	if err := transaction.WithContext(dbc.Ctx).
		Where("current_job_id = ?", jobID).
		Order("type ASC, serial_number ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *equipmentRepo) UpdateFieldsIfStatus(dbc dbctx.Context, id uuid.UUID, expected types.EquipmentStatus, updates map[string]interface{}) (bool, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if len(updates) == 0 {
		return false, nil
	}
	res := transaction.WithContext(dbc.Ctx).
		Model(&types.Equipment{}).
		Where("id = ? AND status = ?", id, expected).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
