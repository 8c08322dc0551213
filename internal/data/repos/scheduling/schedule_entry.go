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

type ScheduleEntryRepo interface {
	Create(dbc dbctx.Context, entries []*types.ScheduleEntry) ([]*types.ScheduleEntry, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.ScheduleEntry, error)
	List(dbc dbctx.Context) ([]*types.ScheduleEntry, error)
	ListByDate(dbc dbctx.Context, date string) ([]*types.ScheduleEntry, error)
	ListByUserAndDate(dbc dbctx.Context, userID uuid.UUID, date string) ([]*types.ScheduleEntry, error)
	Save(dbc dbctx.Context, entry *types.ScheduleEntry) error
	Delete(dbc dbctx.Context, id uuid.UUID) error
}

type scheduleEntryRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewScheduleEntryRepo(db *gorm.DB, baseLog *logger.Logger) ScheduleEntryRepo {
	return &scheduleEntryRepo{
		db:  db,
		log: baseLog.With("repo", "ScheduleEntryRepo"),
	}
}

func (r *scheduleEntryRepo) Create(dbc dbctx.Context, entries []*types.ScheduleEntry) ([]*types.ScheduleEntry, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if len(entries) == 0 {
		return []*types.ScheduleEntry{}, nil
	}
	if err := transaction.WithContext(dbc.Ctx).Create(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *scheduleEntryRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.ScheduleEntry, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out types.ScheduleEntry
	err := transaction.WithContext(dbc.Ctx).Where("id = ?", id).First(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("schedule entry %s: %w", id, perr.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *scheduleEntryRepo) List(dbc dbctx.Context) ([]*types.ScheduleEntry, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.ScheduleEntry
	if err := transaction.WithContext(dbc.Ctx).
		Order("date ASC, created_at ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *scheduleEntryRepo) ListByDate(dbc dbctx.Context, date string) ([]*types.ScheduleEntry, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.ScheduleEntry
	if err := transaction.WithContext(dbc.Ctx).
		Where("date = ?", date).
		Order("created_at ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *scheduleEntryRepo) ListByUserAndDate(dbc dbctx.Context, userID uuid.UUID, date string) ([]*types.ScheduleEntry, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.ScheduleEntry
	if err := transaction.WithContext(dbc.Ctx).
		Where("user_id = ? AND date = ?", userID, date).
		Order("created_at ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *scheduleEntryRepo) Save(dbc dbctx.Context, entry *types.ScheduleEntry) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if entry == nil || entry.ID == uuid.Nil {
		return fmt.Errorf("%w: schedule entry id required", perr.ErrInvalidArgument)
	}
	return transaction.WithContext(dbc.Ctx).Save(entry).Error
}

func (r *scheduleEntryRepo) Delete(dbc dbctx.Context, id uuid.UUID) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	res := transaction.WithContext(dbc.Ctx).Where("id = ?", id).Delete(&types.ScheduleEntry{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("schedule entry %s: %w", id, perr.ErrNotFound)
	}
	return nil
}
