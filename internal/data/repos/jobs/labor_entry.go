package jobs

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/dryad-restoration/dryad-backend/internal/domain"
	"github.com/dryad-restoration/dryad-backend/internal/pkg/dbctx"
	"github.com/dryad-restoration/dryad-backend/internal/pkg/logger"
)

type LaborEntryRepo interface {
	Create(dbc dbctx.Context, entries []*types.LaborEntry) ([]*types.LaborEntry, error)
	ListByJob(dbc dbctx.Context, jobID uuid.UUID) ([]*types.LaborEntry, error)
	SumHoursByJob(dbc dbctx.Context, jobID uuid.UUID) (float64, error)
}

type laborEntryRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewLaborEntryRepo(db *gorm.DB, baseLog *logger.Logger) LaborEntryRepo {
	return &laborEntryRepo{
		db:  db,
		log: baseLog.With("repo", "LaborEntryRepo"),
	}
}

func (r *laborEntryRepo) Create(dbc dbctx.Context, entries []*types.LaborEntry) ([]*types.LaborEntry, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if len(entries) == 0 {
		return []*types.LaborEntry{}, nil
	}
	if err := transaction.WithContext(dbc.Ctx).Create(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *laborEntryRepo) ListByJob(dbc dbctx.Context, jobID uuid.UUID) ([]*types.LaborEntry, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.LaborEntry
	if err := transaction.WithContext(dbc.Ctx).
		Where("job_id = ?", jobID).
		Order("date_submitted ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *laborEntryRepo) SumHoursByJob(dbc dbctx.Context, jobID uuid.UUID) (float64, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var total float64
	if err := transaction.WithContext(dbc.Ctx).
		Model(&types.LaborEntry{}).
		Where("job_id = ?", jobID).
		Select("COALESCE(SUM(hours), 0)").
		Scan(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}
