package jobs

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/dryad-restoration/dryad-backend/internal/domain"
	"github.com/dryad-restoration/dryad-backend/internal/pkg/dbctx"
	"github.com/dryad-restoration/dryad-backend/internal/pkg/logger"
)

type LogEntryRepo interface {
	Create(dbc dbctx.Context, entries []*types.LogEntry) ([]*types.LogEntry, error)
	ListByJob(dbc dbctx.Context, jobID uuid.UUID) ([]*types.LogEntry, error)
	ListByJobAndTypes(dbc dbctx.Context, jobID uuid.UUID, entryTypes []types.LogEntryType) ([]*types.LogEntry, error)
}

type logEntryRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewLogEntryRepo(db *gorm.DB, baseLog *logger.Logger) LogEntryRepo {
	return &logEntryRepo{
		db:  db,
		log: baseLog.With("repo", "LogEntryRepo"),
	}
}

func (r *logEntryRepo) Create(dbc dbctx.Context, entries []*types.LogEntry) ([]*types.LogEntry, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if len(entries) == 0 {
		return []*types.LogEntry{}, nil
	}
	if err := transaction.WithContext(dbc.Ctx).Create(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// ListByJob returns the job's entries newest first.
func (r *logEntryRepo) ListByJob(dbc dbctx.Context, jobID uuid.UUID) ([]*types.LogEntry, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.LogEntry
	if err := transaction.WithContext(dbc.Ctx).
		Where("job_id = ?", jobID).
		Order("timestamp DESC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// ListByJobAndTypes returns matching entries oldest first.
func (r *logEntryRepo) ListByJobAndTypes(dbc dbctx.Context, jobID uuid.UUID, entryTypes []types.LogEntryType) ([]*types.LogEntry, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.LogEntry
	if len(entryTypes) == 0 {
		return out, nil
	}
	if err := transaction.WithContext(dbc.Ctx).
		Where("job_id = ? AND type IN ?", jobID, entryTypes).
		Order("timestamp ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
