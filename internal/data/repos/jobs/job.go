package jobs

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

// JobFilter narrows List. Zero values match everything.
type JobFilter struct {
	Statuses     []types.JobStatus
	CustomerID   *uuid.UUID
	TechnicianID *uuid.UUID
	// Search matches title, description and job number case-insensitively.
	Search string
}

type JobRepo interface {
	Create(dbc dbctx.Context, jobs []*types.Job) ([]*types.Job, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Job, error)
	GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.Job, error)
	List(dbc dbctx.Context, filter JobFilter) ([]*types.Job, error)
	Save(dbc dbctx.Context, job *types.Job) error
	UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error
	// MaxNumberWithPrefix returns the highest numeric suffix in use under prefix.
	MaxNumberWithPrefix(dbc dbctx.Context, prefix string) (int, error)
}

type jobRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewJobRepo(db *gorm.DB, baseLog *logger.Logger) JobRepo {
	return &jobRepo{
		db:  db,
		log: baseLog.With("repo", "JobRepo"),
	}
}

func (r *jobRepo) Create(dbc dbctx.Context, jobs []*types.Job) ([]*types.Job, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if len(jobs) == 0 {
		return []*types.Job{}, nil
	}
	if err := transaction.WithContext(dbc.Ctx).Create(&jobs).Error; err != nil {
		return nil, err
	}
	return jobs, nil
}

func (r *jobRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Job, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out types.Job
	err := transaction.WithContext(dbc.Ctx).Where("id = ?", id).First(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("job %s: %w", id, perr.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *jobRepo) GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.Job, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.Job
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

// List returns matching jobs newest first. Assigned technicians live in a
// JSON column, so the technician filter is applied after the query.
func (r *jobRepo) List(dbc dbctx.Context, filter JobFilter) ([]*types.Job, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	q := transaction.WithContext(dbc.Ctx).Model(&types.Job{})
	if len(filter.Statuses) > 0 {
		q = q.Where("status IN ?", filter.Statuses)
	}
	if filter.CustomerID != nil {
		q = q.Where("customer_id = ?", *filter.CustomerID)
	}
	if s := strings.TrimSpace(filter.Search); s != "" {
		like := sqlutil.Contains(s)
		q = q.Where(
			"LOWER(title) LIKE ?"+sqlutil.LikeEscape+
				" OR LOWER(description) LIKE ?"+sqlutil.LikeEscape+
				" OR LOWER(job_number) LIKE ?"+sqlutil.LikeEscape,
			like, like, like,
		)
	}
	var out []*types.Job
	if err := q.Order("created_at DESC").Find(&out).Error; err != nil {
		return nil, err
	}
	if filter.TechnicianID == nil {
		return out, nil
	}
	kept := out[:0]
	for _, j := range out {
		if j.IsAssigned(*filter.TechnicianID) {
			kept = append(kept, j)
		}
	}
	return kept, nil
}

func (r *jobRepo) Save(dbc dbctx.Context, job *types.Job) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if job == nil || job.ID == uuid.Nil {
		return fmt.Errorf("%w: job id required", perr.ErrInvalidArgument)
	}
	return transaction.WithContext(dbc.Ctx).Save(job).Error
}

func (r *jobRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if len(updates) == 0 {
		return nil
	}
	res := transaction.WithContext(dbc.Ctx).
		Model(&types.Job{}).
		Where("id = ?", id).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("job %s: %w", id, perr.ErrNotFound)
	}
	return nil
}

func (r *jobRepo) MaxNumberWithPrefix(dbc dbctx.Context, prefix string) (int, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var numbers []string
	if err := transaction.WithContext(dbc.Ctx).
		Model(&types.Job{}).
		Where("job_number LIKE ?"+sqlutil.LikeEscape, sqlutil.EscapeLike(prefix)+"%").
		Pluck("job_number", &numbers).Error; err != nil {
		return 0, err
	}
	return sqlutil.MaxSuffix(numbers, prefix), nil
}
