package services

import (
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dryad-restoration/dryad-backend/internal/data/repos"
	types "github.com/dryad-restoration/dryad-backend/internal/domain"
	"github.com/dryad-restoration/dryad-backend/internal/domain/users"
	"github.com/dryad-restoration/dryad-backend/internal/pkg/dbctx"
	perr "github.com/dryad-restoration/dryad-backend/internal/pkg/errors"
	"github.com/dryad-restoration/dryad-backend/internal/pkg/logger"
)

type UserService interface {
	List(dbc dbctx.Context) ([]*types.User, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.User, error)
	GetMe(dbc dbctx.Context) (*types.User, error)
	ListByRole(dbc dbctx.Context, role types.Role) ([]*types.User, error)
	ListActive(dbc dbctx.Context) ([]*types.User, error)
	// ListTechnicians returns active users who can be assigned field work.
	ListTechnicians(dbc dbctx.Context) ([]*types.User, error)
}

type userService struct {
	db       *gorm.DB
	log      *logger.Logger
	userRepo repos.UserRepo
}

func NewUserService(db *gorm.DB, log *logger.Logger, userRepo repos.UserRepo) UserService {
	return &userService{
		db:       db,
		log:      log.With("service", "UserService"),
		userRepo: userRepo,
	}
}

func (s *userService) List(dbc dbctx.Context) ([]*types.User, error) {
	return s.userRepo.List(dbc)
}

func (s *userService) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.User, error) {
	if err := requireID("user id", id); err != nil {
		return nil, err
	}
	return s.userRepo.GetByID(dbc, id)
}

func (s *userService) GetMe(dbc dbctx.Context) (*types.User, error) {
	id, _, err := actor(dbc.Ctx)
	if err != nil {
		s.log.Warn("Request data not set in context")
		return nil, err
	}
	return s.userRepo.GetByID(dbc, id)
}

func (s *userService) ListByRole(dbc dbctx.Context, role types.Role) ([]*types.User, error) {
	role = users.NormalizeRole(string(role))
	if !role.Valid() {
		return nil, fmt.Errorf("%w: unknown role %q", perr.ErrInvalidArgument, role)
	}
	return s.userRepo.ListByRoles(dbc, []types.Role{role})
}

func (s *userService) ListActive(dbc dbctx.Context) ([]*types.User, error) {
	return s.userRepo.ListActive(dbc)
}

func (s *userService) ListTechnicians(dbc dbctx.Context) ([]*types.User, error) {
	all, err := s.userRepo.ListByRoles(dbc, []types.Role{types.RoleTech})
	if err != nil {
		return nil, err
	}
	out := make([]*types.User, 0, len(all))
	for _, u := range all {
		if u.IsActive {
			out = append(out, u)
		}
	}
	return out, nil
}
