package services

import (
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/dryad-restoration/dryad-backend/internal/data/aggregates"
	"github.com/dryad-restoration/dryad-backend/internal/data/repos"
	types "github.com/dryad-restoration/dryad-backend/internal/domain"
	"github.com/dryad-restoration/dryad-backend/internal/invalidation"
	"github.com/dryad-restoration/dryad-backend/internal/pkg/dbctx"
	perr "github.com/dryad-restoration/dryad-backend/internal/pkg/errors"
	"github.com/dryad-restoration/dryad-backend/internal/pkg/logger"
)

type CreateCustomerInput struct {
	Name           string         `json:"name"`
	ContactPerson  string         `json:"contactPerson,omitempty"`
	Email          string         `json:"email"`
	Phone          string         `json:"phone"`
	PrimaryAddress types.Address  `json:"primaryAddress"`
	BillingAddress *types.Address `json:"billingAddress,omitempty"`
	Notes          string         `json:"notes,omitempty"`
}

type CustomerService interface {
	List(dbc dbctx.Context) ([]*types.Customer, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Customer, error)
	Search(dbc dbctx.Context, query string) ([]*types.Customer, error)
	Create(dbc dbctx.Context, in CreateCustomerInput) (*types.Customer, error)
}

type customerService struct {
	db           *gorm.DB
	log          *logger.Logger
	customerRepo repos.CustomerRepo
	markers      invalidation.Markers
}

func NewCustomerService(db *gorm.DB, log *logger.Logger, customerRepo repos.CustomerRepo, markers invalidation.Markers) CustomerService {
	return &customerService{
		db:           db,
		log:          log.With("service", "CustomerService"),
		customerRepo: customerRepo,
		markers:      markers,
	}
}

func (s *customerService) List(dbc dbctx.Context) ([]*types.Customer, error) {
	return s.customerRepo.List(dbc)
}

func (s *customerService) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Customer, error) {
	if err := requireID("customer id", id); err != nil {
		return nil, err
	}
	c, err := s.customerRepo.GetByID(dbc, id)
	if err != nil {
		s.log.Warn("Customer lookup failed", "customer_id", id, "error", err)
		return nil, err
	}
	return c, nil
}

// Search matches name, contact person and email. An empty query lists all.
func (s *customerService) Search(dbc dbctx.Context, query string) ([]*types.Customer, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return s.customerRepo.List(dbc)
	}
	return s.customerRepo.Search(dbc, query)
}

func (s *customerService) Create(dbc dbctx.Context, in CreateCustomerInput) (*types.Customer, error) {
	if err := requireText("name", in.Name); err != nil {
		return nil, err
	}
	if in.Email != "" {
		if _, err := mail.ParseAddress(in.Email); err != nil {
			return nil, fmt.Errorf("%w: invalid email", perr.ErrInvalidArgument)
		}
	}
	c := &types.Customer{
		ID:             uuid.New(),
		Name:           strings.TrimSpace(in.Name),
		ContactPerson:  in.ContactPerson,
		Email:          strings.TrimSpace(in.Email),
		Phone:          in.Phone,
		PrimaryAddress: datatypes.NewJSONType(in.PrimaryAddress),
		BillingAddress: datatypes.NewJSONType(in.BillingAddress),
		Notes:          in.Notes,
		CreatedAt:      time.Now().UTC(),
		IsActive:       true,
	}
	if _, err := s.customerRepo.Create(dbc, []*types.Customer{c}); err != nil {
		return nil, aggregates.MapError("customer.create", err)
	}
	s.log.Info("Customer created", "customer_id", c.ID)
	bump(dbc.Ctx, s.log, s.markers, invalidation.Customers)
	return c, nil
}
