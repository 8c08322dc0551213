package domain

import (
	"github.com/dryad-restoration/dryad-backend/internal/domain/customers"
	"github.com/dryad-restoration/dryad-backend/internal/domain/equipment"
	"github.com/dryad-restoration/dryad-backend/internal/domain/jobs"
	"github.com/dryad-restoration/dryad-backend/internal/domain/quotes"
	"github.com/dryad-restoration/dryad-backend/internal/domain/scheduling"
	"github.com/dryad-restoration/dryad-backend/internal/domain/users"
)

const (
	JobStatusNew               = jobs.StatusNew
	JobStatusScheduled         = jobs.StatusScheduled
	JobStatusInProgress        = jobs.StatusInProgress
	JobStatusOnHold            = jobs.StatusOnHold
	JobStatusPendingCompletion = jobs.StatusPendingCompletion
	JobStatusCompleted         = jobs.StatusCompleted
	JobStatusInvoiceApproval   = jobs.StatusInvoiceApproval
	JobStatusInvoiced          = jobs.StatusInvoiced
	JobStatusPaid              = jobs.StatusPaid
	JobStatusCancelled         = jobs.StatusCancelled

	RoleAdmin    = users.RoleAdmin
	RoleOffice   = users.RoleOffice
	RoleTech     = users.RoleTech
	RoleCustomer = users.RoleCustomer

	JobTypeOther = jobs.JobTypeOther

	LogEquipmentPlacement = jobs.LogEquipmentPlacement
	LogEquipmentRemoval   = jobs.LogEquipmentRemoval
	LogNote               = jobs.LogNote
	LogTaskCompletion     = jobs.LogTaskCompletion

	EquipmentAvailable = equipment.StatusAvailable
	EquipmentDeployed  = equipment.StatusDeployed
	EquipmentOther     = equipment.Other
)

type (
	Address  = customers.Address
	Customer = customers.Customer

	Role = users.Role
	User = users.User

	Job                  = jobs.Job
	JobStatus            = jobs.JobStatus
	JobType              = jobs.JobType
	InsuranceInfo        = jobs.InsuranceInfo
	CompletionTasks      = jobs.CompletionTasks
	CompletionTasksPatch = jobs.CompletionTasksPatch
	InvoicePayment       = jobs.InvoicePayment
	LogEntry             = jobs.LogEntry
	LogEntryType         = jobs.LogEntryType
	EquipmentLogData     = jobs.EquipmentLogData
	Geolocation          = jobs.Geolocation
	LaborEntry           = jobs.LaborEntry

	Equipment       = equipment.Equipment
	EquipmentType   = equipment.Type
	EquipmentStatus = equipment.Status

	Quote         = quotes.Quote
	QuoteStatus   = quotes.Status
	QuoteType     = quotes.Type
	QuoteLineItem = quotes.LineItem
	ScopeOfWork   = quotes.ScopeOfWork

	Truck         = scheduling.Truck
	TruckStatus   = scheduling.TruckStatus
	ScheduleEntry = scheduling.ScheduleEntry
)

// AllModels lists every persisted model in migration order.
func AllModels() []any {
	return []any{
		&Customer{},
		&User{},
		&Job{},
		&LogEntry{},
		&LaborEntry{},
		&Equipment{},
		&Quote{},
		&Truck{},
		&ScheduleEntry{},
	}
}
