package repos

import (
	"gorm.io/gorm"

	"github.com/dryad-restoration/dryad-backend/internal/data/repos/customers"
	"github.com/dryad-restoration/dryad-backend/internal/data/repos/equipment"
	"github.com/dryad-restoration/dryad-backend/internal/data/repos/jobs"
	"github.com/dryad-restoration/dryad-backend/internal/data/repos/quotes"
	"github.com/dryad-restoration/dryad-backend/internal/data/repos/scheduling"
	"github.com/dryad-restoration/dryad-backend/internal/data/repos/users"
	"github.com/dryad-restoration/dryad-backend/internal/pkg/logger"
)

type CustomerRepo = customers.CustomerRepo
type UserRepo = users.UserRepo

type JobRepo = jobs.JobRepo
type JobFilter = jobs.JobFilter
type LogEntryRepo = jobs.LogEntryRepo
type LaborEntryRepo = jobs.LaborEntryRepo

type EquipmentRepo = equipment.EquipmentRepo
type QuoteRepo = quotes.QuoteRepo

type TruckRepo = scheduling.TruckRepo
type ScheduleEntryRepo = scheduling.ScheduleEntryRepo

func NewCustomerRepo(db *gorm.DB, log *logger.Logger) CustomerRepo {
	return customers.NewCustomerRepo(db, log)
}
func NewUserRepo(db *gorm.DB, log *logger.Logger) UserRepo { return users.NewUserRepo(db, log) }

func NewJobRepo(db *gorm.DB, log *logger.Logger) JobRepo { return jobs.NewJobRepo(db, log) }
func NewLogEntryRepo(db *gorm.DB, log *logger.Logger) LogEntryRepo {
	return jobs.NewLogEntryRepo(db, log)
}
func NewLaborEntryRepo(db *gorm.DB, log *logger.Logger) LaborEntryRepo {
	return jobs.NewLaborEntryRepo(db, log)
}

func NewEquipmentRepo(db *gorm.DB, log *logger.Logger) EquipmentRepo {
	return equipment.NewEquipmentRepo(db, log)
}
func NewQuoteRepo(db *gorm.DB, log *logger.Logger) QuoteRepo { return quotes.NewQuoteRepo(db, log) }

func NewTruckRepo(db *gorm.DB, log *logger.Logger) TruckRepo { return scheduling.NewTruckRepo(db, log) }
func NewScheduleEntryRepo(db *gorm.DB, log *logger.Logger) ScheduleEntryRepo {
	return scheduling.NewScheduleEntryRepo(db, log)
}
