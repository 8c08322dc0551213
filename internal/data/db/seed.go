package db

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/dryad-restoration/dryad-backend/internal/data/fixtures"
	types "github.com/dryad-restoration/dryad-backend/internal/domain"
	"github.com/dryad-restoration/dryad-backend/internal/pkg/logger"
)

// SeedFixtures loads the embedded demo data into empty tables. Tables that
// already hold rows are left alone, so it is safe to run on every start.
func SeedFixtures(ctx context.Context, db *gorm.DB, log *logger.Logger) error {
	set, err := fixtures.Load()
	if err != nil {
		return err
	}
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		steps := []struct {
			name  string
			model any
			rows  any
			count int
		}{
			{"customers", &types.Customer{}, set.Customers, len(set.Customers)},
			{"users", &types.User{}, set.Users, len(set.Users)},
			{"jobs", &types.Job{}, set.Jobs, len(set.Jobs)},
			{"equipment", &types.Equipment{}, set.Equipment, len(set.Equipment)},
			{"log entries", &types.LogEntry{}, set.LogEntries, len(set.LogEntries)},
			{"labor entries", &types.LaborEntry{}, set.LaborEntries, len(set.LaborEntries)},
			{"quotes", &types.Quote{}, set.Quotes, len(set.Quotes)},
			{"trucks", &types.Truck{}, set.Trucks, len(set.Trucks)},
			{"schedule entries", &types.ScheduleEntry{}, set.ScheduleEntries, len(set.ScheduleEntries)},
		}
		for _, s := range steps {
			if s.count == 0 {
				continue
			}
			var existing int64
			if err := tx.Model(s.model).Count(&existing).Error; err != nil {
				return fmt.Errorf("count %s: %w", s.name, err)
			}
			if existing > 0 {
				log.Debug("seed skipped, table not empty", "table", s.name, "rows", existing)
				continue
			}
			if err := tx.CreateInBatches(s.rows, 100).Error; err != nil {
				return fmt.Errorf("seed %s: %w", s.name, err)
			}
			log.Info("seeded fixtures", "table", s.name, "rows", s.count)
		}
		return nil
	})
}
