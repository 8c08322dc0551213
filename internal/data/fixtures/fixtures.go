// Package fixtures holds the demo data set the database is seeded from.
package fixtures

import (
	"embed"
	"encoding/json"
	"fmt"

	types "github.com/dryad-restoration/dryad-backend/internal/domain"
)

//go:embed *.json
var files embed.FS

type Set struct {
	Customers       []*types.Customer
	Users           []*types.User
	Jobs            []*types.Job
	Equipment       []*types.Equipment
	LogEntries      []*types.LogEntry
	LaborEntries    []*types.LaborEntry
	Quotes          []*types.Quote
	Trucks          []*types.Truck
	ScheduleEntries []*types.ScheduleEntry
}

// Load decodes every embedded fixture file.
func Load() (*Set, error) {
	var s Set
	for name, dst := range map[string]any{
		"customers.json":       &s.Customers,
		"users.json":           &s.Users,
		"jobs.json":            &s.Jobs,
		"equipment.json":       &s.Equipment,
		"logEntries.json":      &s.LogEntries,
		"laborEntries.json":    &s.LaborEntries,
		"quotes.json":          &s.Quotes,
		"trucks.json":          &s.Trucks,
		"scheduleEntries.json": &s.ScheduleEntries,
	} {
		raw, err := files.ReadFile(name)
		if err != nil {
			return nil, fmt.Errorf("read fixture %s: %w", name, err)
		}
		if err := json.Unmarshal(raw, dst); err != nil {
			return nil, fmt.Errorf("decode fixture %s: %w", name, err)
		}
	}
	return &s, nil
}
