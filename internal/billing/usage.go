package billing

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/dryad-restoration/dryad-backend/internal/domain/equipment"
	"github.com/dryad-restoration/dryad-backend/internal/domain/jobs"
)

const day = 24 * time.Hour

// Usage is one placement-to-removal interval of a piece of equipment.
// Open intervals run until the time the calculation was made.
type Usage struct {
	EquipmentID    uuid.UUID      `json:"equipmentId"`
	EquipmentType  equipment.Type `json:"equipmentType"`
	EquipmentModel string         `json:"equipmentModel"`
	Start          time.Time      `json:"start"`
	End            time.Time      `json:"end"`
	Days           int            `json:"days"`
	Open           bool           `json:"open"`
}

// BillableDays rounds d up to whole days, never below one.
func BillableDays(d time.Duration) int {
	if d <= 0 {
		return 1
	}
	days := int((d + day - 1) / day)
	if days < 1 {
		return 1
	}
	return days
}

type pending struct {
	at   time.Time
	data jobs.EquipmentLogData
}

// CalculateEquipmentUsage pairs placement and removal entries into usage
// intervals. Entries are scanned in timestamp order. A later placement of
// the same equipment replaces an unmatched earlier one, removals without a
// pending placement are ignored, and equipment still placed at the end is
// billed through now. Entries of other types or with unreadable content are
// skipped.
func CalculateEquipmentUsage(entries []*jobs.LogEntry, now time.Time) []Usage {
	ordered := make([]*jobs.LogEntry, 0, len(entries))
	for _, e := range entries {
		if e != nil && e.IsEquipmentEvent() {
			ordered = append(ordered, e)
		}
	}
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Timestamp.Before(ordered[j].Timestamp)
	})

	placed := make(map[uuid.UUID]pending)
	var out []Usage
	for _, e := range ordered {
		data, err := e.EquipmentData()
		if err != nil || data.EquipmentID == uuid.Nil {
			continue
		}
		switch e.Type {
		case jobs.LogEquipmentPlacement:
			placed[data.EquipmentID] = pending{at: e.Timestamp, data: data}
		case jobs.LogEquipmentRemoval:
			p, ok := placed[data.EquipmentID]
			if !ok {
				continue
			}
			delete(placed, data.EquipmentID)
			out = append(out, newUsage(p, &data, e.Timestamp, false))
		}
	}

	open := make([]Usage, 0, len(placed))
	for _, p := range placed {
		open = append(open, newUsage(p, nil, now, true))
	}
	sort.Slice(open, func(i, j int) bool {
		if !open[i].Start.Equal(open[j].Start) {
			return open[i].Start.Before(open[j].Start)
		}
		return open[i].EquipmentID.String() < open[j].EquipmentID.String()
	})
	return append(out, open...)
}

func newUsage(p pending, removal *jobs.EquipmentLogData, end time.Time, open bool) Usage {
	typ, model := "", ""
	if removal != nil {
		typ, model = removal.EquipmentType, removal.EquipmentModel
	}
	if typ == "" {
		typ = p.data.EquipmentType
	}
	if model == "" {
		model = p.data.EquipmentModel
	}
	if typ == "" {
		typ = string(equipment.Other)
	}
	if model == "" {
		model = "Unknown"
	}
	return Usage{
		EquipmentID:    p.data.EquipmentID,
		EquipmentType:  equipment.Type(typ),
		EquipmentModel: model,
		Start:          p.at,
		End:            end,
		Days:           BillableDays(end.Sub(p.at)),
		Open:           open,
	}
}
