package billing

import "sort"

type Detail struct {
	Usage
	Description string  `json:"description"`
	DailyRate   float64 `json:"dailyRate"`
	Cost        float64 `json:"cost"`
}

type Summary struct {
	Details []Detail `json:"details"`
	Total   float64  `json:"total"`
}

// CalculateTotalCosts prices each usage interval at days times the daily
// rate of its type. Details come back most expensive first.
func CalculateTotalCosts(usage []Usage, rates Rates) Summary {
	if rates == nil {
		rates = dailyRates
	}
	out := Summary{Details: make([]Detail, 0, len(usage))}
	for _, u := range usage {
		rate := rates.RateFor(u.EquipmentType)
		cost := float64(u.Days) * rate
		out.Details = append(out.Details, Detail{
			Usage:       u,
			Description: Description(u.EquipmentType),
			DailyRate:   rate,
			Cost:        cost,
		})
		out.Total += cost
	}
	sort.SliceStable(out.Details, func(i, j int) bool {
		a, b := out.Details[i], out.Details[j]
		if a.Cost != b.Cost {
			return a.Cost > b.Cost
		}
		return a.EquipmentID.String() < b.EquipmentID.String()
	})
	return out
}
