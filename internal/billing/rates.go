package billing

import (
	"github.com/dryad-restoration/dryad-backend/internal/domain/equipment"
)

// Rates maps equipment types to a daily rental rate in dollars.
type Rates map[equipment.Type]float64

// FallbackRate prices equipment whose type has no rate and no OTHER entry.
const FallbackRate = 20

var dailyRates = Rates{
	equipment.AirMover:               25,
	equipment.AirMoverAxial:          30,
	equipment.AirMoverLowProfile:     35,
	equipment.Dehumidifier:           65,
	equipment.DehumidifierLGR:        85,
	equipment.DehumidifierCommercial: 95,
	equipment.DehumidifierDesiccant:  120,
	equipment.AirScrubber:            60,
	equipment.AirScrubberHEPA:        75,
	equipment.HEPAFilter:             45,
	equipment.HEPAFilterReplacement:  25,
	equipment.MoistureMeter:          15,
	equipment.MoistureMeterPinless:   20,
	equipment.ThermalImagingCamera:   85,
	equipment.ThermalHygrometer:      30,
	equipment.Manometer:              25,
	equipment.OzoneGenerator:         75,
	equipment.HydroxylGenerator:      95,
	equipment.Fogger:                 45,
	equipment.ULVFogger:              55,
	equipment.Heater:                 40,
	equipment.PortableAC:             65,
	equipment.WaterExtractor:         85,
	equipment.WaterExtractorTruck:    175,
	equipment.FloodPumper:            110,
	equipment.Injectidry:             65,
	equipment.FloorDryingSystem:      70,
	equipment.WallCavityDryer:        35,
	equipment.HardwoodFloorDryingMat: 40,
	equipment.DryingPanel:            15,
	equipment.ExtensionCord:          5,
	equipment.PowerDistributionBox:   25,
	equipment.Generator:              95,
	equipment.AirFiltrationDevice:    50,
	equipment.Other:                  FallbackRate,
}

// DefaultRates returns a copy of the standard rate card.
func DefaultRates() Rates {
	out := make(Rates, len(dailyRates))
	for k, v := range dailyRates {
		out[k] = v
	}
	return out
}

// RateFor returns the daily rate of t, falling back to the OTHER rate.
func (r Rates) RateFor(t equipment.Type) float64 {
	if v, ok := r[t]; ok {
		return v
	}
	if v, ok := r[equipment.Other]; ok {
		return v
	}
	return FallbackRate
}

var descriptions = map[equipment.Type]string{
	equipment.AirMover:               "Standard air mover for room drying",
	equipment.AirMoverAxial:          "Axial air mover for high volume air movement",
	equipment.AirMoverLowProfile:     "Low profile air mover for tight spaces",
	equipment.Dehumidifier:           "Standard dehumidifier (30-50 pint)",
	equipment.DehumidifierLGR:        "Low grain refrigerant dehumidifier",
	equipment.DehumidifierCommercial: "Commercial grade high capacity dehumidifier",
	equipment.DehumidifierDesiccant:  "Desiccant dehumidifier for low temperature conditions",
	equipment.AirScrubber:            "Standard air scrubber for air purification",
	equipment.AirScrubberHEPA:        "HEPA air scrubber for advanced filtration",
	equipment.HEPAFilter:             "HEPA filter unit for particulate removal",
	equipment.HEPAFilterReplacement:  "Replacement HEPA filter",
	equipment.MoistureMeter:          "Standard penetrating moisture meter",
	equipment.MoistureMeterPinless:   "Non-invasive pinless moisture meter",
	equipment.ThermalImagingCamera:   "Thermal imaging camera for moisture detection",
	equipment.ThermalHygrometer:      "Measures temperature and relative humidity",
	equipment.Manometer:              "Measures air pressure differentials",
	equipment.OzoneGenerator:         "Ozone generator for odor elimination",
	equipment.HydroxylGenerator:      "Hydroxyl generator for safe occupied space deodorization",
	equipment.Fogger:                 "Standard fogger for disinfectant application",
	equipment.ULVFogger:              "Ultra-low volume fogger for antimicrobial application",
	equipment.Heater:                 "Portable heating unit",
	equipment.PortableAC:             "Portable air conditioning unit",
	equipment.WaterExtractor:         "Portable water extraction unit",
	equipment.WaterExtractorTruck:    "Truck-mounted high power water extractor",
	equipment.FloodPumper:            "Submersible pump for standing water",
	equipment.Injectidry:             "Targeted drying system for walls and cavities",
	equipment.FloorDryingSystem:      "System for drying hardwood floors",
	equipment.WallCavityDryer:        "Specialized unit for drying inside wall cavities",
	equipment.HardwoodFloorDryingMat: "Mat system for drying hardwood floors",
	equipment.DryingPanel:            "Panel system for targeted structural drying",
	equipment.ExtensionCord:          "Heavy-duty extension cord",
	equipment.PowerDistributionBox:   "Power distribution for multiple equipment",
	equipment.Generator:              "Portable power generator",
	equipment.AirFiltrationDevice:    "Commercial grade air filtration unit",
	equipment.Other:                  "Other equipment",
}

// Description is the customer-facing explanation of t.
func Description(t equipment.Type) string {
	if d, ok := descriptions[t]; ok {
		return d
	}
	return descriptions[equipment.Other]
}

type Category string

const (
	CategoryAirMovement      Category = "AIR_MOVEMENT"
	CategoryDehumidification Category = "DEHUMIDIFICATION"
	CategoryAirFiltration    Category = "AIR_FILTRATION"
	CategoryMeasurement      Category = "MEASUREMENT"
	CategoryTreatment        Category = "TREATMENT"
	CategoryClimateControl   Category = "CLIMATE_CONTROL"
	CategoryWaterExtraction  Category = "WATER_EXTRACTION"
	CategoryStructuralDrying Category = "STRUCTURAL_DRYING"
	CategoryAccessories      Category = "ACCESSORIES"
	CategoryOther            Category = "OTHER"
)

var categories = map[Category][]equipment.Type{
	CategoryAirMovement:      {equipment.AirMover, equipment.AirMoverAxial, equipment.AirMoverLowProfile},
	CategoryDehumidification: {equipment.Dehumidifier, equipment.DehumidifierLGR, equipment.DehumidifierCommercial, equipment.DehumidifierDesiccant},
	CategoryAirFiltration:    {equipment.AirScrubber, equipment.AirScrubberHEPA, equipment.HEPAFilter, equipment.HEPAFilterReplacement, equipment.AirFiltrationDevice},
	CategoryMeasurement:      {equipment.MoistureMeter, equipment.MoistureMeterPinless, equipment.ThermalImagingCamera, equipment.ThermalHygrometer, equipment.Manometer},
	CategoryTreatment:        {equipment.OzoneGenerator, equipment.HydroxylGenerator, equipment.Fogger, equipment.ULVFogger},
	CategoryClimateControl:   {equipment.Heater, equipment.PortableAC},
	CategoryWaterExtraction:  {equipment.WaterExtractor, equipment.WaterExtractorTruck, equipment.FloodPumper},
	CategoryStructuralDrying: {equipment.Injectidry, equipment.FloorDryingSystem, equipment.WallCavityDryer, equipment.HardwoodFloorDryingMat, equipment.DryingPanel},
	CategoryAccessories:      {equipment.ExtensionCord, equipment.PowerDistributionBox, equipment.Generator},
	CategoryOther:            {equipment.Other},
}

// CategoryOf returns the category t is filed under, OTHER when unlisted.
func CategoryOf(t equipment.Type) Category {
	for c, types := range categories {
		for _, v := range types {
			if v == t {
				return c
			}
		}
	}
	return CategoryOther
}

// TypesIn lists the types filed under c.
func TypesIn(c Category) []equipment.Type {
	return append([]equipment.Type(nil), categories[c]...)
}
