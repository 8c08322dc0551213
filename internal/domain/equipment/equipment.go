package equipment

import (
	"time"

	"github.com/google/uuid"
)

type Type string

const (
	AirMover               Type = "AIR_MOVER"
	AirMoverAxial          Type = "AIR_MOVER_AXIAL"
	AirMoverLowProfile     Type = "AIR_MOVER_LOW_PROFILE"
	Dehumidifier           Type = "DEHUMIDIFIER"
	DehumidifierLGR        Type = "DEHUMIDIFIER_LGR"
	DehumidifierCommercial Type = "DEHUMIDIFIER_COMMERCIAL"
	DehumidifierDesiccant  Type = "DEHUMIDIFIER_DESICCANT"
	AirScrubber            Type = "AIR_SCRUBBER"
	AirScrubberHEPA        Type = "AIR_SCRUBBER_HEPA"
	HEPAFilter             Type = "HEPA_FILTER"
	HEPAFilterReplacement  Type = "HEPA_FILTER_REPLACEMENT"
	MoistureMeter          Type = "MOISTURE_METER"
	MoistureMeterPinless   Type = "MOISTURE_METER_PINLESS"
	ThermalImagingCamera   Type = "THERMAL_IMAGING_CAMERA"
	ThermalHygrometer      Type = "THERMAL_HYGROMETER"
	Manometer              Type = "MANOMETER"
	OzoneGenerator         Type = "OZONE_GENERATOR"
	HydroxylGenerator      Type = "HYDROXYL_GENERATOR"
	Fogger                 Type = "FOGGER"
	ULVFogger              Type = "ULV_FOGGER"
	Heater                 Type = "HEATER"
	PortableAC             Type = "PORTABLE_AC"
	WaterExtractor         Type = "WATER_EXTRACTOR"
	WaterExtractorTruck    Type = "WATER_EXTRACTOR_TRUCK_MOUNT"
	FloodPumper            Type = "FLOOD_PUMPER"
	Injectidry             Type = "INJECTIDRY"
	FloorDryingSystem      Type = "FLOOR_DRYING_SYSTEM"
	WallCavityDryer        Type = "WALL_CAVITY_DRYER"
	HardwoodFloorDryingMat Type = "HARDWOOD_FLOOR_DRYING_MAT"
	DryingPanel            Type = "DRYING_PANEL"
	ExtensionCord          Type = "EXTENSION_CORD"
	PowerDistributionBox   Type = "POWER_DISTRIBUTION_BOX"
	Generator              Type = "GENERATOR"
	AirFiltrationDevice    Type = "AIR_FILTRATION_DEVICE"
	Other                  Type = "OTHER"
)

// AllTypes lists every equipment type; OTHER is last.
var AllTypes = []Type{
	AirMover, AirMoverAxial, AirMoverLowProfile,
	Dehumidifier, DehumidifierLGR, DehumidifierCommercial, DehumidifierDesiccant,
	AirScrubber, AirScrubberHEPA,
	HEPAFilter, HEPAFilterReplacement,
	MoistureMeter, MoistureMeterPinless, ThermalImagingCamera, ThermalHygrometer, Manometer,
	OzoneGenerator, HydroxylGenerator, Fogger, ULVFogger,
	Heater, PortableAC,
	WaterExtractor, WaterExtractorTruck, FloodPumper, Injectidry, FloorDryingSystem,
	WallCavityDryer, HardwoodFloorDryingMat, DryingPanel,
	ExtensionCord, PowerDistributionBox, Generator, AirFiltrationDevice,
	Other,
}

func (t Type) Valid() bool {
	for _, v := range AllTypes {
		if t == v {
			return true
		}
	}
	return false
}

type Status string

const (
	StatusAvailable      Status = "AVAILABLE"
	StatusDeployed       Status = "DEPLOYED"
	StatusMaintenance    Status = "MAINTENANCE"
	StatusDecommissioned Status = "DECOMMISSIONED"
)

type Equipment struct {
	ID                  uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Type                Type       `gorm:"column:type;not null;index" json:"type"`
	Model               string     `gorm:"column:model" json:"model"`
	SerialNumber        string     `gorm:"column:serial_number;index" json:"serialNumber"`
	Status              Status     `gorm:"column:status;not null;index" json:"status"`
	CurrentJobID        *uuid.UUID `gorm:"type:uuid;column:current_job_id;index" json:"currentJobId,omitempty"`
	PurchaseDate        *time.Time `gorm:"column:purchase_date" json:"purchaseDate,omitempty"`
	LastMaintenanceDate *time.Time `gorm:"column:last_maintenance_date" json:"lastMaintenanceDate,omitempty"`
	Notes               string     `gorm:"column:notes" json:"notes,omitempty"`
	StorageLocation     string     `gorm:"column:storage_location" json:"storageLocation,omitempty"`
}

func (Equipment) TableName() string { return "equipment" }
