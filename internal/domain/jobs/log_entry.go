package jobs

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type LogEntryType string

const (
	LogNote               LogEntryType = "NOTE"
	LogPhoto              LogEntryType = "PHOTO"
	LogMoistureReading    LogEntryType = "MOISTURE_READING"
	LogEquipmentPlacement LogEntryType = "EQUIPMENT_PLACEMENT"
	LogEquipmentRemoval   LogEntryType = "EQUIPMENT_REMOVAL"
	LogTemperatureReading LogEntryType = "TEMPERATURE_READING"
	LogHumidityReading    LogEntryType = "HUMIDITY_READING"
	LogSignature          LogEntryType = "SIGNATURE"
	LogChecklist          LogEntryType = "CHECKLIST"
	LogTaskCompletion     LogEntryType = "TASK_COMPLETION"
	LogExpense            LogEntryType = "EXPENSE"
)

func (t LogEntryType) Valid() bool {
	switch t {
	case LogNote, LogPhoto, LogMoistureReading, LogEquipmentPlacement, LogEquipmentRemoval,
		LogTemperatureReading, LogHumidityReading, LogSignature, LogChecklist,
		LogTaskCompletion, LogExpense:
		return true
	}
	return false
}

type Geolocation struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// EquipmentLogData is the content payload of placement and removal entries.
type EquipmentLogData struct {
	Action                string         `json:"action"`
	EquipmentID           uuid.UUID      `json:"equipmentId"`
	EquipmentType         string         `json:"equipmentType,omitempty"`
	EquipmentModel        string         `json:"equipmentModel,omitempty"`
	EquipmentSerialNumber string         `json:"equipmentSerialNumber,omitempty"`
	Location              string         `json:"location,omitempty"`
	Settings              map[string]any `json:"settings,omitempty"`
	Notes                 string         `json:"notes,omitempty"`
}

type LogEntry struct {
	ID        uuid.UUID                        `gorm:"type:uuid;primaryKey" json:"id"`
	JobID     uuid.UUID                        `gorm:"type:uuid;column:job_id;not null;index" json:"jobId"`
	UserID    uuid.UUID                        `gorm:"type:uuid;column:user_id;not null;index" json:"userId"`
	Timestamp time.Time                        `gorm:"column:timestamp;not null;index" json:"timestamp"`
	Type      LogEntryType                     `gorm:"column:type;not null;index" json:"type"`
	Content   datatypes.JSON                   `gorm:"column:content" json:"content"`
	Location  datatypes.JSONType[*Geolocation] `gorm:"column:location" json:"location,omitempty"`
	Synced    bool                             `gorm:"column:synced;not null;default:false" json:"synced"`
}

func (LogEntry) TableName() string { return "log_entry" }

func (e *LogEntry) IsEquipmentEvent() bool {
	return e.Type == LogEquipmentPlacement || e.Type == LogEquipmentRemoval
}

// EquipmentData decodes the content of a placement or removal entry.
func (e *LogEntry) EquipmentData() (EquipmentLogData, error) {
	var out EquipmentLogData
	if !e.IsEquipmentEvent() {
		return out, fmt.Errorf("log entry %s is %s, not an equipment event", e.ID, e.Type)
	}
	if len(e.Content) == 0 {
		return out, fmt.Errorf("log entry %s has no content", e.ID)
	}
	if err := json.Unmarshal(e.Content, &out); err != nil {
		return out, fmt.Errorf("decode equipment content of %s: %w", e.ID, err)
	}
	return out, nil
}

// SetContent encodes v as the entry's payload.
func (e *LogEntry) SetContent(v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	e.Content = datatypes.JSON(b)
	return nil
}
