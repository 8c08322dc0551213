package jobs

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/dryad-restoration/dryad-backend/internal/domain/customers"
)

type JobStatus string

const (
	StatusNew               JobStatus = "NEW"
	StatusScheduled         JobStatus = "SCHEDULED"
	StatusInProgress        JobStatus = "IN_PROGRESS"
	StatusOnHold            JobStatus = "ON_HOLD"
	StatusPendingCompletion JobStatus = "PENDING_COMPLETION"
	StatusCompleted         JobStatus = "COMPLETED"
	StatusInvoiceApproval   JobStatus = "INVOICE_APPROVAL"
	StatusInvoiced          JobStatus = "INVOICED"
	StatusPaid              JobStatus = "PAID"
	StatusCancelled         JobStatus = "CANCELLED"
)

// AllStatuses lists every status, side states included, in display order.
var AllStatuses = []JobStatus{
	StatusNew,
	StatusScheduled,
	StatusInProgress,
	StatusOnHold,
	StatusPendingCompletion,
	StatusCompleted,
	StatusInvoiceApproval,
	StatusInvoiced,
	StatusPaid,
	StatusCancelled,
}

func (s JobStatus) Valid() bool {
	for _, v := range AllStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// Terminal statuses accept no further transitions.
func (s JobStatus) Terminal() bool {
	return s == StatusPaid || s == StatusCancelled
}

type JobType string

const (
	JobTypeWater JobType = "WATER"
	JobTypeFire  JobType = "FIRE"
	JobTypeMold  JobType = "MOLD"
	JobTypeSmoke JobType = "SMOKE"
	JobTypeStorm JobType = "STORM"
	JobTypeOther JobType = "OTHER"
)

func (t JobType) Valid() bool {
	switch t {
	case JobTypeWater, JobTypeFire, JobTypeMold, JobTypeSmoke, JobTypeStorm, JobTypeOther:
		return true
	}
	return false
}

type InsuranceInfo struct {
	Company          string   `json:"company"`
	PolicyNumber     string   `json:"policyNumber"`
	ClaimNumber      string   `json:"claimNumber"`
	AdjustorName     string   `json:"adjustorName,omitempty"`
	AdjustorPhone    string   `json:"adjustorPhone,omitempty"`
	AdjustorEmail    string   `json:"adjustorEmail,omitempty"`
	IsInsuranceClaim bool     `json:"isInsuranceClaim"`
	Deductible       *float64 `json:"deductible,omitempty"`
}

// CompletionTasks are the technician checklist flags gating office review.
type CompletionTasks struct {
	FinalReadingsLogged bool `gorm:"column:final_readings_logged;not null;default:false" json:"finalReadingsLogged"`
	AfterPhotosTaken    bool `gorm:"column:after_photos_taken;not null;default:false" json:"afterPhotosTaken"`
	MarkReadyForReview  bool `gorm:"column:mark_ready_for_review;not null;default:false" json:"markReadyForReview"`
}

func (c CompletionTasks) AllDone() bool {
	return c.FinalReadingsLogged && c.AfterPhotosTaken && c.MarkReadyForReview
}

// Flag returns the value of the flag named by its JSON key.
func (c CompletionTasks) Flag(key string) (value bool, ok bool) {
	switch key {
	case "finalReadingsLogged":
		return c.FinalReadingsLogged, true
	case "afterPhotosTaken":
		return c.AfterPhotosTaken, true
	case "markReadyForReview":
		return c.MarkReadyForReview, true
	}
	return false, false
}

// CompletionTasksPatch is a partial update; nil fields keep their value.
type CompletionTasksPatch struct {
	FinalReadingsLogged *bool `json:"finalReadingsLogged,omitempty"`
	AfterPhotosTaken    *bool `json:"afterPhotosTaken,omitempty"`
	MarkReadyForReview  *bool `json:"markReadyForReview,omitempty"`
}

func (c CompletionTasks) Merge(p CompletionTasksPatch) CompletionTasks {
	if p.FinalReadingsLogged != nil {
		c.FinalReadingsLogged = *p.FinalReadingsLogged
	}
	if p.AfterPhotosTaken != nil {
		c.AfterPhotosTaken = *p.AfterPhotosTaken
	}
	if p.MarkReadyForReview != nil {
		c.MarkReadyForReview = *p.MarkReadyForReview
	}
	return c
}

type InvoicePayment struct {
	Date            time.Time `json:"date"`
	Amount          float64   `json:"amount"`
	Method          string    `json:"method"`
	ReferenceNumber string    `json:"referenceNumber,omitempty"`
	Notes           string    `json:"notes,omitempty"`
	Timestamp       time.Time `json:"timestamp"`
}

// Job is the root aggregate. Log entries, labor entries and deployed
// equipment reference it by id.
type Job struct {
	ID                      uuid.UUID                             `gorm:"type:uuid;primaryKey" json:"id"`
	JobNumber               string                                `gorm:"column:job_number;not null;uniqueIndex" json:"jobNumber"`
	Status                  JobStatus                             `gorm:"column:status;not null;index" json:"status"`
	JobType                 JobType                               `gorm:"column:job_type;not null" json:"jobType"`
	Title                   string                                `gorm:"column:title;not null" json:"title"`
	Description             string                                `gorm:"column:description" json:"description"`
	IncidentDate            *time.Time                            `gorm:"column:incident_date" json:"incidentDate,omitempty"`
	CreatedAt               time.Time                             `gorm:"column:created_at;not null;index" json:"createdAt"`
	ScheduledStartDate      *time.Time                            `gorm:"column:scheduled_start_date" json:"scheduledStartDate,omitempty"`
	EstimatedCompletionDate *time.Time                            `gorm:"column:estimated_completion_date" json:"estimatedCompletionDate,omitempty"`
	CompletedDate           *time.Time                            `gorm:"column:completed_date" json:"completedDate,omitempty"`
	CustomerID              uuid.UUID                             `gorm:"type:uuid;column:customer_id;not null;index" json:"customerId"`
	SiteAddress             datatypes.JSONType[customers.Address] `gorm:"column:site_address" json:"siteAddress"`
	InsuranceInfo           datatypes.JSONType[*InsuranceInfo]    `gorm:"column:insurance_info" json:"insuranceInfo,omitempty"`
	AssignedUserIDs         datatypes.JSONSlice[uuid.UUID]        `gorm:"column:assigned_user_ids" json:"assignedUserIds"`
	EquipmentIDs            datatypes.JSONSlice[uuid.UUID]        `gorm:"column:equipment_ids" json:"equipmentIds"`
	Priority                int                                   `gorm:"column:priority;not null;default:3" json:"priority"`
	EstimatedCost           *float64                              `gorm:"column:estimated_cost" json:"estimatedCost,omitempty"`
	AccessInstructions      string                                `gorm:"column:access_instructions" json:"accessInstructions,omitempty"`
	Tags                    datatypes.JSONSlice[string]           `gorm:"column:tags" json:"tags,omitempty"`
	OriginatingQuoteID      *uuid.UUID                            `gorm:"type:uuid;column:originating_quote_id" json:"originatingQuoteId,omitempty"`
	AccountOwnerID          *uuid.UUID                            `gorm:"type:uuid;column:account_owner_id" json:"accountOwnerId,omitempty"`
	CompletionTasks         CompletionTasks                       `gorm:"embedded;embeddedPrefix:completion_" json:"completionTasks"`
	HasBeforePhotos         bool                                  `gorm:"column:has_before_photos;not null;default:false" json:"hasBeforePhotos"`

	LaborCost     *float64 `gorm:"column:labor_cost" json:"laborCost,omitempty"`
	MaterialsCost *float64 `gorm:"column:materials_cost" json:"materialsCost,omitempty"`
	EquipmentCost *float64 `gorm:"column:equipment_cost" json:"equipmentCost,omitempty"`

	InvoiceNumber string                              `gorm:"column:invoice_number" json:"invoiceNumber,omitempty"`
	InvoiceDate   *time.Time                          `gorm:"column:invoice_date" json:"invoiceDate,omitempty"`
	InvoiceAmount *float64                            `gorm:"column:invoice_amount" json:"invoiceAmount,omitempty"`
	Payments      datatypes.JSONSlice[InvoicePayment] `gorm:"column:payments" json:"payments,omitempty"`
}

func (Job) TableName() string { return "job" }

func (j *Job) IsAssigned(userID uuid.UUID) bool {
	for _, id := range j.AssignedUserIDs {
		if id == userID {
			return true
		}
	}
	return false
}

func (j *Job) HasEquipment(equipmentID uuid.UUID) bool {
	for _, id := range j.EquipmentIDs {
		if id == equipmentID {
			return true
		}
	}
	return false
}

func (j *Job) AmountPaid() float64 {
	var sum float64
	for _, p := range j.Payments {
		sum += p.Amount
	}
	return sum
}

// AmountDue is the invoice amount minus payments, or zero when no invoice exists.
func (j *Job) AmountDue() float64 {
	if j.InvoiceAmount == nil {
		return 0
	}
	return *j.InvoiceAmount - j.AmountPaid()
}
