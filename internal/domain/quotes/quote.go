package quotes

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/dryad-restoration/dryad-backend/internal/domain/customers"
)

type Status string

const (
	StatusDraft          Status = "DRAFT"
	StatusSent           Status = "SENT"
	StatusAccepted       Status = "ACCEPTED"
	StatusDeclined       Status = "DECLINED"
	StatusConvertedToJob Status = "CONVERTED_TO_JOB"
)

type Type string

const (
	TypeFixedPrice Type = "FIXED_PRICE"
	TypeTimeAndExp Type = "T_AND_E"
)

type ScopeOfWork struct {
	Summary            string `json:"summary,omitempty"`
	WaterMitigation    string `json:"waterMitigation,omitempty"`
	Containment        string `json:"containment,omitempty"`
	AffectedMaterials  string `json:"affectedMaterials,omitempty"`
	DryingProcess      string `json:"dryingProcess,omitempty"`
	Demolition         string `json:"demolition,omitempty"`
	CleaningSanitizing string `json:"cleaningSanitizing,omitempty"`
	Reconstruction     string `json:"reconstruction,omitempty"`
	Exclusions         string `json:"exclusions,omitempty"`
}

type LineItem struct {
	ID           uuid.UUID `json:"id"`
	Description  string    `json:"description"`
	Quantity     float64   `json:"quantity"`
	UnitPrice    float64   `json:"unitPrice"`
	Total        float64   `json:"total"`
	IsEstimate   bool      `json:"isEstimate"`
	Category     string    `json:"category,omitempty"`
	InternalCost *float64  `json:"internalCost,omitempty"`
}

type Quote struct {
	ID               uuid.UUID                             `gorm:"type:uuid;primaryKey" json:"id"`
	QuoteNumber      string                                `gorm:"column:quote_number;not null;uniqueIndex" json:"quoteNumber"`
	Status           Status                                `gorm:"column:status;not null;index" json:"status"`
	QuoteType        Type                                  `gorm:"column:quote_type;not null" json:"quoteType"`
	CustomerID       uuid.UUID                             `gorm:"type:uuid;column:customer_id;not null;index" json:"customerId"`
	SiteAddress      datatypes.JSONType[customers.Address] `gorm:"column:site_address" json:"siteAddress"`
	ScopeOfWork      datatypes.JSONType[ScopeOfWork]       `gorm:"column:scope_of_work" json:"scopeOfWork"`
	LineItems        datatypes.JSONSlice[LineItem]         `gorm:"column:line_items" json:"lineItems"`
	Subtotal         float64                               `gorm:"column:subtotal;not null" json:"subtotal"`
	TaxRate          *float64                              `gorm:"column:tax_rate" json:"taxRate,omitempty"`
	TaxAmount        *float64                              `gorm:"column:tax_amount" json:"taxAmount,omitempty"`
	Total            float64                               `gorm:"column:total;not null" json:"total"`
	DateCreated      time.Time                             `gorm:"column:date_created;not null;index" json:"dateCreated"`
	DateSent         *time.Time                            `gorm:"column:date_sent" json:"dateSent,omitempty"`
	DateExpires      *time.Time                            `gorm:"column:date_expires" json:"dateExpires,omitempty"`
	Notes            string                                `gorm:"column:notes" json:"notes,omitempty"`
	PreparedByUserID uuid.UUID                             `gorm:"type:uuid;column:prepared_by_user_id" json:"preparedByUserId"`
	AssociatedJobID  *uuid.UUID                            `gorm:"type:uuid;column:associated_job_id" json:"associatedJobId,omitempty"`
}

func (Quote) TableName() string { return "quote" }

// Recalculate fills line totals, subtotal, tax and total from quantities and prices.
func (q *Quote) Recalculate() {
	var subtotal float64
	for i := range q.LineItems {
		q.LineItems[i].Total = q.LineItems[i].Quantity * q.LineItems[i].UnitPrice
		subtotal += q.LineItems[i].Total
	}
	q.Subtotal = subtotal
	q.Total = subtotal
	q.TaxAmount = nil
	if q.TaxRate != nil {
		tax := subtotal * *q.TaxRate
		q.TaxAmount = &tax
		q.Total += tax
	}
}
