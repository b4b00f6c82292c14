// Package domain defines the persistence models for quote requests, supplier
// invitations and supplier responses. These types are mapped with GORM and
// form the core data layer of the quoting service.
package domain

import (
	"time"

	"gorm.io/datatypes"
)

// QuoteRequest is a buyer-created solicitation tied to one procurement
// opportunity and sent to one or more invited suppliers.
//
// Fields:
//   - ID: stable UUID primary key (char(36)).
//   - UserID: owner of the request; indexed for per-owner listings.
//   - OpportunityID: the linked procurement opportunity.
//   - Status: persisted lifecycle state; see EffectiveStatus for gating.
//   - Deadline: last instant at which responses are accepted.
//   - Requirements: opaque structured payload supplied by the owner.
//   - AIGenerated: whether the requirements were machine-drafted.
//   - CreatedAt / UpdatedAt: timestamps managed by GORM.
type QuoteRequest struct {
	ID            string         `json:"id"             gorm:"type:char(36);primaryKey"`
	UserID        string         `json:"user_id"        gorm:"type:varchar(64);not null;index:idx_owner_requests,priority:1"`
	OpportunityID string         `json:"opportunity_id" gorm:"type:varchar(64);not null;index"`
	Title         string         `json:"title"          gorm:"type:varchar(255);not null"`
	Description   *string        `json:"description,omitempty" gorm:"type:text"`
	Status        Status         `json:"status"         gorm:"type:varchar(16);not null;default:'draft';index;check:status IN ('draft','sent','expired','completed')"`
	Deadline      time.Time      `json:"deadline"       gorm:"not null;index"`
	Requirements  datatypes.JSON `json:"requirements,omitempty"`
	AIGenerated   bool           `json:"ai_generated"   gorm:"not null;default:false"`
	CreatedAt     time.Time      `json:"created_at"     gorm:"index:idx_owner_requests,priority:2"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

// TableName returns the database table name for QuoteRequest.
func (QuoteRequest) TableName() string { return "quote_requests" }

// Invitation records that a supplier was asked to respond to a quote request.
// A supplier can be invited at most once per request (enforced by unique index).
//
// Fields:
//   - QuoteRequestID / SupplierID: the unique pair.
//   - InvitedAt: insertion time; listings are ordered by it.
//   - NotificationSent / NotificationChannel: set exactly once when the
//     supplier is notified on send.
type Invitation struct {
	ID                  string    `json:"id"                   gorm:"type:char(36);primaryKey"`
	QuoteRequestID      string    `json:"quote_request_id"     gorm:"type:char(36);not null;uniqueIndex:ux_invitation_request_supplier,priority:1"`
	SupplierID          string    `json:"supplier_id"          gorm:"type:varchar(64);not null;index;uniqueIndex:ux_invitation_request_supplier,priority:2"`
	InvitedAt           time.Time `json:"invited_at"           gorm:"not null;index"`
	NotificationSent    bool      `json:"notification_sent"    gorm:"not null;default:false"`
	NotificationChannel *string   `json:"notification_channel,omitempty" gorm:"type:varchar(32)"`

	// Invitations are cascade-deleted with either parent.
	QuoteRequest QuoteRequest `json:"-" gorm:"foreignKey:QuoteRequestID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	Supplier     Supplier     `json:"-" gorm:"foreignKey:SupplierID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for Invitation.
func (Invitation) TableName() string { return "invitations" }

// LineItem is one priced entry within a supplier response. Money is always
// integer cents.
type LineItem struct {
	Description    string  `json:"description"`
	Quantity       int64   `json:"quantity"`
	UnitPriceCents int64   `json:"unit_price_cents"`
	TotalCents     int64   `json:"total_cents"`
	Specifications *string `json:"specifications,omitempty"`
	Notes          *string `json:"notes,omitempty"`
}

// Attachment is metadata about a file a supplier attached to a response. The
// file itself lives in external storage.
type Attachment struct {
	Filename string `json:"filename"`
	URL      string `json:"url"`
	Size     int64  `json:"size"`
	MimeType string `json:"mime_type"`
}

// SupplierResponse is a supplier's priced, itemized reply to a quote request.
// There is at most one response per (quote_request_id, supplier_id); a
// resubmission is rejected by the unique index rather than overwriting.
type SupplierResponse struct {
	ID               string                         `json:"id"                 gorm:"type:char(36);primaryKey"`
	QuoteRequestID   string                         `json:"quote_request_id"   gorm:"type:char(36);not null;uniqueIndex:ux_response_request_supplier,priority:1"`
	SupplierID       string                         `json:"supplier_id"        gorm:"type:varchar(64);not null;index;uniqueIndex:ux_response_request_supplier,priority:2"`
	Status           ResponseStatus                 `json:"status"             gorm:"type:varchar(16);not null;default:'pending';check:status IN ('pending','submitted','declined','expired')"`
	LineItems        datatypes.JSONSlice[LineItem]   `json:"line_items"`
	TotalPriceCents  int64                          `json:"total_price_cents"  gorm:"not null;default:0"`
	DeliveryTimeDays int                            `json:"delivery_time_days" gorm:"not null;default:0"`
	Notes            *string                        `json:"notes,omitempty"    gorm:"type:text"`
	Attachments      datatypes.JSONSlice[Attachment] `json:"attachments"`
	SubmittedAt      *time.Time                     `json:"submitted_at,omitempty"`
	ExpiresAt        *time.Time                     `json:"expires_at,omitempty"`
	CreatedAt        time.Time                      `json:"created_at"`
	UpdatedAt        time.Time                      `json:"updated_at"`

	// Responses are cascade-deleted with either parent.
	QuoteRequest QuoteRequest `json:"-" gorm:"foreignKey:QuoteRequestID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	Supplier     Supplier     `json:"-" gorm:"foreignKey:SupplierID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for SupplierResponse.
func (SupplierResponse) TableName() string { return "supplier_responses" }

// Supplier is the directory entry for a company that can be invited.
type Supplier struct {
	ID        string    `json:"id"         gorm:"type:varchar(64);primaryKey"`
	Name      string    `json:"name"       gorm:"type:varchar(255);not null"`
	Email     *string   `json:"email,omitempty" gorm:"type:varchar(255)"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the database table name for Supplier.
func (Supplier) TableName() string { return "suppliers" }

// Opportunity is a procurement opportunity ingested from an external feed.
// The quoting service only reads it.
type Opportunity struct {
	ID                 string     `json:"id"                  gorm:"type:varchar(64);primaryKey"`
	Title              string     `json:"title"               gorm:"type:varchar(512);not null"`
	Agency             *string    `json:"agency,omitempty"    gorm:"type:varchar(255)"`
	SolicitationNumber *string    `json:"solicitation_number,omitempty" gorm:"type:varchar(128)"`
	ResponseDeadline   *time.Time `json:"response_deadline,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

// TableName returns the database table name for Opportunity.
func (Opportunity) TableName() string { return "opportunities" }

// ResponsePayload is what a supplier submits. Totals are declared by the
// client and recomputed server-side before anything is stored.
type ResponsePayload struct {
	LineItems        []LineItem   `json:"line_items"`
	TotalPriceCents  int64        `json:"total_price_cents"`
	DeliveryTimeDays int          `json:"delivery_time_days"`
	Notes            *string      `json:"notes,omitempty"`
	Attachments      []Attachment `json:"attachments,omitempty"`
	ExpiresAt        *time.Time   `json:"expires_at,omitempty"`
}
