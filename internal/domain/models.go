// Package domain defines the persistence models for customers, contact
// logs, and tasks. These types are mapped with GORM and form the core
// data layer of the CRM application.
package domain

import (
	"time"

	"gorm.io/gorm"
)

// Quotation status values recorded on contact logs. QuotationNone marks a
// contact where no quotation was made; QuotationNotYet is never stored, it
// is the derived status for customers without any quoted contact.
const (
	QuotationNone        = "No Quote"
	QuotationQuoted      = "Quoted"
	QuotationAwaiting    = "Awaiting Reply"
	QuotationApproved    = "Approved"
	QuotationRejected    = "Rejected"
	QuotationNegotiating = "Negotiating"
	QuotationNotYet      = "Not Yet Quoted"
)

// Task lifecycle values.
const (
	TaskPending    = "Pending"
	TaskInProgress = "In Progress"
	TaskCompleted  = "Completed"
)

// Task priority values.
const (
	PriorityLow    = "Low"
	PriorityMedium = "Medium"
	PriorityHigh   = "High"
	PriorityUrgent = "Urgent"
)

// Defaults applied when a customer is created without these fields.
const (
	DefaultLeadSource       = "Online"
	DefaultRequiredProducts = "Unspecified"
)

// Customer represents a company tracked by the sales team. The three
// CurrentQuotation* fields are not stored; they are projected from the
// customer's contact history by the data layer.
//
// Fields:
//   - ID: autoincrement primary key.
//   - CompanyName: legal or trading name; searched and sorted on.
//   - SalesPerson: owner of the account; indexed for exact filtering.
//   - CustomerStatus: pipeline stage (free-form, filtered exactly).
//   - LeadSource: acquisition channel, defaults to "Online".
//   - ContractValue: latest agreed amount in THB; kept in sync with the
//     newest positive quotation amount.
//   - CreatedAt / UpdatedAt: timestamps managed by GORM.
//   - DeletedAt: soft deletion marker (retains row for audit/history).
type Customer struct {
	ID                int64          `json:"id"                 gorm:"primaryKey;autoIncrement"`
	CompanyName       string         `json:"company_name"       gorm:"type:varchar(255);not null;index"`
	Location          string         `json:"location,omitempty" gorm:"type:text"`
	BusinessType      string         `json:"business_type,omitempty" gorm:"type:varchar(128)"`
	ContactNames      string         `json:"contact_names,omitempty" gorm:"type:text"`
	PhoneNumber       string         `json:"phone_number,omitempty" gorm:"type:varchar(32)"`
	Email             string         `json:"email,omitempty"    gorm:"type:varchar(255)"`
	Budget            string         `json:"budget,omitempty"   gorm:"type:varchar(128)"`
	RequiredProducts  string         `json:"required_products"  gorm:"type:varchar(255);not null;default:'Unspecified'"`
	PainPoints        string         `json:"pain_points,omitempty" gorm:"type:text"`
	ContractValue     *float64       `json:"contract_value,omitempty"`
	LeadSource        string         `json:"lead_source"        gorm:"type:varchar(64);not null;default:'Online';index"`
	SalesPerson       string         `json:"sales_person"       gorm:"type:varchar(64);not null;index"`
	CustomerStatus    string         `json:"customer_status"    gorm:"type:varchar(64);not null;index"`
	SearchKeyword     string         `json:"search_keyword,omitempty" gorm:"type:varchar(255)"`
	NoQuotationReason string         `json:"no_quotation_reason,omitempty" gorm:"type:text"`
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
	DeletedAt         gorm.DeletedAt `json:"-" gorm:"index"`

	// Derived from contact history; never persisted.
	CurrentQuotationStatus string    `json:"quotation_status,omitempty" gorm:"-"`
	CurrentQuotationAmount float64   `json:"quotation_amount,omitempty" gorm:"-"`
	CurrentQuotationDate   time.Time `json:"quotation_date,omitempty"   gorm:"-"`
}

// TableName returns the database table name for Customer.
func (Customer) TableName() string { return "customers" }

// Contact represents one interaction with a customer. Contacts carry the
// quotation trail: when a quotation is made its status and amount are
// recorded here, and the newest positive amount is mirrored into the
// customer's contract value.
//
// Fields:
//   - ID: autoincrement primary key.
//   - CustomerID: foreign key to the owning customer (indexed).
//   - ContactDate: when the interaction happened; drives "latest" logic.
//   - QuotationStatus: nil when the contact carried no quotation info.
//   - QuotationAmount: nil unless an amount was quoted.
//   - Customer: FK association, ensures cascade delete/update.
type Contact struct {
	ID              int64          `json:"id"              gorm:"primaryKey;autoIncrement"`
	CustomerID      int64          `json:"customer_id"     gorm:"not null;index:idx_customer_contacts,priority:1"`
	ContactType     string         `json:"contact_type"    gorm:"type:varchar(64);not null"`
	ContactStatus   string         `json:"contact_status"  gorm:"type:varchar(64);not null"`
	ContactMethod   string         `json:"contact_method,omitempty" gorm:"type:varchar(64)"`
	ContactPerson   string         `json:"contact_person,omitempty" gorm:"type:varchar(128)"`
	ContactDetails  string         `json:"contact_details,omitempty" gorm:"type:text"`
	NextFollowUp    *time.Time     `json:"next_follow_up,omitempty"`
	Notes           string         `json:"notes,omitempty" gorm:"type:text"`
	CreatedBy       string         `json:"created_by"      gorm:"type:varchar(64);not null;default:'Admin'"`
	ContactDate     time.Time      `json:"contact_date"    gorm:"not null;index:idx_customer_contacts,priority:2"`
	QuotationStatus *string        `json:"quotation_status,omitempty" gorm:"type:varchar(64);index"`
	QuotationAmount *float64       `json:"quotation_amount,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `json:"-" gorm:"index"`

	// Customer is the parent account. Contacts are cascade-deleted
	// if their customer is removed.
	Customer Customer `json:"-" gorm:"foreignKey:CustomerID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for Contact.
func (Contact) TableName() string { return "contact_logs" }

// Task represents a follow-up item, optionally tied to a customer.
type Task struct {
	ID           int64          `json:"id"           gorm:"primaryKey;autoIncrement"`
	CustomerID   *int64         `json:"customer_id,omitempty" gorm:"index"`
	Title        string         `json:"title"        gorm:"type:varchar(255);not null"`
	Description  string         `json:"description,omitempty" gorm:"type:text"`
	TaskType     string         `json:"task_type,omitempty" gorm:"type:varchar(64)"`
	Priority     string         `json:"priority"     gorm:"type:varchar(16);not null;default:'Medium';check:priority IN ('Low','Medium','High','Urgent')"`
	Status       string         `json:"status"       gorm:"type:varchar(16);not null;default:'Pending';check:status IN ('Pending','In Progress','Completed')"`
	AssignedTo   string         `json:"assigned_to,omitempty" gorm:"type:varchar(64);index"`
	DueDate      *time.Time     `json:"due_date,omitempty" gorm:"index"`
	ReminderDate *time.Time     `json:"reminder_date,omitempty"`
	CreatedBy    string         `json:"created_by,omitempty" gorm:"type:varchar(64)"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `json:"-" gorm:"index"`

	// Customer is optional; tasks survive customer deletion with the
	// reference cleared.
	Customer *Customer `json:"-" gorm:"foreignKey:CustomerID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL"`
}

// TableName returns the database table name for Task.
func (Task) TableName() string { return "tasks" }

// HasQuotation reports whether the contact carries real quotation info,
// meaning a status that is present and not the "no quote" marker.
func (c Contact) HasQuotation() bool {
	return c.QuotationStatus != nil && *c.QuotationStatus != "" && *c.QuotationStatus != QuotationNone
}
