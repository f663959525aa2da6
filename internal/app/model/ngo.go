package model

import (
	"time"
)

type NGOStatus string

const (
	NGOStatusPending  NGOStatus = "PENDING"
	NGOStatusApproved NGOStatus = "APPROVED"
	NGOStatusRejected NGOStatus = "REJECTED"
)

// NGO is a non-profit listed in the directory.
type NGO struct {
	ID          uint      `gorm:"primarykey" json:"id"`
	Name        string    `gorm:"not null;index" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	City        string    `gorm:"index" json:"city"`
	Address     string    `json:"address"`
	Latitude    *float64  `json:"latitude"`
	Longitude   *float64  `json:"longitude"`
	Categories  []string  `gorm:"type:text;serializer:json" json:"categories"`
	Website     string    `json:"website,omitempty"`
	Email       string    `json:"email,omitempty"`
	Phone       string    `json:"phone,omitempty"`
	Logo        string    `json:"logo,omitempty"`
	Status      NGOStatus `gorm:"type:varchar(20);default:'PENDING';index" json:"status"`
	UserID      *uint     `gorm:"uniqueIndex" json:"user_id"` // owner account, nil for imported records
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	User     *User     `gorm:"foreignKey:UserID" json:"-"`
	Events   []Event   `gorm:"foreignKey:NGOID;constraint:OnDelete:CASCADE" json:"events,omitempty"`
	Projects []Project `gorm:"foreignKey:NGOID;constraint:OnDelete:CASCADE" json:"projects,omitempty"`
}

func (NGO) TableName() string {
	return "ngos"
}

type EventStatus string

const (
	EventStatusDraft     EventStatus = "DRAFT"
	EventStatusPublished EventStatus = "PUBLISHED"
)

type Event struct {
	ID          uint        `gorm:"primarykey" json:"id"`
	NGOID       uint        `gorm:"column:ngo_id;not null;index" json:"ngo_id"`
	Title       string      `gorm:"not null" json:"title"`
	Description string      `gorm:"type:text" json:"description"`
	City        string      `json:"city"`
	Address     string      `json:"address"`
	StartDate   time.Time   `gorm:"not null;index" json:"start_date"`
	EndDate     *time.Time  `json:"end_date,omitempty"`
	Status      EventStatus `gorm:"type:varchar(20);default:'DRAFT';index" json:"status"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`

	NGO *NGO `gorm:"foreignKey:NGOID" json:"ngo,omitempty"`
}

func (Event) TableName() string {
	return "events"
}

type Project struct {
	ID          uint      `gorm:"primarykey" json:"id"`
	NGOID       uint      `gorm:"column:ngo_id;not null;index" json:"ngo_id"`
	Title       string    `gorm:"not null" json:"title"`
	Description string    `gorm:"type:text" json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (Project) TableName() string {
	return "projects"
}
