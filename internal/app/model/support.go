package model

import (
	"time"
)

type TicketStatus string

const (
	TicketStatusOpen   TicketStatus = "OPEN"
	TicketStatusClosed TicketStatus = "CLOSED"
)

func (s TicketStatus) Valid() bool {
	return s == TicketStatusOpen || s == TicketStatusClosed
}

type SupportTicket struct {
	ID        uint         `gorm:"primarykey" json:"id"`
	Subject   string       `gorm:"not null" json:"subject"`
	Status    TicketStatus `gorm:"type:varchar(10);default:'OPEN';index" json:"status"`
	UserID    uint         `gorm:"not null;index" json:"user_id"`
	ClosedAt  *time.Time   `json:"closed_at"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `gorm:"index" json:"updated_at"`

	User     *User            `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Messages []SupportMessage `gorm:"foreignKey:TicketID;constraint:OnDelete:CASCADE" json:"messages"`
}

func (SupportTicket) TableName() string {
	return "support_tickets"
}

type SupportMessage struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	TicketID  uint      `gorm:"not null;index" json:"ticket_id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	Message   string    `gorm:"type:text;not null" json:"message"`
	IsAdmin   bool      `gorm:"default:false" json:"is_admin"` // written by ADMIN or MODERATOR
	CreatedAt time.Time `json:"created_at"`

	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

func (SupportMessage) TableName() string {
	return "support_messages"
}
