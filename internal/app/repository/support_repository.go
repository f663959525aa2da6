package repository

import (
	"time"

	"github.com/volunteerhub/portal-backend/internal/app/model"
	"github.com/volunteerhub/portal-backend/pkg/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SupportRepository interface {
	// FindTickets lists tickets of ownerID, or of everyone when ownerID is nil.
	FindTickets(ownerID *uint) ([]model.SupportTicket, error)
	FindTicketByID(id uint) (*model.SupportTicket, error)
	FindTicketWithMessages(id uint) (*model.SupportTicket, error)
	CreateTicket(ticket *model.SupportTicket) error
	AddMessage(message *model.SupportMessage) error
	UpdateStatus(id uint, status model.TicketStatus, closedAt *time.Time) error
}

type supportRepository struct {
	db *gorm.DB
}

func NewSupportRepository(db *gorm.DB) SupportRepository {
	return &supportRepository{db: db}
}

// OPEN tickets first, then most recently active.
var ticketOrder = clause.OrderBy{Expression: clause.Expr{
	SQL:                "CASE WHEN status = ? THEN 0 ELSE 1 END, updated_at DESC, id DESC",
	Vars:               []interface{}{model.TicketStatusOpen},
	WithoutParentheses: true,
}}

func (r *supportRepository) withThread(db *gorm.DB) *gorm.DB {
	return db.
		Preload("User").
		Preload("Messages", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC").Order("id ASC")
		}).
		Preload("Messages.User")
}

func (r *supportRepository) FindTickets(ownerID *uint) ([]model.SupportTicket, error) {
	logger.Debug("Finding support tickets in database", map[string]interface{}{
		"owner_id": ownerID,
	})

	query := r.withThread(r.db.Model(&model.SupportTicket{}))
	if ownerID != nil {
		query = query.Where("user_id = ?", *ownerID)
	}

	var tickets []model.SupportTicket
	if err := query.Order(ticketOrder).Find(&tickets).Error; err != nil {
		logger.Error("Failed to find support tickets in database", err)
		return nil, err
	}
	return tickets, nil
}

func (r *supportRepository) FindTicketByID(id uint) (*model.SupportTicket, error) {
	var ticket model.SupportTicket
	if err := r.db.First(&ticket, id).Error; err != nil {
		return nil, err
	}
	return &ticket, nil
}

func (r *supportRepository) FindTicketWithMessages(id uint) (*model.SupportTicket, error) {
	var ticket model.SupportTicket
	if err := r.withThread(r.db).First(&ticket, id).Error; err != nil {
		return nil, err
	}
	return &ticket, nil
}

// CreateTicket inserts the ticket and its initial messages.
func (r *supportRepository) CreateTicket(ticket *model.SupportTicket) error {
	logger.Debug("Creating support ticket in database", map[string]interface{}{
		"user_id": ticket.UserID,
	})

	if err := r.db.Omit("User").Create(ticket).Error; err != nil {
		logger.Error("Failed to create support ticket in database", err, map[string]interface{}{
			"user_id": ticket.UserID,
		})
		return err
	}
	return nil
}

// AddMessage stores the message and bumps the ticket's updated_at.
func (r *supportRepository) AddMessage(message *model.SupportMessage) error {
	logger.Debug("Adding support message in database", map[string]interface{}{
		"ticket_id": message.TicketID,
		"user_id":   message.UserID,
	})

	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("User").Create(message).Error; err != nil {
			return err
		}
		return tx.Model(&model.SupportTicket{}).
			Where("id = ?", message.TicketID).
			Update("updated_at", time.Now()).Error
	})
	if err != nil {
		logger.Error("Failed to add support message in database", err, map[string]interface{}{
			"ticket_id": message.TicketID,
		})
	}
	return err
}

func (r *supportRepository) UpdateStatus(id uint, status model.TicketStatus, closedAt *time.Time) error {
	result := r.db.Model(&model.SupportTicket{}).Where("id = ?", id).Updates(map[string]interface{}{
		"status":    status,
		"closed_at": closedAt,
	})
	if result.Error != nil {
		logger.Error("Failed to update support ticket status", result.Error, map[string]interface{}{
			"ticket_id": id,
		})
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
