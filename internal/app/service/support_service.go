package service

import (
	"errors"
	"strings"
	"time"

	"github.com/volunteerhub/portal-backend/internal/app/model"
	"github.com/volunteerhub/portal-backend/internal/app/repository"
	"github.com/volunteerhub/portal-backend/pkg/logger"
	"github.com/volunteerhub/portal-backend/pkg/mailer"
	"gorm.io/gorm"
)

var (
	ErrTicketNotFound      = errors.New("support ticket not found")
	ErrInvalidTicketStatus = errors.New("invalid ticket status")
	ErrEmptyMessage        = errors.New("message is empty")
)

// TicketNotifier fans new messages out to live subscribers of a ticket.
type TicketNotifier interface {
	PublishMessage(ticketID uint, message *model.SupportMessage)
	PublishStatus(ticketID uint, status model.TicketStatus)
}

type SupportService interface {
	ListTickets(actor Actor) ([]model.SupportTicket, error)
	CreateTicket(actor Actor, subject, message string) (*model.SupportTicket, error)
	GetTicket(id uint, actor Actor) (*model.SupportTicket, error)
	// Authorize checks that actor may read the ticket without loading its thread.
	Authorize(id uint, actor Actor) error
	AddMessage(id uint, actor Actor, message string) (*model.SupportMessage, error)
	UpdateStatus(id uint, actor Actor, status model.TicketStatus) (*model.SupportTicket, error)
}

type supportService struct {
	supportRepo repository.SupportRepository
	userRepo    repository.UserRepository
	notifier    TicketNotifier
	mail        mailer.Mailer
	templates   mailer.Templates
}

func NewSupportService(
	supportRepo repository.SupportRepository,
	userRepo repository.UserRepository,
	notifier TicketNotifier,
	mail mailer.Mailer,
	templates mailer.Templates,
) SupportService {
	return &supportService{
		supportRepo: supportRepo,
		userRepo:    userRepo,
		notifier:    notifier,
		mail:        mail,
		templates:   templates,
	}
}

func (s *supportService) ListTickets(actor Actor) ([]model.SupportTicket, error) {
	if actor.IsStaff() {
		return s.supportRepo.FindTickets(nil)
	}
	ownerID := actor.UserID
	return s.supportRepo.FindTickets(&ownerID)
}

func (s *supportService) CreateTicket(actor Actor, subject, message string) (*model.SupportTicket, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, ErrEmptyMessage
	}

	ticket := &model.SupportTicket{
		Subject: strings.TrimSpace(subject),
		Status:  model.TicketStatusOpen,
		UserID:  actor.UserID,
		Messages: []model.SupportMessage{{
			UserID:  actor.UserID,
			Message: message,
			IsAdmin: actor.IsStaff(),
		}},
	}
	if err := s.supportRepo.CreateTicket(ticket); err != nil {
		return nil, err
	}

	logger.Info("Support ticket created", map[string]interface{}{
		"ticket_id": ticket.ID,
		"user_id":   actor.UserID,
	})
	return ticket, nil
}

func (s *supportService) load(id uint, withThread bool) (*model.SupportTicket, error) {
	var (
		ticket *model.SupportTicket
		err    error
	)
	if withThread {
		ticket, err = s.supportRepo.FindTicketWithMessages(id)
	} else {
		ticket, err = s.supportRepo.FindTicketByID(id)
	}
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTicketNotFound
		}
		return nil, err
	}
	return ticket, nil
}

func canAccessTicket(ticket *model.SupportTicket, actor Actor) bool {
	return actor.IsStaff() || ticket.UserID == actor.UserID
}

func (s *supportService) GetTicket(id uint, actor Actor) (*model.SupportTicket, error) {
	ticket, err := s.load(id, true)
	if err != nil {
		return nil, err
	}
	if !canAccessTicket(ticket, actor) {
		return nil, ErrForbidden
	}
	return ticket, nil
}

func (s *supportService) Authorize(id uint, actor Actor) error {
	ticket, err := s.load(id, false)
	if err != nil {
		return err
	}
	if !canAccessTicket(ticket, actor) {
		return ErrForbidden
	}
	return nil
}

func (s *supportService) AddMessage(id uint, actor Actor, text string) (*model.SupportMessage, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyMessage
	}

	ticket, err := s.load(id, false)
	if err != nil {
		return nil, err
	}
	if !canAccessTicket(ticket, actor) {
		return nil, ErrForbidden
	}

	message := &model.SupportMessage{
		TicketID: ticket.ID,
		UserID:   actor.UserID,
		Message:  text,
		IsAdmin:  actor.IsStaff(),
	}
	if err := s.supportRepo.AddMessage(message); err != nil {
		return nil, err
	}

	if author, err := s.userRepo.FindByID(actor.UserID); err == nil {
		message.User = author
	}
	if s.notifier != nil {
		s.notifier.PublishMessage(ticket.ID, message)
	}

	// staff replies on someone else's ticket reach the owner by mail
	if message.IsAdmin && ticket.UserID != actor.UserID {
		if owner, err := s.userRepo.FindByID(ticket.UserID); err == nil {
			s.mail.SendAsync(s.templates.SupportReply(owner.Email, ticket.Subject, ticket.ID))
		}
	}
	return message, nil
}

func (s *supportService) UpdateStatus(id uint, actor Actor, status model.TicketStatus) (*model.SupportTicket, error) {
	if !status.Valid() {
		return nil, ErrInvalidTicketStatus
	}

	ticket, err := s.load(id, false)
	if err != nil {
		return nil, err
	}
	if !canAccessTicket(ticket, actor) {
		return nil, ErrForbidden
	}

	var closedAt *time.Time
	if status == model.TicketStatusClosed {
		now := time.Now()
		closedAt = &now
	}
	if err := s.supportRepo.UpdateStatus(ticket.ID, status, closedAt); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTicketNotFound
		}
		return nil, err
	}

	logger.Info("Support ticket status updated", map[string]interface{}{
		"ticket_id": ticket.ID,
		"status":    status,
		"user_id":   actor.UserID,
	})
	if s.notifier != nil {
		s.notifier.PublishStatus(ticket.ID, status)
	}

	ticket.Status = status
	ticket.ClosedAt = closedAt
	return ticket, nil
}
