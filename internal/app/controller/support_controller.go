package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	gorillaws "github.com/gorilla/websocket"
	"github.com/volunteerhub/portal-backend/internal/app/model"
	"github.com/volunteerhub/portal-backend/internal/app/service"
	"github.com/volunteerhub/portal-backend/internal/middleware"
	"github.com/volunteerhub/portal-backend/internal/websocket"
)

type SupportController struct {
	supportService service.SupportService
	hub            *websocket.Hub
	upgrader       *gorillaws.Upgrader
}

func NewSupportController(supportService service.SupportService, hub *websocket.Hub, upgrader *gorillaws.Upgrader) *SupportController {
	return &SupportController{
		supportService: supportService,
		hub:            hub,
		upgrader:       upgrader,
	}
}

type CreateTicketRequest struct {
	Subject string `json:"subject" binding:"required,min=5,max=200"`
	Message string `json:"message" binding:"required,min=10"`
}

type AddMessageRequest struct {
	Message string `json:"message" binding:"required,min=1"`
}

type UpdateTicketStatusRequest struct {
	Status model.TicketStatus `json:"status" binding:"required,oneof=OPEN CLOSED"`
}

// ListTickets returns own tickets, or every ticket for staff
// GET /api/v1/support/tickets
func (ctrl *SupportController) ListTickets(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	tickets, err := ctrl.supportService.ListTickets(actor)
	if err != nil {
		respondServiceError(c, log, err, "list tickets")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"tickets": tickets,
		"count":   len(tickets),
	})
}

// POST /api/v1/support/tickets
func (ctrl *SupportController) CreateTicket(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	var req CreateTicketRequest
	if !bindJSON(c, log, &req) {
		return
	}

	ticket, err := ctrl.supportService.CreateTicket(actor, req.Subject, req.Message)
	if err != nil {
		respondServiceError(c, log, err, "create ticket")
		return
	}

	log.Info("Support ticket created", map[string]interface{}{
		"ticket_id": ticket.ID,
		"user_id":   actor.UserID,
	})

	c.JSON(http.StatusCreated, gin.H{"ticket": ticket})
}

// GET /api/v1/support/tickets/:id
func (ctrl *SupportController) GetTicket(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	ticket, err := ctrl.supportService.GetTicket(id, actor)
	if err != nil {
		respondServiceError(c, log, err, "get ticket")
		return
	}

	c.JSON(http.StatusOK, gin.H{"ticket": ticket})
}

// AddMessage appends to the thread and pushes it to live subscribers
// POST /api/v1/support/tickets/:id
func (ctrl *SupportController) AddMessage(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req AddMessageRequest
	if !bindJSON(c, log, &req) {
		return
	}

	message, err := ctrl.supportService.AddMessage(id, actor, req.Message)
	if err != nil {
		respondServiceError(c, log, err, "create message")
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": message})
}

// PATCH /api/v1/support/tickets/:id
func (ctrl *SupportController) UpdateStatus(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req UpdateTicketStatusRequest
	if !bindJSON(c, log, &req) {
		return
	}

	ticket, err := ctrl.supportService.UpdateStatus(id, actor, req.Status)
	if err != nil {
		respondServiceError(c, log, err, "update ticket")
		return
	}

	c.JSON(http.StatusOK, gin.H{"ticket": ticket})
}

// Stream upgrades to a websocket that receives new messages of the ticket
// GET /api/v1/support/tickets/:id/ws?token=
func (ctrl *SupportController) Stream(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := ctrl.supportService.Authorize(id, actor); err != nil {
		respondServiceError(c, log, err, "subscribe ticket")
		return
	}

	conn, err := ctrl.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// the upgrader has already written the HTTP error
		log.Warn("WebSocket upgrade failed", map[string]interface{}{
			"ticket_id": id,
			"error":     err.Error(),
		})
		return
	}

	ctrl.hub.Serve(conn, actor.UserID, id)
}
