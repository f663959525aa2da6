package controller

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/volunteerhub/portal-backend/internal/app/model"
	"github.com/volunteerhub/portal-backend/internal/app/service"
	apperrors "github.com/volunteerhub/portal-backend/internal/errors"
	"github.com/volunteerhub/portal-backend/internal/middleware"
)

type NGOController struct {
	ngoService service.NGOService
}

func NewNGOController(ngoService service.NGOService) *NGOController {
	return &NGOController{
		ngoService: ngoService,
	}
}

// NGORequest holds the editable fields. Unknown keys such as id, user_id or
// status are dropped by binding.
type NGORequest struct {
	Name        *string  `json:"name" binding:"omitempty,min=2"`
	Description *string  `json:"description"`
	City        *string  `json:"city"`
	Address     *string  `json:"address"`
	Latitude    *float64 `json:"latitude" binding:"omitempty,min=-90,max=90"`
	Longitude   *float64 `json:"longitude" binding:"omitempty,min=-180,max=180"`
	Categories  []string `json:"categories"`
	Website     *string  `json:"website" binding:"omitempty,url"`
	Email       *string  `json:"email" binding:"omitempty,email"`
	Phone       *string  `json:"phone"`
	Logo        *string  `json:"logo"`
}

func (r NGORequest) input() service.NGOInput {
	return service.NGOInput{
		Name:        r.Name,
		Description: r.Description,
		City:        r.City,
		Address:     r.Address,
		Latitude:    r.Latitude,
		Longitude:   r.Longitude,
		Categories:  r.Categories,
		Website:     r.Website,
		Email:       r.Email,
		Phone:       r.Phone,
		Logo:        r.Logo,
	}
}

type EventRequest struct {
	Title       string     `json:"title" binding:"required,min=3"`
	Description string     `json:"description"`
	City        string     `json:"city"`
	Address     string     `json:"address"`
	StartDate   time.Time  `json:"start_date" binding:"required"`
	EndDate     *time.Time `json:"end_date"`
	Published   bool       `json:"published"`
}

type ProjectRequest struct {
	Title       string `json:"title" binding:"required,min=3"`
	Description string `json:"description"`
}

// List returns approved NGOs. Staff may pass status to review others.
// GET /api/v1/ngos?city=&status=
func (ctrl *NGOController) List(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var (
		ngos []model.NGO
		err  error
	)
	if status := model.NGOStatus(c.Query("status")); status != "" && staffViewer(c) {
		ngos, err = ctrl.ngoService.ListByStatus(status)
	} else {
		ngos, err = ctrl.ngoService.ListApproved(c.Query("city"))
	}
	if err != nil {
		respondServiceError(c, log, err, "list ngos")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"ngos":  ngos,
		"count": len(ngos),
	})
}

// Get returns an NGO with its upcoming events and projects
// GET /api/v1/ngos/:id
func (ctrl *NGOController) Get(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	ngo, err := ctrl.ngoService.GetDetails(id, optionalActor(c))
	if err != nil {
		respondServiceError(c, log, err, "get ngo")
		return
	}

	c.JSON(http.StatusOK, gin.H{"ngo": ngo})
}

// Register submits the caller's organization for moderation
// POST /api/v1/ngos
func (ctrl *NGOController) Register(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	var req NGORequest
	if !bindJSON(c, log, &req) {
		return
	}
	if req.Name == nil {
		apperrors.RespondWithValidationError(c, map[string]string{"name": "Укажите название организации"})
		return
	}

	ngo, err := ctrl.ngoService.Register(actor, req.input())
	if err != nil {
		respondServiceError(c, log, err, "create ngo")
		return
	}

	log.Info("NGO submitted for moderation", map[string]interface{}{
		"ngo_id":  ngo.ID,
		"user_id": actor.UserID,
	})

	c.JSON(http.StatusCreated, gin.H{"ngo": ngo})
}

// PATCH /api/v1/ngos/:id
func (ctrl *NGOController) Update(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req NGORequest
	if !bindJSON(c, log, &req) {
		return
	}

	ngo, err := ctrl.ngoService.Update(id, actor, req.input())
	if err != nil {
		respondServiceError(c, log, err, "update ngo")
		return
	}

	c.JSON(http.StatusOK, gin.H{"ngo": ngo})
}

// DELETE /api/v1/ngos/:id
func (ctrl *NGOController) Delete(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := ctrl.ngoService.Delete(id); err != nil {
		respondServiceError(c, log, err, "delete ngo")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Организация удалена"})
}

// POST /api/v1/ngos/:id/approve
func (ctrl *NGOController) Approve(c *gin.Context) {
	ctrl.moderate(c, ctrl.ngoService.Approve, "approve ngo")
}

// POST /api/v1/ngos/:id/reject
func (ctrl *NGOController) Reject(c *gin.Context) {
	ctrl.moderate(c, ctrl.ngoService.Reject, "reject ngo")
}

func (ctrl *NGOController) moderate(c *gin.Context, action func(uint) (*model.NGO, error), operation string) {
	log := middleware.GetLoggerFromContext(c)

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	ngo, err := action(id)
	if err != nil {
		respondServiceError(c, log, err, operation)
		return
	}

	log.Info("NGO moderated", map[string]interface{}{
		"ngo_id": ngo.ID,
		"status": ngo.Status,
	})

	c.JSON(http.StatusOK, gin.H{"ngo": ngo})
}

// POST /api/v1/ngos/:id/events
func (ctrl *NGOController) AddEvent(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req EventRequest
	if !bindJSON(c, log, &req) {
		return
	}

	event, err := ctrl.ngoService.AddEvent(id, actor, service.EventInput{
		Title:       req.Title,
		Description: req.Description,
		City:        req.City,
		Address:     req.Address,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		Published:   req.Published,
	})
	if err != nil {
		respondServiceError(c, log, err, "create event")
		return
	}

	c.JSON(http.StatusCreated, gin.H{"event": event})
}

// POST /api/v1/ngos/:id/projects
func (ctrl *NGOController) AddProject(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req ProjectRequest
	if !bindJSON(c, log, &req) {
		return
	}

	project, err := ctrl.ngoService.AddProject(id, actor, service.ProjectInput{
		Title:       req.Title,
		Description: req.Description,
	})
	if err != nil {
		respondServiceError(c, log, err, "create project")
		return
	}

	c.JSON(http.StatusCreated, gin.H{"project": project})
}

// UpcomingEvents lists published events that have not started yet
// GET /api/v1/events?city=&limit=
func (ctrl *NGOController) UpcomingEvents(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	limit, _ := strconv.Atoi(c.Query("limit"))
	events, err := ctrl.ngoService.UpcomingEvents(c.Query("city"), limit)
	if err != nil {
		respondServiceError(c, log, err, "list events")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"events": events,
		"count":  len(events),
	})
}
