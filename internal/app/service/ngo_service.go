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
	ErrNGONotFound      = errors.New("NGO not found")
	ErrNGOAlreadyExists = errors.New("account already owns an NGO")
	ErrNotNGOAccount    = errors.New("only NGO accounts can register an organization")
	ErrInvalidEventDate = errors.New("event end date precedes its start")
)

const defaultUpcomingLimit = 20

// NGOInput carries the editable NGO fields. Nil fields are left untouched
// on update; ownership, status and timestamps are never taken from input.
type NGOInput struct {
	Name        *string
	Description *string
	City        *string
	Address     *string
	Latitude    *float64
	Longitude   *float64
	Categories  []string
	Website     *string
	Email       *string
	Phone       *string
	Logo        *string
}

type EventInput struct {
	Title       string
	Description string
	City        string
	Address     string
	StartDate   time.Time
	EndDate     *time.Time
	Published   bool
}

type ProjectInput struct {
	Title       string
	Description string
}

// ImportRecord is one NGO read from a spreadsheet.
type ImportRecord struct {
	Name        string
	Description string
	City        string
	Address     string
	Latitude    *float64
	Longitude   *float64
	Categories  []string
	Website     string
	Email       string
	Phone       string
}

type ImportResult struct {
	Created int `json:"created"`
	Skipped int `json:"skipped"`
}

type NGOService interface {
	ListApproved(city string) ([]model.NGO, error)
	ListByStatus(status model.NGOStatus) ([]model.NGO, error)
	// GetDetails hides unapproved NGOs from everyone but the owner and staff.
	GetDetails(id uint, viewer *Actor) (*model.NGO, error)
	Register(actor Actor, input NGOInput) (*model.NGO, error)
	Update(id uint, actor Actor, input NGOInput) (*model.NGO, error)
	Delete(id uint) error
	Approve(id uint) (*model.NGO, error)
	Reject(id uint) (*model.NGO, error)
	AddEvent(ngoID uint, actor Actor, input EventInput) (*model.Event, error)
	AddProject(ngoID uint, actor Actor, input ProjectInput) (*model.Project, error)
	UpcomingEvents(city string, limit int) ([]model.Event, error)
	Import(records []ImportRecord) (*ImportResult, error)
}

type ngoService struct {
	ngoRepo   repository.NGORepository
	userRepo  repository.UserRepository
	mail      mailer.Mailer
	templates mailer.Templates
	now       func() time.Time
}

func NewNGOService(
	ngoRepo repository.NGORepository,
	userRepo repository.UserRepository,
	mail mailer.Mailer,
	templates mailer.Templates,
) NGOService {
	return &ngoService{
		ngoRepo:   ngoRepo,
		userRepo:  userRepo,
		mail:      mail,
		templates: templates,
		now:       time.Now,
	}
}

func (s *ngoService) find(id uint) (*model.NGO, error) {
	ngo, err := s.ngoRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNGONotFound
		}
		return nil, err
	}
	return ngo, nil
}

func canManage(ngo *model.NGO, actor Actor) bool {
	if actor.IsStaff() {
		return true
	}
	return ngo.UserID != nil && *ngo.UserID == actor.UserID
}

func (s *ngoService) ListApproved(city string) ([]model.NGO, error) {
	return s.ngoRepo.FindWithFilter(repository.NGOFilter{
		City:   strings.TrimSpace(city),
		Status: model.NGOStatusApproved,
	})
}

func (s *ngoService) ListByStatus(status model.NGOStatus) ([]model.NGO, error) {
	return s.ngoRepo.FindWithFilter(repository.NGOFilter{Status: status})
}

func (s *ngoService) GetDetails(id uint, viewer *Actor) (*model.NGO, error) {
	ngo, err := s.ngoRepo.FindByIDWithDetails(id, s.now())
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNGONotFound
		}
		return nil, err
	}

	if ngo.Status != model.NGOStatusApproved && (viewer == nil || !canManage(ngo, *viewer)) {
		return nil, ErrNGONotFound
	}
	return ngo, nil
}

func applyNGOInput(ngo *model.NGO, input NGOInput) {
	if input.Name != nil {
		ngo.Name = strings.TrimSpace(*input.Name)
	}
	if input.Description != nil {
		ngo.Description = *input.Description
	}
	if input.City != nil {
		ngo.City = strings.TrimSpace(*input.City)
	}
	if input.Address != nil {
		ngo.Address = *input.Address
	}
	if input.Latitude != nil {
		ngo.Latitude = input.Latitude
	}
	if input.Longitude != nil {
		ngo.Longitude = input.Longitude
	}
	if input.Categories != nil {
		ngo.Categories = input.Categories
	}
	if input.Website != nil {
		ngo.Website = *input.Website
	}
	if input.Email != nil {
		ngo.Email = *input.Email
	}
	if input.Phone != nil {
		ngo.Phone = *input.Phone
	}
	if input.Logo != nil {
		ngo.Logo = *input.Logo
	}
}

func (s *ngoService) Register(actor Actor, input NGOInput) (*model.NGO, error) {
	if actor.Role != model.RoleNGO {
		return nil, ErrNotNGOAccount
	}

	owner, err := s.userRepo.FindByID(actor.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if owner.NGO != nil {
		return nil, ErrNGOAlreadyExists
	}

	ownerID := actor.UserID
	ngo := &model.NGO{
		Status: model.NGOStatusPending,
		UserID: &ownerID,
	}
	applyNGOInput(ngo, input)
	if ngo.Categories == nil {
		ngo.Categories = []string{}
	}

	if err := s.ngoRepo.Create(ngo); err != nil {
		return nil, err
	}

	logger.Info("NGO registered", map[string]interface{}{
		"ngo_id":  ngo.ID,
		"user_id": actor.UserID,
	})
	return ngo, nil
}

func (s *ngoService) Update(id uint, actor Actor, input NGOInput) (*model.NGO, error) {
	ngo, err := s.find(id)
	if err != nil {
		return nil, err
	}
	if !canManage(ngo, actor) {
		logger.Warn("NGO update rejected", map[string]interface{}{
			"ngo_id":  id,
			"user_id": actor.UserID,
		})
		return nil, ErrForbidden
	}

	applyNGOInput(ngo, input)
	if err := s.ngoRepo.Update(ngo); err != nil {
		return nil, err
	}
	return ngo, nil
}

func (s *ngoService) Delete(id uint) error {
	if err := s.ngoRepo.Delete(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNGONotFound
		}
		return err
	}

	logger.Info("NGO deleted", map[string]interface{}{
		"ngo_id": id,
	})
	return nil
}

func (s *ngoService) setStatus(id uint, status model.NGOStatus) (*model.NGO, error) {
	if err := s.ngoRepo.UpdateStatus(id, status); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNGONotFound
		}
		return nil, err
	}
	return s.find(id)
}

func (s *ngoService) Approve(id uint) (*model.NGO, error) {
	ngo, err := s.setStatus(id, model.NGOStatusApproved)
	if err != nil {
		return nil, err
	}

	logger.Info("NGO approved", map[string]interface{}{
		"ngo_id": id,
	})

	if ngo.UserID != nil {
		owner, err := s.userRepo.FindByID(*ngo.UserID)
		if err != nil {
			logger.Warn("NGO approved without owner notification", map[string]interface{}{
				"ngo_id": id,
				"error":  err.Error(),
			})
			return ngo, nil
		}
		s.mail.SendAsync(s.templates.NGOApproved(owner.Email, ngo.Name))
	}
	return ngo, nil
}

func (s *ngoService) Reject(id uint) (*model.NGO, error) {
	return s.setStatus(id, model.NGOStatusRejected)
}

func (s *ngoService) AddEvent(ngoID uint, actor Actor, input EventInput) (*model.Event, error) {
	ngo, err := s.find(ngoID)
	if err != nil {
		return nil, err
	}
	if !canManage(ngo, actor) {
		return nil, ErrForbidden
	}
	if input.EndDate != nil && input.EndDate.Before(input.StartDate) {
		return nil, ErrInvalidEventDate
	}

	status := model.EventStatusDraft
	if input.Published {
		status = model.EventStatusPublished
	}
	city := input.City
	if city == "" {
		city = ngo.City
	}

	event := &model.Event{
		NGOID:       ngo.ID,
		Title:       strings.TrimSpace(input.Title),
		Description: input.Description,
		City:        city,
		Address:     input.Address,
		StartDate:   input.StartDate,
		EndDate:     input.EndDate,
		Status:      status,
	}
	if err := s.ngoRepo.CreateEvent(event); err != nil {
		return nil, err
	}
	return event, nil
}

func (s *ngoService) AddProject(ngoID uint, actor Actor, input ProjectInput) (*model.Project, error) {
	ngo, err := s.find(ngoID)
	if err != nil {
		return nil, err
	}
	if !canManage(ngo, actor) {
		return nil, ErrForbidden
	}

	project := &model.Project{
		NGOID:       ngo.ID,
		Title:       strings.TrimSpace(input.Title),
		Description: input.Description,
	}
	if err := s.ngoRepo.CreateProject(project); err != nil {
		return nil, err
	}
	return project, nil
}

func (s *ngoService) UpcomingEvents(city string, limit int) ([]model.Event, error) {
	if limit <= 0 {
		limit = defaultUpcomingLimit
	}
	return s.ngoRepo.FindUpcomingEvents(s.now(), strings.TrimSpace(city), limit)
}

// Import creates approved NGOs from records, skipping names already present.
func (s *ngoService) Import(records []ImportRecord) (*ImportResult, error) {
	result := &ImportResult{}

	for _, record := range records {
		name := strings.TrimSpace(record.Name)
		if name == "" {
			result.Skipped++
			continue
		}

		_, err := s.ngoRepo.FindByName(name)
		if err == nil {
			result.Skipped++
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return result, err
		}

		categories := record.Categories
		if categories == nil {
			categories = []string{}
		}
		ngo := &model.NGO{
			Name:        name,
			Description: record.Description,
			City:        strings.TrimSpace(record.City),
			Address:     record.Address,
			Latitude:    record.Latitude,
			Longitude:   record.Longitude,
			Categories:  categories,
			Website:     record.Website,
			Email:       record.Email,
			Phone:       record.Phone,
			Status:      model.NGOStatusApproved,
		}
		if err := s.ngoRepo.Create(ngo); err != nil {
			return result, err
		}
		result.Created++
	}

	logger.Info("NGO import finished", map[string]interface{}{
		"created": result.Created,
		"skipped": result.Skipped,
	})
	return result, nil
}
