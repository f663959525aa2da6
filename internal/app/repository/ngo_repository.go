package repository

import (
	"time"

	"github.com/volunteerhub/portal-backend/internal/app/model"
	"github.com/volunteerhub/portal-backend/pkg/logger"
	"gorm.io/gorm"
)

type NGOFilter struct {
	City   string
	Status model.NGOStatus // empty means any status
}

type NGORepository interface {
	Create(ngo *model.NGO) error
	FindByID(id uint) (*model.NGO, error)
	// FindByIDWithDetails loads published events starting at or after from and all projects.
	FindByIDWithDetails(id uint, from time.Time) (*model.NGO, error)
	FindByName(name string) (*model.NGO, error)
	FindWithFilter(filter NGOFilter) ([]model.NGO, error)
	Update(ngo *model.NGO) error
	UpdateStatus(id uint, status model.NGOStatus) error
	Delete(id uint) error
	CreateEvent(event *model.Event) error
	CreateProject(project *model.Project) error
	FindUpcomingEvents(from time.Time, city string, limit int) ([]model.Event, error)
}

type ngoRepository struct {
	db *gorm.DB
}

func NewNGORepository(db *gorm.DB) NGORepository {
	return &ngoRepository{db: db}
}

func (r *ngoRepository) Create(ngo *model.NGO) error {
	logger.Debug("Creating NGO in database", map[string]interface{}{
		"name": ngo.Name,
	})

	if err := r.db.Omit("User").Create(ngo).Error; err != nil {
		logger.Error("Failed to create NGO in database", err, map[string]interface{}{
			"name": ngo.Name,
		})
		return err
	}
	return nil
}

func (r *ngoRepository) FindByID(id uint) (*model.NGO, error) {
	var ngo model.NGO
	if err := r.db.First(&ngo, id).Error; err != nil {
		logger.Debug("NGO not found by ID in database", map[string]interface{}{
			"ngo_id": id,
		})
		return nil, err
	}
	return &ngo, nil
}

func (r *ngoRepository) FindByIDWithDetails(id uint, from time.Time) (*model.NGO, error) {
	logger.Debug("Finding NGO with events and projects", map[string]interface{}{
		"ngo_id": id,
	})

	var ngo model.NGO
	err := r.db.
		Preload("Events", func(db *gorm.DB) *gorm.DB {
			return db.Where("status = ? AND start_date >= ?", model.EventStatusPublished, from).
				Order("start_date ASC")
		}).
		Preload("Projects", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at DESC")
		}).
		First(&ngo, id).Error
	if err != nil {
		return nil, err
	}
	return &ngo, nil
}

func (r *ngoRepository) FindByName(name string) (*model.NGO, error) {
	var ngo model.NGO
	if err := r.db.Where("name = ?", name).First(&ngo).Error; err != nil {
		return nil, err
	}
	return &ngo, nil
}

func (r *ngoRepository) FindWithFilter(filter NGOFilter) ([]model.NGO, error) {
	logger.Debug("Finding NGOs with filter", map[string]interface{}{
		"city":   filter.City,
		"status": filter.Status,
	})

	query := r.db.Model(&model.NGO{})
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.City != "" {
		query = query.Where("city = ?", filter.City)
	}

	var ngos []model.NGO
	if err := query.Order("name ASC").Find(&ngos).Error; err != nil {
		logger.Error("Failed to find NGOs with filter", err)
		return nil, err
	}
	return ngos, nil
}

func (r *ngoRepository) Update(ngo *model.NGO) error {
	logger.Debug("Updating NGO in database", map[string]interface{}{
		"ngo_id": ngo.ID,
	})

	if err := r.db.Omit("User", "Events", "Projects").Save(ngo).Error; err != nil {
		logger.Error("Failed to update NGO in database", err, map[string]interface{}{
			"ngo_id": ngo.ID,
		})
		return err
	}
	return nil
}

func (r *ngoRepository) UpdateStatus(id uint, status model.NGOStatus) error {
	result := r.db.Model(&model.NGO{}).Where("id = ?", id).Update("status", status)
	if result.Error != nil {
		logger.Error("Failed to update NGO status in database", result.Error, map[string]interface{}{
			"ngo_id": id,
			"status": status,
		})
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Delete removes the NGO together with its events and projects.
func (r *ngoRepository) Delete(id uint) error {
	logger.Debug("Deleting NGO from database", map[string]interface{}{
		"ngo_id": id,
	})

	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("ngo_id = ?", id).Delete(&model.Event{}).Error; err != nil {
			return err
		}
		if err := tx.Where("ngo_id = ?", id).Delete(&model.Project{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&model.NGO{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if err != nil {
		logger.Error("Failed to delete NGO from database", err, map[string]interface{}{
			"ngo_id": id,
		})
	}
	return err
}

func (r *ngoRepository) CreateEvent(event *model.Event) error {
	if err := r.db.Omit("NGO").Create(event).Error; err != nil {
		logger.Error("Failed to create event in database", err, map[string]interface{}{
			"ngo_id": event.NGOID,
		})
		return err
	}
	return nil
}

func (r *ngoRepository) CreateProject(project *model.Project) error {
	if err := r.db.Create(project).Error; err != nil {
		logger.Error("Failed to create project in database", err, map[string]interface{}{
			"ngo_id": project.NGOID,
		})
		return err
	}
	return nil
}

func (r *ngoRepository) FindUpcomingEvents(from time.Time, city string, limit int) ([]model.Event, error) {
	query := r.db.Preload("NGO").
		Where("status = ? AND start_date >= ?", model.EventStatusPublished, from)
	if city != "" {
		query = query.Where("city = ?", city)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}

	var events []model.Event
	if err := query.Order("start_date ASC").Find(&events).Error; err != nil {
		logger.Error("Failed to find upcoming events", err)
		return nil, err
	}
	return events, nil
}
