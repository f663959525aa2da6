package repository

import (
	"time"

	"github.com/volunteerhub/portal-backend/internal/app/model"
	"github.com/volunteerhub/portal-backend/pkg/logger"
	"gorm.io/gorm"
)

// VerificationTokenRepository stores single-use codes. Lookups that match
// nothing return gorm.ErrRecordNotFound for every implementation.
type VerificationTokenRepository interface {
	Create(token *model.VerificationToken) error
	// Replace removes every token under the identifier and stores token in its place.
	Replace(token *model.VerificationToken) error
	DeleteByIdentifier(identifier string) error
	Find(identifier, token string) (*model.VerificationToken, error)
	FindByIdentifier(identifier string) (*model.VerificationToken, error)
	// Delete reports whether this call removed the record.
	Delete(identifier, token string) (bool, error)
	DeleteExpired(before time.Time) (int64, error)
}

type verificationTokenRepository struct {
	db *gorm.DB
}

func NewVerificationTokenRepository(db *gorm.DB) VerificationTokenRepository {
	return &verificationTokenRepository{db: db}
}

func (r *verificationTokenRepository) Create(token *model.VerificationToken) error {
	logger.Debug("Creating verification token in database", map[string]interface{}{
		"identifier": token.Identifier,
	})

	if err := r.db.Create(token).Error; err != nil {
		logger.Error("Failed to create verification token in database", err, map[string]interface{}{
			"identifier": token.Identifier,
		})
		return err
	}
	return nil
}

func (r *verificationTokenRepository) Replace(token *model.VerificationToken) error {
	logger.Debug("Replacing verification tokens in database", map[string]interface{}{
		"identifier": token.Identifier,
	})

	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("identifier = ?", token.Identifier).Delete(&model.VerificationToken{}).Error; err != nil {
			return err
		}
		return tx.Create(token).Error
	})
	if err != nil {
		logger.Error("Failed to replace verification tokens in database", err, map[string]interface{}{
			"identifier": token.Identifier,
		})
		return err
	}
	return nil
}

func (r *verificationTokenRepository) DeleteByIdentifier(identifier string) error {
	logger.Debug("Deleting verification tokens by identifier", map[string]interface{}{
		"identifier": identifier,
	})

	if err := r.db.Where("identifier = ?", identifier).Delete(&model.VerificationToken{}).Error; err != nil {
		logger.Error("Failed to delete verification tokens by identifier", err, map[string]interface{}{
			"identifier": identifier,
		})
		return err
	}
	return nil
}

func (r *verificationTokenRepository) Find(identifier, token string) (*model.VerificationToken, error) {
	var record model.VerificationToken
	if err := r.db.Where("identifier = ? AND token = ?", identifier, token).First(&record).Error; err != nil {
		logger.Debug("Verification token not found in database", map[string]interface{}{
			"identifier": identifier,
		})
		return nil, err
	}
	return &record, nil
}

func (r *verificationTokenRepository) FindByIdentifier(identifier string) (*model.VerificationToken, error) {
	var record model.VerificationToken
	err := r.db.Where("identifier = ?", identifier).
		Order("created_at DESC").
		First(&record).Error
	if err != nil {
		logger.Debug("Verification token not found by identifier", map[string]interface{}{
			"identifier": identifier,
		})
		return nil, err
	}
	return &record, nil
}

func (r *verificationTokenRepository) Delete(identifier, token string) (bool, error) {
	result := r.db.Where("identifier = ? AND token = ?", identifier, token).Delete(&model.VerificationToken{})
	if result.Error != nil {
		logger.Error("Failed to delete verification token from database", result.Error, map[string]interface{}{
			"identifier": identifier,
		})
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *verificationTokenRepository) DeleteExpired(before time.Time) (int64, error) {
	logger.Debug("Deleting expired verification tokens from database")

	result := r.db.Where("expires < ?", before).Delete(&model.VerificationToken{})
	if result.Error != nil {
		logger.Error("Failed to delete expired verification tokens from database", result.Error, nil)
		return 0, result.Error
	}

	logger.Debug("Expired verification tokens deleted from database", map[string]interface{}{
		"count": result.RowsAffected,
	})
	return result.RowsAffected, nil
}
