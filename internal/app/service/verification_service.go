package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/volunteerhub/portal-backend/internal/app/model"
	"github.com/volunteerhub/portal-backend/internal/app/repository"
	"github.com/volunteerhub/portal-backend/pkg/logger"
	"github.com/volunteerhub/portal-backend/pkg/util"
	"gorm.io/gorm"
)

var (
	// ErrCodeNotFound covers wrong, unknown and already consumed codes alike.
	ErrCodeNotFound = errors.New("verification code not found")
	ErrCodeExpired  = errors.New("verification code expired")
)

// VerificationPurpose scopes a code to one workflow.
type VerificationPurpose string

const (
	PurposeEmail         VerificationPurpose = "email"
	PurposePasswordReset VerificationPurpose = "password-reset"
	PurposeEmailChange   VerificationPurpose = "email-change"
	// PurposeNewEmail holds the requested address during an email change.
	PurposeNewEmail VerificationPurpose = "new-email"
)

const (
	DefaultCodeTTL = 15 * time.Minute
	// DefaultRetention keeps expired codes long enough to answer ErrCodeExpired.
	DefaultRetention = time.Hour
)

// Identifier builds the storage key of a (purpose, email) slot.
func Identifier(purpose VerificationPurpose, email string) string {
	return fmt.Sprintf("%s:%s", purpose, strings.ToLower(strings.TrimSpace(email)))
}

type VerificationService interface {
	// Issue replaces any code of the slot with a fresh one and returns it.
	Issue(email string, purpose VerificationPurpose) (string, error)
	// Verify consumes the code. Found codes are deleted whether or not they expired.
	Verify(email, code string, purpose VerificationPurpose) error
	StorePending(email string, purpose VerificationPurpose, value string) error
	TakePending(email string, purpose VerificationPurpose) (string, error)
	PurgeExpired() (int64, error)
}

type verificationService struct {
	tokenRepo repository.VerificationTokenRepository
	ttl       time.Duration
	retention time.Duration
	now       func() time.Time
	generate  func() (string, error)
}

func NewVerificationService(tokenRepo repository.VerificationTokenRepository, ttl, retention time.Duration) VerificationService {
	if ttl <= 0 {
		ttl = DefaultCodeTTL
	}
	if retention <= 0 {
		retention = DefaultRetention
	}
	return &verificationService{
		tokenRepo: tokenRepo,
		ttl:       ttl,
		retention: retention,
		now:       time.Now,
		generate:  util.GenerateVerificationCode,
	}
}

func (s *verificationService) Issue(email string, purpose VerificationPurpose) (string, error) {
	identifier := Identifier(purpose, email)

	code, err := s.generate()
	if err != nil {
		logger.Error("Failed to generate verification code", err, map[string]interface{}{
			"identifier": identifier,
		})
		return "", err
	}

	token := &model.VerificationToken{
		Identifier: identifier,
		Token:      code,
		Expires:    s.now().Add(s.ttl),
	}
	if err := s.tokenRepo.Replace(token); err != nil {
		logger.Error("Failed to store verification code", err, map[string]interface{}{
			"identifier": identifier,
		})
		return "", err
	}

	logger.Info("Verification code issued", map[string]interface{}{
		"identifier": identifier,
		"expires":    token.Expires,
	})
	return code, nil
}

func (s *verificationService) Verify(email, code string, purpose VerificationPurpose) error {
	identifier := Identifier(purpose, email)

	record, err := s.tokenRepo.Find(identifier, code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Verification failed: code not found", map[string]interface{}{
				"identifier": identifier,
			})
			return ErrCodeNotFound
		}
		return err
	}

	removed, err := s.tokenRepo.Delete(identifier, code)
	if err != nil {
		return err
	}

	if record.Expired(s.now()) {
		logger.Warn("Verification failed: code expired", map[string]interface{}{
			"identifier": identifier,
			"expires":    record.Expires,
		})
		return ErrCodeExpired
	}
	if !removed {
		// consumed by a concurrent call between Find and Delete
		logger.Warn("Verification failed: code already consumed", map[string]interface{}{
			"identifier": identifier,
		})
		return ErrCodeNotFound
	}

	logger.Info("Verification code accepted", map[string]interface{}{
		"identifier": identifier,
	})
	return nil
}

func (s *verificationService) StorePending(email string, purpose VerificationPurpose, value string) error {
	token := &model.VerificationToken{
		Identifier: Identifier(purpose, email),
		Token:      value,
		Expires:    s.now().Add(s.ttl),
	}
	if err := s.tokenRepo.Replace(token); err != nil {
		logger.Error("Failed to store pending value", err, map[string]interface{}{
			"identifier": token.Identifier,
		})
		return err
	}
	return nil
}

func (s *verificationService) TakePending(email string, purpose VerificationPurpose) (string, error) {
	identifier := Identifier(purpose, email)

	record, err := s.tokenRepo.FindByIdentifier(identifier)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrCodeNotFound
		}
		return "", err
	}

	if err := s.tokenRepo.DeleteByIdentifier(identifier); err != nil {
		return "", err
	}
	if record.Expired(s.now()) {
		return "", ErrCodeExpired
	}
	return record.Token, nil
}

// PurgeExpired deletes codes that expired more than the retention window ago.
func (s *verificationService) PurgeExpired() (int64, error) {
	deleted, err := s.tokenRepo.DeleteExpired(s.now().Add(-s.retention))
	if err != nil {
		logger.Error("Failed to purge expired verification tokens", err)
		return 0, err
	}
	if deleted > 0 {
		logger.Info("Expired verification tokens purged", map[string]interface{}{
			"count": deleted,
		})
	}
	return deleted, nil
}
