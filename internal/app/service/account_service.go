package service

import (
	"errors"
	"time"

	"github.com/volunteerhub/portal-backend/internal/app/model"
	"github.com/volunteerhub/portal-backend/internal/app/repository"
	"github.com/volunteerhub/portal-backend/pkg/logger"
	"github.com/volunteerhub/portal-backend/pkg/mailer"
	"github.com/volunteerhub/portal-backend/pkg/util"
	"gorm.io/gorm"
)

var (
	ErrInvalidPassword    = errors.New("current password is incorrect")
	ErrPasswordNotSet     = errors.New("account has no password")
	ErrEmailUnchanged     = errors.New("new email matches the current one")
	ErrEmailChangeExpired = errors.New("email change session expired")
)

type UpdateProfileInput struct {
	Name  *string
	City  *string
	Image *string
}

// AccountService covers changes a signed-in user makes to their own account.
type AccountService interface {
	GetProfile(userID uint) (*model.User, error)
	UpdateProfile(userID uint, input UpdateProfileInput) (*model.User, error)
	RequestPasswordChange(userID uint, currentPassword string) error
	ChangePassword(userID uint, code, newPassword string) error
	RequestEmailChange(userID uint, newEmail string) error
	ConfirmEmailChange(userID uint, code string) (*model.User, error)
}

type accountService struct {
	userRepo     repository.UserRepository
	verification VerificationService
	mail         mailer.Mailer
	templates    mailer.Templates
}

func NewAccountService(
	userRepo repository.UserRepository,
	verification VerificationService,
	mail mailer.Mailer,
	templates mailer.Templates,
) AccountService {
	return &accountService{
		userRepo:     userRepo,
		verification: verification,
		mail:         mail,
		templates:    templates,
	}
}

func (s *accountService) user(userID uint) (*model.User, error) {
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *accountService) GetProfile(userID uint) (*model.User, error) {
	return s.user(userID)
}

func (s *accountService) UpdateProfile(userID uint, input UpdateProfileInput) (*model.User, error) {
	user, err := s.user(userID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		user.Name = *input.Name
	}
	if input.City != nil {
		user.City = *input.City
	}
	if input.Image != nil {
		user.Image = *input.Image
	}

	if err := s.userRepo.Update(user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *accountService) RequestPasswordChange(userID uint, currentPassword string) error {
	user, err := s.user(userID)
	if err != nil {
		return err
	}
	if !user.HasPassword() {
		return ErrPasswordNotSet
	}
	if !util.VerifyPassword(user.PasswordHash, currentPassword) {
		logger.Warn("Password change rejected: wrong current password", map[string]interface{}{
			"user_id": userID,
		})
		return ErrInvalidPassword
	}

	code, err := s.verification.Issue(user.Email, PurposePasswordReset)
	if err != nil {
		return err
	}

	s.mail.SendAsync(s.templates.PasswordChangeConfirmation(user.Email, code))
	return nil
}

func (s *accountService) ChangePassword(userID uint, code, newPassword string) error {
	user, err := s.user(userID)
	if err != nil {
		return err
	}

	if err := s.verification.Verify(user.Email, code, PurposePasswordReset); err != nil {
		return err
	}

	hashedPassword, err := util.HashPassword(newPassword)
	if err != nil {
		return err
	}
	if err := s.userRepo.UpdatePassword(user.ID, hashedPassword); err != nil {
		return err
	}

	logger.Info("Password changed", map[string]interface{}{
		"user_id": user.ID,
	})
	s.mail.SendAsync(s.templates.PasswordChanged(user.Email, time.Now()))
	return nil
}

func (s *accountService) RequestEmailChange(userID uint, newEmail string) error {
	newEmail = normalizeEmail(newEmail)

	user, err := s.user(userID)
	if err != nil {
		return err
	}
	if newEmail == user.Email {
		return ErrEmailUnchanged
	}

	existing, err := s.userRepo.FindByEmail(newEmail)
	if err == nil && existing.ID != user.ID {
		return ErrEmailAlreadyExists
	}
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	code, err := s.verification.Issue(user.Email, PurposeEmailChange)
	if err != nil {
		return err
	}
	if err := s.verification.StorePending(user.Email, PurposeNewEmail, newEmail); err != nil {
		return err
	}

	logger.Info("Email change requested", map[string]interface{}{
		"user_id":   user.ID,
		"new_email": newEmail,
	})
	// the code goes to the current address, proving control of the account
	s.mail.SendAsync(s.templates.EmailChangeCode(user.Email, newEmail, code))
	return nil
}

func (s *accountService) ConfirmEmailChange(userID uint, code string) (*model.User, error) {
	user, err := s.user(userID)
	if err != nil {
		return nil, err
	}

	if err := s.verification.Verify(user.Email, code, PurposeEmailChange); err != nil {
		return nil, err
	}

	newEmail, err := s.verification.TakePending(user.Email, PurposeNewEmail)
	if err != nil {
		if errors.Is(err, ErrCodeNotFound) || errors.Is(err, ErrCodeExpired) {
			return nil, ErrEmailChangeExpired
		}
		return nil, err
	}

	if existing, err := s.userRepo.FindByEmail(newEmail); err == nil && existing.ID != user.ID {
		return nil, ErrEmailAlreadyExists
	}

	if err := s.userRepo.UpdateEmail(user.ID, newEmail); err != nil {
		return nil, err
	}

	logger.Info("Email changed", map[string]interface{}{
		"user_id": user.ID,
	})
	user.Email = newEmail
	return user, nil
}
