package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/volunteerhub/portal-backend/config"
	"github.com/volunteerhub/portal-backend/internal/app/model"
	"github.com/volunteerhub/portal-backend/internal/app/repository"
	"github.com/volunteerhub/portal-backend/pkg/logger"
	"github.com/volunteerhub/portal-backend/pkg/mailer"
	"github.com/volunteerhub/portal-backend/pkg/util"
	"github.com/volunteerhub/portal-backend/pkg/vkid"
	"gorm.io/gorm"
)

var (
	ErrEmailAlreadyExists  = errors.New("email already exists")
	ErrInvalidCredentials  = errors.New("invalid email or password")
	ErrUserNotFound        = errors.New("user not found")
	ErrInvalidRole         = errors.New("role is not available at signup")
	ErrProviderDisabled    = errors.New("sign-in provider is not enabled")
	ErrVKAuthFailed        = errors.New("failed to get user info from VK")
	ErrVKUserMismatch      = errors.New("vk access token does not belong to the user")
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
)

// VKProfileFetcher resolves a VK ID access token to a profile.
type VKProfileFetcher interface {
	GetUser(ctx context.Context, accessToken, userID string) (*vkid.User, error)
}

type SignupInput struct {
	Email    string
	Password string
	Name     string
	Role     model.UserRole
	City     string
}

type AuthService interface {
	// Signup mails a registration code; the account is created by VerifyEmail.
	Signup(input SignupInput) error
	VerifyEmail(input SignupInput, code string) (*model.User, *util.TokenPair, error)
	Login(email, password string) (*model.User, *util.TokenPair, error)
	VKSignIn(ctx context.Context, accessToken, vkUserID string) (*model.User, *util.TokenPair, error)
	ForgotPassword(email string) error
	ResetPassword(email, code, newPassword string) error
	Refresh(refreshToken string) (*util.TokenPair, error)
	GetUserByID(id uint) (*model.User, error)
	Providers() []string
}

type authService struct {
	userRepo      repository.UserRepository
	verification  VerificationService
	mail          mailer.Mailer
	templates     mailer.Templates
	vk            VKProfileFetcher
	oauth         config.OAuthConfig
	jwtSecret     string
	accessExpiry  time.Duration
	refreshExpiry time.Duration
}

func NewAuthService(
	userRepo repository.UserRepository,
	verification VerificationService,
	mail mailer.Mailer,
	templates mailer.Templates,
	vk VKProfileFetcher,
	oauth config.OAuthConfig,
	jwtCfg config.JWTConfig,
) AuthService {
	return &authService{
		userRepo:      userRepo,
		verification:  verification,
		mail:          mail,
		templates:     templates,
		vk:            vk,
		oauth:         oauth,
		jwtSecret:     jwtCfg.Secret,
		accessExpiry:  jwtCfg.AccessTokenExpiry,
		refreshExpiry: jwtCfg.RefreshTokenExpiry,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// emailTaken reports whether an account already uses email.
func (s *authService) emailTaken(email string) (bool, error) {
	_, err := s.userRepo.FindByEmail(email)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	logger.Error("Failed to check existing user", err, map[string]interface{}{
		"email": email,
	})
	return false, err
}

func (s *authService) Signup(input SignupInput) error {
	email := normalizeEmail(input.Email)
	logger.Info("Attempting user signup", map[string]interface{}{
		"email": email,
		"role":  input.Role,
	})

	if input.Role == "" {
		input.Role = model.RoleVolunteer
	}
	if !input.Role.SignupRole() {
		return ErrInvalidRole
	}

	taken, err := s.emailTaken(email)
	if err != nil {
		return err
	}
	if taken {
		logger.Warn("Signup failed: email already exists", map[string]interface{}{
			"email": email,
		})
		return ErrEmailAlreadyExists
	}

	code, err := s.verification.Issue(email, PurposeEmail)
	if err != nil {
		return err
	}

	s.mail.SendAsync(s.templates.VerificationCode(email, code, mailer.CodeRegistration))
	return nil
}

func (s *authService) VerifyEmail(input SignupInput, code string) (*model.User, *util.TokenPair, error) {
	email := normalizeEmail(input.Email)

	if input.Role == "" {
		input.Role = model.RoleVolunteer
	}
	if !input.Role.SignupRole() {
		return nil, nil, ErrInvalidRole
	}

	if err := s.verification.Verify(email, code, PurposeEmail); err != nil {
		return nil, nil, err
	}

	taken, err := s.emailTaken(email)
	if err != nil {
		return nil, nil, err
	}
	if taken {
		return nil, nil, ErrEmailAlreadyExists
	}

	hashedPassword, err := util.HashPassword(input.Password)
	if err != nil {
		logger.Error("Failed to hash password", err, map[string]interface{}{
			"email": email,
		})
		return nil, nil, err
	}

	verifiedAt := time.Now()
	user := &model.User{
		Email:           email,
		PasswordHash:    hashedPassword,
		Name:            strings.TrimSpace(input.Name),
		City:            strings.TrimSpace(input.City),
		Role:            input.Role,
		EmailVerifiedAt: &verifiedAt,
	}
	if err := s.userRepo.Create(user); err != nil {
		return nil, nil, err
	}

	tokens, err := s.issueTokens(user)
	if err != nil {
		return nil, nil, err
	}

	logger.Info("User registered successfully", map[string]interface{}{
		"user_id": user.ID,
		"email":   email,
		"role":    user.Role,
	})
	return user, tokens, nil
}

func (s *authService) Login(email, password string) (*model.User, *util.TokenPair, error) {
	email = normalizeEmail(email)
	logger.Info("Login attempt", map[string]interface{}{
		"email": email,
	})

	user, err := s.userRepo.FindByEmail(email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Login failed: user not found", map[string]interface{}{
				"email": email,
			})
			return nil, nil, ErrInvalidCredentials
		}
		return nil, nil, err
	}

	// VK-only accounts have no hash, VerifyPassword rejects them
	if !util.VerifyPassword(user.PasswordHash, password) {
		logger.Warn("Login failed: invalid password", map[string]interface{}{
			"email":   email,
			"user_id": user.ID,
		})
		return nil, nil, ErrInvalidCredentials
	}

	tokens, err := s.issueTokens(user)
	if err != nil {
		return nil, nil, err
	}

	logger.Info("User logged in successfully", map[string]interface{}{
		"user_id": user.ID,
		"role":    user.Role,
	})
	return user, tokens, nil
}

func (s *authService) VKSignIn(ctx context.Context, accessToken, vkUserID string) (*model.User, *util.TokenPair, error) {
	if !s.oauth.Enabled(config.ProviderVK) || s.vk == nil {
		return nil, nil, ErrProviderDisabled
	}

	profile, err := s.vk.GetUser(ctx, accessToken, vkUserID)
	if err != nil {
		logger.Warn("VK sign-in failed", map[string]interface{}{
			"vk_user_id": vkUserID,
			"error":      err.Error(),
		})
		if errors.Is(err, vkid.ErrUserMismatch) {
			return nil, nil, ErrVKUserMismatch
		}
		return nil, nil, errors.Join(ErrVKAuthFailed, err)
	}

	// the account is bound to the id VK resolved from the token, never to the claimed one
	if profile.IDString() != vkUserID {
		logger.Warn("VK profile does not match the claimed user", map[string]interface{}{
			"vk_user_id":    vkUserID,
			"token_user_id": profile.ID,
		})
		return nil, nil, ErrVKUserMismatch
	}
	vkUserID = profile.IDString()

	email := normalizeEmail(profile.Email)
	if email == "" {
		email = vkid.PlaceholderEmail(vkUserID)
	}
	name := profile.FullName()

	user, err := s.userRepo.FindByEmailOrVKID(email, vkUserID)
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		verifiedAt := time.Now()
		vkID := vkUserID
		user = &model.User{
			Email:           email,
			Name:            name,
			Image:           profile.Photo200,
			VKID:            &vkID,
			Role:            model.RoleVolunteer,
			EmailVerifiedAt: &verifiedAt,
		}
		if err := s.userRepo.Create(user); err != nil {
			return nil, nil, err
		}
		logger.Info("User created through VK sign-in", map[string]interface{}{
			"user_id": user.ID,
		})
	case err != nil:
		return nil, nil, err
	default:
		vkID := vkUserID
		user.VKID = &vkID
		if name != "" {
			user.Name = name
		}
		if profile.Photo200 != "" {
			user.Image = profile.Photo200
		}
		if err := s.userRepo.Update(user); err != nil {
			return nil, nil, err
		}
	}

	tokens, err := s.issueTokens(user)
	if err != nil {
		return nil, nil, err
	}
	return user, tokens, nil
}

// ForgotPassword succeeds for unknown addresses so accounts cannot be enumerated.
func (s *authService) ForgotPassword(email string) error {
	email = normalizeEmail(email)

	if _, err := s.userRepo.FindByEmail(email); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Password reset requested for non-existent email", map[string]interface{}{
				"email": email,
			})
			return nil
		}
		return err
	}

	code, err := s.verification.Issue(email, PurposePasswordReset)
	if err != nil {
		return err
	}

	s.mail.SendAsync(s.templates.VerificationCode(email, code, mailer.CodePasswordReset))
	return nil
}

func (s *authService) ResetPassword(email, code, newPassword string) error {
	email = normalizeEmail(email)

	if err := s.verification.Verify(email, code, PurposePasswordReset); err != nil {
		return err
	}

	user, err := s.userRepo.FindByEmail(email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	hashedPassword, err := util.HashPassword(newPassword)
	if err != nil {
		return err
	}
	if err := s.userRepo.UpdatePassword(user.ID, hashedPassword); err != nil {
		return err
	}

	logger.Info("Password reset successful", map[string]interface{}{
		"user_id": user.ID,
	})
	return nil
}

func (s *authService) Refresh(refreshToken string) (*util.TokenPair, error) {
	claims, err := util.ValidateToken(refreshToken, s.jwtSecret)
	if err != nil || !claims.IsRefresh() {
		return nil, ErrInvalidRefreshToken
	}

	user, err := s.GetUserByID(claims.UserID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrInvalidRefreshToken
		}
		return nil, err
	}
	return s.issueTokens(user)
}

func (s *authService) GetUserByID(id uint) (*model.User, error) {
	user, err := s.userRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("User not found", map[string]interface{}{
				"user_id": id,
			})
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *authService) Providers() []string {
	return s.oauth.Names()
}

func (s *authService) issueTokens(user *model.User) (*util.TokenPair, error) {
	tokens, err := util.GenerateTokenPair(
		user.ID,
		user.Email,
		string(user.Role),
		s.jwtSecret,
		s.accessExpiry,
		s.refreshExpiry,
	)
	if err != nil {
		logger.Error("Failed to generate tokens", err, map[string]interface{}{
			"user_id": user.ID,
		})
		return nil, err
	}
	return tokens, nil
}
