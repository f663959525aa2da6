package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/volunteerhub/portal-backend/internal/app/model"
	"github.com/volunteerhub/portal-backend/internal/app/service"
	apperrors "github.com/volunteerhub/portal-backend/internal/errors"
	"github.com/volunteerhub/portal-backend/internal/middleware"
)

type AuthController struct {
	authService service.AuthService
}

func NewAuthController(authService service.AuthService) *AuthController {
	return &AuthController{
		authService: authService,
	}
}

type SignupRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	Name     string `json:"name" binding:"required,min=2"`
	Role     string `json:"role" binding:"omitempty,oneof=VOLUNTEER NGO"`
	City     string `json:"city"`
}

func (r SignupRequest) input() service.SignupInput {
	return service.SignupInput{
		Email:    r.Email,
		Password: r.Password,
		Name:     r.Name,
		Role:     model.UserRole(r.Role),
		City:     r.City,
	}
}

type VerifyEmailRequest struct {
	SignupRequest
	Code string `json:"code" binding:"required,len=6,numeric"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type VKSignInRequest struct {
	AccessToken string `json:"access_token" binding:"required"`
	UserID      string `json:"user_id" binding:"required"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type ResetPasswordRequest struct {
	Email       string `json:"email" binding:"required,email"`
	Code        string `json:"code" binding:"required,len=6,numeric"`
	NewPassword string `json:"new_password" binding:"required,min=6"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

func userResponse(user *model.User) gin.H {
	return gin.H{
		"id":                user.ID,
		"email":             user.Email,
		"name":              user.Name,
		"city":              user.City,
		"image":             user.Image,
		"role":              user.Role,
		"has_password":      user.HasPassword(),
		"vk_linked":         user.VKID != nil,
		"email_verified_at": user.EmailVerifiedAt,
	}
}

// Signup mails a registration code
// POST /api/v1/auth/signup
func (ctrl *AuthController) Signup(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req SignupRequest
	if !bindJSON(c, log, &req) {
		return
	}

	if err := ctrl.authService.Signup(req.input()); err != nil {
		respondServiceError(c, log, err, "signup")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Код подтверждения отправлен на email",
		"email":   req.Email,
	})
}

// VerifyEmail checks the registration code and creates the account
// POST /api/v1/auth/verify-email
func (ctrl *AuthController) VerifyEmail(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req VerifyEmailRequest
	if !bindJSON(c, log, &req) {
		return
	}

	user, tokens, err := ctrl.authService.VerifyEmail(req.input(), req.Code)
	if err != nil {
		respondServiceError(c, log, err, "verify email")
		return
	}

	log.Info("User registered successfully", map[string]interface{}{
		"user_id": user.ID,
		"role":    user.Role,
	})

	c.JSON(http.StatusCreated, gin.H{
		"message": "Регистрация завершена",
		"user":    userResponse(user),
		"tokens":  tokens,
	})
}

// Login handles credential sign-in
// POST /api/v1/auth/login
func (ctrl *AuthController) Login(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req LoginRequest
	if !bindJSON(c, log, &req) {
		return
	}

	user, tokens, err := ctrl.authService.Login(req.Email, req.Password)
	if err != nil {
		respondServiceError(c, log, err, "login")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user":   userResponse(user),
		"tokens": tokens,
	})
}

// VKSignIn exchanges a VK ID token for a portal session
// POST /api/v1/auth/vk-signin
func (ctrl *AuthController) VKSignIn(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req VKSignInRequest
	if !bindJSON(c, log, &req) {
		return
	}

	user, tokens, err := ctrl.authService.VKSignIn(c.Request.Context(), req.AccessToken, req.UserID)
	if err != nil {
		respondServiceError(c, log, err, "vk sign-in")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user":   userResponse(user),
		"tokens": tokens,
	})
}

// ForgotPassword always answers with success so emails cannot be probed
// POST /api/v1/auth/forgot-password
func (ctrl *AuthController) ForgotPassword(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req ForgotPasswordRequest
	if !bindJSON(c, log, &req) {
		return
	}

	if err := ctrl.authService.ForgotPassword(req.Email); err != nil {
		respondServiceError(c, log, err, "forgot password")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Если аккаунт существует, код отправлен на email",
	})
}

// POST /api/v1/auth/reset-password
func (ctrl *AuthController) ResetPassword(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req ResetPasswordRequest
	if !bindJSON(c, log, &req) {
		return
	}

	if err := ctrl.authService.ResetPassword(req.Email, req.Code, req.NewPassword); err != nil {
		respondServiceError(c, log, err, "reset password")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Пароль успешно изменен",
	})
}

// POST /api/v1/auth/refresh
func (ctrl *AuthController) Refresh(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req RefreshTokenRequest
	if !bindJSON(c, log, &req) {
		return
	}

	tokens, err := ctrl.authService.Refresh(req.RefreshToken)
	if err != nil {
		respondServiceError(c, log, err, "refresh token")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"tokens": tokens,
	})
}

// GET /api/v1/auth/providers
func (ctrl *AuthController) Providers(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"providers": ctrl.authService.Providers(),
	})
}

// GetMe returns the signed-in user
// GET /api/v1/auth/me
func (ctrl *AuthController) GetMe(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}

	user, err := ctrl.authService.GetUserByID(userID)
	if err != nil {
		respondServiceError(c, log, err, "get user")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user": userResponse(user),
	})
}
