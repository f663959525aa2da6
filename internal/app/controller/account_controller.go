package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/volunteerhub/portal-backend/internal/app/service"
	"github.com/volunteerhub/portal-backend/internal/middleware"
)

// AccountController serves /user endpoints for the signed-in user.
type AccountController struct {
	accountService service.AccountService
}

func NewAccountController(accountService service.AccountService) *AccountController {
	return &AccountController{
		accountService: accountService,
	}
}

type UpdateProfileRequest struct {
	Name  *string `json:"name" binding:"omitempty,min=2"`
	City  *string `json:"city"`
	Image *string `json:"image"` // URL from the upload API
}

type RequestPasswordChangeRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
}

type ChangePasswordRequest struct {
	Code        string `json:"code" binding:"required,len=6,numeric"`
	NewPassword string `json:"new_password" binding:"required,min=6"`
}

type RequestEmailChangeRequest struct {
	NewEmail string `json:"new_email" binding:"required,email"`
}

type ConfirmEmailChangeRequest struct {
	Code string `json:"code" binding:"required,len=6,numeric"`
}

// GET /api/v1/user/profile
func (ctrl *AccountController) GetProfile(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	user, err := ctrl.accountService.GetProfile(actor.UserID)
	if err != nil {
		respondServiceError(c, log, err, "get profile")
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": userResponse(user)})
}

// PATCH /api/v1/user/profile
func (ctrl *AccountController) UpdateProfile(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	var req UpdateProfileRequest
	if !bindJSON(c, log, &req) {
		return
	}

	user, err := ctrl.accountService.UpdateProfile(actor.UserID, service.UpdateProfileInput{
		Name:  req.Name,
		City:  req.City,
		Image: req.Image,
	})
	if err != nil {
		respondServiceError(c, log, err, "update profile")
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": userResponse(user)})
}

// RequestPasswordChange mails a code after checking the current password
// POST /api/v1/user/request-password-change
func (ctrl *AccountController) RequestPasswordChange(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	var req RequestPasswordChangeRequest
	if !bindJSON(c, log, &req) {
		return
	}

	if err := ctrl.accountService.RequestPasswordChange(actor.UserID, req.CurrentPassword); err != nil {
		respondServiceError(c, log, err, "request password change")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Код подтверждения отправлен на email"})
}

// POST /api/v1/user/change-password
func (ctrl *AccountController) ChangePassword(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	var req ChangePasswordRequest
	if !bindJSON(c, log, &req) {
		return
	}

	if err := ctrl.accountService.ChangePassword(actor.UserID, req.Code, req.NewPassword); err != nil {
		respondServiceError(c, log, err, "change password")
		return
	}

	log.Info("Password changed", map[string]interface{}{
		"user_id": actor.UserID,
	})

	c.JSON(http.StatusOK, gin.H{"message": "Пароль успешно изменен"})
}

// RequestEmailChange mails a code to the current address
// POST /api/v1/user/request-email-change
func (ctrl *AccountController) RequestEmailChange(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	var req RequestEmailChangeRequest
	if !bindJSON(c, log, &req) {
		return
	}

	if err := ctrl.accountService.RequestEmailChange(actor.UserID, req.NewEmail); err != nil {
		respondServiceError(c, log, err, "request email change")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Код подтверждения отправлен на текущий email"})
}

// POST /api/v1/user/confirm-email-change
func (ctrl *AccountController) ConfirmEmailChange(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	var req ConfirmEmailChangeRequest
	if !bindJSON(c, log, &req) {
		return
	}

	user, err := ctrl.accountService.ConfirmEmailChange(actor.UserID, req.Code)
	if err != nil {
		respondServiceError(c, log, err, "confirm email change")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Email успешно изменен",
		"user":    userResponse(user),
	})
}
