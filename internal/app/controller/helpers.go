package controller

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/volunteerhub/portal-backend/internal/app/service"
	apperrors "github.com/volunteerhub/portal-backend/internal/errors"
	"github.com/volunteerhub/portal-backend/internal/middleware"
	"github.com/volunteerhub/portal-backend/internal/storage"
	"github.com/volunteerhub/portal-backend/pkg/logger"
)

const invalidInputMessage = "Проверьте правильность заполнения полей"

// currentActor reads the authenticated caller; it writes 401 when there is none.
func currentActor(c *gin.Context) (service.Actor, bool) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return service.Actor{}, false
	}
	role, _ := middleware.GetUserRole(c)
	return service.Actor{UserID: userID, Role: role}, true
}

// optionalActor returns nil for anonymous requests.
func optionalActor(c *gin.Context) *service.Actor {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return nil
	}
	role, _ := middleware.GetUserRole(c)
	return &service.Actor{UserID: userID, Role: role}
}

func parseIDParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "Некорректный идентификатор")
		return 0, false
	}
	return uint(id), true
}

func bindJSON(c *gin.Context, log *logger.Logger, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		log.Warn("Invalid request body", map[string]interface{}{
			"path":  c.Request.URL.Path,
			"error": err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, invalidInputMessage)
		return false
	}
	return true
}

// respondServiceError maps a service sentinel to its HTTP reply and falls
// back to the database error parser for everything else.
func respondServiceError(c *gin.Context, log *logger.Logger, err error, operation string) {
	switch {
	// verification
	case errors.Is(err, service.ErrCodeNotFound):
		apperrors.BadRequest(c, apperrors.AuthCodeInvalid, "Неверный код подтверждения")
	case errors.Is(err, service.ErrCodeExpired):
		apperrors.BadRequest(c, apperrors.AuthCodeExpired, "Срок действия кода истек. Запросите новый код")

	// auth and account
	case errors.Is(err, service.ErrEmailAlreadyExists):
		apperrors.Conflict(c, apperrors.AuthEmailAlreadyExists, "Пользователь с таким email уже существует")
	case errors.Is(err, service.ErrInvalidCredentials):
		apperrors.RespondWithError(c, http.StatusUnauthorized, apperrors.AuthInvalidCredentials, "Неверный email или пароль")
	case errors.Is(err, service.ErrInvalidRefreshToken):
		apperrors.RespondWithError(c, http.StatusUnauthorized, apperrors.AuthTokenInvalid, "Недействительный токен")
	case errors.Is(err, service.ErrUserNotFound):
		apperrors.NotFound(c, apperrors.ResourceNotFound, "Пользователь не найден")
	case errors.Is(err, service.ErrInvalidRole):
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Недопустимая роль")
	case errors.Is(err, service.ErrProviderDisabled):
		apperrors.RespondWithError(c, http.StatusForbidden, apperrors.AuthProviderDisabled, "Вход через VK ID недоступен")
	case errors.Is(err, service.ErrVKUserMismatch):
		apperrors.RespondWithError(c, http.StatusUnauthorized, apperrors.AuthTokenInvalid, "Токен VK ID выдан другому пользователю")
	case errors.Is(err, service.ErrVKAuthFailed):
		apperrors.BadGateway(c, apperrors.AuthProviderFailed, "Не удалось получить данные пользователя VK")
	case errors.Is(err, service.ErrPasswordNotSet):
		apperrors.BadRequest(c, apperrors.AuthPasswordNotSet, "Для аккаунта, созданного через VK ID, пароль не задан")
	case errors.Is(err, service.ErrInvalidPassword):
		apperrors.BadRequest(c, apperrors.AuthPasswordInvalid, "Неверный текущий пароль")
	case errors.Is(err, service.ErrEmailUnchanged):
		apperrors.BadRequest(c, apperrors.AuthEmailUnchanged, "Новый email совпадает с текущим")
	case errors.Is(err, service.ErrEmailChangeExpired):
		apperrors.BadRequest(c, apperrors.AuthSessionExpired, "Сессия смены email истекла. Начните заново")

	// access
	case errors.Is(err, service.ErrForbidden):
		apperrors.Forbidden(c, "")

	// articles
	case errors.Is(err, service.ErrArticleNotFound):
		apperrors.NotFound(c, apperrors.ArticleNotFound, "Статья не найдена")
	case errors.Is(err, service.ErrSlugTaken):
		apperrors.Conflict(c, apperrors.ArticleSlugExists, "Статья с таким заголовком уже существует")
	case errors.Is(err, service.ErrInvalidTitle):
		apperrors.BadRequest(c, apperrors.ArticleInvalidTitle, "Заголовок должен содержать буквы или цифры")

	// ngos
	case errors.Is(err, service.ErrNGONotFound):
		apperrors.NotFound(c, apperrors.NGONotFound, "Организация не найдена")
	case errors.Is(err, service.ErrNGOAlreadyExists):
		apperrors.Conflict(c, apperrors.NGOAlreadyExists, "У аккаунта уже есть организация")
	case errors.Is(err, service.ErrNotNGOAccount):
		apperrors.RespondWithError(c, http.StatusForbidden, apperrors.NGOAccountOnly, "Регистрировать организации могут только аккаунты НКО")
	case errors.Is(err, service.ErrInvalidEventDate):
		apperrors.BadRequest(c, apperrors.NGOInvalidDates, "Дата окончания раньше даты начала")

	// support
	case errors.Is(err, service.ErrTicketNotFound):
		apperrors.NotFound(c, apperrors.SupportTicketNotFound, "Обращение не найдено")
	case errors.Is(err, service.ErrInvalidTicketStatus):
		apperrors.BadRequest(c, apperrors.SupportInvalidStatus, "Недопустимый статус обращения")
	case errors.Is(err, service.ErrEmptyMessage):
		apperrors.BadRequest(c, apperrors.ValidationRequired, "Сообщение не может быть пустым")

	// uploads
	case errors.Is(err, storage.ErrContentType), errors.Is(err, storage.ErrUnsupportedKind):
		apperrors.BadRequest(c, apperrors.UploadInvalidFileType, "Недопустимый тип файла")
	case errors.Is(err, storage.ErrFileTooLarge):
		apperrors.BadRequest(c, apperrors.UploadFileTooLarge, "Файл слишком большой")

	default:
		log.Error("Request failed", err, map[string]interface{}{
			"operation": operation,
		})
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, operation)
		return
	}

	log.Warn("Request rejected", map[string]interface{}{
		"operation": operation,
		"reason":    err.Error(),
	})
}
