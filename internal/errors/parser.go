package errors

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

// ErrorInfo is a code and message pair derived from a low level error.
type ErrorInfo struct {
	Code    string
	Message string
}

// ParseError turns storage and network errors into client-safe codes.
// context names the failing action ("create article", "update ngo") and picks the message.
func ParseError(err error, context string) ErrorInfo {
	if err == nil {
		return ErrorInfo{
			Code:    InternalServerError,
			Message: "Внутренняя ошибка сервера",
		}
	}

	errStrLower := strings.ToLower(err.Error())

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrorInfo{
			Code:    ResourceNotFound,
			Message: getNotFoundMessage(context),
		}
	}

	// PostgreSQL 23505 and the SQLite equivalent
	if strings.Contains(errStrLower, "duplicate key") || strings.Contains(errStrLower, "unique constraint") {
		return parseDuplicateKeyError(errStrLower)
	}

	// 23503
	if strings.Contains(errStrLower, "foreign key constraint") {
		return ErrorInfo{
			Code:    ResourceConflict,
			Message: "Связанные данные не найдены или ещё используются",
		}
	}

	// 23502
	if (strings.Contains(errStrLower, "null value") && strings.Contains(errStrLower, "not-null")) ||
		strings.Contains(errStrLower, "not null constraint") {
		return ErrorInfo{
			Code:    ValidationRequired,
			Message: "Не заполнено обязательное поле",
		}
	}

	if strings.Contains(errStrLower, "connection refused") ||
		strings.Contains(errStrLower, "no such host") ||
		strings.Contains(errStrLower, "timeout") {
		return ErrorInfo{
			Code:    InternalExternalAPI,
			Message: "Внешний сервис недоступен. Попробуйте позже",
		}
	}

	return ErrorInfo{
		Code:    InternalServerError,
		Message: getDefaultErrorMessage(context),
	}
}

func parseDuplicateKeyError(errLower string) ErrorInfo {
	switch {
	case strings.Contains(errLower, "slug"):
		return ErrorInfo{Code: ArticleSlugExists, Message: "Статья с таким заголовком уже существует"}
	case strings.Contains(errLower, "vk_id"):
		return ErrorInfo{Code: ResourceAlreadyExists, Message: "Этот аккаунт VK уже привязан"}
	case strings.Contains(errLower, "email"):
		return ErrorInfo{Code: AuthEmailAlreadyExists, Message: "Этот email уже используется"}
	case strings.Contains(errLower, "ngos") && strings.Contains(errLower, "user_id"):
		return ErrorInfo{Code: NGOAlreadyExists, Message: "У аккаунта уже есть организация"}
	}

	return ErrorInfo{
		Code:    ResourceAlreadyExists,
		Message: "Такая запись уже существует",
	}
}

func getNotFoundMessage(context string) string {
	contextLower := strings.ToLower(context)

	switch {
	case strings.Contains(contextLower, "article"):
		return "Статья не найдена"
	case strings.Contains(contextLower, "ngo"):
		return "Организация не найдена"
	case strings.Contains(contextLower, "ticket"):
		return "Обращение не найдено"
	case strings.Contains(contextLower, "user"):
		return "Пользователь не найден"
	}
	return "Запрошенные данные не найдены"
}

func getDefaultErrorMessage(context string) string {
	contextLower := strings.ToLower(context)

	switch {
	case strings.Contains(contextLower, "create"):
		return "Не удалось создать запись. Попробуйте позже"
	case strings.Contains(contextLower, "update"):
		return "Не удалось сохранить изменения. Попробуйте позже"
	case strings.Contains(contextLower, "delete"):
		return "Не удалось удалить запись. Попробуйте позже"
	}
	return "Внутренняя ошибка сервера. Попробуйте позже"
}

// ParseAndRespond parses err and writes it with statusCode.
func ParseAndRespond(c interface{ JSON(int, interface{}) }, statusCode int, err error, context string) {
	errorInfo := ParseError(err, context)
	c.JSON(statusCode, ErrorResponse{
		Error:   errorInfo.Code,
		Message: errorInfo.Message,
	})
}
