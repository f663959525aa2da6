package errors

// Error codes returned in the "error" field.
// Format: CATEGORY_SPECIFIC_DETAIL. Clients map messages from these codes.

const (
	// ==================== Authentication (AUTH_) ====================
	AuthUnauthorized       = "AUTH_UNAUTHORIZED"        // sign-in required
	AuthInvalidCredentials = "AUTH_INVALID_CREDENTIALS" // wrong email or password
	AuthTokenExpired       = "AUTH_TOKEN_EXPIRED"
	AuthTokenInvalid       = "AUTH_TOKEN_INVALID"
	AuthEmailAlreadyExists = "AUTH_EMAIL_EXISTS"
	AuthCodeInvalid        = "AUTH_CODE_INVALID" // wrong or used verification code
	AuthCodeExpired        = "AUTH_CODE_EXPIRED"
	AuthPasswordNotSet     = "AUTH_PASSWORD_NOT_SET" // VK-only account
	AuthPasswordInvalid    = "AUTH_PASSWORD_INVALID" // wrong current password
	AuthProviderDisabled   = "AUTH_PROVIDER_DISABLED"
	AuthProviderFailed     = "AUTH_PROVIDER_FAILED"
	AuthSessionExpired     = "AUTH_SESSION_EXPIRED" // pending email change gone
	AuthEmailUnchanged     = "AUTH_EMAIL_UNCHANGED"

	// ==================== Authorization (AUTHZ_) ====================
	AuthzForbidden    = "AUTHZ_FORBIDDEN"
	AuthzRoleNotFound = "AUTHZ_ROLE_NOT_FOUND"
	AuthzAdminOnly    = "AUTHZ_ADMIN_ONLY"
	AuthzOwnerOnly    = "AUTHZ_OWNER_ONLY"

	// ==================== Validation (VALIDATION_) ====================
	ValidationInvalidInput  = "VALIDATION_INVALID_INPUT"
	ValidationInvalidID     = "VALIDATION_INVALID_ID"
	ValidationInvalidFormat = "VALIDATION_INVALID_FORMAT"
	ValidationInvalidRange  = "VALIDATION_INVALID_RANGE"
	ValidationRequired      = "VALIDATION_REQUIRED"

	// ==================== Resources (RESOURCE_) ====================
	ResourceNotFound      = "RESOURCE_NOT_FOUND"
	ResourceAlreadyExists = "RESOURCE_ALREADY_EXISTS"
	ResourceConflict      = "RESOURCE_CONFLICT"

	// ==================== Articles (ARTICLE_) ====================
	ArticleNotFound     = "ARTICLE_NOT_FOUND"
	ArticleSlugExists   = "ARTICLE_SLUG_EXISTS"
	ArticleInvalidTitle = "ARTICLE_INVALID_TITLE"

	// ==================== NGOs (NGO_) ====================
	NGONotFound      = "NGO_NOT_FOUND"
	NGOAlreadyExists = "NGO_ALREADY_EXISTS"
	NGOAccountOnly   = "NGO_ACCOUNT_ONLY"
	NGOInvalidDates  = "NGO_INVALID_EVENT_DATES"

	// ==================== Support (SUPPORT_) ====================
	SupportTicketNotFound = "SUPPORT_TICKET_NOT_FOUND"
	SupportInvalidStatus  = "SUPPORT_INVALID_STATUS"

	// ==================== Uploads (UPLOAD_) ====================
	UploadInvalidFileType = "UPLOAD_INVALID_FILE_TYPE"
	UploadFileTooLarge    = "UPLOAD_FILE_TOO_LARGE"
	UploadFailed          = "UPLOAD_FAILED"

	// ==================== Internal (INTERNAL_) ====================
	InternalServerError   = "INTERNAL_SERVER_ERROR"
	InternalDatabaseError = "INTERNAL_DATABASE_ERROR"
	InternalExternalAPI   = "INTERNAL_EXTERNAL_API"
	InternalConfigError   = "INTERNAL_CONFIG_ERROR"
)
