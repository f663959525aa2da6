package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/volunteerhub/portal-backend/internal/app/model"
	apperrors "github.com/volunteerhub/portal-backend/internal/errors"
	"github.com/volunteerhub/portal-backend/internal/middleware"
	"github.com/volunteerhub/portal-backend/internal/storage"
)

type UploadController struct {
	storage storage.Presigner
}

func NewUploadController(storage storage.Presigner) *UploadController {
	return &UploadController{
		storage: storage,
	}
}

// uploadRoles lists who may upload each kind: article files belong to the
// staff editor, logos to NGO accounts.
var uploadRoles = map[storage.UploadKind][]model.UserRole{
	storage.KindCoverImage: {model.RoleAdmin, model.RoleModerator},
	storage.KindDocument:   {model.RoleAdmin, model.RoleModerator},
	storage.KindLogo:       {model.RoleNGO, model.RoleAdmin, model.RoleModerator},
}

func canUpload(kind storage.UploadKind, role model.UserRole) bool {
	for _, allowed := range uploadRoles[kind] {
		if role == allowed {
			return true
		}
	}
	return false
}

type PresignRequest struct {
	Kind        storage.UploadKind `json:"kind" binding:"required,oneof=cover document logo"`
	Filename    string             `json:"filename" binding:"required"`
	ContentType string             `json:"content_type" binding:"required"`
	Size        int64              `json:"size" binding:"required,gt=0"`
}

// Presign returns a URL the browser PUTs the file to directly
// POST /api/v1/uploads/presign
func (ctrl *UploadController) Presign(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	actor, ok := currentActor(c)
	if !ok {
		return
	}

	var req PresignRequest
	if !bindJSON(c, log, &req) {
		return
	}

	if !canUpload(req.Kind, actor.Role) {
		log.Warn("Upload kind not allowed for role", map[string]interface{}{
			"user_id": actor.UserID,
			"role":    actor.Role,
			"kind":    req.Kind,
		})
		apperrors.Forbidden(c, "Недостаточно прав для загрузки файлов этого типа")
		return
	}

	response, err := ctrl.storage.PresignUpload(c.Request.Context(), req.Kind, req.Filename, req.ContentType, req.Size)
	if err != nil {
		respondServiceError(c, log, err, "upload presign")
		return
	}

	log.Info("Presigned URL generated successfully", map[string]interface{}{
		"kind":         req.Kind,
		"content_type": req.ContentType,
		"key":          response.Key,
	})

	c.JSON(http.StatusOK, response)
}
