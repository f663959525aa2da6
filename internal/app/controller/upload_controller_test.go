package controller

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/volunteerhub/portal-backend/internal/app/model"
	apperrors "github.com/volunteerhub/portal-backend/internal/errors"
)

func TestUploadController_Presign(t *testing.T) {
	app := setupTestApp(t)
	_, token := app.createUser(t, "editor@example.com", "password123", model.RoleModerator)

	tests := []struct {
		name       string
		body       interface{}
		wantStatus int
		wantCode   string
	}{
		{
			name:       "Cover image",
			body:       PresignRequest{Kind: "cover", Filename: "cover.png", ContentType: "image/png", Size: 1024},
			wantStatus: http.StatusOK,
		},
		{
			name:       "PDF as cover",
			body:       PresignRequest{Kind: "cover", Filename: "guide.pdf", ContentType: "application/pdf", Size: 1024},
			wantStatus: http.StatusBadRequest,
			wantCode:   apperrors.UploadInvalidFileType,
		},
		{
			name:       "Oversized document",
			body:       PresignRequest{Kind: "document", Filename: "guide.pdf", ContentType: "application/pdf", Size: 100 << 20},
			wantStatus: http.StatusBadRequest,
			wantCode:   apperrors.UploadFileTooLarge,
		},
		{
			name:       "Unknown kind",
			body:       map[string]interface{}{"kind": "video", "filename": "a.mp4", "content_type": "video/mp4", "size": 10},
			wantStatus: http.StatusBadRequest,
			wantCode:   apperrors.ValidationInvalidInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := app.do(t, http.MethodPost, "/api/v1/uploads/presign", token, tt.body)
			assert.Equal(t, tt.wantStatus, w.Code, w.Body.String())
			if tt.wantCode != "" {
				assert.Equal(t, tt.wantCode, errorCode(t, w))
				return
			}
			body := decodeBody(t, w)
			assert.NotEmpty(t, body["upload_url"])
			assert.Equal(t, "articles/covers/x.png", body["key"])
		})
	}

	t.Run("Requires authentication", func(t *testing.T) {
		assert.Equal(t, http.StatusUnauthorized, app.do(t, http.MethodPost, "/api/v1/uploads/presign", "", nil).Code)
	})
}

func TestUploadController_Presign_RolePerKind(t *testing.T) {
	app := setupTestApp(t)
	_, volunteerToken := app.createUser(t, "vol@example.com", "password123", model.RoleVolunteer)
	_, ngoToken := app.createUser(t, "ngo@example.com", "password123", model.RoleNGO)
	_, adminToken := app.createUser(t, "admin@example.com", "password123", model.RoleAdmin)

	cover := PresignRequest{Kind: "cover", Filename: "cover.png", ContentType: "image/png", Size: 1024}
	logo := PresignRequest{Kind: "logo", Filename: "logo.png", ContentType: "image/png", Size: 1024}
	document := PresignRequest{Kind: "document", Filename: "guide.pdf", ContentType: "application/pdf", Size: 1024}

	tests := []struct {
		name       string
		token      string
		body       PresignRequest
		wantStatus int
	}{
		{name: "Volunteer cover", token: volunteerToken, body: cover, wantStatus: http.StatusForbidden},
		{name: "Volunteer logo", token: volunteerToken, body: logo, wantStatus: http.StatusForbidden},
		{name: "Volunteer document", token: volunteerToken, body: document, wantStatus: http.StatusForbidden},
		{name: "NGO logo", token: ngoToken, body: logo, wantStatus: http.StatusOK},
		{name: "NGO cover", token: ngoToken, body: cover, wantStatus: http.StatusForbidden},
		{name: "Admin document", token: adminToken, body: document, wantStatus: http.StatusOK},
		{name: "Admin logo", token: adminToken, body: logo, wantStatus: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := app.do(t, http.MethodPost, "/api/v1/uploads/presign", tt.token, tt.body)
			assert.Equal(t, tt.wantStatus, w.Code, w.Body.String())
			if tt.wantStatus == http.StatusForbidden {
				assert.Equal(t, apperrors.AuthzForbidden, errorCode(t, w))
			}
		})
	}
}
