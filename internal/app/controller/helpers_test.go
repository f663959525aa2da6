package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"github.com/volunteerhub/portal-backend/config"
	"github.com/volunteerhub/portal-backend/internal/app/model"
	"github.com/volunteerhub/portal-backend/internal/app/repository"
	"github.com/volunteerhub/portal-backend/internal/app/service"
	"github.com/volunteerhub/portal-backend/internal/db"
	"github.com/volunteerhub/portal-backend/internal/middleware"
	"github.com/volunteerhub/portal-backend/internal/storage"
	"github.com/volunteerhub/portal-backend/internal/websocket"
	"github.com/volunteerhub/portal-backend/pkg/mailer"
	"github.com/volunteerhub/portal-backend/pkg/util"
	"github.com/volunteerhub/portal-backend/pkg/vkid"
	"gorm.io/gorm"
)

const testJWTSecret = "test-secret"

var testJWTConfig = config.JWTConfig{
	Secret:             testJWTSecret,
	AccessTokenExpiry:  15 * time.Minute,
	RefreshTokenExpiry: 24 * time.Hour,
}

type recordingMailer struct {
	mu   sync.Mutex
	sent []mailer.Message
}

func (m *recordingMailer) Send(msg mailer.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, msg)
	return nil
}

func (m *recordingMailer) SendAsync(msg mailer.Message) {
	_ = m.Send(msg)
}

func (m *recordingMailer) Sent() []mailer.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]mailer.Message(nil), m.sent...)
}

var codePattern = regexp.MustCompile(`monospace;">\s*(\d{6})\s*<`)

// lastCode extracts the verification code from the newest mail to addr.
func (m *recordingMailer) lastCode(t *testing.T, addr string) string {
	t.Helper()
	sent := m.Sent()
	for i := len(sent) - 1; i >= 0; i-- {
		if sent[i].To != addr {
			continue
		}
		if match := codePattern.FindStringSubmatch(sent[i].HTML); match != nil {
			return match[1]
		}
	}
	t.Fatalf("no verification code mailed to %s", addr)
	return ""
}

type stubVK struct {
	user *vkid.User
	err  error
}

func (s *stubVK) GetUser(_ context.Context, _, _ string) (*vkid.User, error) {
	return s.user, s.err
}

type stubPresigner struct {
	response *storage.PresignedURLResponse
}

func (s *stubPresigner) PresignUpload(_ context.Context, kind storage.UploadKind, _, contentType string, size int64) (*storage.PresignedURLResponse, error) {
	if err := storage.ValidateUpload(kind, contentType, size); err != nil {
		return nil, err
	}
	return s.response, nil
}

// testApp is the portal wired against an in-memory database.
type testApp struct {
	db     *gorm.DB
	mail   *recordingMailer
	vk     *stubVK
	hub    *websocket.Hub
	router *gin.Engine
}

func setupTestApp(t *testing.T) *testApp {
	gin.SetMode(gin.TestMode)

	testDB := db.SetupTestDB(t)
	mail := &recordingMailer{}
	vk := &stubVK{}
	templates := mailer.Templates{AppName: "VolunteerHub", PublicURL: "http://localhost:3000", CodeTTL: 15 * time.Minute}
	oauth := config.OAuthConfig{Providers: []config.OAuthProvider{
		{Name: config.ProviderCredentials},
		{Name: config.ProviderVK, ClientID: "vk-id", ClientSecret: "vk-secret"},
	}}

	hub := websocket.NewHub()
	go hub.Run()
	t.Cleanup(hub.Stop)

	userRepo := repository.NewUserRepository(testDB)
	verification := service.NewVerificationService(repository.NewVerificationTokenRepository(testDB), 15*time.Minute, time.Hour)

	authCtrl := NewAuthController(service.NewAuthService(userRepo, verification, mail, templates, vk, oauth, testJWTConfig))
	accountCtrl := NewAccountController(service.NewAccountService(userRepo, verification, mail, templates))
	articleCtrl := NewArticleController(service.NewArticleService(repository.NewArticleRepository(testDB)))
	ngoCtrl := NewNGOController(service.NewNGOService(repository.NewNGORepository(testDB), userRepo, mail, templates))
	supportCtrl := NewSupportController(
		service.NewSupportService(repository.NewSupportRepository(testDB), userRepo, hub, mail, templates),
		hub,
		websocket.NewUpgrader([]string{"*"}),
	)
	uploadCtrl := NewUploadController(&stubPresigner{response: &storage.PresignedURLResponse{
		UploadURL: "http://localhost:9000/bucket/articles/covers/x.png?X-Amz-Signature=abc",
		FileURL:   "https://cdn.example.com/articles/covers/x.png",
		Key:       "articles/covers/x.png",
	}})

	auth := middleware.NewAuthMiddleware(testJWTSecret)
	staff := auth.RequireRole(model.RoleAdmin, model.RoleModerator)

	router := gin.New()
	router.Use(middleware.LoggingMiddleware())
	v1 := router.Group("/api/v1")

	v1.POST("/auth/signup", authCtrl.Signup)
	v1.POST("/auth/verify-email", authCtrl.VerifyEmail)
	v1.POST("/auth/login", authCtrl.Login)
	v1.POST("/auth/vk-signin", authCtrl.VKSignIn)
	v1.POST("/auth/forgot-password", authCtrl.ForgotPassword)
	v1.POST("/auth/reset-password", authCtrl.ResetPassword)
	v1.POST("/auth/refresh", authCtrl.Refresh)
	v1.GET("/auth/providers", authCtrl.Providers)
	v1.GET("/auth/me", auth.Authenticate(), authCtrl.GetMe)

	v1.GET("/user/profile", auth.Authenticate(), accountCtrl.GetProfile)
	v1.PATCH("/user/profile", auth.Authenticate(), accountCtrl.UpdateProfile)
	v1.POST("/user/request-password-change", auth.Authenticate(), accountCtrl.RequestPasswordChange)
	v1.POST("/user/change-password", auth.Authenticate(), accountCtrl.ChangePassword)
	v1.POST("/user/request-email-change", auth.Authenticate(), accountCtrl.RequestEmailChange)
	v1.POST("/user/confirm-email-change", auth.Authenticate(), accountCtrl.ConfirmEmailChange)

	v1.GET("/articles", auth.OptionalAuthenticate(), articleCtrl.List)
	v1.GET("/articles/:slug", auth.OptionalAuthenticate(), articleCtrl.GetBySlug)
	v1.POST("/articles", auth.Authenticate(), staff, articleCtrl.Create)
	v1.PATCH("/articles/id/:id", auth.Authenticate(), staff, articleCtrl.Update)
	v1.DELETE("/articles/id/:id", auth.Authenticate(), staff, articleCtrl.Delete)

	v1.GET("/ngos", auth.OptionalAuthenticate(), ngoCtrl.List)
	v1.GET("/ngos/:id", auth.OptionalAuthenticate(), ngoCtrl.Get)
	v1.POST("/ngos", auth.Authenticate(), ngoCtrl.Register)
	v1.PATCH("/ngos/:id", auth.Authenticate(), ngoCtrl.Update)
	v1.DELETE("/ngos/:id", auth.Authenticate(), auth.RequireRole(model.RoleAdmin), ngoCtrl.Delete)
	v1.POST("/ngos/:id/approve", auth.Authenticate(), staff, ngoCtrl.Approve)
	v1.POST("/ngos/:id/reject", auth.Authenticate(), staff, ngoCtrl.Reject)
	v1.POST("/ngos/:id/events", auth.Authenticate(), ngoCtrl.AddEvent)
	v1.POST("/ngos/:id/projects", auth.Authenticate(), ngoCtrl.AddProject)
	v1.GET("/events", ngoCtrl.UpcomingEvents)

	v1.GET("/support/tickets", auth.Authenticate(), supportCtrl.ListTickets)
	v1.POST("/support/tickets", auth.Authenticate(), supportCtrl.CreateTicket)
	v1.GET("/support/tickets/:id", auth.Authenticate(), supportCtrl.GetTicket)
	v1.POST("/support/tickets/:id", auth.Authenticate(), supportCtrl.AddMessage)
	v1.PATCH("/support/tickets/:id", auth.Authenticate(), supportCtrl.UpdateStatus)
	v1.GET("/support/tickets/:id/ws", auth.Authenticate(), supportCtrl.Stream)

	v1.POST("/uploads/presign", auth.Authenticate(), uploadCtrl.Presign)

	return &testApp{db: testDB, mail: mail, vk: vk, hub: hub, router: router}
}

// createUser stores a user and returns it with an access token.
func (a *testApp) createUser(t *testing.T, email, password string, role model.UserRole) (*model.User, string) {
	t.Helper()

	user := &model.User{Email: email, Name: "Test User", Role: role}
	if password != "" {
		hash, err := util.HashPassword(password)
		require.NoError(t, err)
		user.PasswordHash = hash
	}
	require.NoError(t, a.db.Create(user).Error)

	tokens, err := util.GenerateTokenPair(user.ID, user.Email, string(user.Role), testJWTSecret, time.Hour, 24*time.Hour)
	require.NoError(t, err)
	return user, tokens.AccessToken
}

func (a *testApp) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var payload bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&payload).Encode(body))
	}
	req := httptest.NewRequest(method, path, &payload)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body), w.Body.String())
	return body
}

// errorCode returns the "error" field of an error reply.
func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	code, _ := decodeBody(t, w)["error"].(string)
	return code
}
