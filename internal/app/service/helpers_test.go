package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/volunteerhub/portal-backend/internal/app/model"
	"github.com/volunteerhub/portal-backend/internal/app/repository"
	"github.com/volunteerhub/portal-backend/internal/db"
	"github.com/volunteerhub/portal-backend/pkg/mailer"
	"github.com/volunteerhub/portal-backend/pkg/util"
	"github.com/volunteerhub/portal-backend/pkg/vkid"
	"gorm.io/gorm"
)

const testCode = "123456"

var testTemplates = mailer.Templates{
	AppName:   "VolunteerHub",
	PublicURL: "http://localhost:3000",
	CodeTTL:   15 * time.Minute,
}

// recordingMailer delivers synchronously so tests can inspect what was sent.
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

func (m *recordingMailer) Last() mailer.Message {
	sent := m.Sent()
	if len(sent) == 0 {
		return mailer.Message{}
	}
	return sent[len(sent)-1]
}

type fakeVK struct {
	user       *vkid.User
	err        error
	lastUserID string
}

func (f *fakeVK) GetUser(_ context.Context, _, userID string) (*vkid.User, error) {
	f.lastUserID = userID
	return f.user, f.err
}

// newFixedVerification issues testCode for every request.
func newFixedVerification(testDB *gorm.DB) *verificationService {
	svc := NewVerificationService(repository.NewVerificationTokenRepository(testDB), 15*time.Minute, time.Hour).(*verificationService)
	svc.generate = func() (string, error) { return testCode, nil }
	return svc
}

func createServiceTestUser(t *testing.T, testDB *gorm.DB, email, password string, role model.UserRole) *model.User {
	t.Helper()

	user := &model.User{
		Email: email,
		Name:  "Test User",
		Role:  role,
	}
	if password != "" {
		hash, err := util.HashPassword(password)
		require.NoError(t, err)
		user.PasswordHash = hash
	}
	require.NoError(t, testDB.Create(user).Error)
	return user
}

func setupServiceDB(t *testing.T) *gorm.DB {
	return db.SetupTestDB(t)
}
