package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/volunteerhub/portal-backend/internal/app/model"
	"github.com/volunteerhub/portal-backend/internal/app/repository"
	"gorm.io/gorm"
)

type accountTestEnv struct {
	svc          AccountService
	db           *gorm.DB
	mail         *recordingMailer
	verification *verificationService
}

func setupAccountServiceTest(t *testing.T) *accountTestEnv {
	testDB := setupServiceDB(t)
	mail := &recordingMailer{}
	verification := newFixedVerification(testDB)
	svc := NewAccountService(repository.NewUserRepository(testDB), verification, mail, testTemplates)
	return &accountTestEnv{svc: svc, db: testDB, mail: mail, verification: verification}
}

func TestAccountService_ChangePassword(t *testing.T) {
	env := setupAccountServiceTest(t)
	user := createServiceTestUser(t, env.db, "alice@example.com", "oldpassword", model.RoleVolunteer)
	vkOnly := createServiceTestUser(t, env.db, "vk1@vk.placeholder.com", "", model.RoleVolunteer)

	tests := []struct {
		name     string
		userID   uint
		password string
		wantErr  error
	}{
		{name: "Wrong current password", userID: user.ID, password: "nope", wantErr: ErrInvalidPassword},
		{name: "Account without password", userID: vkOnly.ID, password: "", wantErr: ErrPasswordNotSet},
		{name: "Unknown user", userID: 9999, password: "oldpassword", wantErr: ErrUserNotFound},
		{name: "Correct current password", userID: user.ID, password: "oldpassword"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := env.svc.RequestPasswordChange(tt.userID, tt.password)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
		})
	}

	require.Len(t, env.mail.Sent(), 1)
	assert.Contains(t, env.mail.Last().HTML, testCode)

	assert.ErrorIs(t, env.svc.ChangePassword(user.ID, "000000", "newpassword"), ErrCodeNotFound)
	require.NoError(t, env.svc.ChangePassword(user.ID, testCode, "newpassword"))
	require.Len(t, env.mail.Sent(), 2)
	assert.Equal(t, "alice@example.com", env.mail.Last().To)

	assert.ErrorIs(t, env.svc.RequestPasswordChange(user.ID, "oldpassword"), ErrInvalidPassword)
	assert.NoError(t, env.svc.RequestPasswordChange(user.ID, "newpassword"))
}

func TestAccountService_EmailChange(t *testing.T) {
	t.Run("Code goes to the current address", func(t *testing.T) {
		env := setupAccountServiceTest(t)
		user := createServiceTestUser(t, env.db, "bob@example.com", "password123", model.RoleVolunteer)

		require.NoError(t, env.svc.RequestEmailChange(user.ID, " Bob.New@Example.com "))
		msg := env.mail.Last()
		assert.Equal(t, "bob@example.com", msg.To)
		assert.Contains(t, msg.HTML, "bob.new@example.com")
		assert.Contains(t, msg.HTML, testCode)

		_, err := env.svc.ConfirmEmailChange(user.ID, "000000")
		assert.ErrorIs(t, err, ErrCodeNotFound)

		updated, err := env.svc.ConfirmEmailChange(user.ID, testCode)
		require.NoError(t, err)
		assert.Equal(t, "bob.new@example.com", updated.Email)

		profile, err := env.svc.GetProfile(user.ID)
		require.NoError(t, err)
		assert.Equal(t, "bob.new@example.com", profile.Email)
	})

	t.Run("Address taken by another account", func(t *testing.T) {
		env := setupAccountServiceTest(t)
		user := createServiceTestUser(t, env.db, "carol@example.com", "password123", model.RoleVolunteer)
		createServiceTestUser(t, env.db, "taken@example.com", "password123", model.RoleVolunteer)

		assert.ErrorIs(t, env.svc.RequestEmailChange(user.ID, "taken@example.com"), ErrEmailAlreadyExists)
		assert.ErrorIs(t, env.svc.RequestEmailChange(user.ID, "carol@example.com"), ErrEmailUnchanged)
		assert.Empty(t, env.mail.Sent())
	})

	t.Run("Missing pending address reports an expired session", func(t *testing.T) {
		env := setupAccountServiceTest(t)
		user := createServiceTestUser(t, env.db, "dave@example.com", "password123", model.RoleVolunteer)

		require.NoError(t, env.svc.RequestEmailChange(user.ID, "dave.new@example.com"))
		_, err := env.verification.TakePending("dave@example.com", PurposeNewEmail)
		require.NoError(t, err)

		_, err = env.svc.ConfirmEmailChange(user.ID, testCode)
		assert.ErrorIs(t, err, ErrEmailChangeExpired)
	})

	t.Run("Address claimed while pending", func(t *testing.T) {
		env := setupAccountServiceTest(t)
		user := createServiceTestUser(t, env.db, "erin@example.com", "password123", model.RoleVolunteer)

		require.NoError(t, env.svc.RequestEmailChange(user.ID, "erin.new@example.com"))
		createServiceTestUser(t, env.db, "erin.new@example.com", "password123", model.RoleVolunteer)

		_, err := env.svc.ConfirmEmailChange(user.ID, testCode)
		assert.ErrorIs(t, err, ErrEmailAlreadyExists)
	})
}

func TestAccountService_UpdateProfile(t *testing.T) {
	env := setupAccountServiceTest(t)
	user := createServiceTestUser(t, env.db, "frank@example.com", "password123", model.RoleVolunteer)

	city := "Kazan"
	updated, err := env.svc.UpdateProfile(user.ID, UpdateProfileInput{City: &city})
	require.NoError(t, err)
	assert.Equal(t, "Kazan", updated.City)
	assert.Equal(t, "Test User", updated.Name)

	_, err = env.svc.UpdateProfile(9999, UpdateProfileInput{City: &city})
	assert.ErrorIs(t, err, ErrUserNotFound)
}
