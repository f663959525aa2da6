package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/volunteerhub/portal-backend/internal/app/model"
	"github.com/volunteerhub/portal-backend/internal/db"
	"gorm.io/gorm"
)

func setupUserTest(t *testing.T) (*gorm.DB, UserRepository) {
	testDB := db.SetupTestDB(t)
	return testDB, NewUserRepository(testDB)
}

func createTestUser(t *testing.T, repo UserRepository, email string, role model.UserRole) *model.User {
	t.Helper()
	user := &model.User{
		Email:        email,
		PasswordHash: "hashedpassword",
		Name:         "Test User",
		Role:         role,
	}
	require.NoError(t, repo.Create(user))
	return user
}

func strPtr(s string) *string { return &s }

func TestUserRepository_Create(t *testing.T) {
	_, repo := setupUserTest(t)

	tests := []struct {
		name    string
		user    *model.User
		wantErr bool
	}{
		{
			name:    "Valid user",
			user:    &model.User{Email: "test@example.com", PasswordHash: "hash", Name: "Test User", Role: model.RoleVolunteer},
			wantErr: false,
		},
		{
			name:    "Duplicate email",
			user:    &model.User{Email: "test@example.com", PasswordHash: "hash", Name: "Another User", Role: model.RoleNGO},
			wantErr: true,
		},
		{
			name:    "VK user without password",
			user:    &model.User{Email: "vk1@vk.placeholder.com", Name: "VK User", VKID: strPtr("1"), Role: model.RoleVolunteer},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := repo.Create(tt.user)

			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				assert.NotZero(t, tt.user.ID)
			}
		})
	}
}

func TestUserRepository_FindByEmail(t *testing.T) {
	_, repo := setupUserTest(t)
	user := createTestUser(t, repo, "find@example.com", model.RoleVolunteer)

	found, err := repo.FindByEmail("find@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, found.ID)

	_, err = repo.FindByEmail("missing@example.com")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestUserRepository_FindByEmailOrVKID(t *testing.T) {
	_, repo := setupUserTest(t)

	byEmail := createTestUser(t, repo, "ivan@example.com", model.RoleVolunteer)
	byVK := &model.User{Email: "vk42@vk.placeholder.com", Name: "VK", VKID: strPtr("42"), Role: model.RoleVolunteer}
	require.NoError(t, repo.Create(byVK))

	tests := []struct {
		name   string
		email  string
		vkID   string
		wantID uint
		found  bool
	}{
		{name: "Match by email", email: "ivan@example.com", vkID: "7", wantID: byEmail.ID, found: true},
		{name: "Match by vk id", email: "other@example.com", vkID: "42", wantID: byVK.ID, found: true},
		{name: "Email wins over vk id", email: "ivan@example.com", vkID: "42", wantID: byEmail.ID, found: true},
		{name: "No match", email: "nobody@example.com", vkID: "1000", found: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user, err := repo.FindByEmailOrVKID(tt.email, tt.vkID)
			if !tt.found {
				assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantID, user.ID)
		})
	}
}

func TestUserRepository_UpdatePasswordAndEmail(t *testing.T) {
	_, repo := setupUserTest(t)
	user := createTestUser(t, repo, "old@example.com", model.RoleVolunteer)

	require.NoError(t, repo.UpdatePassword(user.ID, "newhash"))
	require.NoError(t, repo.UpdateEmail(user.ID, "new@example.com"))

	found, err := repo.FindByID(user.ID)
	require.NoError(t, err)
	assert.Equal(t, "newhash", found.PasswordHash)
	assert.Equal(t, "new@example.com", found.Email)

	assert.ErrorIs(t, repo.UpdatePassword(9999, "x"), gorm.ErrRecordNotFound)
	assert.ErrorIs(t, repo.UpdateEmail(9999, "x@example.com"), gorm.ErrRecordNotFound)
}

func TestUserRepository_Delete(t *testing.T) {
	_, repo := setupUserTest(t)
	user := createTestUser(t, repo, "gone@example.com", model.RoleVolunteer)

	require.NoError(t, repo.Delete(user.ID))

	_, err := repo.FindByID(user.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
