package db

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/volunteerhub/portal-backend/internal/app/model"
)

func TestSetupTestDB_MigratesAllModels(t *testing.T) {
	conn := SetupTestDB(t)

	for _, m := range Models() {
		assert.True(t, conn.Migrator().HasTable(m), "%T", m)
	}
}

func TestTruncateAllTables(t *testing.T) {
	conn := SetupTestDB(t)

	require.NoError(t, conn.Create(&model.User{Email: "a@example.com", Name: "A", Role: model.RoleVolunteer}).Error)
	require.NoError(t, conn.Create(&model.VerificationToken{
		Identifier: "email:a@example.com",
		Token:      "123456",
		Expires:    time.Now().Add(time.Minute),
	}).Error)

	require.NoError(t, TruncateAllTables(conn))

	var users, tokens int64
	conn.Unscoped().Model(&model.User{}).Count(&users)
	conn.Model(&model.VerificationToken{}).Count(&tokens)
	assert.Zero(t, users)
	assert.Zero(t, tokens)
}

func TestNGOCategories_RoundTrip(t *testing.T) {
	conn := SetupTestDB(t)

	ngo := model.NGO{Name: "Добрые руки", Categories: []string{"Экология", "Дети"}}
	require.NoError(t, conn.Create(&ngo).Error)

	var loaded model.NGO
	require.NoError(t, conn.First(&loaded, ngo.ID).Error)
	assert.Equal(t, []string{"Экология", "Дети"}, loaded.Categories)
	assert.Equal(t, model.NGOStatusPending, loaded.Status)
}
