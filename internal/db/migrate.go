package db

import (
	"github.com/volunteerhub/portal-backend/internal/app/model"
	"github.com/volunteerhub/portal-backend/pkg/logger"
	"gorm.io/gorm"
)

// Models lists every table the portal owns, in dependency order.
func Models() []interface{} {
	return []interface{}{
		&model.User{},
		&model.VerificationToken{},
		&model.NGO{},
		&model.Event{},
		&model.Project{},
		&model.Article{},
		&model.SupportTicket{},
		&model.SupportMessage{},
	}
}

// Migrate runs database migrations
func Migrate() error {
	return MigrateDB(DB)
}

// MigrateDB runs migrations against an explicit connection.
func MigrateDB(conn *gorm.DB) error {
	logger.Info("Running database migrations...")

	models := Models()
	if err := conn.AutoMigrate(models...); err != nil {
		logger.Error("Failed to run migrations", err)
		return err
	}

	logger.Info("Database migrations completed successfully", map[string]interface{}{
		"models_count": len(models),
	})
	return nil
}
