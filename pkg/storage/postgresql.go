package storage

import (
	"fmt"
	"log/slog"

	slogGorm "github.com/orandin/slog-gorm"
	"github.com/skyportal/skyportal/pkg/config"
	"github.com/skyportal/skyportal/pkg/model"
	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func NewDatabase(logger *slog.Logger, c config.Postgresql) (*gorm.DB, error) {
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=disable", c.Host, c.Username, c.Password, c.DatabaseName, c.Port)

	gormLogger := slogGorm.New(
		slogGorm.WithHandler(logger.Handler()),
	)
	databaseConfig := gorm.Config{
		Logger: gormLogger,
		// needed for gorm.ErrDuplicatedKey
		TranslateError: true,
	}

	db, err := gorm.Open(postgres.Open(dsn), &databaseConfig)
	if err != nil {
		return nil, err
	}

	if err := db.Use(otelgorm.NewPlugin()); err != nil {
		return nil, fmt.Errorf("failed to setup database tracing: %v", err)
	}

	err = db.AutoMigrate(
		&model.Group{},
		&model.Stream{},
		&model.User{},
		&model.Instrument{},

		&model.Obj{},
		&model.Source{},
		&model.Photometry{},

		&model.SharingService{},
		&model.SharingServiceGroup{},
		&model.SharingServiceSubmission{},
	)
	if err != nil {
		return nil, err
	}

	return db, nil
}
