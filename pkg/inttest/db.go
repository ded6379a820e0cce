package inttest

import (
	"log/slog"
	"testing"

	"github.com/orlangure/gnomock"
	"github.com/orlangure/gnomock/preset/postgres"
	"github.com/skyportal/skyportal/pkg/config"
	"github.com/skyportal/skyportal/pkg/storage"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// SetupDB creates a PostgreSQL container. Gorm is connected to the DB and runs the migrations.
func SetupDB(t *testing.T) *gorm.DB {
	t.Helper()

	container, err := gnomock.Start(
		postgres.Preset(
			postgres.WithUser("skyportal", "skyportal"),
			postgres.WithDatabase("test_skyportal"),
		),
	)
	require.NoError(t, err, "failed to start DB")
	t.Cleanup(func() { require.NoError(t, gnomock.Stop(container), "failed to stop DB") })

	db, err := storage.NewDatabase(slog.Default(), config.Postgresql{
		Host:         container.Host,
		Port:         container.DefaultPort(),
		Username:     "skyportal",
		Password:     "skyportal",
		DatabaseName: "test_skyportal",
	})
	require.NoError(t, err, "failed to setup DB")
	return db
}
