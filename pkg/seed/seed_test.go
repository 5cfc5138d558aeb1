package seed

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"sphinx_backend/internal/model"
	"sphinx_backend/internal/service"
	"sphinx_backend/pkg/database"
	"sphinx_backend/pkg/logger"
)

func newDB(t *testing.T) *gorm.DB {
	t.Helper()
	log := logger.Discard()
	db, err := database.Open("sqlite://:memory:", log)
	require.NoError(t, err)
	require.NoError(t, database.MigrateDatabase(db, log, model.All()...))
	return db
}

func TestAdminIsIdempotent(t *testing.T) {
	db := newDB(t)
	log := logger.Component(logger.Discard(), "seed")

	admin, created, err := Admin(context.Background(), db, " Owner@Sphinx.test ", "changeme", log)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, model.RoleAdmin, admin.Role)
	assert.Equal(t, "owner@sphinx.test", admin.Email)

	again, created, err := Admin(context.Background(), db, "owner@sphinx.test", "changeme", log)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, admin.ID, again.ID)

	_, _, err = Admin(context.Background(), db, "x@sphinx.test", "123", log)
	assert.Error(t, err)
}

func TestServicesSeedsOnce(t *testing.T) {
	db := newDB(t)
	log := logger.Component(logger.Discard(), "seed")
	catalog := service.NewCatalogService(db, log)

	n, err := Services(context.Background(), db, catalog, log)
	require.NoError(t, err)
	assert.Equal(t, len(defaultServices), n)

	n, err = Services(context.Background(), db, catalog, log)
	require.NoError(t, err)
	assert.Zero(t, n)

	got, err := catalog.GetBySlug(context.Background(), "planting-gardens")
	require.NoError(t, err)
	assert.Equal(t, "softscaping", got.Category)
	assert.Equal(t, "fa-tree", got.Icon)
}
