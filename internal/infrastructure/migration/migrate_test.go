package migration

import (
	"testing"

	"github.com/frontdesk/backend/migrations"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbeddedMigrations(t *testing.T) {
	src, err := iofs.New(migrations.FS, ".")
	require.NoError(t, err)
	defer src.Close()

	first, err := src.First()
	require.NoError(t, err)
	assert.Equal(t, uint(1), first)

	next, err := src.Next(first)
	require.NoError(t, err)
	assert.Equal(t, uint(2), next)

	up, ident, err := src.ReadUp(next)
	require.NoError(t, err)
	defer up.Close()
	assert.Equal(t, "create_billing", ident)
}
