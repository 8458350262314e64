package database

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sangkips/dentalbill-api/internal/domain/entity"
)

func writeCatalog(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadCatalog(t *testing.T) {
	path := writeCatalog(t, `
services:
  - name: " Scaling "
    percentage: 20
    description: Scaling and polishing
  - name: Root Canal
    percentage: 35
`)
	entries, err := LoadCatalog(path)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "Scaling", entries[0].Name)
	assert.Equal(t, 35.0, entries[1].Percentage)
}

func TestLoadCatalog_MissingFile(t *testing.T) {
	entries, err := LoadCatalog(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestLoadCatalog_Invalid(t *testing.T) {
	tests := map[string]string{
		"duplicate": "services:\n  - {name: Scaling, percentage: 20}\n  - {name: scaling, percentage: 25}\n",
		"range":     "services:\n  - {name: Crown, percentage: 140}\n",
		"no name":   "services:\n  - {percentage: 10}\n",
		"bad yaml":  "services: [",
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := LoadCatalog(writeCatalog(t, body))
			assert.Error(t, err)
		})
	}
}

func TestShippedCatalogLoads(t *testing.T) {
	entries, err := LoadCatalog(filepath.Join("..", "..", "..", "configs", "catalog.yaml"))
	require.NoError(t, err)
	assert.NotEmpty(t, entries)
}

func TestRolePermissions(t *testing.T) {
	admin := RolePermissions[entity.RoleAdmin]
	for role, perms := range RolePermissions {
		for _, p := range perms {
			assert.Contains(t, admin, p, "role %s grants %s which is not seeded", role, p)
		}
	}
	assert.NotContains(t, RolePermissions[entity.RoleFrontDesk], entity.PermManageFees)
}
