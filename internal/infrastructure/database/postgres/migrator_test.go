package postgres

import (
	"io/fs"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/LegalEase-Intelligence/pkg/errors"
)

func TestMigrationFiles_ArePaired(t *testing.T) {
	entries, err := fs.ReadDir(migrationFiles, migrationsDir)
	require.NoError(t, err)
	require.NotEmpty(t, entries)

	ups := map[string]bool{}
	downs := map[string]bool{}
	for _, e := range entries {
		name := e.Name()
		switch {
		case strings.HasSuffix(name, ".up.sql"):
			ups[strings.TrimSuffix(name, ".up.sql")] = true
		case strings.HasSuffix(name, ".down.sql"):
			downs[strings.TrimSuffix(name, ".down.sql")] = true
		default:
			t.Errorf("unexpected file in migrations: %s", name)
		}
	}
	assert.Equal(t, ups, downs)
}

func TestMigrationFiles_SeedGlossary(t *testing.T) {
	body, err := fs.ReadFile(migrationFiles, migrationsDir+"/000002_create_glossary.up.sql")
	require.NoError(t, err)
	for _, term := range []string{"Liability", "Indemnify", "Breach", "Jurisdiction", "Force Majeure"} {
		assert.Contains(t, string(body), "'"+term+"'")
	}
}

func TestMigrator_RollbackRejectsNonPositiveSteps(t *testing.T) {
	m := NewMigrator(nil, nil)
	err := m.Rollback(0)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeBadRequest))
}
