package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeDotEnv(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadDotEnvParsing(t *testing.T) {
	path := writeDotEnv(t, `
# local overrides
PORT=9090
export DATABASE_URL="postgres://localhost/minimarket"
EMPTY=''
`)
	values, err := loadDotEnv(path)
	require.NoError(t, err)

	assert.Equal(t, "9090", values["PORT"])
	assert.Equal(t, "postgres://localhost/minimarket", values["DATABASE_URL"])
	assert.Equal(t, "", values["EMPTY"])
}

func TestLoadDotEnvMissingFileIsEmpty(t *testing.T) {
	values, err := loadDotEnv(filepath.Join(t.TempDir(), ".env"))
	require.NoError(t, err)
	assert.Empty(t, values)
}

func TestLoadDotEnvRejectsMalformedLines(t *testing.T) {
	_, err := loadDotEnv(writeDotEnv(t, "NOT A PAIR"))
	require.Error(t, err)

	_, err = loadDotEnv(writeDotEnv(t, "=value"))
	require.Error(t, err)
}

func TestLookupPrefersEnvironment(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://env-wins")
	fileValues := map[string]string{"DATABASE_URL": "postgres://file-loses"}
	assert.Equal(t, "postgres://env-wins", lookup("DATABASE_URL", fileValues))

	t.Setenv("DATABASE_URL", "")
	assert.Equal(t, "postgres://file-loses", lookup("DATABASE_URL", fileValues))
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/minimarket")
	t.Setenv("PORT", "3000")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 3000, cfg.Port)
	assert.Equal(t, "postgres://localhost/minimarket", cfg.DatabaseURL)
}

func TestLoadDefaultsPort(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/minimarket")
	t.Setenv("PORT", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Port)
}

func TestLoadRejectsBadPortAndMissingDatabase(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/minimarket")
	t.Setenv("PORT", "zero")
	_, err := Load()
	require.Error(t, err)

	t.Setenv("PORT", "")
	t.Setenv("DATABASE_URL", "")
	_, err = Load()
	require.Error(t, err)
}
