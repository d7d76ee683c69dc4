package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chdir switches to dir for the duration of the test, restoring the
// previous working directory on cleanup. (testing.T.Chdir needs Go 1.24.)
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(old) })
}

// Values supplied only through a .env file must be picked up by Load.
func TestLoadReadsDotEnvFile(t *testing.T) {
	t.Setenv("POSTGRES_URL", "placeholder")
	require.NoError(t, os.Unsetenv("POSTGRES_URL"))
	t.Setenv("MONGO_DB_NAME", "placeholder")
	require.NoError(t, os.Unsetenv("MONGO_DB_NAME"))

	dir := t.TempDir()
	env := "POSTGRES_URL=postgres://env-file:5432/app\nMONGO_DB_NAME=fromfile\n"
	require.NoError(t, os.WriteFile(dir+"/.env", []byte(env), 0o600))
	chdir(t, dir)

	cfg := Load()

	assert.Equal(t, "postgres://env-file:5432/app", cfg.PostgresURL)
	assert.Equal(t, "fromfile", cfg.MongoDBName)
}

// Real environment variables keep precedence over the .env file.
func TestLoadEnvironmentOverridesDotEnv(t *testing.T) {
	t.Setenv("POSTGRES_URL", "postgres://real-env:5432/app")

	dir := t.TempDir()
	env := "POSTGRES_URL=postgres://env-file:5432/app\n"
	require.NoError(t, os.WriteFile(dir+"/.env", []byte(env), 0o600))
	chdir(t, dir)

	cfg := Load()

	assert.Equal(t, "postgres://real-env:5432/app", cfg.PostgresURL)
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "placeholder")
	require.NoError(t, os.Unsetenv("PORT"))
	chdir(t, t.TempDir())

	cfg := Load()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, "socialite", cfg.MongoDBName)
}
