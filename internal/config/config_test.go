package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	for _, k := range []string{
		"SERVICE_NAME", "SERVER_PORT", "LOG_LEVEL", "DATABASE_URL", "JWT_SECRET", "JWT_ALGORITHM",
		"ACCESS_TOKEN_EXPIRE_MINUTES", "BCRYPT_COST", "KAFKA_BROKERS",
		"BOOTSTRAP_ADMIN_USERNAME", "BOOTSTRAP_ADMIN_PASSWORD",
	} {
		t.Setenv(k, "")
	}

	cfg := Load(filepath.Join(t.TempDir(), "missing.env"))

	assert.Equal(t, "campusflow", cfg.ServiceName)
	assert.Equal(t, 8080, cfg.ServerPort)
	assert.Equal(t, ":8080", cfg.Addr())
	assert.Equal(t, "HS256", cfg.JWTAlgorithm)
	assert.Equal(t, 30*time.Minute, cfg.AccessTTL)
	assert.Equal(t, 10, cfg.BcryptCost)
	assert.Nil(t, cfg.KafkaBrokers)

	err := cfg.Validate()
	require.Error(t, err)
	assert.ErrorContains(t, err, "DATABASE_URL")
	assert.ErrorContains(t, err, "JWT_SECRET")
}

func TestLoad_FromEnvAndDotenv(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("JWT_SECRET", "from-env")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,,")
	t.Setenv("ACCESS_TOKEN_EXPIRE_MINUTES", "5")
	t.Setenv("DATABASE_URL", "")
	require.NoError(t, os.Unsetenv("DATABASE_URL"))

	envFile := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("DATABASE_URL=postgres://u:p@h:5432/db\nJWT_SECRET=from-file\n"), 0o600))

	cfg := Load(envFile)

	assert.Equal(t, 9090, cfg.ServerPort)
	assert.Equal(t, "postgres://u:p@h:5432/db", cfg.DatabaseURL)
	// godotenv does not override variables that are already set
	assert.Equal(t, []byte("from-env"), cfg.JWTSecret)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, 5*time.Minute, cfg.AccessTTL)
	assert.NoError(t, cfg.Validate())
}

func TestEnvIntDefault_Invalid(t *testing.T) {
	t.Setenv("SERVER_PORT", "not-a-number")
	assert.Equal(t, 8080, EnvIntDefault("SERVER_PORT", 8080))
}

func TestCSV(t *testing.T) {
	t.Parallel()

	assert.Nil(t, CSV(""))
	assert.Equal(t, []string{"a", "b"}, CSV(" a ,b, "))
}
