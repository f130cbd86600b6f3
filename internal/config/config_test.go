package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoad(t *testing.T) {
	for k, v := range map[string]string{
		"APP_ENV":                "test",
		"APP_PORT":               "8080",
		"DB_USER":                "root",
		"DB_HOST":                "localhost",
		"DB_PORT":                "3306",
		"DB_NAME":                "catalog",
		"SESSION_SECRET":         "s3cret",
		"SESSION_TTL_MIN":        "30",
		"BCRYPT_COST":            "10",
		"UPLOAD_DIR":             t.TempDir(),
		"ADMIN_INITIAL_PASSWORD": "initial-pw",
	} {
		t.Setenv(k, v)
	}

	cfg := Load()
	assert.Equal(t, "test", cfg.Env)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 30, cfg.SessionTTLMin)
	assert.Equal(t, 10, cfg.BcryptCost)
	assert.Equal(t, "initial-pw", cfg.AdminInitialPass)
	assert.Empty(t, cfg.DBPass, "database password is optional")
}
