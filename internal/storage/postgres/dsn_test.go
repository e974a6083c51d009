package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vox-librorum/vox-desk/config"
)

func TestDSN(t *testing.T) {
	t.Run("explicit dsn wins", func(t *testing.T) {
		cfg := &config.DatabaseConfig{DSN: "postgres://x@y/z", Host: "ignored"}
		assert.Equal(t, "postgres://x@y/z", DSN(cfg))
	})

	t.Run("built from parts", func(t *testing.T) {
		cfg := &config.DatabaseConfig{Host: "db", Port: 5433, User: "vox", Password: "pw", Name: "archive"}
		assert.Equal(t, "host=db port=5433 user=vox password=pw dbname=archive sslmode=disable", DSN(cfg))
	})
}
