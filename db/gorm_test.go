package db

import (
	"fmt"
	"testing"

	"tunestream/config"

	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDSN(t *testing.T) {
	cfg := &config.Config{
		DBUser:     "music",
		DBPassword: "p@ss:word/1",
		DBHost:     "db.local",
		DBPort:     "3307",
		DBName:     "tunes",
	}

	dsn := DSN(cfg)
	parsed, err := mysql.ParseDSN(dsn)
	require.NoError(t, err)

	assert.Equal(t, "music", parsed.User)
	assert.Equal(t, "p@ss:word/1", parsed.Passwd)
	assert.Equal(t, "db.local:3307", parsed.Addr)
	assert.Equal(t, "tunes", parsed.DBName)
	assert.True(t, parsed.ParseTime)
}

func TestIsDuplicateKey(t *testing.T) {
	dup := &mysql.MySQLError{Number: 1062, Message: "Duplicate entry"}
	assert.True(t, IsDuplicateKey(dup))
	assert.True(t, IsDuplicateKey(fmt.Errorf("insert favorite: %w", dup)))
	assert.False(t, IsDuplicateKey(&mysql.MySQLError{Number: 1146}))
	assert.False(t, IsDuplicateKey(fmt.Errorf("boom")))
}
