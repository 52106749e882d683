package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stars-bot/internal/config"
)

func TestDialector(t *testing.T) {
	for _, driver := range []string{"postgres", "mysql"} {
		t.Run(driver, func(t *testing.T) {
			d, err := Dialector(&config.Config{DBDriver: driver, DBHost: "db", DBPort: "1", DBName: "x"})
			require.NoError(t, err)
			assert.Equal(t, driver, d.Name())
		})
	}

	_, err := Dialector(&config.Config{DBDriver: "sqlite"})
	assert.Error(t, err)
}
