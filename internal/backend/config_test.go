package backend

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Selvaganesh007/expense-tracker/internal/config"
)

func TestTypeIsValid(t *testing.T) {
	for _, typ := range Types() {
		assert.True(t, typ.IsValid(), "expected %s to be valid", typ)
	}
	assert.False(t, Type("sheets").IsValid())
	assert.False(t, Type("").IsValid())
}

func TestFromAppConfig(t *testing.T) {
	app := &config.Config{
		DataBackend:  "sqlite",
		SQLiteDBPath: "/tmp/tracker.db",
		AMQPURL:      "amqp://localhost:5672",
		AMQPExchange: "tracker",
		AMQPQueue:    "export_transactions",
	}

	cfg, err := FromAppConfig(app)
	require.NoError(t, err)
	assert.Equal(t, SQLiteBackend, cfg.Type)
	assert.Equal(t, "/tmp/tracker.db", cfg.SQLiteDBPath)
	assert.Equal(t, "tracker", cfg.AMQPExchange)
	require.NoError(t, cfg.Validate())
}

func TestFromAppConfig_InvalidType(t *testing.T) {
	_, err := FromAppConfig(&config.Config{DataBackend: "csv"})
	require.Error(t, err)
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"sqlite without path", Config{Type: SQLiteBackend}, true},
		{"postgres without dsn", Config{Type: PostgresBackend}, true},
		{"memory without dir", Config{Type: MemoryBackend}, false},
		{"amqp url without queue", Config{Type: MemoryBackend, AMQPURL: "amqp://x", AMQPExchange: "e"}, true},
		{"full sqlite", Config{Type: SQLiteBackend, SQLiteDBPath: "db.sqlite"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
