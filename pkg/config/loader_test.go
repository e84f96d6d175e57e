package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadConfig_ExpandEnv(t *testing.T) {
	dir := t.TempDir()
	yaml := `
port: "8090"
pg:
  host: ${TEST_PG_HOST}
  port: 5432
socket:
  send_buffer: 64
  ping_interval: 15s
  authorize_join: true
mirror:
  driver: kafka
  brokers:
    - kafka-1:9092
    - kafka-2:9092
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "realtime_test.yaml"), []byte(yaml), 0644))
	t.Setenv("TEST_PG_HOST", "pg.internal")

	cfg, err := ReadConfig[Realtime]("realtime_test", dir)
	require.NoError(t, err)

	assert.Equal(t, "8090", cfg.Port)
	assert.Equal(t, "pg.internal", cfg.PostgreSQL.Host)
	assert.Equal(t, 5432, cfg.PostgreSQL.Port)
	assert.Equal(t, 64, cfg.Socket.SendBuffer)
	assert.Equal(t, 15*time.Second, cfg.Socket.PingInterval)
	assert.True(t, cfg.Socket.AuthorizeJoin)
	assert.Equal(t, "kafka", cfg.Mirror.Driver)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.Mirror.Brokers)
}

func TestReadConfig_MissingFile(t *testing.T) {
	_, err := ReadConfig[Realtime]("does_not_exist", t.TempDir())
	assert.Error(t, err)
}

func TestSocketConfig_WithDefaults(t *testing.T) {
	s := SocketConfig{SendBuffer: 8}.WithDefaults()
	assert.Equal(t, 8, s.SendBuffer)
	assert.Equal(t, 30*time.Second, s.PingInterval)
	assert.Equal(t, 10*time.Second, s.WriteWait)

	p := Probe{}.WithDefaults()
	assert.Equal(t, 5*time.Second, p.SnapshotRetry)
	assert.Equal(t, 2*time.Second, p.ReconnectDelay)
}
