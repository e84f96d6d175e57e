package config

import "time"

// Realtime definition realtime_service YAML structure
type Realtime struct {
	Port       string         `mapstructure:"port"`
	PostgreSQL DatabaseConfig `mapstructure:"pg"`
	MongoSQL   DatabaseConfig `mapstructure:"mongo"`
	Redis      RedisConfig    `mapstructure:"redis"`
	Mirror     MirrorConfig   `mapstructure:"mirror"`
	Socket     SocketConfig   `mapstructure:"socket"`
}

// Probe definition presence_probe YAML structure
type Probe struct {
	URL            string        `mapstructure:"url"`
	Token          string        `mapstructure:"token"`
	SnapshotRetry  time.Duration `mapstructure:"snapshot_retry"`
	ReconnectDelay time.Duration `mapstructure:"reconnect_delay"`
}

// RedisConfig definition redis setting
type RedisConfig struct {
	RedisDB int `mapstructure:"redis_db"`
	// Addr standalone address, sentinel settings from .env are used when empty
	Addr string `mapstructure:"addr"`
}

// DatabaseConfig definition db setting
type DatabaseConfig struct {
	Host          string `mapstructure:"host"`
	Port          int    `mapstructure:"port"`
	User          string `mapstructure:"user"`
	Password      string `mapstructure:"password"`
	Database      string `mapstructure:"database"`
	RetryInterval int    `mapstructure:"retry_interval"`
	RetryCount    int    `mapstructure:"retry_count"`
}

// MirrorConfig definition where emitted events are republished
type MirrorConfig struct {
	// Driver one of none, redis, kafka, rabbitmq
	Driver    string   `mapstructure:"driver"`
	Channel   string   `mapstructure:"channel"`
	Brokers   []string `mapstructure:"brokers"`
	Topic     string   `mapstructure:"topic"`
	RabbitURL string   `mapstructure:"rabbit_url"`
	Exchange  string   `mapstructure:"exchange"`
	QueueSize int      `mapstructure:"queue_size"`
}

// SocketConfig definition websocket connection setting
type SocketConfig struct {
	SendBuffer    int           `mapstructure:"send_buffer"`
	PingInterval  time.Duration `mapstructure:"ping_interval"`
	WriteWait     time.Duration `mapstructure:"write_wait"`
	AuthorizeJoin bool          `mapstructure:"authorize_join"`
}

// WithDefaults fill zero values
func (s SocketConfig) WithDefaults() SocketConfig {
	if s.SendBuffer <= 0 {
		s.SendBuffer = 256
	}
	if s.PingInterval <= 0 {
		s.PingInterval = 30 * time.Second
	}
	if s.WriteWait <= 0 {
		s.WriteWait = 10 * time.Second
	}
	return s
}

// WithDefaults fill zero values
func (p Probe) WithDefaults() Probe {
	if p.SnapshotRetry <= 0 {
		p.SnapshotRetry = 5 * time.Second
	}
	if p.ReconnectDelay <= 0 {
		p.ReconnectDelay = 2 * time.Second
	}
	return p
}
