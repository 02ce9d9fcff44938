package config

import (
	"time"
)

// Default configuration values.
const (
	defaultServiceName      = "review-triage"
	defaultServiceVersion   = "1.0.0"
	defaultServicePort      = 8072
	defaultBatchSize        = 10
	defaultMaxBatchSize     = 100
	defaultDBDriver         = "postgres"
	defaultDBHost           = "localhost"
	defaultDBPort           = 5432
	defaultDBUser           = "postgres"
	defaultDBName           = "review_triage"
	defaultDBSSLMode        = "disable"
	defaultDBMaxConns       = 25
	defaultDBMaxIdleConns   = 5
	defaultSQLitePath       = "review-triage.db"
	defaultESURL            = "http://localhost:9200"
	defaultESIndex          = "triage_results"
	defaultESTimeoutSec     = 30
	defaultRedisAddress     = "localhost:6379"
	defaultRedisChannel     = "triage_progress"
	defaultLogLevel         = "info"
	defaultLogFormat        = "json"
	defaultLabelerTimeout   = 5 * time.Second
	defaultLabelerModel     = "claude-sonnet-4-5"
	defaultSourceTimeoutSec = 30
	defaultSourceRPS        = 10
	defaultProgressRPS      = 5
)

// Config holds all configuration for the review-triage service.
type Config struct {
	Service       ServiceConfig       `yaml:"service"`
	Database      DatabaseConfig      `yaml:"database"`
	Elasticsearch ElasticsearchConfig `yaml:"elasticsearch"`
	Redis         RedisConfig         `yaml:"redis"`
	Labeler       LabelerConfig       `yaml:"labeler"`
	Source        SourceConfig        `yaml:"source"`
	Logging       LoggingConfig       `yaml:"logging"`
	Auth          AuthConfig          `yaml:"auth"`
}

// ServiceConfig holds service-level configuration.
type ServiceConfig struct {
	Name         string `yaml:"name"`
	Version      string `yaml:"version"`
	Port         int    `env:"TRIAGE_PORT" yaml:"port"`
	Debug        bool   `env:"APP_DEBUG"   yaml:"debug"`
	BatchSize    int    `yaml:"batch_size"`
	MaxBatchSize int    `yaml:"max_batch_size"`
}

// DatabaseConfig holds database configuration. Driver is "postgres" for
// deployments and "sqlite3" for local development and tests.
type DatabaseConfig struct {
	Driver          string        `env:"DB_DRIVER"         yaml:"driver"`
	Host            string        `env:"POSTGRES_HOST"     yaml:"host"`
	Port            int           `env:"POSTGRES_PORT"     yaml:"port"`
	User            string        `env:"POSTGRES_USER"     yaml:"user"`
	Password        string        `env:"POSTGRES_PASSWORD" yaml:"password"`
	Database        string        `env:"POSTGRES_DB"       yaml:"database"`
	SSLMode         string        `env:"POSTGRES_SSLMODE"  yaml:"sslmode"`
	SQLitePath      string        `env:"SQLITE_PATH"       yaml:"sqlite_path"`
	MaxConnections  int           `yaml:"max_connections"`
	MaxIdleConns    int           `yaml:"max_idle_connections"`
	ConnMaxLifetime time.Duration `yaml:"connection_max_lifetime"`
}

// ElasticsearchConfig holds the optional triage-result archive configuration.
type ElasticsearchConfig struct {
	Enabled  bool          `env:"ES_ENABLED"        yaml:"enabled"`
	URL      string        `env:"ELASTICSEARCH_URL" yaml:"url"`
	Username string        `yaml:"username"`
	Password string        `yaml:"password"`
	Index    string        `yaml:"index"`
	Timeout  time.Duration `yaml:"timeout"`
}

// RedisConfig holds the progress-channel configuration.
type RedisConfig struct {
	Enabled         bool   `env:"REDIS_ENABLED"  yaml:"enabled"`
	Address         string `env:"REDIS_ADDRESS"  yaml:"address"`
	Password        string `env:"REDIS_PASSWORD" yaml:"password"`
	Database        int    `yaml:"database"`
	ProgressChannel string `yaml:"progress_channel"`
	ProgressRPS     int    `yaml:"progress_rps"`
}

// LabelerConfig selects the external labeler. Mode is "off", "sidecar"
// (HTTP labeling service) or "anthropic" (LLM labeling).
type LabelerConfig struct {
	Mode       string        `env:"LABELER_MODE"      yaml:"mode"`
	SidecarURL string        `env:"LABELER_URL"       yaml:"sidecar_url"`
	APIKey     string        `env:"ANTHROPIC_API_KEY" yaml:"api_key"`
	Model      string        `yaml:"model"`
	Timeout    time.Duration `yaml:"timeout"`
}

// SourceConfig holds the review source configuration.
type SourceConfig struct {
	BaseURL string        `env:"REVIEW_SOURCE_URL" yaml:"base_url"`
	AppID   string        `env:"REVIEW_APP_ID"     yaml:"app_id"`
	Timeout time.Duration `yaml:"timeout"`
	RPS     int           `yaml:"rps"`
	Burst   int           `yaml:"burst"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `env:"LOG_LEVEL"  yaml:"level"`
	Format string `env:"LOG_FORMAT" yaml:"format"`
}

// AuthConfig holds authentication configuration. An empty JWT secret
// disables auth on the API group.
type AuthConfig struct {
	JWTSecret string `env:"AUTH_JWT_SECRET" yaml:"jwt_secret"`
}

// Load loads configuration from the specified path.
func Load(path string) (*Config, error) {
	return loadWithDefaults[Config](path, setDefaults)
}

// Default returns the built-in configuration with env overrides applied.
func Default() *Config {
	var cfg Config
	setDefaults(&cfg)
	applyEnvOverrides(&cfg)
	return &cfg
}

func setDefaults(cfg *Config) {
	setServiceDefaults(&cfg.Service)
	setDatabaseDefaults(&cfg.Database)
	setElasticsearchDefaults(&cfg.Elasticsearch)
	setRedisDefaults(&cfg.Redis)
	setLabelerDefaults(&cfg.Labeler)
	setSourceDefaults(&cfg.Source)
	setLoggingDefaults(&cfg.Logging)
}

func setServiceDefaults(s *ServiceConfig) {
	if s.Name == "" {
		s.Name = defaultServiceName
	}
	if s.Version == "" {
		s.Version = defaultServiceVersion
	}
	if s.Port == 0 {
		s.Port = defaultServicePort
	}
	if s.BatchSize == 0 {
		s.BatchSize = defaultBatchSize
	}
	if s.MaxBatchSize == 0 {
		s.MaxBatchSize = defaultMaxBatchSize
	}
}

func setDatabaseDefaults(d *DatabaseConfig) {
	if d.Driver == "" {
		d.Driver = defaultDBDriver
	}
	if d.Host == "" {
		d.Host = defaultDBHost
	}
	if d.Port == 0 {
		d.Port = defaultDBPort
	}
	if d.User == "" {
		d.User = defaultDBUser
	}
	if d.Database == "" {
		d.Database = defaultDBName
	}
	if d.SSLMode == "" {
		d.SSLMode = defaultDBSSLMode
	}
	if d.SQLitePath == "" {
		d.SQLitePath = defaultSQLitePath
	}
	if d.MaxConnections == 0 {
		d.MaxConnections = defaultDBMaxConns
	}
	if d.MaxIdleConns == 0 {
		d.MaxIdleConns = defaultDBMaxIdleConns
	}
	if d.ConnMaxLifetime == 0 {
		d.ConnMaxLifetime = time.Hour
	}
}

func setElasticsearchDefaults(e *ElasticsearchConfig) {
	if e.URL == "" {
		e.URL = defaultESURL
	}
	if e.Index == "" {
		e.Index = defaultESIndex
	}
	if e.Timeout == 0 {
		e.Timeout = defaultESTimeoutSec * time.Second
	}
}

func setRedisDefaults(r *RedisConfig) {
	if r.Address == "" {
		r.Address = defaultRedisAddress
	}
	if r.ProgressChannel == "" {
		r.ProgressChannel = defaultRedisChannel
	}
	if r.ProgressRPS == 0 {
		r.ProgressRPS = defaultProgressRPS
	}
}

func setLabelerDefaults(l *LabelerConfig) {
	if l.Mode == "" {
		l.Mode = "off"
	}
	if l.Model == "" {
		l.Model = defaultLabelerModel
	}
	if l.Timeout == 0 {
		l.Timeout = defaultLabelerTimeout
	}
}

func setSourceDefaults(s *SourceConfig) {
	if s.Timeout == 0 {
		s.Timeout = defaultSourceTimeoutSec * time.Second
	}
	if s.RPS == 0 {
		s.RPS = defaultSourceRPS
	}
	if s.Burst == 0 {
		s.Burst = s.RPS
	}
}

func setLoggingDefaults(l *LoggingConfig) {
	if l.Level == "" {
		l.Level = defaultLogLevel
	}
	if l.Format == "" {
		l.Format = defaultLogFormat
	}
}
