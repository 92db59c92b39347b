package config

import (
	"fmt"
	"time"

	"github.com/Temutjin2k/campus-radar/pkg/configparser"
)

// Config contains all configuration variables of the application
type (
	Config struct {
		ServiceName string `env:"SERVICE_NAME" default:"proximity-service"`
		LogLevel    string `env:"LOG_LEVEL" default:"INFO"`

		Server   ServerConfig
		Database DatabaseConfig
		Mongo    MongoConfig
		Redis    RedisConfig
		Cache    CacheConfig
		RabbitMQ RabbitMQConfig
		Auth     Auth
		Location LocationConfig
		Privacy  PrivacyConfig
	}

	ServerConfig struct {
		Port            string        `env:"SERVER_PORT" default:"3010"`
		ReadTimeout     time.Duration `env:"SERVER_READTIMEOUT" default:"10s"`
		WriteTimeout    time.Duration `env:"SERVER_WRITETIMEOUT" default:"10s"`
		ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWNTIMEOUT" default:"5s"`
	}

	DatabaseConfig struct {
		Host     string `env:"DATABASE_HOST" default:"localhost"`
		Port     string `env:"DATABASE_PORT" default:"5432"`
		User     string `env:"DATABASE_USER" default:"campus_user"`
		Password string `env:"DATABASE_PASSWORD" default:"campus_pass"`
		Database string `env:"DATABASE_DATABASE" default:"campus_db"`

		MaxConns        int32         `env:"DATABASE_MAXCONNS" default:"20"`
		MinConns        int32         `env:"DATABASE_MINCONNS" default:"2"`
		MaxConnLifetime time.Duration `env:"DATABASE_MAXCONNLIFETIME" default:"30m"`
		MaxConnIdleTime time.Duration `env:"DATABASE_MAXCONNIDLETIME" default:"5m"`

		// QueryTimeout bounds every store call made by the services.
		QueryTimeout time.Duration `env:"DATABASE_QUERYTIMEOUT" default:"3s"`
	}

	MongoConfig struct {
		URI        string        `env:"MONGO_URI" default:"mongodb://localhost:27017"`
		Database   string        `env:"MONGO_DATABASE" default:"campus"`
		Collection string        `env:"MONGO_COLLECTION" default:"user_locations"`
		Timeout    time.Duration `env:"MONGO_TIMEOUT" default:"3s"`
	}

	// RedisConfig is optional: an empty address leaves the cache in-process only.
	RedisConfig struct {
		Addr     string `env:"REDIS_ADDR"`
		Password string `env:"REDIS_PASSWORD"`
		DB       int    `env:"REDIS_DB" default:"0"`
	}

	CacheConfig struct {
		LocalSize   int           `env:"CACHE_LOCALSIZE" default:"10000"`
		LocalMaxTTL time.Duration `env:"CACHE_LOCALMAXTTL" default:"15s"`
		Timeout     time.Duration `env:"CACHE_TIMEOUT" default:"200ms"`

		LocationTTL        time.Duration `env:"CACHE_LOCATIONTTL" default:"30m"`
		NearbyTTL          time.Duration `env:"CACHE_NEARBYTTL" default:"5m"`
		PrivacySettingsTTL time.Duration `env:"CACHE_PRIVACYSETTINGSTTL" default:"1h"`
		PrivacyDecisionTTL time.Duration `env:"CACHE_PRIVACYDECISIONTTL" default:"5m"`
	}

	RabbitMQConfig struct {
		Enabled  bool   `env:"RABBITMQ_ENABLED" default:"false"`
		Host     string `env:"RABBITMQ_HOST" default:"localhost"`
		Port     string `env:"RABBITMQ_PORT" default:"5672"`
		User     string `env:"RABBITMQ_USER" default:"guest"`
		Password string `env:"RABBITMQ_PASSWORD" default:"guest"`
		Exchange string `env:"RABBITMQ_EXCHANGE" default:"location_topic"`

		PublishTimeout time.Duration `env:"RABBITMQ_PUBLISHTIMEOUT" default:"500ms"`
	}

	Auth struct {
		JWTSecret string `env:"AUTH_JWT_SECRET" default:"supersecretkey"`
	}

	LocationConfig struct {
		UpdateCooldown   time.Duration `env:"LOCATION_UPDATECOOLDOWN" default:"30s"`
		MaxRadiusMeters  float64       `env:"LOCATION_MAXRADIUSMETERS" default:"50000"`
		BuildingResolver string        `env:"LOCATION_BUILDINGRESOLVER" default:"linear"` // linear | geohash
		HistoryLimit     int           `env:"LOCATION_HISTORYLIMIT" default:"500"`
	}

	PrivacyConfig struct {
		// FriendsOnlyEnabled switches friends_only evaluation from always-deny to the connections table.
		FriendsOnlyEnabled bool `env:"PRIVACY_FRIENDSONLYENABLED" default:"false"`
	}
)

func (c DatabaseConfig) GetDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.User,
		c.Password,
		c.Host,
		c.Port,
		c.Database,
	)
}

func (c RabbitMQConfig) GetDSN() string {
	return fmt.Sprintf("amqp://%s:%s@%s:%s/",
		c.User,
		c.Password,
		c.Host,
		c.Port,
	)
}

func NewConfig(filepath string) (*Config, error) {
	cfg := &Config{}

	// Loading enviromental variables and parsing to config struct.
	if err := configparser.LoadAndParseYaml(filepath, cfg); err != nil {
		return nil, fmt.Errorf("failed to load and parse config: %w", err)
	}

	return cfg, nil
}

func (c DatabaseConfig) PoolLimits() (maxConns, minConns int32, maxLifetime, maxIdle time.Duration) {
	return c.MaxConns, c.MinConns, c.MaxConnLifetime, c.MaxConnIdleTime
}

func (c MongoConfig) GetURI() string {
	return c.URI
}

func (c MongoConfig) GetDatabase() string {
	return c.Database
}
