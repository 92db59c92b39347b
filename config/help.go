package config

import (
	"flag"
	"fmt"
)

const HelpMessage = `
Campus proximity service.

Usage:
  radar [-config-path <file>]
  radar -help

Options:
  -config-path   Path to the config yaml file (default: config.yaml).
                 Every key can be overridden by the matching environment variable,
                 e.g. database.host -> DATABASE_HOST.
  -help          Show this message.
`

func PrintHelp() {
	if HelpMessage != "" {
		fmt.Printf("%s", HelpMessage)
	} else {
		flag.Usage()
	}
}

// PrintConfig prints the effective configuration with secrets masked.
func PrintConfig(cfg *Config) {
	if cfg == nil {
		return
	}

	fmt.Println("Configuration:")
	fmt.Printf("  service:   %s (log level %s)\n", cfg.ServiceName, cfg.LogLevel)
	fmt.Printf("  http:      :%s\n", cfg.Server.Port)
	fmt.Printf("  postgres:  %s@%s:%s/%s (password %s)\n",
		cfg.Database.User, cfg.Database.Host, cfg.Database.Port, cfg.Database.Database, mask(cfg.Database.Password))
	fmt.Printf("  mongo:     %s db=%s collection=%s\n", cfg.Mongo.URI, cfg.Mongo.Database, cfg.Mongo.Collection)
	fmt.Printf("  redis:     %s\n", orNone(cfg.Redis.Addr))
	fmt.Printf("  cache:     local=%d ttl(location=%s nearby=%s settings=%s decisions=%s)\n",
		cfg.Cache.LocalSize, cfg.Cache.LocationTTL, cfg.Cache.NearbyTTL, cfg.Cache.PrivacySettingsTTL, cfg.Cache.PrivacyDecisionTTL)
	fmt.Printf("  rabbitmq:  enabled=%t %s:%s exchange=%s publish_timeout=%s\n",
		cfg.RabbitMQ.Enabled, cfg.RabbitMQ.Host, cfg.RabbitMQ.Port, cfg.RabbitMQ.Exchange, cfg.RabbitMQ.PublishTimeout)
	fmt.Printf("  location:  cooldown=%s max_radius=%.0fm buildings=%s\n",
		cfg.Location.UpdateCooldown, cfg.Location.MaxRadiusMeters, cfg.Location.BuildingResolver)
	fmt.Printf("  privacy:   friends_only_enabled=%t\n", cfg.Privacy.FriendsOnlyEnabled)
	fmt.Printf("  auth:      jwt secret %s\n", mask(cfg.Auth.JWTSecret))
}

func mask(s string) string {
	if s == "" {
		return "<empty>"
	}
	return "****"
}

func orNone(s string) string {
	if s == "" {
		return "<disabled>"
	}
	return s
}
