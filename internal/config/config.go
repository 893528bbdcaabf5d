package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

type Config struct {
	DBURL     string `env:"DB_URL,required"`
	Port      string `env:"PORT" envDefault:"8080"`
	APIURL    string `env:"API_URL"`
	JWTSecret string `env:"JWT_SECRET,required"`

	// applies internal/database/schema on startup
	MigrateOnStart bool `env:"MIGRATE_ON_START" envDefault:"true"`

	// redis is optional, without it reconcile triggers stay in process
	RedisAddr      string `env:"REDIS_ADDR"`
	RedisPassword  string `env:"REDIS_PASSWORD"`
	RedisDB        int    `env:"REDIS_DB" envDefault:"0"`
	ReconcileQueue string `env:"RECONCILE_QUEUE" envDefault:"arena:reconcile"`

	ReconcileInterval time.Duration `env:"RECONCILE_INTERVAL" envDefault:"10m"`
	RoleCacheSize     int           `env:"ROLE_CACHE_SIZE" envDefault:"1024"`

	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
	LogJSON  bool   `env:"LOG_JSON" envDefault:"false"`
}

// Load reads an optional .env file and then the environment. Variables
// already set in the environment win over the file.
func Load(files ...string) (Config, error) {
	if err := godotenv.Load(files...); err != nil {
		log.Debugf("no .env file loaded, %v", err)
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if cfg.ReconcileInterval <= 0 {
		return Config{}, fmt.Errorf(
			"parse env: RECONCILE_INTERVAL must be positive, got %v",
			cfg.ReconcileInterval,
		)
	}
	return cfg, nil
}

func (c Config) Address() string {
	return c.APIURL + ":" + c.Port
}

// ConfigureLogger applies the level and formatter to the standard logger
func (c Config) ConfigureLogger() error {
	level, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		return fmt.Errorf("invalid LOG_LEVEL %q: %w", c.LogLevel, err)
	}
	log.SetLevel(level)

	if c.LogJSON {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{
			FullTimestamp: true,
		})
	}
	return nil
}
