package config

import (
	"fmt"
	"log"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config is the flattened runtime configuration. Sources, in override
// order: built-in defaults, config.yaml, environment variables (dots in
// keys become underscores, e.g. MYSQL_DSN).
type Config struct {
	HTTP struct {
		Addr string
	}
	MySQL struct {
		DSN string
	}
	Redis struct {
		Addr     string
		Password string
		DB       int
	}
	Upload struct {
		Dir string
	}
	Kafka struct {
		Brokers []string
		Topic   string
	}
	SMTP struct {
		Host     string
		Port     int
		Username string
		Password string
		From     string
	}
}

// Load reads .env (optional), config.yaml (optional) and the environment,
// and returns the resolved configuration.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file found, skipping")
	}

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	viper.SetDefault("http.addr", ":8080")
	viper.SetDefault("mysql.dsn", "")
	viper.SetDefault("redis.addr", "")
	viper.SetDefault("redis.password", "")
	viper.SetDefault("redis.db", 0)
	viper.SetDefault("upload.dir", "./uploads")
	viper.SetDefault("kafka.brokers", []string{})
	viper.SetDefault("kafka.topic", "library-activity")
	viper.SetDefault("smtp.host", "")
	viper.SetDefault("smtp.port", 587)

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			log.Printf("no config.yaml found, using defaults and environment")
		} else {
			return nil, fmt.Errorf("parse config.yaml: %w", err)
		}
	}

	cfg := &Config{}
	cfg.HTTP.Addr = viper.GetString("http.addr")
	cfg.MySQL.DSN = viper.GetString("mysql.dsn")
	cfg.Redis.Addr = viper.GetString("redis.addr")
	cfg.Redis.Password = viper.GetString("redis.password")
	cfg.Redis.DB = viper.GetInt("redis.db")
	cfg.Upload.Dir = viper.GetString("upload.dir")
	cfg.Kafka.Brokers = viper.GetStringSlice("kafka.brokers")
	cfg.Kafka.Topic = viper.GetString("kafka.topic")
	cfg.SMTP.Host = viper.GetString("smtp.host")
	cfg.SMTP.Port = viper.GetInt("smtp.port")
	cfg.SMTP.Username = viper.GetString("smtp.username")
	cfg.SMTP.Password = viper.GetString("smtp.password")
	cfg.SMTP.From = viper.GetString("smtp.from")
	return cfg, nil
}
