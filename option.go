package dlcf_library

import (
	"github.com/IsraelDcoder/Dlcf-library/service"
	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"
)

type ServiceConfig struct {
	Debug bool
}

type Config struct {
	DB          *gorm.DB
	RDB         *redis.Client
	TablePrefix string
	Service     ServiceConfig

	// UploadDir is the root of on-disk content storage. Each content type
	// gets its own subfolder.
	UploadDir string

	// Audit mirrors activity rows to Kafka when brokers are configured.
	Audit service.AuditConfig

	// SMTP enables notification email when a host is configured.
	SMTP service.SMTPConfig
}

type Option func(*Config)

func WithDB(db *gorm.DB) Option {
	return func(c *Config) {
		c.DB = db
	}
}

func WithTablePrefix(prefix string) Option {
	return func(c *Config) {
		c.TablePrefix = prefix
	}
}

func WithRDB(RDB *redis.Client) Option {
	return func(c *Config) {
		c.RDB = RDB
	}
}

func WithServiceDebug(debug bool) Option {
	return func(c *Config) {
		c.Service.Debug = debug
	}
}

func WithUploadDir(dir string) Option {
	return func(c *Config) {
		c.UploadDir = dir
	}
}

func WithAudit(cfg service.AuditConfig) Option {
	return func(c *Config) {
		c.Audit = cfg
	}
}

func WithSMTP(cfg service.SMTPConfig) Option {
	return func(c *Config) {
		c.SMTP = cfg
	}
}
