package config

import (
	"fmt"
	"net/url"
	"time"

	"github.com/glimrhq/glimr/internal/database"
)

// Config represents the main application configuration
type Config struct {
	Database   Database   `json:"database" mapstructure:"database"`
	Migrations Migrations `json:"migrations" mapstructure:"migrations"`
	Snapshot   Snapshot   `json:"snapshot" mapstructure:"snapshot"`
	Server     Server     `json:"server" mapstructure:"server"`
}

// Database represents database configuration. Host through SSLMode apply
// to postgres; Path is the sqlite database file.
type Database struct {
	Driver          string        `json:"driver" mapstructure:"driver"`
	Host            string        `json:"host" mapstructure:"host"`
	Port            int           `json:"port" mapstructure:"port"`
	User            string        `json:"user" mapstructure:"user"`
	Password        string        `json:"password" mapstructure:"password"`
	DBName          string        `json:"dbname" mapstructure:"dbname"`
	SSLMode         string        `json:"sslmode" mapstructure:"sslmode"`
	Path            string        `json:"path" mapstructure:"path"`
	MaxConnections  int           `json:"max_connections" mapstructure:"max_connections"`
	MaxIdleConns    int           `json:"max_idle_conns" mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `json:"conn_max_lifetime" mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `json:"conn_max_idle_time" mapstructure:"conn_max_idle_time"`
}

// Migrations represents migration file configuration
type Migrations struct {
	Dir string `json:"dir" mapstructure:"dir"`
}

// Snapshot represents schema snapshot configuration
type Snapshot struct {
	Path string `json:"path" mapstructure:"path"`
}

// Server represents process-level configuration
type Server struct {
	LogLevel string `json:"log_level" mapstructure:"log_level"`
	Debug    bool   `json:"debug" mapstructure:"debug"`
}

// NewDefault returns a Config instance with default values
func NewDefault() *Config {
	return &Config{
		Database: Database{
			Driver:          "postgres",
			Host:            "localhost",
			Port:            5432,
			User:            "postgres",
			Password:        "",
			DBName:          "glimr",
			SSLMode:         "disable",
			Path:            "glimr.db",
			MaxConnections:  25,
			MaxIdleConns:    10,
			ConnMaxLifetime: 1 * time.Hour,
			ConnMaxIdleTime: 10 * time.Minute,
		},
		Migrations: Migrations{
			Dir: "migrations",
		},
		Snapshot: Snapshot{
			Path: "schema_snapshot.json",
		},
		Server: Server{
			LogLevel: "info",
			Debug:    false,
		},
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	// Driver validation
	driver, err := database.ParseDriver(c.Database.Driver)
	if err != nil {
		return err
	}

	// Database validation
	switch driver {
	case database.Postgres:
		if c.Database.Host == "" {
			return fmt.Errorf("database host is required")
		}
		if c.Database.Port <= 0 || c.Database.Port > 65535 {
			return fmt.Errorf("database port must be between 1 and 65535")
		}
		if c.Database.User == "" {
			return fmt.Errorf("database user is required")
		}
		if c.Database.DBName == "" {
			return fmt.Errorf("database name is required")
		}
	case database.Sqlite:
		if c.Database.Path == "" {
			return fmt.Errorf("database path is required for sqlite")
		}
	}
	if c.Database.MaxConnections <= 0 {
		return fmt.Errorf("max connections must be greater than 0")
	}
	if c.Database.MaxIdleConns < 0 {
		return fmt.Errorf("max idle connections cannot be negative")
	}
	if c.Database.MaxIdleConns > c.Database.MaxConnections {
		return fmt.Errorf("max idle connections cannot exceed max connections")
	}

	// Migrations validation
	if c.Migrations.Dir == "" {
		return fmt.Errorf("migrations directory is required")
	}

	// Snapshot validation
	if c.Snapshot.Path == "" {
		return fmt.Errorf("snapshot path is required")
	}

	// Server validation
	validLogLevels := map[string]bool{
		"trace": true,
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
		"fatal": true,
	}
	if !validLogLevels[c.Server.LogLevel] {
		return fmt.Errorf("invalid log level: %s", c.Server.LogLevel)
	}

	return nil
}

// Driver returns the parsed database driver. Call Validate first; an
// unparsable driver falls back to postgres here.
func (c *Config) Driver() database.Driver {
	driver, err := database.ParseDriver(c.Database.Driver)
	if err != nil {
		return database.Postgres
	}
	return driver
}

// DatabaseMap flattens the database section into the key set the
// connection layer consumes.
func (c *Config) DatabaseMap() map[string]interface{} {
	return map[string]interface{}{
		"driver":             c.Database.Driver,
		"host":               c.Database.Host,
		"port":               c.Database.Port,
		"user":               c.Database.User,
		"password":           c.Database.Password,
		"dbname":             c.Database.DBName,
		"sslmode":            c.Database.SSLMode,
		"path":               c.Database.Path,
		"max_open_conns":     c.Database.MaxConnections,
		"max_idle_conns":     c.Database.MaxIdleConns,
		"conn_max_lifetime":  c.Database.ConnMaxLifetime,
		"conn_max_idle_time": c.Database.ConnMaxIdleTime,
	}
}

// DSN returns the driver-level data source name: the database file path for
// sqlite, keyword form for postgres.
func (c *Config) DSN() string {
	if c.Driver() == database.Sqlite {
		return c.Database.Path
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s TimeZone=UTC",
		c.Database.Host, c.Database.Port, c.Database.User, c.Database.Password,
		c.Database.DBName, c.Database.SSLMode)
}

// DatabaseURL constructs a PostgreSQL connection string
func (c *Config) DatabaseURL() string {
	params := url.Values{}
	params.Set("sslmode", c.Database.SSLMode)

	var userInfo *url.Userinfo
	if c.Database.Password == "" {
		userInfo = url.User(c.Database.User)
	} else {
		userInfo = url.UserPassword(c.Database.User, c.Database.Password)
	}

	u := &url.URL{
		Scheme:   "postgres",
		User:     userInfo,
		Host:     fmt.Sprintf("%s:%d", c.Database.Host, c.Database.Port),
		Path:     c.Database.DBName,
		RawQuery: params.Encode(),
	}

	return u.String()
}
