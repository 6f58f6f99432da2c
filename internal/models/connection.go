package models

import (
	"fmt"
	"time"
)

// ConnectionConfig represents a PostgreSQL connection used to run bound queries
type ConnectionConfig struct {
	Host         string        `mapstructure:"host" yaml:"host"`
	Port         int           `mapstructure:"port" yaml:"port"`
	Database     string        `mapstructure:"database" yaml:"database"`
	User         string        `mapstructure:"user" yaml:"user"`
	Password     string        `mapstructure:"password" yaml:"password"`
	SSLMode      string        `mapstructure:"ssl_mode" yaml:"ssl_mode"`
	MaxConns     int32         `mapstructure:"max_conns" yaml:"max_conns"`
	QueryTimeout time.Duration `mapstructure:"query_timeout" yaml:"query_timeout"`
}

// String returns user@host:port/database without the password
func (c ConnectionConfig) String() string {
	return fmt.Sprintf("%s@%s:%d/%s", c.User, c.Host, c.Port, c.Database)
}
