package mysql

import (
	"context"
	"time"

	gomysql "github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
)

type Config struct {
	User           string
	Password       string
	Host           string
	Name           string
	MaxConnections int
}

func (c Config) DSN() string {
	cfg := gomysql.NewConfig()
	cfg.User = c.User
	cfg.Passwd = c.Password
	cfg.Net = "tcp"
	cfg.Addr = c.Host
	cfg.DBName = c.Name
	cfg.ParseTime = true
	cfg.Loc = time.UTC
	cfg.MultiStatements = true
	return cfg.FormatDSN()
}

func Open(ctx context.Context, config Config) (*sqlx.DB, error) {
	db, err := sqlx.ConnectContext(ctx, "mysql", config.DSN())
	if err != nil {
		return nil, errors.Wrapf(err, "failed to connect to mysql at %s", config.Host)
	}
	if config.MaxConnections > 0 {
		db.SetMaxOpenConns(config.MaxConnections)
		db.SetMaxIdleConns(config.MaxConnections)
	}
	db.SetConnMaxLifetime(5 * time.Minute)
	return db, nil
}
