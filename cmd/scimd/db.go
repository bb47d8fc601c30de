package main

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/pgdriver"

	"github.com/scimhub/core/internal/config"
	"github.com/scimhub/core/scim/storage"
)

// connectDatabase opens a bun.DB and matching storage.Kind from cfg,
// scoped to the two backends this core wires: postgres and sqlite.
func connectDatabase(cfg config.DatabaseConfig) (*bun.DB, storage.Kind, error) {
	switch cfg.Backend {
	case "postgres":
		connector := pgdriver.NewConnector(pgdriver.WithDSN(cfg.DSN))
		sqldb := sql.OpenDB(connector)
		sqldb.SetMaxOpenConns(cfg.MaxOpenConn)
		db := bun.NewDB(sqldb, pgdialect.New())
		return db, storage.Postgres, nil

	case "sqlite":
		sqldb, err := sql.Open("sqlite3", cfg.DSN)
		if err != nil {
			return nil, "", fmt.Errorf("opening sqlite database %q: %w", cfg.DSN, err)
		}
		sqldb.SetMaxOpenConns(cfg.MaxOpenConn)
		db := bun.NewDB(sqldb, sqlitedialect.New())
		return db, storage.SQLite, nil

	default:
		return nil, "", fmt.Errorf("unsupported database backend %q", cfg.Backend)
	}
}
