package database

import (
	"database/sql"
	"fmt"

	"github.com/paneworks/glassdesk_backend/config"
)

// InitializeDatabases creates the application database if it does not exist.
// It connects to the maintenance database, so it must run with a role that can
// create databases.
func InitializeDatabases(cfg *config.Config) error {
	c := FromCentralConfig(cfg.Database)
	target := c.DBName

	c.DBName = "postgres"
	conn, err := sql.Open("postgres", c.DSN())
	if err != nil {
		return fmt.Errorf("failed to open maintenance connection: %w", err)
	}
	defer conn.Close()

	var exists bool
	err = conn.QueryRow(`SELECT EXISTS (SELECT 1 FROM pg_database WHERE datname = $1)`, target).Scan(&exists)
	if err != nil {
		return fmt.Errorf("failed to check database existence: %w", err)
	}
	if exists {
		return nil
	}

	// CREATE DATABASE does not support placeholders
	if _, err := conn.Exec(fmt.Sprintf(`CREATE DATABASE %q`, target)); err != nil {
		return fmt.Errorf("failed to create database %s: %w", target, err)
	}
	return nil
}

// NewFromCentral opens a DB pool from central config.
func NewFromCentral(cfg config.DatabaseConfig) (*DB, error) {
	return New(FromCentralConfig(cfg))
}
