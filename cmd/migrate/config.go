package main

import (
	"errors"
	"os"

	"proxydeck/internal/config"
)

func loadEnvFiles() {
	config.LoadEnvFiles()
}

func migrationsDir() string {
	if v := os.Getenv("MIGRATIONS_DIR"); v != "" {
		return v
	}
	return "db/migrations"
}

func databaseDSN() (string, error) {
	if v := os.Getenv("DB_DSN"); v != "" {
		return v, nil
	}
	return "", errors.New("DB_DSN is required; the run ledger only migrates Postgres")
}
