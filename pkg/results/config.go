package results

import (
	"os"
	"strconv"
)

type PostgresConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// LoadPostgresConfig reads the connection settings from the
// PIBENCH_DB_* environment variables.
func LoadPostgresConfig() PostgresConfig {
	port, _ := strconv.Atoi(os.Getenv("PIBENCH_DB_PORT"))

	return PostgresConfig{
		Host:     os.Getenv("PIBENCH_DB_HOST"),
		Port:     port,
		User:     os.Getenv("PIBENCH_DB_USER"),
		Password: os.Getenv("PIBENCH_DB_PASSWORD"),
		DBName:   os.Getenv("PIBENCH_DB_NAME"),
		SSLMode:  os.Getenv("PIBENCH_DB_SSLMODE"),
	}
}
