package config

import (
	"github.com/joho/godotenv"
)

// envFiles are tried in order; the first one that loads wins.
var envFiles = []string{".env", ".env.local"}

// loadEnvFile loads KEY=VALUE pairs from the first readable .env file.
// Existing process environment variables are not overwritten.
func loadEnvFile() error {
	var lastErr error
	for _, path := range envFiles {
		if err := godotenv.Load(path); err != nil {
			lastErr = err
			continue
		}
		return nil
	}
	return lastErr
}
