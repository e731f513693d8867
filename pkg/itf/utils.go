// Package itf holds shared helpers for integration tests that need a real
// PostgreSQL instance. Each test gets a throwaway database named after the
// test so parallel packages never collide.
package itf

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"fmt"
	"log"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/jaydenmetz/realty-core/pkg/configuration"
)

const (
	// PostgreSQL identifier limit.
	maxDBNameLength = 63
	hashSuffixLength = 9
)

func sanitizeDBName(name string) string {
	sanitized := strings.ToLower(name)
	for _, ch := range []string{"/", " ", "-", ".", "(", ")", "[", "]"} {
		sanitized = strings.ReplaceAll(sanitized, ch, "_")
	}
	for strings.Contains(sanitized, "__") {
		sanitized = strings.ReplaceAll(sanitized, "__", "_")
	}
	sanitized = strings.Trim(sanitized, "_")
	if sanitized == "" {
		sanitized = "test_db"
	}
	if len(sanitized) <= maxDBNameLength {
		return sanitized
	}

	hasher := sha256.New()
	hasher.Write([]byte(name))
	hash := fmt.Sprintf("%x", hasher.Sum(nil))[:8]
	return fmt.Sprintf("%s_%s", sanitized[:maxDBNameLength-hashSuffixLength], hash)
}

// CreateDB drops and recreates the database derived from name. Panics on
// failure; integration tests cannot proceed without it.
func CreateDB(name string) {
	sanitizedName := sanitizeDBName(name)

	c := configuration.Use()
	adminConnStr := fmt.Sprintf(
		"host=%s port=%s user=%s dbname=postgres password=%s sslmode=disable",
		c.Database.Host, c.Database.Port, c.Database.User, c.Database.Password,
	)
	db, err := sql.Open("pgx", adminConnStr)
	if err != nil {
		panic(err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("[WARNING] Error closing CreateDB connection: %v", err)
		}
	}()
	if _, err := db.ExecContext(context.Background(), fmt.Sprintf("DROP DATABASE IF EXISTS %s", sanitizedName)); err != nil {
		panic(err)
	}
	if _, err := db.ExecContext(context.Background(), fmt.Sprintf("CREATE DATABASE %s", sanitizedName)); err != nil {
		panic(err)
	}
}

// DbOpts returns the connection string for the per-test database.
func DbOpts(name string) string {
	sanitizedName := sanitizeDBName(name)

	c := configuration.Use()
	return fmt.Sprintf(
		"host=%s port=%s user=%s dbname=%s password=%s sslmode=disable",
		c.Database.Host, c.Database.Port, c.Database.User, sanitizedName, c.Database.Password,
	)
}
