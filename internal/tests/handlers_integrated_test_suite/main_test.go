package handlers_integrated_test_suite

import (
	"fmt"
	"os"
	"testing"

	"github.com/rogerio-castellano/inventory-dashboard/internal/http/router"
)

// TestMain runs the suite against the Postgres named by DATABASE_URL and, if set,
// the Redis at REDIS_ADDR. Without DATABASE_URL the suite is skipped.
func TestMain(m *testing.M) {
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		fmt.Println("DATABASE_URL not set, skipping integrated handler tests")
		os.Exit(0)
	}
	if err := setupTestRepos(dbURL, os.Getenv("REDIS_ADDR")); err != nil {
		fmt.Println("❌", err)
		os.Exit(1)
	}

	var err error
	token, err = generateToken(router.NewRouter(), "admin", adminPassword)
	if err != nil {
		fmt.Println("❌ error generating token:", err)
		os.Exit(1)
	}

	code := m.Run()
	clearAll()
	clearAllUsersExceptAdmin()
	database.Close()
	os.Exit(code)
}
