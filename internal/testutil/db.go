package testutil

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"zealAPI/internal/database"
	"zealAPI/internal/types/user"
)

// SetupTestDB connects to TEST_DATABASE_URL and applies the schema.
// Tests are skipped when the variable is not set.
func SetupTestDB(t *testing.T) *pgxpool.Pool {
	t.Helper()

	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	pool, err := database.Connect(ctx, dbURL)
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}
	if err := database.EnsureSchema(ctx, pool); err != nil {
		t.Fatalf("Failed to apply schema: %v", err)
	}

	t.Cleanup(func() {
		_, err := pool.Exec(context.Background(), "DELETE FROM users WHERE email LIKE 'test%@example.com'")
		if err != nil {
			t.Logf("Warning: failed to cleanup test data: %v", err)
		}
		pool.Close()
	})
	return pool
}

// CreateTestUser inserts a user whose rows are removed by SetupTestDB's cleanup.
func CreateTestUser(t *testing.T, pool *pgxpool.Pool, points float64, level user.Level) *user.User {
	t.Helper()

	id := uuid.New()
	u := &user.User{
		ID:       id,
		ClerkID:  "user_test_" + id.String(),
		Email:    "test_" + id.String() + "@example.com",
		Username: "tester_" + id.String()[:8],
		Points:   points,
		Level:    level,
	}
	_, err := pool.Exec(context.Background(), `
		INSERT INTO users (id, clerk_id, email, username, points, level)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		u.ID, u.ClerkID, u.Email, u.Username, u.Points, u.Level,
	)
	if err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}
	return u
}
