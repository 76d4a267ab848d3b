package postgresql_test

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/cmlabs-hris/hris-portal-go/internal/pkg/database"
	"github.com/stretchr/testify/require"
)

var (
	testDB     *database.DB
	testDBErr  error
	testDBOnce sync.Once
)

// requireDB connects to TEST_DATABASE_URL, applies the schema and truncates
// every table. Tests are skipped when the variable is unset.
func requireDB(t *testing.T) *database.DB {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	testDBOnce.Do(func() {
		testDB, testDBErr = database.NewPostgreSQLDB(dsn)
		if testDBErr != nil {
			return
		}
		schema, err := os.ReadFile(filepath.Join("..", "..", "..", "..", "migrations", "0001_init.up.sql"))
		if err != nil {
			testDBErr = err
			return
		}
		_, testDBErr = testDB.Exec(context.Background(), string(schema))
	})
	require.NoError(t, testDBErr)

	ctx := context.Background()
	_, err := testDB.Exec(ctx, `TRUNCATE TABLE leave_requests, leave_balances, attendance_records, holidays, employees CASCADE`)
	require.NoError(t, err)
	return testDB
}
