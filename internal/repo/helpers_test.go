package repo_test

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/packlist/backend/internal/domain"
	"github.com/pkordes/packlist/backend/internal/repo"
	"github.com/pkordes/packlist/backend/testutil"
)

const testOwner = "user-test"

// newTestTx is a rolled-back transaction shared by every repo in a test.
func newTestTx(t *testing.T) pgx.Tx {
	t.Helper()
	return testutil.NewTx(t)
}

// tripFixture returns a domain.Trip with sensible defaults for use in tests.
// Callers can override individual fields after calling this function.
func tripFixture() domain.Trip {
	return domain.Trip{
		Owner:       testOwner,
		Destination: "Lisbon, Portugal",
		Latitude:    38.7223,
		Longitude:   -9.1393,
		StartDate:   time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		EndDate:     time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC),
		Activities:  []string{"Beach", "Sightseeing"},
	}
}

// seedTrip inserts tripFixture and returns it.
func seedTrip(t *testing.T, tx pgx.Tx) domain.Trip {
	t.Helper()
	trip, err := repo.NewTripRepo(tx).Create(context.Background(), tripFixture())
	require.NoError(t, err, "seed trip")
	return trip
}
