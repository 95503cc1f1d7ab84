package implementation

import (
	"context"
	"log"
	"os"
	"testing"
	"time"

	"astu-route-be/internal/entity"
	"astu-route-be/internal/repository/specification"
	"astu-route-be/pkg/database"
	"astu-route-be/pkg/geo"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Runs against a real database holding the campus dataset. Skipped unless
// DB_CONNECTION_STRING is set.
func TestPostgresRepositories(t *testing.T) {
	if err := godotenv.Load("../../../.env"); err != nil {
		log.Println("No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		t.Skip("Skipping integration test: DB_CONNECTION_STRING not set")
	}

	db, err := database.NewGormDBFromDSN(dsn, false)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	require.NoError(t, database.Ping(ctx, db))

	pois := NewPOIRepository(db)
	documents := NewDocumentRepository(db)

	t.Run("POIs are loaded", func(t *testing.T) {
		count, err := pois.Count(ctx)
		require.NoError(t, err)
		assert.Greater(t, count, int64(0))
	})

	t.Run("Nearby results are ordered by distance", func(t *testing.T) {
		found, err := pois.FindNearby(ctx, geo.NewPoint(8.5569, 39.2911), 5, 10)
		require.NoError(t, err)
		for i := 1; i < len(found); i++ {
			assert.LessOrEqual(t, *found[i-1].DistanceKm, *found[i].DistanceKm)
		}
	})

	t.Run("Lexical search", func(t *testing.T) {
		_, err := pois.FindAll(ctx, specification.POITextSearch{Query: "library"}, specification.Limit(5))
		require.NoError(t, err)
		_, err = documents.FindAll(ctx, specification.DocumentTextSearch{Query: "registrar"}, specification.Limit(5))
		require.NoError(t, err)
	})

	t.Run("Query log insert", func(t *testing.T) {
		err := NewQueryLogRepository(db).Create(ctx, &entity.QueryLog{
			Id:         uuid.New(),
			RequestId:  "integration-" + uuid.NewString(),
			Query:      "integration probe",
			Intent:     "UNIVERSITY_INFO",
			Confidence: "low",
			DurationMs: 1,
			CreatedAt:  time.Now(),
		})
		assert.NoError(t, err)
	})
}
