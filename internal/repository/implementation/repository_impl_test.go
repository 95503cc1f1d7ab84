package implementation

import (
	"context"
	"testing"

	"astu-route-be/internal/repository/specification"
	"astu-route-be/pkg/geo"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return db, mock
}

func TestPOIRepositoryFindNearby(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPOIRepository(db)

	rows := sqlmock.NewRows([]string{"id", "name", "category", "latitude", "longitude", "distance_km"}).
		AddRow(7, "Adama Mosque", "mosque", 8.5601, 39.2899, 0.42).
		AddRow(9, "Kebele Mosque", "mosque", 8.5702, 39.3011, 1.75)

	mock.ExpectQuery(`SELECT pois\.\*, 6371 \* acos`).WillReturnRows(rows)

	pois, err := repo.FindNearby(context.Background(), geo.NewPoint(8.5569, 39.2911), 5, 10,
		specification.ServiceKeyword{Keyword: "mosque"})
	require.NoError(t, err)
	require.Len(t, pois, 2)

	assert.Equal(t, "Adama Mosque", pois[0].Name)
	require.NotNil(t, pois[0].DistanceKm)
	assert.InDelta(t, 0.42, *pois[0].DistanceKm, 1e-9)
	assert.Nil(t, pois[0].Similarity)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPOIRepositorySearchSimilar(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPOIRepository(db)

	rows := sqlmock.NewRows([]string{"id", "name", "category", "latitude", "longitude", "similarity"}).
		AddRow(1, "Main Library", "library", 8.5572, 39.2918, 0.91)

	mock.ExpectQuery(`SELECT pois\.\*, 1 - \(description_embedding <=>`).WillReturnRows(rows)

	pois, err := repo.SearchSimilar(context.Background(), []float32{0.1, 0.2, 0.3}, 1)
	require.NoError(t, err)
	require.Len(t, pois, 1)

	require.NotNil(t, pois[0].Similarity)
	assert.InDelta(t, 0.91, *pois[0].Similarity, 1e-9)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDocumentRepositorySearchSimilarWithScore(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewDocumentRepository(db)

	rows := sqlmock.NewRows([]string{"id", "title", "content", "source", "similarity"}).
		AddRow(3, "Registrar Office", "The registrar is in Block 10.", "astu.edu.et", 0.83)

	mock.ExpectQuery(`SELECT documents\.\*, 1 - \(embedding <=>`).WillReturnRows(rows)

	docs, err := repo.SearchSimilarWithScore(context.Background(), []float32{0.5, 0.5}, 5, 0.5)
	require.NoError(t, err)
	require.Len(t, docs, 1)

	assert.Equal(t, "Registrar Office", docs[0].Document.Title)
	assert.InDelta(t, 0.83, docs[0].Similarity, 1e-9)
	assert.NoError(t, mock.ExpectationsWereMet())
}
