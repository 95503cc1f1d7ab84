package resolver

import (
	"context"
	"errors"
	"testing"

	"astu-route-be/internal/apperror"
	"astu-route-be/internal/entity"
	"astu-route-be/internal/pkg/logger"
	"astu-route-be/internal/repository/mocks"
	"astu-route-be/internal/repository/specification"
	"astu-route-be/pkg/embedding"
	"astu-route-be/pkg/geo"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type stubEmbedder struct {
	calls int
	err   error
}

func (s *stubEmbedder) Generate(ctx context.Context, text string, taskType string) (*embedding.EmbeddingResponse, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return &embedding.EmbeddingResponse{Embedding: embedding.EmbeddingResponseEmbedding{Values: []float32{0.1, 0.2, 0.3}}}, nil
}

func poi(id int64, name, category string, lat, lng float64) *entity.POI {
	return &entity.POI{Id: id, Name: name, Category: category, Latitude: lat, Longitude: lng}
}

func newTestResolver(t *testing.T, pois *mocks.POIRepository, docs *mocks.DocumentRepository, emb embedding.EmbeddingProvider) *Resolver {
	return New(pois, docs, emb, emb, nil, Config{MinDocumentSimilarity: 0.5}, logger.NewTestLogger(t))
}

func categoryIs(keyword string) interface{} {
	return mocks.HasSpec(func(s specification.ByCategoryKeyword) bool { return s.Keyword == keyword })
}

func lexical() interface{} {
	return mocks.HasSpec[specification.POITextSearch](nil)
}

func TestResolvePOIsEmbeddingTierWins(t *testing.T) {
	pois := new(mocks.POIRepository)
	library := poi(1, "Main Library", "library", 8.5575, 39.2905)
	pois.On("SearchSimilar", mock.Anything, mock.Anything, 1).Return([]*entity.POI{library}, nil)

	emb := &stubEmbedder{}
	r := newTestResolver(t, pois, nil, emb)

	res, err := r.ResolvePOIs(context.Background(), "library", 1)
	require.NoError(t, err)
	assert.Equal(t, TierEmbedding, res.Tier)
	assert.Equal(t, "Main Library", res.First().Name)
	assert.Equal(t, 1, emb.calls)
	pois.AssertNotCalled(t, "FindAll", mock.Anything, mock.Anything)
}

func TestResolvePOIsFallsThroughToCategory(t *testing.T) {
	pois := new(mocks.POIRepository)
	mosque := poi(2, "ASTU Mosque", "mosque", 8.5560, 39.2920)
	pois.On("SearchSimilar", mock.Anything, mock.Anything, 1).Return(nil, nil)
	pois.On("FindAll", mock.Anything, categoryIs("mosque")).Return([]*entity.POI{mosque}, nil)

	r := newTestResolver(t, pois, nil, &stubEmbedder{})

	res, err := r.ResolvePOIs(context.Background(), "nearest masjid", 1)
	require.NoError(t, err)
	assert.Equal(t, TierCategory, res.Tier)
	assert.Equal(t, "ASTU Mosque", res.First().Name)
	pois.AssertNotCalled(t, "FindAll", mock.Anything, lexical())
}

func TestResolvePOIsWithoutEmbedderUsesRules(t *testing.T) {
	pois := new(mocks.POIRepository)
	block := poi(3, "Block-8", "classroom", 8.5580, 39.2930)
	pois.On("FindAll", mock.Anything, categoryIs("block")).Return(nil, nil)
	pois.On("FindAll", mock.Anything, lexical()).Return([]*entity.POI{block}, nil)

	r := newTestResolver(t, pois, nil, nil)

	res, err := r.ResolvePOIs(context.Background(), "Block-8", 1)
	require.NoError(t, err)
	assert.Equal(t, TierLexical, res.Tier)
	assert.Equal(t, "Block-8", res.First().Name)
	pois.AssertNotCalled(t, "SearchSimilar", mock.Anything, mock.Anything, mock.Anything)
}

func TestResolvePOIsEmbedderErrorIsSkipped(t *testing.T) {
	pois := new(mocks.POIRepository)
	pois.On("FindAll", mock.Anything, mock.Anything).Return([]*entity.POI{poi(4, "Cafeteria", "cafe", 8.556, 39.291)}, nil)

	r := newTestResolver(t, pois, nil, &stubEmbedder{err: errors.New("quota exceeded")})

	res, err := r.ResolvePOIs(context.Background(), "coffee", 1)
	require.NoError(t, err)
	assert.Equal(t, TierCategory, res.Tier)
}

func TestResolvePOIsAllTiersFail(t *testing.T) {
	pois := new(mocks.POIRepository)
	dbDown := errors.New("connection refused")
	pois.On("SearchSimilar", mock.Anything, mock.Anything, mock.Anything).Return(nil, dbDown)
	pois.On("FindAll", mock.Anything, mock.Anything).Return(nil, dbDown)

	r := newTestResolver(t, pois, nil, &stubEmbedder{})

	_, err := r.ResolvePOIs(context.Background(), "library", 1)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperror.ErrVectorSearch)
}

func TestResolvePOIsNoMatchIsNotAnError(t *testing.T) {
	pois := new(mocks.POIRepository)
	pois.On("FindAll", mock.Anything, mock.Anything).Return(nil, nil)

	r := newTestResolver(t, pois, nil, nil)

	res, err := r.ResolvePOIs(context.Background(), "atlantis", 1)
	require.NoError(t, err)
	assert.Equal(t, TierNone, res.Tier)
	assert.Nil(t, res.First())
}

func TestResolveDocumentsLexicalFallback(t *testing.T) {
	docs := new(mocks.DocumentRepository)
	docs.On("SearchSimilarWithScore", mock.Anything, mock.Anything, 5, 0.5).Return(nil, nil)
	docs.On("FindAll", mock.Anything, mock.Anything).Return([]*entity.Document{{Id: 1, Title: "Registrar hours"}}, nil)

	r := newTestResolver(t, nil, docs, &stubEmbedder{})

	res, err := r.ResolveDocuments(context.Background(), "registrar opening hours", 5)
	require.NoError(t, err)
	assert.Equal(t, TierLexical, res.Tier)
	require.Len(t, res.Documents, 1)
	assert.Equal(t, "Registrar hours", res.Documents[0].Document.Title)
}

func TestSplitLocations(t *testing.T) {
	tests := []struct {
		query string
		from  string
		to    string
		shape QueryShape
	}{
		{"How do I go from Library to Block-8?", "Library", "Block-8", ShapeFromTo},
		{"from the main gate to the cafeteria", "main gate", "cafeteria", ShapeFromTo},
		{"Where is Block-8?", "", "Block-8", ShapeDestination},
		{"Navigate to the Library.", "", "Library", ShapeDestination},
		{"take me to registrar office", "", "registrar office", ShapeDestination},
		{"Block-8", "", "Block-8", ShapeBare},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			from, to, shape := SplitLocations(tt.query)
			assert.Equal(t, tt.from, from)
			assert.Equal(t, tt.to, to)
			assert.Equal(t, tt.shape, shape)
		})
	}
}

func TestExtractLocationsDefaultsStart(t *testing.T) {
	pois := new(mocks.POIRepository)
	block := poi(3, "Block-8", "classroom", 8.5580, 39.2930)
	pois.On("FindAll", mock.Anything, mock.Anything).Return([]*entity.POI{block}, nil)

	r := newTestResolver(t, pois, nil, nil)
	fallback := geo.NewPoint(8.5569, 39.2911)

	got, err := r.ExtractLocations(context.Background(), "Where is Block-8?", nil, fallback)
	require.NoError(t, err)
	assert.True(t, got.StartDefaulted)
	assert.Equal(t, CurrentLocationName, got.Start.Name)
	assert.Equal(t, fallback, got.Start.Point)
	assert.Equal(t, "Block-8", got.End.Name)
}

func TestExtractLocationsFromTo(t *testing.T) {
	pois := new(mocks.POIRepository)
	library := poi(1, "Main Library", "library", 8.5575, 39.2905)
	lab := poi(5, "Computer Lab", "lab", 8.5585, 39.2925)
	pois.On("FindAll", mock.Anything, categoryIs("library")).Return([]*entity.POI{library}, nil)
	pois.On("FindAll", mock.Anything, categoryIs("lab")).Return([]*entity.POI{lab}, nil)

	r := newTestResolver(t, pois, nil, nil)

	got, err := r.ExtractLocations(context.Background(), "From LIBRARY to LAB", nil, geo.NewPoint(0, 0))
	require.NoError(t, err)
	assert.False(t, got.StartDefaulted)
	assert.Equal(t, "Main Library", got.Start.Name)
	assert.Equal(t, "Computer Lab", got.End.Name)
	assert.Equal(t, ShapeFromTo, got.Shape)
}

func TestExtractLocationsUnknownDestination(t *testing.T) {
	pois := new(mocks.POIRepository)
	pois.On("FindAll", mock.Anything, mock.Anything).Return(nil, nil)

	r := newTestResolver(t, pois, nil, nil)

	_, err := r.ExtractLocations(context.Background(), "where is atlantis", nil, geo.NewPoint(0, 0))
	assert.ErrorIs(t, err, apperror.ErrLocationNotFound)
}

func TestNearestPOI(t *testing.T) {
	pois := new(mocks.POIRepository)
	near := poi(1, "Gate 1", "gate", 8.5570, 39.2912)
	far := poi(2, "Stadium", "sports", 8.5620, 39.2990)
	pois.On("SearchSimilar", mock.Anything, mock.Anything, nearestCandidateLimit).Return([]*entity.POI{far, near}, nil)

	r := newTestResolver(t, pois, nil, &stubEmbedder{})

	got, err := r.NearestPOI(context.Background(), geo.NewPoint(8.5569, 39.2911))
	require.NoError(t, err)
	assert.Equal(t, "Gate 1", got.Name)
}

func TestCategoryCandidates(t *testing.T) {
	assert.Equal(t, []string{"mosque"}, CategoryCandidates("where is the masjid?"))
	assert.Equal(t, []string{"cafe"}, CategoryCandidates("coffee at the cafeteria"))
	assert.Equal(t, []string{"block"}, CategoryCandidates("Block-8"))
	assert.Empty(t, CategoryCandidates("to it"))
}

func TestDetectServiceCategory(t *testing.T) {
	got, ok := DetectServiceCategory("Is there an ATM near campus?")
	require.True(t, ok)
	assert.Equal(t, "atm", got)

	got, ok = DetectServiceCategory("nearest masjid please")
	require.True(t, ok)
	assert.Equal(t, "mosque", got)

	_, ok = DetectServiceCategory("what is the grading policy")
	assert.False(t, ok)
}
