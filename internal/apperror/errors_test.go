package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppErrorMatchesByCode(t *testing.T) {
	err := fmt.Errorf("resolve: %w", LocationNotFound("Block-8"))

	assert.True(t, errors.Is(err, ErrLocationNotFound))
	assert.False(t, errors.Is(err, ErrRoute))
	assert.Equal(t, http.StatusNotFound, From(err).Status)
	assert.Equal(t, "Location not found: Block-8", From(err).Message)
}

func TestFromWrapsUnknownErrors(t *testing.T) {
	cause := errors.New("boom")
	appErr := From(cause)

	assert.Equal(t, CodeInternal, appErr.Code)
	assert.ErrorIs(t, appErr, cause)
	assert.Nil(t, From(nil))
}
