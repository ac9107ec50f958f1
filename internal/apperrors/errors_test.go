package apperrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindHTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, KindValidation.HTTPStatus())
	assert.Equal(t, http.StatusForbidden, KindAuthorization.HTTPStatus())
	assert.Equal(t, http.StatusConflict, KindInvalidState.HTTPStatus())
	assert.Equal(t, http.StatusNotFound, KindNotFound.HTTPStatus())
	assert.Equal(t, http.StatusInternalServerError, KindStorage.HTTPStatus())
	assert.Equal(t, http.StatusInternalServerError, Kind(0).HTTPStatus())
}

func TestIsKindThroughWrapping(t *testing.T) {
	err := fmt.Errorf("confirm: %w", ErrNotParticipant)

	assert.True(t, IsKind(err, KindAuthorization))
	assert.False(t, IsKind(err, KindValidation))
	assert.True(t, errors.Is(err, ErrNotParticipant))
	assert.False(t, errors.Is(err, ErrNotReceiver))
}

func TestStorageKeepsCause(t *testing.T) {
	cause := errors.New("connection reset")
	err := Storage(cause)

	assert.Equal(t, KindStorage, KindOf(err))
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "connection reset")
}

func TestKindOfPlainError(t *testing.T) {
	assert.Equal(t, Kind(0), KindOf(errors.New("boom")))
}
