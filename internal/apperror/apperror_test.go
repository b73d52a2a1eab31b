package apperror

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStorage_KeepsCauseAndSentinel(t *testing.T) {
	cause := errors.New("connection refused")
	err := Storage("insert relationship", cause)

	assert.True(t, IsStorage(err))
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "insert relationship")
	assert.Nil(t, Storage("noop", nil))
}

func TestStorage_DoesNotDoubleWrap(t *testing.T) {
	err := Storage("outer", Storage("inner", errors.New("boom")))
	assert.Equal(t, 1, strings.Count(err.Error(), ErrStorage.Error()))
}

func TestNotFoundAndValidation(t *testing.T) {
	assert.True(t, IsNotFound(NotFound("status %q", "frenemies")))
	assert.False(t, IsValidation(NotFound("x")))
	assert.True(t, IsValidation(Validation("bad slug")))
}
