package errs

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindHTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, BadRequest(ScimTypeInvalidFilter, "bad").HTTPStatus())
	assert.Equal(t, http.StatusNotFound, NotFound("User", "123").HTTPStatus())
	assert.Equal(t, http.StatusPreconditionFailed, PreconditionFailed("nope").HTTPStatus())
	assert.Equal(t, http.StatusInternalServerError, Database(errors.New("x")).HTTPStatus())
	assert.Equal(t, http.StatusInternalServerError, Internal("bad schema", nil).HTTPStatus())
}

func TestIsMatchesByKindAndScimType(t *testing.T) {
	err := BadRequest(ScimTypeUniqueness, "User already exists")
	assert.True(t, errors.Is(err, ErrUniqueness))
	assert.True(t, errors.Is(err, ErrBadRequest))
	assert.False(t, errors.Is(err, ErrNotFound))
}

func TestNotFoundCarriesID(t *testing.T) {
	err := NotFound("Group", "abc")
	assert.Equal(t, "abc", err.Context["id"])
}

func TestWrapPreservesCause(t *testing.T) {
	cause := errors.New("connection reset")
	err := Database(cause)
	assert.ErrorIs(t, err, cause)
}
