package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppError_Error(t *testing.T) {
	err := New(ErrCodeConceptNotFound, "concept not found")
	assert.Equal(t, "[CON_001] concept not found", err.Error())

	withDetail := err.WithDetail("id=42")
	assert.Equal(t, "[CON_001] concept not found: id=42", withDetail.Error())
	// Original must not be mutated.
	assert.Empty(t, err.Detail)
}

func TestWrap(t *testing.T) {
	assert.Nil(t, Wrap(nil, ErrCodeInternal, "ignored"))

	cause := fmt.Errorf("connection refused")
	wrapped := Wrap(cause, ErrCodeDatabaseError, "query failed")
	require.NotNil(t, wrapped)
	assert.Equal(t, ErrCodeDatabaseError, wrapped.Code)
	assert.ErrorIs(t, wrapped, cause)
}

func TestWrap_PreservesCodeOnGenericRewrap(t *testing.T) {
	inner := New(ErrCodeMappingNotFound, "no mapping for A90")
	outer := Wrap(inner, ErrCodeInternal, "mapping step failed")
	assert.Equal(t, ErrCodeMappingNotFound, outer.Code)
}

func TestIsNotFound(t *testing.T) {
	assert.True(t, IsNotFound(New(ErrCodeConceptNotFound, "x")))
	assert.True(t, IsNotFound(New(ErrCodeMappingNotFound, "x")))
	assert.True(t, IsNotFound(Wrap(NotFound("x"), ErrCodeDatabaseError, "y")))
	assert.False(t, IsNotFound(New(ErrCodeValidation, "x")))
	assert.False(t, IsNotFound(nil))
	assert.False(t, IsNotFound(fmt.Errorf("plain")))
}

func TestIsValidation(t *testing.T) {
	assert.True(t, IsValidation(InvalidParam("bad")))
	assert.True(t, IsValidation(New(ErrCodeClaimInvalid, "bad claim")))
	assert.False(t, IsValidation(NotFound("missing")))
}

func TestIsUnavailable(t *testing.T) {
	assert.True(t, IsUnavailable(Unavailable("down")))
	assert.True(t, IsUnavailable(New(ErrCodeMapperUnavailable, "mapper down")))
	assert.True(t, IsUnavailable(New(ErrCodeTimeout, "slow")))
	assert.False(t, IsUnavailable(NotFound("missing")))
}

func TestGetCode(t *testing.T) {
	assert.Equal(t, ErrorCode(""), GetCode(nil))
	assert.Equal(t, ErrCodeInternal, GetCode(fmt.Errorf("plain")))
	assert.Equal(t, ErrCodeCacheError, GetCode(New(ErrCodeCacheError, "x")))
}

func TestErrorCode_HTTPStatus(t *testing.T) {
	tests := []struct {
		code ErrorCode
		want int
	}{
		{ErrCodeConceptNotFound, http.StatusNotFound},
		{ErrCodeValidation, http.StatusBadRequest},
		{ErrCodeClaimInvalid, http.StatusBadRequest},
		{ErrCodeMapperUnavailable, http.StatusServiceUnavailable},
		{ErrCodeTimeout, http.StatusGatewayTimeout},
		{ErrCodeInternal, http.StatusInternalServerError},
		{ErrorCode("bogus"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.code.HTTPStatus(), string(tt.code))
	}
}
