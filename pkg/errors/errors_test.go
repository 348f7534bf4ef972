package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppError_Error(t *testing.T) {
	e := New(CodeInputEmpty, "no input provided")
	assert.Equal(t, "[INPUT_001] no input provided", e.Error())

	withDetail := e.WithDetail("text box and file both empty")
	assert.Equal(t, "[INPUT_001] no input provided: text box and file both empty", withDetail.Error())
	// WithDetail must not mutate the original.
	assert.Empty(t, e.Detail)
}

func TestWrap(t *testing.T) {
	cause := fmt.Errorf("disk gone")
	e := Wrap(cause, CodeInputReadFailed, "error reading the file")

	require.NotNil(t, e)
	assert.Equal(t, CodeInputReadFailed, e.Code)
	assert.True(t, stderrors.Is(e, cause))

	assert.Nil(t, Wrap(nil, CodeInternal, "ignored"))
}

func TestWrap_PreservesCodeOnUnknown(t *testing.T) {
	inner := New(CodeInputTooManyCompounds, "maximum 20 compounds allowed, got 21")
	wrapped := Wrap(inner, CodeUnknown, "submission rejected")
	assert.Equal(t, CodeInputTooManyCompounds, wrapped.Code)
}

func TestIsCode(t *testing.T) {
	e := Wrap(New(CodeInputNoSheets, "no sheets found in workbook"), CodeInputParseFailed, "could not parse file")
	assert.True(t, IsCode(e, CodeInputParseFailed))
	assert.True(t, IsCode(e, CodeInputNoSheets))
	assert.False(t, IsCode(e, CodePredictionRejected))
	assert.False(t, IsCode(nil, CodeInternal))
}

func TestFamilyPredicates(t *testing.T) {
	assert.True(t, IsInput(New(CodeInputEmpty, "no input provided")))
	assert.False(t, IsUpstream(New(CodeInputEmpty, "no input provided")))

	up := New(CodePredictionRejected, "bad request")
	assert.True(t, IsUpstream(up))
	assert.False(t, IsInput(up))

	assert.False(t, IsInput(stderrors.New("plain")))
	assert.False(t, IsUpstream(nil))
}

func TestGetCode(t *testing.T) {
	assert.Equal(t, CodeOK, GetCode(nil))
	assert.Equal(t, CodeUnknown, GetCode(stderrors.New("plain")))
	assert.Equal(t, CodeInputEmpty, GetCode(New(CodeInputEmpty, "x")))
}

func TestHTTPStatusForCode(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, HTTPStatusForCode(CodeInputTooManyCompounds))
	assert.Equal(t, http.StatusUnprocessableEntity, HTTPStatusForCode(CodeInputParseFailed))
	assert.Equal(t, http.StatusBadGateway, HTTPStatusForCode(CodePredictionRejected))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatusForCode(ErrorCode("NOPE")))

	assert.True(t, IsClientError(CodeInputEmpty))
	assert.False(t, IsServerError(CodeInputEmpty))
	assert.True(t, IsServerError(ErrCodeInternal))
}
