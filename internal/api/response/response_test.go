package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stockdash/stockdash/internal/core"
)

func TestJSON(t *testing.T) {
	rec := httptest.NewRecorder()

	JSON(rec, http.StatusOK, map[string]string{"symbol": "AAPL"})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var resp SuccessResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	data, ok := resp.Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "AAPL", data["symbol"])
	assert.False(t, resp.Meta.Timestamp.IsZero())
}

func TestErrorWithCoreError(t *testing.T) {
	rec := httptest.NewRecorder()
	err := core.WrapError(core.ErrSymbolNotFound, fmt.Errorf("FAKE does not exist"))

	Error(rec, http.StatusNotFound, err)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "SYMBOL_NOT_FOUND", resp.Error.Code)
	assert.Equal(t, "symbol not found", resp.Error.Message)
	assert.Equal(t, "FAKE does not exist", resp.Error.Cause)
}

func TestErrorWithPlainError(t *testing.T) {
	rec := httptest.NewRecorder()

	Error(rec, http.StatusInternalServerError, errors.New("boom"))

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "INTERNAL_ERROR", resp.Error.Code)
	assert.Empty(t, resp.Error.Cause, "internal details must not leak")
}

func TestStatusFor(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{core.ErrInvalidParameter, http.StatusBadRequest},
		{core.ErrConfigInvalid, http.StatusBadRequest},
		{core.ErrConfigMissing, http.StatusBadRequest},
		{core.ErrSymbolNotFound, http.StatusNotFound},
		{core.ErrNoData, http.StatusNotFound},
		{core.ErrInsufficientData, http.StatusUnprocessableEntity},
		{core.ErrUpstreamUnavailable, http.StatusBadGateway},
		{core.ErrStoreFailed, http.StatusInternalServerError},
		{errors.New("anything else"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, StatusFor(tc.err), "error %v", tc.err)
	}

	wrapped := core.WrapError(core.ErrInsufficientData, fmt.Errorf("only 3 bars"))
	assert.Equal(t, http.StatusUnprocessableEntity, StatusFor(wrapped))
}
