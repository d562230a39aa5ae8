package dto

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/erp/invoicing/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		kind     shared.ErrorKind
		expected int
	}{
		{shared.KindValidation, http.StatusBadRequest},
		{shared.KindNotFound, http.StatusNotFound},
		{shared.KindConflict, http.StatusConflict},
		{shared.KindState, http.StatusBadRequest},
		{shared.KindAuth, http.StatusUnauthorized},
		{shared.KindInternal, http.StatusInternalServerError},
		{shared.ErrorKind("bogus"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			assert.Equal(t, tt.expected, HTTPStatus(tt.kind))
		})
	}
}

func TestResponseEnvelope(t *testing.T) {
	t.Run("success keeps data and omits errors", func(t *testing.T) {
		raw, err := json.Marshal(NewSuccessResponse("Invoice created", map[string]int{"n": 1}))
		require.NoError(t, err)

		var got map[string]interface{}
		require.NoError(t, json.Unmarshal(raw, &got))
		assert.Equal(t, true, got["success"])
		assert.Equal(t, "Invoice created", got["message"])
		assert.NotNil(t, got["data"])
		assert.NotContains(t, got, "errors")
	})

	t.Run("error renders null data and the message list", func(t *testing.T) {
		raw, err := json.Marshal(NewErrorResponse("OVERPAYMENT", "Paid amount exceeds total invoice amount.", "Total paid (210.00) cannot exceed invoice total (200.00)"))
		require.NoError(t, err)

		var got map[string]interface{}
		require.NoError(t, json.Unmarshal(raw, &got))
		assert.Equal(t, false, got["success"])
		assert.Nil(t, got["data"])
		assert.Contains(t, got, "data")
		assert.Equal(t, "OVERPAYMENT", got["code"])
		assert.Len(t, got["errors"], 1)
	})
}
