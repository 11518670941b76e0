package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"returnsdesk/src/core/domain"
)

func TestFromDomainError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name   string
		err    error
		status int
		code   string
		field  string
	}{
		{"validation", domain.NewValidationError("reason", "unknown return reason"), http.StatusBadRequest, "VALIDATION_ERROR", "reason"},
		{"wrapped validation", fmt.Errorf("submit: %w", domain.NewValidationError("refundMethod", "bad")), http.StatusBadRequest, "VALIDATION_ERROR", "refundMethod"},
		{"conflict", domain.NewConflictError("return form is closed"), http.StatusConflict, "CONFLICT", ""},
		{"unauthorized", domain.NewUnauthorizedError("expired"), http.StatusUnauthorized, "UNAUTHORIZED", ""},
		{"unavailable", domain.NewUnavailableError("down"), http.StatusServiceUnavailable, "IDENTITY_UNAVAILABLE", ""},
		{"unknown", errors.New("disk on fire"), http.StatusInternalServerError, "INTERNAL_ERROR", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)

			FromDomainError(c, tt.err, "req-1")

			assert.Equal(t, tt.status, w.Code)
			var body Error
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tt.code, body.Error.Code)
			assert.Equal(t, tt.field, body.Error.Field)
			assert.Equal(t, "req-1", body.Error.RequestID)
		})
	}
}
