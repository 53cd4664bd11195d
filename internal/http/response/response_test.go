package response_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arsennaibaho/Tugas-IMK/internal/calendar"
	"github.com/arsennaibaho/Tugas-IMK/internal/domain"
	"github.com/arsennaibaho/Tugas-IMK/internal/http/response"
)

// unencodableType fails during JSON encoding.
type unencodableType struct{}

func (unencodableType) MarshalJSON() ([]byte, error) {
	return nil, fmt.Errorf("cannot encode")
}

func TestOK_EncodingFailure_Returns500WithErrorJSON(t *testing.T) {
	w := httptest.NewRecorder()

	response.OK(w, unencodableType{})

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var resp response.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "INTERNAL_ERROR", resp.Error.Code)
}

func TestFromDomainError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
		wantField  string
	}{
		{"text required", domain.ErrTextRequired, http.StatusBadRequest, "VALIDATION_ERROR", "text"},
		{"deadline in past", fmt.Errorf("wrapped: %w", domain.ErrDeadlineInPast), http.StatusBadRequest, "VALIDATION_ERROR", "deadline"},
		{"not an occurrence", domain.ErrNotAnOccurrence, http.StatusBadRequest, "VALIDATION_ERROR", "date"},
		{"invalid date", calendar.ErrInvalidDate, http.StatusBadRequest, "VALIDATION_ERROR", "date"},
		{"weekday", domain.ErrInvalidWeekday, http.StatusBadRequest, "VALIDATION_ERROR", "repetition.days"},
		{"range", domain.ErrInvalidRange, http.StatusBadRequest, "INVALID_REQUEST", ""},
		{"not found", fmt.Errorf("%w: abc", domain.ErrTaskNotFound), http.StatusNotFound, "NOT_FOUND", ""},
		{"exists", domain.ErrTaskExists, http.StatusConflict, "CONFLICT", ""},
		{"unknown", fmt.Errorf("disk full"), http.StatusInternalServerError, "INTERNAL_ERROR", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			r := httptest.NewRequest(http.MethodGet, "/", nil)

			response.FromDomainError(w, r, tt.err)

			assert.Equal(t, tt.wantStatus, w.Code)
			var resp response.ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, tt.wantCode, resp.Error.Code)
			if tt.wantField != "" {
				require.Len(t, resp.Error.Details, 1)
				assert.Equal(t, tt.wantField, resp.Error.Details[0].Field)
			}
		})
	}
}
