package httpx

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pharmadist/pharmadist/internal/shared"
)

func TestRespondErrorStatus(t *testing.T) {
	cases := []struct {
		err    error
		status int
		title  string
	}{
		{fmt.Errorf("order 9 %w", shared.ErrNotFound), http.StatusNotFound, "Not Found"},
		{fmt.Errorf("%w: sku", shared.ErrDuplicate), http.StatusConflict, "Duplicate"},
		{fmt.Errorf("%w: customer", shared.ErrInUse), http.StatusConflict, "In Use"},
		{fmt.Errorf("%w: draft", shared.ErrInvalidState), http.StatusConflict, "Invalid State"},
		{fmt.Errorf("%w: sequence", shared.ErrConcurrentUpdate), http.StatusConflict, "Concurrent Update"},
		{shared.ErrIdempotencyConflict, http.StatusConflict, "Already Processed"},
		{fmt.Errorf("%w: lot A", shared.ErrInsufficientStock), http.StatusUnprocessableEntity, "Insufficient Stock"},
		{fmt.Errorf("%w: name", shared.ErrValidation), http.StatusBadRequest, "Validation Failed"},
		{errors.New("connection reset"), http.StatusInternalServerError, "Internal Error"},
	}
	for _, tc := range cases {
		rec := httptest.NewRecorder()
		RespondError(rec, tc.err)
		assert.Equal(t, tc.status, rec.Code, tc.err.Error())
		assert.Contains(t, rec.Body.String(), tc.title)
		assert.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))
	}
}

func TestConcurrentUpdateIsClientError(t *testing.T) {
	assert.True(t, IsClientError(fmt.Errorf("commit: %w", shared.ErrConcurrentUpdate)))
	assert.False(t, IsClientError(errors.New("dial tcp: refused")))
}
