package dto

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetHTTPStatus(t *testing.T) {
	tests := []struct {
		code     string
		expected int
	}{
		{ErrCodeBadRequest, http.StatusBadRequest},
		{ErrCodeNotFound, http.StatusNotFound},
		{"UNAUTHORIZED", http.StatusForbidden},
		{"CONCURRENCY_CONFLICT", http.StatusConflict},
		{"INVALID_AMOUNT", http.StatusBadRequest},
		{"TRANSFERS_PAUSED", http.StatusUnprocessableEntity},
		{"EXCEEDS_FUNDING_GOAL", http.StatusUnprocessableEntity},
		{"INSUFFICIENT_ESCROW_BALANCE", http.StatusUnprocessableEntity},
		{ErrCodeInternal, http.StatusInternalServerError},
		// Unknown domain codes default to unprocessable entity
		{"SOME_FUTURE_RULE", http.StatusUnprocessableEntity},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.expected, GetHTTPStatus(tt.code))
		})
	}
}

func TestNewSuccessResponseWithMeta(t *testing.T) {
	resp := NewSuccessResponseWithMeta([]int{1, 2, 3}, 25, 2, 10)

	assert.True(t, resp.Success)
	assert.Equal(t, int64(25), resp.Meta.Total)
	assert.Equal(t, 2, resp.Meta.Page)
	assert.Equal(t, 3, resp.Meta.TotalPages)
}
