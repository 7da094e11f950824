package handler

import (
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/utilitrack/backend/internal/interfaces/http/dto"
)

func TestStatementHandler_RejectsBeforeLoading(t *testing.T) {
	h := NewStatementHandler(nil, nil, nil)
	id := uuid.NewString()

	tests := []struct {
		name       string
		target     string
		wantStatus int
		wantCode   string
	}{
		{"unknown format", "/billing/" + id + "/statement?format=xml", http.StatusBadRequest, dto.ErrCodeBadRequest},
		{"pdf without renderer", "/billing/" + id + "/statement?format=PDF", http.StatusServiceUnavailable, dto.ErrCodeServiceUnavailable},
		{"malformed id", "/billing/nope/statement", http.StatusBadRequest, dto.ErrCodeBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, resp := serve(t, tt.target, h.Get, "/billing/:id/statement")
			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantCode, resp.Error.Code)
			assert.Equal(t, "req-42", resp.RequestID)
		})
	}
}
