package web

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bizdesk/internal/core"
	"bizdesk/internal/datatable"
	"bizdesk/internal/source"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"unauthenticated", core.ErrUnauthenticated, http.StatusUnauthorized, "UNAUTHORIZED"},
		{"forbidden", fmt.Errorf("view x: %w", core.ErrForbidden), http.StatusForbidden, "FORBIDDEN"},
		{"not found", fmt.Errorf("view x: %w", core.ErrNotFound), http.StatusNotFound, "NOT_FOUND"},
		{"invalid", fmt.Errorf("bad: %w", core.ErrInvalidInput), http.StatusBadRequest, "BAD_REQUEST"},
		{"local failure", fmt.Errorf("export x: %w: %w", errInternal, errors.New("disk full")), http.StatusInternalServerError, "INTERNAL_ERROR"},
		{"backend failure", &source.APIError{Status: http.StatusServiceUnavailable, Message: "down"}, http.StatusBadGateway, "UPSTREAM_ERROR"},
	}
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, code, _ := classify(r, tt.err)
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.code, code)
		})
	}
}

func TestExport_WriteFailureIsInternal(t *testing.T) {
	exportFormats["broken"] = exportFormat{"text/plain", func(datatable.View, string, *bytes.Buffer) error {
		return errors.New("disk full")
	}}
	t.Cleanup(func() { delete(exportFormats, "broken") })

	h := newTestHandler(t)
	cookie := signIn(t, h, "dana")

	rec := get(h, "/v/invoices/export.broken", cookie)
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "could not be reached")
	assert.NotContains(t, rec.Body.String(), "disk full")
}
