package source_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bizdesk/internal/core"
	"bizdesk/internal/source"
	"bizdesk/internal/views"
)

var invoices = views.Definition{Name: "invoices", Resource: "invoices", Columns: []views.ColumnDef{{Key: "invoice_number"}}}

func TestAPISource_Rows(t *testing.T) {
	var gotAuth, gotCompany, gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotCompany = r.Header.Get("X-Company-ID")
		gotPath = r.URL.Path
		_, _ = io.WriteString(w, `{"success":true,"data":[{"id":12345678901234567,"amount":10.50},"junk",{"id":2}]}`)
	}))
	defer srv.Close()

	api := source.NewAPISource(srv.URL+"/api/", "fallback", time.Second)

	s := core.SessionContext{UserID: 1, CompanyID: 7, Role: core.RoleAdmin, Token: "session-token"}
	rows, err := api.Rows(context.Background(), s, invoices)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, json.Number("12345678901234567"), rows[0]["id"])
	assert.Equal(t, json.Number("10.50"), rows[0]["amount"])
	assert.Equal(t, "/api/invoices", gotPath)
	assert.Equal(t, "Bearer session-token", gotAuth)
	assert.Equal(t, "7", gotCompany)

	_, err = api.Rows(context.Background(), core.SessionContext{UserID: 1, Role: core.RoleSuperAdmin}, invoices)
	require.NoError(t, err)
	assert.Equal(t, "Bearer fallback", gotAuth)
	assert.Empty(t, gotCompany)
}

func TestAPISource_NonArrayData(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"success":true,"data":{"unexpected":"object"}}`)
	}))
	defer srv.Close()

	rows, err := source.NewAPISource(srv.URL, "", time.Second).Rows(context.Background(), core.SessionContext{}, invoices)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestAPISource_Errors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		target error
		msg    string
	}{
		{"unauthorized", http.StatusUnauthorized, `{"success":false,"message":"token expired"}`, core.ErrUnauthenticated, "token expired"},
		{"forbidden", http.StatusForbidden, `{"success":false}`, core.ErrForbidden, "status 403"},
		{"not found", http.StatusNotFound, `not json`, core.ErrNotFound, "status 404"},
		{"soft failure", http.StatusOK, `{"success":false,"message":"quota exceeded"}`, nil, "quota exceeded"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			}))
			defer srv.Close()

			_, err := source.NewAPISource(srv.URL, "", time.Second).Rows(context.Background(), core.SessionContext{}, invoices)
			require.Error(t, err)
			var apiErr *source.APIError
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, tt.status, apiErr.Status)
			assert.Contains(t, err.Error(), tt.msg)
			if tt.target != nil {
				assert.True(t, errors.Is(err, tt.target))
			}
		})
	}
}

func TestAPISource_Authenticate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/login", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		var body map[string]string
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		if body["password"] != "right" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = io.WriteString(w, `{"success":false,"message":"invalid credentials"}`)
			return
		}
		_, _ = io.WriteString(w, `{"success":true,"data":{"token":"t0k","user":{"id":9,"company_id":4,"name":"Dana","role":"admin"}}}`)
	}))
	defer srv.Close()
	api := source.NewAPISource(srv.URL, "", time.Second)

	s, err := api.Authenticate(context.Background(), "dana", "right")
	require.NoError(t, err)
	assert.Equal(t, core.SessionContext{UserID: 9, CompanyID: 4, Username: "dana", Name: "Dana", Role: core.RoleAdmin, Token: "t0k"}, s)

	_, err = api.Authenticate(context.Background(), "dana", "wrong")
	assert.True(t, errors.Is(err, core.ErrUnauthenticated))
}

func TestAPISource_Bulk(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/invoices/bulk", r.URL.Path)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = io.WriteString(w, `{"success":true,"data":{"affected":2}}`)
	}))
	defer srv.Close()
	api := source.NewAPISource(srv.URL, "", time.Second)

	n, err := api.Bulk(context.Background(), core.SessionContext{}, invoices, "status:Paid", []string{"1", "2"})
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, "status:Paid", got["action"])
	assert.Equal(t, []any{"1", "2"}, got["ids"])

	_, err = api.Bulk(context.Background(), core.SessionContext{}, invoices, "archive", []string{"1"})
	assert.True(t, errors.Is(err, core.ErrInvalidInput))
}

func TestAPISource_BulkAffectedCount(t *testing.T) {
	tests := []struct {
		name string
		body string
		want int
	}{
		{"none applied", `{"success":true,"data":{"affected":0}}`, 0},
		{"count omitted", `{"success":true,"data":{}}`, 2},
		{"no data", `{"success":true}`, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = io.WriteString(w, tt.body)
			}))
			defer srv.Close()
			api := source.NewAPISource(srv.URL, "", time.Second)

			n, err := api.Bulk(context.Background(), core.SessionContext{}, invoices, "status:Paid", []string{"1", "2"})
			require.NoError(t, err)
			assert.Equal(t, tt.want, n)
		})
	}
}
