package source

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"bizdesk/internal/core"
	"bizdesk/internal/datatable"
	"bizdesk/internal/views"
)

// APIError is a failure reported by the REST backend.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("backend: status %d", e.Status)
	}
	return fmt.Sprintf("backend: status %d: %s", e.Status, e.Message)
}

// Unwrap maps well-known statuses onto the core errors so callers can use errors.Is.
func (e *APIError) Unwrap() error {
	switch e.Status {
	case http.StatusUnauthorized:
		return core.ErrUnauthenticated
	case http.StatusForbidden:
		return core.ErrForbidden
	case http.StatusNotFound:
		return core.ErrNotFound
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return core.ErrInvalidInput
	}
	return nil
}

// envelope is the response shape of every backend endpoint.
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
}

// APISource reads rows from the REST backend.
type APISource struct {
	baseURL string
	token   string
	client  *http.Client
}

// NewAPISource returns a client for the backend at baseURL. token is used when
// a session carries no token of its own.
func NewAPISource(baseURL, token string, timeout time.Duration) *APISource {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &APISource{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		client:  &http.Client{Timeout: timeout},
	}
}

// Rows fetches GET {base}/{resource}.
func (a *APISource) Rows(ctx context.Context, s core.SessionContext, def views.Definition) ([]datatable.Row, error) {
	var data any
	if err := a.do(ctx, s, http.MethodGet, "/"+strings.TrimLeft(def.Resource, "/"), nil, &data); err != nil {
		return nil, fmt.Errorf("load %s: %w", def.Name, err)
	}
	return datatable.Normalize(data), nil
}

type bulkRequest struct {
	Action string   `json:"action"`
	IDs    []string `json:"ids"`
}

type bulkResponse struct {
	Affected *int `json:"affected"`
}

// Bulk posts {action, ids} to {base}/{resource}/bulk.
func (a *APISource) Bulk(ctx context.Context, s core.SessionContext, def views.Definition, action string, ids []string) (int, error) {
	if _, err := ParseBulk(action); err != nil {
		return 0, err
	}
	var out bulkResponse
	path := "/" + strings.TrimLeft(def.Resource, "/") + "/bulk"
	if err := a.do(ctx, s, http.MethodPost, path, bulkRequest{Action: action, IDs: ids}, &out); err != nil {
		return 0, fmt.Errorf("bulk %s on %s: %w", action, def.Name, err)
	}
	// Backends that omit the count are taken to have applied every id.
	if out.Affected == nil {
		return len(ids), nil
	}
	return *out.Affected, nil
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
	User  struct {
		ID        int    `json:"id"`
		CompanyID int    `json:"company_id"`
		Username  string `json:"username"`
		Name      string `json:"name"`
		Role      string `json:"role"`
	} `json:"user"`
}

// Authenticate exchanges credentials for a backend token via POST /auth/login.
func (a *APISource) Authenticate(ctx context.Context, username, password string) (core.SessionContext, error) {
	var out loginResponse
	err := a.do(ctx, core.SessionContext{}, http.MethodPost, "/auth/login", loginRequest{Username: username, Password: password}, &out)
	if err != nil {
		return core.SessionContext{}, fmt.Errorf("login: %w", err)
	}
	s := core.SessionContext{
		UserID:    out.User.ID,
		CompanyID: out.User.CompanyID,
		Username:  out.User.Username,
		Name:      out.User.Name,
		Role:      core.Role(out.User.Role),
		Token:     out.Token,
	}
	if s.Username == "" {
		s.Username = username
	}
	if !s.Valid() {
		return core.SessionContext{}, fmt.Errorf("login: backend returned an unusable user (role %q): %w", out.User.Role, core.ErrUnauthenticated)
	}
	return s, nil
}

func (a *APISource) do(ctx context.Context, s core.SessionContext, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, a.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	token := s.Token
	if token == "" {
		token = a.token
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if key := s.CompanyKey(); key != "" {
		req.Header.Set("X-Company-ID", key)
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	var env envelope
	dec := json.NewDecoder(io.LimitReader(resp.Body, 32<<20))
	dec.UseNumber()
	decodeErr := dec.Decode(&env)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{Status: resp.StatusCode, Message: env.Message}
	}
	if decodeErr != nil {
		return fmt.Errorf("decode response: %w", decodeErr)
	}
	if !env.Success {
		return &APIError{Status: resp.StatusCode, Message: env.Message}
	}
	if out == nil || len(env.Data) == 0 {
		return nil
	}
	dec = json.NewDecoder(bytes.NewReader(env.Data))
	dec.UseNumber()
	if err := dec.Decode(out); err != nil {
		return fmt.Errorf("decode data: %w", err)
	}
	return nil
}
