package web

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"bizdesk/internal/core"
)

const authCookie = "auth_token"

// jwtClaims is the JWT payload struct used for signing and parsing.
type jwtClaims struct {
	UserID    int    `json:"user_id"`
	CompanyID int    `json:"company_id"`
	Role      string `json:"role"`
	Username  string `json:"username"`
	Name      string `json:"name,omitempty"`
	// BackendToken is the bearer token issued by the REST backend, if any.
	BackendToken string `json:"bt,omitempty"`
	jwt.RegisteredClaims
}

func (c *jwtClaims) session() core.SessionContext {
	return core.SessionContext{
		UserID:    c.UserID,
		CompanyID: c.CompanyID,
		Username:  c.Username,
		Name:      c.Name,
		Role:      core.Role(c.Role),
		Token:     c.BackendToken,
	}
}

// issueToken signs a session into a JWT valid for the configured TTL.
func (h *Handler) issueToken(s core.SessionContext) (string, error) {
	now := time.Now()
	claims := &jwtClaims{
		UserID:       s.UserID,
		CompanyID:    s.CompanyID,
		Role:         string(s.Role),
		Username:     s.Username,
		Name:         s.Name,
		BackendToken: s.Token,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(h.opts.SessionTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(h.opts.JWTSecret))
}

// parseToken validates raw and returns the session it carries.
func (h *Handler) parseToken(raw string) (core.SessionContext, error) {
	claims := &jwtClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(h.opts.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return core.SessionContext{}, core.ErrUnauthenticated
	}
	s := claims.session()
	if !s.Valid() {
		return core.SessionContext{}, core.ErrUnauthenticated
	}
	return s, nil
}

func (h *Handler) sessionFromCookie(r *http.Request) (core.SessionContext, bool) {
	cookie, err := r.Cookie(authCookie)
	if err != nil {
		return core.SessionContext{}, false
	}
	s, err := h.parseToken(cookie.Value)
	return s, err == nil
}

func (h *Handler) setAuthCookie(w http.ResponseWriter, value string, maxAge int) {
	http.SetCookie(w, &http.Cookie{
		Name:     authCookie,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.opts.SecureCookies,
		SameSite: http.SameSiteStrictMode,
		MaxAge:   maxAge,
	})
}

// startSession authenticates and sets the auth cookie.
func (h *Handler) startSession(w http.ResponseWriter, r *http.Request, username, password string) (core.SessionContext, error) {
	s, err := h.svc.Authenticate(r.Context(), username, password)
	if err != nil {
		return core.SessionContext{}, err
	}
	signed, err := h.issueToken(s)
	if err != nil {
		return core.SessionContext{}, fmt.Errorf("token generation failed: %w", err)
	}
	h.setAuthCookie(w, signed, int(h.opts.SessionTTL/time.Second))
	return s, nil
}

// RequireAuth is chi middleware that validates the auth_token cookie and puts
// the session into the request context. Returns 401 if the token is absent or invalid.
func (h *Handler) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s, ok := h.sessionFromCookie(r)
		if !ok {
			writeError(w, r, "authentication required", "UNAUTHORIZED", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r.WithContext(core.WithSession(r.Context(), s)))
	})
}

// RequireAuthBrowser is middleware for HTML page routes. Unlike RequireAuth (which returns 401 JSON),
// this middleware redirects unauthenticated requests to /login with a 303.
func (h *Handler) RequireAuthBrowser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s, ok := h.sessionFromCookie(r)
		if !ok {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r.WithContext(core.WithSession(r.Context(), s)))
	})
}

// session returns the request's session. The auth middleware guarantees it on protected routes.
func session(r *http.Request) core.SessionContext {
	s, _ := core.SessionFrom(r.Context())
	return s
}

type sessionResponse struct {
	UserID    int    `json:"user_id"`
	CompanyID int    `json:"company_id"`
	Username  string `json:"username"`
	Name      string `json:"name"`
	Role      string `json:"role"`
}

func toSessionResponse(s core.SessionContext) sessionResponse {
	return sessionResponse{
		UserID:    s.UserID,
		CompanyID: s.CompanyID,
		Username:  s.Username,
		Name:      s.DisplayName(),
		Role:      string(s.Role),
	}
}

// login handles POST /api/auth/login.
func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	s, err := h.startSession(w, r, req.Username, req.Password)
	if err != nil {
		if errors.Is(err, core.ErrUnauthenticated) || errors.Is(err, core.ErrInvalidInput) {
			writeError(w, r, "invalid username or password", "UNAUTHORIZED", http.StatusUnauthorized)
			return
		}
		writeServiceError(w, r, err)
		return
	}
	writeData(w, toSessionResponse(s))
}

// logout handles POST /api/auth/logout, clearing the auth cookie.
func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	h.setAuthCookie(w, "", -1)
	w.WriteHeader(http.StatusNoContent)
}

// me handles GET /api/auth/me.
func (h *Handler) me(w http.ResponseWriter, r *http.Request) {
	writeData(w, toSessionResponse(session(r)))
}
