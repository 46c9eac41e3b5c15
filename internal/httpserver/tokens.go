package httpserver

import (
	"context"
	"crypto/sha256"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/hkdf"

	"github.com/robalobadob/memory/apps/go-server/internal/table"
)

const tableCookieName = "memory_table"

var errInvalidToken = errors.New("invalid token")

// tableClaims binds a token to exactly one table.
type tableClaims struct {
	TableID string `json:"tid"`
	jwt.RegisteredClaims
}

// deriveKey stretches TABLE_SECRET into a 32-byte HS256 key.
func deriveKey(secret string) []byte {
	kdf := hkdf.New(sha256.New, []byte(secret), nil, []byte("memory-table-token"))
	key := make([]byte, 32)
	_, _ = io.ReadFull(kdf, key)
	return key
}

// signTableToken creates an HS256 JWT for tableID with a configurable expiry (TABLE_TOKEN_HOURS; default 24).
func (s *Server) signTableToken(tableID string) (string, time.Time, error) {
	now := time.Now()
	exp := now.Add(s.cfg.TokenTTL)
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, tableClaims{
		TableID: tableID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	})
	ss, err := t.SignedString(s.key)
	return ss, exp, err
}

// parseTableToken verifies tok and returns the table id it grants.
func (s *Server) parseTableToken(tok string) (string, error) {
	claims := &tableClaims{}
	t, err := jwt.ParseWithClaims(tok, claims, func(t *jwt.Token) (interface{}, error) {
		return s.key, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !t.Valid || claims.TableID == "" {
		return "", errInvalidToken
	}
	return claims.TableID, nil
}

// setTableCookie writes the table token cookie, scoped to that table's routes.
func (s *Server) setTableCookie(w http.ResponseWriter, tableID, token string, exp time.Time) {
	secure := s.cfg.Production
	sameSite := http.SameSiteLaxMode
	if secure {
		sameSite = http.SameSiteNoneMode // required for third-party contexts when Secure
	}
	http.SetCookie(w, &http.Cookie{
		Name:     tableCookieName,
		Value:    token,
		Path:     "/tables/" + tableID,
		HttpOnly: true,
		Secure:   secure,
		SameSite: sameSite,
		Expires:  exp,
	})
}

// tokenFrom extracts a token from the Authorization header, the ?token=
// query parameter (browsers cannot set headers on websockets) or the cookie.
func tokenFrom(r *http.Request) string {
	// Authorization: Bearer <token>
	if a := r.Header.Get("Authorization"); strings.HasPrefix(strings.ToLower(a), "bearer ") {
		return strings.TrimSpace(a[7:])
	}
	if q := r.URL.Query().Get("token"); q != "" {
		return q
	}
	if c, err := r.Cookie(tableCookieName); err == nil {
		return c.Value
	}
	return ""
}

// ---------------------------- table middleware -----------------------------

// ctxTableKey is the context key type for the resolved *table.Table.
type ctxTableKey struct{}

// requireTableToken checks that the token grants the {id} in the path and
// injects the table into the request context.
func (s *Server) requireTableToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		tok := tokenFrom(r)
		if tok == "" {
			http.Error(w, `{"error":"Unauthorized"}`, http.StatusUnauthorized)
			return
		}
		tid, err := s.parseTableToken(tok)
		if err != nil || tid != id {
			http.Error(w, `{"error":"Invalid token"}`, http.StatusUnauthorized)
			return
		}
		t, err := s.store.Get(r.Context(), id)
		if err != nil {
			http.Error(w, `{"error":"not_found"}`, http.StatusNotFound)
			return
		}
		ctx := context.WithValue(r.Context(), ctxTableKey{}, t)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// tableFrom returns the table placed in the context by requireTableToken.
func tableFrom(r *http.Request) *table.Table {
	t, _ := r.Context().Value(ctxTableKey{}).(*table.Table)
	return t
}
