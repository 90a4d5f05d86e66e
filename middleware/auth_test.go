package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/EzequielDigiacomo/sigdef-admin/apiclient"
	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signed(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

type seen struct {
	token string
	role  string
	user  int
}

func recorder(s *seen) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.token, _ = apiclient.TokenFromContext(r.Context())
		s.role, _ = GetUserRoleFromContext(r.Context())
		s.user, _ = GetUserIDFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})
}

func serve(h http.Handler, authorization string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/v1/athletes", nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestAuthenticateVerifiesSignatureWhenSecretIsSet(t *testing.T) {
	var s seen
	h := Authenticate("secreto")(recorder(&s))
	token := signed(t, "secreto", jwt.MapClaims{"user_id": 7, "role": "Admin", "exp": time.Now().Add(time.Hour).Unix()})

	rec := serve(h, "Bearer "+token)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, token, s.token)
	assert.Equal(t, "Admin", s.role)
	assert.Equal(t, 7, s.user)

	forged := signed(t, "otro", jwt.MapClaims{"role": "Admin"})
	assert.Equal(t, http.StatusUnauthorized, serve(h, "Bearer "+forged).Code)

	expired := signed(t, "secreto", jwt.MapClaims{"role": "Admin", "exp": time.Now().Add(-time.Hour).Unix()})
	assert.Equal(t, http.StatusUnauthorized, serve(h, "Bearer "+expired).Code)
}

func TestAuthenticateWithoutSecretReadsClaimsUnverified(t *testing.T) {
	var s seen
	h := Authenticate("")(recorder(&s))
	token := signed(t, "backend-key", jwt.MapClaims{
		jwtClaimSchemaRol: "Delegado",
		jwtClaimNameID:    "12",
	})

	rec := serve(h, "bearer "+token)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "Delegado", s.role)
	assert.Equal(t, 12, s.user)
	assert.Equal(t, token, s.token)
}

func TestAuthenticateRejectsMissingOrMalformedToken(t *testing.T) {
	h := Authenticate("")(recorder(&seen{}))

	assert.Equal(t, http.StatusUnauthorized, serve(h, "").Code)
	assert.Equal(t, http.StatusUnauthorized, serve(h, "Basic abc").Code)
	assert.Equal(t, http.StatusUnauthorized, serve(h, "Bearer not-a-jwt").Code)
}

func TestAuthorize(t *testing.T) {
	var s seen
	h := Authenticate("")(Authorize(RoleAdmin)(recorder(&s)))

	admin := signed(t, "k", jwt.MapClaims{"role": []any{"admin", "Delegado"}})
	assert.Equal(t, http.StatusNoContent, serve(h, "Bearer "+admin).Code)

	delegate := signed(t, "k", jwt.MapClaims{"role": "Delegado"})
	assert.Equal(t, http.StatusForbidden, serve(h, "Bearer "+delegate).Code)

	noRole := signed(t, "k", jwt.MapClaims{"user_id": 1})
	assert.Equal(t, http.StatusForbidden, serve(h, "Bearer "+noRole).Code)
}
