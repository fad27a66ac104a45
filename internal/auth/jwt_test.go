package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidate(t *testing.T) {
	tm := New("super-secret", time.Hour)

	token, err := tm.Generate("user-123")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := tm.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, "user-123", claims.UserID)
}

func TestValidate_Expired(t *testing.T) {
	tm := New("super-secret", -time.Minute)

	token, err := tm.Generate("user-123")
	require.NoError(t, err)

	_, err = tm.Validate(token)
	assert.Error(t, err)
}

func TestValidate_WrongSecret(t *testing.T) {
	token, err := New("right-secret", time.Hour).Generate("user-123")
	require.NoError(t, err)

	_, err = New("wrong-secret", time.Hour).Validate(token)
	assert.Error(t, err)
}

func TestValidate_Malformed(t *testing.T) {
	_, err := New("secret", time.Hour).Validate("not.a.jwt")
	assert.Error(t, err)
}

func TestMiddleware(t *testing.T) {
	tm := New("secret", time.Hour)

	var gotClaims *Claims
	handler := tm.Middleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := ClaimsFromContext(r.Context())
		require.True(t, ok)
		gotClaims = claims
		w.WriteHeader(http.StatusOK)
	}))

	t.Run("valid bearer token", func(t *testing.T) {
		token, err := tm.Generate("user-42")
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/get-all-stories", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		require.NotNil(t, gotClaims)
		assert.Equal(t, "user-42", gotClaims.UserID)
	})

	t.Run("missing token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/get-all-stories", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.JSONEq(t, `{"error":true,"message":"Missing auth token"}`, rec.Body.String())
	})

	t.Run("garbage token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/get-all-stories", nil)
		req.Header.Set("Authorization", "Bearer garbage")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}
