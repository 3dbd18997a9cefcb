package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bazaar/internal/models"
	"bazaar/internal/services"
)

const testSecret = "middleware-test-secret"

func testToken(t *testing.T, subjectID string) string {
	t.Helper()
	claims := services.CustomClaims{
		Username: "tester",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subjectID,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

func runAuthn(t *testing.T, authorization string) (*httptest.ResponseRecorder, *models.SubjectFromAuth, bool) {
	t.Helper()

	verifier, err := services.NewAuthentication(testSecret)
	require.NoError(t, err)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	reached := false
	var subject *models.SubjectFromAuth
	next := func(c echo.Context) error {
		reached = true
		subject, _ = c.Request().Context().Value(ctxKeyAuthSubject).(*models.SubjectFromAuth)
		return c.NoContent(http.StatusOK)
	}

	require.NoError(t, Authn(verifier)(next)(c))
	return rec, subject, reached
}

func TestAuthn_ValidToken(t *testing.T) {
	_, subject, reached := runAuthn(t, "Bearer "+testToken(t, "subject-1"))
	assert.True(t, reached)
	require.NotNil(t, subject)
	assert.Equal(t, "subject-1", subject.SubjectID)
	assert.Equal(t, "tester", subject.Username)
}

func TestAuthn_NoHeader(t *testing.T) {
	_, subject, reached := runAuthn(t, "")
	assert.True(t, reached)
	assert.Nil(t, subject)
}

func TestAuthn_MalformedHeader(t *testing.T) {
	_, subject, reached := runAuthn(t, "Basic dXNlcjpwYXNz")
	assert.True(t, reached)
	assert.Nil(t, subject)
}

func TestAuthn_EmptyBearer(t *testing.T) {
	_, subject, reached := runAuthn(t, "Bearer ")
	assert.True(t, reached)
	assert.Nil(t, subject)
}

func TestAuthn_InvalidToken(t *testing.T) {
	rec, _, reached := runAuthn(t, "Bearer not-a-token")
	assert.False(t, reached)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
