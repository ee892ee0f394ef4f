package middleware

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"camphub/internal/managers"
	"camphub/internal/schemas"
	"camphub/internal/utils"
)

type stubResolver struct {
	account *schemas.Account
}

func (r *stubResolver) FindByID(_ context.Context, id uuid.UUID) (*schemas.Account, error) {
	if r.account != nil && r.account.ID == id {
		return r.account, nil
	}
	return nil, pgx.ErrNoRows
}

func guardedRouter(t *testing.T, jwtMgr managers.JWTMgr, resolver PrincipalResolver, roles ...schemas.Role) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(ErrorNormalizer())

	chain := []gin.HandlerFunc{RequireAuth(jwtMgr, resolver)}
	if len(roles) > 0 {
		chain = append(chain, RequireRole(roles...))
	}
	chain = append(chain, func(c *gin.Context) {
		principal := utils.GetPrincipal(c)
		c.JSON(http.StatusOK, gin.H{"success": true, "id": principal.ID.String()})
	})

	router.GET("/guarded", chain...)
	return router
}

func newGuardFixture(t *testing.T) (*managers.JWTManager, *stubResolver, string) {
	t.Helper()

	publicKey, privateKey, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	jwtMgr := managers.NewJWTManager(privateKey, publicKey)

	account := &schemas.Account{ID: uuid.New(), Name: "John Doe", Email: "john@gmail.com", Role: schemas.RoleUser}
	resolver := &stubResolver{account: account}

	token, err := jwtMgr.GenerateJWT(account.ID.String(), time.Hour)
	require.NoError(t, err)

	return jwtMgr, resolver, token
}

func TestRequireAuthWithBearerToken(t *testing.T) {
	jwtMgr, resolver, token := newGuardFixture(t)
	router := guardedRouter(t, jwtMgr, resolver)

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodGet, "/guarded", nil)
	request.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(recorder, request)

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Contains(t, recorder.Body.String(), resolver.account.ID.String())
}

func TestRequireAuthWithCookieFallback(t *testing.T) {
	jwtMgr, resolver, token := newGuardFixture(t)
	router := guardedRouter(t, jwtMgr, resolver)

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodGet, "/guarded", nil)
	request.AddCookie(&http.Cookie{Name: "token", Value: token})
	router.ServeHTTP(recorder, request)

	assert.Equal(t, http.StatusOK, recorder.Code)
}

func TestRequireAuthRejections(t *testing.T) {
	jwtMgr, resolver, token := newGuardFixture(t)

	unknownSubject, err := jwtMgr.GenerateJWT(uuid.New().String(), time.Hour)
	require.NoError(t, err)

	testCases := []struct {
		name      string
		configure func(r *http.Request)
	}{
		{"NoToken", func(r *http.Request) {}},
		{"MalformedHeader", func(r *http.Request) { r.Header.Set("Authorization", token) }},
		{"InvalidToken", func(r *http.Request) { r.Header.Set("Authorization", "Bearer garbage") }},
		{"UnknownSubject", func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+unknownSubject) }},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			router := guardedRouter(t, jwtMgr, resolver)

			recorder := httptest.NewRecorder()
			request := httptest.NewRequest(http.MethodGet, "/guarded", nil)
			tc.configure(request)
			router.ServeHTTP(recorder, request)

			assert.Equal(t, http.StatusUnauthorized, recorder.Code)
			assert.JSONEq(t, `{"success":false,"error":"Not authorized to access this route"}`, recorder.Body.String())
		})
	}
}

func TestRequireRole(t *testing.T) {
	jwtMgr, resolver, token := newGuardFixture(t)

	t.Run("AllowedRole", func(t *testing.T) {
		router := guardedRouter(t, jwtMgr, resolver, schemas.RoleUser, schemas.RoleAdmin)

		recorder := httptest.NewRecorder()
		request := httptest.NewRequest(http.MethodGet, "/guarded", nil)
		request.Header.Set("Authorization", "Bearer "+token)
		router.ServeHTTP(recorder, request)

		assert.Equal(t, http.StatusOK, recorder.Code)
	})

	t.Run("ForbiddenRole", func(t *testing.T) {
		router := guardedRouter(t, jwtMgr, resolver, schemas.RolePublisher)

		recorder := httptest.NewRecorder()
		request := httptest.NewRequest(http.MethodGet, "/guarded", nil)
		request.Header.Set("Authorization", "Bearer "+token)
		router.ServeHTTP(recorder, request)

		assert.Equal(t, http.StatusForbidden, recorder.Code)
		assert.JSONEq(t, `{"success":false,"error":"User role 'user' is not authorized to access this route"}`, recorder.Body.String())
	})
}
