package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/noah-isme/intervention-planner-api/internal/models"
	appErrors "github.com/noah-isme/intervention-planner-api/pkg/errors"
)

type stubValidator struct {
	claims *models.JWTClaims
	token  string
}

func (s stubValidator) ValidateToken(token string) (*models.JWTClaims, error) {
	if token != s.token {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token")
	}
	return s.claims, nil
}

func newRouter(validator TokenValidator, extra ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handlers := append([]gin.HandlerFunc{JWT(validator)}, extra...)
	handlers = append(handlers, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user": Claims(c).UserID})
	})
	r.POST("/things/:id", handlers...)
	return r
}

func doRequest(r http.Handler, header string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/things/42", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestJWTMiddleware(t *testing.T) {
	validator := stubValidator{token: "good", claims: &models.JWTClaims{UserID: "u1", Role: models.RoleViewer}}
	r := newRouter(validator)

	assert.Equal(t, http.StatusUnauthorized, doRequest(r, "").Code)
	assert.Equal(t, http.StatusUnauthorized, doRequest(r, "Basic good").Code)
	assert.Equal(t, http.StatusUnauthorized, doRequest(r, "Bearer bad").Code)

	w := doRequest(r, "Bearer good")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "u1")
}

func TestCanWrite(t *testing.T) {
	for role, want := range map[models.UserRole]int{
		models.RoleAdmin:           http.StatusOK,
		models.RoleInterventionist: http.StatusOK,
		models.RoleViewer:          http.StatusForbidden,
	} {
		validator := stubValidator{token: "t", claims: &models.JWTClaims{UserID: "u1", Role: role}}
		w := doRequest(newRouter(validator, CanWrite()), "Bearer t")
		assert.Equal(t, want, w.Code, role)
	}
}

func TestRequireRolesWithoutClaims(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/", RequireRoles(models.RoleAdmin), func(c *gin.Context) { c.Status(http.StatusOK) })
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuditLogsSuccessfulWrites(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	validator := stubValidator{token: "t", claims: &models.JWTClaims{UserID: "u9", Role: models.RoleAdmin}}
	r := newRouter(validator, Audit(zap.New(core), "thing.update", "thing"))

	require.Equal(t, http.StatusOK, doRequest(r, "Bearer t").Code)
	entries := logs.FilterMessage("thing.update").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "u9", fields["user_id"])
	assert.Equal(t, "42", fields["resource_id"])

	doRequest(r, "Bearer nope")
	assert.Len(t, logs.FilterMessage("thing.update").All(), 1)
}

func TestResponseMeta(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	var meta map[string]interface{}
	r.GET("/", WithResponseMeta(), func(c *gin.Context) {
		SetCacheHit(c, true)
		meta = ResponseMeta(c)
		c.Status(http.StatusOK)
	})
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, true, meta["cache_hit"])
	assert.Contains(t, meta, "processing_time_ms")
}
