package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/mediatrack/campaign-api/internal/models"
)

func rbacRouter(guard gin.HandlerFunc, claims *models.JWTClaims) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/resource/:id", func(c *gin.Context) {
		if claims != nil {
			c.Set(ContextUserKey, claims)
		}
		c.Next()
	}, guard, func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return router
}

func TestRBACAllowsListedRole(t *testing.T) {
	router := rbacRouter(RBAC("ADMIN"), &models.JWTClaims{UserID: "u1", Role: models.RoleAdmin})

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/resource/u2", nil))
	assert.Equal(t, http.StatusNoContent, recorder.Code)
}

func TestRBACRejectsOtherRole(t *testing.T) {
	router := rbacRouter(RBAC("ADMIN"), &models.JWTClaims{UserID: "u1", Role: models.RoleAnalyst})

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/resource/u2", nil))
	assert.Equal(t, http.StatusForbidden, recorder.Code)
}

func TestRBACSelfScope(t *testing.T) {
	claims := &models.JWTClaims{UserID: "u1", Role: models.RoleAnalyst}
	router := rbacRouter(RBAC("ADMIN", SelfScope), claims)

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/resource/u1", nil))
	assert.Equal(t, http.StatusNoContent, recorder.Code)

	recorder = httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/resource/u2", nil))
	assert.Equal(t, http.StatusForbidden, recorder.Code)
}

func TestRBACWithoutClaims(t *testing.T) {
	router := rbacRouter(RequireRoles(models.RoleAdmin), nil)

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/resource/u1", nil))
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
}
