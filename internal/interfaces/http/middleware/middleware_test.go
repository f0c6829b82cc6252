package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	authz "github.com/orris-inc/poolkeeper/internal/infrastructure/authorization"
	"github.com/orris-inc/poolkeeper/internal/shared/constants"
	sharedErrors "github.com/orris-inc/poolkeeper/internal/shared/errors"
	"github.com/orris-inc/poolkeeper/internal/shared/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubGate struct {
	allowed bool
	err     error
	calls   [][4]string
}

func (g *stubGate) Allow(principal, role, object, action string) (bool, error) {
	g.calls = append(g.calls, [4]string{principal, role, object, action})
	return g.allowed, g.err
}

func newRouter(gate authz.Gate) *gin.Engine {
	r := gin.New()
	r.Use(Principal(), Recovery(logger.Nop()))
	auth := NewAuthorizationMiddleware(gate, logger.Nop())
	r.POST("/owners/:owner_key/refresh", auth.Authorize(), func(c *gin.Context) {
		c.JSON(http.StatusAccepted, gin.H{"principal": c.GetString(constants.ContextKeyPrincipal)})
	})
	r.GET("/panic", func(c *gin.Context) { panic("boom") })
	r.GET("/fail", ErrorHandler(logger.Nop()), func(c *gin.Context) {
		_ = c.Error(sharedErrors.NewNotFoundError("job not found"))
	})
	return r
}

func TestAuthorize_PassesRoutePatternAndRole(t *testing.T) {
	gate := &stubGate{allowed: true}
	r := newRouter(gate)

	req := httptest.NewRequest(http.MethodPost, "/owners/acme/refresh", nil)
	req.Header.Set(constants.HeaderPrincipal, "alice")
	req.Header.Set(constants.HeaderPrincipalRole, "Operator")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusAccepted, w.Code)
	require.Len(t, gate.calls, 1)
	assert.Equal(t, [4]string{"alice", "operator", "/owners/:owner_key/refresh", http.MethodPost}, gate.calls[0])
}

func TestAuthorize_DeniedAndError(t *testing.T) {
	tests := []struct {
		name string
		gate *stubGate
		want int
	}{
		{"denied", &stubGate{allowed: false}, http.StatusForbidden},
		{"gate error", &stubGate{err: errors.New("policy unavailable")}, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newRouter(tt.gate)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/owners/acme/refresh", nil))

			assert.Equal(t, tt.want, w.Code)
			require.Len(t, tt.gate.calls, 1)
			assert.Equal(t, constants.DefaultPrincipal, tt.gate.calls[0][0])
			assert.Empty(t, tt.gate.calls[0][1])
		})
	}
}

func TestRecovery_RendersInternalError(t *testing.T) {
	r := newRouter(&stubGate{allowed: true})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), constants.ErrMsgInternalServerError)
}

func TestErrorHandler_RendersAppError(t *testing.T) {
	r := newRouter(&stubGate{allowed: true})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/fail", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "job not found")
}

func TestCORS(t *testing.T) {
	r := gin.New()
	r.Use(CORS([]string{"https://console.example.com"}))
	r.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodOptions, "/health", nil)
	req.Header.Set("Origin", "https://console.example.com")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://console.example.com", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}
