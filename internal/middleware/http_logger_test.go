package middleware

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedactJSON(t *testing.T) {
	out := redactJSON([]byte(`{"email":"a@b.c","items":[{"token":"x","quantity":2}],"name":"Ana"}`))
	assert.JSONEq(t, `{"email":"***redacted***","items":[{"token":"***redacted***","quantity":2}],"name":"Ana"}`, string(out))

	assert.Equal(t, "plain", string(redactJSON([]byte("plain"))))
}

func TestLoggingKeepsBodyForHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	var logs bytes.Buffer
	base := slog.New(slog.NewJSONHandler(&logs, nil))

	r := gin.New()
	r.Use(Logging(base))
	r.POST("/echo", func(c *gin.Context) {
		b, err := io.ReadAll(c.Request.Body)
		require.NoError(t, err)
		c.Data(http.StatusOK, "text/plain", b)
	})

	t.Run("Small body is logged redacted", func(t *testing.T) {
		logs.Reset()
		req := httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader(`{"email":"maria@example.com"}`))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, `{"email":"maria@example.com"}`, w.Body.String())
		assert.NotEmpty(t, w.Header().Get("X-Request-Id"))
		assert.Contains(t, logs.String(), "***redacted***")
		assert.NotContains(t, logs.String(), "maria@example.com")
	})

	t.Run("Large body reaches the handler whole", func(t *testing.T) {
		big := `{"name":"` + strings.Repeat("a", 2*bodyLimit) + `"}`
		req := httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader(big))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, big, w.Body.String())
	})

	t.Run("Incoming request id is kept", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/echo", nil)
		req.Header.Set("X-Request-Id", "abc")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, "abc", w.Header().Get("X-Request-Id"))
	})
}
