package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/pedro5g/forfly/internal/logging"
)

const bodyLimit = 8 * 1024

var redactedKeys = map[string]bool{
	"authorization": true,
	"token":         true,
	"secret":        true,
	"code":          true,
	"email":         true,
	"phone":         true,
}

type bodyLogWriter struct {
	gin.ResponseWriter
	buf *bytes.Buffer
}

func (w *bodyLogWriter) Write(b []byte) (int, error) {
	if remain := bodyLimit - w.buf.Len(); remain > 0 {
		if len(b) > remain {
			w.buf.Write(b[:remain])
		} else {
			w.buf.Write(b)
		}
	}
	return w.ResponseWriter.Write(b)
}

func redactJSON(raw []byte) []byte {
	if len(raw) == 0 {
		return raw
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return raw
	}
	var scrub func(any) any
	scrub = func(x any) any {
		switch t := x.(type) {
		case map[string]any:
			for k, val := range t {
				if redactedKeys[strings.ToLower(k)] {
					t[k] = "***redacted***"
					continue
				}
				t[k] = scrub(val)
			}
		case []any:
			for i := range t {
				t[i] = scrub(t[i])
			}
		}
		return x
	}
	out, err := json.Marshal(scrub(v))
	if err != nil {
		return raw
	}
	return out
}

func readCapped(r io.Reader, n int) ([]byte, bool) {
	var buf bytes.Buffer
	_, _ = io.CopyN(&buf, r, int64(n+1))
	return buf.Bytes(), buf.Len() > n
}

// Logging logs every request with a request id and puts a request-scoped
// logger in the context. JSON bodies are logged with personal data redacted.
func Logging(base *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		reqID := c.GetHeader("X-Request-Id")
		if reqID == "" {
			reqID = uuid.NewString()
		}
		c.Header("X-Request-Id", reqID)

		l := base.With("req_id", reqID, "method", c.Request.Method, "path", c.Request.URL.Path)
		logging.With(c, l)

		var reqBody []byte
		if strings.Contains(c.GetHeader("Content-Type"), "application/json") && c.Request.Body != nil {
			body, truncated := readCapped(c.Request.Body, bodyLimit)
			if truncated {
				// too large to log; hand the handler what was read plus the rest
				c.Request.Body = struct {
					io.Reader
					io.Closer
				}{io.MultiReader(bytes.NewReader(body), c.Request.Body), c.Request.Body}
			} else {
				c.Request.Body = io.NopCloser(bytes.NewReader(body))
				reqBody = redactJSON(body)
			}
		}

		blw := &bodyLogWriter{ResponseWriter: c.Writer, buf: &bytes.Buffer{}}
		c.Writer = blw

		c.Next()

		status := c.Writer.Status()
		attrs := []any{
			"route", c.FullPath(),
			"status", status,
			"dur_ms", time.Since(start).Milliseconds(),
			"resp_bytes", c.Writer.Size(),
		}
		if len(reqBody) > 0 {
			attrs = append(attrs, "req_body", string(reqBody))
		}
		if status >= http.StatusBadRequest && strings.Contains(c.Writer.Header().Get("Content-Type"), "application/json") {
			attrs = append(attrs, "resp_body", string(redactJSON(blw.buf.Bytes())))
		}
		if len(c.Errors) > 0 {
			attrs = append(attrs, "error", c.Errors.String())
		}

		switch {
		case status >= http.StatusInternalServerError:
			l.Error("http_request", attrs...)
		case status >= http.StatusBadRequest:
			l.Warn("http_request", attrs...)
		default:
			l.Info("http_request", attrs...)
		}
	}
}
