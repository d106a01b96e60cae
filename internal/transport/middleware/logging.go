package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

const (
	filteredValue = "[FILTERED]"

	// bodies beyond this are cut before they reach the log line
	maxLoggedBody = 4 << 10
)

// redactedKeys match header names and JSON keys by substring. signature_key
// and server keys authenticate gateway callbacks, email and phone belong to
// donors.
var redactedKeys = []string{
	"authorization",
	"cookie",
	"token",
	"secret",
	"signature",
	"key",
	"password",
	"email",
	"phone",
}

// quietPrefixes are served without body logging.
var quietPrefixes = []string{"/swagger/", "/openapi.yml", "/api/v1/ping", "/api/v1/health"}

// LoggingMiddleware writes one line per request and one per response. Bodies
// are logged with donor and gateway secrets redacted.
func LoggingMiddleware(logger *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			log := logger
			if traceID := w.Header().Get(TraceIDHeader); traceID != "" {
				log = log.With("traceID", traceID)
			}
			quiet := isQuiet(r.URL.Path)

			attrs := []any{
				"method", r.Method,
				"path", r.URL.Path,
				"remote_addr", r.RemoteAddr,
				"headers", redactHeaders(r.Header),
			}
			if r.URL.RawQuery != "" {
				attrs = append(attrs, "query", r.URL.RawQuery)
			}
			if !quiet && r.Body != nil {
				raw, _ := io.ReadAll(r.Body)
				r.Body = io.NopCloser(bytes.NewReader(raw))
				attrs = append(attrs, "body", redactBody(raw))
			}
			log.Info("incoming request", attrs...)

			rec := &recorder{ResponseWriter: w, status: http.StatusOK, capture: !quiet}
			next.ServeHTTP(rec, r)

			level := slog.LevelInfo
			switch {
			case rec.status >= 500:
				level = slog.LevelError
			case rec.status >= 400:
				level = slog.LevelWarn
			}

			out := []any{
				"status_code", rec.status,
				"duration_ms", time.Since(start).Milliseconds(),
				"response_size", rec.size,
			}
			if rec.capture {
				out = append(out, "body", redactBody(rec.body.Bytes()))
			}
			log.Log(r.Context(), level, "response", out...)
		})
	}
}

type recorder struct {
	http.ResponseWriter
	status  int
	size    int
	capture bool
	body    bytes.Buffer
}

func (rw *recorder) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *recorder) Write(b []byte) (int, error) {
	n, err := rw.ResponseWriter.Write(b)
	rw.size += n
	if rw.capture && rw.body.Len() < maxLoggedBody {
		rw.body.Write(b[:min(n, maxLoggedBody-rw.body.Len())])
	}
	return n, err
}

func isQuiet(path string) bool {
	for _, p := range quietPrefixes {
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}

func isRedacted(name string) bool {
	name = strings.ToLower(name)
	for _, k := range redactedKeys {
		if strings.Contains(name, k) {
			return true
		}
	}
	return false
}

func redactHeaders(headers http.Header) map[string]string {
	out := make(map[string]string, len(headers))
	for name, values := range headers {
		if isRedacted(name) {
			out[name] = filteredValue
			continue
		}
		out[name] = strings.Join(values, ", ")
	}
	return out
}

// redactBody masks redacted keys in JSON bodies. Anything that is not JSON is
// replaced wholesale since form-encoded callbacks carry the same secrets.
func redactBody(body []byte) string {
	if len(body) == 0 {
		return ""
	}
	if len(body) > maxLoggedBody {
		return "[TRUNCATED]"
	}

	var data any
	if err := json.Unmarshal(body, &data); err != nil {
		return "[NON-JSON BODY]"
	}

	masked, err := json.Marshal(redactValue(data))
	if err != nil {
		return "[UNLOGGABLE BODY]"
	}
	return string(masked)
}

func redactValue(data any) any {
	switch v := data.(type) {
	case map[string]any:
		out := make(map[string]any, len(v))
		for key, value := range v {
			if isRedacted(key) {
				out[key] = filteredValue
				continue
			}
			out[key] = redactValue(value)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = redactValue(item)
		}
		return out
	default:
		return v
	}
}
