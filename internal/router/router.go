package router

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-join-import/internal/importer"
)

// loggingResponseWriter wraps http.ResponseWriter to capture status and size.
type loggingResponseWriter struct {
	http.ResponseWriter
	status int
	size   int
}

func (lrw *loggingResponseWriter) WriteHeader(code int) {
	lrw.status = code
	lrw.ResponseWriter.WriteHeader(code)
}

func (lrw *loggingResponseWriter) Write(b []byte) (int, error) {
	if lrw.status == 0 {
		lrw.status = http.StatusOK
	}
	n, err := lrw.ResponseWriter.Write(b)
	lrw.size += n
	return n, err
}

// LoggingMiddleware logs requests at debug level.
func LoggingMiddleware(logger *zap.SugaredLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			lrw := &loggingResponseWriter{ResponseWriter: w}
			next.ServeHTTP(lrw, r)
			status := lrw.status
			if status == 0 {
				status = http.StatusOK
			}
			logger.Debugw("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"remote", r.RemoteAddr,
				"status", status,
				"duration_ms", float64(time.Since(start).Microseconds())/1000.0,
				"size", lrw.size,
			)
		})
	}
}

// SecurityHeadersMiddleware sets common HTTP security headers.
func SecurityHeadersMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			w.Header().Set("X-Frame-Options", "DENY")
			w.Header().Set("Referrer-Policy", "no-referrer-when-downgrade")
			w.Header().Set("Permissions-Policy", "camera=(), microphone=(), geolocation=()")
			if w.Header().Get("Content-Security-Policy") == "" {
				w.Header().Set("Content-Security-Policy", "default-src 'self'; object-src 'none'; base-uri 'self';")
			}
			// HSTS only over TLS, 30 days
			if r.TLS != nil {
				w.Header().Set("Strict-Transport-Security", "max-age=2592000; includeSubDomains")
			}
			next.ServeHTTP(w, r)
		})
	}
}

// BearerAuth accepts only requests carrying an HS256 token signed with secret.
// An empty secret rejects everything.
func BearerAuth(secret []byte) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if len(secret) == 0 {
				http.Error(w, "import trigger disabled", http.StatusForbidden)
				return
			}
			auth := r.Header.Get("Authorization")
			if len(auth) < len("bearer ") || !strings.EqualFold(auth[:len("bearer ")], "bearer ") {
				http.Error(w, "missing bearer token", http.StatusUnauthorized)
				return
			}
			token := strings.TrimSpace(auth[len("bearer "):])
			_, err := jwt.Parse(token, func(t *jwt.Token) (any, error) {
				return secret, nil
			}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
			if err != nil {
				http.Error(w, "invalid_token", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// StatusSource reports the importer state.
type StatusSource interface {
	Status() importer.Status
	Running() bool
}

// Options configure the status surface.
type Options struct {
	Status StatusSource
	// Trigger starts a full import in the background.
	Trigger   func()
	JWTSecret []byte
}

// RegisterRoutes mounts the status page, health check and import trigger.
func RegisterRoutes(logger *zap.SugaredLogger, opts Options) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte(statusText(opts.Status.Status())))
	})

	mux.HandleFunc("GET /status", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(opts.Status.Status())
	})

	trigger := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if opts.Status.Running() {
			http.Error(w, "import in progress", http.StatusConflict)
			return
		}
		logger.Infow("import triggered over http", "remote", r.RemoteAddr)
		go opts.Trigger()
		w.WriteHeader(http.StatusAccepted)
		_, _ = w.Write([]byte("import started"))
	})
	mux.Handle("POST /import", BearerAuth(opts.JWTSecret)(trigger))

	return LoggingMiddleware(logger)(SecurityHeadersMiddleware()(mux))
}

func statusText(s importer.Status) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Import runs: %d\n", s.Runs)
	fmt.Fprintf(&b, "Running: %v\n", s.Running)
	if s.RunID != "" {
		fmt.Fprintf(&b, "Last run: %s started %s\n", s.RunID, s.StartedAt.Format(time.RFC3339))
	}
	if !s.FinishedAt.IsZero() {
		fmt.Fprintf(&b, "Finished: %s\n", s.FinishedAt.Format(time.RFC3339))
		fmt.Fprintf(&b, "Listed: %d, imported: %d, created: %d, updated: %d, failed: %d\n",
			s.Last.Listed, s.Last.Imported, s.Last.Created, s.Last.Updated, s.Last.Failed)
	}
	if s.LastError != "" {
		fmt.Fprintf(&b, "Last error: %s\n", s.LastError)
	}
	return b.String()
}
