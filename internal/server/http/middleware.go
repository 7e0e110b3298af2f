package httpserver

import (
	"context"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	gonanoid "github.com/matoous/go-nanoid/v2"
	"go.uber.org/zap"

	"github.com/TariqKichawele/Reflect/internal/auth"
	"github.com/TariqKichawele/Reflect/internal/errs"
)

// RequestIDHeader carries the per-request id in both directions.
const RequestIDHeader = "X-Request-Id"

const (
	idAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"
	idLength   = 12
)

type ctxKey string

const requestIDKey ctxKey = "reflect.requestID"

// RequestIDFromCtx returns the id assigned by RequestID.
func RequestIDFromCtx(ctx context.Context) string {
	v, _ := ctx.Value(requestIDKey).(string)
	return v
}

// RequestID reuses an inbound X-Request-Id or generates a nanoid.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" || len(id) > 64 {
			gen, err := gonanoid.Generate(idAlphabet, idLength)
			if err != nil {
				gen = "unknown"
			}
			id = gen
		}
		w.Header().Set(RequestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey, id)))
	})
}

// Recover turns handler panics into 500 responses.
func Recover(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					if rec == http.ErrAbortHandler {
						panic(rec)
					}
					log.Error("panic",
						zap.Any("reason", rec),
						zap.ByteString("stack", debug.Stack()),
						zap.String("method", r.Method),
						zap.String("path", r.URL.Path),
						zap.String("request_id", RequestIDFromCtx(r.Context())),
					)
					writeJSON(w, http.StatusInternalServerError, errorBody("internal"))
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// Logging writes one access line per request; payloads are never logged.
func Logging(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			log.Info("http",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", status),
				zap.Duration("dur", time.Since(start)),
				zap.String("peer", r.RemoteAddr),
				zap.String("request_id", RequestIDFromCtx(r.Context())),
			)
		})
	}
}

// TokenVerifier validates bearer tokens.
type TokenVerifier interface {
	Verify(token string) (auth.Identity, error)
}

// Authenticate attaches the verified caller to the request context.
// Requests without a valid token pass through anonymous: actions reject
// them in their own error contract.
func Authenticate(v TokenVerifier, log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tok, ok := auth.BearerToken(r.Header.Get("Authorization"))
			if !ok {
				next.ServeHTTP(w, r)
				return
			}
			id, err := v.Verify(tok)
			if err != nil {
				log.Debug("token rejected", zap.Error(err), zap.String("request_id", RequestIDFromCtx(r.Context())))
				next.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r.WithContext(auth.WithIdentity(r.Context(), id)))
		})
	}
}

// RequireAuth answers 401 for anonymous requests.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := auth.IdentityFromCtx(r.Context()); !ok {
			writeError(w, errs.ErrUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}
