package api

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/nimblebrain/nimbletools-core/internal/auth"
	"github.com/nimblebrain/nimbletools-core/internal/errdefs"
)

// Request deadlines. Log queries stream from every pod and get more room.
const (
	requestTimeout    = 30 * time.Second
	logRequestTimeout = 60 * time.Second
)

type requestIDKey struct{}

// requestID middleware assigns a correlation ID to every request.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey{}, id)))
	})
}

// RequestIDFrom returns the correlation ID assigned to the request.
func RequestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// recovery is the final catch layer: an unexpected panic becomes a logged
// 500 carrying only the correlation ID.
func (s *Server) recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				s.Logger.Error("panic serving request",
					zap.Any("panic", rec),
					zap.String("path", r.URL.Path),
					zap.String("request_id", RequestIDFrom(r.Context())),
				)
				writeJSON(w, http.StatusInternalServerError, ErrorResponse{
					Detail: "internal error (correlation ID " + RequestIDFrom(r.Context()) + ")",
				})
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// deadline bounds the request context.
func deadline(d time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), d)
			defer cancel()
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// authenticate resolves the bearer token through the configured provider and
// attaches the user context. A nil user context means the token is invalid.
func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			writeError(w, errdefs.Newf(errdefs.ErrUnauthenticated, "missing bearer token"))
			return
		}

		user, err := s.Provider.ValidateToken(r.Context(), token)
		if err != nil {
			s.Logger.Error("token validation failed",
				zap.Error(err),
				zap.String("request_id", RequestIDFrom(r.Context())),
			)
			writeError(w, errdefs.Newf(errdefs.ErrTransient, "authentication provider unavailable"))
			return
		}
		if user == nil {
			writeError(w, errdefs.Newf(errdefs.ErrUnauthenticated, "invalid token"))
			return
		}

		next.ServeHTTP(w, r.WithContext(auth.WithUser(r.Context(), user)))
	})
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if len(header) > 7 && strings.EqualFold(header[:7], "bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return ""
}
