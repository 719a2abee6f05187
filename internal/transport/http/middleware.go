package httptransport

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"tramita/internal/auth"
	id "tramita/pkg/domain"
	"tramita/pkg/requestcontext"
)

// requestID stamps each request with a UUID for log correlation.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := r.Header.Get("X-Request-ID")
		if reqID == "" {
			reqID = uuid.NewString()
		}
		ctx := requestcontext.WithRequestID(r.Context(), reqID)
		w.Header().Set("X-Request-ID", reqID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requestTime pins one timestamp per request so every write within it shares
// the same clock reading.
func requestTime(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := requestcontext.WithTime(r.Context(), time.Now())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func recovery(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					logger.ErrorContext(r.Context(), "panic recovered",
						slog.Any("panic", rec),
						slog.String("path", r.URL.Path),
					)
					w.WriteHeader(http.StatusInternalServerError)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			next.ServeHTTP(w, r)
			logger.InfoContext(r.Context(), "request handled",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.String("request_id", requestcontext.RequestID(r.Context())),
				slog.Duration("duration", time.Since(start)),
			)
		})
	}
}

// requireAuth validates the bearer token and loads actor identity and working
// sector into the request context. An X-Active-Sector header overrides the
// token's sector for the single request; the policy layer decides what the
// actor may actually do there.
func requireAuth(tokens *auth.TokenManager, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const bearerPrefix = "Bearer "
			header := r.Header.Get("Authorization")
			if len(header) <= len(bearerPrefix) || header[:len(bearerPrefix)] != bearerPrefix {
				writeJSON(w, http.StatusUnauthorized, map[string]string{
					"error":   "unauthenticated",
					"message": "missing bearer token",
				})
				return
			}

			identity, err := tokens.Parse(header[len(bearerPrefix):])
			if err != nil {
				logger.WarnContext(r.Context(), "rejected token",
					slog.String("request_id", requestcontext.RequestID(r.Context())),
				)
				writeError(w, err)
				return
			}

			ctx := requestcontext.WithActorID(r.Context(), identity.CollaboratorID)
			sector := identity.ActiveSector
			if override := r.Header.Get("X-Active-Sector"); override != "" {
				sectorID, err := id.ParseSectorID(override)
				if err != nil {
					writeError(w, err)
					return
				}
				sector = sectorID
			}
			if !sector.IsNil() {
				ctx = requestcontext.WithActiveSector(ctx, sector)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
