package api

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"ridi-pay/internal/domain"
	"ridi-pay/internal/infra/logging"
	red "ridi-pay/internal/infra/redis"
)

// Limiter counts attempts in a fixed window.
type Limiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

// CardRegistrationLimit caps card registrations per user and day.
// A limiter failure lets the request through.
func CardRegistrationLimit(l Limiter, limit int, now func() time.Time, logger *zerolog.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if l == nil || limit <= 0 {
				next.ServeHTTP(w, r)
				return
			}
			uIdx, err := pathUIdx(r)
			if err != nil {
				writeError(w, r, logger, err)
				return
			}
			ok, err := l.Allow(r.Context(), red.CardRegistrationKey(uIdx, now()), limit, 24*time.Hour)
			if err != nil {
				lg := logging.With(r.Context(), logger)
				lg.Warn().Err(err).Int64("u_idx", uIdx).Msg("rate limiter unavailable")
				next.ServeHTTP(w, r)
				return
			}
			if !ok {
				writeError(w, r, logger, domain.ErrRateLimited)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
