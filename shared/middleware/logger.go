package middleware

import (
	"net/http"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// CorrelationIDHeader carries the id that ties together the logs of one request.
const CorrelationIDHeader = "X-Correlation-ID"

// NewRequestLogger returns a middleware that logs every request once it
// completes. The correlation id is taken from the request or generated, echoed
// on the response and attached to the logger stored in the request context,
// so handlers can log through zerolog.Ctx.
func NewRequestLogger(logger *zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			correlationID := r.Header.Get(CorrelationIDHeader)
			if correlationID == "" {
				correlationID = uuid.NewString()
			}
			w.Header().Set(CorrelationIDHeader, correlationID)

			reqLogger := logger.With().Str("correlation_id", correlationID).Logger()
			r = r.WithContext(reqLogger.WithContext(r.Context()))

			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			defer func() {
				status := ww.Status()
				if status == 0 {
					status = http.StatusOK
				}

				event := reqLogger.Info()
				if status >= http.StatusBadRequest {
					event = reqLogger.Warn()
				}

				event.
					Str("method", r.Method).
					Str("path", r.URL.Path).
					Int("status", status).
					Dur("duration", time.Since(start)).
					Str("user_agent", r.UserAgent()).
					Msg("http request")
			}()

			next.ServeHTTP(ww, r)
		})
	}
}
