package middleware

import (
	"net/http"
	"time"

	"github.com/RoyceAzure/lab/storefront/internal/metrics"
	"github.com/RoyceAzure/lab/storefront/internal/util"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

type StatusRecoder struct {
	http.ResponseWriter
	status int
}

func (w *StatusRecoder) WriteHeader(status int) {
	if w.status == 0 {
		w.status = status
	}
	w.ResponseWriter.WriteHeader(status)
}

func (w *StatusRecoder) Write(b []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}
	return w.ResponseWriter.Write(b)
}

func (w *StatusRecoder) Status() int {
	if w.status == 0 {
		return http.StatusOK
	}
	return w.status
}

func getUserID(r *http.Request) string {
	payload := util.GetTokenPayloadFromContext(r.Context())
	if payload == nil {
		return "unknown"
	}
	return payload.UserID
}

// routePattern 以 chi 的路由樣板當 metrics label, 避免 id 造成高基數
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return "unmatched"
}

// 記錄request 請求
func LoggerMiddleware(logger *zerolog.Logger, m *metrics.Metrics) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			recoder := &StatusRecoder{
				ResponseWriter: w,
			}
			next.ServeHTTP(recoder, r)
			elapsed := time.Since(start)

			m.ObserveRequest(r.Method, routePattern(r), recoder.Status(), elapsed)

			if logger == nil {
				return
			}
			event := logger.Info()
			if recoder.Status() >= http.StatusInternalServerError {
				event = logger.Error()
			}
			event.
				Str("request_id", util.GetRequestIDFromContext(r.Context())).
				Str("user_id", getUserID(r)).
				Str("method", r.Method).
				Str("url", r.URL.String()).
				Int("status", recoder.Status()).
				Dur("latency", elapsed).
				Msg("request completed")
		})
	}
}
