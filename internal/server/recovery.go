package server

import (
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/tjfontaine/interview-gateway/internal/domain"
)

// RecoveryMiddleware turns a handler panic into a 500 JSON error instead of a dropped connection.
func RecoveryMiddleware(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}

				logger.Error("internal server error",
					slog.String("request_id", GetRequestID(r.Context())),
					slog.String("panic", fmt.Sprint(rec)),
					slog.String("stack", string(debug.Stack())),
				)
				AddLogField(r.Context(), "error", fmt.Sprint(rec))
				WriteError(w, http.StatusInternalServerError, domain.MessageInternal, "")
			}()

			next.ServeHTTP(w, r)
		})
	}
}
