// Package middleware holds HTTP middleware shared by the server routes.
package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"idfbuilder/internal/httputil"
)

// Recovery turns a handler panic into a problem+json 500 and logs the
// stack. Panics with http.ErrAbortHandler are re-raised so the server can
// drop the connection.
func Recovery(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				err := recover()
				if err == nil {
					return
				}
				if err == http.ErrAbortHandler {
					panic(err)
				}

				logger.Error("panic recovered",
					"error", err,
					"path", r.URL.Path,
					"method", r.Method,
					"stack", string(debug.Stack()),
				)
				httputil.RespondError(w, http.StatusInternalServerError, "internal server error")
			}()

			next.ServeHTTP(w, r)
		})
	}
}
