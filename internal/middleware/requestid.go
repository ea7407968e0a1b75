package middleware

import (
	"net/http"

	"github.com/google/uuid"
)

// RequestIDHeader is propagated end to end so a frontend report can be
// matched to server logs.
const RequestIDHeader = "X-Request-Id"

// RequestID reuses the inbound id when present, otherwise mints one.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)
		next.ServeHTTP(w, r)
	})
}
