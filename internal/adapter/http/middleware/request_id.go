package middleware

import (
	"net/http"

	wrap "github.com/Temutjin2k/campus-radar/pkg/logger/wrapper"
	"github.com/google/uuid"
)

const requestIDHeader = "X-Request-ID"

// RequestID tags the request with the caller's X-Request-ID, or a fresh one,
// and echoes it back in the response.
func (a *Middleware) RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" || len(id) > 128 {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)

		next.ServeHTTP(w, r.WithContext(wrap.WithRequestID(r.Context(), id)))
	})
}
