package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"
)

func (app *Middleware) Recover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if p := recover(); p != nil {
				app.log.Error(r.Context(), "panic while serving request", fmt.Errorf("%v", p), "stack", string(debug.Stack()))
				w.Header().Set("Connection", "close")
				errorResponse(w, http.StatusInternalServerError, "the server encountered a problem and could not process your request")
			}
		}()

		next.ServeHTTP(w, r)
	})
}
