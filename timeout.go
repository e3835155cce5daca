package bridge

import (
	"context"
	"net/http"
	"time"
)

// Timeout returns middleware that adds a deadline to the request context.
// For asynchronous bodies, an expired deadline surfaces to the exchange as
// a Timeout lifecycle event and aborts the drain; the producer is
// cancelled and the exchange is still completed exactly once.
func Timeout(d time.Duration) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), d)
			defer cancel()
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
