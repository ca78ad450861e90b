package httpadapter

import (
	"net/http"

	"golang.org/x/time/rate"
)

// rateLimitMiddleware throttles the analyze route: pipeline runs hold OCR
// and model resources for seconds at a time.
func rateLimitMiddleware(limiter *rate.Limiter, next http.Handler) http.Handler {
	if limiter == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !limiter.Allow() {
			writeJSON(w, http.StatusTooManyRequests, map[string]string{"error": "too many requests"})
			return
		}
		next.ServeHTTP(w, r)
	})
}
