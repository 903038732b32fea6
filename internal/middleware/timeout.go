package middleware

import (
	"encoding/json"
	"net/http"
	"time"
)

// Timeout bounds each request. A handler still running at the deadline is
// answered with 503 and the REQUEST_TIMEOUT envelope the handlers use.
func Timeout(timeout time.Duration) func(http.Handler) http.Handler {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	message, _ := json.Marshal(errorEnvelope("REQUEST_TIMEOUT", "Request timed out"))

	return func(next http.Handler) http.Handler {
		timed := http.TimeoutHandler(next, timeout, string(message))
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Handlers that answer in time overwrite this.
			w.Header().Set("Content-Type", "application/json")
			timed.ServeHTTP(w, r)
		})
	}
}
