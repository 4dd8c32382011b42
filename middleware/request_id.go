package middleware

import (
	"net/http"

	"github.com/google/uuid"
)

// requestIDHeader is echoed back to clients for log correlation
const requestIDHeader = "X-Request-ID"

// RequestID assigns every request a unique identifier, stores it in the
// context and echoes it in the response headers. An incoming X-Request-ID
// from a trusted proxy is reused.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(requestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}

		w.Header().Set(requestIDHeader, requestID)
		next.ServeHTTP(w, r.WithContext(WithRequestID(r.Context(), requestID)))
	})
}
