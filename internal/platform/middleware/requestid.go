package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"quarters/pkg/requestcontext"
)

const requestIDHeader = "X-Request-ID"

// RequestID accepts an inbound correlation ID or mints one, echoes it on the
// response, and stores it in the context for logging and auditing.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)

		ctx := requestcontext.WithRequestID(r.Context(), id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
