// Package requestid propagates the request id into requestcontext so services
// can log it without depending on the router.
package requestid

import (
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"notify-gateway/pkg/requestcontext"
)

// Header carries the request id in and out.
const Header = "X-Request-ID"

// Middleware reuses an inbound X-Request-ID (or chi's id when chi's RequestID
// middleware ran first), otherwise generates a UUID, and echoes it back.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(Header)
		if id == "" {
			id = middleware.GetReqID(r.Context())
		}
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(Header, id)
		ctx := requestcontext.WithRequestID(r.Context(), id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
