package middleware

import (
	"net/http"

	"github.com/go-chi/jwtauth/v5"

	"github.com/attendly/attendance-backend-go/internal/handler/http/response"
)

// ManagerOnly restricts register administration (schedules, device pairing,
// employee assignment) to manager tokens.
func ManagerOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, claims, err := jwtauth.FromContext(r.Context())
		if err != nil {
			response.Unauthorized(w, "Invalid token")
			return
		}

		role, ok := claims["role"].(string)
		if !ok || role != "manager" {
			response.Forbidden(w, "Manager privilege required")
			return
		}

		next.ServeHTTP(w, r)
	})
}
