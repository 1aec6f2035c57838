package middlewares

import (
	"net/http"
	"strings"
)

// MethodOverride lets HTML forms reach PUT, PATCH and DELETE routes by posting
// to a URL with ?_method=VERB. It wraps the router because gin picks the route
// before any gin middleware runs.
func MethodOverride(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			switch m := strings.ToUpper(r.URL.Query().Get("_method")); m {
			case http.MethodPut, http.MethodPatch, http.MethodDelete:
				r.Method = m
			}
		}
		next.ServeHTTP(w, r)
	})
}
