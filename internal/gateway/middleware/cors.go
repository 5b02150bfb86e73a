package middleware

import (
	"net/http"
	"strings"
)

// CORSMiddleware allows the comma separated allowedOrigins ("*" for any) and answers preflights.
func CORSMiddleware(next http.Handler, allowedOrigins string) http.Handler {
	origins := strings.Split(allowedOrigins, ",")
	for i := range origins {
		origins[i] = strings.TrimRight(strings.TrimSpace(origins[i]), "/")
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		w.Header().Add("Vary", "Origin")

		allowed := ""
		for _, o := range origins {
			if o == "*" {
				allowed = "*"
				break
			}
			if origin != "" && o == origin {
				allowed = origin
				break
			}
		}

		if allowed != "" {
			w.Header().Set("Access-Control-Allow-Origin", allowed)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS, PATCH")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			if allowed != "*" {
				w.Header().Set("Access-Control-Allow-Credentials", "true")
			}
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}
